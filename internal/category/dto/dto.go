package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

type CategoryFilters struct {
	MerchantID      string
	ParentID        *string // nil ignores the parent, "" selects root categories
	IsActive        *bool
	IncludeChildren bool
	Page            int
	PageSize        int
}

type CategoryList struct {
	Categories []model.Category `json:"categories"`
	Total      int              `json:"total"`
}
