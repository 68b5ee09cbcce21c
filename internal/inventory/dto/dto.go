package dto

import (
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/stock"
	variantdto "github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
)

type AdjustResult struct {
	Variant  *model.Variant             `json:"variant"`
	Movement *model.StockMovement       `json:"movement"`
	Level    stock.LevelState           `json:"level"`
	LowStock bool                       `json:"low_stock"`
	Children *variantdto.ChildrenResult `json:"children,omitempty"`
	Warnings []apperrors.Notice         `json:"warnings,omitempty"`
}

type MovementFilters struct {
	MerchantID   string
	ProductID    string
	VariantID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

type MovementList struct {
	Movements []model.StockMovement `json:"movements"`
	Total     int                   `json:"total"`
}

type LowStockFilters struct {
	MerchantID string
	ProductID  string
	Page       int
	PageSize   int
}

// LowStockItem is a variant at or below its minimum, with its product name.
type LowStockItem struct {
	model.Variant
	ProductName string `db:"product_name" json:"product_name"`
}

type LowStockList struct {
	Items []LowStockItem `json:"items"`
	Total int            `json:"total"`
}
