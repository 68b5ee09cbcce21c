package dto

type CreateCategoryInput struct {
	MerchantID  string  `json:"-"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
	SortOrder   int     `json:"sort_order" validate:"gte=0"`
}

type UpdateCategoryInput struct {
	ID          string  `json:"-"`
	MerchantID  string  `json:"-"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
	SortOrder   int     `json:"sort_order" validate:"gte=0"`
	IsActive    bool    `json:"is_active"`
}
