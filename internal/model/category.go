package model

type Category struct {
	BaseModel
	MerchantID  string     `db:"merchant_id" json:"merchant_id"`
	ParentID    *string    `db:"parent_id" json:"parent_id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description"`
	Color       *string    `db:"color" json:"color"`
	SortOrder   int        `db:"sort_order" json:"sort_order"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	Children    []Category `db:"-" json:"children,omitempty"`
}
