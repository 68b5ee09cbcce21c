package dto

type ProductFilters struct {
	MerchantID  string `json:"merchant_id"`
	CategoryID  string `json:"category_id"`
	IsActive    *bool  `json:"is_active"`
	SearchQuery string `json:"search_query"` // name or sku
	SortBy      string `json:"sort_by"`      // name, price, created_at
	SortOrder   string `json:"sort_order"`   // asc, desc
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

// VariantInput is one row of the create form's variant table.
type VariantInput struct {
	Name             string                 `json:"name" validate:"max=100"`
	SKU              string                 `json:"sku" validate:"max=50"`
	CostPrice        float64                `json:"cost_price" validate:"gte=0"`
	SellingPrice     float64                `json:"selling_price" validate:"gte=0"`
	Quantity         int                    `json:"quantity" validate:"gte=0"`
	MinQuantity      *int                   `json:"min_quantity" validate:"omitempty,gte=0"`
	Specification    string                 `json:"specification" validate:"max=1000"`
	Attributes       map[string]interface{} `json:"attributes"`
	TrackIdentifiers bool                   `json:"track_identifiers"`
	Identifiers      []string               `json:"identifiers"`
}

type CreateProductInput struct {
	MerchantID    string                 `json:"-"`
	BranchID      string                 `json:"-"`
	UserID        string                 `json:"-"`
	Name          string                 `json:"name" validate:"required,min=1,max=100"`
	Description   string                 `json:"description" validate:"max=200"`
	Specification string                 `json:"specification" validate:"omitempty,max=1000,json"`
	SKU           string                 `json:"sku" validate:"max=50"`
	CategoryID    string                 `json:"category_id" validate:"required"`
	Condition     string                 `json:"condition" validate:"required,oneof=new used refurbished"`
	SupplierID    *string                `json:"supplier_id"`
	Metadata      map[string]interface{} `json:"metadata"`
	Variants      []VariantInput         `json:"variants" validate:"dive"`
}

type UpdateProductInput struct {
	ID            string  `json:"-"`
	MerchantID    string  `json:"-"`
	Name          string  `json:"name" validate:"required,min=1,max=100"`
	Description   string  `json:"description" validate:"max=200"`
	Specification string  `json:"specification" validate:"omitempty,max=1000,json"`
	SKU           string  `json:"sku" validate:"required,max=50"`
	CategoryID    string  `json:"category_id" validate:"required"`
	Condition     string  `json:"condition" validate:"required,oneof=new used refurbished"`
	SupplierID    *string `json:"supplier_id"`
	IsActive      bool    `json:"is_active"`
	IsFeatured    bool    `json:"is_featured"`
}

type StorageLocationInput struct {
	ID            string `json:"-"`
	MerchantID    string `json:"-"`
	StorageRoomID string `json:"storage_room_id"`
	ShelfID       string `json:"shelf_id"`
}
