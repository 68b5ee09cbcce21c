package model

type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionUsed        Condition = "used"
	ConditionRefurbished Condition = "refurbished"
)

type Product struct {
	BaseModel
	MerchantID    string    `db:"merchant_id" json:"merchant_id"`
	BranchID      *string   `db:"branch_id" json:"branch_id"`
	CategoryID    *string   `db:"category_id" json:"category_id"`
	SupplierID    *string   `db:"supplier_id" json:"supplier_id"`
	StorageRoomID *string   `db:"storage_room_id" json:"storage_room_id"`
	ShelfID       *string   `db:"shelf_id" json:"shelf_id"`
	SKU           string    `db:"sku" json:"sku"`
	Name          string    `db:"name" json:"name"`
	Description   *string   `db:"description" json:"description"`
	CostPrice     float64   `db:"cost_price" json:"cost_price"`
	SellingPrice  float64   `db:"selling_price" json:"selling_price"`
	StockQuantity int       `db:"stock_quantity" json:"stock_quantity"`
	MinStockLevel int       `db:"min_stock_level" json:"min_stock_level"`
	TotalQuantity int       `db:"total_quantity" json:"total_quantity"`
	TotalValue    float64   `db:"total_value" json:"total_value"`
	Attributes    JSONMap   `db:"attributes" json:"attributes"`
	Metadata      JSONMap   `db:"metadata" json:"metadata"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	IsFeatured    bool      `db:"is_featured" json:"is_featured"`
	Variants      []Variant `db:"-" json:"variants"`
	Category      *Category `db:"-" json:"category"`
}

// Condition reads the condition stored in the product attributes.
func (p *Product) Condition() Condition {
	return Condition(p.Attributes.String("condition"))
}

// Specification returns the raw specification text stored on the product.
func (p *Product) Specification() string {
	return p.Attributes.String("specification")
}

const (
	VariantTypeStandard = "standard"
	VariantTypeParent   = "parent"
	VariantTypeChild    = "imei_child"
)

type Variant struct {
	BaseModel
	ProductID         string  `db:"product_id" json:"product_id"`
	BranchID          *string `db:"branch_id" json:"branch_id"`
	ParentVariantID   *string `db:"parent_variant_id" json:"parent_variant_id"`
	Name              string  `db:"name" json:"name"`
	VariantName       string  `db:"variant_name" json:"variant_name"`
	SKU               string  `db:"sku" json:"sku"`
	CostPrice         float64 `db:"cost_price" json:"cost_price"`
	UnitPrice         float64 `db:"unit_price" json:"unit_price"`
	SellingPrice      float64 `db:"selling_price" json:"selling_price"`
	Quantity          int     `db:"quantity" json:"quantity"`
	MinQuantity       int     `db:"min_quantity" json:"min_quantity"`
	MaxQuantity       *int    `db:"max_quantity" json:"max_quantity"`
	VariantAttributes JSONMap `db:"variant_attributes" json:"variant_attributes"`
	Attributes        JSONMap `db:"attributes" json:"attributes"`
	IsPrimary         bool    `db:"is_primary" json:"is_primary"`
	IsActive          bool    `db:"is_active" json:"is_active"`
	IsParent          bool    `db:"is_parent" json:"is_parent"`
	VariantType       string  `db:"variant_type" json:"variant_type"`
}

// Attr looks a key up in attributes first, then variant_attributes.
func (v *Variant) Attr(key string) interface{} {
	if val, ok := v.Attributes[key]; ok && val != nil {
		return val
	}
	if val, ok := v.VariantAttributes[key]; ok && val != nil {
		return val
	}
	return nil
}

// AttrString is Attr restricted to non-empty strings.
func (v *Variant) AttrString(key string) string {
	if s, ok := v.Attr(key).(string); ok {
		return s
	}
	return ""
}

// MergedAttributes returns variant_attributes overlaid with attributes.
func (v *Variant) MergedAttributes() JSONMap {
	out := JSONMap{}
	for k, val := range v.VariantAttributes {
		out[k] = val
	}
	for k, val := range v.Attributes {
		out[k] = val
	}
	return out
}
