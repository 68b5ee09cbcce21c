package dto

type AddVariantInput struct {
	MerchantID   string                 `json:"-"`
	ProductID    string                 `json:"-"`
	BranchID     string                 `json:"-"`
	Name         string                 `json:"name" validate:"required,max=100"`
	SKU          string                 `json:"sku" validate:"required,max=50"`
	CostPrice    float64                `json:"cost_price" validate:"gte=0"`
	SellingPrice float64                `json:"selling_price" validate:"gte=0"`
	Quantity     int                    `json:"quantity" validate:"gte=0"`
	MinQuantity  *int                   `json:"min_quantity" validate:"omitempty,gte=0"`
	MaxQuantity  *int                   `json:"max_quantity" validate:"omitempty,gte=0"`
	Attributes   map[string]interface{} `json:"attributes"`
}

type UpdateVariantInput struct {
	ID           string                 `json:"-"`
	MerchantID   string                 `json:"-"`
	ProductID    string                 `json:"-"`
	Name         string                 `json:"name" validate:"required,max=100"`
	SKU          string                 `json:"sku" validate:"required,max=50"`
	CostPrice    float64                `json:"cost_price" validate:"gte=0"`
	SellingPrice float64                `json:"selling_price" validate:"gte=0"`
	MinQuantity  int                    `json:"min_quantity" validate:"gte=0"`
	MaxQuantity  *int                   `json:"max_quantity" validate:"omitempty,gte=0"`
	Attributes   map[string]interface{} `json:"attributes"`
	IsActive     *bool                  `json:"is_active"`
}

// ChildEntry is one physical unit to register under a parent variant.
type ChildEntry struct {
	IMEI         string   `json:"imei" validate:"required_without=SerialNumber,max=64"`
	SerialNumber string   `json:"serial_number" validate:"max=64"`
	CostPrice    *float64 `json:"cost_price" validate:"omitempty,gte=0"`
	SellingPrice *float64 `json:"selling_price" validate:"omitempty,gte=0"`
	Condition    string   `json:"condition" validate:"omitempty,oneof=new used refurbished"`
	Source       string   `json:"source"`
}

// Identifier is the value checked for uniqueness: the IMEI, or the serial
// number when no IMEI was given.
func (e ChildEntry) Identifier() string {
	if e.IMEI != "" {
		return e.IMEI
	}
	return e.SerialNumber
}

type RegisterChildrenInput struct {
	MerchantID string       `json:"-"`
	ProductID  string       `json:"-"`
	ParentID   string       `json:"-"`
	Entries    []ChildEntry `json:"entries" validate:"required,min=1,dive"`
}
