package dto

import "github.com/fekuna/omnipos-catalog-service/internal/stock"

// Reasons accepted for a manual stock adjustment.
var Reasons = []string{
	"purchase", "sale", "return", "damage", "expiry",
	"theft", "adjustment", "transfer", "audit", "other",
}

type AdjustStockInput struct {
	MerchantID    string               `json:"-"`
	UserID        string               `json:"-"`
	ProductID     string               `json:"-"`
	VariantID     string               `json:"variant_id" validate:"required"`
	Kind          stock.AdjustmentKind `json:"kind" validate:"required,oneof=in out set"`
	Quantity      int                  `json:"quantity"`
	Reason        string               `json:"reason"`
	Notes         string               `json:"notes" validate:"max=500"`
	Identifiers   []string             `json:"identifiers"`
	ReferenceType string               `json:"-"`
	ReferenceID   string               `json:"-"`

	// SoldChildID is the unit leaving with a sale. It is not counted
	// against the parent's new quantity.
	SoldChildID string `json:"-"`
}

// SaleInput is one line of a completed order.
type SaleInput struct {
	MerchantID string
	OrderID    string
	ProductID  string
	VariantID  string
	Quantity   int
}
