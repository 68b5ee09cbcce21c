package model

import "time"

// PurchaseOrderHistory is one purchase-order line that received this product.
type PurchaseOrderHistory struct {
	OrderID          string    `db:"order_id" json:"order_id"`
	OrderNumber      string    `db:"order_number" json:"order_number"`
	SupplierName     string    `db:"supplier_name" json:"supplier_name"`
	VariantID        *string   `db:"variant_id" json:"variant_id"`
	Quantity         int       `db:"quantity" json:"quantity"`
	ReceivedQuantity int       `db:"received_quantity" json:"received_quantity"`
	CostPrice        float64   `db:"cost_price" json:"cost_price"`
	Currency         string    `db:"currency" json:"currency"`
	Status           string    `db:"status" json:"status"`
	OrderDate        time.Time `db:"order_date" json:"order_date"`
}

// PurchaseOrderStats summarizes a product's purchase history.
type PurchaseOrderStats struct {
	Orders        int      `json:"orders"`
	OrderedUnits  int      `json:"ordered_units"`
	ReceivedUnits int      `json:"received_units"`
	AverageCost   float64  `json:"average_cost"`
	LastCost      float64  `json:"last_cost"`
	Suppliers     []string `json:"suppliers"`
}
