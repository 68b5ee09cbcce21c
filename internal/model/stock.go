package model

import "time"

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementSale       MovementType = "sale"
)

type StockMovement struct {
	ID               string       `db:"id" json:"id"`
	MerchantID       string       `db:"merchant_id" json:"merchant_id"`
	ProductID        string       `db:"product_id" json:"product_id"`
	VariantID        string       `db:"variant_id" json:"variant_id"`
	MovementType     MovementType `db:"movement_type" json:"movement_type"`
	Quantity         int          `db:"quantity" json:"quantity"`
	PreviousQuantity int          `db:"previous_quantity" json:"previous_quantity"`
	NewQuantity      int          `db:"new_quantity" json:"new_quantity"`
	Reason           string       `db:"reason" json:"reason"`
	Notes            string       `db:"notes" json:"notes"`
	ReferenceType    *string      `db:"reference_type" json:"reference_type"`
	ReferenceID      *string      `db:"reference_id" json:"reference_id"`
	CreatedBy        *string      `db:"created_by" json:"created_by"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
}

type StorageRoom struct {
	ID       string `db:"id" json:"id"`
	BranchID string `db:"branch_id" json:"branch_id"`
	Name     string `db:"name" json:"name"`
	Code     string `db:"code" json:"code"`
}

type Shelf struct {
	ID            string `db:"id" json:"id"`
	StorageRoomID string `db:"storage_room_id" json:"storage_room_id"`
	Name          string `db:"name" json:"name"`
	Code          string `db:"code" json:"code"`
}
