package dto

import (
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/stock"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
)

type ProductList struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
}

// CreateResult is returned once the product row exists. Failures in the
// variant or identifier steps that follow do not undo it; they are listed
// in Warnings.
type CreateResult struct {
	Product  *model.Product     `json:"product"`
	Variants []model.Variant    `json:"variants"`
	Warnings []apperrors.Notice `json:"warnings,omitempty"`
}

type SpecField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Overview struct {
	PrimaryVariant *model.Variant       `json:"primary_variant"`
	Category       *model.Category      `json:"category"`
	Condition      model.Condition      `json:"condition"`
	Specifications []SpecField          `json:"specifications"`
	Images         []model.ProductImage `json:"images"`
	QRPayload      string               `json:"qr_payload"`
}

type Financials struct {
	Analytics     stock.Analytics          `json:"analytics"`
	Profitability []stock.ProfitabilityRow `json:"profitability"`
}

type InventoryRow struct {
	VariantID   string           `json:"variant_id"`
	Name        string           `json:"name"`
	Quantity    int              `json:"quantity"`
	MinQuantity int              `json:"min_quantity"`
	Badge       stock.Badge      `json:"badge"`
	Level       stock.LevelState `json:"level"`
}

type Inventory struct {
	Status        stock.Status   `json:"status"`
	TotalQuantity int            `json:"total_quantity"`
	TotalValue    float64        `json:"total_value"`
	StorageRoomID *string        `json:"storage_room_id"`
	ShelfID       *string        `json:"shelf_id"`
	Rows          []InventoryRow `json:"rows"`
}

type VariantRow struct {
	Variant     model.Variant       `json:"variant"`
	DisplayName string              `json:"display_name"`
	Identifier  string              `json:"identifier,omitempty"`
	Source      *variantview.Badge  `json:"source,omitempty"`
	Attributes  []variantview.Field `json:"attributes"`
	Badge       stock.Badge         `json:"badge"`
	Children    int                 `json:"children"`
}

type TradeIn struct {
	IsTradeIn  bool     `json:"is_trade_in"`
	VariantIDs []string `json:"variant_ids"`
}

type History struct {
	Orders []model.PurchaseOrderHistory `json:"orders"`
	Stats  *model.PurchaseOrderStats    `json:"stats"`
}

// Detail is the product detail read model, one field per tab.
type Detail struct {
	Product    *model.Product `json:"product"`
	Overview   Overview       `json:"overview"`
	Financials Financials     `json:"financials"`
	Inventory  Inventory      `json:"inventory"`
	Variants   []VariantRow   `json:"variants"`
	TradeIn    TradeIn        `json:"trade_in"`
	History    History        `json:"history"`
}

type QRCode struct {
	Payload string `json:"payload"`
	URL     string `json:"url"`
	PNG     []byte `json:"-"`
}

type ExportVariant struct {
	Name         string                 `json:"name"`
	SKU          string                 `json:"sku"`
	CostPrice    float64                `json:"costPrice"`
	SellingPrice float64                `json:"sellingPrice"`
	Quantity     int                    `json:"quantity"`
	MinQuantity  int                    `json:"minQuantity"`
	Attributes   map[string]interface{} `json:"attributes"`
}

// ExportDocument is the JSON written by the export action.
type ExportDocument struct {
	Name          string                 `json:"name"`
	SKU           string                 `json:"sku"`
	CategoryID    string                 `json:"categoryId"`
	Condition     string                 `json:"condition"`
	Description   string                 `json:"description"`
	Specification string                 `json:"specification"`
	Price         float64                `json:"price"`
	CostPrice     float64                `json:"costPrice"`
	StockQuantity int                    `json:"stockQuantity"`
	MinStockLevel int                    `json:"minStockLevel"`
	StorageRoomID string                 `json:"storageRoomId"`
	ShelfID       string                 `json:"shelfId"`
	Images        []string               `json:"images"`
	Metadata      map[string]interface{} `json:"metadata"`
	Variants      []ExportVariant        `json:"variants"`
	ExportedAt    time.Time              `json:"exportedAt"`
}

type Export struct {
	Filename string
	Body     []byte
}
