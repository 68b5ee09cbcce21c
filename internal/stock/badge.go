package stock

import (
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Badge struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Class string `json:"class"`
}

var (
	BadgeOut     = Badge{Code: "out-of-stock", Label: "Out of Stock", Class: "bg-red-100 text-red-700"}
	BadgeLow     = Badge{Code: "low-stock", Label: "Low Stock", Class: "bg-orange-100 text-orange-700"}
	BadgeInStock = Badge{Code: "in-stock", Label: "In Stock", Class: "bg-green-100 text-green-700"}
)

// BadgeFor classifies a single variant.
func BadgeFor(quantity, minQuantity int) Badge {
	switch {
	case quantity <= 0:
		return BadgeOut
	case quantity <= minQuantity:
		return BadgeLow
	default:
		return BadgeInStock
	}
}

// Markup is the unit profit as a percentage of cost. ok is false when cost is 0.
func Markup(costPrice, sellingPrice float64) (pct float64, ok bool) {
	if costPrice == 0 {
		return 0, false
	}
	return (sellingPrice - costPrice) / costPrice * 100, true
}

func MarkupText(costPrice, sellingPrice float64) string {
	pct, ok := Markup(costPrice, sellingPrice)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", pct)
}

type ProfitabilityRow struct {
	VariantID    string  `json:"variant_id"`
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	UnitProfit   float64 `json:"unit_profit"`
	Markup       string  `json:"markup"`
	StockValue   float64 `json:"stock_value"`
}

// Profitability builds the per-variant rows of the financials tab.
// name resolves the display name of each variant.
func Profitability(variants []model.Variant, name func(i int, v model.Variant) string) []ProfitabilityRow {
	rows := make([]ProfitabilityRow, 0, len(variants))
	for i, v := range variants {
		rows = append(rows, ProfitabilityRow{
			VariantID:    v.ID,
			Name:         name(i, v),
			SKU:          v.SKU,
			CostPrice:    v.CostPrice,
			SellingPrice: v.SellingPrice,
			UnitProfit:   v.SellingPrice - v.CostPrice,
			Markup:       MarkupText(v.CostPrice, v.SellingPrice),
			StockValue:   TotalRetailValue([]Line{LineOf(v)}),
		})
	}
	return rows
}

// PrimaryVariant picks the variant shown in the overview: the first one
// with stock, else the highest priced one when it has a price, else the first.
func PrimaryVariant(variants []model.Variant) *model.Variant {
	if len(variants) == 0 {
		return nil
	}
	for i := range variants {
		if variants[i].Quantity > 0 {
			return &variants[i]
		}
	}
	idx := make([]int, len(variants))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return variants[idx[a]].SellingPrice > variants[idx[b]].SellingPrice
	})
	if best := &variants[idx[0]]; best.SellingPrice > 0 {
		return best
	}
	return &variants[0]
}
