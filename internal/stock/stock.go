package stock

import (
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/shopspring/decimal"
)

// Line is the numeric part of a variant the aggregates work on.
type Line struct {
	Quantity     int     `json:"quantity"`
	MinQuantity  int     `json:"min_quantity"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
}

func LineOf(v model.Variant) Line {
	return Line{
		Quantity:     v.Quantity,
		MinQuantity:  v.MinQuantity,
		CostPrice:    v.CostPrice,
		SellingPrice: v.SellingPrice,
	}
}

func LinesFrom(variants []model.Variant) []Line {
	lines := make([]Line, len(variants))
	for i, v := range variants {
		lines[i] = LineOf(v)
	}
	return lines
}

type Status string

const (
	StatusOut Status = "out"
	StatusLow Status = "low"
	StatusOK  Status = "ok"
)

func units(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

func TotalStock(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += units(l.Quantity)
	}
	return total
}

func valueOf(lines []Line, price func(Line) float64) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		q := decimal.NewFromInt(int64(units(l.Quantity)))
		sum = sum.Add(q.Mul(decimal.NewFromFloat(price(l))))
	}
	return sum.InexactFloat64()
}

func TotalCostValue(lines []Line) float64 {
	return valueOf(lines, func(l Line) float64 { return l.CostPrice })
}

func TotalRetailValue(lines []Line) float64 {
	return valueOf(lines, func(l Line) float64 { return l.SellingPrice })
}

func PotentialProfit(lines []Line) float64 {
	return TotalRetailValue(lines) - TotalCostValue(lines)
}

// ProfitMargin is profit as a percentage of retail value, 0 when there is no retail value.
func ProfitMargin(lines []Line) float64 {
	retail := TotalRetailValue(lines)
	if retail == 0 {
		return 0
	}
	return PotentialProfit(lines) / retail * 100
}

// StatusOf classifies the product as a whole. A product is low when its
// total is within the summed thresholds or any variant sits at or below
// its own non-zero threshold.
func StatusOf(lines []Line) Status {
	total := TotalStock(lines)
	if total == 0 {
		return StatusOut
	}
	minSum := 0
	for _, l := range lines {
		minSum += units(l.MinQuantity)
		if l.MinQuantity > 0 && units(l.Quantity) <= l.MinQuantity {
			return StatusLow
		}
	}
	if total <= minSum {
		return StatusLow
	}
	return StatusOK
}

type Analytics struct {
	TotalStock       int     `json:"total_stock"`
	TotalCostValue   float64 `json:"total_cost_value"`
	TotalRetailValue float64 `json:"total_retail_value"`
	PotentialProfit  float64 `json:"potential_profit"`
	ProfitMargin     float64 `json:"profit_margin"`
	StockStatus      Status  `json:"stock_status"`
}

func Summarize(lines []Line) Analytics {
	cost := TotalCostValue(lines)
	retail := TotalRetailValue(lines)
	margin := 0.0
	if retail != 0 {
		margin = (retail - cost) / retail * 100
	}
	return Analytics{
		TotalStock:       TotalStock(lines),
		TotalCostValue:   cost,
		TotalRetailValue: retail,
		PotentialProfit:  retail - cost,
		ProfitMargin:     margin,
		StockStatus:      StatusOf(lines),
	}
}
