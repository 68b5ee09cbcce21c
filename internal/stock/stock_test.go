package stock

import (
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregates(t *testing.T) {
	lines := []Line{
		{Quantity: 3, MinQuantity: 1, CostPrice: 100, SellingPrice: 150},
		{Quantity: 2, MinQuantity: 1, CostPrice: 0.1, SellingPrice: 0.3},
		{Quantity: -4, MinQuantity: 0, CostPrice: 10, SellingPrice: 20},
	}

	assert.Equal(t, 5, TotalStock(lines))
	assert.InDelta(t, 300.2, TotalCostValue(lines), 1e-9)
	assert.InDelta(t, 450.6, TotalRetailValue(lines), 1e-9)
	assert.Equal(t, TotalRetailValue(lines)-TotalCostValue(lines), PotentialProfit(lines))

	t.Run("empty", func(t *testing.T) {
		a := Summarize(nil)
		assert.Equal(t, 0, a.TotalStock)
		assert.Equal(t, 0.0, a.ProfitMargin)
		assert.Equal(t, StatusOut, a.StockStatus)
	})

	t.Run("margin without retail value", func(t *testing.T) {
		free := []Line{{Quantity: 4, CostPrice: 5}}
		assert.Equal(t, 0.0, ProfitMargin(free))
		assert.Equal(t, -20.0, PotentialProfit(free))
	})

	t.Run("summarize agrees with the single aggregates", func(t *testing.T) {
		a := Summarize(lines)
		assert.Equal(t, TotalStock(lines), a.TotalStock)
		assert.Equal(t, PotentialProfit(lines), a.PotentialProfit)
		assert.InDelta(t, ProfitMargin(lines), a.ProfitMargin, 1e-9)
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  Status
	}{
		{"no stock", []Line{{Quantity: 0, MinQuantity: 2}}, StatusOut},
		{"zero thresholds", []Line{{Quantity: 3, MinQuantity: 0}, {Quantity: 0, MinQuantity: 0}, {MinQuantity: 0}}, StatusOK},
		{"single variant breaches", []Line{{Quantity: 50, MinQuantity: 2}, {Quantity: 1, MinQuantity: 2}}, StatusLow},
		{"total within thresholds", []Line{{Quantity: 3, MinQuantity: 5}}, StatusLow},
		{"healthy", []Line{{Quantity: 10, MinQuantity: 2}, {Quantity: 8, MinQuantity: 2}}, StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.lines))
		})
	}
}

func TestBadgeAndMarkup(t *testing.T) {
	assert.Equal(t, BadgeOut, BadgeFor(0, 2))
	assert.Equal(t, BadgeLow, BadgeFor(2, 2))
	assert.Equal(t, BadgeInStock, BadgeFor(3, 2))

	_, ok := Markup(0, 100)
	assert.False(t, ok)
	assert.Equal(t, "N/A", MarkupText(0, 100))
	assert.Equal(t, "50.0%", MarkupText(100, 150))
}

func TestProfitability(t *testing.T) {
	variants := []model.Variant{
		{SKU: "A-1", CostPrice: 0, SellingPrice: 10, Quantity: 1},
		{SKU: "A-2", CostPrice: 0, SellingPrice: 20, Quantity: 2},
	}
	rows := Profitability(variants, func(i int, v model.Variant) string { return v.SKU })
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "N/A", r.Markup)
	}
	assert.Equal(t, 20.0, rows[1].UnitProfit)
	assert.Equal(t, 40.0, rows[1].StockValue)
}

func TestPrimaryVariant(t *testing.T) {
	assert.Nil(t, PrimaryVariant(nil))

	inStock := []model.Variant{{SKU: "a", SellingPrice: 99}, {SKU: "b", Quantity: 1}, {SKU: "c", Quantity: 5}}
	assert.Equal(t, "b", PrimaryVariant(inStock).SKU)

	priced := []model.Variant{{SKU: "a", SellingPrice: 10}, {SKU: "b", SellingPrice: 30}, {SKU: "c", SellingPrice: 30}}
	assert.Equal(t, "b", PrimaryVariant(priced).SKU)

	unpriced := []model.Variant{{SKU: "a"}, {SKU: "b"}}
	assert.Equal(t, "a", PrimaryVariant(unpriced).SKU)
}

func TestNewLevel(t *testing.T) {
	assert.Equal(t, 15, NewLevel(10, AdjustIn, 5))
	assert.Equal(t, 0, NewLevel(3, AdjustOut, 5))
	assert.Equal(t, 1, NewLevel(6, AdjustOut, 5))
	assert.Equal(t, 7, NewLevel(3, AdjustSet, 7))
	assert.False(t, AdjustmentKind("transfer").Valid())

	max := 20
	assert.Equal(t, LevelLow, Level(2, 2, &max))
	assert.Equal(t, LevelHigh, Level(20, 2, &max))
	assert.Equal(t, LevelNormal, Level(20, 2, nil))
}
