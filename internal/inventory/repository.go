package inventory

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	FindVariant(ctx context.Context, merchantID, variantID string) (*model.Variant, error)

	// AdjustStockWithMovement writes v.Quantity, the movement row and the
	// product totals in one transaction.
	AdjustStockWithMovement(ctx context.Context, v *model.Variant, movement *model.StockMovement) error

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListLowStock(ctx context.Context, filters *dto.LowStockFilters) ([]dto.LowStockItem, int, error)
}
