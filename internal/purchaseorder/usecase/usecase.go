package usecase

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/purchaseorder"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type purchaseOrderUseCase struct {
	repo   purchaseorder.Repository
	logger logger.ZapLogger
}

func NewPurchaseOrderUseCase(repo purchaseorder.Repository, log logger.ZapLogger) purchaseorder.UseCase {
	return &purchaseOrderUseCase{repo: repo, logger: log}
}

func (uc *purchaseOrderUseCase) History(ctx context.Context, merchantID, productID string) ([]model.PurchaseOrderHistory, error) {
	rows, err := uc.repo.History(ctx, merchantID, productID)
	if err != nil {
		uc.logger.Error("failed to load purchase history", zap.String("product_id", productID), zap.Error(err))
		return nil, apperrors.FromBackend(err, nil)
	}
	return rows, nil
}

func (uc *purchaseOrderUseCase) Stats(ctx context.Context, merchantID, productID string) (*model.PurchaseOrderStats, error) {
	rows, err := uc.History(ctx, merchantID, productID)
	if err != nil {
		return nil, err
	}
	return Summarize(rows), nil
}

// Summarize aggregates history rows, which are expected newest first.
// AverageCost is weighted by ordered quantity.
func Summarize(rows []model.PurchaseOrderHistory) *model.PurchaseOrderStats {
	stats := &model.PurchaseOrderStats{Suppliers: []string{}}
	if len(rows) == 0 {
		return stats
	}

	orders := map[string]struct{}{}
	suppliers := map[string]struct{}{}
	spent := decimal.Zero
	latest := rows[0]
	for _, row := range rows {
		orders[row.OrderID] = struct{}{}
		stats.OrderedUnits += row.Quantity
		stats.ReceivedUnits += row.ReceivedQuantity
		spent = spent.Add(decimal.NewFromFloat(row.CostPrice).Mul(decimal.NewFromInt(int64(row.Quantity))))
		if row.SupplierName != "" {
			if _, seen := suppliers[row.SupplierName]; !seen {
				suppliers[row.SupplierName] = struct{}{}
				stats.Suppliers = append(stats.Suppliers, row.SupplierName)
			}
		}
		if row.OrderDate.After(latest.OrderDate) {
			latest = row
		}
	}

	stats.Orders = len(orders)
	stats.LastCost = latest.CostPrice
	if stats.OrderedUnits > 0 {
		stats.AverageCost = spent.Div(decimal.NewFromInt(int64(stats.OrderedUnits))).Round(2).InexactFloat64()
	}
	return stats
}
