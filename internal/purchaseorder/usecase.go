package purchaseorder

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	History(ctx context.Context, merchantID, productID string) ([]model.PurchaseOrderHistory, error)
	Stats(ctx context.Context, merchantID, productID string) (*model.PurchaseOrderStats, error)
}
