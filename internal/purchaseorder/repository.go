package purchaseorder

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	History(ctx context.Context, merchantID, productID string) ([]model.PurchaseOrderHistory, error)
}
