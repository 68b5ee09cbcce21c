package variant

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, merchantID, id string) (*model.Variant, error)
	// ListByProduct returns standard and parent variants, children excluded.
	ListByProduct(ctx context.Context, merchantID, productID string) ([]model.Variant, error)
	ListChildren(ctx context.Context, parentID string) ([]model.Variant, error)
	Create(ctx context.Context, v *model.Variant) error
	Update(ctx context.Context, v *model.Variant) error
	Delete(ctx context.Context, id string) error
	CountMovements(ctx context.Context, variantID string) (int, error)
	ConvertToParent(ctx context.Context, id string) error
	IdentifierExists(ctx context.Context, merchantID, value string) (bool, error)
	MarkChildSold(ctx context.Context, childID, saleID string) error
	RetireChildren(ctx context.Context, parentID string, childIDs []string) error
	RecomputeTotals(ctx context.Context, productID string) error
}
