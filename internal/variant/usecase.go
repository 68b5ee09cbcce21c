package variant

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
)

type UseCase interface {
	ListVariants(ctx context.Context, merchantID, productID string) ([]model.Variant, error)
	AddVariant(ctx context.Context, input *dto.AddVariantInput) (*model.Variant, error)
	UpdateVariant(ctx context.Context, input *dto.UpdateVariantInput) (*model.Variant, error)
	DeleteVariant(ctx context.Context, merchantID, productID, variantID string) error

	// Child identifiers (IMEI/serial units).
	RegisterChildren(ctx context.Context, input *dto.RegisterChildrenInput) (*dto.ChildrenResult, error)
	IdentifierExists(ctx context.Context, merchantID, value string) (bool, error)
	ListChildren(ctx context.Context, merchantID, parentID string) ([]model.Variant, error)
	MarkChildSold(ctx context.Context, merchantID, childID, saleID string) error
	RetireChildren(ctx context.Context, merchantID, parentID string, childIDs []string) error
}
