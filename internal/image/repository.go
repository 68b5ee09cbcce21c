package image

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type Repository interface {
	ListByProduct(ctx context.Context, merchantID, productID string) ([]model.ProductImage, error)
	FindByID(ctx context.Context, merchantID, id string) (*model.ProductImage, error)
	Create(ctx context.Context, img *model.ProductImage) error
	Delete(ctx context.Context, id string) error
	SetPrimary(ctx context.Context, productID, imageID string) error
}
