package image

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/image/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type UseCase interface {
	ListImages(ctx context.Context, merchantID, productID string) ([]model.ProductImage, error)
	AddImage(ctx context.Context, input *dto.AddImageInput) (*model.ProductImage, error)
	DeleteImage(ctx context.Context, merchantID, productID, imageID string) error
	SetPrimary(ctx context.Context, merchantID, productID, imageID string) error
}
