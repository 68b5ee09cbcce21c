package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*dto.CreateResult, error)
	GetProduct(ctx context.Context, merchantID, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, merchantID, id string) error
	UpdateStorageLocation(ctx context.Context, input *dto.StorageLocationInput) error

	// Read models
	GetProductDetail(ctx context.Context, merchantID, id string) (*dto.Detail, error)
	QRCode(ctx context.Context, merchantID, id string) (*dto.QRCode, error)
	Export(ctx context.Context, merchantID, id string) (*dto.Export, error)
}
