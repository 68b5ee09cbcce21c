package product

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product and returns the row read back. A nil row
	// with a nil error means the insert was accepted but nothing came back.
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, merchantID, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateStorageLocation(ctx context.Context, merchantID, id, roomID, shelfID string) error
	Delete(ctx context.Context, merchantID, id string) error

	// Check SKU uniqueness
	IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error)

	// CreateVariants inserts all rows in one statement.
	CreateVariants(ctx context.Context, variants []model.Variant) error
	// ListVariants returns every variant row of the product, children included.
	ListVariants(ctx context.Context, productID string) ([]model.Variant, error)
	RecomputeTotals(ctx context.Context, productID string) error
}
