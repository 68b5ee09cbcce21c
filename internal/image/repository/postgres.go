package repository

import (
	"context"
	"database/sql"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ListByProduct(ctx context.Context, merchantID, productID string) ([]model.ProductImage, error) {
	var images []model.ProductImage
	query := `
        SELECT i.* FROM product_images i
        JOIN products p ON p.id = i.product_id
        WHERE i.product_id = $1 AND p.merchant_id = $2
        ORDER BY i.is_primary DESC, i.created_at ASC
    `
	if err := r.DB.SelectContext(ctx, &images, query, productID, merchantID); err != nil {
		return nil, errors.Wrap(err, "image.ListByProduct")
	}
	return images, nil
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.ProductImage, error) {
	var img model.ProductImage
	query := `
        SELECT i.* FROM product_images i
        JOIN products p ON p.id = i.product_id
        WHERE i.id = $1 AND p.merchant_id = $2
        LIMIT 1
    `
	if err := r.DB.GetContext(ctx, &img, query, id, merchantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "image.FindByID")
	}
	return &img, nil
}

func (r *PGRepository) Create(ctx context.Context, img *model.ProductImage) error {
	query := `
        INSERT INTO product_images (id, product_id, url, thumbnail_url, file_name, is_primary, created_at)
        VALUES (:id, :product_id, :url, :thumbnail_url, :file_name, :is_primary, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, img)
	return errors.Wrap(err, "image.Create")
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	return errors.Wrap(err, "image.Delete")
}

// SetPrimary clears the flag on the product's other images in the same transaction.
func (r *PGRepository) SetPrimary(ctx context.Context, productID, imageID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "image.SetPrimary begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE product_images SET is_primary = (id = $2) WHERE product_id = $1`, productID, imageID); err != nil {
		return errors.Wrap(err, "image.SetPrimary")
	}
	return errors.Wrap(tx.Commit(), "image.SetPrimary commit")
}
