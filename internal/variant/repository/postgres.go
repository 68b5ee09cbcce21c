package repository

import (
	"context"
	"database/sql"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Variant, error) {
	var v model.Variant
	query := `
        SELECT v.* FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE v.id = $1 AND p.merchant_id = $2
        LIMIT 1
    `
	if err := r.DB.GetContext(ctx, &v, query, id, merchantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "variant.FindByID")
	}
	return &v, nil
}

func (r *PGRepository) ListByProduct(ctx context.Context, merchantID, productID string) ([]model.Variant, error) {
	var variants []model.Variant
	query := `
        SELECT v.* FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE v.product_id = $1 AND p.merchant_id = $2
          AND v.variant_type IN ('standard', 'parent')
        ORDER BY v.is_primary DESC, v.created_at ASC
    `
	if err := r.DB.SelectContext(ctx, &variants, query, productID, merchantID); err != nil {
		return nil, errors.Wrap(err, "variant.ListByProduct")
	}
	return variants, nil
}

func (r *PGRepository) ListChildren(ctx context.Context, parentID string) ([]model.Variant, error) {
	var children []model.Variant
	query := `
        SELECT * FROM product_variants
        WHERE parent_variant_id = $1 AND variant_type = 'imei_child'
        ORDER BY created_at ASC
    `
	if err := r.DB.SelectContext(ctx, &children, query, parentID); err != nil {
		return nil, errors.Wrap(err, "variant.ListChildren")
	}
	return children, nil
}

func (r *PGRepository) Create(ctx context.Context, v *model.Variant) error {
	query := `
        INSERT INTO product_variants (
            id, product_id, branch_id, parent_variant_id, name, variant_name, sku,
            cost_price, unit_price, selling_price, quantity, min_quantity, max_quantity,
            variant_attributes, attributes, is_primary, is_active, is_parent, variant_type,
            created_at, updated_at
        )
        VALUES (
            :id, :product_id, :branch_id, :parent_variant_id, :name, :variant_name, :sku,
            :cost_price, :unit_price, :selling_price, :quantity, :min_quantity, :max_quantity,
            :variant_attributes, :attributes, :is_primary, :is_active, :is_parent, :variant_type,
            :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	return errors.Wrap(err, "variant.Create")
}

func (r *PGRepository) Update(ctx context.Context, v *model.Variant) error {
	query := `
        UPDATE product_variants
        SET name = :name,
            variant_name = :variant_name,
            sku = :sku,
            cost_price = :cost_price,
            unit_price = :unit_price,
            selling_price = :selling_price,
            min_quantity = :min_quantity,
            max_quantity = :max_quantity,
            variant_attributes = :variant_attributes,
            attributes = :attributes,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND product_id = :product_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	return errors.Wrap(err, "variant.Update")
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	return errors.Wrap(err, "variant.Delete")
}

func (r *PGRepository) CountMovements(ctx context.Context, variantID string) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM stock_movements WHERE variant_id = $1`, variantID)
	return count, errors.Wrap(err, "variant.CountMovements")
}

func (r *PGRepository) ConvertToParent(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE product_variants
        SET is_parent = TRUE, variant_type = 'parent', updated_at = NOW()
        WHERE id = $1
    `, id)
	return errors.Wrap(err, "variant.ConvertToParent")
}

// IdentifierExists looks the value up as an IMEI or serial number on the
// merchant's variants, case-insensitively.
func (r *PGRepository) IdentifierExists(ctx context.Context, merchantID, value string) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM product_variants pv
            JOIN products p ON p.id = pv.product_id
            WHERE p.merchant_id = $1
              AND (lower(pv.variant_attributes->>'imei') = lower($2)
                OR lower(pv.variant_attributes->>'serial_number') = lower($2))
        )
    `
	err := r.DB.GetContext(ctx, &exists, query, merchantID, value)
	return exists, errors.Wrap(err, "variant.IdentifierExists")
}

func (r *PGRepository) MarkChildSold(ctx context.Context, childID, saleID string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE product_variants
        SET quantity = 0,
            is_active = FALSE,
            variant_attributes = variant_attributes
                || jsonb_build_object('sold_at', NOW(), 'sale_id', $2::text),
            updated_at = NOW()
        WHERE id = $1 AND variant_type = 'imei_child'
    `, childID, saleID)
	return errors.Wrap(err, "variant.MarkChildSold")
}

// RetireChildren deactivates units dropped by a stock reduction. The rows
// stay for history.
func (r *PGRepository) RetireChildren(ctx context.Context, parentID string, childIDs []string) error {
	_, err := r.DB.ExecContext(ctx, `
        UPDATE product_variants
        SET quantity = 0,
            is_active = FALSE,
            variant_attributes = variant_attributes || jsonb_build_object('retired_at', NOW()),
            updated_at = NOW()
        WHERE parent_variant_id = $1 AND id = ANY($2) AND variant_type = 'imei_child'
    `, parentID, pq.Array(childIDs))
	return errors.Wrap(err, "variant.RetireChildren")
}

func (r *PGRepository) RecomputeTotals(ctx context.Context, productID string) error {
	return errors.Wrap(postgres.RecomputeProductTotals(ctx, r.DB, productID), "variant.RecomputeTotals")
}
