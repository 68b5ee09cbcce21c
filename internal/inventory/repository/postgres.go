package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindVariant(ctx context.Context, merchantID, variantID string) (*model.Variant, error) {
	var v model.Variant
	query := `
        SELECT v.* FROM product_variants v
        JOIN products p ON p.id = v.product_id
        WHERE v.id = $1 AND p.merchant_id = $2
    `
	if err := r.DB.GetContext(ctx, &v, query, variantID, merchantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "inventory.FindVariant")
	}
	return &v, nil
}

func (r *PGRepository) AdjustStockWithMovement(ctx context.Context, v *model.Variant, movement *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "inventory.AdjustStockWithMovement begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        UPDATE product_variants
        SET quantity = $1, updated_at = NOW()
        WHERE id = $2
    `, v.Quantity, v.ID)
	if err != nil {
		return errors.Wrap(err, "failed to update variant quantity")
	}

	insertMovement := `
        INSERT INTO stock_movements (
            id, merchant_id, product_id, variant_id, movement_type,
            quantity, previous_quantity, new_quantity, reason, notes,
            reference_type, reference_id, created_by, created_at
        )
        VALUES (
            :id, :merchant_id, :product_id, :variant_id, :movement_type,
            :quantity, :previous_quantity, :new_quantity, :reason, :notes,
            :reference_type, :reference_id, :created_by, :created_at
        )
    `
	if _, err = tx.NamedExecContext(ctx, insertMovement, movement); err != nil {
		return errors.Wrap(err, "failed to log stock movement")
	}

	if err = postgres.RecomputeProductTotals(ctx, tx, v.ProductID); err != nil {
		return errors.Wrap(err, "failed to recompute product totals")
	}
	return errors.Wrap(tx.Commit(), "inventory.AdjustStockWithMovement commit")
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.VariantID != "" {
		conditions = append(conditions, "variant_id = :variant_id")
		args["variant_id"] = f.VariantID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < :end_date")
		args["end_date"] = *f.EndDate
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM stock_movements"+whereClause, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListMovements count")
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListMovements count")
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListMovements prepare")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListMovements")
	}
	return items, count, nil
}

// ListLowStock returns active sellable variants whose quantity is at or
// below their minimum. Unit rows are excluded.
func (r *PGRepository) ListLowStock(ctx context.Context, f *dto.LowStockFilters) ([]dto.LowStockItem, int, error) {
	var items []dto.LowStockItem
	var count int

	conditions := []string{
		"p.merchant_id = :merchant_id",
		"v.is_active",
		"v.variant_type <> 'imei_child'",
		"v.quantity <= v.min_quantity",
	}
	args := map[string]interface{}{"merchant_id": f.MerchantID}
	if f.ProductID != "" {
		conditions = append(conditions, "v.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	from := " FROM product_variants v JOIN products p ON p.id = v.product_id WHERE " + strings.Join(conditions, " AND ")

	countQuery, countArgs, err := sqlx.Named("SELECT count(*)"+from, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListLowStock count")
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListLowStock count")
	}

	query := "SELECT v.*, p.name AS product_name" + from + " ORDER BY v.quantity ASC, p.name ASC"
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListLowStock prepare")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, errors.Wrap(err, "inventory.ListLowStock")
	}
	return items, count, nil
}
