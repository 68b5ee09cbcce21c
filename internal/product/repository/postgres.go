package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	query := `
        INSERT INTO products (
            id, merchant_id, branch_id, category_id, supplier_id, sku, name, description,
            cost_price, selling_price, stock_quantity, min_stock_level, total_quantity, total_value,
            attributes, metadata, is_active, is_featured, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :branch_id, :category_id, :supplier_id, :sku, :name, :description,
            :cost_price, :selling_price, :stock_quantity, :min_stock_level, :total_quantity, :total_value,
            :attributes, :metadata, :is_active, :is_featured, :created_at, :updated_at
        )
        RETURNING *
    `
	rows, err := r.DB.NamedQueryContext(ctx, query, p)
	if err != nil {
		return nil, errors.Wrap(err, "product.Create")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.Wrap(rows.Err(), "product.Create")
	}
	var created model.Product
	if err := rows.StructScan(&created); err != nil {
		return nil, errors.Wrap(err, "product.Create scan")
	}
	return &created, nil
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 AND merchant_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "product.FindByID")
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR sku ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "product.FindAll count")
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "product.FindAll count")
	}

	// Whitelisted columns only.
	orderBy := "created_at DESC"
	if f.SortBy != "" {
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "price":
			orderBy = "selling_price"
		case "stock":
			orderBy = "total_quantity"
		default:
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "product.FindAll prepare")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, errors.Wrap(err, "product.FindAll")
	}
	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            supplier_id = :supplier_id,
            sku = :sku,
            name = :name,
            description = :description,
            attributes = :attributes,
            is_active = :is_active,
            is_featured = :is_featured,
            updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return errors.Wrap(err, "product.Update")
}

func (r *PGRepository) UpdateStorageLocation(ctx context.Context, merchantID, id, roomID, shelfID string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE products
        SET storage_room_id = $3, shelf_id = $4, updated_at = NOW()
        WHERE id = $1 AND merchant_id = $2
    `, id, merchantID, roomID, shelfID)
	if err != nil {
		return errors.Wrap(err, "product.UpdateStorageLocation")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return errors.Wrap(err, "product.Delete")
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, merchantID, sku, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE merchant_id = $1 AND sku = $2`
	args := []interface{}{merchantID, sku}
	if excludeID != "" {
		query += ` AND id != $3`
		args = append(args, excludeID)
	}

	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, errors.Wrap(err, "product.IsSKUUnique")
	}
	return count == 0, nil
}

func (r *PGRepository) CreateVariants(ctx context.Context, variants []model.Variant) error {
	if len(variants) == 0 {
		return nil
	}
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
	_, err := r.DB.NamedExecContext(ctx, query, variants)
	return errors.Wrap(err, "product.CreateVariants")
}

func (r *PGRepository) ListVariants(ctx context.Context, productID string) ([]model.Variant, error) {
	var variants []model.Variant
	query := `
        SELECT * FROM product_variants
        WHERE product_id = $1
        ORDER BY is_primary DESC, created_at ASC
    `
	if err := r.DB.SelectContext(ctx, &variants, query, productID); err != nil {
		return nil, errors.Wrap(err, "product.ListVariants")
	}
	return variants, nil
}

func (r *PGRepository) RecomputeTotals(ctx context.Context, productID string) error {
	return errors.Wrap(postgres.RecomputeProductTotals(ctx, r.DB, productID), "product.RecomputeTotals")
}
