package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
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

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, merchant_id, parent_id, name, description, color, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :merchant_id, :parent_id, :name, :description, :color, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return errors.Wrap(err, "category.Create")
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE id = $1 AND merchant_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &category, query, id, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "category.FindByID")
	}
	return &category, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.MerchantID != "" {
		conditions = append(conditions, "merchant_id = :merchant_id")
		args["merchant_id"] = f.MerchantID
	}
	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = :parent_id")
			args["parent_id"] = *f.ParentID
		}
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM categories"+whereClause, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "category.FindAll count")
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, errors.Wrap(err, "category.FindAll count")
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY sort_order ASC, name ASC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "category.FindAll")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, 0, errors.Wrap(err, "category.FindAll")
	}
	return categories, count, nil
}

func (r *PGRepository) ListActive(ctx context.Context, merchantID string) ([]model.Category, error) {
	var categories []model.Category
	query := `SELECT * FROM categories WHERE merchant_id = $1 AND is_active = true ORDER BY sort_order ASC, name ASC`
	if err := r.DB.SelectContext(ctx, &categories, query, merchantID); err != nil {
		return nil, errors.Wrap(err, "category.ListActive")
	}
	return categories, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            description = :description,
            color = :color,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND merchant_id = :merchant_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return errors.Wrap(err, "category.Update")
}

func (r *PGRepository) Delete(ctx context.Context, merchantID, id string) error {
	// parent_id is ON DELETE SET NULL, children become roots.
	_, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return errors.Wrap(err, "category.Delete")
}
