package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/category/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.ParentID != nil && *input.ParentID != "" {
		parent, err := uc.repo.FindByID(ctx, input.MerchantID, *input.ParentID)
		if err != nil {
			return nil, apperrors.FromBackend(err, nil)
		}
		if parent == nil {
			return nil, apperrors.CategoryNotFound(*input.ParentID)
		}
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:  input.MerchantID,
		ParentID:    input.ParentID,
		Name:        strings.TrimSpace(input.Name),
		Description: optional(input.Description),
		Color:       optional(input.Color),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		uc.logger.Error("failed to create category", zap.String("name", cat.Name), zap.Error(err))
		return nil, apperrors.FromBackend(err, nil)
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, merchantID, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if cat == nil {
		return nil, apperrors.CategoryNotFound(id)
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	categories, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperrors.FromBackend(err, nil)
	}
	if filters.IncludeChildren {
		categories = BuildTree(categories)
	}
	return categories, count, nil
}

func (uc *categoryUseCase) ListActive(ctx context.Context, merchantID string) ([]model.Category, error) {
	categories, err := uc.repo.ListActive(ctx, merchantID)
	if err != nil {
		uc.logger.Error("failed to load categories", zap.String("merchant_id", merchantID), zap.Error(err))
		return nil, apperrors.FromBackend(err, nil)
	}
	return categories, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	cat, err := uc.repo.FindByID(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if cat == nil {
		return nil, apperrors.CategoryNotFound(input.ID)
	}
	if input.ParentID != nil && *input.ParentID == cat.ID {
		return nil, apperrors.FieldInvalid("parent_id", "a category cannot be its own parent")
	}

	cat.Name = strings.TrimSpace(input.Name)
	cat.Description = optional(input.Description)
	cat.Color = optional(input.Color)
	cat.SortOrder = input.SortOrder
	cat.IsActive = input.IsActive
	cat.ParentID = input.ParentID
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, merchantID, id string) error {
	if err := uc.repo.Delete(ctx, merchantID, id); err != nil {
		return apperrors.FromBackend(err, nil)
	}
	return nil
}

// BuildTree nests categories under their parents. Categories whose parent
// is not in the list are returned as roots, in input order.
func BuildTree(flat []model.Category) []model.Category {
	children := map[string][]model.Category{}
	ids := make(map[string]struct{}, len(flat))
	for _, c := range flat {
		ids[c.ID] = struct{}{}
	}
	var roots []model.Category
	for _, c := range flat {
		if c.ParentID != nil {
			if _, ok := ids[*c.ParentID]; ok {
				children[*c.ParentID] = append(children[*c.ParentID], c)
				continue
			}
		}
		roots = append(roots, c)
	}

	var attach func(c model.Category, depth int) model.Category
	attach = func(c model.Category, depth int) model.Category {
		if depth > len(flat) {
			return c
		}
		for _, child := range children[c.ID] {
			c.Children = append(c.Children, attach(child, depth+1))
		}
		return c
	}
	for i := range roots {
		roots[i] = attach(roots[i], 0)
	}
	return roots
}
