package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu         sync.Mutex
	variants   map[string]*model.Variant
	order      []string
	movements  map[string]int
	registered map[string]bool
	createErr  map[string]error // by SKU
	deleteErr  error
	recomputed []string
}

func newMemRepo(variants ...model.Variant) *memRepo {
	r := &memRepo{
		variants:   map[string]*model.Variant{},
		movements:  map[string]int{},
		registered: map[string]bool{},
		createErr:  map[string]error{},
	}
	for i := range variants {
		v := variants[i]
		r.variants[v.ID] = &v
		r.order = append(r.order, v.ID)
	}
	return r
}

func (r *memRepo) FindByID(_ context.Context, merchantID, id string) (*model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok || merchantID != "m1" {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *memRepo) ListByProduct(_ context.Context, merchantID, productID string) ([]model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Variant
	for _, id := range r.order {
		v, ok := r.variants[id]
		if ok && v.ProductID == productID && merchantID == "m1" && v.VariantType != model.VariantTypeChild {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memRepo) ListChildren(_ context.Context, parentID string) ([]model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Variant
	for _, id := range r.order {
		v, ok := r.variants[id]
		if ok && v.ParentVariantID != nil && *v.ParentVariantID == parentID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memRepo) Create(_ context.Context, v *model.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr[v.SKU]; err != nil {
		return err
	}
	cp := *v
	r.variants[v.ID] = &cp
	r.order = append(r.order, v.ID)
	if imei := v.VariantAttributes.String("imei"); imei != "" {
		r.registered[strings.ToLower(imei)] = true
	}
	return nil
}

func (r *memRepo) Update(_ context.Context, v *model.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.variants[v.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.variants, id)
	return nil
}

func (r *memRepo) CountMovements(_ context.Context, variantID string) (int, error) {
	return r.movements[variantID], nil
}

func (r *memRepo) ConvertToParent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[id].IsParent = true
	r.variants[id].VariantType = model.VariantTypeParent
	return nil
}

func (r *memRepo) IdentifierExists(_ context.Context, merchantID, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return merchantID == "m1" && r.registered[strings.ToLower(value)], nil
}

func (r *memRepo) MarkChildSold(_ context.Context, childID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[childID].Quantity = 0
	r.variants[childID].IsActive = false
	return nil
}

func (r *memRepo) RetireChildren(_ context.Context, parentID string, childIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range childIDs {
		if c, ok := r.variants[id]; ok && c.ParentVariantID != nil && *c.ParentVariantID == parentID {
			c.Quantity = 0
			c.IsActive = false
		}
	}
	return nil
}

func (r *memRepo) RecomputeTotals(_ context.Context, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputed = append(r.recomputed, productID)
	return nil
}

var catalogCfg = config.CatalogConfig{DefaultMinQty: 2, InsertRetries: 3}

func standard(id, name string, qty int) model.Variant {
	return model.Variant{
		BaseModel:   model.BaseModel{ID: id},
		ProductID:   "p1",
		Name:        name,
		SKU:         "SKU-" + id,
		Quantity:    qty,
		IsActive:    true,
		VariantType: model.VariantTypeStandard,
	}
}

func messageID(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected application error, got %v", err)
	return appErr.MessageID
}

func TestAddVariant(t *testing.T) {
	repo := newMemRepo(standard("v1", "64GB", 1))
	uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())
	ctx := context.Background()

	base := dto.AddVariantInput{MerchantID: "m1", ProductID: "p1", BranchID: "b1", Name: "128GB", SKU: "PX-128"}

	noBranch := base
	noBranch.BranchID = ""
	_, err := uc.AddVariant(ctx, &noBranch)
	assert.Equal(t, "branch_missing", messageID(t, err))

	blank := base
	blank.SKU = "  "
	_, err = uc.AddVariant(ctx, &blank)
	assert.Equal(t, "name_and_sku_required", messageID(t, err))

	dup := base
	dup.Name = " 64gb "
	_, err = uc.AddVariant(ctx, &dup)
	assert.Equal(t, "duplicate_variant_name", messageID(t, err))

	repo.createErr["PX-TAKEN"] = &pq.Error{Code: "23505", Message: "duplicate key"}
	taken := base
	taken.SKU = "PX-TAKEN"
	_, err = uc.AddVariant(ctx, &taken)
	assert.Equal(t, "variant_sku_exists", messageID(t, err))

	v, err := uc.AddVariant(ctx, &base)
	require.NoError(t, err)
	assert.Equal(t, 2, v.MinQuantity)
	assert.Equal(t, "b1", *v.BranchID)
	assert.Equal(t, model.VariantTypeStandard, v.VariantType)
	assert.Equal(t, []string{"p1"}, repo.recomputed)
}

func TestUpdateVariant(t *testing.T) {
	v1 := standard("v1", "64GB", 1)
	v1.Attributes = model.JSONMap{"imei": "111", "color": "black"}
	repo := newMemRepo(v1, standard("v2", "128GB", 1))
	uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())
	ctx := context.Background()

	_, err := uc.UpdateVariant(ctx, &dto.UpdateVariantInput{ID: "v1", MerchantID: "m1", ProductID: "p1", Name: "128gb", SKU: "X"})
	assert.Equal(t, "duplicate_variant_name", messageID(t, err))

	// Keeping its own name is not a duplicate.
	updated, err := uc.UpdateVariant(ctx, &dto.UpdateVariantInput{
		ID: "v1", MerchantID: "m1", ProductID: "p1", Name: "64GB", SKU: "PX-64",
		SellingPrice: 120, Attributes: map[string]interface{}{"color": "blue"},
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, updated.UnitPrice)
	assert.Equal(t, "blue", updated.Attributes["color"])
	assert.Equal(t, "111", updated.Attributes["imei"])

	_, err = uc.UpdateVariant(ctx, &dto.UpdateVariantInput{ID: "v1", MerchantID: "m1", ProductID: "other", Name: "A", SKU: "B"})
	assert.Equal(t, "variant_not_found", messageID(t, err))
}

func TestDeleteVariant(t *testing.T) {
	ctx := context.Background()

	t.Run("last variant", func(t *testing.T) {
		uc := NewVariantUseCase(newMemRepo(standard("v1", "A", 0)), nil, catalogCfg, logger.NewNop())
		assert.Equal(t, "last_variant", messageID(t, uc.DeleteVariant(ctx, "m1", "p1", "v1")))
	})

	t.Run("movement history", func(t *testing.T) {
		repo := newMemRepo(standard("v1", "A", 0), standard("v2", "B", 0))
		repo.movements["v1"] = 3
		uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())
		assert.Equal(t, "variant_has_movements", messageID(t, uc.DeleteVariant(ctx, "m1", "p1", "v1")))
	})

	t.Run("referenced", func(t *testing.T) {
		repo := newMemRepo(standard("v1", "A", 0), standard("v2", "B", 0))
		repo.deleteErr = &pq.Error{Code: "23503", Message: "fk"}
		uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())
		assert.Equal(t, "variant_referenced", messageID(t, uc.DeleteVariant(ctx, "m1", "p1", "v1")))
	})

	t.Run("deleted", func(t *testing.T) {
		repo := newMemRepo(standard("v1", "A", 0), standard("v2", "B", 0))
		uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())
		require.NoError(t, uc.DeleteVariant(ctx, "m1", "p1", "v1"))
		assert.NotContains(t, repo.variants, "v1")
		assert.Equal(t, []string{"p1"}, repo.recomputed)
	})
}

func TestRegisterChildren(t *testing.T) {
	ctx := context.Background()

	t.Run("partial success", func(t *testing.T) {
		repo := newMemRepo(standard("v1", "64GB", 3))
		repo.registered["imei-b"] = true
		uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())

		result, err := uc.RegisterChildren(ctx, &dto.RegisterChildrenInput{
			MerchantID: "m1", ProductID: "p1", ParentID: "v1",
			Entries: []dto.ChildEntry{{IMEI: "IMEI-A"}, {IMEI: "IMEI-B"}, {IMEI: "IMEI-C", Source: "purchase_order"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Outcomes, 3)
		assert.NotEmpty(t, result.Outcomes[0].ChildID)
		require.NotNil(t, result.Outcomes[1].Error)
		assert.Equal(t, "identifier_exists", result.Outcomes[1].Error.MessageID)
		assert.NotEmpty(t, result.Outcomes[2].ChildID)
		assert.Len(t, result.Notices(), 1)

		assert.True(t, repo.variants["v1"].IsParent)
		children, err := uc.ListChildren(ctx, "m1", "v1")
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, model.VariantTypeChild, children[0].VariantType)
		assert.Equal(t, 1, children[0].Quantity)
		assert.Equal(t, "purchase_order", children[1].VariantAttributes["source"])
		assert.Equal(t, "new", children[1].VariantAttributes["condition"])
	})

	t.Run("more entries than stock", func(t *testing.T) {
		uc := NewVariantUseCase(newMemRepo(standard("v1", "64GB", 2)), nil, catalogCfg, logger.NewNop())
		_, err := uc.RegisterChildren(ctx, &dto.RegisterChildrenInput{
			MerchantID: "m1", ProductID: "p1", ParentID: "v1",
			Entries: []dto.ChildEntry{{IMEI: "X"}, {IMEI: "Y"}, {IMEI: "Z"}},
		})
		assert.Equal(t, "identifier_limit", messageID(t, err))
	})

	t.Run("duplicate in batch", func(t *testing.T) {
		uc := NewVariantUseCase(newMemRepo(standard("v1", "64GB", 5)), nil, catalogCfg, logger.NewNop())
		_, err := uc.RegisterChildren(ctx, &dto.RegisterChildrenInput{
			MerchantID: "m1", ProductID: "p1", ParentID: "v1",
			Entries: []dto.ChildEntry{{IMEI: "AbC123"}, {SerialNumber: "abc123"}},
		})
		assert.Equal(t, "identifier_duplicate", messageID(t, err))
	})
}

func TestIdentifierExistsAndMarkSold(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(standard("v1", "64GB", 1))
	uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())

	result, err := uc.RegisterChildren(ctx, &dto.RegisterChildrenInput{
		MerchantID: "m1", ProductID: "p1", ParentID: "v1", Entries: []dto.ChildEntry{{IMEI: "356789"}},
	})
	require.NoError(t, err)

	exists, err := uc.IdentifierExists(ctx, "m1", " 356789 ")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = uc.IdentifierExists(ctx, "m2", "356789")
	require.NoError(t, err)
	assert.False(t, exists, "another merchant's units are not visible")
	exists, err = uc.IdentifierExists(ctx, "m1", "")
	require.NoError(t, err)
	assert.False(t, exists)

	childID := result.Outcomes[0].ChildID
	require.NoError(t, uc.MarkChildSold(ctx, "m1", childID, "sale-1"))
	assert.False(t, repo.variants[childID].IsActive)
	assert.Equal(t, "variant_not_found", messageID(t, uc.MarkChildSold(ctx, "m1", "v1", "sale-1")))
}

func TestRetireChildren(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(standard("v1", "64GB", 3))
	uc := NewVariantUseCase(repo, nil, catalogCfg, logger.NewNop())

	result, err := uc.RegisterChildren(ctx, &dto.RegisterChildrenInput{
		MerchantID: "m1", ProductID: "p1", ParentID: "v1",
		Entries: []dto.ChildEntry{{IMEI: "A1"}, {IMEI: "A2"}, {IMEI: "A3"}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.Created)

	repo.recomputed = nil
	require.NoError(t, uc.RetireChildren(ctx, "m1", "v1", nil))
	assert.Empty(t, repo.recomputed)

	keep, drop := result.Outcomes[0].ChildID, result.Outcomes[2].ChildID
	require.NoError(t, uc.RetireChildren(ctx, "m1", "v1", []string{drop}))
	assert.False(t, repo.variants[drop].IsActive)
	assert.Zero(t, repo.variants[drop].Quantity)
	assert.True(t, repo.variants[keep].IsActive)
	assert.Equal(t, []string{"p1"}, repo.recomputed)

	assert.Equal(t, "variant_not_found", messageID(t, uc.RetireChildren(ctx, "m2", "v1", []string{keep})))
	assert.True(t, repo.variants[keep].IsActive)
}
