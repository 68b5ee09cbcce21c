package usecase

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	attr "github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/identifier"
	"github.com/fekuna/omnipos-catalog-service/internal/image"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/search"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/validation"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/product/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/purchaseorder"
	"github.com/fekuna/omnipos-catalog-service/internal/variant"
	variantdto "github.com/fekuna/omnipos-catalog-service/internal/variant/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("omnipos-catalog/product")

const skuAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	errInvalidBranch   = apperrors.Validation("invalid_branch", "Invalid branch assignment. Please refresh the page and try again.", nil)
	errSKUExists       = apperrors.Conflict("product_sku_exists", "A product with this SKU already exists.", nil)
	errReferenced      = apperrors.Conflict("product_referenced", "Cannot delete: product is referenced by other records", nil)
	errStorageRequired = apperrors.Validation("storage_location_required", "Please select both storage room and shelf", nil)
)

// Deps are the collaborators of the product use case. Cache and Search
// are optional.
type Deps struct {
	Repo       product.Repository
	Variants   variant.UseCase
	Images     image.UseCase
	Categories category.UseCase
	Orders     purchaseorder.UseCase
	Cache      *cache.RedisClient
	Search     *search.Client
	Bus        *events.Bus
	Config     config.CatalogConfig
	Logger     logger.ZapLogger
}

type productUseCase struct {
	repo       product.Repository
	variants   variant.UseCase
	images     image.UseCase
	categories category.UseCase
	orders     purchaseorder.UseCase
	cache      *cache.RedisClient
	es         *search.Client
	bus        *events.Bus
	cfg        config.CatalogConfig
	logger     logger.ZapLogger
}

func NewProductUseCase(d Deps) product.UseCase {
	return &productUseCase{
		repo:       d.Repo,
		variants:   d.Variants,
		images:     d.Images,
		categories: d.Categories,
		orders:     d.Orders,
		cache:      d.Cache,
		es:         d.Search,
		bus:        d.Bus,
		cfg:        d.Config,
		logger:     d.Logger,
	}
}

// CreateProduct writes the product, then its variants, then the child units
// of tracked variants. Each step runs only after the previous one returned.
// Once the product row exists the call succeeds; later failures become
// warnings on the result.
func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*dto.CreateResult, error) {
	ctx, span := tracer.Start(ctx, "product.CreateProduct")
	defer span.End()
	span.SetAttributes(attribute.Int("variants", len(input.Variants)))

	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.BranchID == "" {
		return nil, apperrors.ErrBranchMissing
	}
	if limit := uc.cfg.MaxVariantsPerReq; limit > 0 && len(input.Variants) > limit {
		return nil, apperrors.Validation("too_many_variants",
			fmt.Sprintf("A product can be created with at most %d variants", limit),
			map[string]interface{}{"Limit": limit})
	}
	if err := normalizeSpecifications(input); err != nil {
		return nil, err
	}

	var warnings []apperrors.Notice
	tracked, notices, err := checkVariants(input.Variants)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, notices...)

	if input.SKU == "" {
		sku, err := uc.generateSKU()
		if err != nil {
			return nil, apperrors.Generic(err)
		}
		input.SKU = sku
	}

	p := uc.newProduct(input)
	var created *model.Product
	err = postgres.Retry(ctx, uint(uc.cfg.InsertRetries), func() error {
		row, err := uc.repo.Create(ctx, p)
		created = row
		return err
	}, uc.onRetry("product insert", p.ID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		uc.logger.Error("failed to create product",
			zap.String("product_id", p.ID),
			zap.String("sku", p.SKU),
			zap.String("code", apperrors.PGCode(err)),
			zap.Error(err),
		)
		return nil, createError(err)
	}
	if created == nil {
		span.SetStatus(codes.Error, "silent failure")
		uc.logger.Error("product insert returned no row", zap.String("product_id", p.ID))
		return nil, apperrors.ErrSilentFailure
	}

	result := &dto.CreateResult{Product: created}
	variants := uc.newVariants(created, input)
	if len(variants) > 0 {
		err := postgres.Retry(ctx, uint(uc.cfg.InsertRetries), func() error {
			return uc.repo.CreateVariants(ctx, variants)
		}, uc.onRetry("variant insert", created.ID))
		if err != nil {
			span.RecordError(err)
			uc.logger.Error("failed to create variants",
				zap.String("product_id", created.ID),
				zap.String("code", apperrors.PGCode(err)),
				zap.Error(err),
			)
			warnings = append(warnings, apperrors.Notice{
				MessageID: "variants_create_failed",
				Message:   "Product created but failed to create variants",
				Data:      map[string]interface{}{"Reason": err.Error()},
			})
			variants = nil
		}
	}

	for i, v := range variants {
		entries := tracked[i]
		if len(entries) == 0 {
			continue
		}
		warnings = append(warnings, uc.registerChildren(ctx, input.MerchantID, v, entries, input.Condition)...)
	}

	if err := uc.repo.RecomputeTotals(ctx, created.ID); err != nil {
		uc.logger.Warn("failed to recompute product totals", zap.String("product_id", created.ID), zap.Error(err))
	}
	if fresh, err := uc.repo.FindByID(ctx, input.MerchantID, created.ID); err == nil && fresh != nil {
		created = fresh
	}
	if rows, err := uc.repo.ListVariants(ctx, created.ID); err == nil {
		variants = variantview.ParentsOnly(rows)
	}
	result.Product = created
	result.Variants = variants
	result.Warnings = warnings

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionCreated, input.MerchantID, created.ID, ""))
	return result, nil
}

// checkVariants runs the pre-submission checks over the submitted variants
// and returns the identifiers to register, keyed by variant position.
func checkVariants(inputs []dto.VariantInput) (map[int][]string, []apperrors.Notice, error) {
	names := make([]string, 0, len(inputs))
	for i, v := range inputs {
		names = append(names, defaultName(i, v.Name))
	}
	if err := identifier.CheckVariantNames(names); err != nil {
		return nil, nil, err
	}

	var notices []apperrors.Notice
	tracked := map[int][]string{}
	checks := make([]identifier.Variant, 0, len(inputs))
	for i, v := range inputs {
		t := identifier.NewTracker(defaultName(i, v.Name), v.Quantity)
		if v.TrackIdentifiers {
			if err := t.Enable(true); err != nil {
				notices = append(notices, apperrors.AsNotice(err))
			} else {
				for _, value := range identifier.Filled(v.Identifiers) {
					if err := t.Add(value); err != nil {
						return nil, nil, err
					}
				}
			}
		}
		tv := t.Variant()
		if len(tv.Identifiers) > 0 {
			tracked[i] = tv.Identifiers
		}
		checks = append(checks, tv)
	}
	if err := identifier.CheckProduct(checks); err != nil {
		return nil, nil, err
	}
	return tracked, notices, nil
}

func (uc *productUseCase) registerChildren(ctx context.Context, merchantID string, parent model.Variant, values []string, condition string) []apperrors.Notice {
	entries := make([]variantdto.ChildEntry, 0, len(values))
	for _, value := range values {
		entries = append(entries, variantdto.ChildEntry{IMEI: value, Condition: condition, Source: "product_create"})
	}
	res, err := uc.variants.RegisterChildren(ctx, &variantdto.RegisterChildrenInput{
		MerchantID: merchantID,
		ProductID:  parent.ProductID,
		ParentID:   parent.ID,
		Entries:    entries,
	})
	if err != nil {
		uc.logger.Error("failed to register identifiers",
			zap.String("product_id", parent.ProductID),
			zap.String("variant_id", parent.ID),
			zap.Error(err),
		)
		return []apperrors.Notice{apperrors.AsNotice(err)}
	}
	return res.Notices()
}

func normalizeSpecifications(input *dto.CreateProductInput) error {
	spec, err := attr.NormalizeSpecification(input.Specification)
	if err != nil {
		return err
	}
	input.Specification = spec
	for i := range input.Variants {
		if spec, err = attr.NormalizeSpecification(input.Variants[i].Specification); err != nil {
			return err
		}
		input.Variants[i].Specification = spec
	}
	return nil
}

func (uc *productUseCase) newProduct(input *dto.CreateProductInput) *model.Product {
	now := time.Now()
	attrs := model.JSONMap{}
	attr.Merge(attrs, input.Metadata)
	if input.Specification != "" {
		attrs["specification"] = input.Specification
	}
	attrs["condition"] = input.Condition

	metadata := model.JSONMap{
		"useVariants":          len(input.Variants) > 0,
		"variantCount":         len(input.Variants),
		"skip_default_variant": len(input.Variants) > 0,
		"createdBy":            input.UserID,
		"createdAt":            now.UTC().Format(time.RFC3339),
	}

	branchID := input.BranchID
	categoryID := input.CategoryID
	var description *string
	if d := strings.TrimSpace(input.Description); d != "" {
		description = &d
	}
	return &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		MerchantID:  input.MerchantID,
		BranchID:    &branchID,
		CategoryID:  &categoryID,
		SupplierID:  input.SupplierID,
		SKU:         input.SKU,
		Name:        input.Name,
		Description: description,
		Attributes:  attrs,
		Metadata:    metadata,
		IsActive:    true,
	}
}

func (uc *productUseCase) newVariants(p *model.Product, input *dto.CreateProductInput) []model.Variant {
	now := time.Now()
	out := make([]model.Variant, 0, len(input.Variants))
	for i, in := range input.Variants {
		name := defaultName(i, in.Name)
		sku := strings.TrimSpace(in.SKU)
		if sku == "" {
			sku = fmt.Sprintf("%s-V%02d", p.SKU, i+1)
		}
		minQty := uc.cfg.DefaultMinQty
		if in.MinQuantity != nil {
			minQty = *in.MinQuantity
		}
		attrs := model.JSONMap{}
		attr.Merge(attrs, in.Attributes)
		if in.Specification != "" {
			attrs["specification"] = in.Specification
		}
		out = append(out, model.Variant{
			BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			ProductID:         p.ID,
			BranchID:          p.BranchID,
			Name:              name,
			VariantName:       name,
			SKU:               sku,
			CostPrice:         in.CostPrice,
			UnitPrice:         in.SellingPrice,
			SellingPrice:      in.SellingPrice,
			Quantity:          in.Quantity,
			MinQuantity:       minQty,
			VariantAttributes: attrs,
			Attributes:        attrs,
			IsPrimary:         i == 0,
			IsActive:          true,
			VariantType:       model.VariantTypeStandard,
		})
	}
	return out
}

func defaultName(i int, name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fmt.Sprintf("Variant %d", i+1)
}

func (uc *productUseCase) generateSKU() (string, error) {
	id, err := gonanoid.Generate(skuAlphabet, 8)
	if err != nil {
		return "", err
	}
	prefix := uc.cfg.SKUPrefix
	if prefix == "" {
		prefix = "SKU"
	}
	return prefix + "-" + id, nil
}

func createError(err error) *apperrors.Error {
	appErr := apperrors.FromBackend(err, apperrors.BackendMessages{
		apperrors.CodeForeignKeyViolation: errInvalidBranch,
		apperrors.CodeUniqueViolation:     errSKUExists,
	})
	if appErr.MessageID != "generic_error" {
		return appErr
	}
	return apperrors.New(apperrors.KindInternal, "product_create_failed",
		"Product creation failed: "+err.Error(),
		map[string]interface{}{"Reason": err.Error()}).WithCause(err)
}

func (uc *productUseCase) GetProduct(ctx context.Context, merchantID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, merchantID, id)
	if err != nil {
		return nil, apperrors.FromBackend(err, nil)
	}
	if p == nil {
		return nil, apperrors.ProductNotFound(id)
	}
	return p, nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result cachedList
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, total, err := uc.search(ctx, filters)
		if err == nil {
			return products, total, nil
		}
		uc.logger.Error("search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		uc.logger.Error("failed to list products", zap.String("merchant_id", filters.MerchantID), zap.Error(err))
		return nil, 0, apperrors.FromBackend(err, nil)
	}

	if cacheKey != "" && uc.cache != nil {
		if data, err := json.Marshal(cachedList{Products: products, Count: count}); err == nil {
			ttl := time.Duration(uc.cfg.ListCacheTTL) * time.Second
			if err := uc.cache.Client.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
				uc.logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}
	return products, count, nil
}

func (uc *productUseCase) search(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	page := max(filters.Page, 1)
	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
							"fields": []string{"name^3", "sku", "variant_skus", "description"},
						},
					},
					{
						"term": map[string]interface{}{
							"merchant_id": filters.MerchantID,
						},
					},
				},
			},
		},
	}
	if filters.PageSize > 0 {
		q["from"] = (page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, uc.cfg.SearchIndex, q)
	if err != nil {
		return nil, 0, err
	}
	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc SearchDocument
		if err := json.Unmarshal(hit.Source, &doc); err == nil {
			products = append(products, doc.Product)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s:%x", listCachePrefix, filters.MerchantID, md5.Sum(data)), nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "product.UpdateProduct")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	spec, err := attr.NormalizeSpecification(input.Specification)
	if err != nil {
		return nil, err
	}

	p, err := uc.GetProduct(ctx, input.MerchantID, input.ID)
	if err != nil {
		return nil, err
	}

	if p.SKU != input.SKU {
		unique, err := uc.repo.IsSKUUnique(ctx, input.MerchantID, input.SKU, p.ID)
		if err != nil {
			return nil, apperrors.FromBackend(err, nil)
		}
		if !unique {
			return nil, errSKUExists
		}
	}

	p.SKU = input.SKU
	p.Name = input.Name
	p.Description = nil
	if d := strings.TrimSpace(input.Description); d != "" {
		p.Description = &d
	}
	categoryID := input.CategoryID
	p.CategoryID = &categoryID
	p.SupplierID = input.SupplierID
	if p.Attributes == nil {
		p.Attributes = model.JSONMap{}
	}
	p.Attributes["condition"] = input.Condition
	if spec != "" {
		p.Attributes["specification"] = spec
	} else {
		delete(p.Attributes, "specification")
	}
	p.IsActive = input.IsActive
	p.IsFeatured = input.IsFeatured
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		span.RecordError(err)
		uc.logger.Error("failed to update product", zap.String("product_id", p.ID), zap.Error(err))
		return nil, apperrors.FromBackend(err, apperrors.BackendMessages{
			apperrors.CodeUniqueViolation:     errSKUExists,
			apperrors.CodeForeignKeyViolation: apperrors.CategoryNotFound(input.CategoryID),
		})
	}

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionUpdated, p.MerchantID, p.ID, ""))
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, merchantID, id string) error {
	p, err := uc.GetProduct(ctx, merchantID, id)
	if err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, merchantID, p.ID); err != nil {
		uc.logger.Error("failed to delete product",
			zap.String("product_id", p.ID),
			zap.String("code", apperrors.PGCode(err)),
			zap.Error(err),
		)
		return apperrors.FromBackend(err, apperrors.BackendMessages{
			apperrors.CodeForeignKeyViolation: errReferenced,
		})
	}

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionDeleted, merchantID, p.ID, ""))
	return nil
}

func (uc *productUseCase) UpdateStorageLocation(ctx context.Context, input *dto.StorageLocationInput) error {
	input.StorageRoomID = strings.TrimSpace(input.StorageRoomID)
	input.ShelfID = strings.TrimSpace(input.ShelfID)
	if input.StorageRoomID == "" || input.ShelfID == "" {
		return errStorageRequired
	}

	err := uc.repo.UpdateStorageLocation(ctx, input.MerchantID, input.ID, input.StorageRoomID, input.ShelfID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ProductNotFound(input.ID)
	}
	if err != nil {
		uc.logger.Error("failed to update storage location", zap.String("product_id", input.ID), zap.Error(err))
		return apperrors.FromBackend(err, apperrors.BackendMessages{
			apperrors.CodeForeignKeyViolation: apperrors.FieldInvalid("shelf_id", "unknown storage location"),
		})
	}

	go uc.bus.Publish(context.Background(), events.NewProductEvent(events.ActionUpdated, input.MerchantID, input.ID, ""))
	return nil
}

func (uc *productUseCase) onRetry(op, id string) func(uint, error) {
	return func(n uint, err error) {
		uc.logger.Warn("retrying "+op, zap.String("id", id), zap.Uint("attempt", n+1), zap.Error(err))
	}
}
