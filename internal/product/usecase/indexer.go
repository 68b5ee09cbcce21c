package usecase

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/search"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
	"go.uber.org/zap"
)

const listCachePrefix = "products:list:"

const indexMapping = `{
	"mappings": {
		"properties": {
			"merchant_id": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"sku": { "type": "keyword" },
			"variant_skus": { "type": "keyword" },
			"total_quantity": { "type": "integer" },
			"created_at": { "type": "date" }
		}
	}
}`

// SearchDocument is what gets indexed per product: the row plus the SKUs
// of its sellable variants.
type SearchDocument struct {
	model.Product
	VariantSKUs []string `json:"variant_skus"`
}

// ListCache drops cached product pages. *cache.RedisClient satisfies it.
type ListCache interface {
	DeletePattern(ctx context.Context, pattern string) error
}

// SearchIndex is the write side of *search.Client.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
}

// Indexer keeps the list cache and the search index in step with product
// changes. Subscribe it to the events bus.
type Indexer struct {
	repo   product.Repository
	cache  ListCache
	es     SearchIndex
	index  string
	logger logger.ZapLogger
}

// NewIndexer takes either client as nil when that backend is down.
func NewIndexer(repo product.Repository, rc *cache.RedisClient, es *search.Client, index string, log logger.ZapLogger) *Indexer {
	ix := &Indexer{
		repo:   repo,
		index:  index,
		logger: log,
	}
	if rc != nil {
		ix.cache = rc
	}
	if es != nil {
		ix.es = es
	}
	return ix
}

// EnsureIndex creates the search index when it does not exist yet.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	if ix.es == nil {
		return nil
	}
	return ix.es.CreateIndex(ctx, ix.index, indexMapping)
}

func (ix *Indexer) Handle(ctx context.Context, e events.Event) {
	ix.invalidate(ctx, e.MerchantID)
	if ix.es == nil || e.ProductID == "" {
		return
	}

	if e.Action == events.ActionDeleted {
		if err := ix.es.Delete(ctx, ix.index, e.ProductID); err != nil {
			ix.logger.Error("failed to delete product from index", zap.String("product_id", e.ProductID), zap.Error(err))
		}
		return
	}

	p, err := ix.repo.FindByID(ctx, e.MerchantID, e.ProductID)
	if err != nil || p == nil {
		ix.logger.Warn("product not indexed", zap.String("product_id", e.ProductID), zap.Error(err))
		return
	}
	doc := SearchDocument{Product: *p}
	if variants, err := ix.repo.ListVariants(ctx, p.ID); err == nil {
		for _, v := range variantview.ParentsOnly(variants) {
			doc.VariantSKUs = append(doc.VariantSKUs, v.SKU)
		}
	}
	if err := ix.es.Index(ctx, ix.index, p.ID, doc); err != nil {
		ix.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (ix *Indexer) invalidate(ctx context.Context, merchantID string) {
	if ix.cache == nil || merchantID == "" {
		return
	}
	if err := ix.cache.DeletePattern(ctx, listCachePrefix+merchantID+":*"); err != nil {
		ix.logger.Warn("failed to invalidate product list cache", zap.String("merchant_id", merchantID), zap.Error(err))
	}
}
