package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/events"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListCache struct {
	mu       sync.Mutex
	patterns []string
	err      error
}

func (c *fakeListCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	return c.err
}

type fakeSearchIndex struct {
	mu      sync.Mutex
	created map[string]string
	indexed map[string]SearchDocument
	deleted []string
	err     error
}

func newFakeSearchIndex() *fakeSearchIndex {
	return &fakeSearchIndex{created: map[string]string{}, indexed: map[string]SearchDocument{}}
}

func (s *fakeSearchIndex) CreateIndex(_ context.Context, index, mapping string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created[index] = mapping
	return nil
}

func (s *fakeSearchIndex) Index(_ context.Context, index, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.indexed[index+"/"+id] = doc.(SearchDocument)
	return nil
}

func (s *fakeSearchIndex) Delete(_ context.Context, index, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, index+"/"+id)
	return s.err
}

func indexedRepo() *memRepo {
	repo := newMemRepo()
	p := &model.Product{BaseModel: model.BaseModel{ID: "p1"}, MerchantID: "m1", SKU: "PX", Name: "Pixel 8"}
	repo.products[p.ID] = p
	parentID := "v1"
	repo.variants = []model.Variant{
		{BaseModel: model.BaseModel{ID: "v1"}, ProductID: "p1", SKU: "PX-128", VariantType: model.VariantTypeParent, IsParent: true},
		{BaseModel: model.BaseModel{ID: "v2"}, ProductID: "p1", SKU: "PX-256", VariantType: model.VariantTypeStandard},
		{BaseModel: model.BaseModel{ID: "c1"}, ProductID: "p1", SKU: "PX-128-111", VariantType: model.VariantTypeChild, ParentVariantID: &parentID},
	}
	return repo
}

func newTestIndexer(repo *memRepo, c *fakeListCache, es *fakeSearchIndex) *Indexer {
	return &Indexer{repo: repo, cache: c, es: es, index: "products", logger: logger.NewNop()}
}

func TestIndexerHandle(t *testing.T) {
	tests := []struct {
		name    string
		event   events.Event
		indexed bool
		deleted bool
	}{
		{"created", events.NewProductEvent(events.ActionCreated, "m1", "p1", ""), true, false},
		{"updated", events.NewProductEvent(events.ActionUpdated, "m1", "p1", ""), true, false},
		{"stock adjusted", events.NewProductEvent(events.ActionStockAdjusted, "m1", "p1", "v1"), true, false},
		{"variant changed", events.NewProductEvent(events.ActionVariantChange, "m1", "p1", "v2"), true, false},
		{"deleted", events.NewProductEvent(events.ActionDeleted, "m1", "p1", ""), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeListCache{}
			es := newFakeSearchIndex()
			newTestIndexer(indexedRepo(), c, es).Handle(context.Background(), tt.event)

			assert.Equal(t, []string{"products:list:m1:*"}, c.patterns)
			if tt.deleted {
				assert.Equal(t, []string{"products/p1"}, es.deleted)
			} else {
				assert.Empty(t, es.deleted)
			}
			if !tt.indexed {
				assert.Empty(t, es.indexed)
				return
			}
			require.Contains(t, es.indexed, "products/p1")
			doc := es.indexed["products/p1"]
			assert.Equal(t, "Pixel 8", doc.Name)
			assert.Equal(t, []string{"PX-128", "PX-256"}, doc.VariantSKUs, "unit rows are not indexed")
		})
	}
}

func TestIndexerHandleSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("other merchant's product", func(t *testing.T) {
		c := &fakeListCache{}
		es := newFakeSearchIndex()
		newTestIndexer(indexedRepo(), c, es).Handle(ctx, events.NewProductEvent(events.ActionUpdated, "m2", "p1", ""))
		assert.Equal(t, []string{"products:list:m2:*"}, c.patterns)
		assert.Empty(t, es.indexed)
	})

	t.Run("no product id", func(t *testing.T) {
		c := &fakeListCache{}
		es := newFakeSearchIndex()
		newTestIndexer(indexedRepo(), c, es).Handle(ctx, events.NewProductEvent(events.ActionUpdated, "m1", "", ""))
		assert.Len(t, c.patterns, 1)
		assert.Empty(t, es.indexed)
		assert.Empty(t, es.deleted)
	})

	t.Run("no merchant id", func(t *testing.T) {
		c := &fakeListCache{}
		newTestIndexer(indexedRepo(), c, newFakeSearchIndex()).Handle(ctx, events.NewProductEvent(events.ActionUpdated, "", "p1", ""))
		assert.Empty(t, c.patterns)
	})

	t.Run("backend errors are logged", func(t *testing.T) {
		c := &fakeListCache{err: errors.New("redis down")}
		es := newFakeSearchIndex()
		es.err = errors.New("es down")
		ix := newTestIndexer(indexedRepo(), c, es)
		ix.Handle(ctx, events.NewProductEvent(events.ActionUpdated, "m1", "p1", ""))
		ix.Handle(ctx, events.NewProductEvent(events.ActionDeleted, "m1", "p1", ""))
		assert.Len(t, c.patterns, 2)
		assert.Equal(t, []string{"products/p1"}, es.deleted)
	})
}

func TestNewIndexerWithoutBackends(t *testing.T) {
	ix := NewIndexer(indexedRepo(), nil, nil, "products", logger.NewNop())
	assert.Nil(t, ix.cache)
	assert.Nil(t, ix.es)
	require.NoError(t, ix.EnsureIndex(context.Background()))
	ix.Handle(context.Background(), events.NewProductEvent(events.ActionUpdated, "m1", "p1", ""))
}

func TestEnsureIndex(t *testing.T) {
	es := newFakeSearchIndex()
	require.NoError(t, newTestIndexer(indexedRepo(), nil, es).EnsureIndex(context.Background()))
	assert.JSONEq(t, indexMapping, es.created["products"])
}
