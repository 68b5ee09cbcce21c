// Package events carries "product data updated" notifications between the
// parts of the catalog that cache or index product data.
package events

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ProductDataUpdated = "ProductDataUpdated"

type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionStockAdjusted Action = "stock_adjusted"
	ActionVariantChange Action = "variant_changed"
)

type Event struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Action     Action    `json:"action"`
	MerchantID string    `json:"merchant_id"`
	ProductID  string    `json:"product_id"`
	VariantID  string    `json:"variant_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewProductEvent(action Action, merchantID, productID, variantID string) Event {
	return Event{
		EventID:    uuid.New().String(),
		EventType:  ProductDataUpdated,
		Action:     action,
		MerchantID: merchantID,
		ProductID:  productID,
		VariantID:  variantID,
		Timestamp:  time.Now(),
	}
}

type Handler func(ctx context.Context, e Event)

// Publisher forwards events out of the process. *broker.KafkaProducer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Bus delivers events to in-process subscribers and, when configured, to
// an external publisher.
type Bus struct {
	mu     sync.RWMutex
	next   uint64
	subs   map[uint64]Handler
	out    Publisher
	logger logger.ZapLogger
}

func NewBus(out Publisher, log logger.ZapLogger) *Bus {
	return &Bus{
		subs:   make(map[uint64]Handler),
		out:    out,
		logger: log,
	}
}

// Subscribe registers h and returns the function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish runs every subscriber in registration order, then forwards the
// event keyed by product id. Forwarding errors are logged, not returned.
// A nil Bus drops the event.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, e)
	}

	if b.out == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		b.logger.Error("failed to encode product event", zap.Error(err))
		return
	}
	if err := b.out.Publish(ctx, e.ProductID, payload); err != nil {
		b.logger.Error("failed to publish product event",
			zap.String("product_id", e.ProductID),
			zap.String("action", string(e.Action)),
			zap.Error(err),
		)
	}
}
