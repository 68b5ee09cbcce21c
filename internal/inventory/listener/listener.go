package listener

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const orderCreated = "OrderCreated"

// Reader is the consuming side of the order topic. *broker.KafkaConsumer satisfies it.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InventoryListener struct {
	consumer Reader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer Reader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting inventory order listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping inventory order listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID         string             `json:"id"`
	MerchantID string             `json:"merchant_id"`
	BranchID   string             `json:"branch_id"`
	Items      []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID string  `json:"product_id"`
	VariantID *string `json:"variant_id"`
	Quantity  float64 `json:"quantity"`
}

// processMessage applies each line of an order. A failing line is logged
// and the rest still apply.
func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != orderCreated {
		return
	}

	l.logger.Info("Processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		if item.VariantID == nil || *item.VariantID == "" {
			l.logger.Warn("Order item without variant, stock is tracked per variant",
				zap.String("order_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
			)
			continue
		}
		qty := int(math.Round(item.Quantity))
		if qty <= 0 {
			continue
		}

		err := l.uc.ApplySale(ctx, &dto.SaleInput{
			MerchantID: event.Payload.MerchantID,
			OrderID:    event.Payload.ID,
			ProductID:  item.ProductID,
			VariantID:  *item.VariantID,
			Quantity:   qty,
		})
		if err != nil {
			l.logger.Error("Failed to apply order item to stock",
				zap.String("order_id", event.Payload.ID),
				zap.String("variant_id", *item.VariantID),
				zap.Error(err),
			)
		}
	}
}
