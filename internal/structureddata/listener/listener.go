package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-structured-data/internal/logger"
	"github.com/fekuna/omnipos-structured-data/internal/metrics"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventProductUpdated    = "ProductUpdated"
	EventProductDeleted    = "ProductDeleted"
	EventVariantUpdated    = "VariantUpdated"
	EventInventoryAdjusted = "InventoryAdjusted"
	EventPriceChanged      = "PriceChanged"
	EventCategoryUpdated   = "CategoryUpdated"
	EventCategoryDeleted   = "CategoryDeleted"
)

// MessageReader is the part of broker.KafkaConsumer the listener needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InvalidationListener struct {
	consumer   MessageReader
	uc         structureddata.UseCase
	logger     logger.ZapLogger
	retryDelay time.Duration
}

func NewInvalidationListener(consumer MessageReader, uc structureddata.UseCase, logger logger.ZapLogger) *InvalidationListener {
	return &InvalidationListener{
		consumer:   consumer,
		uc:         uc,
		logger:     logger.With(zap.String("component", "jsonld-invalidation")),
		retryDelay: time.Second,
	}
}

func (l *InvalidationListener) Start(ctx context.Context) {
	l.logger.Info("Starting JSON-LD invalidation listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping JSON-LD invalidation listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.retryDelay):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type CatalogEvent struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Payload   CatalogPayload `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type CatalogPayload struct {
	MerchantID string `json:"merchant_id"`
	ProductID  string `json:"product_id,omitempty"`
	VariantID  string `json:"variant_id,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

func (l *InvalidationListener) processMessage(ctx context.Context, value []byte) {
	var event CatalogEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		metrics.InvalidationEvents.WithLabelValues("unknown", "malformed").Inc()
		return
	}

	if event.Payload.MerchantID == "" {
		l.logger.Warn("Skipping event without merchant", zap.String("event_id", event.EventID), zap.String("event_type", event.EventType))
		metrics.InvalidationEvents.WithLabelValues(event.EventType, "malformed").Inc()
		return
	}

	var err error
	switch event.EventType {
	case EventProductUpdated, EventProductDeleted, EventVariantUpdated, EventInventoryAdjusted, EventPriceChanged:
		if event.Payload.ProductID == "" {
			l.logger.Warn("Skipping product event without product", zap.String("event_id", event.EventID), zap.String("event_type", event.EventType))
			metrics.InvalidationEvents.WithLabelValues(event.EventType, "malformed").Inc()
			return
		}
		err = l.uc.InvalidateProduct(ctx, event.Payload.MerchantID, event.Payload.ProductID)
	case EventCategoryUpdated, EventCategoryDeleted:
		// Category names and URLs appear in product documents too.
		err = l.uc.InvalidateMerchant(ctx, event.Payload.MerchantID)
	default:
		metrics.InvalidationEvents.WithLabelValues(event.EventType, "ignored").Inc()
		return
	}

	if err != nil {
		l.logger.Error("Failed to invalidate JSON-LD documents",
			zap.String("event_id", event.EventID),
			zap.String("event_type", event.EventType),
			zap.String("merchant_id", event.Payload.MerchantID),
			zap.Error(err),
		)
		metrics.InvalidationEvents.WithLabelValues(event.EventType, "error").Inc()
		return
	}

	l.logger.Debug("Invalidated JSON-LD documents",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("merchant_id", event.Payload.MerchantID),
	)
	metrics.InvalidationEvents.WithLabelValues(event.EventType, "ok").Inc()
}
