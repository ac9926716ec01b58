package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_consumer"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RefreshReasonEvent = "listings_changed_event"
	amqpTraceIDHeader  = "x-trace-id"
)

// ListingsChangedConsumerAdapter слушает события изменения коллекции. Пачка событий,
// накопленная за batchTimeout, даёт одну перезагрузку рабочего набора.
type ListingsChangedConsumerAdapter struct {
	consumer  *rabbitmq_consumer.BatchConsumer
	refreshUC usecases_port.RefreshListingsUseCase
	logger    port.LoggerPort
}

func NewListingsChangedConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	batchSize int,
	batchTimeout time.Duration,
	refreshUC usecases_port.RefreshListingsUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ListingsChangedConsumerAdapter, error) {
	adapter := newListingsChangedHandler(refreshUC, logger)

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_batch_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewBatchConsumer(consumerCfg, adapter.handleBatch, batchSize, batchTimeout, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for listings events: %w", err)
	}
	adapter.consumer = consumer
	return adapter, nil
}

func newListingsChangedHandler(refreshUC usecases_port.RefreshListingsUseCase, logger port.LoggerPort) *ListingsChangedConsumerAdapter {
	return &ListingsChangedConsumerAdapter{refreshUC: refreshUC, logger: logger}
}

// handleBatch: невалидные события подтверждаются и только логируются, повтор им не поможет.
// Ошибка возвращается, только если перезагрузка не удалась: тогда пачка уйдёт на ретрай.
func (a *ListingsChangedConsumerAdapter) handleBatch(ctx context.Context, deliveries []amqp.Delivery) error {
	// trace_id первого события, у которого он есть; пачка обрабатывается как одна операция
	headerTraceID := ""
	for _, d := range deliveries {
		if id, ok := d.Headers[amqpTraceIDHeader].(string); ok && id != "" {
			headerTraceID = id
			break
		}
	}
	ctx, traceID := contextkeys.EnsureTraceID(ctx, headerTraceID)

	batchLogger := a.logger.WithFields(port.Fields{
		"trace_id":   traceID,
		"batch_size": len(deliveries),
	})
	ctx = contextkeys.ContextWithLogger(ctx, batchLogger)

	valid := 0
	hotelIDs := 0
	for _, d := range deliveries {
		if err := contracts.ValidateEvent("ListingsChangedEvent", "1.0.0", d.Body); err != nil {
			batchLogger.Warn("Invalid listings-changed event skipped", port.Fields{
				"delivery_tag": d.DeliveryTag,
				"reason":       err.Error(),
			})
			continue
		}

		var event ListingsChangedEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			batchLogger.Warn("Listings-changed event could not be decoded", port.Fields{"delivery_tag": d.DeliveryTag, "reason": err.Error()})
			continue
		}
		valid++
		hotelIDs += len(event.HotelIDs)
	}

	if valid == 0 {
		batchLogger.Warn("No valid events in batch, refresh skipped", nil)
		return nil
	}

	batchLogger.Info("Listings changed, refreshing working set", port.Fields{"events": valid, "hotel_ids": hotelIDs})

	report, err := a.refreshUC.Execute(ctx, RefreshReasonEvent)
	if err != nil {
		return fmt.Errorf("refresh use case failed: %w", err)
	}
	if report.Failed {
		return fmt.Errorf("refresh failed: %s", report.Error)
	}
	return nil
}

// Start реализует EventListenerPort
func (a *ListingsChangedConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *ListingsChangedConsumerAdapter) Close() error {
	return a.consumer.Close()
}
