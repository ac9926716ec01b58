package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BatchMessageHandler обрабатывает пачку сообщений целиком. Ошибка - вся пачка уходит на ретрай.
type BatchMessageHandler func(ctx context.Context, deliveries []amqp.Delivery) error

// BatchConsumer копит сообщения до batchSize или до batchTimeout с момента первого сообщения пачки.
// Используется, чтобы серию однотипных событий обработать одним действием.
type BatchConsumer struct {
	baseConsumer *baseConsumer
	handler      BatchMessageHandler
	batchSize    int
	batchTimeout time.Duration
}

func NewBatchConsumer(cfg ConsumerConfig, handler BatchMessageHandler, batchSize int, batchTimeout time.Duration, connManager *rabbitmq_common.ConnectionManager) (*BatchConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("batch Consumer: message handler is required")
	}
	if batchSize <= 0 || batchTimeout <= 0 {
		return nil, fmt.Errorf("batch Consumer: batch size and timeout must be positive")
	}
	if cfg.PrefetchCount < batchSize {
		cfg.PrefetchCount = batchSize
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("batch Consumer: %w", err)
	}

	return &BatchConsumer{
		baseConsumer: bc,
		handler:      handler,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}, nil
}

// StartConsuming блокируется до отмены ctx (nil) или закрытия соединения брокером (ошибка).
func (c *BatchConsumer) StartConsuming(ctx context.Context) error {
	if c.baseConsumer.channel == nil || c.baseConsumer.connection.IsClosed() {
		return fmt.Errorf("batch Consumer: not connected")
	}

	msgs, err := c.baseConsumer.channel.Consume(
		c.baseConsumer.actualQueueName,
		c.baseConsumer.config.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("batch Consumer: failed to register a consumer: %w", err)
	}

	c.baseConsumer.Logger.Info("Waiting for messages on queue",
		"queue_name", c.baseConsumer.actualQueueName,
		"batch_size", c.batchSize,
		"batch_timeout", c.batchTimeout.String())

	c.baseConsumer.wg.Add(1)
	go func() {
		defer c.baseConsumer.wg.Done()
		collectBatches(ctx, msgs, c.batchSize, c.batchTimeout, func(batch []amqp.Delivery) {
			// Последнюю пачку при остановке обрабатываем с фоновым контекстом, иначе handler сразу получит отмену
			c.processBatch(context.WithoutCancel(ctx), batch)
		})
	}()

	notifyClose := c.baseConsumer.connection.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-ctx.Done():
		c.baseConsumer.Logger.Info("Context cancelled for consumer. Shutting down.",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		return nil
	case amqpErr := <-notifyClose:
		if amqpErr == nil {
			return fmt.Errorf("batch Consumer: connection closed")
		}
		c.baseConsumer.Logger.Error(amqpErr, "Connection closed for consumer",
			"consumer_tag", c.baseConsumer.config.ConsumerTag)
		return amqpErr
	}
}

// collectBatches читает msgs и вызывает flush для каждой собранной пачки.
// При отмене ctx или закрытии msgs недособранная пачка тоже передаётся в flush.
func collectBatches(ctx context.Context, msgs <-chan amqp.Delivery, batchSize int, batchTimeout time.Duration, flush func([]amqp.Delivery)) {
	batch := make([]amqp.Delivery, 0, batchSize)
	// С Go 1.23 Stop/Reset гарантируют, что старое значение из timer.C не придёт, сливать канал не нужно
	timer := time.NewTimer(batchTimeout)
	timer.Stop()

	emit := func() {
		if len(batch) > 0 {
			flush(batch)
			batch = make([]amqp.Delivery, 0, batchSize)
		}
	}

	for {
		select {
		case <-ctx.Done():
			emit()
			return

		case msg, ok := <-msgs:
			if !ok {
				emit()
				return
			}
			if len(batch) == 0 {
				timer.Reset(batchTimeout)
			}
			batch = append(batch, msg)

			if len(batch) >= batchSize {
				timer.Stop()
				emit()
			}

		case <-timer.C:
			emit()
		}
	}
}

// processBatch вызывает обработчик и подтверждает или отклоняет пачку.
func (c *BatchConsumer) processBatch(ctx context.Context, batch []amqp.Delivery) {
	logger := c.baseConsumer.Logger
	lastTag := batch[len(batch)-1].DeliveryTag

	err := c.handler(ctx, batch)
	if err == nil {
		if ackErr := c.baseConsumer.channel.Ack(lastTag, true); ackErr != nil {
			logger.Error(ackErr, "Failed to ack batch", "batch_size", len(batch))
			return
		}
		logger.Debug("Batch acked", "batch_size", len(batch))
		return
	}

	logger.Error(err, "Handler returned error for batch", "batch_size", len(batch))

	if !c.baseConsumer.config.EnableRetryMechanism {
		_ = c.baseConsumer.channel.Nack(lastTag, true, false)
		logger.Warn("Retry disabled. Batch dropped.", "batch_size", len(batch))
		return
	}

	for _, d := range batch {
		deaths := deathCount(d, c.baseConsumer.actualQueueName)
		if deaths < int64(c.baseConsumer.config.MaxRetries) {
			logger.Info("Nacking message for retry", "delivery_tag", d.DeliveryTag, "death_count", deaths)
			_ = d.Nack(false, false)
			continue
		}

		logger.Warn("Max retries reached for message. Publishing to final DLX.", "delivery_tag", d.DeliveryTag)
		pubErr := c.baseConsumer.finalDlxPublisher.Publish(ctx, c.baseConsumer.config.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if pubErr != nil {
			logger.Error(pubErr, "Failed to publish to final DLX. Nacking to retry again.", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
}

// Close дожидается обработки последней пачки и закрывает канал.
func (c *BatchConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
