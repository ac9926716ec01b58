package rabbitmq_producer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublisherConfig конфигурация для производителя
type PublisherConfig struct {
	rabbitmq_common.Config
	ExchangeName    string // пустая строка - default exchange
	ExchangeType    string // direct, fanout, topic, headers
	DurableExchange bool
	ExchangeArgs    amqp.Table

	// Если false, обменник должен уже существовать
	DeclareExchangeIfMissing bool

	Logger rabbitmq_common.Logger
}

func (c PublisherConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if c.DeclareExchangeIfMissing && (c.ExchangeName == "") != (c.ExchangeType == "") {
		return fmt.Errorf("producer: exchange name and type must both be set to declare an exchange")
	}
	return nil
}

// Publisher публикует сообщения в один обменник. Канал amqp не потокобезопасен,
// поэтому публикации сериализуются.
type Publisher struct {
	config     PublisherConfig
	connection *amqp.Connection

	mu      sync.Mutex
	channel *amqp.Channel

	Logger rabbitmq_common.Logger
}

func NewPublisher(cfg PublisherConfig, connManager *rabbitmq_common.ConnectionManager) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("producer: failed to get channel from manager: %w", err)
	}

	if cfg.DeclareExchangeIfMissing {
		logger.Debug("Declaring exchange", "name", cfg.ExchangeName, "type", cfg.ExchangeType)
		err = ch.ExchangeDeclare(
			cfg.ExchangeName,
			cfg.ExchangeType,
			cfg.DurableExchange,
			false, // auto-delete
			false, // internal
			false, // no-wait
			cfg.ExchangeArgs,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("producer: failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	logger.Debug("Producer ready", "exchange", cfg.ExchangeName)
	return &Publisher{
		config:     cfg,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}, nil
}

// Publish публикует сообщение как есть
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.connection == nil || p.connection.IsClosed() {
		return fmt.Errorf("producer: not connected or channel/connection is closed")
	}

	err := p.channel.PublishWithContext(ctx, p.config.ExchangeName, routingKey, false, false, msg)
	if err != nil {
		return fmt.Errorf("producer: failed to publish message: %w", err)
	}
	return nil
}

// PublishJSON сериализует payload и публикует его как persistent-сообщение.
// headers попадают в заголовки AMQP (trace_id, event_type и т.п.).
func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("producer: failed to marshal payload: %w", err)
	}

	return p.Publish(ctx, routingKey, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         body,
	})
}

// Close закрывает канал; соединение принадлежит ConnectionManager
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}
	err := p.channel.Close()
	p.channel = nil
	if err != nil {
		p.Logger.Error(err, "Error closing channel")
		return err
	}
	p.Logger.Info("Producer closed")
	return nil
}
