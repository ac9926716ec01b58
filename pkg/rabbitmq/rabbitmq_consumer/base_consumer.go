package rabbitmq_consumer

import (
	"fmt"
	"sync"

	"listing-service/pkg/rabbitmq/rabbitmq_common"
	"listing-service/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig конфигурация для потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Очередь. Пустое имя при DeclareQueue - имя сгенерирует сервер.
	QueueName       string
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Обменник для привязки; пустое имя - без привязки
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	RoutingKeyForBind      string

	PrefetchCount int // 0 - без ограничений

	ConsumerTag string

	// Ретраи: сообщение с ошибкой уходит через retry-обменник в очередь ожидания с TTL
	// и возвращается в основной обменник; после MaxRetries - в финальную DLQ.
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return fmt.Errorf("queue name is required if DeclareQueue is false")
	}
	if c.DeclareExchangeForBind && (c.ExchangeNameForBind == "" || c.ExchangeTypeForBind == "") {
		return fmt.Errorf("exchange name and type are required to declare an exchange for binding")
	}
	if c.EnableRetryMechanism {
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("retry mechanism requires retry exchange/queue and final DLX/DLQ names")
		}
		if c.RetryTTL <= 0 || c.MaxRetries <= 0 {
			return fmt.Errorf("retry mechanism requires positive RetryTTL and MaxRetries")
		}
	}
	return nil
}

// baseConsumer - общая часть: канал, QoS, топология и ретраи
type baseConsumer struct {
	config            ConsumerConfig
	connection        *amqp.Connection
	channel           *amqp.Channel
	actualQueueName   string
	finalDlxPublisher *rabbitmq_producer.Publisher
	wg                sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func newBaseConsumer(cfg ConsumerConfig, connManager *rabbitmq_common.ConnectionManager) (*baseConsumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("base Consumer: %w", err)
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("base Consumer: failed to get channel from manager: %w", err)
	}

	c := &baseConsumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}

	if err := c.setupTopology(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("base Consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.finalDlxPublisher, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("base Consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

func (c *baseConsumer) setupTopology() error {
	cfg := &c.config

	if cfg.PrefetchCount > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", cfg.PrefetchCount)
		if err := c.channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if cfg.EnableRetryMechanism {
		if cfg.QueueArgs == nil {
			cfg.QueueArgs = amqp.Table{}
		}
		// Отклонённые сообщения основной очереди идут в retry-обменник
		cfg.QueueArgs["x-dead-letter-exchange"] = cfg.RetryExchange
	}

	c.actualQueueName = cfg.QueueName
	if cfg.DeclareQueue {
		c.Logger.Debug("Declaring queue", "name", cfg.QueueName, "durable", cfg.DurableQueue)
		q, err := c.channel.QueueDeclare(cfg.QueueName, cfg.DurableQueue, cfg.AutoDeleteQueue, cfg.ExclusiveQueue, false, cfg.QueueArgs)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if cfg.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange", "name", cfg.ExchangeNameForBind, "type", cfg.ExchangeTypeForBind)
		err := c.channel.ExchangeDeclare(cfg.ExchangeNameForBind, cfg.ExchangeTypeForBind, cfg.DurableExchangeForBind, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", cfg.ExchangeNameForBind,
			"routing_key", cfg.RoutingKeyForBind,
		)
		if err := c.channel.QueueBind(c.actualQueueName, cfg.RoutingKeyForBind, cfg.ExchangeNameForBind, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.EnableRetryMechanism {
		return c.setupRetryTopology()
	}
	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

func (c *baseConsumer) setupRetryTopology() error {
	cfg := c.config

	if err := c.channel.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := c.channel.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := c.channel.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err := c.channel.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	// Очередь ожидания без потребителей: по TTL сообщение возвращается в основной обменник
	waitArgs := amqp.Table{
		"x-message-ttl":             int32(cfg.RetryTTL),
		"x-dead-letter-exchange":    cfg.ExchangeNameForBind,
		"x-dead-letter-routing-key": cfg.RoutingKeyForBind,
	}
	if _, err := c.channel.QueueDeclare(cfg.RetryQueue, true, false, false, false, waitArgs); err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := c.channel.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}

	c.Logger.Debug("Retry topology ready", "retry_queue", cfg.RetryQueue, "ttl_ms", cfg.RetryTTL)
	return nil
}

// deathCount - сколько раз сообщение было отклонено в очереди queueName (по заголовку x-death)
func deathCount(d amqp.Delivery, queueName string) int64 {
	deaths, ok := d.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}

// Close дожидается обработчиков и закрывает канал; соединение принадлежит ConnectionManager
func (c *baseConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.finalDlxPublisher != nil {
		if err := c.finalDlxPublisher.Close(); err != nil {
			c.Logger.Error(err, "Error closing final DLX publisher")
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			if firstErr == nil {
				firstErr = err
			}
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
