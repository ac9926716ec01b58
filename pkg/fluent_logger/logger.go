package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит конфигурацию для подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или "fluent-bit" в Docker
	Port      int    // обычно 24224
	TagPrefix string // префикс тегов этого сервиса, например "listing-service"
	// Async - не блокировать запрос на отправке лога; записи буферизуются клиентом
	Async   bool
	Timeout time.Duration
}

func (c Config) validate() error {
	if c.TagPrefix == "" {
		return fmt.Errorf("fluentd tag prefix is required")
	}
	if c.Host == "" {
		return fmt.Errorf("fluentd host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("fluentd port %d is out of range", c.Port)
	}
	return nil
}

// NewClient создает клиент Fluent Bit. Соединение не проверяется:
// ошибки проявятся при первой отправке.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	fluentCfg := fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
		Async:      cfg.Async,
	}
	if cfg.Timeout > 0 {
		fluentCfg.Timeout = cfg.Timeout
		fluentCfg.WriteTimeout = cfg.Timeout
	}

	logger, err := fluent.New(fluentCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}
	return logger, nil
}
