package cache

import (
	"context"
	"time"

	"listing-service/internal/core/port"
)

// NoOpCache - кэш выключен: всегда промах.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, port.ErrCacheMiss
}

func (c *NoOpCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (c *NoOpCache) Delete(_ context.Context, _ string) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// NewListingsCache выбирает кэш под рабочий набор. Рабочий набор и так живёт
// в памяти процесса, поэтому смысл имеет только общий Redis; без него кэш выключен.
func NewListingsCache(ctx context.Context, redisEnabled bool, cfg Config) (port.ListingCachePort, error) {
	if !redisEnabled {
		return NewNoOpCache(), nil
	}
	redisCache, err := NewRedisCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return redisCache, nil
}
