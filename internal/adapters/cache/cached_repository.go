package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

// CachedRepository оборачивает репозиторий: сначала кэш, на промахе - источник.
// Ошибки кэша не ломают загрузку, неудачная загрузка в кэш не пишется.
type CachedRepository struct {
	inner port.ListingRepositoryPort
	cache port.ListingCachePort
	key   string
	ttl   time.Duration
}

func NewCachedRepository(inner port.ListingRepositoryPort, cache port.ListingCachePort, key string, ttl time.Duration) (*CachedRepository, error) {
	if inner == nil || cache == nil {
		return nil, fmt.Errorf("cached repository: inner repository and cache are required")
	}
	if key == "" {
		return nil, fmt.Errorf("cached repository: cache key is required")
	}
	return &CachedRepository{inner: inner, cache: cache, key: key, ttl: ttl}, nil
}

// cachedFetch - формат значения в кэше
type cachedFetch struct {
	Records  []domain.HotelRecord `json:"records"`
	Rejected int                  `json:"rejected"`
	CachedAt time.Time            `json:"cached_at"`
}

func (r *CachedRepository) FetchAll(ctx context.Context) (*domain.FetchResult, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "CachedRepository",
		"cache_key": r.key,
	})

	raw, err := r.cache.Get(ctx, r.key)
	switch {
	case err == nil:
		var cached cachedFetch
		if err := json.Unmarshal(raw, &cached); err != nil {
			repoLogger.Warn("Corrupted cache entry, falling back to source", port.Fields{"error": err.Error()})
			break
		}
		repoLogger.Debug("Working set served from cache", port.Fields{
			"records":   len(cached.Records),
			"cached_at": cached.CachedAt,
		})
		if cached.Records == nil {
			cached.Records = []domain.HotelRecord{}
		}
		return &domain.FetchResult{Records: cached.Records, Rejected: cached.Rejected}, nil
	case errors.Is(err, port.ErrCacheMiss):
		repoLogger.Debug("Cache miss", nil)
	default:
		repoLogger.Warn("Cache read failed, falling back to source", port.Fields{"error": err.Error()})
	}

	result, err := r.inner.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedFetch{Records: result.Records, Rejected: result.Rejected, CachedAt: time.Now().UTC()})
	if err != nil {
		repoLogger.Warn("Failed to encode working set for cache", port.Fields{"error": err.Error()})
		return result, nil
	}
	if err := r.cache.Set(ctx, r.key, payload, r.ttl); err != nil {
		repoLogger.Warn("Cache write failed", port.Fields{"error": err.Error()})
	}
	return result, nil
}
