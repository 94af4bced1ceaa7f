package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	"github.com/pscheid92/postpulse/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// RecommendationCache is a two-layer cache for encoded recommendation results: a bounded
// in-process LRU in front of Redis. Either layer may be absent. Redis failures are logged and
// reported as misses so a broken Redis never fails a recommendation.
type RecommendationCache struct {
	rdb     goredis.Cmdable
	local   *expirable.LRU[string, []byte]
	metrics *metrics.CacheMetrics
}

var _ domain.RecommendationCache = (*RecommendationCache)(nil)

// NewRecommendationCache builds the cache. rdb may be nil (local only); localSize 0 disables the
// local layer. Local entries live for localTTL regardless of the TTL passed to Set.
func NewRecommendationCache(rdb goredis.Cmdable, localSize int, localTTL time.Duration, m *metrics.CacheMetrics) *RecommendationCache {
	c := &RecommendationCache{rdb: rdb, metrics: m}
	if localSize > 0 {
		c.local = expirable.NewLRU[string, []byte](localSize, nil, localTTL)
	}
	return c
}

func (c *RecommendationCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.local != nil {
		if v, ok := c.local.Get(key); ok {
			c.hit(metrics.LayerLocal)
			return v, nil
		}
		c.miss(metrics.LayerLocal)
	}

	if c.rdb == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "Redis recommendation cache GET failed", "key", key, "error", err)
			c.fail("get")
		}
		c.miss(metrics.LayerRedis)
		return nil, domain.ErrCacheMiss
	}

	c.hit(metrics.LayerRedis)
	if c.local != nil {
		c.local.Add(key, data)
	}
	return data, nil
}

func (c *RecommendationCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if c.local != nil {
		c.local.Add(key, value)
	}
	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.fail("set")
		return fmt.Errorf("failed to write recommendation cache: %w", err)
	}
	return nil
}

func (c *RecommendationCache) hit(layer string) {
	if c.metrics != nil {
		c.metrics.Hits.WithLabelValues(layer).Inc()
	}
}

func (c *RecommendationCache) miss(layer string) {
	if c.metrics != nil {
		c.metrics.Misses.WithLabelValues(layer).Inc()
	}
}

func (c *RecommendationCache) fail(op string) {
	if c.metrics != nil {
		c.metrics.Errors.WithLabelValues(op).Inc()
	}
}
