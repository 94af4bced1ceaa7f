package domain

import (
	"context"
	"time"
)

// RecommendationCache stores encoded recommendation results for a bounded time.
// Get returns ErrCacheMiss when the key is absent or expired.
type RecommendationCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
