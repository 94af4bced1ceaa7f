package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
)

// --- Mock implementations ---

type mockHistory struct {
	listFn func(ctx context.Context, accountID string, since time.Time) ([]domain.Observation, error)
	saveFn func(ctx context.Context, accountID string, records []domain.ObservationRecord) (int, error)
}

func (m *mockHistory) ListObservations(ctx context.Context, accountID string, since time.Time) ([]domain.Observation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, accountID, since)
	}
	return nil, nil
}

func (m *mockHistory) SaveObservations(ctx context.Context, accountID string, records []domain.ObservationRecord) (int, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, accountID, records)
	}
	return 0, fmt.Errorf("not implemented")
}

type mockProvider struct {
	analyzeFn func(ctx context.Context, topic string, texts []string) (domain.SentimentSignal, error)
}

func (m *mockProvider) Analyze(ctx context.Context, topic string, texts []string) (domain.SentimentSignal, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, topic, texts)
	}
	return domain.SentimentSignal{}, fmt.Errorf("not implemented")
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
