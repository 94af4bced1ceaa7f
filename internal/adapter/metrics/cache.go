package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache layers.
const (
	LayerLocal = "local"
	LayerRedis = "redis"
)

// CacheMetrics holds Prometheus metrics for the two-layer recommendation cache.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation_cache",
			Name:      "hits_total",
			Help:      "Total number of recommendation cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation_cache",
			Name:      "misses_total",
			Help:      "Total number of recommendation cache misses, by layer.",
		}, []string{"layer"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation_cache",
			Name:      "errors_total",
			Help:      "Total number of recommendation cache backend errors, by operation.",
		}, []string{"operation"}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Errors)
	return m
}
