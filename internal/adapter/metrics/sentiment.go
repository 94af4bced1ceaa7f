package metrics

import "github.com/prometheus/client_golang/prometheus"

// SentimentMetrics holds Prometheus metrics for the hosted sentiment API client.
type SentimentMetrics struct {
	Requests *prometheus.CounterVec
	Duration prometheus.Histogram
	Retries  prometheus.Counter
}

// NewSentimentMetrics creates and registers sentiment client metrics on the given registry.
func NewSentimentMetrics(reg prometheus.Registerer) *SentimentMetrics {
	m := &SentimentMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sentiment_api",
			Name:      "requests_total",
			Help:      "Total number of sentiment API calls, by result.",
		}, []string{"result"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sentiment_api",
			Name:      "request_duration_seconds",
			Help:      "Duration of sentiment API calls in seconds, including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sentiment_api",
			Name:      "retries_total",
			Help:      "Total number of retried sentiment API attempts.",
		}),
	}

	reg.MustRegister(m.Requests, m.Duration, m.Retries)
	return m
}
