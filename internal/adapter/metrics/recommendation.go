package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation outcomes.
const (
	OutcomeComputed = "computed"
	OutcomeCached   = "cached"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// RecommendationMetrics holds Prometheus metrics for recommendation runs.
type RecommendationMetrics struct {
	Runs                 *prometheus.CounterVec
	Duration             prometheus.Histogram
	RejectedObservations prometheus.Counter
	SentimentSource      *prometheus.CounterVec
	IngestedObservations *prometheus.CounterVec
}

// NewRecommendationMetrics creates and registers recommendation metrics on the given registry.
func NewRecommendationMetrics(reg prometheus.Registerer) *RecommendationMetrics {
	m := &RecommendationMetrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_runs_total",
			Help:      "Total number of recommendation requests, by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Duration of recommendation requests in seconds, including history and sentiment lookups.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RejectedObservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_rejected_total",
			Help:      "Total number of observations skipped as invalid during aggregation.",
		}),
		SentimentSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentiment_source_total",
			Help:      "Total number of recommendation runs, by where the sentiment signal came from.",
		}, []string{"source"}),
		IngestedObservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_ingested_total",
			Help:      "Total number of observations received for storage, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Runs, m.Duration, m.RejectedObservations, m.SentimentSource, m.IngestedObservations)
	return m
}
