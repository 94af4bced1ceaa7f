package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/schedule"
	"github.com/pscheid92/postpulse/internal/sentiment"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultLookback = 180 * 24 * time.Hour
	DefaultCacheTTL = 15 * time.Minute
)

var (
	ErrAccountRequired    = errors.New("account ID is required")
	ErrHistoryUnavailable = errors.New("history storage is not configured")
)

// Options wires the service. Engine is required; every other dependency is optional.
type Options struct {
	Engine   *schedule.Engine
	History  domain.HistorySource
	Writer   domain.HistoryWriter
	Provider domain.SentimentProvider
	Analyzer *sentiment.Analyzer
	Cache    domain.RecommendationCache
	Clock    clockwork.Clock
	Metrics  *metrics.RecommendationMetrics

	Lookback           time.Duration
	CacheTTL           time.Duration
	SentimentThreshold float64
}

// Service is the application layer. It is the only component that references multiple
// domain components and orchestrates all use cases.
type Service struct {
	engine    *schedule.Engine
	history   domain.HistorySource
	writer    domain.HistoryWriter
	provider  domain.SentimentProvider
	analyzer  *sentiment.Analyzer
	cache     domain.RecommendationCache
	clock     clockwork.Clock
	metrics   *metrics.RecommendationMetrics
	lookback  time.Duration
	cacheTTL  time.Duration
	threshold float64
	runs      singleflight.Group
}

func NewService(opts Options) *Service {
	s := &Service{
		engine:    opts.Engine,
		history:   opts.History,
		writer:    opts.Writer,
		provider:  opts.Provider,
		analyzer:  opts.Analyzer,
		cache:     opts.Cache,
		clock:     opts.Clock,
		metrics:   opts.Metrics,
		lookback:  opts.Lookback,
		cacheTTL:  opts.CacheTTL,
		threshold: opts.SentimentThreshold,
	}
	if s.analyzer == nil {
		s.analyzer = sentiment.NewAnalyzer()
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.lookback <= 0 {
		s.lookback = DefaultLookback
	}
	if s.threshold <= 0 {
		s.threshold = sentiment.DefaultLabelThreshold
	}
	return s
}

// resolveSentiment picks the signal for a run: an explicit one from the request, else the hosted
// provider, else the rule-based analyzer. Without posts there is nothing to analyze.
func (s *Service) resolveSentiment(ctx context.Context, req RecommendRequest) (domain.SentimentSignal, domain.SentimentSource) {
	if req.Signal != nil {
		return *req.Signal, domain.SentimentSourceRequest
	}
	if len(req.Posts) == 0 {
		return domain.NeutralSignal(), domain.SentimentSourceNone
	}

	if s.provider != nil {
		signal, err := s.provider.Analyze(ctx, req.Topic, req.Posts)
		if err == nil {
			return signal, domain.SentimentSourceProvider
		}
		slog.WarnContext(ctx, "Sentiment provider failed, using rule-based analyzer", "topic", req.Topic, "error", err)
	}
	return s.analyzer.Analyze(req.Topic, req.Posts), domain.SentimentSourceRuleBased
}

func (s *Service) topN(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("%w: top n must be >= 1, got %d", domain.ErrInvalidParams, requested)
	case requested == 0:
		return s.engine.Params().TopN, nil
	default:
		return requested, nil
	}
}

func validAccount(accountID string) error {
	if strings.TrimSpace(accountID) == "" {
		return ErrAccountRequired
	}
	return nil
}

func (s *Service) observe(outcome string, source domain.SentimentSource, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Runs.WithLabelValues(outcome).Inc()
	s.metrics.Duration.Observe(s.clock.Since(start).Seconds())
	if source != "" {
		s.metrics.SentimentSource.WithLabelValues(string(source)).Inc()
	}
}
