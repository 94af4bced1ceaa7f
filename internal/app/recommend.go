package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/schedule"
	"github.com/pscheid92/postpulse/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

// RecommendRequest asks for posting windows. Signal, when set, bypasses sentiment analysis of
// Posts. TopN 0 uses the configured default.
type RecommendRequest struct {
	AccountID string
	Topic     string
	Hashtag   string
	Posts     []string
	Signal    *domain.SentimentSignal
	TopN      int
}

// RecommendResult is the answer to one recommendation request.
type RecommendResult struct {
	RunID            string                  `json:"run_id"`
	AccountID        string                  `json:"account_id,omitempty"`
	GeneratedAt      time.Time               `json:"generated_at"`
	Cached           bool                    `json:"cached"`
	Fallback         bool                    `json:"fallback"`
	Sentiment        domain.SentimentSignal  `json:"sentiment"`
	SentimentSource  domain.SentimentSource  `json:"sentiment_source"`
	SentimentLabel   string                  `json:"sentiment_label"`
	SentimentWeight  float64                 `json:"sentiment_weight"`
	ObservationCount int                     `json:"observation_count"`
	Recommendations  []domain.Recommendation `json:"recommendations"`
	Rejected         []schedule.Rejection    `json:"rejected,omitempty"`
	Insights         []string                `json:"insights"`
	ContentIdeas     []string                `json:"content_ideas"`
}

// Recommend loads the account's recent history and resolves sentiment concurrently, then ranks
// posting windows. Identical requests within the cache TTL are served from cache, and concurrent
// identical requests share one engine run.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	start := s.clock.Now()

	if err := validAccount(req.AccountID); err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	topN, err := s.topN(req.TopN)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var (
		observations []domain.Observation
		signal       domain.SentimentSignal
		source       domain.SentimentSource
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs, err := s.history.ListObservations(gctx, req.AccountID, now.Add(-s.lookback))
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		observations = obs
		return nil
	})
	g.Go(func() error {
		signal, source = s.resolveSentiment(gctx, req)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.observe(metrics.OutcomeError, "", start)
		return nil, err
	}

	return s.run(ctx, runInput{
		accountID:    req.AccountID,
		observations: observations,
		signal:       signal,
		source:       source,
		hashtag:      req.Hashtag,
		topN:         topN,
		now:          now,
		cacheable:    true,
	}, start)
}

// Evaluate ranks posting windows for inline history without touching storage or the cache.
func (s *Service) Evaluate(ctx context.Context, observations []domain.Observation, req RecommendRequest) (*RecommendResult, error) {
	start := s.clock.Now()

	topN, err := s.topN(req.TopN)
	if err != nil {
		return nil, err
	}
	signal, source := s.resolveSentiment(ctx, req)

	return s.run(ctx, runInput{
		accountID:    req.AccountID,
		observations: observations,
		signal:       signal,
		source:       source,
		hashtag:      req.Hashtag,
		topN:         topN,
		now:          s.clock.Now(),
	}, start)
}

type runInput struct {
	accountID    string
	observations []domain.Observation
	signal       domain.SentimentSignal
	source       domain.SentimentSource
	hashtag      string
	topN         int
	now          time.Time
	cacheable    bool
}

func (s *Service) run(ctx context.Context, in runInput, start time.Time) (*RecommendResult, error) {
	if _, err := sentiment.Normalize(in.signal); err != nil {
		s.observe(metrics.OutcomeError, in.source, start)
		return nil, err
	}

	useCache := in.cacheable && s.cache != nil && s.cacheTTL > 0
	key := cacheKey(in, s.engine.Params())

	if useCache {
		if cached, ok := s.lookup(ctx, key); ok {
			cached.Cached = true
			return s.finish(ctx, cached, metrics.OutcomeCached, in.source, start), nil
		}
	}

	v, err, _ := s.runs.Do(key, func() (any, error) {
		result, err := s.compute(in)
		if err != nil {
			return nil, err
		}
		if useCache {
			s.store(ctx, key, result)
		}
		return result, nil
	})
	if err != nil {
		s.observe(metrics.OutcomeError, in.source, start)
		return nil, err
	}

	// Callers sharing a run get their own copy to stamp.
	result := *v.(*RecommendResult)
	outcome := metrics.OutcomeComputed
	if result.Fallback {
		outcome = metrics.OutcomeFallback
	}
	return s.finish(ctx, &result, outcome, in.source, start), nil
}

func (s *Service) compute(in runInput) (*RecommendResult, error) {
	result := &RecommendResult{
		AccountID:        in.accountID,
		GeneratedAt:      in.now,
		Sentiment:        in.signal,
		SentimentSource:  in.source,
		SentimentLabel:   sentiment.Label(in.signal, s.threshold),
		ObservationCount: len(in.observations),
		Insights:         sentiment.Insights(in.signal),
		ContentIdeas:     sentiment.ContentIdeas(in.signal, in.hashtag),
	}

	plan, err := s.engine.Recommend(in.observations, in.signal, in.now, in.topN)
	switch {
	case errors.Is(err, domain.ErrInsufficientHistory):
		params := s.engine.Params()
		recs, err := BestPractice(in.now, in.topN, params)
		if err != nil {
			return nil, err
		}
		weight, _ := sentiment.Normalize(in.signal)
		result.Fallback = true
		result.SentimentWeight = weight
		result.Recommendations = recs
		result.Rejected = schedule.Aggregate(in.observations, in.now, params).Rejected
	case err != nil:
		return nil, err
	default:
		result.SentimentWeight = plan.SentimentWeight
		result.Recommendations = plan.Recommendations
		result.Rejected = plan.Rejected
	}

	if s.metrics != nil && len(result.Rejected) > 0 {
		s.metrics.RejectedObservations.Add(float64(len(result.Rejected)))
	}
	return result, nil
}

func (s *Service) finish(ctx context.Context, result *RecommendResult, outcome string, source domain.SentimentSource, start time.Time) *RecommendResult {
	result.RunID = uuid.NewString()
	s.observe(outcome, source, start)

	slog.InfoContext(ctx, "Recommendation served",
		"run_id", result.RunID,
		"account_id", result.AccountID,
		"outcome", outcome,
		"sentiment_source", string(source),
		"observations", result.ObservationCount,
		"rejected", len(result.Rejected),
		"recommendations", len(result.Recommendations),
	)
	return result
}

func (s *Service) lookup(ctx context.Context, key string) (*RecommendResult, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			slog.WarnContext(ctx, "Recommendation cache read failed", "error", err)
		}
		return nil, false
	}

	var result RecommendResult
	if err := json.Unmarshal(data, &result); err != nil {
		slog.WarnContext(ctx, "Discarding undecodable cached recommendation", "error", err)
		return nil, false
	}
	return &result, true
}

// store is best effort: a failed write only costs a recompute.
func (s *Service) store(ctx context.Context, key string, result *RecommendResult) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode recommendation for cache", "error", err)
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), key, data, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "Recommendation cache write failed", "error", err)
	}
}
