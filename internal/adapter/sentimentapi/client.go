// Package sentimentapi is a client for a hosted sentiment analysis service that scores a batch of
// posts about a topic.
package sentimentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pscheid92/postpulse/internal/adapter/metrics"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/platform/retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	maxResponseBytes = 1 << 20
	maxRetryAfter    = 30 * time.Second
)

var DefaultRetryPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   time.Second,
	MaxBackoff:       maxRetryAfter,
	RateLimitBackoff: 5 * time.Second,
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	// RateLimit caps outgoing requests. Zero means one request every 750ms.
	RateLimit rate.Limit
	Retry     retry.Policy
}

// Client implements domain.SentimentProvider over HTTP. Calls are rate limited, retried on 429 and
// 5xx responses, and guarded by a circuit breaker that fails fast while the service is down.
type Client struct {
	url     string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	policy  retry.Policy
	metrics *metrics.SentimentMetrics
}

var _ domain.SentimentProvider = (*Client)(nil)

func NewClient(cfg Config, m *metrics.SentimentMetrics) *Client {
	limit := cfg.RateLimit
	if limit == 0 {
		limit = rate.Every(750 * time.Millisecond)
	}

	c := &Client{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		policy:  cfg.Retry,
		metrics: m,
	}
	c.policy.OnRetry = c.onRetry

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sentiment-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return c
}

type analyzeRequest struct {
	Topic string   `json:"topic"`
	Texts []string `json:"texts"`
}

// Analyze scores texts about topic. No texts yields the neutral signal without a request.
func (c *Client) Analyze(ctx context.Context, topic string, texts []string) (domain.SentimentSignal, error) {
	if len(texts) == 0 {
		return domain.NeutralSignal(), nil
	}

	body, err := json.Marshal(analyzeRequest{Topic: topic, Texts: texts})
	if err != nil {
		return domain.SentimentSignal{}, fmt.Errorf("failed to encode sentiment request: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		return retry.Do(ctx, c.policy, classify, func(ctx context.Context) ([]byte, error) {
			return c.post(ctx, body)
		})
	})
	c.observe(err, time.Since(start))
	if err != nil {
		return domain.SentimentSignal{}, fmt.Errorf("sentiment API call failed: %w", err)
	}

	return parseResponse(result.([]byte))
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Code:  resp.StatusCode,
			Body:  string(data),
			After: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return data, nil
}

// StatusError is a non-200 answer from the service.
type StatusError struct {
	Code  int
	Body  string
	After time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sentiment API error (status %d): %s", e.Code, e.Body)
}

func (e *StatusError) RetryAfter() time.Duration { return e.After }

func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}

	var status *StatusError
	if !errors.As(err, &status) {
		// Transport failures.
		return retry.Retry
	}
	switch {
	case status.Code == http.StatusTooManyRequests:
		return retry.After
	case status.Code >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}

func parseRetryAfter(v string) time.Duration {
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds <= 0 {
		return 0
	}
	return min(time.Duration(seconds)*time.Second, maxRetryAfter)
}

func (c *Client) onRetry(attempt int, err error, backoff time.Duration) {
	slog.Warn("Retrying sentiment API call", "attempt", attempt, "backoff", backoff, "error", err)
	if c.metrics != nil {
		c.metrics.Retries.Inc()
	}
}

func (c *Client) observe(err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.Duration.Observe(elapsed.Seconds())

	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "rejected"
	case err != nil:
		result = "error"
	}
	c.metrics.Requests.WithLabelValues(result).Inc()
}
