package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/history"
)

// IngestObservation is one post's engagement as reported by a client. Exactly one of
// EngagementCount and Metrics should be set; EngagementCount wins when both are.
type IngestObservation struct {
	ExternalID      string               `json:"external_id"`
	PostedAt        time.Time            `json:"posted_at"`
	Platform        string               `json:"platform"`
	EngagementCount *int64               `json:"engagement_count,omitempty"`
	Metrics         *history.PostMetrics `json:"metrics,omitempty"`
}

// IngestRejection explains why one submitted observation was not stored.
type IngestRejection struct {
	Index      int    `json:"index"`
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

type IngestResult struct {
	Accepted int               `json:"accepted"`
	Rejected []IngestRejection `json:"rejected"`
}

// IngestObservations validates and stores observations for an account. Invalid entries are
// reported, not fatal; only a storage failure fails the call.
func (s *Service) IngestObservations(ctx context.Context, accountID string, items []IngestObservation) (*IngestResult, error) {
	if err := validAccount(accountID); err != nil {
		return nil, err
	}
	if s.writer == nil {
		return nil, ErrHistoryUnavailable
	}

	now := s.clock.Now()
	result := &IngestResult{Rejected: []IngestRejection{}}
	records := make([]domain.ObservationRecord, 0, len(items))

	for i, item := range items {
		obs, reason := toObservation(item, now)
		if reason != "" {
			result.Rejected = append(result.Rejected, IngestRejection{Index: i, ExternalID: item.ExternalID, Reason: reason})
			continue
		}
		records = append(records, domain.ObservationRecord{ExternalID: item.ExternalID, Observation: obs})
	}

	if len(records) > 0 {
		n, err := s.writer.SaveObservations(ctx, accountID, records)
		if err != nil {
			s.countIngest("error", len(records))
			return nil, fmt.Errorf("failed to store observations: %w", err)
		}
		result.Accepted = n
	}

	s.countIngest("accepted", result.Accepted)
	s.countIngest("rejected", len(result.Rejected))
	slog.InfoContext(ctx, "Observations ingested", "account_id", accountID, "accepted", result.Accepted, "rejected", len(result.Rejected))
	return result, nil
}

func toObservation(item IngestObservation, now time.Time) (domain.Observation, string) {
	if strings.TrimSpace(item.ExternalID) == "" {
		return domain.Observation{}, "missing external_id"
	}
	if item.PostedAt.IsZero() {
		return domain.Observation{}, "missing posted_at"
	}
	if item.PostedAt.After(now) {
		return domain.Observation{}, "posted_at is in the future"
	}

	platform, ok := domain.ParsePlatform(strings.ToLower(strings.TrimSpace(item.Platform)))
	if !ok {
		return domain.Observation{}, fmt.Sprintf("unknown platform %q", item.Platform)
	}

	var count int64
	switch {
	case item.EngagementCount != nil:
		count = *item.EngagementCount
		if count < 0 {
			return domain.Observation{}, "engagement_count must not be negative"
		}
	case item.Metrics != nil:
		c, err := history.EngagementCount(*item.Metrics)
		if err != nil {
			return domain.Observation{}, err.Error()
		}
		count = c
	default:
		return domain.Observation{}, "either engagement_count or metrics is required"
	}

	return domain.Observation{Timestamp: item.PostedAt, EngagementCount: count, Platform: platform}, ""
}

func (s *Service) countIngest(result string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.IngestedObservations.WithLabelValues(result).Add(float64(n))
	}
}
