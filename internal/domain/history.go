package domain

import (
	"context"
	"time"
)

// HistorySource loads the engagement history of an account over a lookback window.
type HistorySource interface {
	ListObservations(ctx context.Context, accountID string, since time.Time) ([]Observation, error)
}

// HistoryWriter records new engagement observations for an account.
// Re-recording the same external post ID replaces the earlier observation.
type HistoryWriter interface {
	SaveObservations(ctx context.Context, accountID string, records []ObservationRecord) (int, error)
}

// ObservationRecord is an observation tagged with the platform's post ID for idempotent ingest.
type ObservationRecord struct {
	ExternalID  string
	Observation Observation
}
