package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pscheid92/postpulse/internal/domain"
)

// DBTX is the subset of a pgx pool the repository uses. *pgxpool.Pool satisfies it.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const listObservationsQuery = `SELECT posted_at, engagement_count, platform
FROM observations
WHERE account_id = $1 AND posted_at >= $2
ORDER BY posted_at, external_id`

const upsertObservationQuery = `INSERT INTO observations (account_id, external_id, posted_at, engagement_count, platform)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (account_id, external_id) DO UPDATE SET
	posted_at = EXCLUDED.posted_at,
	engagement_count = EXCLUDED.engagement_count,
	platform = EXCLUDED.platform,
	updated_at = NOW()`

type HistoryRepo struct {
	db DBTX
}

var (
	_ domain.HistorySource = (*HistoryRepo)(nil)
	_ domain.HistoryWriter = (*HistoryRepo)(nil)
)

func NewHistoryRepo(db DBTX) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// ListObservations returns the account's observations posted at or after since, oldest first.
func (r *HistoryRepo) ListObservations(ctx context.Context, accountID string, since time.Time) ([]domain.Observation, error) {
	rows, err := r.db.Query(ctx, listObservationsQuery, accountID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	observations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Observation, error) {
		var (
			postedAt time.Time
			count    int64
			platform string
		)
		if err := row.Scan(&postedAt, &count, &platform); err != nil {
			return domain.Observation{}, err
		}
		return domain.Observation{Timestamp: postedAt, EngagementCount: count, Platform: domain.Platform(platform)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan observations: %w", err)
	}
	return observations, nil
}

// SaveObservations upserts all records in one transaction and returns how many were written.
func (r *HistoryRepo) SaveObservations(ctx context.Context, accountID string, records []domain.ObservationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		o := rec.Observation
		if _, err := tx.Exec(ctx, upsertObservationQuery, accountID, rec.ExternalID, o.Timestamp.UTC(), o.EngagementCount, string(o.Platform)); err != nil {
			return 0, fmt.Errorf("failed to upsert observation %q: %w", rec.ExternalID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit observations: %w", err)
	}
	return len(records), nil
}
