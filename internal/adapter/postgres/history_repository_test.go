package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*HistoryRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewHistoryRepo(mock), mock
}

func TestHistoryRepo_ListObservations(t *testing.T) {
	repo, mock := newMockRepo(t)

	first := time.Date(2024, 2, 5, 9, 30, 0, 0, time.UTC)
	second := time.Date(2024, 2, 6, 14, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(listObservationsQuery)).
		WithArgs("acme", since).
		WillReturnRows(pgxmock.NewRows([]string{"posted_at", "engagement_count", "platform"}).
			AddRow(first, int64(120), "twitter").
			AddRow(second, int64(8), "linkedin"))

	got, err := repo.ListObservations(context.Background(), "acme", since)
	require.NoError(t, err)

	assert.Equal(t, []domain.Observation{
		{Timestamp: first, EngagementCount: 120, Platform: domain.PlatformTwitter},
		{Timestamp: second, EngagementCount: 8, Platform: domain.PlatformLinkedIn},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_ListObservations_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(listObservationsQuery)).
		WithArgs("acme", since).
		WillReturnRows(pgxmock.NewRows([]string{"posted_at", "engagement_count", "platform"}))

	got, err := repo.ListObservations(context.Background(), "acme", since)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_ListObservations_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(listObservationsQuery)).
		WithArgs("acme", since).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListObservations(context.Background(), "acme", since)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to list observations")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_SaveObservations(t *testing.T) {
	repo, mock := newMockRepo(t)

	ts := time.Date(2024, 2, 5, 9, 30, 0, 0, time.UTC)
	records := []domain.ObservationRecord{
		{ExternalID: "p1", Observation: domain.Observation{Timestamp: ts, EngagementCount: 42, Platform: domain.PlatformTwitter}},
		{ExternalID: "p2", Observation: domain.Observation{Timestamp: ts.Add(time.Hour), EngagementCount: 7, Platform: domain.PlatformInstagram}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertObservationQuery)).
		WithArgs("acme", "p1", ts, int64(42), "twitter").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(upsertObservationQuery)).
		WithArgs("acme", "p2", ts.Add(time.Hour), int64(7), "instagram").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := repo.SaveObservations(context.Background(), "acme", records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_SaveObservations_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	ts := time.Date(2024, 2, 5, 9, 30, 0, 0, time.UTC)
	records := []domain.ObservationRecord{
		{ExternalID: "p1", Observation: domain.Observation{Timestamp: ts, EngagementCount: 42, Platform: domain.PlatformTwitter}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(upsertObservationQuery)).
		WithArgs("acme", "p1", ts, int64(42), "twitter").
		WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	n, err := repo.SaveObservations(context.Background(), "acme", records)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.ErrorContains(t, err, `failed to upsert observation "p1"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_SaveObservations_EmptyIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	n, err := repo.SaveObservations(context.Background(), "acme", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
