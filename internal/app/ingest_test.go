package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestIngestObservations(t *testing.T) {
	env := newTestService(t, nil)
	var saved []domain.ObservationRecord
	env.history.saveFn = func(_ context.Context, accountID string, records []domain.ObservationRecord) (int, error) {
		assert.Equal(t, "acme", accountID)
		saved = records
		return len(records), nil
	}

	posted := testNow.Add(-48 * time.Hour)
	items := []IngestObservation{
		{ExternalID: "p1", PostedAt: posted, Platform: "Twitter", EngagementCount: ptr(int64(42))},
		{ExternalID: "p2", PostedAt: posted, Platform: "linkedin", Metrics: &history.PostMetrics{Likes: 100, Reposts: 10, Replies: 5, Quotes: 1}},
		{ExternalID: "p3", PostedAt: posted, Platform: "myspace", EngagementCount: ptr(int64(1))},
		{ExternalID: "p4", PostedAt: testNow.Add(time.Hour), Platform: "twitter", EngagementCount: ptr(int64(1))},
		{ExternalID: "p5", PostedAt: posted, Platform: "twitter"},
		{ExternalID: "", PostedAt: posted, Platform: "twitter", EngagementCount: ptr(int64(1))},
		{ExternalID: "p7", Platform: "twitter", EngagementCount: ptr(int64(1))},
		{ExternalID: "p8", PostedAt: posted, Platform: "twitter", EngagementCount: ptr(int64(-3))},
	}

	res, err := env.svc.IngestObservations(context.Background(), "acme", items)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, []domain.ObservationRecord{
		{ExternalID: "p1", Observation: domain.Observation{Timestamp: posted, EngagementCount: 42, Platform: domain.PlatformTwitter}},
		// 100*0.4 + 10*0.3 + 5*0.2 + 1*0.1 = 44.1
		{ExternalID: "p2", Observation: domain.Observation{Timestamp: posted, EngagementCount: 44, Platform: domain.PlatformLinkedIn}},
	}, saved)

	require.Len(t, res.Rejected, 6)
	reasons := make(map[int]string)
	for _, r := range res.Rejected {
		reasons[r.Index] = r.Reason
	}
	assert.Equal(t, `unknown platform "myspace"`, reasons[2])
	assert.Equal(t, "posted_at is in the future", reasons[3])
	assert.Equal(t, "either engagement_count or metrics is required", reasons[4])
	assert.Equal(t, "missing external_id", reasons[5])
	assert.Equal(t, "missing posted_at", reasons[6])
	assert.Equal(t, "engagement_count must not be negative", reasons[7])

	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.IngestedObservations.WithLabelValues("accepted")))
	assert.Equal(t, 6.0, testutil.ToFloat64(env.metrics.IngestedObservations.WithLabelValues("rejected")))
}

func TestIngestObservations_NothingValidSkipsStorage(t *testing.T) {
	env := newTestService(t, nil)
	env.history.saveFn = func(context.Context, string, []domain.ObservationRecord) (int, error) {
		t.Fatal("storage must not be called")
		return 0, nil
	}

	res, err := env.svc.IngestObservations(context.Background(), "acme", []IngestObservation{
		{ExternalID: "p1", PostedAt: testNow, Platform: "fax"},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Accepted)
	assert.Len(t, res.Rejected, 1)
}

func TestIngestObservations_StorageError(t *testing.T) {
	env := newTestService(t, nil)
	boom := errors.New("disk full")
	env.history.saveFn = func(context.Context, string, []domain.ObservationRecord) (int, error) {
		return 0, boom
	}

	_, err := env.svc.IngestObservations(context.Background(), "acme", []IngestObservation{
		{ExternalID: "p1", PostedAt: testNow, Platform: "twitter", EngagementCount: ptr(int64(1))},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.IngestedObservations.WithLabelValues("error")))
}

func TestIngestObservations_Validation(t *testing.T) {
	env := newTestService(t, nil)
	_, err := env.svc.IngestObservations(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrAccountRequired)

	env = newTestService(t, func(o *Options) { o.Writer = nil })
	_, err = env.svc.IngestObservations(context.Background(), "acme", nil)
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

func TestToObservation(t *testing.T) {
	posted := testNow.Add(-time.Hour)

	tests := []struct {
		name       string
		item       IngestObservation
		want       domain.Observation
		wantReason string
	}{
		{
			name: "explicit count",
			item: IngestObservation{ExternalID: "p1", PostedAt: posted, Platform: " Twitter ", EngagementCount: ptr(int64(12))},
			want: domain.Observation{Timestamp: posted, EngagementCount: 12, Platform: domain.PlatformTwitter},
		},
		{
			name: "from metrics",
			item: IngestObservation{ExternalID: "p2", PostedAt: posted, Platform: "linkedin", Metrics: &history.PostMetrics{Likes: 100, Reposts: 10, Replies: 5, Quotes: 1}},
			want: domain.Observation{Timestamp: posted, EngagementCount: 44, Platform: domain.PlatformLinkedIn},
		},
		{
			name:       "count wins over metrics",
			item:       IngestObservation{ExternalID: "p3", PostedAt: posted, Platform: "tiktok", EngagementCount: ptr(int64(0)), Metrics: &history.PostMetrics{Likes: 50}},
			want:       domain.Observation{Timestamp: posted, EngagementCount: 0, Platform: domain.PlatformTikTok},
			wantReason: "",
		},
		{
			name:       "negative count",
			item:       IngestObservation{ExternalID: "p4", PostedAt: posted, Platform: "twitter", EngagementCount: ptr(int64(-1))},
			wantReason: "engagement_count must not be negative",
		},
		{
			name:       "future",
			item:       IngestObservation{ExternalID: "p5", PostedAt: testNow.Add(time.Minute), Platform: "twitter", EngagementCount: ptr(int64(1))},
			wantReason: "posted_at is in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := toObservation(tt.item, testNow)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.want, got)
		})
	}
}
