package schedule

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultParams())
	require.NoError(t, err)
	return e
}

// mondayTuesdayHistory has ten Monday 09:00 posts at 100 engagement and one Tuesday 14:00 post at 10.
func mondayTuesdayHistory() []domain.Observation {
	first := time.Date(2023, 12, 25, 9, 30, 0, 0, time.UTC)
	var history []domain.Observation
	for i := range 10 {
		history = append(history, obs(first.AddDate(0, 0, 7*i), 100))
	}
	return append(history, obs(time.Date(2024, 2, 27, 14, 15, 0, 0, time.UTC), 10))
}

func TestNewEngine_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"negative lambda", func(p *Params) { p.DecayLambda = -1 }},
		{"influence above one", func(p *Params) { p.SentimentInfluence = 1.5 }},
		{"zero k", func(p *Params) { p.ConfidenceK = 0 }},
		{"negative threshold", func(p *Params) { p.VariancePenaltyThreshold = -0.1 }},
		{"spacing too large", func(p *Params) { p.MinSlotSpacingHours = 100 }},
		{"negative spacing", func(p *Params) { p.MinSlotSpacingHours = -1 }},
		{"zero top n", func(p *Params) { p.TopN = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			_, err := NewEngine(p)
			assert.ErrorIs(t, err, domain.ErrInvalidParams)
		})
	}
}

func TestNewEngine_DefaultsLocation(t *testing.T) {
	p := DefaultParams()
	p.Location = nil
	e, err := NewEngine(p)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.Params().Location)
}

func TestEngine_MondayBeatsTuesday(t *testing.T) {
	e := newTestEngine(t)
	signal := domain.SentimentSignal{Polarity: 0.8, Confidence: 0.9, Topics: []string{"fintech"}}

	plan, err := e.Recommend(mondayTuesdayHistory(), signal, testNow, 3)
	require.NoError(t, err)

	assert.InDelta(t, 0.86, plan.SentimentWeight, 1e-12)
	require.Len(t, plan.Recommendations, 2)

	mon, tue := plan.Recommendations[0], plan.Recommendations[1]
	assert.Equal(t, domain.Slot{Day: domain.Monday, Hour: 9}, mon.Slot)
	assert.Equal(t, domain.Slot{Day: domain.Tuesday, Hour: 14}, tue.Slot)
	assert.Equal(t, 1, mon.Rank)
	assert.Equal(t, 2, tue.Rank)

	assert.InDelta(t, 0.951, mon.Score, 1e-12)
	assert.InDelta(t, 0.301, tue.Score, 1e-12)
	assert.Greater(t, mon.Confidence, tue.Confidence)
	assert.InDelta(t, 1-math.Exp(-2), mon.Confidence, 1e-12)
	assert.True(t, tue.Rationale.LowConfidence)

	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), mon.NextWindow)
	assert.Equal(t, time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), tue.NextWindow)

	require.Len(t, plan.Stats, 2)
	assert.Equal(t, 10, plan.Stats[0].SampleCount)
	assert.Equal(t, 1, plan.Stats[1].SampleCount)
	assert.Empty(t, plan.Rejected)
}

func TestEngine_EmptyHistory(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Recommend(nil, domain.NeutralSignal(), testNow, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)

	// Only invalid observations is the same as none.
	_, err = e.Recommend([]domain.Observation{obs(time.Time{}, 3)}, domain.NeutralSignal(), testNow, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestEngine_InvalidSignalFailsWholeCall(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Recommend(mondayTuesdayHistory(), domain.SentimentSignal{Polarity: 0.5, Confidence: 1.5}, testNow, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidSignal)

	_, err = e.Recommend(nil, domain.SentimentSignal{Polarity: 2}, testNow, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidSignal)
}

func TestEngine_SingleSlot(t *testing.T) {
	e := newTestEngine(t)
	history := []domain.Observation{
		obs(time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC), 40),
		obs(time.Date(2024, 2, 22, 10, 5, 0, 0, time.UTC), 42),
	}
	signal := domain.SentimentSignal{Polarity: 0.4, Confidence: 0.5}

	plan, err := e.Recommend(history, signal, testNow, 3)
	require.NoError(t, err)
	require.Len(t, plan.Recommendations, 1)

	r := plan.Recommendations[0]
	assert.Equal(t, plan.SentimentWeight, r.Score)
	assert.LessOrEqual(t, r.Confidence, 0.5)
	assert.True(t, r.Rationale.LowConfidence == (r.Confidence < 0.5))
}

func TestEngine_DefaultTopN(t *testing.T) {
	e := newTestEngine(t)
	var history []domain.Observation
	for d := range 7 {
		history = append(history, obs(time.Date(2024, 2, 19+d, 9, 0, 0, 0, time.UTC), int64(10*(d+1))))
	}

	plan, err := e.Recommend(history, domain.NeutralSignal(), testNow, 0)
	require.NoError(t, err)
	assert.Len(t, plan.Recommendations, DefaultTopN)
}

func TestEngine_ReportsRejected(t *testing.T) {
	e := newTestEngine(t)
	history := append(mondayTuesdayHistory(), obs(testNow.Add(time.Hour), 5))

	plan, err := e.Recommend(history, domain.NeutralSignal(), testNow, 3)
	require.NoError(t, err)
	require.Len(t, plan.Rejected, 1)
	assert.Equal(t, 11, plan.Rejected[0].Index)
}

func TestEngine_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	history := mondayTuesdayHistory()
	for i := range 30 {
		history = append(history, obs(testNow.Add(-time.Duration(i*13+1)*time.Hour), int64(i*7%23)))
	}
	signal := domain.SentimentSignal{Polarity: -0.3, Confidence: 0.6, Topics: []string{"risk"}}

	first, err := e.Recommend(history, signal, testNow, 5)
	require.NoError(t, err)
	second, err := e.Recommend(history, signal, testNow, 5)
	require.NoError(t, err)

	reversed := slices.Clone(history)
	slices.Reverse(reversed)
	third, err := e.Recommend(reversed, signal, testNow, 5)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	c, err := json.Marshal(third)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t, string(a), string(c))
}

func TestEngine_ConfidenceMonotonic(t *testing.T) {
	e := newTestEngine(t)
	history := mondayTuesdayHistory()

	before, err := e.Recommend(history, domain.NeutralSignal(), testNow, 3)
	require.NoError(t, err)

	more := append(slices.Clone(history), obs(time.Date(2024, 2, 20, 14, 30, 0, 0, time.UTC), 10))
	after, err := e.Recommend(more, domain.NeutralSignal(), testNow, 3)
	require.NoError(t, err)

	tue := domain.Slot{Day: domain.Tuesday, Hour: 14}
	assert.Greater(t, confidenceOf(after.Scored, tue), confidenceOf(before.Scored, tue))
}

func TestEngine_NegativeSentimentLowersScores(t *testing.T) {
	e := newTestEngine(t)
	history := mondayTuesdayHistory()

	up, err := e.Recommend(history, domain.SentimentSignal{Polarity: 1, Confidence: 1}, testNow, 3)
	require.NoError(t, err)
	down, err := e.Recommend(history, domain.SentimentSignal{Polarity: -1, Confidence: 1}, testNow, 3)
	require.NoError(t, err)

	for i := range up.Scored {
		assert.Greater(t, up.Scored[i].Score, down.Scored[i].Score)
	}
}

func TestEngine_NextWindowInLocation(t *testing.T) {
	p := DefaultParams()
	p.Location = time.FixedZone("EST", -5*3600)
	e, err := NewEngine(p)
	require.NoError(t, err)

	// Monday 14:30 UTC is Monday 09:30 EST.
	history := []domain.Observation{obs(time.Date(2024, 2, 26, 14, 30, 0, 0, time.UTC), 10)}
	plan, err := e.Recommend(history, domain.NeutralSignal(), testNow, 1)
	require.NoError(t, err)
	require.Len(t, plan.Recommendations, 1)

	r := plan.Recommendations[0]
	assert.Equal(t, domain.Slot{Day: domain.Monday, Hour: 9}, r.Slot)
	assert.True(t, r.NextWindow.After(testNow))
	assert.True(t, r.NextWindow.Equal(time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)))
}

func confidenceOf(scored []domain.ScoredSlot, slot domain.Slot) float64 {
	for _, s := range scored {
		if s.Slot == slot {
			return s.Confidence
		}
	}
	return -1
}
