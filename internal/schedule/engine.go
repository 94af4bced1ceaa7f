package schedule

import (
	"cmp"
	"slices"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/sentiment"
)

// Plan is the full output of one engine run.
type Plan struct {
	SentimentWeight float64                 `json:"sentiment_weight"`
	Stats           []domain.SlotStatistics `json:"stats"`
	Scored          []domain.ScoredSlot     `json:"scored"`
	Recommendations []domain.Recommendation `json:"recommendations"`
	Rejected        []Rejection             `json:"rejected"`
}

// Engine composes aggregation, sentiment normalization, scoring and selection. It holds only
// validated parameters and is safe for concurrent use.
type Engine struct {
	params Params
}

func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	return &Engine{params: p}, nil
}

func (e *Engine) Params() Params {
	return e.params
}

// Recommend runs one analysis. topN <= 0 uses the configured default. The signal is checked before
// any history is touched, so an invalid signal fails the call even when history is empty.
func (e *Engine) Recommend(observations []domain.Observation, signal domain.SentimentSignal, now time.Time, topN int) (*Plan, error) {
	if topN <= 0 {
		topN = e.params.TopN
	}

	weight, err := sentiment.Normalize(signal)
	if err != nil {
		return nil, err
	}

	agg := Aggregate(observations, now, e.params)

	scored, err := Score(agg.Stats, weight, e.params)
	if err != nil {
		return nil, err
	}

	recs, err := Select(scored, topN, e.params)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].NextWindow = recs[i].Slot.Next(now, e.params.Location)
	}

	return &Plan{
		SentimentWeight: weight,
		Stats:           orderedStats(agg.Stats),
		Scored:          scored,
		Recommendations: recs,
		Rejected:        agg.Rejected,
	}, nil
}

func orderedStats(stats map[domain.Slot]domain.SlotStatistics) []domain.SlotStatistics {
	out := make([]domain.SlotStatistics, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b domain.SlotStatistics) int {
		return cmp.Compare(a.Slot.Index(), b.Slot.Index())
	})
	return out
}
