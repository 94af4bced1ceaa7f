package schedule

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pscheid92/postpulse/internal/domain"
)

// lowConfidence marks recommendations whose confidence is below this level in the rationale.
const lowConfidence = 0.5

// Select returns up to topN recommendations, best first, no two closer than
// p.MinSlotSpacingHours on the weekly cycle. A candidate that violates spacing is skipped, not
// merged, and fewer than topN results are returned when the candidates run out.
func Select(scored []domain.ScoredSlot, topN int, p Params) ([]domain.Recommendation, error) {
	if topN < 1 {
		return nil, fmt.Errorf("%w: top n must be >= 1, got %d", domain.ErrInvalidParams, topN)
	}

	candidates := slices.Clone(scored)
	slices.SortFunc(candidates, compareScored)

	picked := make([]domain.Recommendation, 0, min(topN, len(candidates)))
	for _, c := range candidates {
		if len(picked) == topN {
			break
		}
		if tooClose(c.Slot, picked, p.MinSlotSpacingHours) {
			continue
		}
		picked = append(picked, domain.Recommendation{
			Slot:       c.Slot,
			Rank:       len(picked) + 1,
			Score:      c.Score,
			Confidence: c.Confidence,
			Rationale:  explain(c),
		})
	}

	return picked, nil
}

// compareScored orders by score desc, confidence desc, day asc, hour asc.
func compareScored(a, b domain.ScoredSlot) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Slot.Day, b.Slot.Day); c != 0 {
		return c
	}
	return cmp.Compare(a.Slot.Hour, b.Slot.Hour)
}

func tooClose(slot domain.Slot, picked []domain.Recommendation, spacing int) bool {
	for _, r := range picked {
		if slot.Distance(r.Slot) < spacing {
			return true
		}
	}
	return false
}

func explain(s domain.ScoredSlot) domain.Rationale {
	factor := domain.FactorHistory
	if s.SentimentContribution > s.HistoryContribution {
		factor = domain.FactorSentiment
	}
	return domain.Rationale{
		Factor:                factor,
		Label:                 ScoreLabel(s.Score),
		HistoryContribution:   s.HistoryContribution,
		SentimentContribution: s.SentimentContribution,
		SampleCount:           s.SampleCount,
		LowConfidence:         s.Confidence < lowConfidence,
	}
}

// ScoreLabel describes a score tier in words.
func ScoreLabel(score float64) string {
	switch {
	case score >= 0.8:
		return "Excellent time to post - high expected engagement"
	case score >= 0.7:
		return "Good time to post - above average engagement expected"
	case score >= 0.6:
		return "Moderate time - average engagement expected"
	default:
		return "Lower priority - consider other time slots first"
	}
}
