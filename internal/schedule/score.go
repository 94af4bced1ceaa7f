package schedule

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/pscheid92/postpulse/internal/domain"
)

// Score ranks every slot present in stats. Slots without history are never scored.
//
// A slot's score blends its min-max normalized recency-weighted mean (weight 1-beta) with the
// sentiment weight (weight beta). With a single slot, or when every slot shares the same mean,
// normalization is undefined and the score is the sentiment weight alone.
func Score(stats map[domain.Slot]domain.SlotStatistics, sentimentWeight float64, p Params) ([]domain.ScoredSlot, error) {
	if math.IsNaN(sentimentWeight) || sentimentWeight < 0 || sentimentWeight > 1 {
		return nil, fmt.Errorf("%w: sentiment weight must be in [0,1], got %v", domain.ErrInvalidSignal, sentimentWeight)
	}
	if len(stats) == 0 {
		return nil, domain.ErrInsufficientHistory
	}

	ordered := make([]domain.SlotStatistics, 0, len(stats))
	for _, s := range stats {
		ordered = append(ordered, s)
	}
	slices.SortFunc(ordered, func(a, b domain.SlotStatistics) int {
		return cmp.Compare(a.Slot.Index(), b.Slot.Index())
	})

	lo, hi := ordered[0].RecencyWeightedMean, ordered[0].RecencyWeightedMean
	for _, s := range ordered[1:] {
		lo = min(lo, s.RecencyWeightedMean)
		hi = max(hi, s.RecencyWeightedMean)
	}
	spread := hi > lo
	single := len(ordered) == 1
	beta := p.SentimentInfluence

	scored := make([]domain.ScoredSlot, 0, len(ordered))
	for _, s := range ordered {
		var history, sentiment float64
		if spread {
			history = (s.RecencyWeightedMean - lo) / (hi - lo) * (1 - beta)
			sentiment = sentimentWeight * beta
		} else {
			sentiment = sentimentWeight
		}

		conf := slotConfidence(s, p)
		if single {
			conf = min(conf, singleSlotConfidenceCap)
		}

		scored = append(scored, domain.ScoredSlot{
			Slot:                  s.Slot,
			Score:                 clamp01(history + sentiment),
			Confidence:            conf,
			SampleCount:           s.SampleCount,
			HistoryContribution:   history,
			SentimentContribution: sentiment,
		})
	}

	return scored, nil
}

// slotConfidence is 1 - exp(-n/k), halved when the slot's relative standard deviation is above
// the configured threshold.
func slotConfidence(s domain.SlotStatistics, p Params) float64 {
	conf := 1 - math.Exp(-float64(s.SampleCount)/p.ConfidenceK)
	if relativeStdDev(s) > p.VariancePenaltyThreshold {
		conf *= variancePenalty
	}
	return clamp01(conf)
}

func relativeStdDev(s domain.SlotStatistics) float64 {
	// Engagement counts are non-negative, so a zero mean implies zero variance.
	if s.MeanEngagement <= 0 {
		return 0
	}
	return math.Sqrt(s.Variance) / s.MeanEngagement
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
