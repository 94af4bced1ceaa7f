package app

import (
	"math"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/pscheid92/postpulse/internal/schedule"
)

const (
	bestPracticeFirstHour = 9
	bestPracticeLastHour  = 20
	bestPracticeCap       = 0.95
)

// bestPracticeScore is the generic business-audience engagement prior for a slot.
func bestPracticeScore(s domain.Slot) float64 {
	var base float64
	switch s.Day {
	case domain.Tuesday, domain.Wednesday, domain.Thursday:
		base = 0.7
	case domain.Monday, domain.Friday:
		base = 0.6
	default:
		base = 0.5
	}

	switch {
	case s.Hour >= 9 && s.Hour <= 11:
		base += 0.15
	case s.Hour >= 13 && s.Hour <= 15:
		base += 0.10
	case s.Hour >= 19 && s.Hour <= 21:
		base += 0.05
	}
	return math.Min(base, bestPracticeCap)
}

// BestPractice recommends windows from general engagement patterns when an account has no usable
// history. It applies the same ordering and spacing rules as history-based selection. Every
// recommendation has zero confidence.
func BestPractice(now time.Time, topN int, p schedule.Params) ([]domain.Recommendation, error) {
	candidates := make([]domain.ScoredSlot, 0, domain.DaysPerWeek*(bestPracticeLastHour-bestPracticeFirstHour+1))
	for day := domain.Monday; day <= domain.Sunday; day++ {
		for hour := bestPracticeFirstHour; hour <= bestPracticeLastHour; hour++ {
			slot := domain.Slot{Day: day, Hour: hour}
			candidates = append(candidates, domain.ScoredSlot{Slot: slot, Score: bestPracticeScore(slot)})
		}
	}

	recs, err := schedule.Select(candidates, topN, p)
	if err != nil {
		return nil, err
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	for i := range recs {
		recs[i].NextWindow = recs[i].Slot.Next(now, loc)
		recs[i].Rationale.Factor = domain.FactorBestPractice
	}
	return recs, nil
}
