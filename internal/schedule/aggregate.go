package schedule

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
)

const hoursPerDay = 24.0

// Rejection records an observation that could not be aggregated.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Err returns the rejection as an error that unwraps to domain.ErrInvalidObservation.
func (r Rejection) Err() error {
	return &domain.ObservationError{Index: r.Index, Reason: r.Reason}
}

// Aggregation is the output of Aggregate. Stats only holds slots with at least one observation.
type Aggregation struct {
	Stats    map[domain.Slot]domain.SlotStatistics
	Rejected []Rejection
}

// RejectedCount is the number of observations skipped as invalid.
func (a Aggregation) RejectedCount() int {
	return len(a.Rejected)
}

type sample struct {
	value  float64
	weight float64
}

// Aggregate groups observations into weekly slots and computes per-slot statistics relative to now.
// Invalid observations are skipped and reported in Rejected. The input slice is not modified.
func Aggregate(observations []domain.Observation, now time.Time, p Params) Aggregation {
	valid := make([]domain.Observation, 0, len(observations))
	var rejected []Rejection

	for i, obs := range observations {
		if reason := checkObservation(obs, now); reason != "" {
			rejected = append(rejected, Rejection{Index: i, Reason: reason})
			continue
		}
		valid = append(valid, obs)
	}

	slices.SortStableFunc(valid, compareObservations)

	loc := p.location()
	buckets := make(map[domain.Slot][]sample)
	for _, obs := range valid {
		slot := domain.SlotOf(obs.Timestamp, loc)
		buckets[slot] = append(buckets[slot], sample{
			value:  float64(obs.EngagementCount),
			weight: recencyWeight(now.Sub(obs.Timestamp), p.DecayLambda),
		})
	}

	stats := make(map[domain.Slot]domain.SlotStatistics, len(buckets))
	for slot, samples := range buckets {
		stats[slot] = summarize(slot, samples)
	}

	return Aggregation{Stats: stats, Rejected: rejected}
}

// recencyWeight is exp(-lambda * age in days).
func recencyWeight(age time.Duration, lambda float64) float64 {
	return math.Exp(-lambda * age.Hours() / hoursPerDay)
}

func checkObservation(obs domain.Observation, now time.Time) string {
	switch {
	case obs.Timestamp.IsZero():
		return "missing timestamp"
	case obs.Timestamp.After(now):
		return "timestamp is in the future"
	case obs.EngagementCount < 0:
		return "negative engagement count"
	case !obs.Platform.Valid():
		return "unknown platform " + string(obs.Platform)
	}
	return ""
}

func compareObservations(a, b domain.Observation) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	if c := cmp.Compare(a.EngagementCount, b.EngagementCount); c != 0 {
		return c
	}
	return cmp.Compare(a.Platform, b.Platform)
}

// summarize expects samples in ascending timestamp order.
func summarize(slot domain.Slot, samples []sample) domain.SlotStatistics {
	n := float64(len(samples))

	var sum, weightedSum, weightTotal float64
	for _, s := range samples {
		sum += s.value
		weightedSum += s.value * s.weight
		weightTotal += s.weight
	}
	mean := sum / n

	var squares float64
	for _, s := range samples {
		d := s.value - mean
		squares += d * d
	}

	// Weights are strictly positive for finite ages, but a huge lambda can underflow them to zero.
	weightedMean := mean
	if weightTotal > 0 {
		weightedMean = weightedSum / weightTotal
	}

	return domain.SlotStatistics{
		Slot:                slot,
		SampleCount:         len(samples),
		MeanEngagement:      mean,
		Variance:            squares / n,
		RecencyWeightedMean: weightedMean,
	}
}
