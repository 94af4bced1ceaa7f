package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
)

const (
	// DefaultDecayLambda makes a 90-day-old observation weigh 10% of a fresh one.
	DefaultDecayLambda              = math.Ln10 / 90
	DefaultSentimentInfluence       = 0.35
	DefaultConfidenceK              = 5.0
	DefaultVariancePenaltyThreshold = 1.0
	DefaultMinSlotSpacingHours      = 3
	DefaultTopN                     = 3

	// variancePenalty multiplies the confidence of slots whose relative standard deviation
	// exceeds VariancePenaltyThreshold.
	variancePenalty = 0.5
	// singleSlotConfidenceCap bounds confidence when only one slot has history.
	singleSlotConfidenceCap = 0.5
)

// Params tunes the engine. The zero value is not usable; start from DefaultParams.
type Params struct {
	DecayLambda              float64
	SentimentInfluence       float64
	ConfidenceK              float64
	VariancePenaltyThreshold float64
	MinSlotSpacingHours      int
	TopN                     int
	Location                 *time.Location
}

func DefaultParams() Params {
	return Params{
		DecayLambda:              DefaultDecayLambda,
		SentimentInfluence:       DefaultSentimentInfluence,
		ConfidenceK:              DefaultConfidenceK,
		VariancePenaltyThreshold: DefaultVariancePenaltyThreshold,
		MinSlotSpacingHours:      DefaultMinSlotSpacingHours,
		TopN:                     DefaultTopN,
		Location:                 time.UTC,
	}
}

// Validate reports the first out-of-range parameter, wrapped in domain.ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case math.IsNaN(p.DecayLambda) || p.DecayLambda < 0:
		return fmt.Errorf("%w: decay lambda must be >= 0, got %v", domain.ErrInvalidParams, p.DecayLambda)
	case math.IsNaN(p.SentimentInfluence) || p.SentimentInfluence < 0 || p.SentimentInfluence > 1:
		return fmt.Errorf("%w: sentiment influence must be in [0,1], got %v", domain.ErrInvalidParams, p.SentimentInfluence)
	case math.IsNaN(p.ConfidenceK) || p.ConfidenceK <= 0:
		return fmt.Errorf("%w: confidence k must be > 0, got %v", domain.ErrInvalidParams, p.ConfidenceK)
	case math.IsNaN(p.VariancePenaltyThreshold) || p.VariancePenaltyThreshold < 0:
		return fmt.Errorf("%w: variance penalty threshold must be >= 0, got %v", domain.ErrInvalidParams, p.VariancePenaltyThreshold)
	case p.MinSlotSpacingHours < 0 || p.MinSlotSpacingHours > domain.HoursPerWeek/2:
		return fmt.Errorf("%w: min slot spacing must be in [0,%d] hours, got %d", domain.ErrInvalidParams, domain.HoursPerWeek/2, p.MinSlotSpacingHours)
	case p.TopN < 1:
		return fmt.Errorf("%w: top n must be >= 1, got %d", domain.ErrInvalidParams, p.TopN)
	}
	return nil
}

func (p Params) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
