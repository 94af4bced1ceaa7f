package domain

import "time"

// SlotStatistics summarizes the observations that fell into one slot. Only slots with at least
// one observation are ever materialized.
type SlotStatistics struct {
	Slot                Slot    `json:"slot"`
	SampleCount         int     `json:"sample_count"`
	MeanEngagement      float64 `json:"mean_engagement"`
	Variance            float64 `json:"variance"`
	RecencyWeightedMean float64 `json:"recency_weighted_mean"`
}

// ScoredSlot is a slot ranked by the scoring engine.
type ScoredSlot struct {
	Slot                  Slot    `json:"slot"`
	Score                 float64 `json:"score"`
	Confidence            float64 `json:"confidence"`
	SampleCount           int     `json:"sample_count"`
	HistoryContribution   float64 `json:"history_contribution"`
	SentimentContribution float64 `json:"sentiment_contribution"`
}

// Factor names what drove a recommendation.
type Factor string

const (
	FactorHistory      Factor = "historical_engagement"
	FactorSentiment    Factor = "sentiment"
	FactorBestPractice Factor = "best_practice"
)

// Rationale is a short structured explanation of a recommendation.
type Rationale struct {
	Factor                Factor  `json:"factor"`
	Label                 string  `json:"label"`
	HistoryContribution   float64 `json:"history_contribution"`
	SentimentContribution float64 `json:"sentiment_contribution"`
	SampleCount           int     `json:"sample_count"`
	LowConfidence         bool    `json:"low_confidence"`
}

// Recommendation is one selected posting window. Rank is 1-based.
type Recommendation struct {
	Slot       Slot      `json:"slot"`
	Rank       int       `json:"rank"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	NextWindow time.Time `json:"next_window"`
	Rationale  Rationale `json:"rationale"`
}
