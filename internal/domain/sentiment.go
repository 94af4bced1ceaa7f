package domain

import "context"

// SentimentSignal is the sentiment of trending discussion around one topic for one analysis run.
type SentimentSignal struct {
	Polarity   float64  `json:"polarity"`
	Confidence float64  `json:"confidence"`
	Topics     []string `json:"topics"`
}

// NeutralSignal carries no information: any polarity at zero confidence normalizes to the neutral weight.
func NeutralSignal() SentimentSignal {
	return SentimentSignal{}
}

// SentimentSource records where a run's signal came from.
type SentimentSource string

const (
	SentimentSourceRequest   SentimentSource = "request"
	SentimentSourceProvider  SentimentSource = "provider"
	SentimentSourceRuleBased SentimentSource = "rule_based"
	SentimentSourceNone      SentimentSource = "none"
)

// SentimentProvider turns trending posts about a topic into a sentiment signal (e.g. a hosted AI service).
type SentimentProvider interface {
	Analyze(ctx context.Context, topic string, texts []string) (SentimentSignal, error)
}
