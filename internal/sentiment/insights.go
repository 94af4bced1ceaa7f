package sentiment

import (
	"fmt"
	"strings"

	"github.com/pscheid92/postpulse/internal/domain"
)

// DefaultLabelThreshold separates neutral from positive or negative polarity.
const DefaultLabelThreshold = 0.3

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"

	maxIdeas = 5
)

// Label classifies a signal's polarity against a symmetric threshold.
func Label(signal domain.SentimentSignal, threshold float64) string {
	switch {
	case signal.Polarity > threshold:
		return LabelPositive
	case signal.Polarity < -threshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

var generalInsights = []string{
	"Tuesday-Thursday typically have highest business engagement",
	"Morning posts (9-11 AM) often perform well for business content",
	"Consider time zones of your target audience",
}

// Insights returns timing advice for the signal's polarity followed by general advice.
func Insights(signal domain.SentimentSignal) []string {
	var insights []string
	switch {
	case signal.Polarity > 0.5:
		insights = append(insights,
			"High positive sentiment suggests posting during peak business hours",
			"Consider posting in morning slots when audiences are planning their day",
		)
	case signal.Polarity < -0.3:
		insights = append(insights,
			"Negative sentiment suggests careful timing - avoid peak frustration hours",
			"Consider afternoon slots when audiences may be more receptive to solutions",
		)
	default:
		insights = append(insights,
			"Neutral sentiment - focus on consistent posting schedule",
			"Test different time slots to optimize engagement",
		)
	}
	return append(insights, generalInsights...)
}

// ContentIdeas suggests up to five posts for the hashtag, led by the signal's strongest topics.
func ContentIdeas(signal domain.SentimentSignal, hashtag string) []string {
	tag := "#" + strings.TrimLeft(hashtag, "#")
	lead := signal.Topics[:min(2, len(signal.Topics))]

	var ideas []string
	switch Label(signal, DefaultLabelThreshold) {
	case LabelPositive:
		for _, topic := range lead {
			ideas = append(ideas, fmt.Sprintf("Share success stories about %s in %s", topic, tag))
		}
	case LabelNegative:
		for _, topic := range lead {
			ideas = append(ideas, fmt.Sprintf("Address challenges in %s and provide solutions", topic))
		}
	default:
		ideas = append(ideas, fmt.Sprintf("Provide analysis of current trends in %s", tag))
	}

	ideas = append(ideas,
		"Post industry statistics with engaging visuals",
		"Share customer testimonials or success stories",
	)
	return ideas[:min(maxIdeas, len(ideas))]
}
