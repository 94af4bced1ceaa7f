package sentimentapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pscheid92/postpulse/internal/domain"
)

const maxTopics = 5

var ErrMalformedResponse = errors.New("malformed sentiment response")

type distribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

type analyzeResponse struct {
	OverallSentiment      *float64      `json:"overall_sentiment"`
	Confidence            *float64      `json:"confidence"`
	SentimentDistribution *distribution `json:"sentiment_distribution"`
	PositiveTopics        []string      `json:"positive_topics"`
	NegativeTopics        []string      `json:"negative_topics"`
}

// parseResponse decodes the service's answer, which may arrive wrapped in a markdown code fence.
//
// Confidence comes from the explicit field when present, else from the decisive (non-neutral)
// share of the sentiment distribution, else it is 1.
func parseResponse(body []byte) (domain.SentimentSignal, error) {
	var resp analyzeResponse
	if err := json.Unmarshal([]byte(stripFence(string(body))), &resp); err != nil {
		return domain.SentimentSignal{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.OverallSentiment == nil {
		return domain.SentimentSignal{}, fmt.Errorf("%w: missing overall_sentiment", ErrMalformedResponse)
	}

	confidence := 1.0
	switch {
	case resp.Confidence != nil:
		confidence = *resp.Confidence
	case resp.SentimentDistribution != nil:
		confidence = resp.SentimentDistribution.Positive + resp.SentimentDistribution.Negative
	}

	return domain.SentimentSignal{
		Polarity:   clamp(*resp.OverallSentiment, -1, 1),
		Confidence: clamp(confidence, 0, 1),
		Topics:     mergeTopics(resp.PositiveTopics, resp.NegativeTopics),
	}, nil
}

func stripFence(s string) string {
	if _, rest, ok := strings.Cut(s, "```json"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return body
	}
	if _, rest, ok := strings.Cut(s, "```"); ok {
		body, _, _ := strings.Cut(rest, "```")
		return body
	}
	return s
}

func mergeTopics(lists ...[]string) []string {
	seen := make(map[string]struct{})
	topics := make([]string, 0, maxTopics)
	for _, list := range lists {
		for _, t := range list {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			topics = append(topics, t)
			if len(topics) == maxTopics {
				return topics
			}
		}
	}
	return topics
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
