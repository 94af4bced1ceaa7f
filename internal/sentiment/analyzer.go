package sentiment

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/pscheid92/postpulse/internal/domain"
)

const maxTopics = 5

var (
	defaultPositive = []string{
		"great", "excellent", "good", "positive", "success", "growth",
		"profit", "innovation", "opportunity", "improve", "increase",
	}
	defaultNegative = []string{
		"bad", "poor", "negative", "failure", "decline", "loss",
		"problem", "issue", "challenge", "difficult", "risk",
	}
)

// Analyzer scores texts by counting positive and negative keywords. It is the local fallback for
// a hosted sentiment provider.
type Analyzer struct {
	positive []string
	negative []string
}

// NewAnalyzer returns an analyzer with the built-in business keyword lists.
func NewAnalyzer() *Analyzer {
	return &Analyzer{positive: defaultPositive, negative: defaultNegative}
}

// NewAnalyzerWithWords uses custom keyword lists. Keywords are matched case-insensitively.
func NewAnalyzerWithWords(positive, negative []string) *Analyzer {
	return &Analyzer{positive: lowerAll(positive), negative: lowerAll(negative)}
}

// Analyze classifies each text as +1, -1 or 0 depending on which keyword list has more hits.
// Polarity is the mean classification, confidence the share of texts that were not a tie.
// The topic itself is not scored. No texts yields the neutral signal.
func (a *Analyzer) Analyze(topic string, texts []string) domain.SentimentSignal {
	if len(texts) == 0 {
		return domain.NeutralSignal()
	}

	var sum float64
	var decisive int
	counts := make(map[string]int)
	topic = strings.ToLower(topic)

	for _, text := range texts {
		lower := strings.ToLower(text)
		pos := countContained(lower, a.positive)
		neg := countContained(lower, a.negative)

		switch {
		case pos > neg:
			sum++
			decisive++
		case neg > pos:
			sum--
			decisive++
		}

		for _, word := range strings.FieldsFunc(lower, notWordRune) {
			if word == topic {
				continue
			}
			if slices.Contains(a.positive, word) || slices.Contains(a.negative, word) {
				counts[word]++
			}
		}
	}

	n := float64(len(texts))
	return domain.SentimentSignal{
		Polarity:   sum / n,
		Confidence: float64(decisive) / n,
		Topics:     topTopics(counts),
	}
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// topTopics orders keywords by count descending, then alphabetically.
func topTopics(counts map[string]int) []string {
	topics := make([]string, 0, len(counts))
	for word := range counts {
		topics = append(topics, word)
	}
	slices.SortFunc(topics, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
