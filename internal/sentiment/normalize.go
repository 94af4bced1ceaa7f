package sentiment

import (
	"fmt"
	"math"

	"github.com/pscheid92/postpulse/internal/domain"
)

// NeutralWeight is the weight of a signal that carries no information.
const NeutralWeight = 0.5

// Normalize maps a signal to a weight in [0,1]: 0.5 + 0.5*confidence*polarity.
// Zero confidence yields exactly NeutralWeight whatever the polarity.
func Normalize(signal domain.SentimentSignal) (float64, error) {
	if math.IsNaN(signal.Polarity) || signal.Polarity < -1 || signal.Polarity > 1 {
		return 0, fmt.Errorf("%w: polarity must be in [-1,1], got %v", domain.ErrInvalidSignal, signal.Polarity)
	}
	if math.IsNaN(signal.Confidence) || signal.Confidence < 0 || signal.Confidence > 1 {
		return 0, fmt.Errorf("%w: confidence must be in [0,1], got %v", domain.ErrInvalidSignal, signal.Confidence)
	}

	w := NeutralWeight + NeutralWeight*signal.Confidence*signal.Polarity
	return max(0, min(1, w)), nil
}
