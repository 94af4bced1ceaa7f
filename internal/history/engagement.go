package history

import (
	"fmt"
	"math"
)

// PostMetrics are the raw public counters of a post.
type PostMetrics struct {
	Likes   int64 `json:"likes"`
	Reposts int64 `json:"reposts"`
	Replies int64 `json:"replies"`
	Quotes  int64 `json:"quotes"`
}

// EngagementCount collapses post metrics into one engagement figure, weighting likes highest.
func EngagementCount(m PostMetrics) (int64, error) {
	if m.Likes < 0 || m.Reposts < 0 || m.Replies < 0 || m.Quotes < 0 {
		return 0, fmt.Errorf("negative post metric: %+v", m)
	}
	score := float64(m.Likes)*0.4 + float64(m.Reposts)*0.3 + float64(m.Replies)*0.2 + float64(m.Quotes)*0.1
	return int64(math.Round(score)), nil
}
