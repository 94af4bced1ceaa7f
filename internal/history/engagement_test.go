package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementCount(t *testing.T) {
	tests := []struct {
		name    string
		metrics PostMetrics
		want    int64
	}{
		{"zero", PostMetrics{}, 0},
		{"likes only", PostMetrics{Likes: 10}, 4},
		{"all", PostMetrics{Likes: 100, Reposts: 20, Replies: 10, Quotes: 5}, 49},
		{"rounds half up", PostMetrics{Reposts: 5}, 2},
		{"rounds down", PostMetrics{Quotes: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EngagementCount(tt.metrics)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngagementCount_Negative(t *testing.T) {
	_, err := EngagementCount(PostMetrics{Likes: -1})
	assert.Error(t, err)
}
