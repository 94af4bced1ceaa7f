package history

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := `timestamp,engagement_count,platform
2024-02-26T09:15:00Z,120,twitter
2024-02-27T14:00:00+01:00, 15 ,LinkedIn
not-a-time,10,twitter
2024-02-28T10:00:00Z,many,twitter
2024-02-28T10:00:00Z,10,myspace
2024-02-28T10:00:00Z,10
`

	got, rowErrs, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.Observation{
		Timestamp:       time.Date(2024, 2, 26, 9, 15, 0, 0, time.UTC),
		EngagementCount: 120,
		Platform:        domain.PlatformTwitter,
	}, got[0])
	assert.True(t, got[1].Timestamp.Equal(time.Date(2024, 2, 27, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.PlatformLinkedIn, got[1].Platform)
	assert.Equal(t, int64(15), got[1].EngagementCount)

	require.Len(t, rowErrs, 4)
	lines := make([]int, 0, len(rowErrs))
	for _, e := range rowErrs {
		var rowErr *RowError
		require.True(t, errors.As(e, &rowErr))
		lines = append(lines, rowErr.Line)
	}
	assert.Equal(t, []int{4, 5, 6, 7}, lines)
	assert.Contains(t, rowErrs[2].Error(), "unknown platform")
}

func TestReadCSV_NoHeader(t *testing.T) {
	got, rowErrs, err := ReadCSV(strings.NewReader("2024-02-26T09:15:00Z,1,instagram\n"))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Len(t, got, 1)
}

func TestReadCSV_Empty(t *testing.T) {
	got, rowErrs, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, rowErrs)
}

func TestReadCSV_SyntaxError(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader("2024-02-26T09:15:00Z,\"1,twitter\n"))
	assert.Error(t, err)
}
