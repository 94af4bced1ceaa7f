package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
)

var csvHeader = []string{"timestamp", "engagement_count", "platform"}

// RowError reports a malformed CSV row. Line is 1-based and counts the header.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ReadCSV parses rows of timestamp (RFC 3339), engagement_count, platform. A header row is
// optional. Malformed rows are skipped and returned as *RowError values; only I/O and CSV syntax
// errors fail the whole read. Range checks (future timestamps, negative counts) are left to the
// aggregator, so such rows come back as observations.
func ReadCSV(r io.Reader) ([]domain.Observation, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		observations []domain.Observation
		rowErrs      []error
	)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if line == 1 && isHeader(record) {
			continue
		}

		obs, reason := parseRow(record)
		if reason != "" {
			rowErrs = append(rowErrs, &RowError{Line: line, Reason: reason})
			continue
		}
		observations = append(observations, obs)
	}
	return observations, rowErrs, nil
}

func isHeader(record []string) bool {
	if len(record) != len(csvHeader) {
		return false
	}
	for i, h := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(record[i]), h) {
			return false
		}
	}
	return true
}

func parseRow(record []string) (domain.Observation, string) {
	if len(record) != len(csvHeader) {
		return domain.Observation{}, fmt.Sprintf("expected %d fields, got %d", len(csvHeader), len(record))
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
	if err != nil {
		return domain.Observation{}, fmt.Sprintf("invalid timestamp %q", record[0])
	}
	count, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return domain.Observation{}, fmt.Sprintf("invalid engagement count %q", record[1])
	}
	platform, ok := domain.ParsePlatform(strings.ToLower(strings.TrimSpace(record[2])))
	if !ok {
		return domain.Observation{}, fmt.Sprintf("unknown platform %q", record[2])
	}

	return domain.Observation{Timestamp: ts, EngagementCount: count, Platform: platform}, ""
}
