package release

import (
	"fmt"
	"strings"
	"time"
)

// publishedLayouts are the publish-time layouts seen across forges and in
// older state files, tried in order.
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05",
}

// ParsePublished parses a release publish time.
// Failures wrap ErrUnparseableTimestamp.
func ParsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, s)
}
