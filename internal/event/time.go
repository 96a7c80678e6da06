package event

import (
	"fmt"
	"time"
)

// parseTimestamp accepts RFC3339 with or without fractional seconds, the
// two shapes a hand-edited or merge-tool-touched journal line might carry.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at timestamp %q", s)
}
