// Package dateval parses the ISO-8601 date literals used by date'...'
// pattern tokens. Parsing uses stdlib time — ISO-8601 is exactly what
// time.RFC3339 (and its date-only degenerate form) already cover.
package dateval

import (
	"fmt"
	"time"
)

// layouts tried in order; ISO-8601 dates may omit time-of-day or the
// timezone offset.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Parse parses an ISO-8601 date-quoted literal's body into a time.Time.
func Parse(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("dateval: invalid ISO-8601 date %q: %w", s, lastErr)
}
