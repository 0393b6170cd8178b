package analytics

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ParseDate parses a transaction date. The model is asked for YYYY-MM-DD
// but timestamps are accepted too. The second result is false when the
// value cannot be read as a date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if d, err := civil.ParseDate(s); err == nil {
		return d.In(time.UTC), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if len(s) > 10 {
		if d, err := civil.ParseDate(s[:10]); err == nil {
			return d.In(time.UTC), true
		}
	}
	return time.Time{}, false
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func yearKey(t time.Time) string {
	return t.Format("2006")
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
