// Package timeparse reads the loosely formatted timestamps found in log lines.
package timeparse

import (
	"strings"
	"time"
)

// Layouts tried in order. Fractional seconds after the seconds field are
// accepted by time.Parse even when the layout omits them, with either '.'
// or ',' as separator.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// Parse interprets raw as a point in time. Values without a zone are read
// in loc (UTC when loc is nil). It reports false when no layout matches.
func Parse(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
