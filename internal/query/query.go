// Package query filters, searches and sorts record slices.
// Every function returns a new slice and leaves its input untouched.
package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/timeparse"
)

// Order is the chronological direction of SortLogs.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder validates an order name. Empty means Desc.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", Desc:
		return Desc, nil
	case Asc:
		return Asc, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want asc or desc)", s)
	}
}

// FilterByLevel keeps records at least as severe as threshold.
// level.All returns the input unchanged.
func FilterByLevel(records []model.LogRecord, threshold level.Level) []model.LogRecord {
	threshold = level.Normalize(string(threshold))
	if threshold == level.All {
		return records
	}
	floor := level.Priority(threshold)

	out := make([]model.LogRecord, 0, len(records))
	for _, r := range records {
		if level.Priority(level.Normalize(string(r.Level))) >= floor {
			out = append(out, r)
		}
	}
	return out
}

// SearchLogs keeps records whose message, level or timestamp contains q,
// ignoring case. A blank q returns the input unchanged.
func SearchLogs(records []model.LogRecord, q string) []model.LogRecord {
	if strings.TrimSpace(q) == "" {
		return records
	}
	needle := strings.ToLower(q)

	out := make([]model.LogRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Message), needle) ||
			strings.Contains(strings.ToLower(string(r.Level)), needle) ||
			strings.Contains(strings.ToLower(r.Timestamp), needle) {
			out = append(out, r)
		}
	}
	return out
}

// SortLogs orders a copy of records by time. Pairs whose timestamps both
// parse compare as instants; any other pair compares the raw strings.
// Ties keep their input order.
func SortLogs(records []model.LogRecord, order Order) []model.LogRecord {
	type keyed struct {
		rec    model.LogRecord
		at     time.Time
		parsed bool
	}

	items := make([]keyed, len(records))
	for i, r := range records {
		at, ok := timeparse.Parse(r.Timestamp, time.UTC)
		items[i] = keyed{rec: r, at: at, parsed: ok}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		var c int
		if a.parsed && b.parsed {
			c = a.at.Compare(b.at)
		} else {
			c = strings.Compare(a.rec.Timestamp, b.rec.Timestamp)
		}
		if order == Asc {
			return c
		}
		return -c
	})

	out := make([]model.LogRecord, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

// View is a saved combination of filter, search, sort and row limit.
type View struct {
	Level level.Level
	Query string
	Order Order
	// Limit caps the number of returned records; 0 means no limit.
	Limit int
}

// Apply runs filter, search, sort and limit in that order.
func (v View) Apply(records []model.LogRecord) []model.LogRecord {
	lvl := v.Level
	if lvl == "" {
		lvl = level.All
	}
	order := v.Order
	if order == "" {
		order = Desc
	}

	out := SortLogs(SearchLogs(FilterByLevel(records, lvl), v.Query), order)
	if v.Limit > 0 && len(out) > v.Limit {
		out = out[:v.Limit]
	}
	return out
}
