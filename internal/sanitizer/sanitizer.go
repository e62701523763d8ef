// Package sanitizer keeps only structurally valid log records from a batch of
// untrusted candidates.
package sanitizer

import (
	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/model"
)

// IsValidRecord reports whether candidate is a record-shaped value: a
// model.LogRecord, a non-nil *model.LogRecord, or a map whose timestamp,
// level and message keys all hold strings. Field contents are not checked.
func IsValidRecord(candidate any) bool {
	_, ok := toRecord(candidate)
	return ok
}

// Sanitize returns the valid candidates as records, in their original order.
// Invalid candidates are dropped without error.
func Sanitize(candidates []any) []model.LogRecord {
	out := make([]model.LogRecord, 0, len(candidates))
	for _, c := range candidates {
		if rec, ok := toRecord(c); ok {
			out = append(out, rec)
		}
	}
	return out
}

func toRecord(candidate any) (model.LogRecord, bool) {
	switch c := candidate.(type) {
	case model.LogRecord:
		return c, true
	case *model.LogRecord:
		if c == nil {
			return model.LogRecord{}, false
		}
		return *c, true
	case map[string]any:
		return fromMap(c)
	case map[string]string:
		m := make(map[string]any, len(c))
		for k, v := range c {
			m[k] = v
		}
		return fromMap(m)
	default:
		return model.LogRecord{}, false
	}
}

func fromMap(m map[string]any) (model.LogRecord, bool) {
	if m == nil {
		return model.LogRecord{}, false
	}
	ts, ok := m["timestamp"].(string)
	if !ok {
		return model.LogRecord{}, false
	}
	lvl, ok := m["level"].(string)
	if !ok {
		return model.LogRecord{}, false
	}
	msg, ok := m["message"].(string)
	if !ok {
		return model.LogRecord{}, false
	}

	rec := model.LogRecord{
		Timestamp: ts,
		Level:     level.Level(lvl),
		Message:   msg,
	}
	if module, ok := m["module"].(string); ok {
		rec.Module = module
	}
	return rec, true
}
