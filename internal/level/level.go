// Package level defines the closed set of log severities and their ranking.
package level

import (
	"fmt"
	"strings"
)

// Level is a canonical, uppercase severity name.
// Values outside the known set are allowed on records and rank as unknown.
type Level string

const (
	// All is a filter sentinel. It is never attached to a record.
	All   Level = "ALL"
	Error Level = "ERROR"
	Warn  Level = "WARN"
	Info  Level = "INFO"
	Debug Level = "DEBUG"
	Trace Level = "TRACE"
)

// Priority ranks. Higher is more severe.
const (
	priorityTrace   = 10
	priorityUnknown = 15
	priorityDebug   = 20
	priorityInfo    = 30
	priorityWarn    = 40
	priorityError   = 50
)

var aliases = map[string]Level{
	"WARNING": Warn,
	"ERR":     Error,
}

// Normalize canonicalizes a raw level token.
// Known levels (any case) and their aliases map to the canonical form; any
// other token is returned trimmed and uppercased as an unknown level.
func Normalize(raw string) Level {
	up := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := aliases[up]; ok {
		return alias
	}
	return Level(up)
}

// Priority returns the rank used for threshold filtering.
// Unknown levels rank just above TRACE. All is only meaningful as a filter
// threshold, so a record whose level text reads ALL ranks as unknown too.
func Priority(l Level) int {
	switch l {
	case Error:
		return priorityError
	case Warn:
		return priorityWarn
	case Info:
		return priorityInfo
	case Debug:
		return priorityDebug
	case Trace:
		return priorityTrace
	default:
		return priorityUnknown
	}
}

// IsKnown reports whether l is one of the five record levels.
func IsKnown(l Level) bool {
	switch l {
	case Error, Warn, Info, Debug, Trace:
		return true
	}
	return false
}

// Levels returns the selectable filter values, most inclusive first.
func Levels() []Level {
	return []Level{All, Error, Warn, Info, Debug, Trace}
}

// Parse validates operator input against the selectable filter values.
func Parse(s string) (Level, error) {
	if strings.TrimSpace(s) == "" {
		return All, nil
	}
	l := Normalize(s)
	if l == All || IsKnown(l) {
		return l, nil
	}
	return "", fmt.Errorf("unknown level %q (want one of %v)", s, Levels())
}

// String implements fmt.Stringer.
func (l Level) String() string {
	return string(l)
}
