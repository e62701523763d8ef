package source

import (
	"fmt"
	"strconv"
	"time"

	"github.com/GabrielNunesIT/logview/internal/level"
)

// journalTimeLayout renders entries so the line parser reads them back as
// "<iso timestamp> [LEVEL] message".
const journalTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// journalLine renders one journal entry as a log line.
func journalLine(realtimeMicros uint64, priority, identifier, message string) string {
	ts := time.UnixMicro(int64(realtimeMicros)).UTC().Format(journalTimeLayout)
	if identifier != "" {
		message = identifier + ": " + message
	}
	return fmt.Sprintf("%s [%s] %s", ts, priorityLevel(priority), message)
}

// priorityLevel maps a syslog priority (0-7) to a record level.
func priorityLevel(priority string) level.Level {
	p, err := strconv.Atoi(priority)
	if err != nil {
		return level.Info
	}
	switch {
	case p <= 3: // emerg, alert, crit, err
		return level.Error
	case p == 4:
		return level.Warn
	case p <= 6: // notice, info
		return level.Info
	default:
		return level.Debug
	}
}
