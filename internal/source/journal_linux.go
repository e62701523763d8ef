//go:build linux && cgo

package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/coreos/go-systemd/v22/sdjournal"
)

// JournalSource reads the systemd journal, optionally limited to units.
type JournalSource struct {
	units  []string
	logger logger.ILogger
}

// NewJournalSource creates a systemd journal source.
func NewJournalSource(units []string, log logger.ILogger) *JournalSource {
	return &JournalSource{
		units:  units,
		logger: log.SubLogger("JournalSource"),
	}
}

// Name returns the source identifier.
func (j *JournalSource) Name() string {
	if len(j.units) == 0 {
		return "journal"
	}
	return "journal:" + strings.Join(j.units, ",")
}

// Read renders every matching journal entry, oldest first.
func (j *JournalSource) Read(ctx context.Context) (string, error) {
	journal, err := sdjournal.NewJournal()
	if err != nil {
		return "", fmt.Errorf("opening journal: %w", err)
	}
	defer journal.Close()

	// Matches on the same field are ORed by the journal.
	for _, unit := range j.units {
		if err := journal.AddMatch(fmt.Sprintf("_SYSTEMD_UNIT=%s", unit)); err != nil {
			return "", fmt.Errorf("adding unit filter %q: %w", unit, err)
		}
	}

	if err := journal.SeekHead(); err != nil {
		return "", fmt.Errorf("seeking to journal head: %w", err)
	}

	var b strings.Builder
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n, err := journal.Next()
		if err != nil {
			return "", fmt.Errorf("reading next entry: %w", err)
		}
		if n == 0 {
			break
		}

		entry, err := journal.GetEntry()
		if err != nil {
			continue // Skip malformed entries
		}

		b.WriteString(journalLine(
			entry.RealtimeTimestamp,
			entry.Fields[sdjournal.SD_JOURNAL_FIELD_PRIORITY],
			entry.Fields[sdjournal.SD_JOURNAL_FIELD_SYSLOG_IDENTIFIER],
			entry.Fields[sdjournal.SD_JOURNAL_FIELD_MESSAGE],
		))
		b.WriteByte('\n')
		count++
	}

	j.logger.Debugf("read journal: entries=%d", count)
	return b.String(), nil
}
