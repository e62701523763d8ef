// Package format renders records as display text.
package format

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/timeparse"
)

const (
	// DefaultTimezone matches what deployed viewers have always shown.
	DefaultTimezone = "Asia/Shanghai"
	// DefaultLayout is year-month-day, 24-hour clock.
	DefaultLayout = "2006-01-02 15:04:05"
)

// Formatter renders timestamps in a fixed zone and layout.
type Formatter struct {
	loc    *time.Location
	layout string
}

// New creates a formatter for the named IANA zone and a Go time layout.
// Empty arguments fall back to the defaults.
func New(timezone, layout string) (*Formatter, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	if layout == "" {
		layout = DefaultLayout
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	return &Formatter{loc: loc, layout: layout}, nil
}

// Default returns a formatter with DefaultTimezone and DefaultLayout.
func Default() *Formatter {
	f, err := New("", "")
	if err != nil {
		// tzdata is embedded, so the default zone always loads.
		panic(err)
	}
	return f
}

// Location returns the display zone.
func (f *Formatter) Location() *time.Location {
	return f.loc
}

// FormatTimestamp renders raw in the display zone. Timestamps without a zone
// are taken to be in the display zone already. Unparseable input is
// returned unchanged.
func (f *Formatter) FormatTimestamp(raw string) string {
	t, ok := timeparse.Parse(raw, f.loc)
	if !ok {
		return raw
	}
	return t.In(f.loc).Format(f.layout)
}

// GenerateLogLineText renders rec as "[<timestamp>] [<LEVEL>] <message>".
func (f *Formatter) GenerateLogLineText(rec model.LogRecord) string {
	return fmt.Sprintf("[%s] [%s] %s", f.FormatTimestamp(rec.Timestamp), rec.Level, rec.Message)
}
