// Package parser turns one raw log line into a normalized record.
//
// A fixed, ordered list of format matchers is tried against each line and the
// first match wins. Lines no matcher recognizes become INFO records stamped
// with the current time. Parsing never fails.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/model"
)

// NowLayout renders the processing time given to lines without a timestamp.
const NowLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	// bracketTS is the date-time accepted inside a leading [..] block.
	bracketTS = `\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:[.,]\d+)?`
	// isoTS allows a T or space separator and an optional zone suffix.
	isoTS = `\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?`
	// levelWord is the vocabulary accepted as an unbracketed level token.
	levelWord = `(?i:ERROR|ERR|WARN(?:ING)?|INFO|DEBUG|TRACE)`
	// tail is the optional message after one or more blanks.
	tail = `(?:\s+(.*))?$`
)

// builtins lists the line formats in match order. Order matters: later
// patterns accept subsets of what earlier ones would.
var builtins = []*regexMatcher{
	newBuiltin("bracketed-timestamp-level", `^\[(`+bracketTS+`)\]\s+\[(\w+)\]`+tail, 1, 2, 3),
	newBuiltin("iso-timestamp-bracketed-level", `^(`+isoTS+`)\s+\[(\w+)\]`+tail, 1, 2, 3),
	newBuiltin("bracketed-level-timestamp", `^\[(\w+)\]\s+(`+isoTS+`)`+tail, 2, 1, 3),
	newBuiltin("timestamp-level", `^(`+isoTS+`)\s+(`+levelWord+`)`+tail, 1, 2, 3),
	newBuiltin("bracketed-level", `^\[(\w+)\]`+tail, 0, 1, 2),
	newBuiltin("colon-level", `^(`+levelWord+`):\s*(.*)$`, 0, 1, 2),
}

// Parser converts log lines into records.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	clock    clockwork.Clock
	matchers []*regexMatcher
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the time source used for lines without a timestamp.
func WithClock(c clockwork.Clock) Option {
	return func(p *Parser) {
		p.clock = c
	}
}

// New creates a parser with the built-in formats followed by any extra
// patterns from cfg. Extra patterns use the named groups timestamp, level
// and message, all optional.
func New(cfg config.ParserConfig, opts ...Option) (*Parser, error) {
	p := &Parser{
		clock:    clockwork.NewRealClock(),
		matchers: append([]*regexMatcher(nil), builtins...),
	}

	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %d: %w", i, err)
		}
		p.matchers = append(p.matchers, &regexMatcher{
			label: fmt.Sprintf("custom-%d", i),
			re:    re,
			ts:    groupIndex(re, "timestamp"),
			level: groupIndex(re, "level"),
			msg:   groupIndex(re, "message"),
		})
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Default returns a parser with only the built-in formats and the wall clock.
func Default(opts ...Option) *Parser {
	p, _ := New(config.ParserConfig{}, opts...)
	return p
}

// ParseLine parses a single line. Surrounding whitespace is ignored.
func (p *Parser) ParseLine(line string) model.LogRecord {
	rec, _ := p.parse(line)
	return rec
}

// parse returns the record and the name of the format that produced it.
func (p *Parser) parse(line string) (model.LogRecord, string) {
	line = strings.TrimSpace(line)
	now := p.now()

	for _, m := range p.matchers {
		if rec, ok := m.match(line, now); ok {
			return rec, m.label
		}
	}

	return model.LogRecord{
		Timestamp: now,
		Level:     level.Info,
		Message:   line,
	}, "fallback"
}

func (p *Parser) now() string {
	return FormatNow(p.clock.Now())
}

// regexMatcher extracts a record from the capture groups of one pattern.
// A zero group index means the field is absent from the format.
type regexMatcher struct {
	label string
	re    *regexp.Regexp
	ts    int
	level int
	msg   int
}

func newBuiltin(label, pattern string, ts, lvl, msg int) *regexMatcher {
	return &regexMatcher{
		label: label,
		re:    regexp.MustCompile(pattern),
		ts:    ts,
		level: lvl,
		msg:   msg,
	}
}

func (m *regexMatcher) match(line, now string) (model.LogRecord, bool) {
	groups := m.re.FindStringSubmatch(line)
	if groups == nil {
		return model.LogRecord{}, false
	}

	rec := model.LogRecord{
		Timestamp: now,
		Level:     level.Info,
		Message:   line,
	}
	if v := group(groups, m.ts); v != "" {
		rec.Timestamp = v
	}
	if v := group(groups, m.level); v != "" {
		rec.Level = level.Normalize(v)
	}
	if m.msg > 0 {
		rec.Message = group(groups, m.msg)
	}
	return rec, true
}

func group(groups []string, i int) string {
	if i <= 0 || i >= len(groups) {
		return ""
	}
	return groups[i]
}

func groupIndex(re *regexp.Regexp, name string) int {
	if i := re.SubexpIndex(name); i > 0 {
		return i
	}
	return 0
}

// FormatNow renders t the way the parser stamps timestamp-less lines.
func FormatNow(t time.Time) string {
	return t.UTC().Format(NowLayout)
}
