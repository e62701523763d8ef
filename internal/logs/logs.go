// Package logs splits raw log text into lines and turns them into sanitized
// records, preserving input order.
package logs

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/parser"
	"github.com/GabrielNunesIT/logview/internal/sanitizer"
)

// Format identifies how a source encodes its records.
type Format string

const (
	// FormatText is free-form text, one record per line.
	FormatText Format = "text"
	// FormatJSONLines is one JSON object per line with timestamp, level
	// and message keys.
	FormatJSONLines Format = "jsonl"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSONLines, "json":
		return FormatJSONLines, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want text or jsonl)", s)
	}
}

// Pipeline parses whole log contents. It is stateless and safe for
// concurrent use.
type Pipeline struct {
	parser *parser.Parser
}

// New creates a pipeline around a configured line parser.
func New(p *parser.Parser) *Pipeline {
	return &Pipeline{parser: p}
}

var defaultPipeline = New(parser.Default())

// ParseLogs parses content with the built-in line formats and the wall clock.
func ParseLogs(content string) []model.LogRecord {
	return defaultPipeline.ParseLogs(content)
}

// Parse dispatches on the source format.
func (p *Pipeline) Parse(content string, format Format) []model.LogRecord {
	if format == FormatJSONLines {
		return p.ParseJSONLines(content)
	}
	return p.ParseLogs(content)
}

// ParseLogs parses each non-blank line of content in order.
// Empty or whitespace-only content yields an empty slice.
func (p *Pipeline) ParseLogs(content string) []model.LogRecord {
	lines := nonBlankLines(content)
	if len(lines) == 0 {
		return []model.LogRecord{}
	}

	candidates := make([]any, 0, len(lines))
	for _, line := range lines {
		candidates = append(candidates, p.parser.ParseLine(line))
	}
	return sanitizer.Sanitize(candidates)
}

// ParseJSONLines decodes each non-blank line as JSON and keeps the values
// that are valid records. Lines that are not JSON are dropped.
func (p *Pipeline) ParseJSONLines(content string) []model.LogRecord {
	lines := nonBlankLines(content)

	candidates := make([]any, 0, len(lines))
	for _, line := range lines {
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			continue
		}
		candidates = append(candidates, v)
	}

	records := sanitizer.Sanitize(candidates)
	for i := range records {
		records[i].Level = level.Normalize(string(records[i].Level))
	}
	return records
}

func nonBlankLines(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
