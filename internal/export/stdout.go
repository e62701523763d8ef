package export

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/format"
	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/model"
)

// levelStyles colors the level tag of text output.
type levelStyles struct {
	error lipgloss.Style
	warn  lipgloss.Style
	info  lipgloss.Style
	debug lipgloss.Style
	other lipgloss.Style
}

func newLevelStyles(r *lipgloss.Renderer) levelStyles {
	return levelStyles{
		error: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // red bold
		warn:  r.NewStyle().Foreground(lipgloss.Color("220")),            // yellow
		info:  r.NewStyle().Foreground(lipgloss.Color("39")),             // cyan
		debug: r.NewStyle().Foreground(lipgloss.Color("245")),            // gray
		other: r.NewStyle().Foreground(lipgloss.Color("245")).Faint(true),
	}
}

func (s levelStyles) render(l level.Level) string {
	tag := "[" + string(l) + "]"
	switch l {
	case level.Error:
		return s.error.Render(tag)
	case level.Warn:
		return s.warn.Render(tag)
	case level.Info:
		return s.info.Render(tag)
	case level.Debug:
		return s.debug.Render(tag)
	default:
		return s.other.Render(tag)
	}
}

// StdoutExporter writes records to standard output as display text, JSON
// lines or a table.
type StdoutExporter struct {
	cfg       config.StdoutExporterConfig
	formatter *format.Formatter
	color     bool
	styles    levelStyles
	writer    io.Writer
	rows      [][]string
	mu        sync.Mutex
	logger    logger.ILogger
}

// NewStdoutExporter creates an exporter writing to w, normally os.Stdout.
// Colors are only emitted when w is a terminal that supports them.
func NewStdoutExporter(cfg config.StdoutExporterConfig, f *format.Formatter, color bool, w io.Writer, log logger.ILogger) *StdoutExporter {
	return &StdoutExporter{
		cfg:       cfg,
		formatter: f,
		color:     color,
		styles:    newLevelStyles(lipgloss.NewRenderer(w)),
		writer:    w,
		logger:    log.SubLogger("StdoutExporter"),
	}
}

// Name returns the exporter identifier.
func (s *StdoutExporter) Name() string {
	return "stdout"
}

// Start initializes the exporter (no-op for stdout).
func (s *StdoutExporter) Start(ctx context.Context) error {
	s.logger.Debugf("stdout exporter started: format=%s", s.cfg.Format)
	return nil
}

// Stop renders the buffered table, if any.
func (s *StdoutExporter) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Format == "table" {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("TIME", "LEVEL", "MESSAGE").
			Rows(s.rows...)
		if _, err := fmt.Fprintln(s.writer, t.Render()); err != nil {
			return err
		}
		s.rows = nil
	}

	s.logger.Debug("stdout exporter stopped")
	return nil
}

// Export writes one record. Table rows are buffered until Stop so columns
// can be aligned.
func (s *StdoutExporter) Export(ctx context.Context, rec model.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var output []byte
	switch s.cfg.Format {
	case "table":
		s.rows = append(s.rows, []string{
			s.formatter.FormatTimestamp(rec.Timestamp),
			string(rec.Level),
			rec.Message,
		})
		return nil
	case "json":
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		output = data
	default:
		output = []byte(s.formatText(rec))
	}

	_, err := s.writer.Write(append(output, '\n'))
	return err
}

// formatText renders the display line with an optionally colored level tag.
func (s *StdoutExporter) formatText(rec model.LogRecord) string {
	if !s.color {
		return s.formatter.GenerateLogLineText(rec)
	}
	return fmt.Sprintf("[%s] %s %s", s.formatter.FormatTimestamp(rec.Timestamp), s.styles.render(rec.Level), rec.Message)
}
