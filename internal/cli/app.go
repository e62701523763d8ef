package cli

import (
	"fmt"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/export"
	"github.com/GabrielNunesIT/logview/internal/format"
	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/logs"
	"github.com/GabrielNunesIT/logview/internal/parser"
	"github.com/GabrielNunesIT/logview/internal/query"
	"github.com/GabrielNunesIT/logview/internal/session"
	"github.com/GabrielNunesIT/logview/internal/source"
)

// app is the wiring shared by every command.
type app struct {
	cfg       *config.Config
	log       logger.ILogger
	formatter *format.Formatter
	source    source.Source
	exporters []export.Exporter
	session   *session.Session
}

// newApp loads configuration, applies flag overrides and wires a session.
// Exporters are only built when withExporters is set.
func newApp(cmd *cobra.Command, opts *globalOptions, withExporters bool) (*app, error) {
	log := SetupLogging(cmd.ErrOrStderr(), opts.logLevel)

	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)

	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		log = SetupLogging(cmd.ErrOrStderr(), cfg.LogLevel)
	}

	return buildApp(cmd, cfg, log, withExporters)
}

func buildApp(cmd *cobra.Command, cfg *config.Config, log logger.ILogger, withExporters bool) (*app, error) {
	formatter, err := format.New(cfg.Display.Timezone, cfg.Display.TimeLayout)
	if err != nil {
		return nil, err
	}

	view, err := viewFromConfig(cfg.View)
	if err != nil {
		return nil, err
	}

	inputFormat, err := logs.ParseFormat(cfg.Parser.Format)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(cfg.Parser)
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}

	src, err := source.New(cfg.Source, cfg.Session, cmd.InOrStdin(), log)
	if err != nil {
		return nil, fmt.Errorf("creating source: %w", err)
	}

	var exporters []export.Exporter
	if withExporters {
		exporters, err = export.New(cfg.Exporters, formatter, cfg.Display.Color, cmd.OutOrStdout(), log)
		if err != nil {
			return nil, fmt.Errorf("creating exporters: %w", err)
		}
	}

	sess := session.New(src, logs.New(p), log,
		session.WithView(view),
		session.WithInputFormat(inputFormat),
		session.WithRetryPolicy(source.RetryPolicy{
			Attempts:  cfg.Source.Retry.Attempts,
			BaseDelay: cfg.Source.Retry.BaseDelay,
		}),
		session.WithPollInterval(cfg.Session.PollInterval),
		session.WithShutdownTimeout(cfg.Session.ShutdownTimeout),
		session.WithExporters(exporters...),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		formatter: formatter,
		source:    src,
		exporters: exporters,
		session:   sess,
	}, nil
}

// viewFromConfig validates the view section.
func viewFromConfig(cfg config.ViewConfig) (query.View, error) {
	lvl, err := level.Parse(cfg.Level)
	if err != nil {
		return query.View{}, err
	}

	order, err := query.ParseOrder(cfg.Order)
	if err != nil {
		return query.View{}, err
	}

	if cfg.Limit < 0 {
		return query.View{}, fmt.Errorf("limit must not be negative, got %d", cfg.Limit)
	}

	return query.View{
		Level: lvl,
		Query: cfg.Query,
		Order: order,
		Limit: cfg.Limit,
	}, nil
}

// printer returns a stdout exporter rendering records in the given output
// format to the command's output.
func (a *app) printer(cmd *cobra.Command, output string) (*export.StdoutExporter, error) {
	switch output {
	case "table", "text", "json":
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, text or json)", output)
	}
	cfg := config.StdoutExporterConfig{Enabled: true, Format: output}
	return export.NewStdoutExporter(cfg, a.formatter, a.cfg.Display.Color, cmd.OutOrStdout(), a.log), nil
}

// loadedAt renders a load time for status lines.
func (a *app) loadedAt(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.In(a.formatter.Location()).Format(time.TimeOnly)
}
