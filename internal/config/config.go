// Package config provides configuration loading with layered overrides.
// Load order: defaults -> YAML/JSON file -> environment variables.
package config

import (
	"os"
	"time"

	configloader "github.com/GabrielNunesIT/go-libs/config-loader"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. LOGVIEW_VIEW_LEVEL -> view.level.
const EnvPrefix = "LOGVIEW_"

// Config is the root configuration structure for the log viewer.
type Config struct {
	LogLevel  string         `koanf:"loglevel" yaml:"log_level" json:"log_level"`
	Source    SourceConfig   `koanf:"source"`
	Parser    ParserConfig   `koanf:"parser"`
	View      ViewConfig     `koanf:"view"`
	Display   DisplayConfig  `koanf:"display"`
	Session   SessionConfig  `koanf:"session"`
	Exporters ExporterConfig `koanf:"exporters"`
}

// SourceConfig selects where log text is read from.
type SourceConfig struct {
	Kind  string      `koanf:"kind"` // "file", "stdin" or "journal"
	Path  string      `koanf:"path"`
	Units []string    `koanf:"units"` // journal units, empty for all
	Retry RetryConfig `koanf:"retry"`
}

// RetryConfig controls re-reading a source after a failed read.
// Waits grow linearly: 1x, 2x, 3x BaseDelay.
type RetryConfig struct {
	Attempts  int           `koanf:"attempts"`
	BaseDelay time.Duration `koanf:"basedelay" yaml:"base_delay" json:"base_delay"`
}

// ParserConfig configures line parsing.
type ParserConfig struct {
	Format   string   `koanf:"format"`   // "text" or "jsonl"
	Patterns []string `koanf:"patterns"` // extra regexes with named groups timestamp, level, message
}

// ViewConfig is the default filter/search/sort applied to records.
type ViewConfig struct {
	Level string `koanf:"level"`
	Query string `koanf:"query"`
	Order string `koanf:"order"` // "asc" or "desc"
	Limit int    `koanf:"limit"` // 0 for no limit
}

// DisplayConfig controls how records are rendered for people.
type DisplayConfig struct {
	Timezone   string `koanf:"timezone"`
	TimeLayout string `koanf:"timelayout" yaml:"time_layout" json:"time_layout"`
	Color      bool   `koanf:"color"`
}

// SessionConfig controls follow mode and shutdown.
type SessionConfig struct {
	PollInterval    time.Duration `koanf:"pollinterval" yaml:"poll_interval" json:"poll_interval"`
	Debounce        time.Duration `koanf:"debounce"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ExporterConfig holds configuration for all exporters.
type ExporterConfig struct {
	Stdout        StdoutExporterConfig        `koanf:"stdout"`
	File          FileExporterConfig          `koanf:"file"`
	Elasticsearch ElasticsearchExporterConfig `koanf:"elasticsearch"`
	Loki          LokiExporterConfig          `koanf:"loki"`
}

// StdoutExporterConfig configures the stdout exporter.
type StdoutExporterConfig struct {
	Enabled bool   `koanf:"enabled"`
	Format  string `koanf:"format"` // "text", "table" or "json"
}

// FileExporterConfig configures the rotating file exporter.
type FileExporterConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"`
	Format     string `koanf:"format"` // "json" or "text"
	MaxSizeMB  int    `koanf:"maxsizemb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `koanf:"maxbackups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `koanf:"maxagedays" yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// ElasticsearchExporterConfig configures the Elasticsearch exporter.
type ElasticsearchExporterConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Addresses     []string      `koanf:"addresses"`
	Index         string        `koanf:"index"`
	Username      string        `koanf:"username"`
	Password      string        `koanf:"password"`
	FlushInterval time.Duration `koanf:"flushinterval" yaml:"flush_interval" json:"flush_interval"`
}

// LokiExporterConfig configures the Loki exporter.
type LokiExporterConfig struct {
	Enabled       bool              `koanf:"enabled"`
	URL           string            `koanf:"url"`
	TenantID      string            `koanf:"tenantid" yaml:"tenant_id" json:"tenant_id"`
	Labels        map[string]string `koanf:"labels"`
	BatchSize     int               `koanf:"batchsize" yaml:"batch_size" json:"batch_size"`
	FlushInterval time.Duration     `koanf:"flushinterval" yaml:"flush_interval" json:"flush_interval"`
}

// Defaults returns the default configuration values.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Source: SourceConfig{
			Kind: "file",
			Retry: RetryConfig{
				Attempts:  3,
				BaseDelay: 1 * time.Second,
			},
		},
		Parser: ParserConfig{
			Format: "text",
		},
		View: ViewConfig{
			Level: "ALL",
			Order: "desc",
		},
		Display: DisplayConfig{
			Timezone:   "Asia/Shanghai",
			TimeLayout: "2006-01-02 15:04:05",
			Color:      true,
		},
		Session: SessionConfig{
			PollInterval:    2 * time.Second,
			Debounce:        100 * time.Millisecond,
			ShutdownTimeout: 30 * time.Second,
		},
		Exporters: ExporterConfig{
			Stdout: StdoutExporterConfig{
				Enabled: true,
				Format:  "text",
			},
			File: FileExporterConfig{
				Enabled:    false,
				Format:     "json",
				MaxSizeMB:  100,
				MaxBackups: 3,
				MaxAgeDays: 7,
				Compress:   true,
			},
			Elasticsearch: ElasticsearchExporterConfig{
				Enabled:       false,
				Index:         "logview",
				FlushInterval: 5 * time.Second,
			},
			Loki: LokiExporterConfig{
				Enabled:       false,
				BatchSize:     100,
				FlushInterval: 1 * time.Second,
			},
		},
	}
}

// Load reads configuration from all sources with proper override order.
// Order: defaults -> config file -> environment variables.
func Load(configPath string) (*Config, error) {
	opts := []configloader.Option[Config]{
		configloader.WithDefaults[Config](Defaults()),
	}

	if configPath != "" {
		opts = append(opts, configloader.WithFile[Config](configPath))
	} else {
		for _, path := range []string{"./logview.yaml", "/etc/logview/config.yaml"} {
			if _, err := os.Stat(path); err == nil {
				opts = append(opts, configloader.WithFile[Config](path))
				break
			}
		}
	}

	opts = append(opts, configloader.WithEnv[Config](EnvPrefix))

	loader := configloader.NewConfigLoader[Config](opts...)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
