package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure no config file in the working directory affects the test
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected loglevel=info, got %s", cfg.LogLevel)
	}
	if cfg.Source.Kind != "file" {
		t.Errorf("expected source kind=file, got %s", cfg.Source.Kind)
	}
	if cfg.Source.Retry.Attempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.Source.Retry.Attempts)
	}
	if cfg.Source.Retry.BaseDelay != time.Second {
		t.Errorf("expected retry basedelay=1s, got %v", cfg.Source.Retry.BaseDelay)
	}
	if cfg.View.Level != "ALL" {
		t.Errorf("expected view level=ALL, got %s", cfg.View.Level)
	}
	if cfg.View.Order != "desc" {
		t.Errorf("expected view order=desc, got %s", cfg.View.Order)
	}
	if cfg.Display.Timezone != "Asia/Shanghai" {
		t.Errorf("expected timezone=Asia/Shanghai, got %s", cfg.Display.Timezone)
	}
	if !cfg.Exporters.Stdout.Enabled {
		t.Error("expected stdout exporter enabled by default")
	}
	if cfg.Exporters.File.Enabled || cfg.Exporters.Elasticsearch.Enabled || cfg.Exporters.Loki.Enabled {
		t.Error("expected remote exporters disabled by default")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	// LOGVIEW_LOGLEVEL -> loglevel
	t.Setenv("LOGVIEW_LOGLEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected loglevel=debug from env, got %s", cfg.LogLevel)
	}
}

func TestLoad_NestedEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	// LOGVIEW_VIEW_LEVEL -> view.level
	t.Setenv("LOGVIEW_VIEW_LEVEL", "WARN")
	t.Setenv("LOGVIEW_SOURCE_RETRY_ATTEMPTS", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.View.Level != "WARN" {
		t.Errorf("expected view level=WARN from env, got %s", cfg.View.Level)
	}
	if cfg.Source.Retry.Attempts != 5 {
		t.Errorf("expected retry attempts=5 from env, got %d", cfg.Source.Retry.Attempts)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	configContent := `
loglevel: warn
source:
  kind: file
  path: /var/log/app.log
parser:
  patterns:
    - '^(?P<level>\w+)\|(?P<message>.*)$'
view:
  level: error
  order: asc
exporters:
  stdout:
    format: table
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("expected loglevel=warn from file, got %s", cfg.LogLevel)
	}
	if cfg.Source.Path != "/var/log/app.log" {
		t.Errorf("expected source path from file, got %s", cfg.Source.Path)
	}
	if len(cfg.Parser.Patterns) != 1 {
		t.Errorf("expected 1 parser pattern, got %d", len(cfg.Parser.Patterns))
	}
	if cfg.View.Level != "error" || cfg.View.Order != "asc" {
		t.Errorf("expected view error/asc from file, got %s/%s", cfg.View.Level, cfg.View.Order)
	}
	if cfg.Exporters.Stdout.Format != "table" {
		t.Errorf("expected stdout format=table, got %s", cfg.Exporters.Stdout.Format)
	}
	// Untouched values keep their defaults
	if cfg.Display.TimeLayout != "2006-01-02 15:04:05" {
		t.Errorf("expected default time layout, got %s", cfg.Display.TimeLayout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(configPath, []byte(`loglevel: warn`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("LOGVIEW_LOGLEVEL", "error")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("expected env to override file, got %s", cfg.LogLevel)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	invalidContent := `
loglevel: info
  invalid_indent: true
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoad_JSONFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	configContent := `{
  "loglevel": "error",
  "display": {
    "timezone": "UTC"
  }
}`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("expected loglevel=error from JSON file, got %s", cfg.LogLevel)
	}
	if cfg.Display.Timezone != "UTC" {
		t.Errorf("expected timezone=UTC from JSON file, got %s", cfg.Display.Timezone)
	}
}

func TestDefaults_Exporters(t *testing.T) {
	d := Defaults()

	if d.Exporters.File.MaxSizeMB != 100 {
		t.Errorf("expected file maxsizemb=100, got %d", d.Exporters.File.MaxSizeMB)
	}
	if d.Exporters.File.MaxBackups != 3 {
		t.Errorf("expected file maxbackups=3, got %d", d.Exporters.File.MaxBackups)
	}
	if !d.Exporters.File.Compress {
		t.Error("expected file compress enabled by default")
	}
	if d.Exporters.Elasticsearch.FlushInterval != 5*time.Second {
		t.Errorf("expected elasticsearch flushinterval=5s, got %v", d.Exporters.Elasticsearch.FlushInterval)
	}
	if d.Exporters.Loki.BatchSize != 100 {
		t.Errorf("expected loki batchsize=100, got %d", d.Exporters.Loki.BatchSize)
	}
}

func TestDefaults_Session(t *testing.T) {
	d := Defaults()

	if d.Session.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected shutdowntimeout=30s, got %v", d.Session.ShutdownTimeout)
	}
	if d.Session.Debounce != 100*time.Millisecond {
		t.Errorf("expected debounce=100ms, got %v", d.Session.Debounce)
	}
}
