// Package export defines the interface and implementations for record sinks.
package export

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/format"
	"github.com/GabrielNunesIT/logview/internal/model"
)

// Exporter defines the contract for record sinks.
// Each exporter receives records and writes them to a destination.
type Exporter interface {
	// Start initializes the exporter (connections, buffers, etc.).
	// Called once before Export is called.
	Start(ctx context.Context) error

	// Export sends one record to the destination.
	// Must be safe to call concurrently.
	Export(ctx context.Context, rec model.LogRecord) error

	// Stop flushes any buffered data and releases resources.
	Stop(ctx context.Context) error

	// Name returns a unique identifier for this exporter.
	Name() string
}

// HTTPDoer abstracts HTTP client operations for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPDoer = (*http.Client)(nil)

// New creates every exporter enabled in cfg. Display text is rendered with f
// and the stdout exporter writes to stdout.
func New(cfg config.ExporterConfig, f *format.Formatter, color bool, stdout io.Writer, log logger.ILogger) ([]Exporter, error) {
	var exporters []Exporter

	if cfg.Stdout.Enabled {
		exporters = append(exporters, NewStdoutExporter(cfg.Stdout, f, color, stdout, log))
	}

	if cfg.File.Enabled {
		if cfg.File.Path == "" {
			return nil, fmt.Errorf("file exporter requires a path")
		}
		exporters = append(exporters, NewFileExporter(cfg.File, f, log))
	}

	if cfg.Elasticsearch.Enabled {
		exporters = append(exporters, NewElasticsearchExporter(cfg.Elasticsearch, log))
	}

	if cfg.Loki.Enabled {
		if cfg.Loki.URL == "" {
			return nil, fmt.Errorf("loki exporter requires a url")
		}
		exporters = append(exporters, NewLokiExporter(cfg.Loki, log))
	}

	return exporters, nil
}
