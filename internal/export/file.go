package export

import (
	"context"
	"io"
	"sync"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/goccy/go-json"
	"github.com/natefinch/lumberjack"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/format"
	"github.com/GabrielNunesIT/logview/internal/model"
)

// WriterFactory creates the destination writer.
type WriterFactory func(cfg config.FileExporterConfig) (io.WriteCloser, error)

// FileOption configures the FileExporter.
type FileOption func(*FileExporter)

// WithWriterFactory sets a custom factory for creating the writer.
func WithWriterFactory(f WriterFactory) FileOption {
	return func(e *FileExporter) {
		e.factory = f
	}
}

// FileExporter writes records to a rotating file.
type FileExporter struct {
	cfg       config.FileExporterConfig
	formatter *format.Formatter
	factory   WriterFactory
	writer    io.WriteCloser
	mu        sync.Mutex
	logger    logger.ILogger
}

// NewFileExporter creates a new file exporter.
func NewFileExporter(cfg config.FileExporterConfig, f *format.Formatter, log logger.ILogger, opts ...FileOption) *FileExporter {
	e := &FileExporter{
		cfg:       cfg,
		formatter: f,
		logger:    log.SubLogger("FileExporter"),
	}

	e.factory = func(cfg config.FileExporterConfig) (io.WriteCloser, error) {
		return &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}, nil
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the exporter identifier.
func (f *FileExporter) Name() string {
	return "file"
}

// Start opens the rotating file writer.
func (f *FileExporter) Start(ctx context.Context) error {
	w, err := f.factory(f.cfg)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.writer = w
	f.mu.Unlock()

	f.logger.Debugf("file exporter started: path=%s, format=%s", f.cfg.Path, f.cfg.Format)
	return nil
}

// Stop closes the file writer.
func (f *FileExporter) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}
	err := f.writer.Close()
	f.writer = nil
	return err
}

// Export appends one record as a JSON object or a display line.
func (f *FileExporter) Export(ctx context.Context, rec model.LogRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		return nil
	}

	var output []byte
	if f.cfg.Format == "text" {
		output = []byte(f.formatter.GenerateLogLineText(rec))
	} else {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		output = data
	}

	_, err := f.writer.Write(append(output, '\n'))
	return err
}
