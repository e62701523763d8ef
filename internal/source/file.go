package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/logview/internal/fswatch"
)

// FileSource reads a log file from disk.
type FileSource struct {
	path     string
	debounce time.Duration
	logger   logger.ILogger
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string, debounce time.Duration, log logger.ILogger) *FileSource {
	return &FileSource{
		path:     path,
		debounce: debounce,
		logger:   log.SubLogger("FileSource"),
	}
}

// Name returns the file path.
func (f *FileSource) Name() string {
	return f.path
}

// Read returns the file contents decoded as UTF-8. Invalid byte sequences
// are replaced with U+FFFD.
func (f *FileSource) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading log file: %w", err)
	}

	f.logger.Debugf("read log file: path=%s, bytes=%d", f.path, len(data))
	return strings.ToValidUTF8(string(data), "�"), nil
}

// Clear truncates the file to zero length.
func (f *FileSource) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Truncate(f.path, 0); err != nil {
		return fmt.Errorf("clearing log file: %w", err)
	}
	f.logger.Infof("log file cleared: path=%s", f.path)
	return nil
}

// Watch signals whenever the file is written, truncated, rotated or recreated.
func (f *FileSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	changes, errs, err := fswatch.Watch(ctx, f.path, f.debounce, f.logger)
	if err != nil {
		return nil, err
	}

	// fswatch logs watch errors itself.
	go func() {
		for range errs {
		}
	}()

	return changes, nil
}
