// Package source reads the full text of a log source for parsing.
package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/logview/internal/config"
)

// Source yields the complete current contents of a log.
type Source interface {
	// Read returns the whole log as text. It may be called repeatedly;
	// each call reflects the source as it is now.
	Read(ctx context.Context) (string, error)

	// Name returns a human readable identifier for this source.
	Name() string
}

// Clearer is implemented by sources that can be emptied.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Watcher is implemented by sources that can signal when their contents
// change. The channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// New creates the source selected by cfg. stdin backs the stdin kind.
func New(cfg config.SourceConfig, sessionCfg config.SessionConfig, stdin io.Reader, log logger.ILogger) (Source, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source requires a path")
		}
		return NewFileSource(cfg.Path, sessionCfg.Debounce, log), nil
	case "stdin":
		return NewStdinSource(stdin, log), nil
	case "journal":
		return NewJournalSource(cfg.Units, log), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q (want file, stdin or journal)", cfg.Kind)
	}
}
