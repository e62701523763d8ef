package config

import (
	"context"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/logview/internal/fswatch"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange chan *Config
	onError  chan error
	logger   logger.ILogger
}

// NewWatcher creates a new config file watcher.
func NewWatcher(path string, debounce time.Duration, log logger.ILogger) *Watcher {
	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: make(chan *Config, 1),
		onError:  make(chan error, 1),
		logger:   log.SubLogger("ConfigWatcher"),
	}
}

// Changes returns channel that receives new configs on file changes.
func (w *Watcher) Changes() <-chan *Config {
	return w.onChange
}

// Errors returns channel that receives errors during reload.
func (w *Watcher) Errors() <-chan error {
	return w.onError
}

// Start begins watching the config file until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	changes, errs, err := fswatch.Watch(ctx, w.path, w.debounce, w.logger)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
				w.reload()
			case err, ok := <-errs:
				if !ok {
					return
				}
				w.publishError(err)
			}
		}
	}()

	return nil
}

// reload loads the config file and sends it on the change channel.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Errorf("failed to reload config: %v", err)
		w.publishError(err)
		return
	}

	w.logger.Infof("config reloaded: path=%s", w.path)

	select {
	case w.onChange <- cfg:
	default:
		w.logger.Warning("config change channel full, dropping update")
	}
}

func (w *Watcher) publishError(err error) {
	select {
	case w.onError <- err:
	default:
	}
}
