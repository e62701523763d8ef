// Package fswatch turns filesystem events for a single file into debounced
// change notifications.
package fswatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/fsnotify/fsnotify"
)

// relevantOps are the operations that can change what reading the file yields.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch reports changes to path until ctx is done. The parent directory is
// watched so that a file that is rotated, truncated or recreated keeps being
// tracked. Bursts of events within debounce collapse into one notification.
//
// Both returned channels are closed when watching stops.
func Watch(ctx context.Context, path string, debounce time.Duration, log logger.ILogger) (<-chan struct{}, <-chan error, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watching %q: %w", filepath.Dir(target), err)
	}

	changes := make(chan struct{}, 1)
	errs := make(chan error, 1)

	log.Debugf("started watching file: %s", target)
	go loop(ctx, watcher, target, debounce, changes, errs, log)

	return changes, errs, nil
}

func loop(ctx context.Context, watcher *fsnotify.Watcher, target string, debounce time.Duration, changes chan<- struct{}, errs chan<- error, log logger.ILogger) {
	defer close(errs)
	defer close(changes)
	defer watcher.Close()

	var debounceTimer *time.Timer
	var debounceChan <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			log.Debug("file watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}

			log.Debugf("file change detected: op=%s", event.Op)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(debounce)
			debounceChan = debounceTimer.C

		case <-debounceChan:
			debounceChan = nil
			select {
			case changes <- struct{}{}:
			default:
				// A notification is already pending.
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("fsnotify error: %v", err)
			select {
			case errs <- err:
			default:
			}
		}
	}
}
