// Package session orchestrates reading a source, parsing it and serving
// filtered views of the result to the CLI and to exporters.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/GabrielNunesIT/logview/internal/export"
	"github.com/GabrielNunesIT/logview/internal/logs"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/query"
	"github.com/GabrielNunesIT/logview/internal/source"
)

// ErrNotClearable is returned by Clear for sources that cannot be emptied.
var ErrNotClearable = errors.New("source cannot be cleared")

// Snapshot is an immutable view over one load of the source.
type Snapshot struct {
	// Records holds the loaded records with the view applied.
	Records []model.LogRecord
	// Total is the number of records before the view was applied.
	Total int
	// LoadedAt is when the source was last read successfully.
	LoadedAt time.Time
	// Err is the most recent load error. Records still reflect the last
	// successful load.
	Err error
}

// Session coordinates one source, its parser and a set of exporters.
type Session struct {
	src             source.Source
	pipeline        *logs.Pipeline
	format          logs.Format
	retry           source.RetryPolicy
	exporters       []export.Exporter
	clock           clockwork.Clock
	pollInterval    time.Duration
	shutdownTimeout time.Duration
	logger          logger.ILogger

	mu       sync.RWMutex
	view     query.View
	records  []model.LogRecord
	loadedAt time.Time

	// viewChanged wakes a running Follow loop after SetView.
	viewChanged chan struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithView sets the initial view.
func WithView(v query.View) Option {
	return func(s *Session) {
		s.view = v
	}
}

// WithInputFormat sets how source text is decoded.
func WithInputFormat(f logs.Format) Option {
	return func(s *Session) {
		s.format = f
	}
}

// WithRetryPolicy sets the read retry policy.
func WithRetryPolicy(p source.RetryPolicy) Option {
	return func(s *Session) {
		s.retry = p
	}
}

// WithExporters sets the sinks used by Export.
func WithExporters(exporters ...export.Exporter) Option {
	return func(s *Session) {
		s.exporters = exporters
	}
}

// WithClock sets the time source for polling and load stamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithPollInterval sets how often Follow re-reads sources that cannot
// signal changes.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		s.pollInterval = d
	}
}

// WithShutdownTimeout bounds how long exporters may take to stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.shutdownTimeout = d
	}
}

// New creates a session reading src through pipeline.
func New(src source.Source, pipeline *logs.Pipeline, log logger.ILogger, opts ...Option) *Session {
	s := &Session{
		src:             src,
		pipeline:        pipeline,
		format:          logs.FormatText,
		retry:           source.DefaultRetryPolicy,
		clock:           clockwork.NewRealClock(),
		pollInterval:    2 * time.Second,
		shutdownTimeout: 30 * time.Second,
		logger:          log.SubLogger("Session"),
		records:         []model.LogRecord{},
		viewChanged:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses the source, replacing the stored records.
// On failure the previous records are kept.
func (s *Session) Load(ctx context.Context) ([]model.LogRecord, error) {
	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.records = records
	s.loadedAt = s.clock.Now()
	s.mu.Unlock()

	return records, nil
}

func (s *Session) read(ctx context.Context) ([]model.LogRecord, error) {
	content, err := source.ReadWithRetry(ctx, s.src, s.retry, s.logger)
	if err != nil {
		return nil, err
	}

	records := s.pipeline.Parse(content, s.format)
	s.logger.Debugf("source loaded: source=%s, records=%d", s.src.Name(), len(records))
	return records, nil
}

// Snapshot returns the current view over the last loaded records.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Records:  s.view.Apply(s.records),
		Total:    len(s.records),
		LoadedAt: s.loadedAt,
	}
}

// View returns the active view.
func (s *Session) View() query.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView replaces the active view. A running Follow loop republishes its
// snapshot with the new view.
func (s *Session) SetView(v query.View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()

	select {
	case s.viewChanged <- struct{}{}:
	default:
	}
}

// Follow loads the source and publishes a snapshot after every change
// until ctx is done. Sources that can signal changes are watched; others
// are polled. The returned channel is closed when the loop exits.
//
// The loop goroutine owns the record buffer. Snapshots it sends are never
// modified afterwards.
func (s *Session) Follow(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)

	changes, stop := s.changeSignal(ctx)

	go func() {
		defer close(out)
		defer stop()

		var (
			records  []model.LogRecord
			loadedAt time.Time
			loadErr  error
		)
		view := s.View()

		reload := func() {
			fresh, err := s.read(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warningf("reload failed: source=%s, error=%v", s.src.Name(), err)
				}
				loadErr = err
				return
			}
			records, loadedAt, loadErr = fresh, s.clock.Now(), nil

			s.mu.Lock()
			s.records = records
			s.loadedAt = loadedAt
			s.mu.Unlock()
		}

		publish := func() bool {
			snap := Snapshot{
				Records:  view.Apply(records),
				Total:    len(records),
				LoadedAt: loadedAt,
				Err:      loadErr,
			}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		reload()
		if !publish() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				reload()
			case <-s.viewChanged:
				view = s.View()
			}
			if !publish() {
				return
			}
		}
	}()

	return out
}

// changeSignal returns a channel that fires when the source may have
// changed, and a function releasing its resources.
func (s *Session) changeSignal(ctx context.Context) (<-chan struct{}, func()) {
	if w, ok := s.src.(source.Watcher); ok {
		changes, err := w.Watch(ctx)
		if err == nil {
			s.logger.Debugf("watching source: source=%s", s.src.Name())
			return changes, func() {}
		}
		s.logger.Warningf("watch unavailable, polling instead: source=%s, error=%v", s.src.Name(), err)
	}

	ticks := make(chan struct{})
	if s.pollInterval <= 0 {
		return ticks, func() {}
	}

	ticker := s.clock.NewTicker(s.pollInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.Chan():
				select {
				case ticks <- struct{}{}:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	s.logger.Debugf("polling source: source=%s, interval=%s", s.src.Name(), s.pollInterval)
	return ticks, func() {
		ticker.Stop()
		close(done)
	}
}

// Export sends the current view to every exporter concurrently and stops
// them afterwards. It returns the number of records exported.
func (s *Session) Export(ctx context.Context) (int, error) {
	if len(s.exporters) == 0 {
		return 0, fmt.Errorf("no exporters enabled")
	}

	records := s.Snapshot().Records

	started := make([]export.Exporter, 0, len(s.exporters))
	for _, e := range s.exporters {
		if err := e.Start(ctx); err != nil {
			s.stop(started)
			return 0, fmt.Errorf("starting exporter %s: %w", e.Name(), err)
		}
		started = append(started, e)
		s.logger.Debugf("started exporter: %s", e.Name())
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, e := range started {
		g.Go(func() error {
			for _, rec := range records {
				if err := gCtx.Err(); err != nil {
					return err
				}
				if err := e.Export(gCtx, rec); err != nil {
					return fmt.Errorf("exporter %s: %w", e.Name(), err)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if stopErr := s.stop(started); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Infof("export finished: records=%d, exporters=%d", len(records), len(started))
	return len(records), nil
}

// stop shuts exporters down within the shutdown timeout.
func (s *Session) stop(exporters []export.Exporter) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, e := range exporters {
		if err := e.Stop(shutdownCtx); err != nil {
			s.logger.Warningf("exporter stop error: name=%s, error=%v", e.Name(), err)
			errs = append(errs, fmt.Errorf("stopping exporter %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Clear empties the source and drops the loaded records.
func (s *Session) Clear(ctx context.Context) error {
	c, ok := s.src.(source.Clearer)
	if !ok {
		return fmt.Errorf("%s: %w", s.src.Name(), ErrNotClearable)
	}
	if err := c.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = []model.LogRecord{}
	s.loadedAt = s.clock.Now()
	s.mu.Unlock()

	s.logger.Infof("source cleared: source=%s", s.src.Name())
	return nil
}
