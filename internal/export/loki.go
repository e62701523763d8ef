package export

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/timeparse"
)

// LokiExporter pushes records to Grafana Loki in batches.
type LokiExporter struct {
	cfg      config.LokiExporterConfig
	client   HTTPDoer
	clock    clockwork.Clock
	batch    []lokiStream
	mu       sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
	logger   logger.ILogger
}

// lokiPushRequest is the Loki push API request format.
type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

// lokiStream is one labeled stream of [timestamp, line] pairs.
type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// LokiOption configures a LokiExporter.
type LokiOption func(*LokiExporter)

// WithLokiHTTPClient sets a custom HTTP client.
func WithLokiHTTPClient(client HTTPDoer) LokiOption {
	return func(l *LokiExporter) {
		l.client = client
	}
}

// WithLokiClock sets the clock driving periodic flushes and stamping
// records whose timestamp does not parse.
func WithLokiClock(c clockwork.Clock) LokiOption {
	return func(l *LokiExporter) {
		l.clock = c
	}
}

// NewLokiExporter creates a new Loki exporter.
func NewLokiExporter(cfg config.LokiExporterConfig, log logger.ILogger, opts ...LokiOption) *LokiExporter {
	l := &LokiExporter{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		clock:  clockwork.NewRealClock(),
		done:   make(chan struct{}),
		logger: log.SubLogger("LokiExporter"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the exporter identifier.
func (l *LokiExporter) Name() string {
	return "loki"
}

// Start begins the background flush goroutine.
func (l *LokiExporter) Start(ctx context.Context) error {
	if l.cfg.FlushInterval > 0 {
		go l.flushLoop(ctx)
	}
	return nil
}

// Stop flushes remaining records and shuts down.
func (l *LokiExporter) Stop(ctx context.Context) error {
	l.stopOnce.Do(func() { close(l.done) })
	return l.flush(ctx)
}

func (l *LokiExporter) flushLoop(ctx context.Context) {
	ticker := l.clock.NewTicker(l.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-ticker.Chan():
			if err := l.flush(ctx); err != nil {
				l.logger.Warningf("periodic flush failed: error=%v", err)
			}
		}
	}
}

// Export adds a record to the batch, flushing when the batch is full.
// Each level gets its own stream.
func (l *LokiExporter) Export(ctx context.Context, rec model.LogRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	labels := make(map[string]string, len(l.cfg.Labels)+2)
	maps.Copy(labels, l.cfg.Labels)
	labels["level"] = strings.ToLower(string(rec.Level))
	if rec.Module != "" {
		labels["module"] = rec.Module
	}

	at, ok := timeparse.Parse(rec.Timestamp, time.UTC)
	if !ok {
		at = l.clock.Now()
	}
	ts := strconv.FormatInt(at.UnixNano(), 10)

	found := false
	for i := range l.batch {
		if maps.Equal(l.batch[i].Stream, labels) {
			l.batch[i].Values = append(l.batch[i].Values, []string{ts, rec.Message})
			found = true
			break
		}
	}
	if !found {
		l.batch = append(l.batch, lokiStream{
			Stream: labels,
			Values: [][]string{{ts, rec.Message}},
		})
	}

	if l.cfg.BatchSize > 0 && l.batchSize() >= l.cfg.BatchSize {
		return l.flushLocked(ctx)
	}
	return nil
}

// batchSize returns the total number of lines in the batch.
func (l *LokiExporter) batchSize() int {
	count := 0
	for _, s := range l.batch {
		count += len(s.Values)
	}
	return count
}

func (l *LokiExporter) flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked(ctx)
}

// flushLocked sends the batch. The caller must hold l.mu.
func (l *LokiExporter) flushLocked(ctx context.Context) error {
	if len(l.batch) == 0 {
		return nil
	}

	data, err := json.Marshal(lokiPushRequest{Streams: l.batch})
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(l.cfg.URL, "/") + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if l.cfg.TenantID != "" {
		req.Header.Set("X-Scope-OrgID", l.cfg.TenantID)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushing to loki: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("loki push failed with status: %d", resp.StatusCode)
	}

	l.logger.Debugf("pushed batch: streams=%d, lines=%d", len(l.batch), l.batchSize())
	l.batch = l.batch[:0]
	return nil
}
