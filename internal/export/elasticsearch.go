package export

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/goccy/go-json"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/timeparse"
)

// IndexerFactory creates a new BulkIndexer.
type IndexerFactory func(cfg config.ElasticsearchExporterConfig) (esutil.BulkIndexer, error)

// ElasticsearchOption configures the ElasticsearchExporter.
type ElasticsearchOption func(*ElasticsearchExporter)

// WithIndexerFactory sets a custom factory for creating the BulkIndexer.
func WithIndexerFactory(f IndexerFactory) ElasticsearchOption {
	return func(e *ElasticsearchExporter) {
		e.factory = f
	}
}

// ElasticsearchExporter indexes records in Elasticsearch.
type ElasticsearchExporter struct {
	cfg     config.ElasticsearchExporterConfig
	factory IndexerFactory
	indexer esutil.BulkIndexer
	mu      sync.Mutex
	logger  logger.ILogger
}

// NewElasticsearchExporter creates a new Elasticsearch exporter.
func NewElasticsearchExporter(cfg config.ElasticsearchExporterConfig, log logger.ILogger, opts ...ElasticsearchOption) *ElasticsearchExporter {
	e := &ElasticsearchExporter{
		cfg:    cfg,
		logger: log.SubLogger("ElasticsearchExporter"),
	}

	e.factory = func(cfg config.ElasticsearchExporterConfig) (esutil.BulkIndexer, error) {
		esCfg := elasticsearch.Config{
			Addresses: cfg.Addresses,
		}

		if cfg.Username != "" {
			esCfg.Username = cfg.Username
			esCfg.Password = cfg.Password
		}

		client, err := elasticsearch.NewClient(esCfg)
		if err != nil {
			return nil, fmt.Errorf("creating elasticsearch client: %w", err)
		}

		return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Client:        client,
			Index:         cfg.Index,
			NumWorkers:    2,
			FlushBytes:    5e+6, // 5MB
			FlushInterval: cfg.FlushInterval,
		})
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Name returns the exporter identifier.
func (e *ElasticsearchExporter) Name() string {
	return "elasticsearch"
}

// Start creates the client and bulk indexer.
func (e *ElasticsearchExporter) Start(ctx context.Context) error {
	indexer, err := e.factory(e.cfg)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.indexer = indexer
	e.mu.Unlock()
	return nil
}

// Stop flushes and closes the bulk indexer.
func (e *ElasticsearchExporter) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexer == nil {
		return nil
	}
	if err := e.indexer.Close(ctx); err != nil {
		return fmt.Errorf("closing bulk indexer: %w", err)
	}

	stats := e.indexer.Stats()
	e.logger.Infof("elasticsearch export finished: index=%s, indexed=%d, failed=%d", e.cfg.Index, stats.NumIndexed, stats.NumFailed)
	e.indexer = nil
	return nil
}

// Export queues one record for bulk indexing. Timestamps that parse are
// also stored as @timestamp so the index can be queried by time.
func (e *ElasticsearchExporter) Export(ctx context.Context, rec model.LogRecord) error {
	e.mu.Lock()
	indexer := e.indexer
	e.mu.Unlock()

	if indexer == nil {
		return fmt.Errorf("elasticsearch exporter not started")
	}

	doc := rec.Fields()
	if at, ok := timeparse.Parse(rec.Timestamp, time.UTC); ok {
		doc["@timestamp"] = at.Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	return indexer.Add(ctx, esutil.BulkIndexerItem{
		Action: "index",
		Body:   bytes.NewReader(data),
		OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
			if err != nil {
				e.logger.Errorf("bulk index failed: error=%v", err)
				return
			}
			e.logger.Errorf("bulk index rejected: type=%s, reason=%s", res.Error.Type, res.Error.Reason)
		},
	})
}
