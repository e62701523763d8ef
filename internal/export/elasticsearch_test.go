package export

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/GabrielNunesIT/logview/internal/config"
	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/testutil"
)

func TestElasticsearchExporter_Start(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.ElasticsearchExporterConfig
		factoryMock   func(*testing.T) IndexerFactory
		expectedError string
	}{
		{
			name: "Success",
			cfg: config.ElasticsearchExporterConfig{
				Enabled:   true,
				Addresses: []string{"http://localhost:9200"},
				Index:     "test-index",
			},
			factoryMock: func(t *testing.T) IndexerFactory {
				mockIndexer := testutil.NewBulkIndexer(t)
				return func(c config.ElasticsearchExporterConfig) (esutil.BulkIndexer, error) {
					return mockIndexer, nil
				}
			},
		},
		{
			name: "Factory Error",
			cfg:  config.ElasticsearchExporterConfig{Enabled: true},
			factoryMock: func(t *testing.T) IndexerFactory {
				return func(c config.ElasticsearchExporterConfig) (esutil.BulkIndexer, error) {
					return nil, errors.New("factory failure")
				}
			},
			expectedError: "factory failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewElasticsearchExporter(tt.cfg, testutil.NewTestLogger(), WithIndexerFactory(tt.factoryMock(t)))
			err := e.Start(context.Background())
			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestElasticsearchExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		rec       model.LogRecord
		wantStamp any
	}{
		{
			name:      "parseable timestamp",
			rec:       sampleRecord,
			wantStamp: "2025-01-18T10:30:45Z",
		},
		{
			name:      "unparseable timestamp",
			rec:       model.LogRecord{Timestamp: "yesterday", Level: level.Info, Message: "hi"},
			wantStamp: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockIndexer := testutil.NewBulkIndexer(t)
			mockIndexer.On("Add", mock.Anything, mock.MatchedBy(func(item esutil.BulkIndexerItem) bool {
				return item.Action == "index"
			})).Return(nil).Run(func(args mock.Arguments) {
				item := args.Get(1).(esutil.BulkIndexerItem)
				body, _ := io.ReadAll(item.Body)
				var doc map[string]any
				_ = json.Unmarshal(body, &doc)
				assert.Equal(t, tt.rec.Timestamp, doc["timestamp"])
				assert.Equal(t, string(tt.rec.Level), doc["level"])
				assert.Equal(t, tt.rec.Message, doc["message"])
				assert.Equal(t, tt.wantStamp, doc["@timestamp"])
			})

			factory := func(c config.ElasticsearchExporterConfig) (esutil.BulkIndexer, error) {
				return mockIndexer, nil
			}

			e := NewElasticsearchExporter(config.ElasticsearchExporterConfig{Index: "test-index"}, testutil.NewTestLogger(), WithIndexerFactory(factory))
			_ = e.Start(context.Background())

			assert.NoError(t, e.Export(context.Background(), tt.rec))
		})
	}
}

func TestElasticsearchExporter_ExportBeforeStart(t *testing.T) {
	e := NewElasticsearchExporter(config.ElasticsearchExporterConfig{}, testutil.NewTestLogger())
	assert.Error(t, e.Export(context.Background(), sampleRecord))
}

func TestElasticsearchExporter_Stop(t *testing.T) {
	mockIndexer := testutil.NewBulkIndexer(t)
	mockIndexer.On("Close", mock.Anything).Return(nil)
	mockIndexer.On("Stats").Return(esutil.BulkIndexerStats{NumIndexed: 3})

	factory := func(c config.ElasticsearchExporterConfig) (esutil.BulkIndexer, error) {
		return mockIndexer, nil
	}

	e := NewElasticsearchExporter(config.ElasticsearchExporterConfig{Enabled: true}, testutil.NewTestLogger(), WithIndexerFactory(factory))
	_ = e.Start(context.Background())

	assert.NoError(t, e.Stop(context.Background()))
}
