package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/stretchr/testify/mock"
)

// WriteCloser is a mock io.WriteCloser.
type WriteCloser struct {
	mock.Mock
}

// NewWriteCloser creates a WriteCloser mock whose expectations are asserted on cleanup.
func NewWriteCloser(t *testing.T) *WriteCloser {
	m := &WriteCloser{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WriteCloser) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *WriteCloser) Close() error {
	return m.Called().Error(0)
}

// BulkIndexer is a mock esutil.BulkIndexer.
type BulkIndexer struct {
	mock.Mock
}

var _ esutil.BulkIndexer = (*BulkIndexer)(nil)

// NewBulkIndexer creates a BulkIndexer mock whose expectations are asserted on cleanup.
func NewBulkIndexer(t *testing.T) *BulkIndexer {
	m := &BulkIndexer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BulkIndexer) Add(ctx context.Context, item esutil.BulkIndexerItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *BulkIndexer) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *BulkIndexer) Stats() esutil.BulkIndexerStats {
	return m.Called().Get(0).(esutil.BulkIndexerStats)
}

// FakeSource serves scripted read results in order; the last one repeats.
type FakeSource struct {
	mu      sync.Mutex
	name    string
	results []FakeRead
	next    int
	reads   int
	cleared int
}

// FakeRead is one scripted result of FakeSource.Read.
type FakeRead struct {
	Content string
	Err     error
}

// NewFakeSource creates a FakeSource returning results in order.
func NewFakeSource(name string, results ...FakeRead) *FakeSource {
	return &FakeSource{name: name, results: results}
}

func (f *FakeSource) Name() string { return f.name }

func (f *FakeSource) Read(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.reads++
	if len(f.results) == 0 {
		return "", nil
	}
	i := f.next
	if i >= len(f.results) {
		i = len(f.results) - 1
	} else {
		f.next++
	}
	return f.results[i].Content, f.results[i].Err
}

func (f *FakeSource) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	f.results = []FakeRead{{}}
	f.next = 0
	return nil
}

// SetContent replaces the scripted results with a single successful read.
func (f *FakeSource) SetContent(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = []FakeRead{{Content: content}}
	f.next = 0
}

// SetError makes every following read fail with err.
func (f *FakeSource) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = []FakeRead{{Err: err}}
	f.next = 0
}

// Reads returns how many times Read was called.
func (f *FakeSource) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Cleared returns how many times Clear was called.
func (f *FakeSource) Cleared() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}
