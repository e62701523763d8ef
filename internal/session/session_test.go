package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/logview/internal/level"
	"github.com/GabrielNunesIT/logview/internal/logs"
	"github.com/GabrielNunesIT/logview/internal/model"
	"github.com/GabrielNunesIT/logview/internal/parser"
	"github.com/GabrielNunesIT/logview/internal/query"
	"github.com/GabrielNunesIT/logview/internal/source"
	"github.com/GabrielNunesIT/logview/internal/testutil"
)

const sampleLog = `[2025-01-18 10:30:45] [INFO] service started
[2025-01-18 10:31:00] [ERROR] database connection failed
[2025-01-18 10:30:50] [WARN] slow query
`

var noRetry = source.RetryPolicy{Attempts: 0}

func newTestSession(src source.Source, opts ...Option) *Session {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC))
	pipeline := logs.New(parser.Default(parser.WithClock(clock)))
	opts = append([]Option{WithRetryPolicy(noRetry), WithClock(clock)}, opts...)
	return New(src, pipeline, testutil.NewTestLogger(), opts...)
}

func messages(records []model.LogRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

func TestSession_Load(t *testing.T) {
	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: sampleLog})
	s := newTestSession(src)

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"service started", "database connection failed", "slow query"}, messages(records))

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, []string{"database connection failed", "slow query", "service started"}, messages(snap.Records))
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestSession_LoadFailureKeepsRecords(t *testing.T) {
	src := testutil.NewFakeSource("fake",
		testutil.FakeRead{Content: sampleLog},
		testutil.FakeRead{Err: errors.New("permission denied")},
	)
	s := newTestSession(src)

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	assert.ErrorContains(t, err, "permission denied")
	assert.Equal(t, 3, s.Snapshot().Total)
}

func TestSession_LoadRetries(t *testing.T) {
	src := testutil.NewFakeSource("fake",
		testutil.FakeRead{Err: errors.New("busy")},
		testutil.FakeRead{Content: sampleLog},
	)
	s := newTestSession(src, WithRetryPolicy(source.RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond}))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 2, src.Reads())
}

func TestSession_JSONLines(t *testing.T) {
	content := `{"timestamp":"2025-01-18T10:30:45Z","level":"warning","message":"disk 90%"}
not json
{"timestamp":"2025-01-18T10:30:46Z","level":"info"}
`
	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: content})
	s := newTestSession(src, WithInputFormat(logs.FormatJSONLines))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, level.Warn, records[0].Level)
}

func TestSession_SetView(t *testing.T) {
	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: sampleLog})
	s := newTestSession(src)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	s.SetView(query.View{Level: level.Warn, Order: query.Asc})
	snap := s.Snapshot()
	assert.Equal(t, []string{"slow query", "database connection failed"}, messages(snap.Records))
	assert.Equal(t, 3, snap.Total)

	s.SetView(query.View{Query: "DATABASE", Limit: 5})
	assert.Equal(t, []string{"database connection failed"}, messages(s.Snapshot().Records))
}

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "snapshot channel closed")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for snapshot")
		return Snapshot{}
	}
}

func TestSession_FollowPolls(t *testing.T) {
	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: "[INFO] first"})
	clock := clockwork.NewFakeClock()
	pipeline := logs.New(parser.Default(parser.WithClock(clock)))
	s := New(src, pipeline, testutil.NewTestLogger(),
		WithRetryPolicy(noRetry), WithClock(clock), WithPollInterval(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := s.Follow(ctx)
	first := receive(t, snaps)
	assert.Equal(t, []string{"first"}, messages(first.Records))

	src.SetContent("[INFO] first\n[ERROR] second")
	clock.Advance(time.Second)

	second := receive(t, snaps)
	assert.Equal(t, 2, second.Total)
	assert.NoError(t, second.Err)

	// First snapshot is not affected by the reload.
	assert.Len(t, first.Records, 1)

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-snaps
		return !ok
	}, time.Second, 10*time.Millisecond)
}

// watchedSource is a FakeSource that signals changes on demand.
type watchedSource struct {
	*testutil.FakeSource
	changes chan struct{}
}

func (w *watchedSource) Watch(ctx context.Context) (<-chan struct{}, error) {
	return w.changes, nil
}

func TestSession_FollowWatches(t *testing.T) {
	src := &watchedSource{
		FakeSource: testutil.NewFakeSource("watched", testutil.FakeRead{Content: "[INFO] a"}),
		changes:    make(chan struct{}),
	}
	s := newTestSession(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := s.Follow(ctx)
	assert.Equal(t, 1, receive(t, snaps).Total)

	src.SetContent("[INFO] a\n[INFO] b\n[INFO] c")
	src.changes <- struct{}{}
	assert.Equal(t, 3, receive(t, snaps).Total)

	// Load state is shared with Snapshot.
	assert.Equal(t, 3, s.Snapshot().Total)
}

func TestSession_FollowReloadError(t *testing.T) {
	src := &watchedSource{
		FakeSource: testutil.NewFakeSource("watched", testutil.FakeRead{Content: "[INFO] a"}),
		changes:    make(chan struct{}),
	}
	s := newTestSession(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := s.Follow(ctx)
	receive(t, snaps)

	src.SetError(errors.New("gone"))
	src.changes <- struct{}{}

	snap := receive(t, snaps)
	assert.ErrorContains(t, snap.Err, "gone")
	assert.Equal(t, 1, snap.Total, "previous records are kept")
}

func TestSession_FollowViewChange(t *testing.T) {
	src := &watchedSource{
		FakeSource: testutil.NewFakeSource("watched", testutil.FakeRead{Content: sampleLog}),
		changes:    make(chan struct{}),
	}
	s := newTestSession(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := s.Follow(ctx)
	assert.Len(t, receive(t, snaps).Records, 3)

	s.SetView(query.View{Level: level.Error})
	snap := receive(t, snaps)
	assert.Equal(t, []string{"database connection failed"}, messages(snap.Records))
	assert.Equal(t, 1, src.Reads(), "view changes do not re-read the source")
}

// recordingExporter collects exported records.
type recordingExporter struct {
	name      string
	startErr  error
	exportErr error

	mu       sync.Mutex
	received []model.LogRecord
	started  bool
	stopped  bool
}

func (r *recordingExporter) Name() string { return r.name }

func (r *recordingExporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = r.startErr == nil
	return r.startErr
}

func (r *recordingExporter) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	return nil
}

func (r *recordingExporter) Export(ctx context.Context, rec model.LogRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exportErr != nil {
		return r.exportErr
	}
	r.received = append(r.received, rec)
	return nil
}

func TestSession_Export(t *testing.T) {
	a := &recordingExporter{name: "a"}
	b := &recordingExporter{name: "b"}

	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: sampleLog})
	s := newTestSession(src, WithExporters(a, b), WithView(query.View{Level: level.Warn}))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	n, err := s.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, e := range []*recordingExporter{a, b} {
		assert.True(t, e.started, e.name)
		assert.True(t, e.stopped, e.name)
		assert.Equal(t, []string{"database connection failed", "slow query"}, messages(e.received), e.name)
	}
}

func TestSession_ExportStartFailure(t *testing.T) {
	a := &recordingExporter{name: "a"}
	b := &recordingExporter{name: "b", startErr: errors.New("unreachable")}

	s := newTestSession(testutil.NewFakeSource("fake"), WithExporters(a, b))

	_, err := s.Export(context.Background())
	assert.ErrorContains(t, err, "starting exporter b")
	assert.True(t, a.stopped, "started exporters are stopped")
	assert.False(t, b.stopped)
}

func TestSession_ExportFailure(t *testing.T) {
	a := &recordingExporter{name: "a"}
	b := &recordingExporter{name: "b", exportErr: errors.New("rejected")}

	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: sampleLog})
	s := newTestSession(src, WithExporters(a, b))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	_, err = s.Export(context.Background())
	assert.ErrorContains(t, err, "exporter b: rejected")
	assert.True(t, a.stopped)
	assert.True(t, b.stopped)
}

func TestSession_ExportNoExporters(t *testing.T) {
	s := newTestSession(testutil.NewFakeSource("fake"))
	_, err := s.Export(context.Background())
	assert.Error(t, err)
}

func TestSession_Clear(t *testing.T) {
	src := testutil.NewFakeSource("fake", testutil.FakeRead{Content: sampleLog})
	s := newTestSession(src)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, 1, src.Cleared())
	assert.Equal(t, 0, s.Snapshot().Total)

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// readOnlySource cannot be cleared.
type readOnlySource struct{}

func (readOnlySource) Name() string                             { return "read-only" }
func (readOnlySource) Read(ctx context.Context) (string, error) { return "", nil }

func TestSession_ClearUnsupported(t *testing.T) {
	s := newTestSession(readOnlySource{})
	err := s.Clear(context.Background())
	assert.ErrorIs(t, err, ErrNotClearable)
}
