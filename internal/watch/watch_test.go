package watch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/artmatrix/internal/filter"
	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) *catalog.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := catalog.NewClient(&redis.Options{Addr: mr.Addr()}, "details")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPollForEntry(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	t.Run("returns entry when found immediately", func(t *testing.T) {
		require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R1C1-r1c1", Title: "now"}))

		entry, err := PollForEntry(ctx, client, "R1C1-r1c1", 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "now", entry.Title)
	})

	t.Run("returns entry when found after delay", func(t *testing.T) {
		go func() {
			time.Sleep(300 * time.Millisecond)
			client.SetEntry(context.Background(), &catalog.Entry{Key: "R2C2-r1c1", Title: "later"})
		}()

		start := time.Now()
		entry, err := PollForEntry(ctx, client, "R2C2-r1c1", 2*time.Second)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Equal(t, "later", entry.Title)
		assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	})

	t.Run("returns error on timeout", func(t *testing.T) {
		_, err := PollForEntry(ctx, client, "R9C9-r1c1", 300*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout waiting for entry")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := PollForEntry(cctx, client, "R9C9-r2c2", time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingGetter struct{}

func (failingGetter) GetEntry(ctx context.Context, key string) (*catalog.Entry, error) {
	return nil, errors.New("connection refused")
}

func TestPollForEntry_StoreFailure(t *testing.T) {
	_, err := PollForEntry(context.Background(), failingGetter{}, "k", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// chanSource is an EventSource fed directly by the test.
type chanSource struct {
	events chan *catalog.Event
	errors chan error
}

func newChanSource() *chanSource {
	return &chanSource{events: make(chan *catalog.Event, 10), errors: make(chan error, 10)}
}

func (s *chanSource) Events() <-chan *catalog.Event { return s.events }
func (s *chanSource) Errors() <-chan error          { return s.errors }

func TestStream_FormatsAndFilters(t *testing.T) {
	src := newChanSource()
	src.events <- &catalog.Event{Op: catalog.EventOpSet, Key: "R1C1-r1c1", Entry: &catalog.Entry{Key: "R1C1-r1c1", Title: "Sunset"}}
	src.events <- &catalog.Event{Op: catalog.EventOpSet, Key: "R2C2-r1c1", Entry: &catalog.Entry{Key: "R2C2-r1c1"}}
	src.events <- &catalog.Event{Op: catalog.EventOpDelete, Key: "R01C01-r1c2"}
	close(src.events)

	var buf bytes.Buffer
	err := Stream(context.Background(), src, &filter.Criteria{ParentKey: "R1C1"}, FormatDefault, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "✏️  Entry Set: R1C1-r1c1 (Sunset)", lines[0])
	assert.Equal(t, "🗑️  Entry Deleted: R01C01-r1c2", lines[1])
}

func TestStream_RequireImageKeepsDeletes(t *testing.T) {
	src := newChanSource()
	src.events <- &catalog.Event{Op: catalog.EventOpSet, Key: "a", Entry: &catalog.Entry{Key: "a", ImageURL: "no_URL"}}
	src.events <- &catalog.Event{Op: catalog.EventOpDelete, Key: "b"}
	close(src.events)

	var buf bytes.Buffer
	require.NoError(t, Stream(context.Background(), src, &filter.Criteria{RequireImage: true}, FormatDefault, &buf))

	assert.NotContains(t, buf.String(), "Entry Set")
	assert.Contains(t, buf.String(), "Entry Deleted: b")
}

func TestStream_JSONL(t *testing.T) {
	src := newChanSource()
	src.events <- &catalog.Event{Op: catalog.EventOpDelete, Key: "R1C1-r1c1"}
	close(src.events)

	var buf bytes.Buffer
	require.NoError(t, Stream(context.Background(), src, nil, FormatJSONL, &buf))
	assert.JSONEq(t, `{"op":"delete","key":"R1C1-r1c1"}`, strings.TrimSpace(buf.String()))
}

func TestStream_ReportsErrorsInline(t *testing.T) {
	src := newChanSource()
	src.errors <- errors.New("failed to unmarshal entry event")

	ctx, cancel := context.WithCancel(context.Background())
	var buf syncBuffer
	done := make(chan error, 1)
	go func() { done <- Stream(ctx, src, nil, FormatDefault, &buf) }()

	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "failed to unmarshal")
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestStream_UnknownFormat(t *testing.T) {
	src := newChanSource()
	src.events <- &catalog.Event{Op: catalog.EventOpDelete, Key: "k"}

	err := Stream(context.Background(), src, nil, "xml", &bytes.Buffer{})
	assert.EqualError(t, err, "unknown output format: xml")
}

func TestStream_FromRedisSubscription(t *testing.T) {
	client := setupClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := client.SubscribeEntryEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	var buf syncBuffer
	done := make(chan error, 1)
	go func() { done <- Stream(ctx, sub, nil, FormatDefault, &buf) }()

	require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R3C3-r1c1", Title: "Live"}))

	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "Entry Set: R3C3-r1c1 (Live)")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestFormatEvent_Unknown(t *testing.T) {
	assert.Equal(t, `❓ Unknown Event "touch": k`, FormatEvent(&catalog.Event{Op: "touch", Key: "k"}))
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
