package cache_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blogyard/cache"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// counter renders "render N" where N counts the calls.
func counter() (cache.RenderFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(context.Context) ([]byte, error) {
		n := calls.Add(1)
		return []byte(fmt.Sprintf("render %d", n)), nil
	}, &calls
}

func requireStaleUntilTTL(t *testing.T, store cache.Store, ttl time.Duration) {
	t.Helper()

	timeline := cache.NewTimeline(store, discard)
	render, calls := counter()

	first, err := timeline.Fetch(t.Context(), render)
	require.NoError(t, err)
	require.Equal(t, "render 1", string(first))

	// New content exists, but the cached copy is served until it expires.
	second, err := timeline.Fetch(t.Context(), render)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, calls.Load())

	require.Eventually(t, func() bool {
		body, err := timeline.Fetch(t.Context(), render)
		return err == nil && string(body) != "render 1"
	}, ttl*20, ttl/5)

	// Clearing makes the next fetch render immediately.
	before := calls.Load()
	require.NoError(t, timeline.Clear(t.Context()))
	_, err = timeline.Fetch(t.Context(), render)
	require.NoError(t, err)
	require.Equal(t, before+1, calls.Load())
}

func TestTimeline_Memory(t *testing.T) {
	t.Parallel()

	ttl := 50 * time.Millisecond
	requireStaleUntilTTL(t, cache.NewMemoryStore(1, ttl), ttl)
}

func TestTimeline_RenderError(t *testing.T) {
	t.Parallel()

	timeline := cache.NewTimeline(cache.NewMemoryStore(1, time.Minute), discard)
	boom := errors.New("boom")

	_, err := timeline.Fetch(t.Context(), func(context.Context) ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	render, calls := counter()
	body, err := timeline.Fetch(t.Context(), render)
	require.NoError(t, err)
	require.Equal(t, "render 1", string(body))
	require.EqualValues(t, 1, calls.Load())
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("unavailable")
}
func (brokenStore) Put(context.Context, string, []byte) error { return errors.New("unavailable") }
func (brokenStore) Delete(context.Context, string) error      { return nil }

func TestTimeline_BrokenStoreStillRenders(t *testing.T) {
	t.Parallel()

	timeline := cache.NewTimeline(brokenStore{}, discard)
	render, calls := counter()

	for range 3 {
		_, err := timeline.Fetch(t.Context(), render)
		require.NoError(t, err)
	}
	require.EqualValues(t, 3, calls.Load())
}

func TestTimeline_NATS(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL is not set")
	}

	ttl := time.Second
	store, err := cache.NewNATSStore(t.Context(), url, "blogyard-test-"+fmt.Sprint(time.Now().UnixNano()), ttl)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	requireStaleUntilTTL(t, store, ttl)
}
