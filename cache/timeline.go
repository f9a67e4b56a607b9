// Package cache keeps the rendered home timeline for a fixed time to live.
// Writes never invalidate it; readers see a stale timeline until the entry
// expires or an administrator clears it.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultTTL  = 20 * time.Second
	TimelineKey = "timeline.index"
)

var (
	timelineHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogyard_timeline_cache_hits_total",
		Help: "Home timeline requests served from the cache.",
	})
	timelineMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogyard_timeline_cache_misses_total",
		Help: "Home timeline requests that had to be rendered.",
	})
)

// Store holds opaque byte blobs that expire on their own after the TTL the
// store was created with.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type RenderFunc func(ctx context.Context) ([]byte, error)

type Timeline struct {
	Logger *slog.Logger
	Store  Store
}

func NewTimeline(s Store, logger *slog.Logger) *Timeline {
	return &Timeline{
		Logger: logger.With("component", "cache.Timeline"),
		Store:  s,
	}
}

// Fetch returns the cached timeline, or renders, stores and returns a fresh
// one. Store failures degrade to rendering on every call.
func (t *Timeline) Fetch(ctx context.Context, render RenderFunc) ([]byte, error) {
	body, ok, err := t.Store.Get(ctx, TimelineKey)
	if err != nil {
		t.Logger.Warn("Timeline cache read failed", "error", err)
	}
	if ok {
		timelineHits.Inc()
		return body, nil
	}

	timelineMisses.Inc()
	body, err = render(ctx)
	if err != nil {
		return nil, err
	}

	if err := t.Store.Put(ctx, TimelineKey, body); err != nil {
		t.Logger.Warn("Timeline cache write failed", "error", err)
	}
	return body, nil
}

// Clear drops the cached timeline so the next Fetch renders it again.
func (t *Timeline) Clear(ctx context.Context) error {
	t.Logger.Info("Clearing timeline cache")
	return t.Store.Delete(ctx, TimelineKey)
}
