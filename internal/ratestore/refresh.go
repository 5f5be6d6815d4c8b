package ratestore

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"relocalc/internal/metrics"
)

// Source fetches and decodes rate sheets. Fetch returns the built snapshot
// together with the raw payload it was built from, so the payload can be
// cached and replayed through Decode after a restart.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, []byte, error)
	Decode(raw []byte) (*Snapshot, error)
}

// lastGoodKey holds the most recent successfully fetched raw payload.
const lastGoodKey = "relocalc:ratesheet:last_good"

// Refresher keeps the store current on a fixed interval. A failed refresh
// leaves the previous snapshot in force; it is logged and retried on the next
// tick, never surfaced to request handlers.
type Refresher struct {
	store    *Store
	source   Source
	cache    *redis.Client // optional
	interval time.Duration
	metrics  *metrics.Metrics
}

func NewRefresher(store *Store, source Source, cache *redis.Client, interval time.Duration, m *metrics.Metrics) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Refresher{store: store, source: source, cache: cache, interval: interval, metrics: m}
}

// Run performs an immediate refresh, then ticks until the context ends. When
// the very first fetch fails it falls back to the cached last-good payload so
// a restart during a source outage can still serve quotes.
func (r *Refresher) Run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		log.Printf("initial rate refresh failed: %v", err)
		r.restoreLastGood(ctx)
	}
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := r.Refresh(ctx); err != nil {
				log.Printf("rate refresh failed, keeping previous snapshot: %v", err)
			}
		}
	}
}

// Refresh fetches, publishes and caches one snapshot, all-or-nothing.
func (r *Refresher) Refresh(ctx context.Context) error {
	snap, raw, err := r.source.Fetch(ctx)
	r.metrics.RefreshRun(err)
	if err != nil {
		return err
	}
	r.store.Publish(snap)
	if r.cache != nil {
		if err := r.cache.Set(ctx, lastGoodKey, raw, 0).Err(); err != nil {
			log.Printf("caching rate payload failed: %v", err)
		}
	}
	return nil
}

func (r *Refresher) restoreLastGood(ctx context.Context) {
	if r.cache == nil || r.store.Current() != nil {
		return
	}
	raw, err := r.cache.Get(ctx, lastGoodKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("reading cached rate payload failed: %v", err)
		}
		return
	}
	snap, err := r.source.Decode(raw)
	if err != nil {
		log.Printf("decoding cached rate payload failed: %v", err)
		return
	}
	r.store.Publish(snap)
	log.Printf("serving rates from cached payload fetched at %s", snap.FetchedAt().Format(time.RFC3339))
}
