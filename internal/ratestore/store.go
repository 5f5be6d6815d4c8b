// Package ratestore owns the in-memory rate table: an immutable snapshot per
// refresh, published by atomic pointer swap so request handlers always see one
// consistent table for a whole computation.
package ratestore

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"relocalc/internal/pricing"
)

type routeKey struct {
	from string
	to   string
}

func keyFor(from, to string) routeKey {
	return routeKey{from: strings.TrimSpace(from), to: strings.TrimSpace(to)}
}

// Snapshot is one refresh's worth of rate data. Two parallel card sets exist:
// one tuned for weekend/month-end pickups, one for weekday pickups. Never
// mutated after construction.
type Snapshot struct {
	weekday   map[routeKey]pricing.RouteCard
	weekend   map[routeKey]pricing.RouteCard
	slabs     pricing.ChargeSlabs
	fetchedAt time.Time
}

// NewSnapshot validates and indexes the fetched cards.
func NewSnapshot(weekday, weekend []pricing.RouteCard, slabs pricing.ChargeSlabs, fetchedAt time.Time) (*Snapshot, error) {
	if err := slabs.Validate(); err != nil {
		return nil, err
	}
	if len(weekday) == 0 || len(weekend) == 0 {
		return nil, fmt.Errorf("snapshot: empty rate card set (weekday=%d weekend=%d)", len(weekday), len(weekend))
	}
	index := func(cards []pricing.RouteCard) map[routeKey]pricing.RouteCard {
		m := make(map[routeKey]pricing.RouteCard, len(cards))
		for _, c := range cards {
			m[keyFor(c.From, c.To)] = c
		}
		return m
	}
	return &Snapshot{
		weekday:   index(weekday),
		weekend:   index(weekend),
		slabs:     slabs,
		fetchedAt: fetchedAt,
	}, nil
}

// Slabs returns the global charge tables.
func (s *Snapshot) Slabs() pricing.ChargeSlabs { return s.slabs }

// FetchedAt reports when this snapshot was fetched from the source.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }

// CardFor picks the route card for a request. The partition is chosen once
// from the pickup date's own regime: weekend/month-end pickups read the
// weekend card set, everything else the weekday set.
func (s *Snapshot) CardFor(from, to string, pickup time.Time) (pricing.RouteCard, error) {
	cards := s.weekday
	if pricing.IsWeekend(pickup) || pricing.IsMonthEnd(pickup) {
		cards = s.weekend
	}
	card, ok := cards[keyFor(from, to)]
	if !ok {
		return pricing.RouteCard{}, fmt.Errorf("%w: %s to %s", pricing.ErrRouteNotFound, from, to)
	}
	return card, nil
}

// Locations lists the distinct origins and destinations of one partition,
// sorted for stable output.
func (s *Snapshot) Locations(weekend bool) (from, to []string) {
	cards := s.weekday
	if weekend {
		cards = s.weekend
	}
	seenFrom := make(map[string]struct{}, len(cards))
	seenTo := make(map[string]struct{}, len(cards))
	for k := range cards {
		if _, ok := seenFrom[k.from]; !ok {
			seenFrom[k.from] = struct{}{}
			from = append(from, k.from)
		}
		if _, ok := seenTo[k.to]; !ok {
			seenTo[k.to] = struct{}{}
			to = append(to, k.to)
		}
	}
	sort.Strings(from)
	sort.Strings(to)
	return from, to
}

// Store publishes the current snapshot. Readers borrow whatever snapshot is
// current when their request starts; a refresh swaps the pointer and never
// touches a published snapshot.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

func NewStore() *Store { return &Store{} }

// Current returns the latest snapshot, or nil before the first successful load.
func (s *Store) Current() *Snapshot { return s.snap.Load() }

// Publish swaps in a new snapshot.
func (s *Store) Publish(snap *Snapshot) { s.snap.Store(snap) }
