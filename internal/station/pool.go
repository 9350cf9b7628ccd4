/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/friendsincode/skald_radio/internal/models"
	"github.com/friendsincode/skald_radio/internal/telemetry"
)

// Default tuning for the candidate pool cache.
const (
	// DefaultPoolSize bounds how many matching rows are sampled per pool.
	DefaultPoolSize = 900

	// DefaultPoolTTL keeps pools hot across a burst of picks while still
	// rotating the sampled window for long-run variety.
	DefaultPoolTTL = 15 * time.Second

	// DefaultPoolMaxEntries caps live cache entries; oldest-inserted are
	// evicted once the cap is exceeded.
	DefaultPoolMaxEntries = 200
)

// Catalog is the track catalog collaborator. FindTracks must return rows in
// a stable ascending-id order so offset sampling is reproducible.
type Catalog interface {
	CountTracks(ctx context.Context, filter Filter) (int64, error)
	FindTracks(ctx context.Context, filter Filter, offset, limit int) ([]models.Track, error)
}

type poolKey struct {
	userID    string
	stationID string
	signature string
	seed      string
}

type poolEntry struct {
	tracks     []models.Track
	insertedAt time.Time
	expiresAt  time.Time
}

// PoolCache is the process-local candidate pool cache. It is a sampling aid,
// not a correctness mechanism: multi-instance deployments accept divergent
// pools per instance. Safe for concurrent use.
type PoolCache struct {
	mu      sync.Mutex
	entries map[poolKey]*poolEntry
	order   []poolKey

	ttl        time.Duration
	maxEntries int
	poolSize   int
	clock      func() time.Time
	random     RandomSource
}

// NewPoolCache creates a pool cache. Zero values select the defaults; clock
// and random are injectable for tests.
func NewPoolCache(poolSize, maxEntries int, ttl time.Duration, clock func() time.Time, random RandomSource) *PoolCache {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	if maxEntries <= 0 {
		maxEntries = DefaultPoolMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultPoolTTL
	}
	if clock == nil {
		clock = time.Now
	}
	if random == nil {
		random = systemRandom{}
	}
	return &PoolCache{
		entries:    make(map[poolKey]*poolEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		poolSize:   poolSize,
		clock:      clock,
		random:     random,
	}
}

// Load returns the cached pool for (user, station, rules, seed), sampling a
// fresh window from the catalog on miss. An empty result with nil error
// means the filter matches zero rows; catalog errors propagate unmasked.
func (p *PoolCache) Load(ctx context.Context, catalog Catalog, userID, stationID, seed string, rules Rules, now time.Time) ([]models.Track, error) {
	key := poolKey{
		userID:    userID,
		stationID: stationID,
		signature: rules.Signature(now),
		seed:      seed,
	}

	p.mu.Lock()
	p.purgeExpiredLocked()
	if entry, ok := p.entries[key]; ok {
		tracks := append([]models.Track(nil), entry.tracks...)
		p.mu.Unlock()
		telemetry.PoolCacheHits.Inc()
		return tracks, nil
	}
	p.mu.Unlock()
	telemetry.PoolCacheMisses.Inc()

	tracks, err := p.sample(ctx, catalog, stationID, seed, rules, now)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}

	p.mu.Lock()
	p.purgeExpiredLocked()
	if _, ok := p.entries[key]; !ok {
		p.entries[key] = &poolEntry{
			tracks:     tracks,
			insertedAt: p.clock(),
			expiresAt:  p.clock().Add(p.ttl),
		}
		p.order = append(p.order, key)
		p.evictOverCapLocked()
	}
	p.mu.Unlock()

	return append([]models.Track(nil), tracks...), nil
}

// sample fetches a bounded quasi-random window of matching rows. The offset
// into the stable id ordering is derived from the seed when one is supplied,
// otherwise drawn from the random source. A short read at the end of the
// ordering wraps to the start and dedupes by id.
func (p *PoolCache) sample(ctx context.Context, catalog Catalog, stationID, seed string, rules Rules, now time.Time) ([]models.Track, error) {
	filter := rules.Filter(now)

	total, err := catalog.CountTracks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	size := int64(p.poolSize)
	if total < size {
		size = total
	}

	maxOffset := total - size
	var offset int64
	if seed != "" {
		offset = seededInt(maxOffset+1, seed, stationID, strconv.FormatInt(total, 10), "pool-offset")
	} else if maxOffset > 0 {
		offset = p.random.Int63n(maxOffset + 1)
	}

	tracks, err := catalog.FindTracks(ctx, filter, int(offset), int(size))
	if err != nil {
		return nil, err
	}

	if int64(len(tracks)) < size {
		rest, err := catalog.FindTracks(ctx, filter, 0, int(size)-len(tracks))
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(tracks))
		for _, track := range tracks {
			seen[track.ID] = struct{}{}
		}
		for _, track := range rest {
			if _, ok := seen[track.ID]; ok {
				continue
			}
			seen[track.ID] = struct{}{}
			tracks = append(tracks, track)
		}
	}

	return tracks, nil
}

func (p *PoolCache) purgeExpiredLocked() {
	now := p.clock()
	kept := p.order[:0]
	for _, key := range p.order {
		entry, ok := p.entries[key]
		if !ok {
			continue
		}
		if !entry.expiresAt.After(now) {
			delete(p.entries, key)
			continue
		}
		kept = append(kept, key)
	}
	p.order = kept
}

func (p *PoolCache) evictOverCapLocked() {
	for len(p.order) > p.maxEntries {
		oldest := p.order[0]
		p.order = p.order[1:]
		delete(p.entries, oldest)
	}
}

// Len reports the number of live entries (expired entries included until the
// next access purges them).
func (p *PoolCache) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
