/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/friendsincode/skald_radio/internal/models"
)

// fakeCatalog serves a fixed id-ordered track list. maxBatch simulates short
// reads when positive.
type fakeCatalog struct {
	tracks   []models.Track
	maxBatch int
	counts   int
	finds    int
}

func newFakeCatalog(n int) *fakeCatalog {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:     fmt.Sprintf("track-%03d", i),
			Artist: fmt.Sprintf("artist-%d", i%5),
		}
	}
	return &fakeCatalog{tracks: tracks}
}

func (f *fakeCatalog) CountTracks(_ context.Context, _ Filter) (int64, error) {
	f.counts++
	return int64(len(f.tracks)), nil
}

func (f *fakeCatalog) FindTracks(_ context.Context, _ Filter, offset, limit int) ([]models.Track, error) {
	f.finds++
	if offset >= len(f.tracks) {
		return nil, nil
	}
	end := offset + limit
	if f.maxBatch > 0 && limit > f.maxBatch {
		end = offset + f.maxBatch
	}
	if end > len(f.tracks) {
		end = len(f.tracks)
	}
	return append([]models.Track(nil), f.tracks[offset:end]...), nil
}

// fixedRandom yields constant draws.
type fixedRandom struct {
	unit float64
	n    int64
}

func (f fixedRandom) Float64() float64     { return f.unit }
func (f fixedRandom) Int63n(n int64) int64 { return f.n % n }

func TestPoolCacheLoad(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("caches within ttl", func(t *testing.T) {
		catalog := newFakeCatalog(50)
		cache := NewPoolCache(10, 0, 0, func() time.Time { return now }, fixedRandom{})

		first, err := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(first) != 10 {
			t.Fatalf("pool size = %d, want 10", len(first))
		}
		findsAfterFirst := catalog.finds

		second, err := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if catalog.finds != findsAfterFirst {
			t.Error("second load hit the catalog")
		}
		if len(second) != len(first) || second[0].ID != first[0].ID {
			t.Error("cached pool differs from the first load")
		}
	})

	t.Run("expires after ttl", func(t *testing.T) {
		catalog := newFakeCatalog(50)
		clock := now
		cache := NewPoolCache(10, 0, 15*time.Second, func() time.Time { return clock }, fixedRandom{})

		if _, err := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now); err != nil {
			t.Fatalf("Load: %v", err)
		}
		findsAfterFirst := catalog.finds

		clock = clock.Add(16 * time.Second)
		if _, err := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if catalog.finds == findsAfterFirst {
			t.Error("expired entry was served from cache")
		}
	})

	t.Run("seeded loads are deterministic", func(t *testing.T) {
		catalog := newFakeCatalog(50)
		cacheA := NewPoolCache(10, 0, 0, func() time.Time { return now }, fixedRandom{})
		cacheB := NewPoolCache(10, 0, 0, func() time.Time { return now }, fixedRandom{n: 3})

		a, err := cacheA.Load(ctx, catalog, "u1", "s1", "seed-x", Rules{}, now)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		b, err := cacheB.Load(ctx, catalog, "u1", "s1", "seed-x", Rules{}, now)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		for i := range a {
			if a[i].ID != b[i].ID {
				t.Fatalf("seeded pools diverge at %d: %s vs %s", i, a[i].ID, b[i].ID)
			}
		}
	})

	t.Run("empty catalog yields nil without error", func(t *testing.T) {
		catalog := newFakeCatalog(0)
		cache := NewPoolCache(10, 0, 0, func() time.Time { return now }, fixedRandom{})
		pool, err := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if pool != nil {
			t.Errorf("pool = %v, want nil", pool)
		}
		if cache.Len() != 0 {
			t.Error("empty result was cached")
		}
	})

	t.Run("short reads wrap to the start and dedupe", func(t *testing.T) {
		catalog := newFakeCatalog(50)
		catalog.maxBatch = 6
		cache := NewPoolCache(10, 0, 0, func() time.Time { return now }, fixedRandom{n: 20})

		pool, err := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		seen := make(map[string]struct{}, len(pool))
		for _, track := range pool {
			if _, dup := seen[track.ID]; dup {
				t.Fatalf("duplicate id %s in pool", track.ID)
			}
			seen[track.ID] = struct{}{}
		}
	})

	t.Run("evicts oldest over the entry cap", func(t *testing.T) {
		catalog := newFakeCatalog(50)
		cache := NewPoolCache(10, 3, 0, func() time.Time { return now }, fixedRandom{})

		for i := 0; i < 5; i++ {
			stationID := fmt.Sprintf("s%d", i)
			if _, err := cache.Load(ctx, catalog, "u1", stationID, "", Rules{}, now); err != nil {
				t.Fatalf("Load: %v", err)
			}
		}
		if got := cache.Len(); got != 3 {
			t.Errorf("Len = %d, want 3", got)
		}
	})

	t.Run("returned pools are copies", func(t *testing.T) {
		catalog := newFakeCatalog(50)
		cache := NewPoolCache(10, 0, 0, func() time.Time { return now }, fixedRandom{})

		first, _ := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now)
		first[0].ID = "mutated"
		second, _ := cache.Load(ctx, catalog, "u1", "s1", "", Rules{}, now)
		if second[0].ID == "mutated" {
			t.Error("cache entry shares backing array with caller")
		}
	})
}
