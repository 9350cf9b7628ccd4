/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/friendsincode/skald_radio/internal/models"
)

func TestSnapshotFromModel(t *testing.T) {
	t.Run("nil state is a fresh station", func(t *testing.T) {
		snap := SnapshotFromModel(nil)
		if len(snap.RecentTrackIDs) != 0 || snap.LastTrackID != "" || !snap.LastPlayedAt.IsZero() {
			t.Errorf("expected empty snapshot, got %+v", snap)
		}
	})

	t.Run("copies are independent of the model", func(t *testing.T) {
		model := &models.StationState{RecentTrackIDs: []string{"a", "b"}}
		snap := SnapshotFromModel(model)
		model.RecentTrackIDs[0] = "mutated"
		if snap.RecentTrackIDs[0] != "a" {
			t.Error("snapshot shares backing array with model")
		}
	})
}

func TestAdvance(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("appends and sets last-played", func(t *testing.T) {
		snap := StateSnapshot{}.Advance("t1", "Artist One", now)
		if want := []string{"t1"}; !reflect.DeepEqual(snap.RecentTrackIDs, want) {
			t.Errorf("RecentTrackIDs = %v, want %v", snap.RecentTrackIDs, want)
		}
		if snap.LastTrackID != "t1" || !snap.LastPlayedAt.Equal(now) {
			t.Errorf("last-played not set: %+v", snap)
		}
	})

	t.Run("does not mutate the receiver", func(t *testing.T) {
		original := StateSnapshot{RecentTrackIDs: []string{"t0"}}
		_ = original.Advance("t1", "a", now)
		if len(original.RecentTrackIDs) != 1 {
			t.Error("Advance mutated its receiver")
		}
	})

	t.Run("buffers cap at 200 evicting oldest", func(t *testing.T) {
		snap := StateSnapshot{}
		for i := 0; i < 250; i++ {
			snap = snap.Advance(fmt.Sprintf("t%d", i), fmt.Sprintf("a%d", i), now)
		}
		if len(snap.RecentTrackIDs) != StateBufferCap {
			t.Fatalf("len = %d, want %d", len(snap.RecentTrackIDs), StateBufferCap)
		}
		if snap.RecentTrackIDs[0] != "t50" {
			t.Errorf("oldest retained = %s, want t50", snap.RecentTrackIDs[0])
		}
		if snap.RecentTrackIDs[len(snap.RecentTrackIDs)-1] != "t249" {
			t.Errorf("newest = %s, want t249", snap.RecentTrackIDs[len(snap.RecentTrackIDs)-1])
		}
	})
}

func TestRecentArtistWindow(t *testing.T) {
	snap := StateSnapshot{RecentArtistNames: []string{"Alpha", "Beta ", "GAMMA"}}

	tests := []struct {
		name     string
		n        int
		expected []string
	}{
		{"zero window", 0, nil},
		{"negative window", -1, nil},
		{"partial window takes newest", 2, []string{"beta", "gamma"}},
		{"window larger than history", 10, []string{"alpha", "beta", "gamma"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snap.RecentArtistWindow(tt.n)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("RecentArtistWindow(%d) = %v, want %v", tt.n, got, tt.expected)
			}
		})
	}
}

func TestModelRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	snap := StateSnapshot{
		RecentTrackIDs:    []string{"t1", "t2"},
		RecentArtistNames: []string{"a1", "a2"},
		LastTrackID:       "t2",
		LastPlayedAt:      now.Add(-time.Minute),
	}

	model := snap.Model("station-1", now)
	if model.StationID != "station-1" || !model.UpdatedAt.Equal(now) {
		t.Errorf("model identity fields wrong: %+v", model)
	}

	back := SnapshotFromModel(model)
	if !reflect.DeepEqual(back, snap) {
		t.Errorf("round trip = %+v, want %+v", back, snap)
	}
}
