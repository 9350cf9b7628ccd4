/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"fmt"
	"testing"

	"github.com/friendsincode/skald_radio/internal/models"
)

func TestSampleWeighted(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if _, ok := sampleWeighted(nil, 10, 0.5); ok {
			t.Error("expected ok=false for empty input")
		}
	})

	t.Run("single candidate always wins", func(t *testing.T) {
		scored := []scoredTrack{{Track: models.Track{ID: "only"}, Score: -3}}
		for _, draw := range []float64{0, 0.5, 0.999999} {
			got, ok := sampleWeighted(scored, 10, draw)
			if !ok || got.ID != "only" {
				t.Errorf("draw %v: got %v ok=%v", draw, got.ID, ok)
			}
		}
	})

	t.Run("low draw selects the best score", func(t *testing.T) {
		scored := []scoredTrack{
			{Track: models.Track{ID: "low"}, Score: 0.1},
			{Track: models.Track{ID: "high"}, Score: 5.0},
		}
		got, ok := sampleWeighted(scored, 10, 0.0)
		if !ok || got.ID != "high" {
			t.Errorf("got %v ok=%v, want high", got.ID, ok)
		}
	})

	t.Run("high draw can select the worst score", func(t *testing.T) {
		scored := []scoredTrack{
			{Track: models.Track{ID: "low"}, Score: 0.1},
			{Track: models.Track{ID: "high"}, Score: 5.0},
		}
		got, ok := sampleWeighted(scored, 10, 0.9999999)
		if !ok || got.ID != "low" {
			t.Errorf("got %v ok=%v, want low", got.ID, ok)
		}
	})

	t.Run("topK truncation drops the tail", func(t *testing.T) {
		scored := make([]scoredTrack, 20)
		for i := range scored {
			scored[i] = scoredTrack{
				Track: models.Track{ID: fmt.Sprintf("t%d", i)},
				Score: float64(i),
			}
		}
		// Only the 5 best (t15..t19) are drawable.
		retained := map[string]struct{}{}
		for draw := 0.0; draw < 1.0; draw += 0.01 {
			got, ok := sampleWeighted(scored, 5, draw)
			if !ok {
				t.Fatal("unexpected ok=false")
			}
			retained[got.ID] = struct{}{}
		}
		for id := range retained {
			var n int
			fmt.Sscanf(id, "t%d", &n)
			if n < 15 {
				t.Errorf("tail candidate %s was drawable", id)
			}
		}
	})

	t.Run("equal scores stay drawable via the floor", func(t *testing.T) {
		scored := []scoredTrack{
			{Track: models.Track{ID: "a"}, Score: 1},
			{Track: models.Track{ID: "b"}, Score: 1},
		}
		first, _ := sampleWeighted(scored, 10, 0.25)
		second, _ := sampleWeighted(scored, 10, 0.75)
		if first.ID == second.ID {
			t.Error("expected different candidates for opposite halves of the draw space")
		}
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		scored := []scoredTrack{
			{Track: models.Track{ID: "a"}, Score: 1},
			{Track: models.Track{ID: "b"}, Score: 9},
		}
		_, _ = sampleWeighted(scored, 10, 0.5)
		if scored[0].Track.ID != "a" || scored[1].Track.ID != "b" {
			t.Error("sampleWeighted mutated its input")
		}
	})
}
