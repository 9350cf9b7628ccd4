/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"reflect"
	"testing"
	"time"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected Rules
	}{
		{"nil document", nil, Rules{}},
		{"empty document", map[string]any{}, Rules{}},
		{
			"typical document",
			map[string]any{
				"include_genres":    []any{"Rock", "Jazz"},
				"year_min":          float64(1990),
				"artist_separation": float64(5),
			},
			Rules{IncludeGenres: []string{"Rock", "Jazz"}, YearMin: 1990, ArtistSeparation: 5},
		},
		{
			"unknown keys ignored",
			map[string]any{"include_genres": []any{"rock"}, "mystery": "x"},
			Rules{IncludeGenres: []string{"rock"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := ParseRules(tt.raw)
			if err != nil {
				t.Fatalf("ParseRules: %v", err)
			}
			if !reflect.DeepEqual(rules, tt.expected) {
				t.Errorf("ParseRules = %+v, want %+v", rules, tt.expected)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	rules := Rules{
		IncludeGenres:    []string{"  Rock ", "rock", "Hard   Rock", ""},
		ExcludeArtists:   []string{"The  Band", "the band"},
		YearMin:          -5,
		DurationMaxSec:   -1,
		ArtistSeparation: -3,
	}

	norm := rules.Normalized()

	if want := []string{"hard rock", "rock"}; !reflect.DeepEqual(norm.IncludeGenres, want) {
		t.Errorf("IncludeGenres = %v, want %v", norm.IncludeGenres, want)
	}
	if want := []string{"the band"}; !reflect.DeepEqual(norm.ExcludeArtists, want) {
		t.Errorf("ExcludeArtists = %v, want %v", norm.ExcludeArtists, want)
	}
	if norm.YearMin != 0 || norm.DurationMaxSec != 0 || norm.ArtistSeparation != 0 {
		t.Errorf("negative numerics not zeroed: %+v", norm)
	}
}

func TestSignature(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 20, 0, 0, time.UTC)

	t.Run("equivalent expressions share a signature", func(t *testing.T) {
		a := Rules{IncludeGenres: []string{"Rock", "jazz"}}
		b := Rules{IncludeGenres: []string{"JAZZ", " rock "}}
		if a.Signature(now) != b.Signature(now) {
			t.Error("expected equal signatures for equivalent rules")
		}
	})

	t.Run("different rules differ", func(t *testing.T) {
		a := Rules{IncludeGenres: []string{"rock"}}
		b := Rules{IncludeGenres: []string{"jazz"}}
		if a.Signature(now) == b.Signature(now) {
			t.Error("expected different signatures")
		}
	})

	t.Run("stable within the hour bucket", func(t *testing.T) {
		rules := Rules{RecentlyAddedDays: 30}
		later := now.Add(20 * time.Minute)
		if rules.Signature(now) != rules.Signature(later) {
			t.Error("signature changed within the same hour")
		}
	})

	t.Run("rotates across hour buckets", func(t *testing.T) {
		rules := Rules{RecentlyAddedDays: 30}
		later := now.Add(time.Hour)
		if rules.Signature(now) == rules.Signature(later) {
			t.Error("signature did not rotate with the hour")
		}
	})
}

func TestFilter(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("recently added clause", func(t *testing.T) {
		rules := Rules{RecentlyAddedDays: 10}
		f := rules.Filter(now)
		want := now.Add(-10 * 24 * time.Hour)
		if !f.AddedAfter.Equal(want) {
			t.Errorf("AddedAfter = %v, want %v", f.AddedAfter, want)
		}
	})

	t.Run("zero days leaves clause absent", func(t *testing.T) {
		f := Rules{}.Filter(now)
		if !f.AddedAfter.IsZero() {
			t.Errorf("expected zero AddedAfter, got %v", f.AddedAfter)
		}
	})

	t.Run("sets are normalized", func(t *testing.T) {
		rules := Rules{IncludeGenres: []string{" Rock "}}
		f := rules.Filter(now)
		if want := []string{"rock"}; !reflect.DeepEqual(f.Genres, want) {
			t.Errorf("Genres = %v, want %v", f.Genres, want)
		}
	})
}
