/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// Rules describe which catalog tracks a station may play and how aggressively
// repeats are avoided. All string sets are matched case-insensitively after
// normalization.
type Rules struct {
	IncludeGenres  []string `json:"include_genres"`
	ExcludeGenres  []string `json:"exclude_genres"`
	IncludeArtists []string `json:"include_artists"`
	ExcludeArtists []string `json:"exclude_artists"`
	IncludeAlbums  []string `json:"include_albums"`
	ExcludeAlbums  []string `json:"exclude_albums"`

	YearMin        int `json:"year_min"`
	YearMax        int `json:"year_max"`
	DurationMinSec int `json:"duration_min_sec"`
	DurationMaxSec int `json:"duration_max_sec"`

	// RecentlyAddedDays restricts the pool to tracks added within the last
	// N days. Zero disables the clause.
	RecentlyAddedDays int `json:"recently_added_days"`

	// AvoidRepeatHours is the window during which a previously played track
	// is disallowed (per user, across all of their stations).
	AvoidRepeatHours int `json:"avoid_repeat_hours"`

	// ArtistSeparation is the minimum number of distinct intervening tracks
	// before the same artist may repeat.
	ArtistSeparation int `json:"artist_separation"`
}

// ParseRules decodes a station's stored rule document.
func ParseRules(raw map[string]any) (Rules, error) {
	if raw == nil {
		return Rules{}, nil
	}
	bytes, err := json.Marshal(raw)
	if err != nil {
		return Rules{}, fmt.Errorf("encode rules: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(bytes, &rules); err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return rules, nil
}

// Normalized returns a canonical copy: string sets trimmed, inner whitespace
// collapsed, lowercased, deduplicated and sorted; negative numerics zeroed.
// Equivalent rule expressions normalize to the same value, which keeps the
// cache signature stable.
func (r Rules) Normalized() Rules {
	out := r
	out.IncludeGenres = normalizeSet(r.IncludeGenres)
	out.ExcludeGenres = normalizeSet(r.ExcludeGenres)
	out.IncludeArtists = normalizeSet(r.IncludeArtists)
	out.ExcludeArtists = normalizeSet(r.ExcludeArtists)
	out.IncludeAlbums = normalizeSet(r.IncludeAlbums)
	out.ExcludeAlbums = normalizeSet(r.ExcludeAlbums)

	if out.YearMin < 0 {
		out.YearMin = 0
	}
	if out.YearMax < 0 {
		out.YearMax = 0
	}
	if out.DurationMinSec < 0 {
		out.DurationMinSec = 0
	}
	if out.DurationMaxSec < 0 {
		out.DurationMaxSec = 0
	}
	if out.RecentlyAddedDays < 0 {
		out.RecentlyAddedDays = 0
	}
	if out.AvoidRepeatHours < 0 {
		out.AvoidRepeatHours = 0
	}
	if out.ArtistSeparation < 0 {
		out.ArtistSeparation = 0
	}
	return out
}

// Filter materializes the rule set into a declarative catalog predicate.
// Absent clauses stay zero-valued and are omitted by the catalog; an empty
// Filter matches the full catalog.
func (r Rules) Filter(now time.Time) Filter {
	norm := r.Normalized()
	f := Filter{
		Genres:         norm.IncludeGenres,
		NotGenres:      norm.ExcludeGenres,
		Artists:        norm.IncludeArtists,
		NotArtists:     norm.ExcludeArtists,
		Albums:         norm.IncludeAlbums,
		NotAlbums:      norm.ExcludeAlbums,
		YearMin:        norm.YearMin,
		YearMax:        norm.YearMax,
		DurationMinSec: norm.DurationMinSec,
		DurationMaxSec: norm.DurationMaxSec,
	}
	if norm.RecentlyAddedDays > 0 {
		f.AddedAfter = now.Add(-time.Duration(norm.RecentlyAddedDays) * 24 * time.Hour)
	}
	return f
}

// Filter is the query predicate handed to the catalog. Clauses are ANDed;
// zero values mean "no clause". String sets are normalized lowercase.
type Filter struct {
	Genres     []string
	NotGenres  []string
	Artists    []string
	NotArtists []string
	Albums     []string
	NotAlbums  []string

	YearMin        int
	YearMax        int
	DurationMinSec int
	DurationMaxSec int

	AddedAfter time.Time
}

// Signature canonically serializes the normalized rules plus an hour bucket
// of now, so day-relative clauses naturally invalidate hourly.
func (r Rules) Signature(now time.Time) string {
	norm := r.Normalized()
	var b strings.Builder
	writeSet := func(tag string, set []string) {
		b.WriteString(tag)
		b.WriteByte('=')
		b.WriteString(strings.Join(set, ","))
		b.WriteByte(';')
	}
	writeSet("ig", norm.IncludeGenres)
	writeSet("xg", norm.ExcludeGenres)
	writeSet("ia", norm.IncludeArtists)
	writeSet("xa", norm.ExcludeArtists)
	writeSet("il", norm.IncludeAlbums)
	writeSet("xl", norm.ExcludeAlbums)
	b.WriteString("y=" + strconv.Itoa(norm.YearMin) + "-" + strconv.Itoa(norm.YearMax) + ";")
	b.WriteString("d=" + strconv.Itoa(norm.DurationMinSec) + "-" + strconv.Itoa(norm.DurationMaxSec) + ";")
	b.WriteString("ra=" + strconv.Itoa(norm.RecentlyAddedDays) + ";")
	b.WriteString("h=" + strconv.FormatInt(now.UTC().Truncate(time.Hour).Unix(), 10))
	return strconv.FormatUint(xxh3.HashString(b.String()), 16)
}

// normalizeSet trims, collapses internal whitespace, lowercases, dedupes and
// sorts the given values. Empty results are dropped.
func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		norm := strings.ToLower(strings.Join(strings.Fields(value), " "))
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
