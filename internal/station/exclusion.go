/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"strings"

	"github.com/friendsincode/skald_radio/internal/models"
)

// normalizeName folds an artist name for comparison.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ExclusionResult carries the surviving candidates and which constraints had
// to be relaxed to keep the station alive.
type ExclusionResult struct {
	Candidates             []models.Track
	RelaxedArtistExclusion bool
	RelaxedTrackExclusion  bool
}

// applyExclusions filters candidates against disallowed track ids and the
// recent-artist window, relaxing in stages so a non-empty input never yields
// an empty result. Relaxing artist separation is preferred over replaying a
// just-played track; replaying is preferred over silence.
func applyExclusions(candidates []models.Track, disallowed map[string]struct{}, recentArtists []string) ExclusionResult {
	artistSet := make(map[string]struct{}, len(recentArtists))
	for _, name := range recentArtists {
		artistSet[normalizeName(name)] = struct{}{}
	}

	blockedArtist := func(track models.Track) bool {
		if len(artistSet) == 0 {
			return false
		}
		_, ok := artistSet[normalizeName(track.Artist)]
		return ok
	}
	blockedTrack := func(track models.Track) bool {
		_, ok := disallowed[track.ID]
		return ok
	}

	filter := func(dropTracks, dropArtists bool) []models.Track {
		out := make([]models.Track, 0, len(candidates))
		for _, track := range candidates {
			if dropTracks && blockedTrack(track) {
				continue
			}
			if dropArtists && blockedArtist(track) {
				continue
			}
			out = append(out, track)
		}
		return out
	}

	if survivors := filter(true, true); len(survivors) > 0 {
		return ExclusionResult{Candidates: survivors}
	}
	if survivors := filter(true, false); len(survivors) > 0 {
		return ExclusionResult{Candidates: survivors, RelaxedArtistExclusion: true}
	}
	if survivors := filter(false, true); len(survivors) > 0 {
		return ExclusionResult{Candidates: survivors, RelaxedTrackExclusion: true}
	}
	return ExclusionResult{
		Candidates:             candidates,
		RelaxedArtistExclusion: true,
		RelaxedTrackExclusion:  true,
	}
}
