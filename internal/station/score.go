/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"math"
	"time"

	"github.com/friendsincode/skald_radio/internal/models"
)

// Tuning values inherited from production use. They are named rather than
// re-derived; overriding happens through EngineOptions.
const (
	// RecencyHalfLifeHours controls how fast the long-unplayed boost
	// saturates: boost = 1 - e^(-hoursSinceLastPlay/36).
	RecencyHalfLifeHours = 36.0

	// LikeBoost is added for liked tracks.
	LikeBoost = 0.5

	// DislikePenalty is subtracted for disliked tracks.
	DislikePenalty = 1.0

	// ArtistRepeatPenalty is subtracted when the track's artist is inside
	// the recent-artist window. It is a soft penalty: it still applies when
	// the hard artist exclusion was relaxed, so repetition stays
	// discouraged rather than forbidden.
	ArtistRepeatPenalty = 0.65
)

// recencyBoost rewards tracks that have not been heard for a long time.
// Never-played tracks get the maximal boost of 1.
func recencyBoost(lastPlayed, now time.Time) float64 {
	if lastPlayed.IsZero() {
		return 1
	}
	hours := now.Sub(lastPlayed).Hours()
	if hours < 0 {
		hours = 0
	}
	return 1 - math.Exp(-hours/RecencyHalfLifeHours)
}

// scoreTrack combines the bounded additive factors. No single factor can
// dominate arbitrarily, which keeps the ordering explainable.
func scoreTrack(base float64, lastPlayed, now time.Time, feedback models.FeedbackFlags, artistRepeated bool) float64 {
	score := base + recencyBoost(lastPlayed, now)
	if feedback.Liked {
		score += LikeBoost
	}
	if feedback.Disliked {
		score -= DislikePenalty
	}
	if artistRepeated {
		score -= ArtistRepeatPenalty
	}
	return score
}
