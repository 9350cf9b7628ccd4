/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"sort"

	"github.com/friendsincode/skald_radio/internal/models"
)

const (
	// SamplerTopK bounds the weighted draw to the best-scoring candidates.
	SamplerTopK = 200

	// SamplerWeightFloor is the minimum sampling weight after shifting, so
	// every retained candidate stays drawable even with negative or equal
	// scores.
	SamplerWeightFloor = 0.001
)

type scoredTrack struct {
	Track models.Track
	Score float64
}

// sampleWeighted picks one track from the top-K scored candidates using a
// cumulative weighted draw. draw must be in [0,1); deterministic callers
// derive it from the seed and step. Returns false only for empty input.
func sampleWeighted(scored []scoredTrack, topK int, draw float64) (models.Track, bool) {
	if len(scored) == 0 {
		return models.Track{}, false
	}
	if topK <= 0 {
		topK = SamplerTopK
	}

	ranked := make([]scoredTrack, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	minScore := ranked[0].Score
	for _, candidate := range ranked[1:] {
		if candidate.Score < minScore {
			minScore = candidate.Score
		}
	}

	total := 0.0
	weights := make([]float64, len(ranked))
	for i, candidate := range ranked {
		weights[i] = candidate.Score - minScore + SamplerWeightFloor
		total += weights[i]
	}

	remaining := draw * total
	for i, candidate := range ranked {
		remaining -= weights[i]
		if remaining < 0 {
			return candidate.Track, true
		}
	}
	// Floating point drift on the final subtraction; the draw belongs to
	// the last candidate.
	return ranked[len(ranked)-1].Track, true
}
