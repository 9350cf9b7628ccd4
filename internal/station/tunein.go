/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

// TuneInConfig shapes the "joining a broadcast already in progress" start
// offset.
type TuneInConfig struct {
	Enabled     bool
	MaxFraction float64
	MinHeadSec  int
	MinTailSec  int
	Probability float64
}

// DefaultTuneInConfig matches the production defaults.
func DefaultTuneInConfig() TuneInConfig {
	return TuneInConfig{
		Enabled:     true,
		MaxFraction: 0.5,
		MinHeadSec:  15,
		MinTailSec:  45,
		Probability: 0.75,
	}
}

// ComputeTuneInOffset returns a mid-track start offset in seconds, or 0 when
// the track is too short, tune-in is disabled, or the probability gate does
// not clear. gateDraw and posDraw are independent values in [0,1). The
// listener is always guaranteed at least MinTailSec of remaining audio and
// an offset of at least MinHeadSec.
func ComputeTuneInOffset(durationSec int, cfg TuneInConfig, gateDraw, posDraw float64) int {
	if !cfg.Enabled || durationSec <= 0 {
		return 0
	}

	maxOffset := int(float64(durationSec) * cfg.MaxFraction)
	if tail := durationSec - cfg.MinTailSec; tail < maxOffset {
		maxOffset = tail
	}
	if maxOffset < cfg.MinHeadSec {
		return 0
	}

	if gateDraw >= cfg.Probability {
		return 0
	}

	offset := cfg.MinHeadSec + int(posDraw*float64(maxOffset-cfg.MinHeadSec+1))
	if offset > maxOffset {
		offset = maxOffset
	}
	return offset
}
