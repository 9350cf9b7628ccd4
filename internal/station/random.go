/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"math/rand"
	"strings"

	"github.com/zeebo/xxh3"
)

// RandomSource supplies the non-deterministic draws. Production uses the
// process RNG; tests inject a fixed source. Seeded generation bypasses this
// entirely so runs replay deterministically.
type RandomSource interface {
	Float64() float64
	Int63n(n int64) int64
}

// systemRandom draws from the auto-seeded process RNG, which is safe for
// concurrent use.
type systemRandom struct{}

func (systemRandom) Float64() float64     { return rand.Float64() }
func (systemRandom) Int63n(n int64) int64 { return rand.Int63n(n) }

// seededUnit maps the labelled parts to a deterministic value in [0,1).
func seededUnit(parts ...string) float64 {
	h := xxh3.HashString(strings.Join(parts, "\x1f"))
	return float64(h>>11) / float64(1<<53)
}

// seededInt maps the labelled parts to a deterministic value in [0,n).
func seededInt(n int64, parts ...string) int64 {
	if n <= 0 {
		return 0
	}
	h := xxh3.HashString(strings.Join(parts, "\x1f"))
	return int64(h % uint64(n))
}
