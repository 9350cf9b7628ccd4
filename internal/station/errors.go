/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import "errors"

var (
	// ErrStationUnavailable indicates the station is missing or disabled.
	ErrStationUnavailable = errors.New("station missing or disabled")

	// ErrNoCandidates indicates the rules match zero catalog rows, even
	// before any repeat exclusion is applied.
	ErrNoCandidates = errors.New("no tracks match the station rules")

	// ErrSamplingExhausted indicates exclusion produced an empty set at the
	// final fallback tier. The relaxation design makes this unreachable for
	// a non-empty pool; seeing it is a programming error.
	ErrSamplingExhausted = errors.New("sampling exhausted after full relaxation")
)
