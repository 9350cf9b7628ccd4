/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package station

import (
	"strings"
	"time"

	"github.com/friendsincode/skald_radio/internal/models"
)

// StateBufferCap bounds the persisted recent-track and recent-artist ring
// buffers. Oldest entries are evicted first.
const StateBufferCap = 200

// StateSnapshot is an in-memory view of a station's generation state. The
// advance path persists the snapshot returned by a pick; the preview path
// threads it locally and discards it.
type StateSnapshot struct {
	RecentTrackIDs    []string
	RecentArtistNames []string
	LastTrackID       string
	LastPlayedAt      time.Time
}

// SnapshotFromModel converts the persisted record. A nil state yields the
// empty snapshot of a freshly created station.
func SnapshotFromModel(state *models.StationState) StateSnapshot {
	if state == nil {
		return StateSnapshot{}
	}
	return StateSnapshot{
		RecentTrackIDs:    append([]string(nil), state.RecentTrackIDs...),
		RecentArtistNames: append([]string(nil), state.RecentArtistNames...),
		LastTrackID:       state.LastTrackID,
		LastPlayedAt:      state.LastPlayedAt,
	}
}

// Model converts the snapshot back to its persisted form.
func (s StateSnapshot) Model(stationID string, now time.Time) *models.StationState {
	return &models.StationState{
		StationID:         stationID,
		RecentTrackIDs:    append([]string(nil), s.RecentTrackIDs...),
		RecentArtistNames: append([]string(nil), s.RecentArtistNames...),
		LastTrackID:       s.LastTrackID,
		LastPlayedAt:      s.LastPlayedAt,
		UpdatedAt:         now,
	}
}

// Clone returns an independent copy for simulated picks.
func (s StateSnapshot) Clone() StateSnapshot {
	return StateSnapshot{
		RecentTrackIDs:    append([]string(nil), s.RecentTrackIDs...),
		RecentArtistNames: append([]string(nil), s.RecentArtistNames...),
		LastTrackID:       s.LastTrackID,
		LastPlayedAt:      s.LastPlayedAt,
	}
}

// Advance returns the snapshot after playing the given track.
func (s StateSnapshot) Advance(trackID, artist string, playedAt time.Time) StateSnapshot {
	next := s.Clone()
	next.RecentTrackIDs = pushCapped(next.RecentTrackIDs, trackID, StateBufferCap)
	next.RecentArtistNames = pushCapped(next.RecentArtistNames, artist, StateBufferCap)
	next.LastTrackID = trackID
	next.LastPlayedAt = playedAt
	return next
}

// RecentArtistWindow returns the lowercased last n artist entries, newest
// last. n <= 0 yields nil.
func (s StateSnapshot) RecentArtistWindow(n int) []string {
	if n <= 0 || len(s.RecentArtistNames) == 0 {
		return nil
	}
	start := len(s.RecentArtistNames) - n
	if start < 0 {
		start = 0
	}
	window := make([]string, 0, len(s.RecentArtistNames)-start)
	for _, name := range s.RecentArtistNames[start:] {
		window = append(window, strings.ToLower(strings.TrimSpace(name)))
	}
	return window
}

// pushCapped appends value, evicting from the front once cap is exceeded.
func pushCapped(buf []string, value string, capacity int) []string {
	buf = append(buf, value)
	if len(buf) > capacity {
		buf = buf[len(buf)-capacity:]
	}
	return buf
}
