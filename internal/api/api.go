/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the station engine over HTTP. The layer is thin: it
// parses request shape, calls the engine and maps its error kinds to status
// codes.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_radio/internal/station"
)

// PeekCountMax caps how many tracks a single peek request may simulate.
const PeekCountMax = 50

// API exposes HTTP handlers.
type API struct {
	engine *station.Engine
	logger zerolog.Logger
}

// New creates the API router wrapper.
func New(engine *station.Engine, logger zerolog.Logger) *API {
	return &API{
		engine: engine,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts the station endpoints.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/stations/{stationID}", func(r chi.Router) {
		r.Post("/next", a.advanceStation)
		r.Get("/peek", a.peekStation)
		r.Get("/preview", a.previewStation)
	})
}

type pickedResponse struct {
	TrackID                string `json:"track_id"`
	Title                  string `json:"title"`
	Artist                 string `json:"artist"`
	Album                  string `json:"album,omitempty"`
	DurationSec            int    `json:"duration_sec"`
	StreamURL              string `json:"stream_url"`
	CoverArtURL            string `json:"cover_art_url,omitempty"`
	TuneInOffsetSec        int    `json:"tune_in_offset_sec"`
	RelaxedArtistExclusion bool   `json:"relaxed_artist_exclusion,omitempty"`
	RelaxedTrackExclusion  bool   `json:"relaxed_track_exclusion,omitempty"`
}

func toPickedResponse(p station.PickedTrack) pickedResponse {
	return pickedResponse{
		TrackID:                p.Track.ID,
		Title:                  p.Track.Title,
		Artist:                 p.Track.Artist,
		Album:                  p.Track.Album,
		DurationSec:            p.Track.DurationSec,
		StreamURL:              p.StreamURL,
		CoverArtURL:            p.CoverArtURL,
		TuneInOffsetSec:        p.TuneInOffsetSec,
		RelaxedArtistExclusion: p.RelaxedArtistExclusion,
		RelaxedTrackExclusion:  p.RelaxedTrackExclusion,
	}
}

func (a *API) advanceStation(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")
	opts := generateOptions(r)

	picked, err := a.engine.AdvanceNextTrack(r.Context(), stationID, r.Header.Get("X-User-ID"), opts)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPickedResponse(*picked))
}

func (a *API) peekStation(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")
	opts := generateOptions(r)

	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid_count")
			return
		}
		count = parsed
	}
	if count > PeekCountMax {
		count = PeekCountMax
	}

	picked, err := a.engine.PeekNextTracks(r.Context(), stationID, r.Header.Get("X-User-ID"), count, opts)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	out := make([]pickedResponse, len(picked))
	for i, p := range picked {
		out[i] = toPickedResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": out})
}

func (a *API) previewStation(w http.ResponseWriter, r *http.Request) {
	stationID := chi.URLParam(r, "stationID")

	count, err := a.engine.StationPreviewCount(r.Context(), stationID)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// generateOptions extracts the optional seed and reference time.
func generateOptions(r *http.Request) station.GenerateOptions {
	opts := station.GenerateOptions{Seed: r.URL.Query().Get("seed")}
	if raw := r.URL.Query().Get("now"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			opts.Now = t
		}
	}
	return opts
}

func (a *API) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, station.ErrStationUnavailable):
		writeError(w, http.StatusNotFound, "station_unavailable")
	case errors.Is(err, station.ErrNoCandidates):
		writeError(w, http.StatusUnprocessableEntity, "no_candidates")
	case errors.Is(err, station.ErrSamplingExhausted):
		writeError(w, http.StatusUnprocessableEntity, "sampling_exhausted")
	default:
		a.logger.Error().Err(err).Str("path", r.URL.Path).Msg("station request failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
