/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package station implements the generation engine behind personal radio
// stations: candidate pool acquisition, exclusion relaxation, scoring,
// weighted sampling and generation-state management.
package station

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/skald_radio/internal/events"
	"github.com/friendsincode/skald_radio/internal/models"
	"github.com/friendsincode/skald_radio/internal/telemetry"
)

// History is the play-history and feedback collaborator. Lookups are batch
// queries restricted to the candidate id set, never the full catalog.
type History interface {
	RecentlyPlayedIDs(ctx context.Context, userID string, trackIDs []string, since time.Time) (map[string]struct{}, error)
	LastPlayedPerTrack(ctx context.Context, userID string, trackIDs []string) (map[string]time.Time, error)
	FeedbackPerTrack(ctx context.Context, userID string, trackIDs []string) (map[string]models.FeedbackFlags, error)
	AppendEvent(ctx context.Context, event models.PlayEvent) error
}

// StationStore persists station definitions and generation state. A nil
// station means missing; a nil state means the station has never advanced.
type StationStore interface {
	GetStation(ctx context.Context, stationID string) (*models.Station, error)
	GetState(ctx context.Context, stationID string) (*models.StationState, error)
	UpsertState(ctx context.Context, state *models.StationState) error
}

// StreamResolver builds playable URLs for selected tracks.
type StreamResolver interface {
	StreamURL(trackID string) string
	CoverArtURL(ref string) string
}

// Locker serializes advances per station. Release must always be called.
type Locker interface {
	Lock(ctx context.Context, stationID string) (release func(), err error)
}

// EngineOptions tune the engine. Zero values select the inherited defaults.
type EngineOptions struct {
	PoolSize       int
	PoolMaxEntries int
	PoolTTL        time.Duration
	TopK           int
	TuneIn         TuneInConfig
	Clock          func() time.Time
	Random         RandomSource
	Bus            *events.Bus
}

// Engine picks the next track for a station. Both public call shapes share
// the pure pickTrack routine over an explicit state snapshot, so the
// stateful and simulated paths cannot diverge.
//
// AdvanceNextTrack hard-serializes per station through the Locker instead of
// tolerating last-write-wins races on the state upsert; without a locker two
// concurrent advances may interleave their ring-buffer updates.
type Engine struct {
	catalog  Catalog
	history  History
	stations StationStore
	streams  StreamResolver
	locker   Locker
	bus      *events.Bus
	pool     *PoolCache

	topK   int
	tuneIn TuneInConfig
	clock  func() time.Time
	random RandomSource

	logger zerolog.Logger
}

// NewEngine creates a station engine instance.
func NewEngine(catalog Catalog, history History, stations StationStore, streams StreamResolver, locker Locker, logger zerolog.Logger, opts EngineOptions) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = SamplerTopK
	}
	if opts.TuneIn == (TuneInConfig{}) {
		opts.TuneIn = DefaultTuneInConfig()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Random == nil {
		opts.Random = systemRandom{}
	}
	return &Engine{
		catalog:  catalog,
		history:  history,
		stations: stations,
		streams:  streams,
		locker:   locker,
		bus:      opts.Bus,
		pool:     NewPoolCache(opts.PoolSize, opts.PoolMaxEntries, opts.PoolTTL, opts.Clock, opts.Random),
		topK:     opts.TopK,
		tuneIn:   opts.TuneIn,
		clock:    opts.Clock,
		random:   opts.Random,
		logger:   logger.With().Str("component", "station_engine").Logger(),
	}
}

// GenerateOptions shape a single generation call. A non-empty seed makes the
// whole run deterministic; a zero Now uses the engine clock.
type GenerateOptions struct {
	Seed string
	Now  time.Time
}

// PickedTrack is a selected track resolved for playback.
type PickedTrack struct {
	Track                  models.Track
	StreamURL              string
	CoverArtURL            string
	TuneInOffsetSec        int
	RelaxedArtistExclusion bool
	RelaxedTrackExclusion  bool
}

// generationContext is built once per call and discarded afterwards.
type generationContext struct {
	stationID  string
	userID     string
	seed       string
	now        time.Time
	rules      Rules
	pool       []models.Track
	recently   map[string]struct{}
	lastPlayed map[string]time.Time
	feedback   map[string]models.FeedbackFlags
}

type pickResult struct {
	track                  models.Track
	next                   StateSnapshot
	relaxedArtistExclusion bool
	relaxedTrackExclusion  bool
}

// AdvanceNextTrack consumes one pick: it advances and persists the station's
// generation state and records a play event. State writes happen last, after
// an early-return-free computation, so a cancelled request never partially
// records a play.
func (e *Engine) AdvanceNextTrack(ctx context.Context, stationID, userID string, opts GenerateOptions) (*PickedTrack, error) {
	start := time.Now()
	telemetry.GenerationsTotal.WithLabelValues("advance").Inc()
	defer func() {
		telemetry.GenerationDuration.WithLabelValues("advance").Observe(time.Since(start).Seconds())
	}()

	if e.locker != nil {
		release, err := e.locker.Lock(ctx, stationID)
		if err != nil {
			return nil, fmt.Errorf("acquire station lock: %w", err)
		}
		defer release()
	}

	g, err := e.buildContext(ctx, stationID, userID, opts)
	if err != nil {
		return nil, err
	}

	stateModel, err := e.stations.GetState(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("load generation state: %w", err)
	}
	snap := SnapshotFromModel(stateModel)

	res, err := e.pickTrack(g, snap, map[string]struct{}{}, 0)
	if err != nil {
		return nil, err
	}
	offset := e.tuneInOffset(g, res.track)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.stations.UpsertState(ctx, res.next.Model(stationID, g.now)); err != nil {
		return nil, fmt.Errorf("persist generation state: %w", err)
	}
	event := models.PlayEvent{
		ID:        uuid.NewString(),
		UserID:    g.userID,
		StationID: stationID,
		TrackID:   res.track.ID,
		PlayedAt:  g.now,
	}
	if err := e.history.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("append play event: %w", err)
	}
	telemetry.PlayEventsTotal.Inc()

	if e.bus != nil {
		e.bus.Publish(events.EventNowPlaying, events.Payload{
			"station_id": stationID,
			"user_id":    g.userID,
			"track_id":   res.track.ID,
			"artist":     res.track.Artist,
			"title":      res.track.Title,
		})
		e.bus.Publish(events.EventStationAdvanced, events.Payload{
			"station_id": stationID,
			"track_id":   res.track.ID,
		})
	}

	e.logger.Debug().
		Str("station_id", stationID).
		Str("track_id", res.track.ID).
		Bool("relaxed_artist", res.relaxedArtistExclusion).
		Bool("relaxed_track", res.relaxedTrackExclusion).
		Int("tune_in_offset_sec", offset).
		Msg("advanced station")

	picked := e.resolve(res, offset)
	return &picked, nil
}

// PeekNextTracks simulates the next count picks without persisting anything.
// Picked ids accumulate into a per-call exclusion set so consecutive
// simulated picks respect recency and repetition. Preview is best-effort: a
// step that cannot find a candidate ends the preview early.
func (e *Engine) PeekNextTracks(ctx context.Context, stationID, userID string, count int, opts GenerateOptions) ([]PickedTrack, error) {
	start := time.Now()
	telemetry.GenerationsTotal.WithLabelValues("peek").Inc()
	defer func() {
		telemetry.GenerationDuration.WithLabelValues("peek").Observe(time.Since(start).Seconds())
	}()

	if count <= 0 {
		return nil, nil
	}

	g, err := e.buildContext(ctx, stationID, userID, opts)
	if err != nil {
		return nil, err
	}

	stateModel, err := e.stations.GetState(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("load generation state: %w", err)
	}
	snap := SnapshotFromModel(stateModel)

	picked := make(map[string]struct{}, count)
	out := make([]PickedTrack, 0, count)
	for step := 0; step < count; step++ {
		res, err := e.pickTrack(g, snap, picked, step)
		if err != nil {
			e.logger.Debug().Err(err).Str("station_id", stationID).Int("step", step).Msg("preview ended early")
			break
		}
		picked[res.track.ID] = struct{}{}
		snap = res.next
		out = append(out, e.resolve(res, e.tuneInOffset(g, res.track)))
	}
	return out, nil
}

// PreviewCount reports how many catalog tracks the rules match, without
// picking.
func (e *Engine) PreviewCount(ctx context.Context, rules Rules, now time.Time) (int64, error) {
	if now.IsZero() {
		now = e.clock()
	}
	return e.catalog.CountTracks(ctx, rules.Normalized().Filter(now))
}

// StationPreviewCount is PreviewCount for a stored station's rules.
func (e *Engine) StationPreviewCount(ctx context.Context, stationID string) (int64, error) {
	st, err := e.stations.GetStation(ctx, stationID)
	if err != nil {
		return 0, fmt.Errorf("load station: %w", err)
	}
	if st == nil || st.Disabled {
		return 0, ErrStationUnavailable
	}
	rules, err := ParseRules(st.Rules)
	if err != nil {
		return 0, err
	}
	return e.PreviewCount(ctx, rules, time.Time{})
}

func (e *Engine) buildContext(ctx context.Context, stationID, userID string, opts GenerateOptions) (*generationContext, error) {
	st, err := e.stations.GetStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("load station: %w", err)
	}
	if st == nil || st.Disabled {
		return nil, ErrStationUnavailable
	}
	if userID == "" {
		userID = st.UserID
	}

	rules, err := ParseRules(st.Rules)
	if err != nil {
		return nil, err
	}
	rules = rules.Normalized()

	now := opts.Now
	if now.IsZero() {
		now = e.clock()
	}

	pool, err := e.pool.Load(ctx, e.catalog, userID, stationID, opts.Seed, rules, now)
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}

	ids := make([]string, len(pool))
	for i, track := range pool {
		ids[i] = track.ID
	}

	recently := map[string]struct{}{}
	if rules.AvoidRepeatHours > 0 {
		since := now.Add(-time.Duration(rules.AvoidRepeatHours) * time.Hour)
		recently, err = e.history.RecentlyPlayedIDs(ctx, userID, ids, since)
		if err != nil {
			return nil, fmt.Errorf("load recently played: %w", err)
		}
	}

	lastPlayed, err := e.history.LastPlayedPerTrack(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load last played: %w", err)
	}

	feedback, err := e.history.FeedbackPerTrack(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}

	return &generationContext{
		stationID:  stationID,
		userID:     userID,
		seed:       opts.Seed,
		now:        now,
		rules:      rules,
		pool:       pool,
		recently:   recently,
		lastPlayed: lastPlayed,
		feedback:   feedback,
	}, nil
}

// pickTrack is the pure selection routine shared by advance and peek. It
// never mutates its inputs: the advanced state comes back in the result.
func (e *Engine) pickTrack(g *generationContext, snap StateSnapshot, picked map[string]struct{}, step int) (pickResult, error) {
	candidates := make([]models.Track, 0, len(g.pool))
	for _, track := range g.pool {
		if _, ok := picked[track.ID]; ok {
			continue
		}
		candidates = append(candidates, track)
	}
	if len(candidates) == 0 {
		return pickResult{}, ErrSamplingExhausted
	}

	disallowed := make(map[string]struct{}, len(g.recently)+len(snap.RecentTrackIDs))
	for id := range g.recently {
		disallowed[id] = struct{}{}
	}
	for _, id := range snap.RecentTrackIDs {
		disallowed[id] = struct{}{}
	}

	artistWindow := snap.RecentArtistWindow(g.rules.ArtistSeparation)
	excl := applyExclusions(candidates, disallowed, artistWindow)
	if len(excl.Candidates) == 0 {
		return pickResult{}, ErrSamplingExhausted
	}
	if excl.RelaxedArtistExclusion {
		telemetry.ExclusionRelaxationsTotal.WithLabelValues("artist").Inc()
	}
	if excl.RelaxedTrackExclusion {
		telemetry.ExclusionRelaxationsTotal.WithLabelValues("track").Inc()
	}

	repeatedArtists := make(map[string]struct{}, len(artistWindow))
	for _, name := range artistWindow {
		repeatedArtists[name] = struct{}{}
	}

	scored := make([]scoredTrack, 0, len(excl.Candidates))
	for _, track := range excl.Candidates {
		base := e.random.Float64()
		if g.seed != "" {
			base = seededUnit(g.seed, track.ID, "base")
		}
		_, repeated := repeatedArtists[normalizeName(track.Artist)]
		scored = append(scored, scoredTrack{
			Track: track,
			Score: scoreTrack(base, g.lastPlayed[track.ID], g.now, g.feedback[track.ID], repeated),
		})
	}

	draw := e.random.Float64()
	if g.seed != "" {
		draw = seededUnit(g.seed, g.stationID, "draw", strconv.Itoa(step))
	}

	selected, ok := sampleWeighted(scored, e.topK, draw)
	if !ok {
		return pickResult{}, ErrSamplingExhausted
	}

	return pickResult{
		track:                  selected,
		next:                   snap.Advance(selected.ID, selected.Artist, g.now),
		relaxedArtistExclusion: excl.RelaxedArtistExclusion,
		relaxedTrackExclusion:  excl.RelaxedTrackExclusion,
	}, nil
}

func (e *Engine) tuneInOffset(g *generationContext, track models.Track) int {
	gate := e.random.Float64()
	pos := e.random.Float64()
	if g.seed != "" {
		gate = seededUnit(g.seed, track.ID, "tunein-gate")
		pos = seededUnit(g.seed, track.ID, "tunein-pos")
	}
	return ComputeTuneInOffset(track.DurationSec, e.tuneIn, gate, pos)
}

func (e *Engine) resolve(res pickResult, tuneInOffset int) PickedTrack {
	picked := PickedTrack{
		Track:                  res.track,
		TuneInOffsetSec:        tuneInOffset,
		RelaxedArtistExclusion: res.relaxedArtistExclusion,
		RelaxedTrackExclusion:  res.relaxedTrackExclusion,
	}
	if e.streams != nil {
		picked.StreamURL = e.streams.StreamURL(res.track.ID)
		if res.track.CoverArtID != "" {
			picked.CoverArtURL = e.streams.CoverArtURL(res.track.CoverArtID)
		}
	}
	return picked
}
