/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history persists play events and feedback and serves the batch
// lookups the station engine scores with.
package history

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/skald_radio/internal/models"
)

// Repository is the gorm-backed play-history store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a history repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecentlyPlayedIDs returns the subset of trackIDs the user played since the
// given time, across all of their stations.
func (r *Repository) RecentlyPlayedIDs(ctx context.Context, userID string, trackIDs []string, since time.Time) (map[string]struct{}, error) {
	if len(trackIDs) == 0 {
		return map[string]struct{}{}, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.PlayEvent{}).
		Distinct("track_id").
		Where("user_id = ? AND track_id IN ? AND played_at >= ?", userID, trackIDs, since).
		Pluck("track_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// LastPlayedPerTrack returns the most recent play time per track for the
// user. Tracks never played are absent from the map.
func (r *Repository) LastPlayedPerTrack(ctx context.Context, userID string, trackIDs []string) (map[string]time.Time, error) {
	if len(trackIDs) == 0 {
		return map[string]time.Time{}, nil
	}
	var rows []struct {
		TrackID      string
		LastPlayedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&models.PlayEvent{}).
		Select("track_id, MAX(played_at) AS last_played_at").
		Where("user_id = ? AND track_id IN ?", userID, trackIDs).
		Group("track_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		out[row.TrackID] = row.LastPlayedAt
	}
	return out, nil
}

// FeedbackPerTrack returns like/dislike flags per track for the user.
func (r *Repository) FeedbackPerTrack(ctx context.Context, userID string, trackIDs []string) (map[string]models.FeedbackFlags, error) {
	if len(trackIDs) == 0 {
		return map[string]models.FeedbackFlags{}, nil
	}
	var rows []models.TrackFeedback
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND track_id IN ?", userID, trackIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.FeedbackFlags, len(rows))
	for _, row := range rows {
		out[row.TrackID] = models.FeedbackFlags{Liked: row.Liked, Disliked: row.Disliked}
	}
	return out, nil
}

// AppendEvent inserts one play event. Events are append-only.
func (r *Repository) AppendEvent(ctx context.Context, event models.PlayEvent) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

// SetFeedback upserts a user's like/dislike flags for a track. Liked and
// disliked are mutually exclusive; setting one clears the other.
func (r *Repository) SetFeedback(ctx context.Context, userID, trackID string, flags models.FeedbackFlags) error {
	if flags.Liked && flags.Disliked {
		flags.Disliked = false
	}
	row := models.TrackFeedback{
		UserID:    userID,
		TrackID:   trackID,
		Liked:     flags.Liked,
		Disliked:  flags.Disliked,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "track_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "disliked", "updated_at"}),
		}).
		Create(&row).Error
}
