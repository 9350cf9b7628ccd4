/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package catalog reads the track library for the station engine.
package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/friendsincode/skald_radio/internal/models"
	"github.com/friendsincode/skald_radio/internal/station"
)

// Repository is the gorm-backed track catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountTracks returns how many tracks match the filter.
func (r *Repository) CountTracks(ctx context.Context, filter station.Filter) (int64, error) {
	var count int64
	if err := r.query(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindTracks returns a window of matching tracks in stable ascending-id
// order, so the same offset always lands on the same rows.
func (r *Repository) FindTracks(ctx context.Context, filter station.Filter, offset, limit int) ([]models.Track, error) {
	var tracks []models.Track
	err := r.query(ctx, filter).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

// query builds the WHERE clauses. String sets were normalized to lowercase
// upstream, so comparisons fold the column instead of the argument.
func (r *Repository) query(ctx context.Context, filter station.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Track{})

	if len(filter.Genres) > 0 {
		q = q.Where("LOWER(genre) IN ?", filter.Genres)
	}
	if len(filter.NotGenres) > 0 {
		q = q.Where("LOWER(genre) NOT IN ?", filter.NotGenres)
	}
	if len(filter.Artists) > 0 {
		q = q.Where("LOWER(artist) IN ?", filter.Artists)
	}
	if len(filter.NotArtists) > 0 {
		q = q.Where("LOWER(artist) NOT IN ?", filter.NotArtists)
	}
	if len(filter.Albums) > 0 {
		q = q.Where("LOWER(album) IN ?", filter.Albums)
	}
	if len(filter.NotAlbums) > 0 {
		q = q.Where("LOWER(album) NOT IN ?", filter.NotAlbums)
	}
	if filter.YearMin > 0 {
		q = q.Where("year >= ?", filter.YearMin)
	}
	if filter.YearMax > 0 {
		q = q.Where("year <= ?", filter.YearMax)
	}
	if filter.DurationMinSec > 0 {
		q = q.Where("duration_sec >= ?", filter.DurationMinSec)
	}
	if filter.DurationMaxSec > 0 {
		q = q.Where("duration_sec <= ?", filter.DurationMaxSec)
	}
	if !filter.AddedAfter.IsZero() {
		q = q.Where("added_at >= ?", filter.AddedAfter)
	}

	return q
}
