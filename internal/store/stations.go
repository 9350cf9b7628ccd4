/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store persists station definitions and generation state.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/skald_radio/internal/models"
)

// Repository is the gorm-backed station store.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a station repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetStation loads one station. A missing station returns (nil, nil).
func (r *Repository) GetStation(ctx context.Context, stationID string) (*models.Station, error) {
	var station models.Station
	err := r.db.WithContext(ctx).First(&station, "id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// ListStations returns a user's stations, newest first.
func (r *Repository) ListStations(ctx context.Context, userID string) ([]models.Station, error) {
	var stations []models.Station
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&stations).Error
	if err != nil {
		return nil, err
	}
	return stations, nil
}

// SaveStation inserts or fully replaces a station definition.
func (r *Repository) SaveStation(ctx context.Context, station *models.Station) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(station).Error
}

// DeleteStation removes a station and its generation state.
func (r *Repository) DeleteStation(ctx context.Context, stationID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.StationState{}, "station_id = ?", stationID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Station{}, "id = ?", stationID).Error
	})
}

// GetState loads a station's generation state. A station that has never
// advanced returns (nil, nil).
func (r *Repository) GetState(ctx context.Context, stationID string) (*models.StationState, error) {
	var state models.StationState
	err := r.db.WithContext(ctx).First(&state, "station_id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// UpsertState writes the station's generation state.
func (r *Repository) UpsertState(ctx context.Context, state *models.StationState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "station_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
}
