package models

import (
	"time"
)

// Track is a catalog record. Rows are owned by the library import job; the
// station engine only ever reads them.
type Track struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Title       string `gorm:"index"`
	Artist      string `gorm:"index"`
	Album       string `gorm:"index"`
	Genre       string `gorm:"index"`
	Year        int
	DurationSec int
	CoverArtID  string
	AddedAt     time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Station is a named, rule-configured virtual radio channel. Rules are stored
// as loose JSON and parsed by the station engine.
type Station struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"type:uuid;index"`
	Name      string         `gorm:"index"`
	Rules     map[string]any `gorm:"type:jsonb"`
	Disabled  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StationState is a station's rolling memory of what was just played. It is
// advanced only by real picks, never by previews.
type StationState struct {
	StationID         string   `gorm:"type:uuid;primaryKey"`
	RecentTrackIDs    []string `gorm:"serializer:json"`
	RecentArtistNames []string `gorm:"serializer:json"`
	LastTrackID       string   `gorm:"type:uuid"`
	LastPlayedAt      time.Time
	UpdatedAt         time.Time
}

// PlayEvent is one append-only row per consumed track. Repeat avoidance reads
// these per user, so a play on one station counts against every station.
type PlayEvent struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	UserID        string    `gorm:"type:uuid;index"`
	StationID     string    `gorm:"type:uuid;index"`
	TrackID       string    `gorm:"type:uuid;index"`
	PlayedAt      time.Time `gorm:"index"`
	Skipped       bool
	ListenSeconds int
}

// TrackFeedback stores per (user, track) like/dislike flags.
type TrackFeedback struct {
	UserID    string `gorm:"type:uuid;primaryKey"`
	TrackID   string `gorm:"type:uuid;primaryKey"`
	Liked     bool
	Disliked  bool
	UpdatedAt time.Time
}

// FeedbackFlags is the in-memory projection of TrackFeedback used by scoring.
type FeedbackFlags struct {
	Liked    bool
	Disliked bool
}
