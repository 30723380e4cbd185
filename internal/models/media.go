package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Media represents a playable item from an external source, keyed by (SourceType, SourceID)
type Media struct {
	ID         uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	SourceType string    `json:"source_type" gorm:"type:text;not null;uniqueIndex:idx_media_source;column:source_type" validate:"required"`
	SourceID   string    `json:"source_id" gorm:"type:text;not null;uniqueIndex:idx_media_source;column:source_id" validate:"required"`
	Artist     string    `json:"artist" gorm:"type:text;not null;default:'';column:artist"`
	Title      string    `json:"title" gorm:"type:text;not null;default:'';column:title"`
	Duration   float64   `json:"duration" gorm:"type:real;not null;default:0;column:duration" validate:"gte=0"` // seconds
	CreatedAt  time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// TableName pins the table name; gorm would otherwise pluralise to "medias"
func (Media) TableName() string {
	return "media"
}

// NewMedia creates a new Media with generated UUID and timestamp
func NewMedia(sourceType, sourceID, artist, title string, duration float64) *Media {
	if duration < 0 {
		duration = 0
	}
	return &Media{
		ID:         uuid.New(),
		SourceType: sourceType,
		SourceID:   sourceID,
		Artist:     artist,
		Title:      title,
		Duration:   duration,
		CreatedAt:  time.Now().UTC(),
	}
}

// SourceKey identifies a media item across sources
type SourceKey struct {
	SourceType string
	SourceID   string
}

func (k SourceKey) String() string {
	return fmt.Sprintf("%s/%q", k.SourceType, k.SourceID)
}

// Key returns the (source type, source id) pair identifying this media
func (m *Media) Key() SourceKey {
	return SourceKey{SourceType: m.SourceType, SourceID: m.SourceID}
}
