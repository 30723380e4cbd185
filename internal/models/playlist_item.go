package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MediaRef references a Media record by id. A ref is either unresolved (only the id is
// known) or resolved (the record has been loaded). Only the id is persisted.
type MediaRef struct {
	ID    uuid.UUID
	media *Media
}

// RefTo returns a resolved reference to m
func RefTo(m *Media) MediaRef {
	return MediaRef{ID: m.ID, media: m}
}

// UnresolvedRef returns a reference holding only the media id
func UnresolvedRef(id uuid.UUID) MediaRef {
	return MediaRef{ID: id}
}

// Resolved reports whether the referenced record has been loaded
func (r MediaRef) Resolved() bool {
	return r.media != nil
}

// Media returns the referenced record, or nil while unresolved
func (r MediaRef) Media() *Media {
	return r.media
}

// Resolve attaches the loaded record. Records with a different id are ignored.
func (r *MediaRef) Resolve(m *Media) {
	if m != nil && m.ID == r.ID {
		r.media = m
	}
}

// MarshalJSON stores the reference as its bare id
func (r MediaRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// UnmarshalJSON reads a bare id; the result is always unresolved
func (r *MediaRef) UnmarshalJSON(data []byte) error {
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*r = MediaRef{ID: id}
	return nil
}

// PlaylistItem is one entry of a playlist: a trimmed media reference with display overrides.
// Items are embedded in their playlist document and have no lifecycle of their own.
type PlaylistItem struct {
	ID        uuid.UUID `json:"id"`
	Media     MediaRef  `json:"media"`
	Artist    string    `json:"artist"`
	Title     string    `json:"title"`
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPlaylistItem creates an item for media with the given display fields and trim
func NewPlaylistItem(media *Media, artist, title string, start, end float64) PlaylistItem {
	return PlaylistItem{
		ID:        uuid.New(),
		Media:     RefTo(media),
		Artist:    artist,
		Title:     title,
		Start:     start,
		End:       end,
		CreatedAt: time.Now().UTC(),
	}
}

// DefaultFrom fills an empty artist or title from the media record
func (i *PlaylistItem) DefaultFrom(m *Media) {
	if m == nil {
		return
	}
	if i.Artist == "" {
		i.Artist = m.Artist
	}
	if i.Title == "" {
		i.Title = m.Title
	}
}

// LegacyPlaylistItem is an item record stored outside its playlist, as written by the
// legacy schema where a playlist only kept a list of item ids
type LegacyPlaylistItem struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey;column:id"`
	MediaID   uuid.UUID `gorm:"type:text;not null;column:media_id"`
	Artist    string    `gorm:"type:text;not null;default:'';column:artist"`
	Title     string    `gorm:"type:text;not null;default:'';column:title"`
	Start     float64   `gorm:"type:real;not null;default:0;column:trim_start"`
	End       float64   `gorm:"type:real;not null;default:0;column:trim_end"`
	CreatedAt time.Time `gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// TableName returns the legacy item table
func (LegacyPlaylistItem) TableName() string {
	return "legacy_playlist_items"
}

// ToItem converts the legacy record to an embedded item with an unresolved media reference
func (l *LegacyPlaylistItem) ToItem() PlaylistItem {
	return PlaylistItem{
		ID:        l.ID,
		Media:     UnresolvedRef(l.MediaID),
		Artist:    l.Artist,
		Title:     l.Title,
		Start:     l.Start,
		End:       l.End,
		CreatedAt: l.CreatedAt,
	}
}
