package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Playlist is a named, ordered, user-owned collection of media references.
// The whole playlist, items included, is loaded and saved as one document.
type Playlist struct {
	ID            uuid.UUID      `json:"id" gorm:"type:text;primaryKey;column:id"`
	Name          string         `json:"name" gorm:"type:text;not null;column:name" validate:"required,min=1,max=128"`
	Description   string         `json:"description" gorm:"type:text;not null;default:'';column:description" validate:"max=512"`
	Author        string         `json:"author" gorm:"type:text;not null;index;column:author" validate:"required"`
	Shared        bool           `json:"shared" gorm:"type:integer;not null;default:0;column:shared"`
	NSFW          bool           `json:"nsfw" gorm:"type:integer;not null;default:0;column:nsfw"`
	SchemaVersion int            `json:"-" gorm:"type:integer;not null;default:0;column:schema_version"`
	Items         []PlaylistItem `json:"-" gorm:"type:text;serializer:json;column:items"`
	LegacyMedia   []uuid.UUID    `json:"-" gorm:"type:text;serializer:json;column:media"`
	Revision      int64          `json:"-" gorm:"type:integer;not null;default:0;column:revision"`
	CreatedAt     time.Time      `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewPlaylist creates an empty playlist at the current schema version
func NewPlaylist(author, name string) *Playlist {
	now := time.Now().UTC()
	return &Playlist{
		ID:            uuid.New(),
		Name:          name,
		Author:        author,
		SchemaVersion: CurrentSchemaVersion,
		Items:         []PlaylistItem{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Size returns the number of items
func (p *Playlist) Size() int {
	return len(p.Items)
}

// NeedsUpgrade reports whether the playlist is stored in the legacy shape
func (p *Playlist) NeedsUpgrade() bool {
	return p.SchemaVersion < CurrentSchemaVersion
}

// ApplyLegacyItems replaces the legacy id list with embedded items built from records.
// Items follow the order of the legacy list; ids without a record are skipped and returned.
// Calling it on an upgraded playlist does nothing.
func (p *Playlist) ApplyLegacyItems(records []*LegacyPlaylistItem) (missing []uuid.UUID) {
	if !p.NeedsUpgrade() {
		return nil
	}

	byID := make(map[uuid.UUID]*LegacyPlaylistItem, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	items := make([]PlaylistItem, 0, len(p.LegacyMedia))
	seen := make(map[uuid.UUID]bool, len(p.LegacyMedia))
	for _, id := range p.LegacyMedia {
		if seen[id] {
			continue
		}
		seen[id] = true
		record, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		items = append(items, record.ToItem())
	}

	p.Items = items
	p.LegacyMedia = nil
	p.SchemaVersion = CurrentSchemaVersion
	return missing
}

// Clone returns a copy whose item and legacy id slices are not shared with p
func (p *Playlist) Clone() *Playlist {
	c := *p
	c.Items = slices.Clone(p.Items)
	c.LegacyMedia = slices.Clone(p.LegacyMedia)
	return &c
}

// IndexOf returns the position of the item with the given id, or -1
func (p *Playlist) IndexOf(id uuid.UUID) int {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// MediaIDs returns the distinct media ids referenced by items, in item order
func MediaIDs(items []PlaylistItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if seen[item.Media.ID] {
			continue
		}
		seen[item.Media.ID] = true
		ids = append(ids, item.Media.ID)
	}
	return ids
}
