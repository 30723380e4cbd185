package models

// Playlist schema versions
const (
	// LegacySchemaVersion marks playlists whose items live in legacy_playlist_items
	// and are referenced by id from the media column
	LegacySchemaVersion = 1
	// CurrentSchemaVersion marks playlists that embed their items
	CurrentSchemaVersion = 2
)

// Playlist field limits
const (
	MaxPlaylistNameLength        = 128
	MaxPlaylistDescriptionLength = 512
)
