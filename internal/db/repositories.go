package db

// Repositories provides access to all database repositories
type Repositories struct {
	Playlists   *PlaylistRepository
	Media       *MediaRepository
	LegacyItems *LegacyItemRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Playlists:   NewPlaylistRepository(db),
		Media:       NewMediaRepository(db),
		LegacyItems: NewLegacyItemRepository(db),
	}
}
