package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/models"
	"gorm.io/gorm"
)

// playlistColumns are written by Save; id, author and created_at never change
var playlistColumns = []string{
	"name", "description", "shared", "nsfw", "schema_version",
	"items", "media", "revision", "updated_at",
}

// PlaylistRepository stores playlists as whole documents.
// Save is a compare-and-swap on the revision column.
type PlaylistRepository struct {
	db *DB
}

// NewPlaylistRepository creates a new playlist repository
func NewPlaylistRepository(db *DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist document as given. Callers creating new playlists set
// the schema version; it is not forced here so that legacy documents can be stored.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if playlist.Items == nil && playlist.SchemaVersion >= models.CurrentSchemaVersion {
		playlist.Items = []models.PlaylistItem{}
	}
	result := r.db.WithContext(ctx).Create(playlist)
	if result.Error != nil {
		return fmt.Errorf("failed to create playlist: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a playlist document by its UUID
func (r *PlaylistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&playlist)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &playlist, nil
}

// GetOwned retrieves a playlist only if it belongs to author
func (r *PlaylistRepository) GetOwned(ctx context.Context, author string, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	result := r.db.WithContext(ctx).
		Where("id = ? AND author = ?", id.String(), author).
		First(&playlist)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &playlist, nil
}

// ListByAuthor retrieves all playlists of an author, newest first
func (r *PlaylistRepository) ListByAuthor(ctx context.Context, author string) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	result := r.db.WithContext(ctx).
		Where("author = ?", author).
		Order("created_at DESC").
		Find(&playlists)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", MapGormError(result.Error))
	}
	return playlists, nil
}

// Save writes the whole document if its stored revision still equals playlist.Revision.
// On success the revision is incremented in place. A stale revision yields ErrConflict,
// a missing document ErrNotFound.
func (r *PlaylistRepository) Save(ctx context.Context, playlist *models.Playlist) error {
	next := *playlist
	next.Revision = playlist.Revision + 1
	next.UpdatedAt = time.Now().UTC()
	if next.Items == nil {
		next.Items = []models.PlaylistItem{}
	}

	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&models.Playlist{}).
			Where("id = ? AND revision = ?", playlist.ID.String(), playlist.Revision).
			Select(playlistColumns).
			Updates(&next)
		if result.Error != nil {
			return MapGormError(result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.Playlist{}).Where("id = ?", playlist.ID.String()).Count(&count).Error; err != nil {
			return MapGormError(err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	})
	if err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}

	playlist.Revision = next.Revision
	playlist.UpdatedAt = next.UpdatedAt
	playlist.Items = next.Items
	return nil
}

// Delete deletes a playlist document by its UUID
func (r *PlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Playlist{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete playlist: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
