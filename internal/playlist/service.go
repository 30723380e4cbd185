// Package playlist implements user-owned ordered playlists: lifecycle, lazy schema
// upgrades, item sequence operations and bulk population from media sources.
package playlist

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/metrics"
	"github.com/stwalsh4118/setlist/internal/models"
)

// Target names the playlist an operation applies to: either an id to load, or a
// playlist the caller already loaded (e.g. after an ownership check)
type Target struct {
	id       uuid.UUID
	playlist *models.Playlist
}

// ByID targets the playlist with the given id
func ByID(id uuid.UUID) Target {
	return Target{id: id}
}

// Loaded targets an already loaded playlist
func Loaded(p *models.Playlist) Target {
	return Target{id: p.ID, playlist: p}
}

// CreateParams holds the fields of a new playlist
type CreateParams struct {
	Name        string
	Description string
	Shared      bool
	NSFW        bool
}

// Patch holds the playlist fields to change; nil fields are left alone
type Patch struct {
	Name        *string
	Description *string
	Shared      *bool
	NSFW        *bool
}

// PlaylistService handles business logic for playlist operations
type PlaylistService struct {
	repos      *db.Repositories
	migrator   *Migrator
	reconciler *Reconciler
	validate   *validator.Validate
}

// NewPlaylistService creates a new playlist service instance
func NewPlaylistService(repos *db.Repositories, resolver Resolver) *PlaylistService {
	return &PlaylistService{
		repos:      repos,
		migrator:   NewMigrator(repos),
		reconciler: NewReconciler(repos.Media, resolver),
		validate:   validator.New(),
	}
}

// Create creates a new empty playlist owned by author
func (s *PlaylistService) Create(ctx context.Context, author string, params CreateParams) (p *models.Playlist, err error) {
	defer func() { metrics.ObserveOperation("create", err) }()

	p = models.NewPlaylist(author, strings.TrimSpace(params.Name))
	p.Description = params.Description
	p.Shared = params.Shared
	p.NSFW = params.NSFW

	if err := s.validatePlaylist(p); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("author", author).
			Msg("Playlist creation failed: invalid fields")
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	if err := s.repos.Playlists.Create(ctx, p); err != nil {
		logger.Log.Error().
			Err(err).
			Str("author", author).
			Msg("Failed to create playlist in database")
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Str("author", author).
		Str("name", p.Name).
		Msg("Playlist created successfully")

	return p, nil
}

// GetByID retrieves a playlist by its ID, upgrading legacy documents
func (s *PlaylistService) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	p, err := s.repos.Playlists.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("playlist_id", id.String()).
			Msg("Failed to get playlist by ID")
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	if err := s.migrator.Upgrade(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetOwned retrieves a playlist by its ID if it belongs to user
func (s *PlaylistService) GetOwned(ctx context.Context, user string, id uuid.UUID) (*models.Playlist, error) {
	p, err := s.repos.Playlists.GetOwned(ctx, user, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrPlaylistNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("playlist_id", id.String()).
			Str("user", user).
			Msg("Failed to get owned playlist")
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	if err := s.migrator.Upgrade(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListOwned retrieves all playlists of user, newest first
func (s *PlaylistService) ListOwned(ctx context.Context, user string) ([]*models.Playlist, error) {
	playlists, err := s.repos.Playlists.ListByAuthor(ctx, user)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("user", user).
			Msg("Failed to list playlists")
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	for _, p := range playlists {
		if err := s.migrator.Upgrade(ctx, p); err != nil {
			return nil, err
		}
	}

	logger.Log.Debug().
		Str("user", user).
		Int("count", len(playlists)).
		Msg("Listed playlists")

	return playlists, nil
}

// Update merges patch into the playlist (rename, describe, set flags) and saves it
func (s *PlaylistService) Update(ctx context.Context, target Target, patch Patch) (p *models.Playlist, err error) {
	defer func() { metrics.ObserveOperation("update", err) }()

	p, err = s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	work := p.Clone()
	if patch.Name != nil {
		work.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		work.Description = *patch.Description
	}
	if patch.Shared != nil {
		work.Shared = *patch.Shared
	}
	if patch.NSFW != nil {
		work.NSFW = *patch.NSFW
	}

	if err := s.validatePlaylist(work); err != nil {
		logger.Log.Warn().
			Err(err).
			Str("playlist_id", p.ID.String()).
			Msg("Playlist update failed: invalid fields")
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	if err := s.commit(ctx, p, work); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Str("name", p.Name).
		Msg("Playlist updated successfully")

	return p, nil
}

// Shuffle replaces the item order with a uniformly random permutation drawn from rng.
// A nil rng uses the global source.
func (s *PlaylistService) Shuffle(ctx context.Context, target Target, rng *rand.Rand) (p *models.Playlist, err error) {
	defer func() { metrics.ObserveOperation("shuffle", err) }()

	p, err = s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	work := p.Clone()
	swap := func(i, j int) { work.Items[i], work.Items[j] = work.Items[j], work.Items[i] }
	if rng != nil {
		rng.Shuffle(len(work.Items), swap)
	} else {
		rand.Shuffle(len(work.Items), swap)
	}

	if err := s.commit(ctx, p, work); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Int("item_count", p.Size()).
		Msg("Playlist shuffled successfully")

	return p, nil
}

// Delete deletes the playlist
func (s *PlaylistService) Delete(ctx context.Context, target Target) (err error) {
	defer func() { metrics.ObserveOperation("delete", err) }()

	id := target.id
	if err := s.repos.Playlists.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return ErrPlaylistNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("playlist_id", id.String()).
			Msg("Failed to delete playlist from database")
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	logger.Log.Info().
		Str("playlist_id", id.String()).
		Msg("Playlist deleted successfully")

	return nil
}

// load resolves a target to an upgraded playlist
func (s *PlaylistService) load(ctx context.Context, target Target) (*models.Playlist, error) {
	if target.playlist == nil {
		return s.GetByID(ctx, target.id)
	}
	if err := s.migrator.Upgrade(ctx, target.playlist); err != nil {
		return nil, err
	}
	return target.playlist, nil
}

// save persists the whole playlist document
func (s *PlaylistService) save(ctx context.Context, p *models.Playlist) error {
	if err := s.repos.Playlists.Save(ctx, p); err != nil {
		if db.IsNotFound(err) {
			return ErrPlaylistNotFound
		}
		if db.IsConflict(err) {
			logger.Log.Warn().
				Str("playlist_id", p.ID.String()).
				Int64("revision", p.Revision).
				Msg("Playlist was modified concurrently")
		} else {
			logger.Log.Error().
				Err(err).
				Str("playlist_id", p.ID.String()).
				Msg("Failed to save playlist")
		}
		return fmt.Errorf("failed to save playlist: %w", err)
	}
	return nil
}

// commit saves work, a modified clone of p, and copies it into p once stored.
// On failure p keeps its loaded state.
func (s *PlaylistService) commit(ctx context.Context, p, work *models.Playlist) error {
	if err := s.save(ctx, work); err != nil {
		return err
	}
	*p = *work
	return nil
}

func (s *PlaylistService) validatePlaylist(p *models.Playlist) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}
