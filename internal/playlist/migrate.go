package playlist

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/metrics"
	"github.com/stwalsh4118/setlist/internal/models"
)

// Migrator upgrades playlists stored in the legacy shape on load
type Migrator struct {
	repos *db.Repositories
}

// NewMigrator creates a new migrator instance
func NewMigrator(repos *db.Repositories) *Migrator {
	return &Migrator{repos: repos}
}

// Upgrade embeds the legacy item records of p and persists the result.
// Playlists already at the current schema version are left untouched, and p only
// changes once the upgraded document is stored.
func (m *Migrator) Upgrade(ctx context.Context, p *models.Playlist) error {
	if !p.NeedsUpgrade() {
		return nil
	}

	legacyCount := len(p.LegacyMedia)
	records, err := m.repos.LegacyItems.GetByIDs(ctx, p.LegacyMedia)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("playlist_id", p.ID.String()).
			Msg("Failed to load legacy playlist items")
		return fmt.Errorf("failed to upgrade playlist: %w", err)
	}

	upgraded := p.Clone()
	missing := upgraded.ApplyLegacyItems(records)
	if len(missing) > 0 {
		logger.Log.Warn().
			Str("playlist_id", p.ID.String()).
			Int("missing_count", len(missing)).
			Msg("Legacy playlist references items that no longer exist")
	}

	media, err := m.repos.Media.GetByIDs(ctx, models.MediaIDs(upgraded.Items))
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("playlist_id", p.ID.String()).
			Msg("Failed to load media for legacy playlist items")
		return fmt.Errorf("failed to upgrade playlist: %w", err)
	}
	for i := range upgraded.Items {
		upgraded.Items[i].DefaultFrom(media[upgraded.Items[i].Media.ID])
	}

	if err := m.repos.Playlists.Save(ctx, upgraded); err != nil {
		if db.IsConflict(err) {
			// Someone else saved first, most likely the same upgrade
			return m.reload(ctx, p)
		}
		if db.IsNotFound(err) {
			return ErrPlaylistNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("playlist_id", p.ID.String()).
			Msg("Failed to save upgraded playlist")
		return fmt.Errorf("failed to upgrade playlist: %w", err)
	}
	*p = *upgraded

	metrics.PlaylistMigrationsTotal.Inc()
	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Int("legacy_count", legacyCount).
		Int("item_count", p.Size()).
		Msg("Playlist upgraded to current schema")

	return nil
}

func (m *Migrator) reload(ctx context.Context, p *models.Playlist) error {
	fresh, err := m.repos.Playlists.GetByID(ctx, p.ID)
	if err != nil {
		if db.IsNotFound(err) {
			return ErrPlaylistNotFound
		}
		return fmt.Errorf("failed to upgrade playlist: %w", err)
	}
	if fresh.NeedsUpgrade() {
		return fmt.Errorf("failed to upgrade playlist: %w", db.ErrConflict)
	}
	*p = *fresh
	return nil
}
