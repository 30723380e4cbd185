package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/models"
)

// LegacyItemRepository reads item records written by the legacy playlist schema.
// Nothing writes to this table any more except tests and imports of old data.
type LegacyItemRepository struct {
	db *DB
}

// NewLegacyItemRepository creates a new legacy item repository
func NewLegacyItemRepository(db *DB) *LegacyItemRepository {
	return &LegacyItemRepository{db: db}
}

// Create inserts a legacy item record
func (r *LegacyItemRepository) Create(ctx context.Context, item *models.LegacyPlaylistItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		return fmt.Errorf("failed to create legacy playlist item: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByIDs retrieves the records for a set of ids in one query, in no particular order
func (r *LegacyItemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.LegacyPlaylistItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	var items []*models.LegacyPlaylistItem
	result := r.db.WithContext(ctx).Where("id IN ?", idStrings).Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get legacy playlist items: %w", MapGormError(result.Error))
	}
	return items, nil
}
