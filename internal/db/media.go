package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/models"
	"gorm.io/gorm/clause"
)

// MediaRepository handles database operations for media records
type MediaRepository struct {
	db *DB
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(db *DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// CreateBatch inserts media records in a single statement. Records whose
// (source_type, source_id) already exists are skipped, so callers racing on the same
// unknown media do not fail; re-read with FindBySource to get the stored rows.
func (r *MediaRepository) CreateBatch(ctx context.Context, media []*models.Media) error {
	if len(media) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&media)
	if result.Error != nil {
		return fmt.Errorf("failed to create media batch: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByIDs retrieves media records for a set of ids in one query.
// Ids without a record are absent from the returned map.
func (r *MediaRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Media, error) {
	found := make(map[uuid.UUID]*models.Media, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	var mediaList []*models.Media
	result := r.db.WithContext(ctx).Where("id IN ?", idStrings).Find(&mediaList)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get media by ids: %w", MapGormError(result.Error))
	}

	for _, m := range mediaList {
		found[m.ID] = m
	}
	return found, nil
}

// FindBySource retrieves media of one source type whose source id is in sourceIDs
func (r *MediaRepository) FindBySource(ctx context.Context, sourceType string, sourceIDs []string) ([]*models.Media, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	var mediaList []*models.Media
	result := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id IN ?", sourceType, sourceIDs).
		Find(&mediaList)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find media by source: %w", MapGormError(result.Error))
	}
	return mediaList, nil
}

// Count returns the total number of media records
func (r *MediaRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Media{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count media: %w", MapGormError(result.Error))
	}
	return count, nil
}
