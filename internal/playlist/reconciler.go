package playlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/metrics"
	"github.com/stwalsh4118/setlist/internal/models"
	"github.com/stwalsh4118/setlist/internal/source"
	"golang.org/x/sync/errgroup"
)

// SourceID is a media id within its source. JSON accepts a string or a number.
type SourceID string

// UnmarshalJSON accepts "abc", 123 and null
func (s *SourceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SourceID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("source id must be a string or a number: %w", err)
	}
	*s = SourceID(num.String())
	return nil
}

// Descriptor asks for one playlist item by source reference.
// Artist, title and trims are optional overrides.
type Descriptor struct {
	SourceType string   `json:"source_type" validate:"required"`
	SourceID   SourceID `json:"source_id" validate:"required"`
	Artist     *string  `json:"artist,omitempty"`
	Title      *string  `json:"title,omitempty"`
	Start      *float64 `json:"start,omitempty"`
	End        *float64 `json:"end,omitempty"`
}

func (d *Descriptor) key() models.SourceKey {
	return models.SourceKey{SourceType: d.SourceType, SourceID: string(d.SourceID)}
}

// Resolver fetches metadata for media not yet known locally
type Resolver interface {
	Get(ctx context.Context, sourceType string, sourceIDs []string) ([]source.Metadata, error)
}

// Reconciler turns descriptors into playlist items, creating media records for
// source ids seen for the first time
type Reconciler struct {
	media    *db.MediaRepository
	resolver Resolver
	validate *validator.Validate
}

// NewReconciler creates a new reconciler instance
func NewReconciler(media *db.MediaRepository, resolver Resolver) *Reconciler {
	return &Reconciler{
		media:    media,
		resolver: resolver,
		validate: validator.New(),
	}
}

// Validate rejects the batch if any descriptor lacks a source type or source id.
// It returns whitespace-trimmed copies; the input slice is left as given.
func (r *Reconciler) Validate(descriptors []Descriptor) ([]Descriptor, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w: no items given", ErrValidationFailed)
	}
	normalized := make([]Descriptor, len(descriptors))
	for i, d := range descriptors {
		d.SourceType = strings.TrimSpace(d.SourceType)
		d.SourceID = SourceID(strings.TrimSpace(string(d.SourceID)))
		if err := r.validate.Struct(&d); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrValidationFailed, i, err)
		}
		normalized[i] = d
	}
	return normalized, nil
}

// Resolve builds one playlist item per descriptor, in input order.
// Lookups are batched per source type: one store query and at most one resolver call
// each. Nothing is written if any descriptor is invalid.
func (r *Reconciler) Resolve(ctx context.Context, descriptors []Descriptor) ([]models.PlaylistItem, error) {
	descriptors, err := r.Validate(descriptors)
	if err != nil {
		return nil, err
	}

	// Partition distinct source ids by source type, keeping first-seen order
	partitions := make(map[string][]string)
	var sourceTypes []string
	seen := make(map[models.SourceKey]bool, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		if seen[d.key()] {
			continue
		}
		seen[d.key()] = true
		if _, ok := partitions[d.SourceType]; !ok {
			sourceTypes = append(sourceTypes, d.SourceType)
		}
		partitions[d.SourceType] = append(partitions[d.SourceType], string(d.SourceID))
	}

	var mu sync.Mutex
	resolved := make(map[models.SourceKey]*models.Media, len(seen))

	g, gctx := errgroup.WithContext(ctx)
	for _, sourceType := range sourceTypes {
		ids := partitions[sourceType]
		g.Go(func() error {
			found, err := r.resolvePartition(gctx, sourceType, ids)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, m := range found {
				resolved[m.Key()] = m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]models.PlaylistItem, 0, len(descriptors))
	for i := range descriptors {
		d := &descriptors[i]
		media, ok := resolved[d.key()]
		if !ok {
			logger.Log.Warn().
				Str("source_type", d.SourceType).
				Str("source_id", string(d.SourceID)).
				Msg("Media source returned no metadata for item")
			return nil, fmt.Errorf("%w: %s", ErrMediaNotFound, d.key())
		}

		artist := media.Artist
		if d.Artist != nil && *d.Artist != "" {
			artist = *d.Artist
		}
		title := media.Title
		if d.Title != nil && *d.Title != "" {
			title = *d.Title
		}
		trim := ComputeTrim(TrimRequest{Start: d.Start, End: d.End}, media.Duration)

		items = append(items, models.NewPlaylistItem(media, artist, title, trim.Start, trim.End))
	}

	return items, nil
}

// resolvePartition returns the media for ids of one source type, fetching and storing
// the ones not yet known
func (r *Reconciler) resolvePartition(ctx context.Context, sourceType string, ids []string) ([]*models.Media, error) {
	existing, err := r.media.FindBySource(ctx, sourceType, ids)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("source_type", sourceType).
			Msg("Failed to look up known media")
		return nil, fmt.Errorf("failed to resolve media: %w", err)
	}
	metrics.ReconciledItemsTotal.WithLabelValues("store").Add(float64(len(existing)))

	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		known[m.SourceID] = true
	}
	missing := make([]string, 0, len(ids)-len(existing))
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return existing, nil
	}

	fetched, err := r.resolver.Get(ctx, sourceType, missing)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("source_type", sourceType).
			Int("id_count", len(missing)).
			Msg("Media source lookup failed")
		return nil, fmt.Errorf("failed to resolve %s media: %w", sourceType, err)
	}

	wanted := make(map[string]bool, len(missing))
	for _, id := range missing {
		wanted[id] = true
	}
	created := make([]*models.Media, 0, len(fetched))
	createdIDs := make([]string, 0, len(fetched))
	for _, md := range fetched {
		if !wanted[md.SourceID] {
			continue
		}
		wanted[md.SourceID] = false
		created = append(created, models.NewMedia(sourceType, md.SourceID, md.Artist, md.Title, md.Duration))
		createdIDs = append(createdIDs, md.SourceID)
	}
	if len(created) == 0 {
		return existing, nil
	}

	if err := r.media.CreateBatch(ctx, created); err != nil {
		logger.Log.Error().
			Err(err).
			Str("source_type", sourceType).
			Int("media_count", len(created)).
			Msg("Failed to save resolved media")
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	// Re-read so rows inserted concurrently by another caller are the ones referenced
	stored, err := r.media.FindBySource(ctx, sourceType, createdIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}
	metrics.ReconciledItemsTotal.WithLabelValues("source").Add(float64(len(stored)))

	logger.Log.Debug().
		Str("source_type", sourceType).
		Int("known_count", len(existing)).
		Int("created_count", len(stored)).
		Msg("Resolved media partition")

	return append(existing, stored...), nil
}
