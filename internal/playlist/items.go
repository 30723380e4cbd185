package playlist

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/metrics"
	"github.com/stwalsh4118/setlist/internal/models"
)

// Cursor is an offset/limit pair used for pagination
type Cursor struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ListOptions controls ListItems. A nil Pagination returns every matching item.
type ListOptions struct {
	Filter     string
	Pagination *Cursor
}

// Page is one page of playlist items.
// Next is always set when paginating, even past the end; compare against Filtered.
type Page struct {
	Items    []models.PlaylistItem
	Total    int
	Filtered int
	PageSize int
	Previous *Cursor
	Next     *Cursor
}

// InsertResult reports the outcome of InsertItems
type InsertResult struct {
	Added []models.PlaylistItem
	// After is the id of the item the block was inserted after, "" for the front
	After string
	Size  int
}

// ItemPatch holds the item fields to change; nil fields are left alone.
// Trims are re-clamped against the media duration.
type ItemPatch struct {
	Artist *string
	Title  *string
	Start  *float64
	End    *float64
}

// GetItem retrieves an item by id with its media resolved
func (s *PlaylistService) GetItem(ctx context.Context, target Target, itemID uuid.UUID) (*models.PlaylistItem, error) {
	p, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	idx := p.IndexOf(itemID)
	if idx < 0 {
		return nil, ErrPlaylistItemNotFound
	}
	return s.resolvedItem(ctx, p, idx)
}

// GetItemAt retrieves the item at a zero-based position with its media resolved
func (s *PlaylistService) GetItemAt(ctx context.Context, target Target, index int) (*models.PlaylistItem, error) {
	p, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= p.Size() {
		return nil, ErrPlaylistItemNotFound
	}
	return s.resolvedItem(ctx, p, index)
}

// ListItems filters and paginates the item sequence. Media of the returned items is
// resolved with a single query.
func (s *PlaylistService) ListItems(ctx context.Context, target Target, opts ListOptions) (*Page, error) {
	if c := opts.Pagination; c != nil && (c.Offset < 0 || c.Limit < 1) {
		return nil, fmt.Errorf("%w: offset must be >= 0 and limit >= 1", ErrValidationFailed)
	}

	p, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	filtered := FilterItems(p.Items, opts.Filter)
	page := &Page{
		Total:    p.Size(),
		Filtered: len(filtered),
		PageSize: len(filtered),
	}

	items := filtered
	if c := opts.Pagination; c != nil {
		start := min(c.Offset, len(filtered))
		end := start + min(c.Limit, len(filtered)-start)
		items = filtered[start:end]
		page.PageSize = c.Limit
		page.Next = &Cursor{Offset: saturatingAdd(c.Offset, c.Limit), Limit: c.Limit}
		page.Previous = &Cursor{Offset: max(c.Offset-c.Limit, 0), Limit: c.Limit}
	}

	page.Items = make([]models.PlaylistItem, len(items))
	copy(page.Items, items)
	if err := s.resolveMedia(ctx, page.Items); err != nil {
		return nil, err
	}

	logger.Log.Debug().
		Str("playlist_id", p.ID.String()).
		Str("filter", opts.Filter).
		Int("total", page.Total).
		Int("filtered", page.Filtered).
		Int("returned", len(page.Items)).
		Msg("Listed playlist items")

	return page, nil
}

// InsertItems resolves descriptors into items and splices them in after the item whose
// id equals after. An empty or unknown after inserts at the front.
func (s *PlaylistService) InsertItems(ctx context.Context, target Target, descriptors []Descriptor, after string) (result *InsertResult, err error) {
	defer func() { metrics.ObserveOperation("insert_items", err) }()

	p, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	added, err := s.reconciler.Resolve(ctx, descriptors)
	if err != nil {
		logger.Log.Warn().
			Err(err).
			Str("playlist_id", p.ID.String()).
			Int("item_count", len(descriptors)).
			Msg("Insert items failed: could not resolve items")
		return nil, fmt.Errorf("failed to insert items: %w", err)
	}

	work := p.Clone()
	var anchor string
	work.Items, anchor = insertAfter(work.Items, added, after)

	if err := s.commit(ctx, p, work); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Int("added_count", len(added)).
		Str("after", anchor).
		Int("size", p.Size()).
		Msg("Playlist items inserted successfully")

	return &InsertResult{Added: added, After: anchor, Size: p.Size()}, nil
}

// UpdateItem merges patch into an item and saves the playlist
func (s *PlaylistService) UpdateItem(ctx context.Context, target Target, itemID uuid.UUID, patch ItemPatch) (item *models.PlaylistItem, err error) {
	defer func() { metrics.ObserveOperation("update_item", err) }()

	p, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	idx := p.IndexOf(itemID)
	if idx < 0 {
		return nil, ErrPlaylistItemNotFound
	}
	work := p.Clone()
	if err := s.resolveMedia(ctx, work.Items[idx:idx+1]); err != nil {
		return nil, err
	}

	current := &work.Items[idx]
	if patch.Artist != nil {
		current.Artist = *patch.Artist
	}
	if patch.Title != nil {
		current.Title = *patch.Title
	}
	if patch.Start != nil || patch.End != nil {
		media := current.Media.Media()
		if media == nil {
			return nil, fmt.Errorf("failed to update item: %w", ErrMediaNotFound)
		}
		req := TrimRequest{Start: &current.Start, End: &current.End}
		if patch.Start != nil {
			req.Start = patch.Start
		}
		if patch.End != nil {
			req.End = patch.End
		}
		trim := ComputeTrim(req, media.Duration)
		current.Start, current.End = trim.Start, trim.End
	}

	if err := s.commit(ctx, p, work); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Str("item_id", itemID.String()).
		Msg("Playlist item updated successfully")

	updated := p.Items[idx]
	return &updated, nil
}

// MoveItems moves the items in ids, as one block in their current relative order, to
// just after the item with id after. uuid.Nil or an id not left in the playlist moves
// them to the front.
func (s *PlaylistService) MoveItems(ctx context.Context, target Target, ids []uuid.UUID, after uuid.UUID) (p *models.Playlist, err error) {
	defer func() { metrics.ObserveOperation("move_items", err) }()

	p, err = s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	work := p.Clone()
	var moved []models.PlaylistItem
	work.Items, moved = moveAfter(work.Items, ids, after)

	if err := s.commit(ctx, p, work); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Int("moved_count", len(moved)).
		Str("after", after.String()).
		Msg("Playlist items moved successfully")

	return p, nil
}

// RemoveItems drops the items in ids. Ids not in the playlist are ignored.
func (s *PlaylistService) RemoveItems(ctx context.Context, target Target, ids []uuid.UUID) (p *models.Playlist, err error) {
	defer func() { metrics.ObserveOperation("remove_items", err) }()

	p, err = s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	items, removed := removeIDs(p.Items, ids)
	if removed == 0 {
		return p, nil
	}
	work := p.Clone()
	work.Items = items

	if err := s.commit(ctx, p, work); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("playlist_id", p.ID.String()).
		Int("removed_count", removed).
		Int("size", p.Size()).
		Msg("Playlist items removed successfully")

	return p, nil
}

// resolvedItem returns a copy of the item at idx with its media loaded
func (s *PlaylistService) resolvedItem(ctx context.Context, p *models.Playlist, idx int) (*models.PlaylistItem, error) {
	item := p.Items[idx]
	items := []models.PlaylistItem{item}
	if err := s.resolveMedia(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// resolveMedia loads the media of unresolved items in one query. Items whose media
// record no longer exists stay unresolved.
func (s *PlaylistService) resolveMedia(ctx context.Context, items []models.PlaylistItem) error {
	var pending []models.PlaylistItem
	for _, item := range items {
		if !item.Media.Resolved() {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	found, err := s.repos.Media.GetByIDs(ctx, models.MediaIDs(pending))
	if err != nil {
		logger.Log.Error().
			Err(err).
			Int("media_count", len(pending)).
			Msg("Failed to resolve playlist item media")
		return fmt.Errorf("failed to resolve media: %w", err)
	}

	for i := range items {
		if !items[i].Media.Resolved() {
			items[i].Media.Resolve(found[items[i].Media.ID])
		}
	}
	return nil
}

// saturatingAdd adds two non-negative ints, stopping at math.MaxInt
func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
