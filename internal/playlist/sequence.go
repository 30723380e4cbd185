package playlist

import (
	"slices"

	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/models"
)

// insertAfter splices added into items right after the item whose id string is after.
// With no such item the block goes to the front. Returns the new sequence and the
// anchor id actually used ("" for the front).
func insertAfter(items []models.PlaylistItem, added []models.PlaylistItem, after string) ([]models.PlaylistItem, string) {
	idx := indexOfString(items, after)
	anchor := ""
	if idx >= 0 {
		anchor = items[idx].ID.String()
	}
	return slices.Insert(slices.Clone(items), idx+1, added...), anchor
}

// moveAfter pulls the items in ids out of the sequence and reinserts them as one block
// after the remaining item with id after (or at the front). Relative order is kept in
// both the moved and the remaining items.
func moveAfter(items []models.PlaylistItem, ids []uuid.UUID, after uuid.UUID) (result []models.PlaylistItem, moved []models.PlaylistItem) {
	set := newIDSet(ids)
	rest := make([]models.PlaylistItem, 0, len(items))
	for _, item := range items {
		if set.has(item.ID) {
			moved = append(moved, item)
		} else {
			rest = append(rest, item)
		}
	}

	idx := -1
	if after != uuid.Nil {
		idx = slices.IndexFunc(rest, func(item models.PlaylistItem) bool { return item.ID == after })
	}
	return slices.Insert(rest, idx+1, moved...), moved
}

// removeIDs drops every item whose id is in ids. Unknown ids are ignored.
func removeIDs(items []models.PlaylistItem, ids []uuid.UUID) ([]models.PlaylistItem, int) {
	set := newIDSet(ids)
	kept := slices.DeleteFunc(slices.Clone(items), func(item models.PlaylistItem) bool {
		return set.has(item.ID)
	})
	return kept, len(items) - len(kept)
}
