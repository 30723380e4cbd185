package playlist

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/models"
)

// Matches reports whether the item's artist or title contains filter, ignoring case.
// An empty filter matches everything.
func Matches(item *models.PlaylistItem, filter string) bool {
	if filter == "" {
		return true
	}
	needle := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(item.Artist), needle) ||
		strings.Contains(strings.ToLower(item.Title), needle)
}

// FilterItems returns the items matching filter, in order
func FilterItems(items []models.PlaylistItem, filter string) []models.PlaylistItem {
	if filter == "" {
		return items
	}
	matched := make([]models.PlaylistItem, 0, len(items))
	for i := range items {
		if Matches(&items[i], filter) {
			matched = append(matched, items[i])
		}
	}
	return matched
}

type idSet map[uuid.UUID]struct{}

func newIDSet(ids []uuid.UUID) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// indexOfString finds the item whose id string equals id, or -1
func indexOfString(items []models.PlaylistItem, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if items[i].ID.String() == id {
			return i
		}
	}
	return -1
}
