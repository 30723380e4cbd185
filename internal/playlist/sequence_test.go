package playlist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stwalsh4118/setlist/internal/models"
)

func makeItems(titles ...string) []models.PlaylistItem {
	items := make([]models.PlaylistItem, len(titles))
	for i, title := range titles {
		items[i] = models.PlaylistItem{ID: uuid.New(), Media: models.UnresolvedRef(uuid.New()), Title: title}
	}
	return items
}

func titles(items []models.PlaylistItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestMatches(t *testing.T) {
	a := models.PlaylistItem{Artist: "Rock", Title: "SongX"}
	b := models.PlaylistItem{Artist: "Pop", Title: "SongY"}
	items := []models.PlaylistItem{a, b}

	assert.Len(t, FilterItems(items, "song"), 2)
	assert.Equal(t, []models.PlaylistItem{a}, FilterItems(items, "rock"))
	assert.Equal(t, []models.PlaylistItem{b}, FilterItems(items, "GY"))
	assert.Empty(t, FilterItems(items, "jazz"))
	assert.Len(t, FilterItems(items, ""), 2)
	assert.True(t, Matches(&a, "ROCK"))
}

func TestInsertAfter(t *testing.T) {
	items := makeItems("a", "b", "c")
	added := makeItems("x", "y")

	got, anchor := insertAfter(items, added, items[1].ID.String())
	assert.Equal(t, []string{"a", "b", "x", "y", "c"}, titles(got))
	assert.Equal(t, items[1].ID.String(), anchor)

	got, anchor = insertAfter(items, added, items[2].ID.String())
	assert.Equal(t, []string{"a", "b", "c", "x", "y"}, titles(got))
	assert.Equal(t, items[2].ID.String(), anchor)

	got, anchor = insertAfter(items, added, "")
	assert.Equal(t, []string{"x", "y", "a", "b", "c"}, titles(got))
	assert.Empty(t, anchor)

	got, anchor = insertAfter(items, added, uuid.NewString())
	assert.Equal(t, []string{"x", "y", "a", "b", "c"}, titles(got))
	assert.Empty(t, anchor)

	assert.Equal(t, []string{"a", "b", "c"}, titles(items), "input is not modified")
}

func TestMoveAfter(t *testing.T) {
	items := makeItems("a", "b", "c", "d", "e")

	got, moved := moveAfter(items, []uuid.UUID{items[3].ID, items[0].ID}, items[4].ID)
	assert.Equal(t, []string{"b", "c", "e", "a", "d"}, titles(got))
	assert.Equal(t, []string{"a", "d"}, titles(moved))

	got, _ = moveAfter(items, []uuid.UUID{items[4].ID}, uuid.Nil)
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, titles(got))

	// after id is itself moved: block goes to the front
	got, _ = moveAfter(items, []uuid.UUID{items[1].ID, items[2].ID}, items[2].ID)
	assert.Equal(t, []string{"b", "c", "a", "d", "e"}, titles(got))

	got, moved = moveAfter(items, []uuid.UUID{uuid.New()}, items[0].ID)
	assert.Equal(t, titles(items), titles(got))
	assert.Empty(t, moved)
}

func TestMoveAfter_InPlaceIsNoop(t *testing.T) {
	items := makeItems("a", "b", "c", "d")

	got, _ := moveAfter(items, []uuid.UUID{items[2].ID, items[3].ID}, items[1].ID)
	assert.Equal(t, titles(items), titles(got))

	got, _ = moveAfter(items, []uuid.UUID{items[0].ID}, uuid.Nil)
	assert.Equal(t, titles(items), titles(got))
	assert.Len(t, got, len(items))
}

func TestRemoveIDs(t *testing.T) {
	items := makeItems("a", "b", "c")
	ids := []uuid.UUID{items[0].ID, uuid.New(), items[2].ID}

	once, removed := removeIDs(items, ids)
	assert.Equal(t, []string{"b"}, titles(once))
	assert.Equal(t, 2, removed)

	twice, removed := removeIDs(once, ids)
	assert.Equal(t, titles(once), titles(twice))
	assert.Zero(t, removed)

	assert.Len(t, items, 3)
}
