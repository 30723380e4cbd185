package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist("user-1", "Road Trip")

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "user-1", p.Author)
	assert.Equal(t, "Road Trip", p.Name)
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
	assert.False(t, p.Shared)
	assert.False(t, p.NSFW)
	assert.False(t, p.NeedsUpgrade())
	assert.Equal(t, 0, p.Size())
}

func legacyRecord(mediaID uuid.UUID, title string) *LegacyPlaylistItem {
	return &LegacyPlaylistItem{
		ID:      uuid.New(),
		MediaID: mediaID,
		Artist:  "Artist",
		Title:   title,
		Start:   1,
		End:     10,
	}
}

func TestApplyLegacyItems_FollowsLegacyOrder(t *testing.T) {
	mediaID := uuid.New()
	a := legacyRecord(mediaID, "A")
	b := legacyRecord(mediaID, "B")
	c := legacyRecord(mediaID, "C")

	p := &Playlist{
		ID:            uuid.New(),
		SchemaVersion: LegacySchemaVersion,
		LegacyMedia:   []uuid.UUID{c.ID, a.ID, b.ID},
	}

	missing := p.ApplyLegacyItems([]*LegacyPlaylistItem{a, b, c})

	assert.Empty(t, missing)
	require.Equal(t, 3, p.Size())
	assert.Equal(t, c.ID, p.Items[0].ID)
	assert.Equal(t, a.ID, p.Items[1].ID)
	assert.Equal(t, b.ID, p.Items[2].ID)
	assert.Equal(t, mediaID, p.Items[0].Media.ID)
	assert.False(t, p.Items[0].Media.Resolved())
	assert.Nil(t, p.LegacyMedia)
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
}

func TestApplyLegacyItems_SkipsMissingRecords(t *testing.T) {
	a := legacyRecord(uuid.New(), "A")
	gone := uuid.New()

	p := &Playlist{LegacyMedia: []uuid.UUID{a.ID, gone}}

	missing := p.ApplyLegacyItems([]*LegacyPlaylistItem{a})

	assert.Equal(t, []uuid.UUID{gone}, missing)
	require.Equal(t, 1, p.Size())
	assert.Equal(t, a.ID, p.Items[0].ID)
}

func TestApplyLegacyItems_Idempotent(t *testing.T) {
	a := legacyRecord(uuid.New(), "A")
	p := &Playlist{SchemaVersion: LegacySchemaVersion, LegacyMedia: []uuid.UUID{a.ID}}

	p.ApplyLegacyItems([]*LegacyPlaylistItem{a})
	first := append([]PlaylistItem(nil), p.Items...)

	missing := p.ApplyLegacyItems(nil)

	assert.Nil(t, missing)
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
	assert.Equal(t, first, p.Items)
}

func TestIndexOf(t *testing.T) {
	m := NewMedia("spotify", "abc", "Artist", "Title", 200)
	first := NewPlaylistItem(m, m.Artist, m.Title, 0, 200)
	second := NewPlaylistItem(m, m.Artist, m.Title, 0, 200)
	p := &Playlist{Items: []PlaylistItem{first, second}}

	assert.Equal(t, 0, p.IndexOf(first.ID))
	assert.Equal(t, 1, p.IndexOf(second.ID))
	assert.Equal(t, -1, p.IndexOf(uuid.New()))
}

func TestMediaIDs_Distinct(t *testing.T) {
	m1 := NewMedia("spotify", "1", "", "", 10)
	m2 := NewMedia("spotify", "2", "", "", 10)
	items := []PlaylistItem{
		NewPlaylistItem(m1, "", "", 0, 10),
		NewPlaylistItem(m2, "", "", 0, 10),
		NewPlaylistItem(m1, "", "", 0, 10),
	}

	assert.Equal(t, []uuid.UUID{m1.ID, m2.ID}, MediaIDs(items))
}

func TestMediaRef_PersistsOnlyID(t *testing.T) {
	m := NewMedia("spotify", "abc", "Artist", "Title", 200)
	item := NewPlaylistItem(m, "Artist", "Title", 0, 200)
	require.True(t, item.Media.Resolved())

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded PlaylistItem
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, m.ID, decoded.Media.ID)
	assert.False(t, decoded.Media.Resolved())
	assert.Nil(t, decoded.Media.Media())

	decoded.Media.Resolve(NewMedia("spotify", "other", "", "", 1))
	assert.False(t, decoded.Media.Resolved(), "record with another id must not resolve the ref")

	decoded.Media.Resolve(m)
	assert.True(t, decoded.Media.Resolved())
	assert.Equal(t, "Title", decoded.Media.Media().Title)
}

func TestNewMedia_ClampsNegativeDuration(t *testing.T) {
	negative := NewMedia("spotify", "neg", "", "", -4)
	assert.Equal(t, float64(0), negative.Duration)
}

func TestSourceKey_DistinguishesSeparators(t *testing.T) {
	a := NewMedia("yt:x", "1", "", "", 0)
	b := NewMedia("yt", "x:1", "", "", 0)
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, SourceKey{SourceType: "yt", SourceID: "x:1"}, b.Key())
	assert.NotEqual(t, a.Key().String(), b.Key().String())
}

func TestPlaylistClone_DoesNotShareItems(t *testing.T) {
	p := NewPlaylist("owner", "Original")
	p.Items = []PlaylistItem{NewPlaylistItem(NewMedia("spotify", "a", "", "A", 10), "", "A", 0, 10)}
	p.LegacyMedia = []uuid.UUID{uuid.New()}

	c := p.Clone()
	c.Items[0].Title = "Changed"
	c.LegacyMedia[0] = uuid.Nil
	c.Name = "Copy"

	assert.Equal(t, "A", p.Items[0].Title)
	assert.NotEqual(t, uuid.Nil, p.LegacyMedia[0])
	assert.Equal(t, "Original", p.Name)
}

func TestPlaylistItem_DefaultFrom(t *testing.T) {
	m := NewMedia("spotify", "a", "Media Artist", "Media Title", 10)

	item := PlaylistItem{Title: "Own Title"}
	item.DefaultFrom(m)
	assert.Equal(t, "Media Artist", item.Artist)
	assert.Equal(t, "Own Title", item.Title)

	untouched := PlaylistItem{}
	untouched.DefaultFrom(nil)
	assert.Empty(t, untouched.Artist)
}
