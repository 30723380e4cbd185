package playlist

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/models"
	"github.com/stwalsh4118/setlist/internal/source"
)

type resolverCall struct {
	sourceType string
	ids        []string
}

// fakeResolver serves metadata from a fixed catalogue and records every call
type fakeResolver struct {
	mu      sync.Mutex
	catalog map[models.SourceKey]source.Metadata
	calls   []resolverCall
	err     error
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{catalog: make(map[models.SourceKey]source.Metadata)}
}

func (f *fakeResolver) add(sourceType, sourceID, artist, title string, duration float64) {
	f.catalog[models.SourceKey{SourceType: sourceType, SourceID: sourceID}] = source.Metadata{
		SourceID: sourceID,
		Artist:   artist,
		Title:    title,
		Duration: duration,
	}
}

func (f *fakeResolver) Get(ctx context.Context, sourceType string, ids []string) ([]source.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, resolverCall{sourceType: sourceType, ids: slices.Clone(ids)})
	if f.err != nil {
		return nil, f.err
	}
	var out []source.Metadata
	for _, id := range ids {
		if md, ok := f.catalog[models.SourceKey{SourceType: sourceType, SourceID: id}]; ok {
			out = append(out, md)
		}
	}
	return out, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// setupTestService creates a service with a test database and a fake resolver
func setupTestService(t *testing.T) (*PlaylistService, *db.Repositories, *fakeResolver) {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(sqlDB, "file://../../migrations"))

	repos := db.NewRepositories(database)
	resolver := newFakeResolver()
	return NewPlaylistService(repos, resolver), repos, resolver
}

func descriptor(sourceType, sourceID string) Descriptor {
	return Descriptor{SourceType: sourceType, SourceID: SourceID(sourceID)}
}
