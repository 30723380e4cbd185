// Package spotify implements a media source backed by the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stwalsh4118/setlist/internal/source"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// SourceType is the source type served by this provider
const SourceType = "spotify"

// MaxBatchSize is the largest number of ids the tracks endpoint accepts per request
const MaxBatchSize = 50

// Config holds client credentials and batching for the Spotify source
type Config struct {
	ClientID     string
	ClientSecret string
	BatchSize    int
}

// Source looks up Spotify tracks
type Source struct {
	client    *spotify.Client
	batchSize int
}

// New creates a Spotify source authenticated with the client credentials flow
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	client := spotify.New(creds.Client(ctx))
	return NewWithClient(client, cfg.BatchSize), nil
}

// NewWithClient creates a Spotify source using an existing API client
func NewWithClient(client *spotify.Client, batchSize int) *Source {
	if batchSize < 1 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}
	return &Source{client: client, batchSize: batchSize}
}

// Name returns "spotify"
func (s *Source) Name() string {
	return SourceType
}

// GetOne fetches a single track
func (s *Source) GetOne(ctx context.Context, sourceID string) (*source.Metadata, error) {
	track, err := s.client.GetTrack(ctx, spotify.ID(sourceID))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: spotify track %s", source.ErrNotFound, sourceID)
		}
		return nil, fmt.Errorf("failed to get spotify track %s: %w", sourceID, err)
	}
	if track == nil {
		return nil, fmt.Errorf("%w: spotify track %s", source.ErrNotFound, sourceID)
	}
	md := toMetadata(track)
	return &md, nil
}

// Get fetches tracks in batches. Ids Spotify does not know are skipped.
func (s *Source) Get(ctx context.Context, sourceIDs []string) ([]source.Metadata, error) {
	results := make([]source.Metadata, 0, len(sourceIDs))

	for start := 0; start < len(sourceIDs); start += s.batchSize {
		end := min(start+s.batchSize, len(sourceIDs))

		ids := make([]spotify.ID, 0, end-start)
		for _, id := range sourceIDs[start:end] {
			ids = append(ids, spotify.ID(id))
		}

		tracks, err := s.client.GetTracks(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to get spotify tracks: %w", err)
		}

		for _, track := range tracks {
			if track == nil {
				continue
			}
			results = append(results, toMetadata(track))
		}
	}

	return results, nil
}

func toMetadata(track *spotify.FullTrack) source.Metadata {
	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	return source.Metadata{
		SourceID: track.ID.String(),
		Artist:   strings.Join(artists, ", "),
		Title:    track.Name,
		Duration: float64(track.Duration) / 1000,
	}
}

func isNotFound(err error) bool {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Status == http.StatusNotFound
	}
	return false
}
