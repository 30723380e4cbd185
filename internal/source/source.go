// Package source resolves external (sourceType, sourceID) pairs into media metadata.
//
// Each media provider implements Source. A Registry maps source types to providers and
// is what the playlist reconciler talks to. Providers are usually wrapped with Guard so
// that slow or rate-limited upstream APIs are protected by a limiter and a circuit breaker.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownSource indicates no provider is registered for a source type
	ErrUnknownSource = errors.New("unknown media source")

	// ErrNotFound indicates the provider has no media for a source id
	ErrNotFound = errors.New("media not found at source")

	// ErrUnavailable indicates the provider cannot be reached right now; retry later
	ErrUnavailable = errors.New("media source unavailable")
)

// Metadata describes one piece of media as reported by its provider
type Metadata struct {
	SourceID string
	Artist   string
	Title    string
	Duration float64 // seconds
}

// Source is a media provider for one source type
type Source interface {
	// Name returns the source type served by this provider (e.g. "spotify")
	Name() string
	// GetOne looks up a single source id. Returns ErrNotFound if the provider has no such media.
	GetOne(ctx context.Context, sourceID string) (*Metadata, error)
	// Get looks up many source ids at once. Ids unknown to the provider are omitted
	// from the result rather than reported as errors.
	Get(ctx context.Context, sourceIDs []string) ([]Metadata, error)
}

// Registry maps source types to providers
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates a registry holding the given sources
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds or replaces the provider for s.Name()
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Lookup returns the provider for a source type
func (r *Registry) Lookup(sourceType string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[sourceType]
	return s, ok
}

// Names returns the registered source types, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get looks up many ids of one source type
func (r *Registry) Get(ctx context.Context, sourceType string, sourceIDs []string) ([]Metadata, error) {
	s, ok := r.Lookup(sourceType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceType)
	}
	return s.Get(ctx, sourceIDs)
}

// GetOne looks up a single id of one source type
func (r *Registry) GetOne(ctx context.Context, sourceType, sourceID string) (*Metadata, error) {
	s, ok := r.Lookup(sourceType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceType)
	}
	return s.GetOne(ctx, sourceID)
}

// IsUnknownSource checks if the error is an unknown source error
func IsUnknownSource(err error) bool {
	return errors.Is(err, ErrUnknownSource)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable checks if the error is a source unavailable error
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
