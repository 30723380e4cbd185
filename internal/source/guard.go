package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/metrics"
	"golang.org/x/time/rate"
)

// GuardOptions configures Guard
type GuardOptions struct {
	// RateLimit is the sustained number of calls per second
	RateLimit float64
	Burst     int
	// Timeout bounds each upstream call
	Timeout time.Duration

	// MaxRequests is the number of trial calls let through while half-open
	MaxRequests uint32
	// Interval is the cyclic period after which closed-state counts are cleared
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before going half-open
	OpenTimeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold uint32
}

// DefaultGuardOptions returns conservative limits for third-party APIs
func DefaultGuardOptions() GuardOptions {
	return GuardOptions{
		RateLimit:        10,
		Burst:            5,
		Timeout:          10 * time.Second,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// Guarded wraps a Source with a rate limiter, a per-call timeout and a circuit breaker.
// Lookups are recorded in the source metrics.
type Guarded struct {
	source  Source
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	log     zerolog.Logger
}

// Guard wraps s
func Guard(s Source, opts GuardOptions) *Guarded {
	name := s.Name()
	log := logger.Component("source").With().Str("source", name).Logger()

	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = DefaultGuardOptions().FailureThreshold
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Unknown ids and cancelled callers say nothing about the upstream's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SourceBreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Media source circuit breaker changed state")
		},
	})
	metrics.SourceBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Guarded{
		source:  s,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
		timeout: opts.Timeout,
		log:     log,
	}
}

// Name returns the wrapped source's name
func (g *Guarded) Name() string {
	return g.source.Name()
}

// State returns the current circuit breaker state
func (g *Guarded) State() gobreaker.State {
	return g.breaker.State()
}

// GetOne looks up a single id through the guard
func (g *Guarded) GetOne(ctx context.Context, sourceID string) (*Metadata, error) {
	result, err := g.call(ctx, 1, func(ctx context.Context) (interface{}, error) {
		return g.source.GetOne(ctx, sourceID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Metadata), nil
}

// Get looks up many ids through the guard as a single call
func (g *Guarded) Get(ctx context.Context, sourceIDs []string) ([]Metadata, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	result, err := g.call(ctx, len(sourceIDs), func(ctx context.Context) (interface{}, error) {
		return g.source.Get(ctx, sourceIDs)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Metadata), nil
}

func (g *Guarded) call(ctx context.Context, idCount int, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	name := g.source.Name()

	if err := g.limiter.Wait(ctx); err != nil {
		metrics.SourceLookupsTotal.WithLabelValues(name, metrics.StatusError).Inc()
		return nil, fmt.Errorf("%w: %s: rate limit wait: %v", ErrUnavailable, name, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	metrics.SourceLookupIDs.WithLabelValues(name).Add(float64(idCount))
	start := time.Now()
	result, err := g.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	metrics.SourceLookupDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SourceLookupsTotal.WithLabelValues(name, metrics.StatusError).Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
		}
		if !errors.Is(err, ErrNotFound) {
			g.log.Error().
				Err(err).
				Int("id_count", idCount).
				Msg("Media source lookup failed")
		}
		return nil, err
	}

	metrics.SourceLookupsTotal.WithLabelValues(name, metrics.StatusSuccess).Inc()
	g.log.Debug().
		Int("id_count", idCount).
		Dur("duration", time.Since(start)).
		Msg("Media source lookup completed")
	return result, nil
}
