package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stwalsh4118/setlist/internal/config"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/server"
	"github.com/stwalsh4118/setlist/internal/source"
	"github.com/stwalsh4118/setlist/internal/source/spotify"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)
	logger.Log.Info().Msg("Setlist playlist service starting")

	database, err := db.Open(cfg.Database.Path, db.Options{
		ConnectionTimeout: cfg.Database.ConnectionTimeout,
		EnableWAL:         cfg.Database.EnableWAL,
	})
	if err != nil {
		logger.Log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources, err := buildSources(ctx, &cfg.Sources)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to configure media sources")
	}

	srv := server.New(cfg, database, sources)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Error().Err(err).Msg("HTTP server failed")
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server shutdown error")
	}
}

// buildSources registers every configured media source behind a rate limiter and breaker
func buildSources(ctx context.Context, cfg *config.SourcesConfig) (*source.Registry, error) {
	registry := source.NewRegistry()
	guard := source.GuardOptions{
		RateLimit:        cfg.RateLimit,
		Burst:            cfg.Burst,
		Timeout:          cfg.Timeout,
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}

	if cfg.Spotify.Enabled() {
		sp, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			BatchSize:    cfg.Spotify.BatchSize,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(source.Guard(sp, guard))
		logger.Log.Info().Str("source", sp.Name()).Msg("Media source registered")
	} else {
		logger.Log.Warn().Msg("No media sources configured; bulk inserts of unknown media will fail")
	}

	return registry, nil
}
