// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/setlist/internal/api"
	"github.com/stwalsh4118/setlist/internal/config"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/middleware"
	"github.com/stwalsh4118/setlist/internal/playlist"
	"github.com/stwalsh4118/setlist/internal/source"
)

// Server represents the HTTP server
type Server struct {
	config          *config.Config
	db              *db.DB
	repos           *db.Repositories
	sources         *source.Registry
	playlistService *playlist.PlaylistService
	router          *gin.Engine
	server          *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB, sources *source.Registry) *Server {
	repos := db.NewRepositories(database)
	playlistService := playlist.NewPlaylistService(repos, sources)

	s := &Server{
		config:          cfg,
		db:              database,
		repos:           repos,
		sources:         sources,
		playlistService: playlistService,
	}
	s.setupRouter()
	return s
}

// Router returns the configured HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger()) // zerolog request logger
	s.router.Use(middleware.Metrics())       // prometheus request metrics
	s.router.Use(gin.Recovery())
	s.router.Use(cors.New(corsConfig()))

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.sources)
	api.SetupPlaylistRoutes(apiGroup, s.playlistService, api.PlaylistHandlerOptions{
		DefaultPageSize: s.config.Playlists.DefaultPageSize,
		MaxPageSize:     s.config.Playlists.MaxPageSize,
		RequestTimeout:  s.config.Server.RequestTimeout,
	})
}

// corsConfig allows all origins and the user id header
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders(middleware.UserHeader)
	return cfg
}

// Start starts the HTTP server; it blocks until the server stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Strs("sources", s.sources.Names()).
		Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
