package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/setlist/internal/config"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/middleware"
	"github.com/stwalsh4118/setlist/internal/source"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate("file://../../migrations"))

	cfg := &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: time.Second},
		Logging:   config.LoggingConfig{Level: "info"},
		Playlists: config.PlaylistsConfig{DefaultPageSize: 10, MaxPageSize: 20},
	}
	return New(cfg, database, source.NewRegistry())
}

func TestServer_Routes(t *testing.T) {
	s := setupTestServer(t)

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/playlists", nil)
	req.Header.Set(middleware.UserHeader, "alice")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"playlists": []}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "setlist_http_requests_total")
}

func TestServer_CORSAllowsUserHeader(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/playlists", nil)
	req.Header.Set("Origin", "http://frontend.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", middleware.UserHeader)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(middleware.UserHeader))
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	s := setupTestServer(t)
	assert.NoError(t, s.Shutdown(context.Background()))
}
