package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/source"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status   string                 `json:"status"`
	Database string                 `json:"database"`
	Sources  []string               `json:"sources"`
	Time     string                 `json:"time"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db      *db.DB
	media   *db.MediaRepository
	sources *source.Registry
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(database *db.DB, sources *source.Registry) *HealthHandler {
	return &HealthHandler{db: database, media: db.NewMediaRepository(database), sources: sources}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:  "ok",
		Sources: []string{},
		Time:    time.Now().UTC().Format(time.RFC3339),
		Details: make(map[string]interface{}),
	}
	if h.sources != nil {
		response.Sources = h.sources.Names()
	}

	// Check database connectivity
	if err := h.db.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "unhealthy"
		response.Details["database_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Database = "healthy"
	if count, err := h.media.Count(ctx); err == nil {
		response.Details["media_count"] = count
	}
	c.JSON(http.StatusOK, response)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, database *db.DB, sources *source.Registry) {
	handler := NewHealthHandler(database, sources)
	apiGroup.GET("/health", handler.Check)
}
