package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/setlist/internal/logger"
	"github.com/stwalsh4118/setlist/internal/playlist"
	"github.com/stwalsh4118/setlist/internal/source"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps playlist service errors to HTTP responses
func writeServiceError(c *gin.Context, err error, action string) {
	status, response := http.StatusInternalServerError, ErrorResponse{
		Error:   action + "_failed",
		Message: "Failed to " + action,
	}

	switch {
	case playlist.IsPlaylistNotFound(err):
		status, response = http.StatusNotFound, ErrorResponse{Error: "playlist_not_found", Message: "Playlist not found"}
	case playlist.IsPlaylistItemNotFound(err):
		status, response = http.StatusNotFound, ErrorResponse{Error: "item_not_found", Message: "Playlist item not found"}
	case playlist.IsMediaNotFound(err):
		status, response = http.StatusNotFound, ErrorResponse{Error: "media_not_found", Message: err.Error()}
	case playlist.IsValidationFailed(err):
		status, response = http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Message: err.Error()}
	case source.IsUnknownSource(err):
		status, response = http.StatusBadRequest, ErrorResponse{Error: "unknown_source", Message: err.Error()}
	case playlist.IsRetryable(err):
		status, response = http.StatusServiceUnavailable, ErrorResponse{Error: "retry_later", Message: "Temporary failure, please try again later"}
	}

	if status >= http.StatusInternalServerError {
		logger.Log.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("Failed to " + action)
	}

	c.JSON(status, response)
}
