package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/setlist/internal/middleware"
	"github.com/stwalsh4118/setlist/internal/models"
	"github.com/stwalsh4118/setlist/internal/playlist"
)

// Request/Response DTOs

// CreatePlaylistRequest represents a request to create a new playlist
type CreatePlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Shared      bool   `json:"shared,omitempty"`
	NSFW        bool   `json:"nsfw,omitempty"`
}

// UpdatePlaylistRequest represents a partial update of playlist metadata
type UpdatePlaylistRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Shared      *bool   `json:"shared,omitempty"`
	NSFW        *bool   `json:"nsfw,omitempty"`
}

// PlaylistResponse represents a playlist in API responses
type PlaylistResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Shared      bool      `json:"shared"`
	NSFW        bool      `json:"nsfw"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaylistListResponse represents a list of playlists
type PlaylistListResponse struct {
	Playlists []*PlaylistResponse `json:"playlists"`
}

// PlaylistItemResponse represents a playlist item, with media details when resolved
type PlaylistItemResponse struct {
	ID        string        `json:"id"`
	MediaID   string        `json:"media_id"`
	Artist    string        `json:"artist"`
	Title     string        `json:"title"`
	Start     float64       `json:"start"`
	End       float64       `json:"end"`
	CreatedAt time.Time     `json:"created_at"`
	Media     *models.Media `json:"media,omitempty"`
}

// ItemPageResponse represents one page of playlist items
type ItemPageResponse struct {
	Items    []*PlaylistItemResponse `json:"items"`
	Total    int                     `json:"total"`
	Filtered int                     `json:"filtered"`
	PageSize int                     `json:"page_size"`
	Previous *playlist.Cursor        `json:"previous,omitempty"`
	Next     *playlist.Cursor        `json:"next,omitempty"`
}

// InsertItemsRequest represents a bulk insert of items from media sources
type InsertItemsRequest struct {
	Items []playlist.Descriptor `json:"items" binding:"required,min=1"`
	After *string               `json:"after"`
}

// InsertItemsResponse reports the inserted items and where they went
type InsertItemsResponse struct {
	Items        []*PlaylistItemResponse `json:"items"`
	After        *string                 `json:"after"`
	PlaylistSize int                     `json:"playlist_size"`
}

// MoveItemsRequest represents a request to move items after another item
type MoveItemsRequest struct {
	Items []string `json:"items" binding:"required,min=1"`
	After *string  `json:"after"`
}

// RemoveItemsRequest represents a request to remove items
type RemoveItemsRequest struct {
	Items []string `json:"items" binding:"required,min=1"`
}

// UpdateItemRequest represents a partial update of a playlist item
type UpdateItemRequest struct {
	Artist *string  `json:"artist,omitempty"`
	Title  *string  `json:"title,omitempty"`
	Start  *float64 `json:"start,omitempty"`
	End    *float64 `json:"end,omitempty"`
}

// PlaylistHandlerOptions configures paging and timeouts
type PlaylistHandlerOptions struct {
	DefaultPageSize int
	MaxPageSize     int
	RequestTimeout  time.Duration
}

// PlaylistHandler handles playlist-related API requests
type PlaylistHandler struct {
	service *playlist.PlaylistService
	opts    PlaylistHandlerOptions
}

// NewPlaylistHandler creates a new playlist handler instance
func NewPlaylistHandler(service *playlist.PlaylistService, opts PlaylistHandlerOptions) *PlaylistHandler {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = 50
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	return &PlaylistHandler{service: service, opts: opts}
}

// toPlaylistResponse converts a playlist model to API response format
func toPlaylistResponse(p *models.Playlist) *PlaylistResponse {
	return &PlaylistResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Author:      p.Author,
		Shared:      p.Shared,
		NSFW:        p.NSFW,
		Size:        p.Size(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// toPlaylistItemResponse converts a playlist item to API response format
func toPlaylistItemResponse(item *models.PlaylistItem) *PlaylistItemResponse {
	return &PlaylistItemResponse{
		ID:        item.ID.String(),
		MediaID:   item.Media.ID.String(),
		Artist:    item.Artist,
		Title:     item.Title,
		Start:     item.Start,
		End:       item.End,
		CreatedAt: item.CreatedAt,
		Media:     item.Media.Media(),
	}
}

func toPlaylistItemResponses(items []models.PlaylistItem) []*PlaylistItemResponse {
	responses := make([]*PlaylistItemResponse, len(items))
	for i := range items {
		responses[i] = toPlaylistItemResponse(&items[i])
	}
	return responses
}

func (h *PlaylistHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
}

// owned loads the playlist named by :id if the caller owns it. On failure the error
// response has been written and ok is false.
func (h *PlaylistHandler) owned(ctx context.Context, c *gin.Context) (*models.Playlist, bool) {
	id, ok := parseUUIDParam(c, "id", "invalid_id", "Invalid playlist ID format")
	if !ok {
		return nil, false
	}
	p, err := h.service.GetOwned(ctx, middleware.UserID(c), id)
	if err != nil {
		writeServiceError(c, err, "get_playlist")
		return nil, false
	}
	return p, true
}

// readable is like owned but also admits playlists their author has shared
func (h *PlaylistHandler) readable(ctx context.Context, c *gin.Context) (*models.Playlist, bool) {
	id, ok := parseUUIDParam(c, "id", "invalid_id", "Invalid playlist ID format")
	if !ok {
		return nil, false
	}
	p, err := h.service.GetByID(ctx, id)
	if err == nil && p.Author != middleware.UserID(c) && !p.Shared {
		err = playlist.ErrPlaylistNotFound
	}
	if err != nil {
		writeServiceError(c, err, "get_playlist")
		return nil, false
	}
	return p, true
}

func parseUUIDParam(c *gin.Context, name, code, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, code, message)
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDs(raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// CreatePlaylist handles POST /api/playlists
func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	var req CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, err := h.service.Create(ctx, middleware.UserID(c), playlist.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Shared:      req.Shared,
		NSFW:        req.NSFW,
	})
	if err != nil {
		writeServiceError(c, err, "create_playlist")
		return
	}

	c.JSON(http.StatusCreated, toPlaylistResponse(p))
}

// ListPlaylists handles GET /api/playlists
func (h *PlaylistHandler) ListPlaylists(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	playlists, err := h.service.ListOwned(ctx, middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err, "list_playlists")
		return
	}

	response := PlaylistListResponse{Playlists: make([]*PlaylistResponse, len(playlists))}
	for i, p := range playlists {
		response.Playlists[i] = toPlaylistResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

// GetPlaylist handles GET /api/playlists/:id
func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.readable(ctx, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toPlaylistResponse(p))
}

// UpdatePlaylist handles PATCH /api/playlists/:id
func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	var req UpdatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	updated, err := h.service.Update(ctx, playlist.Loaded(p), playlist.Patch{
		Name:        req.Name,
		Description: req.Description,
		Shared:      req.Shared,
		NSFW:        req.NSFW,
	})
	if err != nil {
		writeServiceError(c, err, "update_playlist")
		return
	}

	c.JSON(http.StatusOK, toPlaylistResponse(updated))
}

// DeletePlaylist handles DELETE /api/playlists/:id
func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, playlist.Loaded(p)); err != nil {
		writeServiceError(c, err, "delete_playlist")
		return
	}

	c.Status(http.StatusNoContent)
}

// ShufflePlaylist handles POST /api/playlists/:id/shuffle
func (h *PlaylistHandler) ShufflePlaylist(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	shuffled, err := h.service.Shuffle(ctx, playlist.Loaded(p), nil)
	if err != nil {
		writeServiceError(c, err, "shuffle_playlist")
		return
	}

	c.JSON(http.StatusOK, toPlaylistResponse(shuffled))
}

// ListItems handles GET /api/playlists/:id/items
func (h *PlaylistHandler) ListItems(c *gin.Context) {
	opts := playlist.ListOptions{Filter: c.Query("filter")}

	offsetStr, hasOffset := c.GetQuery("offset")
	limitStr, hasLimit := c.GetQuery("limit")
	if hasOffset || hasLimit {
		cursor := &playlist.Cursor{Limit: h.opts.DefaultPageSize}
		if hasOffset {
			offset, err := strconv.Atoi(offsetStr)
			if err != nil || offset < 0 {
				badRequest(c, "invalid_offset", "Offset must be a non-negative integer")
				return
			}
			cursor.Offset = offset
		}
		if hasLimit {
			limit, err := strconv.Atoi(limitStr)
			if err != nil || limit < 1 {
				badRequest(c, "invalid_limit", "Limit must be a positive integer")
				return
			}
			cursor.Limit = min(limit, h.opts.MaxPageSize)
		}
		opts.Pagination = cursor
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.readable(ctx, c)
	if !ok {
		return
	}

	page, err := h.service.ListItems(ctx, playlist.Loaded(p), opts)
	if err != nil {
		writeServiceError(c, err, "list_items")
		return
	}

	c.JSON(http.StatusOK, ItemPageResponse{
		Items:    toPlaylistItemResponses(page.Items),
		Total:    page.Total,
		Filtered: page.Filtered,
		PageSize: page.PageSize,
		Previous: page.Previous,
		Next:     page.Next,
	})
}

// InsertItems handles POST /api/playlists/:id/items
func (h *PlaylistHandler) InsertItems(c *gin.Context) {
	var req InsertItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	var after string
	if req.After != nil {
		after = *req.After
	}

	result, err := h.service.InsertItems(ctx, playlist.Loaded(p), req.Items, after)
	if err != nil {
		writeServiceError(c, err, "insert_items")
		return
	}

	response := InsertItemsResponse{
		Items:        toPlaylistItemResponses(result.Added),
		PlaylistSize: result.Size,
	}
	if result.After != "" {
		response.After = &result.After
	}
	c.JSON(http.StatusCreated, response)
}

// MoveItems handles PUT /api/playlists/:id/move
func (h *PlaylistHandler) MoveItems(c *gin.Context) {
	var req MoveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ids, ok := parseUUIDs(req.Items)
	if !ok {
		badRequest(c, "invalid_item_id", "Invalid item ID format")
		return
	}
	after := uuid.Nil
	if req.After != nil && *req.After != "" {
		parsed, err := uuid.Parse(*req.After)
		if err != nil {
			badRequest(c, "invalid_item_id", "Invalid after ID format")
			return
		}
		after = parsed
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	moved, err := h.service.MoveItems(ctx, playlist.Loaded(p), ids, after)
	if err != nil {
		writeServiceError(c, err, "move_items")
		return
	}

	c.JSON(http.StatusOK, toPlaylistResponse(moved))
}

// RemoveItems handles DELETE /api/playlists/:id/items
func (h *PlaylistHandler) RemoveItems(c *gin.Context) {
	var req RemoveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ids, ok := parseUUIDs(req.Items)
	if !ok {
		badRequest(c, "invalid_item_id", "Invalid item ID format")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	updated, err := h.service.RemoveItems(ctx, playlist.Loaded(p), ids)
	if err != nil {
		writeServiceError(c, err, "remove_items")
		return
	}

	c.JSON(http.StatusOK, toPlaylistResponse(updated))
}

// GetItem handles GET /api/playlists/:id/items/:item_id
func (h *PlaylistHandler) GetItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "item_id", "invalid_item_id", "Invalid item ID format")
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.readable(ctx, c)
	if !ok {
		return
	}

	item, err := h.service.GetItem(ctx, playlist.Loaded(p), itemID)
	if err != nil {
		writeServiceError(c, err, "get_item")
		return
	}

	c.JSON(http.StatusOK, toPlaylistItemResponse(item))
}

// GetItemAt handles GET /api/playlists/:id/positions/:index
func (h *PlaylistHandler) GetItemAt(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid_index", "Index must be an integer")
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.readable(ctx, c)
	if !ok {
		return
	}

	item, err := h.service.GetItemAt(ctx, playlist.Loaded(p), index)
	if err != nil {
		writeServiceError(c, err, "get_item")
		return
	}

	c.JSON(http.StatusOK, toPlaylistItemResponse(item))
}

// UpdateItem handles PATCH /api/playlists/:id/items/:item_id
func (h *PlaylistHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "item_id", "invalid_item_id", "Invalid item ID format")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	p, ok := h.owned(ctx, c)
	if !ok {
		return
	}

	item, err := h.service.UpdateItem(ctx, playlist.Loaded(p), itemID, playlist.ItemPatch{
		Artist: req.Artist,
		Title:  req.Title,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		writeServiceError(c, err, "update_item")
		return
	}

	c.JSON(http.StatusOK, toPlaylistItemResponse(item))
}

// SetupPlaylistRoutes registers playlist routes; every route requires a user id
func SetupPlaylistRoutes(apiGroup *gin.RouterGroup, service *playlist.PlaylistService, opts PlaylistHandlerOptions) {
	handler := NewPlaylistHandler(service, opts)

	playlists := apiGroup.Group("/playlists", middleware.RequireUser())

	// Playlist CRUD endpoints
	playlists.POST("", handler.CreatePlaylist)
	playlists.GET("", handler.ListPlaylists)
	playlists.GET("/:id", handler.GetPlaylist)
	playlists.PATCH("/:id", handler.UpdatePlaylist)
	playlists.DELETE("/:id", handler.DeletePlaylist)
	playlists.POST("/:id/shuffle", handler.ShufflePlaylist)

	// Item endpoints
	playlists.GET("/:id/items", handler.ListItems)
	playlists.POST("/:id/items", handler.InsertItems)
	playlists.DELETE("/:id/items", handler.RemoveItems)
	playlists.PUT("/:id/move", handler.MoveItems)
	playlists.GET("/:id/items/:item_id", handler.GetItem)
	playlists.PATCH("/:id/items/:item_id", handler.UpdateItem)
	playlists.GET("/:id/positions/:index", handler.GetItemAt)
}
