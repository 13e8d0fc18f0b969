package recordings

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openroom/backend/internal/egress"
	"github.com/openroom/backend/pkg/response"
	"github.com/openroom/backend/pkg/storage"
)

// Handler handles recording HTTP endpoints.
type Handler struct {
	coordinator *egress.Coordinator
	index       *Index
	store       storage.Store
	prefix      string
	logger      *zap.Logger
}

// NewHandler creates a recordings handler. prefix is the storage key prefix
// shared with the egress output layout.
func NewHandler(coordinator *egress.Coordinator, index *Index, store storage.Store, prefix string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{coordinator: coordinator, index: index, store: store, prefix: prefix, logger: logger}
}

type roomRequest struct {
	RoomName string `json:"roomName"`
}

// StartRecording handles POST /recordings/start.
func (h *Handler) StartRecording(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" {
		response.BadRequest(c, "roomName is required")
		return
	}
	if err := h.coordinator.Start(c.Request.Context(), req.RoomName); err != nil {
		response.Error(c, err, "Error starting recording")
		return
	}
	response.OK(c, gin.H{})
}

// StopRecording handles POST /recordings/stop.
func (h *Handler) StopRecording(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" {
		response.BadRequest(c, "roomName is required")
		return
	}
	summary, err := h.coordinator.Stop(c.Request.Context(), req.RoomName)
	if err != nil {
		response.Error(c, err, "Error stopping recording")
		return
	}
	response.OK(c, gin.H{"recording": summary})
}

// List handles GET /recordings with optional recordingId/roomName/roomId
// filters. Results are newest first; that ordering is part of the API
// contract.
func (h *Handler) List(c *gin.Context) {
	f := Filter{
		RecordingID: c.Query("recordingId"),
		RoomName:    c.Query("roomName"),
		RoomID:      c.Query("roomId"),
	}
	records, err := h.index.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list recordings failed", zap.Error(err))
		response.Internal(c, "Error listing recordings")
		return
	}
	response.OK(c, gin.H{"recordings": records})
}

// GetRecording handles GET /recordings/:name. The response is always a 206
// bounded by ChunkSize; there is no full-object 200 path for media.
func (h *Handler) GetRecording(c *gin.Context) {
	key := h.prefix + c.Param("name")
	ctx := c.Request.Context()

	exists, err := h.store.Exists(ctx, key)
	if err != nil {
		h.logger.Error("head recording failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error retrieving recording")
		return
	}
	if !exists {
		response.NotFound(c, "Recording not found")
		return
	}

	size, err := h.store.HeadSize(ctx, key)
	if err != nil {
		h.logger.Error("head recording failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error retrieving recording")
		return
	}

	start, end := resolveRange(c.GetHeader("Range"), size)
	body, err := h.store.Get(ctx, key, &storage.ByteRange{Start: start, End: end})
	if err != nil {
		h.logger.Error("get recording range failed", zap.Error(err),
			zap.String("key", key), zap.Int64("start", start), zap.Int64("end", end))
		response.Internal(c, "Error retrieving recording")
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusPartialContent, end-start+1, "video/mp4", body, map[string]string{
		"Content-Range": fmt.Sprintf("bytes %d-%d/%d", start, end, size),
		"Accept-Ranges": "bytes",
		"Cache-Control": "no-cache",
	})
}

// GetThumbnail handles GET /recordings/thumbnails/:name. Thumbnails are
// small single-shot reads; no range support.
func (h *Handler) GetThumbnail(c *gin.Context) {
	key := h.prefix + c.Param("name")
	ctx := c.Request.Context()

	exists, err := h.store.Exists(ctx, key)
	if err != nil {
		h.logger.Error("head thumbnail failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error retrieving recording")
		return
	}
	if !exists {
		response.NotFound(c, "Recording not found")
		return
	}

	size, err := h.store.HeadSize(ctx, key)
	if err != nil {
		h.logger.Error("head thumbnail failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error retrieving recording")
		return
	}
	body, err := h.store.Get(ctx, key, nil)
	if err != nil {
		h.logger.Error("get thumbnail failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error retrieving recording")
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, size, "image/jpeg", body, nil)
}

// DeleteRecording handles DELETE /recordings/:name. Deletes the media object
// and its sidecar. Delete is not transactional: if the sidecar delete fails
// after the media delete, the failure is surfaced without rollback.
func (h *Handler) DeleteRecording(c *gin.Context) {
	key := h.prefix + c.Param("name")
	ctx := c.Request.Context()

	exists, err := h.store.Exists(ctx, key)
	if err != nil {
		h.logger.Error("head recording failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error deleting recording")
		return
	}
	if !exists {
		response.NotFound(c, "Recording not found")
		return
	}

	if err := h.store.Delete(ctx, key); err != nil {
		h.logger.Error("delete recording failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "Error deleting recording")
		return
	}
	if err := h.store.Delete(ctx, key+".json"); err != nil {
		h.logger.Error("delete sidecar failed", zap.Error(err), zap.String("key", key+".json"))
		response.Internal(c, "Error deleting recording")
		return
	}
	response.OK(c, gin.H{"message": "Recording deleted"})
}
