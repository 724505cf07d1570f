package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rahul-J-IT/stream-app/internal/errs"
	"github.com/Rahul-J-IT/stream-app/internal/model"
	"github.com/Rahul-J-IT/stream-app/internal/registry"
)

// OwnerResolver validates stream owners against the identity store.
type OwnerResolver interface {
	ResolveOwner(id string) (string, error)
}

// StreamHandler handles the REST API for streams.
type StreamHandler struct {
	reg *registry.Registry
	dir OwnerResolver // nil when the identity store is disabled
	log *zap.Logger
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(reg *registry.Registry, dir OwnerResolver, log *zap.Logger) *StreamHandler {
	return &StreamHandler{reg: reg, dir: dir, log: log}
}

// CreateStream godoc
// POST /api/streams
// Idempotent per live owner: an existing live stream is returned with 200,
// a fresh one with 201.
func (h *StreamHandler) CreateStream(c *gin.Context) {
	var req model.CreateStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "streamerId required"})
		return
	}

	name := ""
	if h.dir != nil {
		var err error
		name, err = h.dir.ResolveOwner(req.StreamerID)
		if errors.Is(err, errs.ErrOwnerNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "unknown streamer"})
			return
		}
		if err != nil {
			// The relay must not depend on the store being up.
			h.log.Warn("owner lookup failed", zap.String("streamer_id", req.StreamerID), zap.Error(err))
			name = ""
		}
	}

	stream, created := h.reg.CreateStream(req.Title, req.StreamerID, name)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, model.StreamResponse{Success: true, Stream: stream})
}

// GetStreams godoc
// GET /api/streams
func (h *StreamHandler) GetStreams(c *gin.Context) {
	c.JSON(http.StatusOK, model.StreamsResponse{
		Success: true,
		Streams: h.reg.List(),
	})
}

// GetStream godoc
// GET /api/streams/:id
func (h *StreamHandler) GetStream(c *gin.Context) {
	stream, ok := h.reg.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "stream not found"})
		return
	}
	c.JSON(http.StatusOK, model.StreamResponse{Success: true, Stream: stream})
}
