package model

import "time"

// Stream is the API view of a live-stream session. Registry state is
// process-memory only; this is always a snapshot, never shared mutable state.
type Stream struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	StreamerID   string    `json:"streamerId"`
	StreamerName string    `json:"streamerName,omitempty"`
	IsLive       bool      `json:"isLive"`
	Viewers      int       `json:"viewers"`
	ViewerCount  int       `json:"viewerCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateStreamRequest is the request body for POST /api/streams.
type CreateStreamRequest struct {
	Title      string `json:"title"`
	StreamerID string `json:"streamerId" binding:"required"`
}

// StreamResponse is the response for POST /api/streams and GET /api/streams/:id.
type StreamResponse struct {
	Success bool   `json:"success"`
	Stream  Stream `json:"stream"`
}

// StreamsResponse is the response for GET /api/streams.
type StreamsResponse struct {
	Success bool     `json:"success"`
	Streams []Stream `json:"streams"`
}

// ErrorResponse is the error body for the REST endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
