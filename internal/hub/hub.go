// Package hub groups WebSocket connections into per-stream rooms and
// delivers messages either to a whole room or to one named connection.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options tunes connection keepalive and read limits.
type Options struct {
	MaxMessageSize int64
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
}

// Hub is the room multiplexer: connection id -> client, stream id -> room
// member set. Both maps are guarded by one RWMutex; no lock is held while
// writing to a socket — frames go through each client's buffered channel.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client

	maxMessageSize int64
	pingInterval   time.Duration
	pongWait       time.Duration
	writeWait      time.Duration
	log            *zap.Logger
}

// New creates a hub.
func New(opts Options, log *zap.Logger) *Hub {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	return &Hub{
		clients:        make(map[string]*Client),
		rooms:          make(map[string]map[string]*Client),
		maxMessageSize: opts.MaxMessageSize,
		pingInterval:   opts.PingInterval,
		pongWait:       opts.PongWait,
		writeWait:      opts.WriteWait,
		log:            log,
	}
}

// Register adds a client to the connection table.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.log.Info("client connected", zap.String("client_id", c.ID))
}

// Unregister removes a client from its room and the connection table and
// closes its send channel. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for streamID, members := range h.rooms {
		if _, in := members[c.ID]; in {
			delete(members, c.ID)
			if len(members) == 0 {
				delete(h.rooms, streamID)
			}
		}
	}
	close(c.send)
	h.log.Info("client disconnected", zap.String("client_id", c.ID))
}

// Join adds the client to a stream's room.
func (h *Hub) Join(c *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[streamID] == nil {
		h.rooms[streamID] = make(map[string]*Client)
	}
	h.rooms[streamID][c.ID] = c
	h.log.Info("client joined room",
		zap.String("client_id", c.ID),
		zap.String("stream_id", streamID))
}

// Leave removes the client from a stream's room. Idempotent.
func (h *Hub) Leave(c *Client, streamID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[streamID]
	if !ok {
		return
	}
	delete(members, c.ID)
	if len(members) == 0 {
		delete(h.rooms, streamID)
	}
}

// BroadcastToRoom delivers v to every current member of the stream's room,
// sender included. Unknown rooms are a silent no-op. Enqueueing happens
// under the read lock so it cannot race with Unregister closing a send
// channel; the channel send itself never blocks.
func (h *Hub) BroadcastToRoom(streamID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("marshal broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[streamID] {
		if !c.enqueue(data) {
			h.log.Warn("send buffer full, dropping frame",
				zap.String("client_id", c.ID),
				zap.String("stream_id", streamID))
		}
	}
}

// SendToClient delivers v to exactly one connection by id. A missing target
// drops the message; directed signaling is best-effort.
func (h *Hub) SendToClient(clientID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("marshal directed message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[clientID]
	if !ok {
		h.log.Debug("directed delivery target gone", zap.String("client_id", clientID))
		return
	}
	if !c.enqueue(data) {
		h.log.Warn("send buffer full, dropping frame", zap.String("client_id", c.ID))
	}
}

// RoomSize returns the number of connections in a stream's room.
func (h *Hub) RoomSize(streamID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[streamID])
}
