package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Role is the connection's bound role. It is set exactly once and never
// transitions back to unassigned.
type Role string

const (
	RoleUnassigned  Role = ""
	RoleBroadcaster Role = "broadcaster"
	RoleViewer      Role = "viewer"
)

// State is the explicit per-connection state machine: role and stream
// binding, fixed for the connection's lifetime once set.
type State struct {
	mu       sync.RWMutex
	role     Role
	streamID string
}

// Bind sets the role and stream once. It returns false if the connection is
// already bound.
func (s *State) Bind(role Role, streamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.role != RoleUnassigned {
		return false
	}
	s.role = role
	s.streamID = streamID
	return true
}

// Role returns the bound role, or RoleUnassigned.
func (s *State) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// StreamID returns the bound stream id, or "".
func (s *State) StreamID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamID
}

// DisconnectHandler is called when a client's read pump exits, after the
// client has been removed from its room.
type DisconnectHandler func(*Client)

// Client is one WebSocket connection. The hub owns its registration; the
// transport pumps own the conn.
type Client struct {
	ID    string
	State State

	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	onDisconnect DisconnectHandler
}

// NewClient wraps an upgraded connection with a fresh connection id.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// SetDisconnectHandler sets the lifecycle callback fired on disconnect.
func (c *Client) SetDisconnectHandler(h DisconnectHandler) {
	c.onDisconnect = h
}

// enqueue hands a frame to the write pump without blocking. A full buffer
// drops the frame; delivery is best-effort.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump reads frames and dispatches them until the connection drops, then
// runs cleanup: leave room, fire the disconnect handler, close the conn.
func (c *Client) ReadPump(handle func(*Client, []byte)) {
	defer func() {
		c.hub.Unregister(c)
		if c.onDisconnect != nil {
			c.onDisconnect(c)
		}
		_ = c.conn.Close()
	}()

	if c.hub.maxMessageSize > 0 {
		c.conn.SetReadLimit(c.hub.maxMessageSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
		if len(data) > 0 {
			handle(c, data)
		}
	}
}

// WritePump drains the send buffer to the connection and keeps it alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
