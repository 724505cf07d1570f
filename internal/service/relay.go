// Package service holds the relay core: connection lifecycle, chat fan-out,
// and WebRTC signaling routing. Failures on the relay path (stale stream ids,
// vanished target connections) are absorbed as logged no-ops — races between
// disconnects and in-flight requests are normal here, not errors.
package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Rahul-J-IT/stream-app/internal/hub"
	"github.com/Rahul-J-IT/stream-app/internal/model"
	"github.com/Rahul-J-IT/stream-app/internal/registry"
)

// Rooms is the multiplexer surface the relay needs (D: handlers and tests
// supply the real hub or a fake).
type Rooms interface {
	Join(c *hub.Client, streamID string)
	BroadcastToRoom(streamID string, v any)
	SendToClient(clientID string, v any)
}

// Relay reconciles connection events with the stream registry and routes
// room and directed messages. It is the only writer of registry state in
// response to connectivity changes.
type Relay struct {
	reg   *registry.Registry
	rooms Rooms
	log   *zap.Logger
}

// NewRelay creates the relay service.
func NewRelay(reg *registry.Registry, rooms Rooms, log *zap.Logger) *Relay {
	return &Relay{reg: reg, rooms: rooms, log: log}
}

// RegisterBroadcaster binds the connection as the stream's broadcaster and
// marks the stream live. Unknown stream ids and already-bound connections
// are dropped.
func (r *Relay) RegisterBroadcaster(c *hub.Client, streamID string) {
	if _, ok := r.reg.Get(streamID); !ok {
		r.log.Warn("register-broadcaster for unknown stream",
			zap.String("client_id", c.ID),
			zap.String("stream_id", streamID))
		return
	}
	if !c.State.Bind(hub.RoleBroadcaster, streamID) {
		r.log.Warn("connection already bound",
			zap.String("client_id", c.ID),
			zap.String("stream_id", streamID))
		return
	}
	r.rooms.Join(c, streamID)
	r.reg.BindBroadcaster(streamID, c.ID)
	r.log.Info("broadcaster registered",
		zap.String("client_id", c.ID),
		zap.String("stream_id", streamID))
}

// JoinStream binds the connection as a viewer, joins the room, and announces
// the new viewer count to everyone in it.
func (r *Relay) JoinStream(c *hub.Client, streamID string) {
	if _, ok := r.reg.Get(streamID); !ok {
		r.log.Warn("join-stream for unknown stream",
			zap.String("client_id", c.ID),
			zap.String("stream_id", streamID))
		return
	}
	if !c.State.Bind(hub.RoleViewer, streamID) {
		r.log.Warn("connection already bound",
			zap.String("client_id", c.ID),
			zap.String("stream_id", streamID))
		return
	}
	r.rooms.Join(c, streamID)
	count, _ := r.reg.AdjustViewers(streamID, 1)
	r.rooms.BroadcastToRoom(streamID, model.Outbound{
		Event: model.EventViewerJoined,
		Data:  model.ViewerEvent{ViewerID: c.ID, Viewers: count},
	})
}

// EndStream marks the broadcaster's stream as not live and notifies the room.
// Only a connection bound as broadcaster can end its stream.
func (r *Relay) EndStream(c *hub.Client) {
	streamID := c.State.StreamID()
	if streamID == "" || c.State.Role() != hub.RoleBroadcaster {
		r.log.Debug("end-stream from non-broadcaster", zap.String("client_id", c.ID))
		return
	}
	r.reg.MarkEnded(streamID)
	r.rooms.BroadcastToRoom(streamID, model.Outbound{Event: model.EventStreamEnded})
}

// Disconnect reconciles registry state after a transport-level close. The
// client has already left its room, so broadcasts reach the remaining
// members only.
func (r *Relay) Disconnect(c *hub.Client) {
	streamID := c.State.StreamID()
	if streamID == "" {
		return
	}
	switch c.State.Role() {
	case hub.RoleBroadcaster:
		r.reg.MarkEnded(streamID)
		r.rooms.BroadcastToRoom(streamID, model.Outbound{Event: model.EventStreamEnded})
		r.log.Info("stream ended on broadcaster disconnect",
			zap.String("client_id", c.ID),
			zap.String("stream_id", streamID))
	case hub.RoleViewer:
		count, ok := r.reg.AdjustViewers(streamID, -1)
		if !ok {
			return
		}
		r.rooms.BroadcastToRoom(streamID, model.Outbound{
			Event: model.EventViewerLeft,
			Data:  model.ViewerEvent{ViewerID: c.ID, Viewers: count},
		})
	}
}

// SendMessage fans a chat message out to every member of the sender's room,
// the sender included. Messages from connections with no bound stream are
// dropped. A missing timestamp gets a server stamp.
func (r *Relay) SendMessage(c *hub.Client, p model.ChatPayload) {
	streamID := c.State.StreamID()
	if streamID == "" {
		r.log.Debug("chat from unbound connection", zap.String("client_id", c.ID))
		return
	}
	ts := p.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	r.rooms.BroadcastToRoom(streamID, model.Outbound{
		Event: model.EventChatMessage,
		Data: model.ChatMessage{
			Text:          p.Text,
			Username:      p.Username,
			Timestamp:     ts,
			IsBroadcaster: p.IsBroadcaster,
			EventID:       p.EventID,
			StreamID:      streamID,
		},
	})
}

// Offer relays an SDP offer to the named viewer, tagged with the sender's
// connection id. The payload is opaque.
func (r *Relay) Offer(c *hub.Client, p model.OfferPayload) {
	r.rooms.SendToClient(p.ViewerID, model.Outbound{
		Event: model.EventOffer,
		Data:  model.OfferEvent{Offer: p.Offer, BroadcasterID: c.ID},
	})
}

// Answer relays an SDP answer back to the named broadcaster.
func (r *Relay) Answer(c *hub.Client, p model.AnswerPayload) {
	r.rooms.SendToClient(p.BroadcasterID, model.Outbound{
		Event: model.EventAnswer,
		Data:  model.AnswerEvent{Answer: p.Answer, ViewerID: c.ID},
	})
}

// ICECandidate relays an ICE candidate to the named connection.
func (r *Relay) ICECandidate(c *hub.Client, p model.ICECandidatePayload) {
	r.rooms.SendToClient(p.TargetID, model.Outbound{
		Event: model.EventICECandidate,
		Data:  model.ICECandidateEvent{Candidate: p.Candidate, SenderID: c.ID},
	})
}
