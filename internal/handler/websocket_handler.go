package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Rahul-J-IT/stream-app/internal/hub"
	"github.com/Rahul-J-IT/stream-app/internal/model"
	"github.com/Rahul-J-IT/stream-app/internal/service"
)

// SocketHandler upgrades connections and dispatches named socket events to
// the relay.
type SocketHandler struct {
	hub      *hub.Hub
	relay    *service.Relay
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewSocketHandler creates the WebSocket handler. allowedOrigin restricts
// browser origins; empty allows any.
func NewSocketHandler(h *hub.Hub, relay *service.Relay, readBuf, writeBuf int, allowedOrigin string, log *zap.Logger) *SocketHandler {
	return &SocketHandler{
		hub:   h,
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		log: log,
	}
}

// ServeWS upgrades GET /ws and runs the connection's pumps. The read pump
// runs on this goroutine; its exit triggers lifecycle cleanup.
func (h *SocketHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := hub.NewClient(h.hub, conn)
	client.SetDisconnectHandler(h.relay.Disconnect)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump(h.dispatch)
}

func (h *SocketHandler) dispatch(c *hub.Client, data []byte) {
	var env model.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.log.Warn("malformed frame", zap.String("client_id", c.ID), zap.Error(err))
		return
	}

	switch env.Event {
	case model.EventRegisterBroadcaster:
		var p model.RegisterBroadcasterPayload
		if h.decode(c, env, &p) {
			h.relay.RegisterBroadcaster(c, p.StreamID)
		}
	case model.EventJoinStream:
		var p model.JoinStreamPayload
		if h.decode(c, env, &p) {
			h.relay.JoinStream(c, p.StreamID)
		}
	case model.EventSendMessage:
		var p model.ChatPayload
		if h.decode(c, env, &p) {
			h.relay.SendMessage(c, p)
		}
	case model.EventOffer:
		var p model.OfferPayload
		if h.decode(c, env, &p) {
			h.relay.Offer(c, p)
		}
	case model.EventAnswer:
		var p model.AnswerPayload
		if h.decode(c, env, &p) {
			h.relay.Answer(c, p)
		}
	case model.EventICECandidate:
		var p model.ICECandidatePayload
		if h.decode(c, env, &p) {
			h.relay.ICECandidate(c, p)
		}
	case model.EventEndStream:
		h.relay.EndStream(c)
	default:
		h.log.Warn("unknown event",
			zap.String("client_id", c.ID),
			zap.String("event", env.Event))
	}
}

func (h *SocketHandler) decode(c *hub.Client, env model.Envelope, v any) bool {
	if len(env.Data) == 0 {
		h.log.Warn("event without payload",
			zap.String("client_id", c.ID),
			zap.String("event", env.Event))
		return false
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		h.log.Warn("malformed payload",
			zap.String("client_id", c.ID),
			zap.String("event", env.Event),
			zap.Error(err))
		return false
	}
	return true
}
