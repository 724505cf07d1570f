package model

import "encoding/json"

// Socket event names, client -> server.
const (
	EventRegisterBroadcaster = "register-broadcaster"
	EventJoinStream          = "join-stream"
	EventSendMessage         = "send-message"
	EventOffer               = "offer"
	EventAnswer              = "answer"
	EventICECandidate        = "ice-candidate"
	EventEndStream           = "end-stream"
)

// Socket event names, server -> client.
const (
	EventViewerJoined = "viewer-joined"
	EventViewerLeft   = "viewer-left"
	EventChatMessage  = "chat-message"
	EventStreamEnded  = "stream-ended"
)

// Envelope frames every inbound socket message as a named event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outbound frames every server -> client message.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client -> server payloads.

// RegisterBroadcasterPayload binds the connection as a stream's broadcaster.
type RegisterBroadcasterPayload struct {
	StreamID string `json:"streamId"`
}

// JoinStreamPayload binds the connection as a viewer of a stream.
type JoinStreamPayload struct {
	StreamID string `json:"streamId"`
}

// ChatPayload carries a chat message from any room member.
type ChatPayload struct {
	EventID       string `json:"eventId"`
	Text          string `json:"text"`
	Username      string `json:"username"`
	Timestamp     string `json:"timestamp"`
	IsBroadcaster bool   `json:"isBroadcaster"`
}

// OfferPayload routes an SDP offer from the broadcaster to one viewer.
// The SDP itself is opaque to the server.
type OfferPayload struct {
	Offer    json.RawMessage `json:"offer"`
	ViewerID string          `json:"viewerId"`
	StreamID string          `json:"streamId,omitempty"`
}

// AnswerPayload routes an SDP answer from a viewer back to the broadcaster.
type AnswerPayload struct {
	Answer        json.RawMessage `json:"answer"`
	BroadcasterID string          `json:"broadcasterId"`
}

// ICECandidatePayload routes an ICE candidate to a named connection.
type ICECandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
	TargetID  string          `json:"targetId"`
}

// Server -> client payloads.

// ViewerEvent announces a viewer joining or leaving, with the new count.
type ViewerEvent struct {
	ViewerID string `json:"viewerId"`
	Viewers  int    `json:"viewers"`
}

// ChatMessage is the fanned-out form of a ChatPayload.
type ChatMessage struct {
	Text          string `json:"text"`
	Username      string `json:"username"`
	Timestamp     string `json:"timestamp"`
	IsBroadcaster bool   `json:"isBroadcaster"`
	EventID       string `json:"eventId"`
	StreamID      string `json:"streamId"`
}

// OfferEvent is the relayed offer, tagged with the sending connection's id.
type OfferEvent struct {
	Offer         json.RawMessage `json:"offer"`
	BroadcasterID string          `json:"broadcasterId"`
}

// AnswerEvent is the relayed answer, tagged with the sending connection's id.
type AnswerEvent struct {
	Answer   json.RawMessage `json:"answer"`
	ViewerID string          `json:"viewerId"`
}

// ICECandidateEvent is the relayed candidate, tagged with the sender's id.
type ICECandidateEvent struct {
	Candidate json.RawMessage `json:"candidate"`
	SenderID  string          `json:"senderId"`
}
