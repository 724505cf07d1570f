package hub

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/Rahul-J-IT/stream-app/internal/model"
)

func newTestHub() *Hub {
	return New(Options{}, zap.NewNop())
}

func drain(t *testing.T, c *Client) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestBroadcastReachesEveryMemberIncludingSender(t *testing.T) {
	h := newTestHub()
	a := NewClient(h, nil)
	b := NewClient(h, nil)
	outsider := NewClient(h, nil)
	for _, c := range []*Client{a, b, outsider} {
		h.Register(c)
	}
	h.Join(a, "s1")
	h.Join(b, "s1")
	h.Join(outsider, "s2")

	h.BroadcastToRoom("s1", model.Outbound{Event: model.EventChatMessage})

	for _, c := range []*Client{a, b} {
		frames := drain(t, c)
		if len(frames) != 1 {
			t.Fatalf("expected 1 frame for %s, got %d", c.ID, len(frames))
		}
		var out model.Outbound
		if err := json.Unmarshal(frames[0], &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out.Event != model.EventChatMessage {
			t.Fatalf("unexpected event %q", out.Event)
		}
	}
	if frames := drain(t, outsider); len(frames) != 0 {
		t.Fatalf("broadcast leaked into another room: %d frames", len(frames))
	}
}

func TestBroadcastUnknownRoomIsNoop(t *testing.T) {
	h := newTestHub()
	h.BroadcastToRoom("nope", model.Outbound{Event: model.EventStreamEnded})
}

func TestSendToClientDirectedOnly(t *testing.T) {
	h := newTestHub()
	a := NewClient(h, nil)
	b := NewClient(h, nil)
	h.Register(a)
	h.Register(b)
	h.Join(a, "s1")
	h.Join(b, "s1")

	h.SendToClient(b.ID, model.Outbound{Event: model.EventOffer})

	if frames := drain(t, b); len(frames) != 1 {
		t.Fatalf("target got %d frames", len(frames))
	}
	if frames := drain(t, a); len(frames) != 0 {
		t.Fatalf("directed delivery leaked to room member: %d frames", len(frames))
	}

	// A vanished target drops the message silently.
	h.SendToClient("gone", model.Outbound{Event: model.EventOffer})
}

func TestUnregisterRemovesFromRoomAndClosesSend(t *testing.T) {
	h := newTestHub()
	a := NewClient(h, nil)
	b := NewClient(h, nil)
	h.Register(a)
	h.Register(b)
	h.Join(a, "s1")
	h.Join(b, "s1")

	h.Unregister(a)
	if got := h.RoomSize("s1"); got != 1 {
		t.Fatalf("expected 1 member left, got %d", got)
	}
	if _, open := <-a.send; open {
		t.Fatal("send channel still open after unregister")
	}
	// Second unregister must not panic on a closed channel.
	h.Unregister(a)

	h.BroadcastToRoom("s1", model.Outbound{Event: model.EventViewerLeft})
	if frames := drain(t, b); len(frames) != 1 {
		t.Fatalf("remaining member got %d frames", len(frames))
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	h := newTestHub()
	a := NewClient(h, nil)
	h.Register(a)
	h.Join(a, "s1")
	h.Leave(a, "s1")
	h.Leave(a, "s1")
	if got := h.RoomSize("s1"); got != 0 {
		t.Fatalf("expected empty room, got %d", got)
	}
}

func TestStateBindsExactlyOnce(t *testing.T) {
	var s State
	if s.Role() != RoleUnassigned {
		t.Fatal("fresh state should be unassigned")
	}
	if !s.Bind(RoleViewer, "s1") {
		t.Fatal("first bind failed")
	}
	if s.Bind(RoleBroadcaster, "s2") {
		t.Fatal("second bind succeeded")
	}
	if s.Role() != RoleViewer || s.StreamID() != "s1" {
		t.Fatalf("state changed after rejected bind: %s %s", s.Role(), s.StreamID())
	}
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	h := newTestHub()
	c := NewClient(h, nil)
	h.Register(c)
	h.Join(c, "s1")

	for i := 0; i < cap(c.send); i++ {
		if !c.enqueue([]byte("x")) {
			t.Fatalf("enqueue failed at %d with room in buffer", i)
		}
	}
	if c.enqueue([]byte("overflow")) {
		t.Fatal("enqueue succeeded on a full buffer")
	}
	// Broadcast to a slow consumer must not block.
	h.BroadcastToRoom("s1", model.Outbound{Event: model.EventChatMessage})
}
