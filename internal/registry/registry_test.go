package registry

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return New(time.Hour, time.Minute, zap.NewNop())
}

func TestCreateStreamDedupPerLiveOwner(t *testing.T) {
	r := newTestRegistry()

	first, created := r.CreateStream("Demo", "u1", "Demo Streamer")
	if !created {
		t.Fatal("expected first create to allocate a stream")
	}
	if first.ID == "" || !first.IsLive {
		t.Fatalf("unexpected stream: %+v", first)
	}

	again, created := r.CreateStream("Demo 2", "u1", "Demo Streamer")
	if created {
		t.Fatal("expected existing live stream, got a new one")
	}
	if again.ID != first.ID {
		t.Fatalf("dedup broken: %s != %s", again.ID, first.ID)
	}
	if again.Title != "Demo" {
		t.Fatalf("existing stream returned changed: %+v", again)
	}

	r.MarkEnded(first.ID)
	fresh, created := r.CreateStream("Demo 3", "u1", "Demo Streamer")
	if !created {
		t.Fatal("expected a new stream after the previous ended")
	}
	if fresh.ID == first.ID {
		t.Fatal("new stream reused the ended stream's id")
	}
}

func TestCreateStreamDifferentOwnersIndependent(t *testing.T) {
	r := newTestRegistry()
	a, _ := r.CreateStream("A", "u1", "")
	b, _ := r.CreateStream("B", "u2", "")
	if a.ID == b.ID {
		t.Fatal("streams for different owners share an id")
	}
}

func TestAdjustViewersClampsAtZero(t *testing.T) {
	r := newTestRegistry()
	s, _ := r.CreateStream("Demo", "u1", "")

	if n, _ := r.AdjustViewers(s.ID, 1); n != 1 {
		t.Fatalf("expected 1 viewer, got %d", n)
	}
	if n, _ := r.AdjustViewers(s.ID, -1); n != 0 {
		t.Fatalf("expected 0 viewers, got %d", n)
	}
	// More leaves than joins must never go negative.
	if n, _ := r.AdjustViewers(s.ID, -1); n != 0 {
		t.Fatalf("viewer count went negative: %d", n)
	}
	if _, ok := r.AdjustViewers("no-such-stream", 1); ok {
		t.Fatal("expected no-find signal for unknown stream")
	}
}

func TestGetUnknownStream(t *testing.T) {
	r := newTestRegistry()
	if _, ok := r.Get("stale-id"); ok {
		t.Fatal("expected not found")
	}
	// Operating on a missing stream degrades silently.
	r.MarkEnded("stale-id")
	if r.BindBroadcaster("stale-id", "conn-1") {
		t.Fatal("expected bind to report unknown stream")
	}
}

func TestListCoercesFlags(t *testing.T) {
	r := newTestRegistry()
	s, _ := r.CreateStream("Demo", "u1", "")
	r.MarkEnded(s.ID)
	r.CreateStream("Other", "u2", "")

	streams := r.List()
	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}
	for _, st := range streams {
		if st.ViewerCount != st.Viewers {
			t.Fatalf("viewerCount not coerced: %+v", st)
		}
		if st.ID == s.ID && st.IsLive {
			t.Fatal("ended stream still listed as live")
		}
	}
}

func TestSweepEvictsOnlyEndedStreams(t *testing.T) {
	r := New(time.Minute, time.Minute, zap.NewNop())
	live, _ := r.CreateStream("Live", "u1", "")
	ended, _ := r.CreateStream("Ended", "u2", "")
	r.MarkEnded(ended.ID)

	// Within retention: nothing goes.
	r.sweep(time.Now())
	if r.Len() != 2 {
		t.Fatalf("expected 2 streams, got %d", r.Len())
	}

	// Past retention: only the ended stream goes.
	r.sweep(time.Now().Add(2 * time.Minute))
	if r.Len() != 1 {
		t.Fatalf("expected 1 stream after sweep, got %d", r.Len())
	}
	if _, ok := r.Get(live.ID); !ok {
		t.Fatal("live stream was evicted")
	}
	if _, ok := r.Get(ended.ID); ok {
		t.Fatal("ended stream survived the sweep")
	}
}

func TestRebindKeepsStreamListed(t *testing.T) {
	r := New(time.Minute, time.Minute, zap.NewNop())
	s, _ := r.CreateStream("Demo", "u1", "")
	r.MarkEnded(s.ID)
	if !r.BindBroadcaster(s.ID, "conn-2") {
		t.Fatal("expected rebind to succeed")
	}
	got, _ := r.Get(s.ID)
	if !got.IsLive {
		t.Fatal("rebind did not mark the stream live")
	}
	// A re-bound stream must not be swept on the old endedAt.
	r.sweep(time.Now().Add(2 * time.Minute))
	if _, ok := r.Get(s.ID); !ok {
		t.Fatal("re-bound stream was evicted")
	}
}
