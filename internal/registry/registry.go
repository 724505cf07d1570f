package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rahul-J-IT/stream-app/internal/model"
)

// entry is the registry's mutable record for one stream. Callers only ever
// see snapshots.
type entry struct {
	id              string
	title           string
	streamerID      string
	streamerName    string
	isLive          bool
	viewers         int
	broadcasterConn string
	createdAt       time.Time
	endedAt         time.Time
}

func (e *entry) snapshot() model.Stream {
	return model.Stream{
		ID:           e.id,
		Title:        e.title,
		StreamerID:   e.streamerID,
		StreamerName: e.streamerName,
		IsLive:       e.isLive,
		Viewers:      e.viewers,
		ViewerCount:  e.viewers,
		CreatedAt:    e.createdAt,
	}
}

// Registry is the in-memory table of live-stream sessions. All state is
// process-memory and lost on restart. Ended streams are evicted after a
// retention window; live streams are never evicted.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]*entry

	retention     time.Duration
	sweepInterval time.Duration
	log           *zap.Logger
}

// New creates a registry. retention is how long an ended stream stays
// listed; sweepInterval is how often the janitor checks.
func New(retention, sweepInterval time.Duration, log *zap.Logger) *Registry {
	return &Registry{
		streams:       make(map[string]*entry),
		retention:     retention,
		sweepInterval: sweepInterval,
		log:           log,
	}
}

// CreateStream creates a live stream for the owner, or returns the owner's
// existing live stream unchanged. The bool reports whether a new stream was
// created.
func (r *Registry) CreateStream(title, streamerID, streamerName string) (model.Stream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.streams {
		if e.streamerID == streamerID && e.isLive {
			return e.snapshot(), false
		}
	}

	e := &entry{
		id:           uuid.New().String(),
		title:        title,
		streamerID:   streamerID,
		streamerName: streamerName,
		isLive:       true,
		createdAt:    time.Now(),
	}
	r.streams[e.id] = e
	r.log.Info("stream created",
		zap.String("stream_id", e.id),
		zap.String("streamer_id", streamerID))
	return e.snapshot(), true
}

// Get returns a stream snapshot by id. A missing id is normal (stale or
// forged references), not an error.
func (r *Registry) Get(id string) (model.Stream, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.streams[id]
	if !ok {
		return model.Stream{}, false
	}
	return e.snapshot(), true
}

// List returns all known streams in no particular order.
func (r *Registry) List() []model.Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Stream, 0, len(r.streams))
	for _, e := range r.streams {
		out = append(out, e.snapshot())
	}
	return out
}

// BindBroadcaster records connID as the stream's broadcaster and marks it
// live. The connection id is a weak reference owned by the transport layer.
// No-op if the stream is unknown.
func (r *Registry) BindBroadcaster(id, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.streams[id]
	if !ok {
		return false
	}
	e.broadcasterConn = connID
	e.isLive = true
	e.endedAt = time.Time{}
	return true
}

// MarkEnded flags the stream as not live. No-op if unknown.
func (r *Registry) MarkEnded(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.streams[id]
	if !ok || !e.isLive {
		return
	}
	e.isLive = false
	e.endedAt = time.Now()
	r.log.Info("stream ended", zap.String("stream_id", id))
}

// AdjustViewers applies delta to the stream's viewer count, clamped at zero,
// and returns the new count. The bool is false if the stream is unknown.
func (r *Registry) AdjustViewers(id string, delta int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.streams[id]
	if !ok {
		return 0, false
	}
	e.viewers += delta
	if e.viewers < 0 {
		e.viewers = 0
	}
	return e.viewers, true
}

// Len returns the number of streams currently in the table.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

// Run sweeps ended streams past the retention window until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.streams {
		if !e.isLive && !e.endedAt.IsZero() && now.Sub(e.endedAt) >= r.retention {
			delete(r.streams, id)
			r.log.Info("stream evicted", zap.String("stream_id", id))
		}
	}
}
