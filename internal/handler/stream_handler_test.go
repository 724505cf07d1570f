package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rahul-J-IT/stream-app/internal/errs"
	"github.com/Rahul-J-IT/stream-app/internal/model"
	"github.com/Rahul-J-IT/stream-app/internal/registry"
)

// fakeDirectory resolves a fixed set of owners.
type fakeDirectory struct {
	owners map[string]string
}

func (f *fakeDirectory) ResolveOwner(id string) (string, error) {
	name, ok := f.owners[id]
	if !ok {
		return "", errs.ErrOwnerNotFound
	}
	return name, nil
}

func setupStreamRouter(dir OwnerResolver) (*gin.Engine, *registry.Registry) {
	gin.SetMode(gin.TestMode)
	reg := registry.New(time.Hour, time.Minute, zap.NewNop())
	h := NewStreamHandler(reg, dir, zap.NewNop())

	r := gin.New()
	r.POST("/api/streams", h.CreateStream)
	r.GET("/api/streams", h.GetStreams)
	r.GET("/api/streams/:id", h.GetStream)
	return r, reg
}

func postStream(t *testing.T, r *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/streams", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateStreamIdempotentPerLiveOwner(t *testing.T) {
	r, reg := setupStreamRouter(nil)

	resp := postStream(t, r, map[string]string{"title": "Demo", "streamerId": "u1"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var first model.StreamResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !first.Success || first.Stream.ID == "" || !first.Stream.IsLive {
		t.Fatalf("unexpected stream: %+v", first)
	}

	resp = postStream(t, r, map[string]string{"title": "Other", "streamerId": "u1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing live stream, got %d", resp.Code)
	}
	var again model.StreamResponse
	_ = json.Unmarshal(resp.Body.Bytes(), &again)
	if again.Stream.ID != first.Stream.ID {
		t.Fatal("duplicate live stream created for the same owner")
	}

	reg.MarkEnded(first.Stream.ID)
	resp = postStream(t, r, map[string]string{"title": "Fresh", "streamerId": "u1"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 after previous stream ended, got %d", resp.Code)
	}
}

func TestCreateStreamMissingStreamerID(t *testing.T) {
	r, _ := setupStreamRouter(nil)
	resp := postStream(t, r, map[string]string{"title": "Demo"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateStreamValidatesOwner(t *testing.T) {
	dir := &fakeDirectory{owners: map[string]string{"u1": "Alice"}}
	r, _ := setupStreamRouter(dir)

	resp := postStream(t, r, map[string]string{"title": "Demo", "streamerId": "nobody"})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown streamer, got %d", resp.Code)
	}

	resp = postStream(t, r, map[string]string{"title": "Demo", "streamerId": "u1"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var out model.StreamResponse
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if out.Stream.StreamerName != "Alice" {
		t.Fatalf("display name not resolved: %+v", out.Stream)
	}
}

func TestGetStreams(t *testing.T) {
	r, reg := setupStreamRouter(nil)
	s, _ := reg.CreateStream("Demo", "u1", "")
	reg.AdjustViewers(s.ID, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/streams", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out model.StreamsResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Streams) != 1 || out.Streams[0].ViewerCount != 2 {
		t.Fatalf("unexpected list: %+v", out.Streams)
	}
}

func TestGetStreamNotFound(t *testing.T) {
	r, _ := setupStreamRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/streams/stale-id", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
