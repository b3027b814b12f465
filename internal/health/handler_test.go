package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/playback"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type stubPlayer struct {
	status playback.Status
}

func (p stubPlayer) Status() playback.Status {
	return p.status
}

func newRedisStore(t *testing.T) (*archive.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return archive.NewRedisStore(client, 0), mr
}

func TestLiveness(t *testing.T) {
	h := NewHandler(nil, nil, nil, "test")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	if err := h.Liveness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Liveness failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterRoutes(t *testing.T) {
	h := NewHandler(nil, nil, nil, "test")
	e := echo.New()
	h.RegisterRoutes(e)

	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Path] = true
	}
	for _, path := range []string{"/health", "/health/ready"} {
		if !routes[path] {
			t.Errorf("expected route %s to be registered", path)
		}
	}
}

func TestReadiness_Healthy(t *testing.T) {
	store, _ := newRedisStore(t)
	history := archive.NewHistory()
	history.Append(archive.Entry{ID: "turn_1", Turn: 0})
	history.Append(archive.Entry{ID: "turn_2", Turn: 1})

	h := NewHandler(store, stubPlayer{status: playback.Status{Turn: 2, SinkAttached: true}}, history, "1.0.0")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Readiness failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", resp.Version)
	}
	if resp.Stats.Playback.Turn != 2 || resp.Stats.Playback.CompletedTurns != 2 {
		t.Errorf("unexpected playback stats %+v", resp.Stats.Playback)
	}
	if resp.Stats.Playback.State != "idle" {
		t.Errorf("expected idle state, got %s", resp.Stats.Playback.State)
	}
	if resp.Stats.Playback.LastEntryID != "turn_2" || resp.Stats.Playback.LastTurn != 1 {
		t.Errorf("expected last entry turn_2 on turn 1, got %+v", resp.Stats.Playback)
	}
}

func TestReadiness_MemoryStoreStats(t *testing.T) {
	store := archive.NewMemoryStore()
	if err := store.Put(context.Background(), "arc_1", []byte("RIFF")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(context.Background(), "arc_2", []byte("RIFF")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	h := NewHandler(store, stubPlayer{}, archive.NewHistory(), "test")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Readiness failed: %v", err)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stats.Playback.ArchivedBlobs != 2 {
		t.Errorf("expected 2 archived blobs, got %d", resp.Stats.Playback.ArchivedBlobs)
	}
	if resp.Stats.Playback.LastEntryID != "" {
		t.Errorf("expected no last entry, got %q", resp.Stats.Playback.LastEntryID)
	}
}

func TestReadiness_StoreDown(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	h := NewHandler(store, stubPlayer{}, nil, "test")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Readiness failed: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestCheck_InterruptedIsDegraded(t *testing.T) {
	h := NewHandler(archive.NewMemoryStore(), stubPlayer{status: playback.Status{Interrupted: true}}, nil, "test")

	overall, components := h.Check(context.Background())
	if overall != StatusDegraded {
		t.Errorf("expected degraded, got %s", overall)
	}
	if components["player"].Status != StatusDegraded {
		t.Errorf("expected degraded player, got %s", components["player"].Status)
	}
	if components["archive_store"].Status != StatusHealthy {
		t.Errorf("expected healthy store, got %s", components["archive_store"].Status)
	}
}

func TestCheck_MissingComponents(t *testing.T) {
	h := NewHandler(nil, nil, nil, "test")

	overall, components := h.Check(context.Background())
	if overall != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", overall)
	}
	if components["archive_store"].Error == "" {
		t.Error("expected error for missing store")
	}
}

func TestComputeOverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentStatus
		want       Status
	}{
		{"all healthy", map[string]ComponentStatus{"archive_store": {Status: StatusHealthy}, "player": {Status: StatusHealthy}}, StatusHealthy},
		{"critical down", map[string]ComponentStatus{"archive_store": {Status: StatusUnhealthy}, "player": {Status: StatusHealthy}}, StatusUnhealthy},
		{"degraded", map[string]ComponentStatus{"archive_store": {Status: StatusHealthy}, "player": {Status: StatusDegraded}}, StatusDegraded},
		{"empty", map[string]ComponentStatus{}, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeOverallStatus(tt.components); got != tt.want {
				t.Errorf("computeOverallStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}
