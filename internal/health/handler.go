package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/playback"
	"github.com/labstack/echo/v4"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

const checkTimeout = 5 * time.Second

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type PlaybackStats struct {
	Turn           int    `json:"turn"`
	State          string `json:"state"`
	QueueLength    int    `json:"queue_length"`
	Interrupted    bool   `json:"interrupted"`
	SinkAttached   bool   `json:"sink_attached"`
	CompletedTurns int    `json:"completed_turns"`
	LastEntryID    string `json:"last_entry_id,omitempty"`
	LastTurn       int    `json:"last_turn"`
	ArchivedBlobs  int    `json:"archived_blobs,omitempty"`
}

// blobCounter is implemented by stores that know their size locally.
type blobCounter interface {
	Len() int
}

type Stats struct {
	Playback PlaybackStats `json:"playback"`
	Runtime  RuntimeStats  `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

type PlayerStatus interface {
	Status() playback.Status
}

type Handler struct {
	store     archive.BlobStore
	player    PlayerStatus
	history   *archive.History
	version   string
	startTime time.Time
}

func NewHandler(store archive.BlobStore, player PlayerStatus, history *archive.History, version string) *Handler {
	return &Handler{
		store:     store,
		player:    player,
		history:   history,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *Handler) Readiness(c echo.Context) error {
	overall, components := h.Check(c.Request().Context())

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := HealthResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Playback: h.playbackStats(),
			Runtime: RuntimeStats{
				Goroutines:         runtime.NumGoroutine(),
				MemoryAllocMB:      memStats.Alloc / 1024 / 1024,
				MemoryTotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
				MemorySysMB:        memStats.Sys / 1024 / 1024,
				NumGC:              memStats.NumGC,
			},
		},
		Components: components,
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, resp)
}

// Check runs every component probe concurrently.
func (h *Handler) Check(ctx context.Context) (Status, map[string]ComponentStatus) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := []struct {
		name  string
		check func(context.Context) ComponentStatus
	}{
		{"archive_store", h.checkStore},
		{"player", h.checkPlayer},
	}

	wg.Add(len(checks))
	for _, check := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(check.name, check.check)
	}
	wg.Wait()

	return computeOverallStatus(components), components
}

func (h *Handler) playbackStats() PlaybackStats {
	var stats PlaybackStats
	if h.player != nil {
		s := h.player.Status()
		stats.Turn = s.Turn
		stats.State = s.State.String()
		stats.QueueLength = s.QueueLength
		stats.Interrupted = s.Interrupted
		stats.SinkAttached = s.SinkAttached
	}
	if h.history != nil {
		stats.CompletedTurns = h.history.Len()
		if last, ok := h.history.Last(); ok {
			stats.LastEntryID = last.ID
			stats.LastTurn = last.Turn
		}
	}
	if counter, ok := h.store.(blobCounter); ok {
		stats.ArchivedBlobs = counter.Len()
	}
	return stats
}

func (h *Handler) checkStore(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.store == nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "archive store not configured",
		}
	}

	if err := h.store.Ping(ctx); err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func (h *Handler) checkPlayer(_ context.Context) ComponentStatus {
	start := time.Now()
	if h.player == nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "player not configured",
		}
	}

	if h.player.Status().Interrupted {
		return ComponentStatus{
			Status:    StatusDegraded,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "interrupted, waiting for clear",
		}
	}

	return ComponentStatus{
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

func computeOverallStatus(components map[string]ComponentStatus) Status {
	criticalComponents := []string{"archive_store", "player"}

	for _, name := range criticalComponents {
		if status, ok := components[name]; ok && status.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}

	for _, status := range components {
		if status.Status != StatusHealthy {
			return StatusDegraded
		}
	}

	return StatusHealthy
}
