package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := NewForTest()
	b := NewForTest()

	a.ChunksRendered.Inc()
	if got := testutil.ToFloat64(a.ChunksRendered); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	if got := testutil.ToFloat64(b.ChunksRendered); got != 0 {
		t.Errorf("registries should be independent, got %f", got)
	}
}

func TestMiddleware_CountsRequests(t *testing.T) {
	m := NewForTest()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodGet, "/ping", "200"))
	if got != 1 {
		t.Errorf("expected 1 request counted, got %f", got)
	}
}

func TestRegisterRoutes_ExposesMetrics(t *testing.T) {
	m := NewForTest()
	m.TurnsCompleted.Inc()

	e := echo.New()
	m.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "streamplay_turns_completed_total 1") {
		t.Error("expected turns counter in exposition output")
	}
}
