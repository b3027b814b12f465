package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ChunksEnqueued  prometheus.Counter
	ChunksDropped   prometheus.Counter
	ChunksRendered  prometheus.Counter
	ChunksSkipped   prometheus.Counter
	TurnsCompleted  prometheus.Counter
	Interruptions   prometheus.Counter
	Underruns       prometheus.Counter
	ArchiveFailures prometheus.Counter
	ControlMessages *prometheus.CounterVec
	QueueDepth      prometheus.Gauge
	ScheduleLead    prometheus.Histogram
	CapturedBytes   prometheus.Counter

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration on the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ChunksEnqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_chunks_enqueued_total",
			Help: "Audio chunks accepted into the playback queue",
		}),
		ChunksDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_chunks_dropped_total",
			Help: "Audio chunks dropped on arrival or discarded by an interruption",
		}),
		ChunksRendered: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_chunks_rendered_total",
			Help: "Audio chunks handed to the render backend",
		}),
		ChunksSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_chunks_skipped_total",
			Help: "Dequeued chunks that were not rendered (empty, interrupted or rejected)",
		}),
		TurnsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_turns_completed_total",
			Help: "End-of-turn markers processed",
		}),
		Interruptions: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_interruptions_total",
			Help: "Barge-in interruptions",
		}),
		Underruns: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_underruns_total",
			Help: "Chunks that arrived after the playback timeline had run dry",
		}),
		ArchiveFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_archive_failures_total",
			Help: "Turn archival attempts that failed",
		}),
		ControlMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamplay_control_messages_total",
			Help: "Outbound control messages by action and result",
		}, []string{"action", "result"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "streamplay_queue_depth",
			Help: "Chunks waiting in the playback queue",
		}),
		ScheduleLead: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamplay_schedule_lead_seconds",
			Help:    "Distance between the render clock and a chunk's scheduled start",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		CapturedBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "streamplay_captured_bytes_total",
			Help: "Bytes of locally captured audio mirrored for archival",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streamplay_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamplay_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		gatherer: reg,
	}
}

func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			m.HTTPRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RegisterRoutes(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}
