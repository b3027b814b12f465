package gateway

import (
	"context"
	"log/slog"

	"github.com/eleven-am/streamplay/internal/playback"
	"github.com/eleven-am/streamplay/internal/transport"
	"github.com/labstack/echo/v4"
)

type Player interface {
	Enqueue(data []byte) bool
	Interrupt() int
	Clear() error
	SetSink(sink transport.Sink) (detach func())
	AttachCapture(ctx context.Context, src playback.CaptureSource)
}

type Handler struct {
	player Player
	logger *slog.Logger
}

func NewHandler(player Player, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		player: player,
		logger: logger.With("component", "gateway"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/stream", h.HandleStream)
	g.GET("/capture", h.HandleCapture)
}

// HandleStream upgrades the audio stream socket. The newest stream
// connection receives control messages; older ones keep feeding audio.
func (h *Handler) HandleStream(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	conn := NewStreamConnection(ws, h.logger)
	detach := h.player.SetSink(conn)

	h.logger.Info("stream connected", "connection_id", conn.ID(), "remote", c.RealIP())

	ctx := c.Request().Context()
	go conn.writePump(ctx)
	conn.readPump(ctx, h.player)

	detach()

	h.logger.Info("stream disconnected", "connection_id", conn.ID())
	return nil
}

func (h *Handler) HandleCapture(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	conn := NewCaptureConnection(ws, h.logger)
	h.logger.Info("capture connected", "connection_id", conn.id, "remote", c.RealIP())

	ctx := c.Request().Context()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.player.AttachCapture(ctx, conn)
	}()

	conn.readPump(ctx)
	<-done

	h.logger.Info("capture disconnected", "connection_id", conn.id)
	return nil
}
