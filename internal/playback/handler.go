package playback

import (
	"log/slog"
	"net/http"

	"github.com/eleven-am/streamplay/internal/dto"
	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	player *Player
	logger *slog.Logger
}

func NewHandler(player *Player, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		player: player,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/status", h.GetStatus)
	g.POST("/interrupt", h.Interrupt)
	g.POST("/clear", h.Clear)
}

func (h *Handler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, statusToResponse(h.player.Status()))
}

func (h *Handler) Interrupt(c echo.Context) error {
	discarded := h.player.Interrupt()
	return c.JSON(http.StatusOK, dto.InterruptResponse{Discarded: discarded})
}

func (h *Handler) Clear(c echo.Context) error {
	if err := h.player.Clear(); err != nil {
		h.logger.Error("failed to clear playback", "error", err)
		return shared.InternalError("clear_failed", "failed to reset playback")
	}
	return c.JSON(http.StatusOK, dto.ClearResponse{Turn: h.player.Status().Turn})
}

func statusToResponse(s Status) dto.PlaybackStatusResponse {
	return dto.PlaybackStatusResponse{
		Turn:         s.Turn,
		Played:       s.Played,
		State:        s.State.String(),
		CursorSec:    s.Cursor.Seconds(),
		QueueLength:  s.QueueLength,
		Playing:      s.Playing,
		Interrupted:  s.Interrupted,
		SinkAttached: s.SinkAttached,
	}
}
