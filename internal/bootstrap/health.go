package bootstrap

import (
	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/health"
	"github.com/eleven-am/streamplay/internal/playback"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const version = "1.0.0"

func ProvideHealthHandler(store archive.BlobStore, player *playback.Player, history *archive.History) *health.Handler {
	return health.NewHandler(store, player, history, version)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
