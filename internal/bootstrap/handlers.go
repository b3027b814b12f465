package bootstrap

import (
	"log/slog"
	"os"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/gateway"
	"github.com/eleven-am/streamplay/internal/metrics"
	"github.com/eleven-am/streamplay/internal/playback"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	PlaybackHandler *playback.Handler
	ArchiveHandler  *archive.Handler
	GatewayHandler  *gateway.Handler
	Metrics         *metrics.Metrics
	Config          *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	params.GatewayHandler.RegisterRoutes(api)
	params.ArchiveHandler.RegisterRoutes(api)

	limiter := gateway.RateLimiter(gateway.RateLimiterConfig{
		RequestsPerSecond: params.Config.RateLimitRPS,
		Burst:             params.Config.RateLimitBurst,
		CleanupInterval:   5 * time.Minute,
	})
	params.PlaybackHandler.RegisterRoutes(api.Group("/playback", limiter))

	params.Metrics.RegisterRoutes(e)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return logger
}

func ProvidePlaybackHandler(player *playback.Player, logger *slog.Logger) *playback.Handler {
	return playback.NewHandler(player, logger.With("handler", "playback"))
}

func ProvideArchiveHandler(store archive.BlobStore, history *archive.History, logger *slog.Logger) *archive.Handler {
	return archive.NewHandler(store, history, logger.With("handler", "archive"))
}

func ProvideGatewayHandler(player *playback.Player, logger *slog.Logger) *gateway.Handler {
	return gateway.NewHandler(player, logger.With("handler", "gateway"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvidePlaybackHandler,
		ProvideArchiveHandler,
		ProvideGatewayHandler,
	),
	fx.Invoke(RegisterRoutes),
)
