package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/metrics"
	"github.com/eleven-am/streamplay/internal/playback"
	"github.com/eleven-am/streamplay/internal/render"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideBackendFactory(cfg *Config, logger *slog.Logger) (render.Factory, error) {
	switch cfg.RenderBackend {
	case RenderBackendSpeaker:
		return render.NewSpeakerFactory(logger), nil
	case RenderBackendVirtual:
		return render.NewVirtualFactory(), nil
	default:
		return nil, fmt.Errorf("unknown render backend %q", cfg.RenderBackend)
	}
}

func ProvideBlobStore(cfg *Config, redisClient *redis.Client) (archive.BlobStore, error) {
	switch cfg.ArchiveBackend {
	case ArchiveBackendRedis:
		return archive.NewRedisStore(redisClient, cfg.ArchiveTTL), nil
	case ArchiveBackendMemory:
		return archive.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}

func ProvideArchiver(store archive.BlobStore, cfg *Config) archive.Archiver {
	return archive.NewWAVArchiver(store, cfg.PublicBaseURL)
}

func ProvideHistory() *archive.History {
	return archive.NewHistory()
}

func ProvidePlayer(
	cfg *Config,
	factory render.Factory,
	archiver archive.Archiver,
	history *archive.History,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*playback.Player, error) {
	return playback.New(playback.Config{
		Backend:   factory,
		Archiver:  archiver,
		History:   history,
		Metrics:   m,
		TaskID:    cfg.TaskID,
		Lookahead: cfg.Lookahead,
	}, logger)
}

func StartPlayer(lc fx.Lifecycle, player *playback.Player, logger *slog.Logger) {
	var cancel context.CancelFunc
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				if err := player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("playback loop stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return player.Close()
		},
	})
}

var PlaybackModule = fx.Options(
	fx.Provide(
		ProvideBackendFactory,
		ProvideBlobStore,
		ProvideArchiver,
		ProvideHistory,
		ProvidePlayer,
	),
	fx.Invoke(StartPlayer),
)
