package bootstrap

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/eleven-am/streamplay/internal/health"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthProbeInterval = 10 * time.Second

func NewGRPCServer() *grpc.Server {
	return grpc.NewServer()
}

func ProvideGRPCHealthServer() *grpchealth.Server {
	return grpchealth.NewServer()
}

func RegisterHealthService(server *grpc.Server, healthServer *grpchealth.Server) {
	healthpb.RegisterHealthServer(server, healthServer)
}

func servingStatus(s health.Status) healthpb.HealthCheckResponse_ServingStatus {
	if s == health.StatusUnhealthy {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// probeHealth mirrors the HTTP readiness result into the gRPC health service
// until ctx is cancelled.
func probeHealth(ctx context.Context, h *health.Handler, healthServer *grpchealth.Server) {
	ticker := time.NewTicker(healthProbeInterval)
	defer ticker.Stop()

	for {
		status, _ := h.Check(ctx)
		healthServer.SetServingStatus("", servingStatus(status))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func StartGRPCServer(lc fx.Lifecycle, server *grpc.Server, healthServer *grpchealth.Server, h *health.Handler, cfg *Config, logger *slog.Logger) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}

			var probeCtx context.Context
			probeCtx, cancel = context.WithCancel(context.Background())
			go probeHealth(probeCtx, h, healthServer)

			go func() {
				logger.Info("gRPC server starting", "addr", cfg.GRPCAddr)
				if err := server.Serve(lis); err != nil {
					logger.Error("gRPC server error", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			healthServer.Shutdown()
			server.GracefulStop()
			return nil
		},
	})
}

var GRPCModule = fx.Options(
	fx.Provide(NewGRPCServer, ProvideGRPCHealthServer),
	fx.Invoke(RegisterHealthService),
	fx.Invoke(StartGRPCServer),
)
