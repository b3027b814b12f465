package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/eleven-am/streamplay/internal/archive"
	"github.com/eleven-am/streamplay/internal/health"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServingStatus(t *testing.T) {
	tests := []struct {
		in   health.Status
		want healthpb.HealthCheckResponse_ServingStatus
	}{
		{health.StatusHealthy, healthpb.HealthCheckResponse_SERVING},
		{health.StatusDegraded, healthpb.HealthCheckResponse_SERVING},
		{health.StatusUnhealthy, healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		if got := servingStatus(tt.in); got != tt.want {
			t.Errorf("servingStatus(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProbeHealth_SetsStatus(t *testing.T) {
	hs := grpchealth.NewServer()
	h := health.NewHandler(nil, nil, archive.NewHistory(), "test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		probeHealth(ctx, h, hs)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if err == nil && resp.Status == healthpb.HealthCheckResponse_NOT_SERVING {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done

	resp, err := hs.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING without components, got %v", resp.Status)
	}
}
