package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "rental-ledger"

// HealthServer exposes the standard gRPC health protocol and keeps its status
// in step with a probe function.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	probe  func(ctx context.Context) error
	logger *slog.Logger
}

func NewHealthServer(probe func(ctx context.Context) error, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)
	return &HealthServer{grpc: gs, health: hs, probe: probe, logger: logger}
}

// Serve blocks until the listener fails or Stop is called. The status is
// refreshed every interval until ctx is done.
func (h *HealthServer) Serve(ctx context.Context, lis net.Listener, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h.refresh(ctx)
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				h.refresh(ctx)
			}
		}
	}()
	h.logger.Info("grpc.health.listening", "addr", lis.Addr().String())
	return h.grpc.Serve(lis)
}

func (h *HealthServer) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if h.probe != nil {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := h.probe(pctx)
		cancel()
		if err != nil {
			h.logger.Warn("grpc.health.not_serving", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Stop marks the service down and stops the server gracefully.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
