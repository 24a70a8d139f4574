// Package grpc implements the gRPC transport for voxestate.
//
// The server carries the standard grpc.health.v1 service and reflection.
// The empty service name reports overall health; PrimaryEngineService
// mirrors whether the on-device speech engine has initialized, so
// orchestrators can tell a fully local deployment from one running on the
// network fallback.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/nadzzz/voxestate/internal/transport"
)

// PrimaryEngineService is the health service name for the local speech engine.
const PrimaryEngineService = "voxestate.tts.primary"

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port     int
	interval time.Duration
	server   *grpc.Server
	health   *health.Server
}

// New creates a new gRPC transport on the given port. The server is built
// here so Close never races with Listen.
func New(port int) *Transport {
	t := &Transport{
		port:     port,
		interval: 5 * time.Second,
		server:   grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(t.server, t.health)
	reflection.Register(t.server)
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server. It blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.serve(ctx, lis, svc)
}

func (t *Transport) serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	t.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	t.syncPrimary(svc)

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("grpc transport shutting down")
				t.health.Shutdown()
				t.server.GracefulStop()
				return
			case <-ticker.C:
				t.syncPrimary(svc)
			}
		}
	}()

	if err := t.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

func (t *Transport) syncPrimary(svc transport.Service) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if svc.PrimaryReady() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus(PrimaryEngineService, status)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.server.GracefulStop()
	return nil
}
