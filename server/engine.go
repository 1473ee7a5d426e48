package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/workers"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "powermatch.engine"

type QueueStats interface {
	Stats() workers.Stats
}

// EngineServer reports the liveness of the engine process over the standard
// gRPC health protocol. The engine is serving while its queue runner is.
type EngineServer struct {
	queue  QueueStats
	health *health.Server
	grpc   *grpc.Server
}

func NewEngineServer(queue QueueStats) *EngineServer {
	server := &EngineServer{
		queue:  queue,
		health: health.NewServer(),
		grpc:   grpc.NewServer(),
	}

	grpc_health_v1.RegisterHealthServer(server.grpc, server.health)

	return server
}

func (s *EngineServer) Refresh() grpc_health_v1.HealthCheckResponse_ServingStatus {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if s.queue.Stats().State == workers.QueueStopped {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)

	return status
}

// Serve blocks until ctx is done or the listener fails.
func (s *EngineServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.Refresh()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.health.Shutdown()
				s.grpc.GracefulStop()
				return
			case <-ticker.C:
				s.Refresh()
			}
		}
	}()

	config.Logger.Infof("Starting powermatch gRPC health on %s", addr)

	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

func (s *EngineServer) Health() grpc_health_v1.HealthServer {
	return s.health
}
