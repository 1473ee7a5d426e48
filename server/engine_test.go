package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zsmartex/powermatch/workers"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type stubQueue struct {
	state workers.QueueState
}

func (q *stubQueue) Stats() workers.Stats {
	return workers.Stats{State: q.state}
}

func TestEngineServerFollowsQueue(t *testing.T) {
	queue := &stubQueue{state: workers.QueueIdle}
	server := NewEngineServer(queue)

	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, server.Refresh())

	resp, err := server.Health().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	queue.state = workers.QueueStopped
	require.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, server.Refresh())

	resp, err = server.Health().Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}
