package grpc

import (
	"context"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// probe pings storage once and publishes the result for both the overall
// status and ServiceName.
func (s *HealthServer) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.storage.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "storage ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
