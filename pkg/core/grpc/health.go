package grpc

import (
	"context"
	"time"

	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/msto63/sexpr/pkg/core/health"
)

// ServingStatus maps a health report to the gRPC health protocol
func ServingStatus(report *health.Report) healthpb.HealthCheckResponse_ServingStatus {
	if report.Healthy() {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// SyncHealth runs the registry once and publishes the result for the
// overall server ("") and each named service
func SyncHealth(ctx context.Context, registry *health.Registry, hs *grpchealth.Server, services ...string) *health.Report {
	report := registry.Check(ctx)
	st := ServingStatus(report)

	hs.SetServingStatus("", st)
	for _, svc := range services {
		hs.SetServingStatus(svc, st)
	}
	return report
}

// WatchHealth re-publishes the registry state every interval until ctx ends
func WatchHealth(ctx context.Context, registry *health.Registry, hs *grpchealth.Server, interval time.Duration, services ...string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	SyncHealth(ctx, registry, hs, services...)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			SyncHealth(checkCtx, registry, hs, services...)
			cancel()
		}
	}
}
