// Package api exposes the gRPC surface of the order bridge. Only the
// standard health service is served for now; load balancers and
// orchestrators probe it to decide whether to route webhooks here.
package api

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// bridgeService is the health-check service name for the order bridge.
const bridgeService = "tradebridge.OrderBridge"

// HealthServer serves the standard gRPC health service.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	log        *slog.Logger
}

// NewHealthServer creates a gRPC server with the health service registered.
// The bridge service starts in NOT_SERVING until SetReady is called.
func NewHealthServer(log *slog.Logger) *HealthServer {
	gs := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus(bridgeService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	return &HealthServer{
		grpcServer: gs,
		health:     hs,
		log:        log,
	}
}

// SetReady marks the bridge service as SERVING.
func (s *HealthServer) SetReady() {
	s.health.SetServingStatus(bridgeService, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
}

// SetNotReady marks the bridge service as NOT_SERVING.
func (s *HealthServer) SetNotReady() {
	s.health.SetServingStatus(bridgeService, healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
}

// Serve accepts connections on the given listener. It blocks until the
// server is stopped.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("grpc health server listening", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// GracefulStop drains in-flight RPCs and stops the server.
func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
