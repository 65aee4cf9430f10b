package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCHealthServer returns a gRPC server exposing only the standard
// health service plus reflection, for load balancers and grpcurl. All
// business traffic stays on the HTTP API.
func NewGRPCHealthServer() *grpc.Server {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(s)
	return s
}
