package handler

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"krankmeldung/internal/middleware"
	"krankmeldung/internal/rpc"
)

// Interceptors is the unary chain of the gRPC server. Login and the health
// check are open; status changes need an admin.
func Interceptors(v middleware.Verifier, rl *middleware.RateLimiter) grpc.ServerOption {
	return grpc.ChainUnaryInterceptor(
		middleware.RateLimit(rl, rpc.MethodLogin),
		middleware.Auth(v, rpc.MethodLogin, healthpb.Health_Check_FullMethodName),
		middleware.AdminOnly(rpc.MethodUpdateStatus),
	)
}
