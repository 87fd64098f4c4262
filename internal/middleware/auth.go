package middleware

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"krankmeldung/internal/auth"
)

// Auth verifies the bearer token in the call metadata for every method not
// listed in open and stores the claims on the context.
func Auth(v Verifier, open ...string) grpc.UnaryServerInterceptor {
	skip := set(open)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if skip[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = auth.BearerToken(vals[0])
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, err := v.Verify(ctx, raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		return next(auth.WithClaims(ctx, claims), req)
	}
}

// AdminOnly rejects non-admin callers of the listed methods. It must run
// after Auth.
func AdminOnly(methods ...string) grpc.UnaryServerInterceptor {
	guarded := set(methods)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if !guarded[info.FullMethod] {
			return next(ctx, req)
		}
		c, ok := auth.FromContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "no session")
		}
		if !c.IsAdmin {
			return nil, status.Error(codes.PermissionDenied, "admin only")
		}
		return next(ctx, req)
	}
}

func host(addr string) string {
	h, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return h
}
