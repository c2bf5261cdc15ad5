package interceptor

import (
	"context"
	"time"

	"rental-gateway/internal/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Logging returns a unary server interceptor that logs every RPC with its
// status code and duration.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		logger.DebugContext(ctx, "gRPC call",
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
