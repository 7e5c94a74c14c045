package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// RequestID returns middleware that tags each invocation with a request ID,
// sent as the X-Request-ID header. An ID already present in the context is
// preserved. The request ID is for tracing only; it is unrelated to the
// JSON-RPC correlation id.
func RequestID() Middleware {
	return RequestIDWithGenerator(uuid.NewString)
}

// RequestIDWithGenerator returns middleware that uses a custom ID generator.
func RequestIDWithGenerator(generator func() string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if RequestIDFromContext(ctx) != "" {
				return next(ctx, req)
			}
			return next(ContextWithRequestID(ctx, generator()), req)
		}
	}
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return protocol.GetRequestMeta(ctx, protocol.HeaderRequestID)
}

// ContextWithRequestID returns a new context with the request ID set.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return protocol.SetRequestMeta(ctx, protocol.HeaderRequestID, id)
}
