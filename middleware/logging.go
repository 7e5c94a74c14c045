package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Logging returns middleware that logs every invocation. Completed
// invocations are logged at info level. A remote error is a valid reply, so
// it is logged at warn level with its code; local failures are logged at
// error level.
func Logging(logger Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			start := time.Now()

			resp, err := next(ctx, req)

			fields := []Field{
				F("method", req.Method),
				F("kind", kind(req)),
				F("duration", time.Since(start)),
			}
			if !req.IsNotification() {
				fields = append(fields, F("id", string(req.ID)))
			}
			if requestID := RequestIDFromContext(ctx); requestID != "" {
				fields = append(fields, F("request_id", requestID))
			}

			var rpcErr *protocol.Error
			switch {
			case err == nil:
				logger.Info(kind(req)+" completed", fields...)
			case errors.As(err, &rpcErr):
				fields = append(fields, F("error_code", rpcErr.Code), F("error", rpcErr.Message))
				logger.Warn(kind(req)+" returned error", fields...)
			default:
				fields = append(fields, F("error", err.Error()))
				logger.Error(kind(req)+" failed", fields...)
			}

			return resp, err
		}
	}
}

func kind(req *protocol.Request) string {
	if req.IsNotification() {
		return "notification"
	}
	return "call"
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
