package middleware

import (
	"context"
	"time"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// Timeout returns middleware that bounds each invocation to d. When the
// deadline passes the exchange is abandoned and the caller receives
// context.DeadlineExceeded from the transport. A shorter deadline already
// on the context wins.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
