package middleware

import (
	"context"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// HandlerFunc performs one invocation. For calls it returns the classified
// reply; a remote error is returned both in the reply and as the error. For
// notifications the reply is nil.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// Middleware wraps a handler with additional behavior. Middleware must not
// wrap or replace errors returned by next.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middleware so that Chain(m1, m2)(h) runs m1, then m2, then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(final HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// When applies m only to invocations for which match returns true. Other
// invocations go straight to next.
func When(match func(req *protocol.Request) bool, m Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		wrapped := m(next)
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if match(req) {
				return wrapped(ctx, req)
			}
			return next(ctx, req)
		}
	}
}

// ForMethods applies m only to the named methods.
func ForMethods(m Middleware, methods ...string) Middleware {
	set := make(map[string]struct{}, len(methods))
	for _, name := range methods {
		set[name] = struct{}{}
	}
	return When(func(req *protocol.Request) bool {
		_, ok := set[req.Method]
		return ok
	}, m)
}

// CallsOnly applies m to calls and lets notifications through untouched.
func CallsOnly(m Middleware) Middleware {
	return When(func(req *protocol.Request) bool { return !req.IsNotification() }, m)
}
