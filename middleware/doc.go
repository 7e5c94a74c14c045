// Package middleware provides interceptors for JSON-RPC client invocations.
//
// Middleware follows the standard pattern where each middleware wraps the
// next handler in the chain. The innermost handler is the client core: one
// transport exchange followed by reply classification.
//
// # Basic Usage
//
//	c := client.New(endpoint, client.WithMiddleware(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	))
//
// # Available Middleware
//
//   - Recover: turns panics in inner layers into *PanicError
//   - RequestID: sends an X-Request-ID header for tracing
//   - Timeout: bounds each invocation
//   - Logging: logs method, kind, duration and error code
//   - RateLimit, RateLimitByMethod: client-side token bucket
//   - SizeLimit: rejects oversized params before sending
//   - BearerToken, BasicAuth, APIKey, Credentials: attach credentials
//   - OTel: OpenTelemetry client spans and metrics
//
// When, ForMethods and CallsOnly restrict a middleware to some invocations:
//
//	middleware.CallsOnly(middleware.RateLimit(10, 20))
//
// Middleware never wraps the errors they pass through, so a remote error
// still reaches the caller as a *protocol.Error.
//
// # Default Stacks
//
//	// Recover + RequestID + Logging
//	stack := middleware.DefaultStack(logger)
//
//	// Recover + RequestID + Timeout + Logging
//	stack := middleware.DefaultStackWithTimeout(logger, 30*time.Second)
package middleware
