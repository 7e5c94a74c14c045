// Package rpc is a JSON-RPC 2.0 client for Go.
//
// rpc-go sends calls and notifications to a single endpoint, correlates each
// call with a unique id and classifies the reply into a result or an error,
// providing:
//   - One transport exchange per invocation over HTTP or WebSocket
//   - Remote errors returned verbatim as *Error
//   - Typed method descriptors with schema validation
//   - Gin-style middleware chains (logging, rate limiting, tracing)
//
// Basic usage:
//
//	c := rpc.NewClient("http://localhost:8545/rpc",
//	    rpc.WithStrictServerResponse(true),
//	)
//
//	sum, err := rpc.Call[int](ctx, c, "add", []int{1, 2})
//	if rpcErr, ok := rpc.AsError(err); ok {
//	    log.Printf("remote error %d: %s", rpcErr.Code, rpcErr.Message)
//	}
//
//	err = c.Notify(ctx, "log", map[string]string{"level": "info"})
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/rpc-go/client"
	"github.com/felixgeelhaar/rpc-go/middleware"
	"github.com/felixgeelhaar/rpc-go/protocol"
	"github.com/felixgeelhaar/rpc-go/transport"
)

// Re-export core types for convenience

// Client issues calls and notifications to one endpoint.
type Client = client.Client

// Option configures a Client.
type Option = client.Option

// Envelope types
type Request = protocol.Request
type Response = protocol.Response
type Error = protocol.Error

// Registry types
type Registry = client.Registry
type Signature = client.Signature
type NoParams = client.NoParams

// StatusError is returned in strict mode for non-success transport statuses.
type StatusError = client.StatusError

// Errors reported by the client.
var (
	ErrEmptyMethod       = client.ErrEmptyMethod
	ErrInvalidParams     = client.ErrInvalidParams
	ErrUnknownMethod     = client.ErrUnknownMethod
	ErrMalformedResponse = client.ErrMalformedResponse
	ErrSpecViolation     = client.ErrSpecViolation
	ErrInvalidResult     = client.ErrInvalidResult
	ErrResultDecode      = client.ErrResultDecode
	ErrNoResponse        = client.ErrNoResponse
	ErrRateLimited       = middleware.ErrRateLimited
)

// Client options
var (
	WithStrictServerResponse = client.WithStrictServerResponse
	WithTransport            = client.WithTransport
	WithIDGenerator          = client.WithIDGenerator
	WithHeader               = client.WithHeader
	WithMiddleware           = client.WithMiddleware
	WithRegistry             = client.WithRegistry
	WithVerifyID             = client.WithVerifyID
)

// NewClient creates a client for endpoint. Without WithTransport it sends
// every invocation as an HTTP POST.
func NewClient(endpoint string, opts ...Option) *Client {
	return client.New(endpoint, opts...)
}

// NewWebSocketClient creates a client that opens one WebSocket connection
// per invocation. http and https endpoints are mapped to ws and wss.
func NewWebSocketClient(endpoint string, opts ...Option) *Client {
	return client.New(endpoint, append([]Option{WithTransport(transport.NewWebSocket())}, opts...)...)
}

// NewStdioClient creates a client that exchanges newline-delimited envelopes
// with a peer that reads from w and writes to r.
func NewStdioClient(r io.Reader, w io.Writer, opts ...Option) *Client {
	return client.New("stdio", append([]Option{WithTransport(transport.NewStdio(r, w))}, opts...)...)
}

// NewRegistry creates an empty method registry.
func NewRegistry() *Registry {
	return client.NewRegistry()
}

// Method is a typed descriptor for a remote method.
type Method[P, R any] = client.Method[P, R]

// NewMethod returns a typed descriptor for name.
func NewMethod[P, R any](name string) Method[P, R] {
	return client.NewMethod[P, R](name)
}

// Register derives a signature from P and R and adds it to reg.
func Register[P, R any](reg *Registry, name string) (Method[P, R], error) {
	return client.Register[P, R](reg, name)
}

// MustRegister is like Register but panics on error.
func MustRegister[P, R any](reg *Registry, name string) Method[P, R] {
	return client.MustRegister[P, R](reg, name)
}

// Call invokes method on c and decodes the result into an R.
func Call[R any](ctx context.Context, c *Client, method string, params any) (R, error) {
	var result R
	err := c.CallInto(ctx, &result, method, params)
	return result, err
}

// CallRaw invokes method on c and returns the undecoded result.
func CallRaw(ctx context.Context, c *Client, method string, params any) (json.RawMessage, error) {
	return c.Call(ctx, method, params)
}

// AsError reports whether err is a remote JSON-RPC error and returns it.
func AsError(err error) (*Error, bool) {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}

// IsLocal reports whether err was produced locally rather than by the
// remote party. Nil is not local.
func IsLocal(err error) bool {
	if err == nil {
		return false
	}
	_, remote := AsError(err)
	return !remote
}

// Describe formats err for display, including the remote error data when
// present.
func Describe(err error) string {
	rpcErr, ok := AsError(err)
	if !ok || len(rpcErr.Data) == 0 {
		return fmt.Sprint(err)
	}
	return fmt.Sprintf("%s data=%s", rpcErr.Error(), rpcErr.Data)
}

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field
type RateLimitOption = middleware.RateLimitOption

// RateLimit re-exports for convenience.
var (
	RateLimit           = middleware.RateLimit
	RateLimitByMethod   = middleware.RateLimitByMethod
	WithRateLimitLogger = middleware.WithRateLimitLogger
	WithRateLimitWait   = middleware.WithRateLimitWait
)

// SizeLimit re-exports for convenience.
type SizeLimitOption = middleware.SizeLimitOption

var (
	SizeLimit           = middleware.SizeLimit
	WithSizeLimitLogger = middleware.WithSizeLimitLogger
)

// Size limit presets.
const (
	KB = middleware.KB
	MB = middleware.MB
)

// Credentials re-exports for convenience.
var (
	BearerToken = middleware.BearerToken
	BasicAuth   = middleware.BasicAuth
	APIKey      = middleware.APIKey
)

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// ForMethods applies m only to the named methods.
func ForMethods(m Middleware, methods ...string) Middleware {
	return middleware.ForMethods(m, methods...)
}

// CallsOnly applies m to calls and lets notifications through untouched.
func CallsOnly(m Middleware) Middleware {
	return middleware.CallsOnly(m)
}

// Recover returns middleware that turns panics in inner layers into errors.
func Recover() Middleware {
	return middleware.Recover()
}

// Timeout returns middleware that bounds each invocation to d.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that sends an X-Request-ID header.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs every invocation.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended client middleware stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// DefaultMiddlewareWithTimeout returns the default stack with a timeout middleware.
func DefaultMiddlewareWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return middleware.DefaultStackWithTimeout(logger, timeout)
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}
