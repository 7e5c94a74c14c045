package transport

import (
	"context"
	"fmt"
	"net/http"
)

// Request is a single outbound exchange.
type Request struct {
	// URL is the endpoint address, used verbatim.
	URL string
	// Method is the HTTP method; the client always uses POST.
	Method string
	// Header holds the headers to send, including Content-Type.
	Header http.Header
	// Body is the encoded envelope.
	Body []byte
	// Oneway marks exchanges whose reply is never read (notifications).
	// Stream transports use it to avoid waiting for a frame that will not come.
	Oneway bool
}

// Response is the result of an exchange.
type Response struct {
	// OK reports a success status at the transport level.
	OK bool
	// StatusCode and Status describe the transport status, when there is one.
	StatusCode int
	Status     string
	// Header holds response headers, when the transport has them.
	Header http.Header
	// Body is the raw reply body. It may be empty.
	Body []byte
}

// Exchanger performs one request/response exchange.
type Exchanger interface {
	Exchange(ctx context.Context, req *Request) (*Response, error)
}

// ExchangeFunc is an adapter to allow ordinary functions as exchangers.
type ExchangeFunc func(ctx context.Context, req *Request) (*Response, error)

// Exchange calls f(ctx, req).
func (f ExchangeFunc) Exchange(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Size presets for response limits.
const (
	// KB is 1024 bytes.
	KB = 1024
	// MB is 1024 * 1024 bytes.
	MB = 1024 * 1024
)

// ResponseTooLargeError is returned when a reply exceeds the configured limit.
type ResponseTooLargeError struct {
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("transport: response exceeds limit of %d bytes", e.Limit)
}

// cloneHeader copies h so exchangers never share header maps with callers.
func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return http.Header{}
	}
	return h.Clone()
}
