package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

var _ Exchanger = (*HTTP)(nil)

// HTTP exchanges envelopes as HTTP requests.
type HTTP struct {
	client    *http.Client
	maxSize   int64
	userAgent string
}

// HTTPOption configures the HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the client used for exchanges.
// The default is http.DefaultClient.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = c
	}
}

// WithMaxResponseSize limits the size of reply bodies. Zero means unlimited.
func WithMaxResponseSize(n int64) HTTPOption {
	return func(h *HTTP) {
		h.maxSize = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// NewHTTP creates a new HTTP transport.
func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Exchange sends req and reads the complete reply body. Errors from the
// underlying http.Client are returned as-is.
func (h *HTTP) Exchange(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	httpReq.Header = cloneHeader(req.Header)
	if h.userAgent != "" {
		httpReq.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if h.maxSize > 0 && resp.ContentLength > h.maxSize {
		return nil, &ResponseTooLargeError{Limit: h.maxSize}
	}

	var r io.Reader = resp.Body
	if h.maxSize > 0 {
		// One extra byte tells an exact-size body from an oversized one.
		r = io.LimitReader(resp.Body, h.maxSize+1)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if h.maxSize > 0 && int64(len(body)) > h.maxSize {
		return nil, &ResponseTooLargeError{Limit: h.maxSize}
	}

	return &Response{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
