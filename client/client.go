package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/rpc-go/middleware"
	"github.com/felixgeelhaar/rpc-go/protocol"
	"github.com/felixgeelhaar/rpc-go/transport"
)

// Client issues JSON-RPC 2.0 calls and notifications to one endpoint.
// A Client is safe for concurrent use; its configuration is fixed by New.
type Client struct {
	endpoint string
	opts     options
	handler  middleware.HandlerFunc
}

// Option configures a Client.
type Option func(*options)

type options struct {
	strict     bool
	verifyID   bool
	transport  transport.Exchanger
	newID      func() string
	header     http.Header
	middleware []middleware.Middleware
	registry   *Registry
}

// WithStrictServerResponse makes a non-success transport status fail the
// invocation with a *StatusError before the body is read.
func WithStrictServerResponse(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithTransport sets the exchanger used for every invocation.
// The default is transport.NewHTTP().
func WithTransport(t transport.Exchanger) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithIDGenerator sets the correlation id generator. Generated ids must be
// unique for the lifetime of the client. The default is uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithHeader adds a header to every exchange.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.header.Add(key, value)
	}
}

// WithMiddleware appends middleware around the client core. Middleware run
// in the order given.
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithRegistry validates params and results of registered methods.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithVerifyID makes calls check that the reply id matches the request id.
func WithVerifyID(verify bool) Option {
	return func(o *options) {
		o.verifyID = verify
	}
}

// New creates a client for endpoint. The endpoint is used verbatim.
func New(endpoint string, opts ...Option) *Client {
	o := options{
		newID:  uuid.NewString,
		header: http.Header{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.transport == nil {
		o.transport = transport.NewHTTP()
	}

	c := &Client{
		endpoint: endpoint,
		opts:     o,
	}
	c.handler = middleware.Chain(o.middleware...)(c.exchange)

	return c
}

// Endpoint returns the endpoint the client was created with.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Strict reports whether strict server response checking is enabled.
func (c *Client) Strict() bool {
	return c.opts.strict
}

// Call invokes method and returns the raw result.
//
// A remote error reply is returned as a *protocol.Error exactly as received.
// Transport failures are returned unmodified. All other failures match one
// of the package's sentinel errors or *StatusError.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if method == "" {
		return nil, ErrEmptyMethod
	}
	req, err := c.newRequest(protocol.StringID(c.opts.newID()), method, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.handler(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no reply", ErrSpecViolation)
	}

	if err := c.opts.registry.validateResult(method, resp.Result); err != nil {
		return nil, err
	}

	return resp.Result, nil
}

// CallInto invokes method and decodes the result into result, which must be
// a pointer. A nil result discards the value.
func (c *Client) CallInto(ctx context.Context, result any, method string, params any) error {
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrResultDecode, method, err)
	}
	return nil
}

// Notify sends method as a notification. The reply body, if any, is never
// read; only the transport outcome is reported.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	req, err := c.newRequest(nil, method, params)
	if err != nil {
		return err
	}

	_, err = c.handler(ctx, req)
	return err
}

// newRequest builds and checks an envelope. A nil id builds a notification.
func (c *Client) newRequest(id json.RawMessage, method string, params any) (*protocol.Request, error) {
	if method == "" {
		return nil, ErrEmptyMethod
	}

	req, err := protocol.NewRequest(id, method, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if req.Params != nil && !json.Valid(req.Params) {
		return nil, fmt.Errorf("%w: params are not valid JSON", ErrInvalidParams)
	}

	if err := c.opts.registry.validateParams(method, req.Params); err != nil {
		return nil, err
	}

	return req, nil
}

// exchange is the innermost handler: one transport exchange, then reply
// classification for calls.
func (c *Client) exchange(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}

	header := c.opts.header.Clone()
	for k, v := range protocol.RequestMetaFromContext(ctx) {
		header.Set(k, v)
	}
	header.Set(protocol.HeaderContentType, protocol.ContentType)

	resp, err := c.opts.transport.Exchange(ctx, &transport.Request{
		URL:    c.endpoint,
		Method: http.MethodPost,
		Header: header,
		Body:   body,
		Oneway: req.IsNotification(),
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrNoResponse
	}

	if c.opts.strict && !resp.OK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if req.IsNotification() {
		return nil, nil
	}

	if !json.Valid(resp.Body) {
		return nil, ErrMalformedResponse
	}

	reply, err := classify(resp.Body)
	if reply == nil {
		return nil, err
	}

	if c.opts.verifyID {
		if verr := verifyID(req.ID, reply); verr != nil {
			return nil, verr
		}
	}

	return reply, err
}
