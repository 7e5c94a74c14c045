// Package testutil provides test doubles for JSON-RPC clients.
//
// Server is a scripted JSON-RPC 2.0 endpoint on top of httptest that records
// every envelope it receives. MockExchanger is an in-memory
// transport.Exchanger that replays canned replies.
//
// Example usage:
//
//	func TestAdd(t *testing.T) {
//	    srv := testutil.NewServer(t)
//	    srv.Handle("add", func(ctx context.Context, req *protocol.Request) (any, error) {
//	        var nums []int
//	        if err := json.Unmarshal(req.Params, &nums); err != nil {
//	            return nil, protocol.NewInvalidParams(err.Error())
//	        }
//	        return nums[0] + nums[1], nil
//	    })
//
//	    c := client.New(srv.URL)
//	    result, err := c.Call(context.Background(), "add", []int{1, 2})
//	    ...
//	    srv.AssertCalled("add")
//	}
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/felixgeelhaar/rpc-go/protocol"
	"github.com/felixgeelhaar/rpc-go/transport"
)

// HandlerFunc answers one envelope. A *protocol.Error return produces an
// error reply with that error; any other error produces an internal error
// reply. The result is ignored for notifications.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (any, error)

// RawHandlerFunc writes the HTTP reply itself, for scripting replies that
// break the protocol.
type RawHandlerFunc func(w http.ResponseWriter, req *protocol.Request)

// Exchange is one request received by a Server.
type Exchange struct {
	Request *protocol.Request
	Body    []byte
	Header  http.Header
}

// Server is a scripted JSON-RPC endpoint. Methods without a handler are
// answered with a method-not-found error.
type Server struct {
	*httptest.Server

	t testing.TB

	mu        sync.Mutex
	handlers  map[string]HandlerFunc
	raw       map[string]RawHandlerFunc
	exchanges []Exchange
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		t:        t,
		handlers: make(map[string]HandlerFunc),
		raw:      make(map[string]RawHandlerFunc),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)

	return s
}

// Handle sets the handler for method.
func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// HandleRaw sets a handler for method that writes the HTTP reply directly.
func (s *Server) HandleRaw(method string, fn RawHandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[method] = fn
}

// Reply scripts a fixed HTTP status and body for method.
func (s *Server) Reply(method string, status int, body string) {
	s.HandleRaw(method, func(w http.ResponseWriter, _ *protocol.Request) {
		w.Header().Set(protocol.HeaderContentType, protocol.ContentType)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Exchanges returns a copy of everything received so far.
func (s *Server) Exchanges() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

// Requests returns the decoded envelopes received so far.
func (s *Server) Requests() []*protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*protocol.Request, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		out = append(out, ex.Request)
	}
	return out
}

// Last returns the most recent exchange and fails the test if there is none.
func (s *Server) Last() Exchange {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.exchanges) == 0 {
		s.t.Fatal("testutil: no requests received")
	}
	return s.exchanges[len(s.exchanges)-1]
}

// Reset forgets recorded exchanges. Handlers are kept.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = nil
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req protocol.Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.record(Exchange{Body: body, Header: r.Header.Clone()})
		writeJSON(w, http.StatusOK, protocol.NewErrorResponse(nil, protocol.NewParseError(err.Error())))
		return
	}
	s.record(Exchange{Request: &req, Body: body, Header: r.Header.Clone()})

	s.mu.Lock()
	raw := s.raw[req.Method]
	handler := s.handlers[req.Method]
	s.mu.Unlock()

	if raw != nil {
		raw(w, &req)
		return
	}

	var (
		result any
		herr   error
	)
	if handler == nil {
		herr = protocol.NewMethodNotFound(req.Method)
	} else {
		result, herr = handler(r.Context(), &req)
	}

	if req.IsNotification() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, reply(req.ID, result, herr))
}

func (s *Server) record(ex Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, ex)
}

func reply(id json.RawMessage, result any, err error) *protocol.Response {
	if err != nil {
		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(id, rpcErr)
	}
	resp, merr := protocol.NewResponse(id, result)
	if merr != nil {
		return protocol.NewErrorResponse(id, protocol.NewInternalError(merr.Error()))
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(protocol.HeaderContentType, protocol.ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MockExchanger is an in-memory transport.Exchanger. Replies are returned in
// the order they were queued; once the queue is empty every exchange gets
// an empty 200 reply.
type MockExchanger struct {
	mu       sync.Mutex
	replies  []*transport.Response
	err      error
	requests []*transport.Request
}

var _ transport.Exchanger = (*MockExchanger)(nil)

// NewMockExchanger creates a MockExchanger with queued replies.
func NewMockExchanger(replies ...*transport.Response) *MockExchanger {
	return &MockExchanger{replies: replies}
}

// JSONReply builds a transport reply with the given status and body.
func JSONReply(status int, body string) *transport.Response {
	return &transport.Response{
		OK:         status >= 200 && status < 300,
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{protocol.HeaderContentType: []string{protocol.ContentType}},
		Body:       []byte(body),
	}
}

// Queue appends replies.
func (m *MockExchanger) Queue(replies ...*transport.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// FailWith makes every later exchange return err.
func (m *MockExchanger) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Exchange records req and returns the next queued reply.
func (m *MockExchanger) Exchange(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, &transport.Request{
		URL:    req.URL,
		Method: req.Method,
		Header: req.Header.Clone(),
		Body:   bytes.Clone(req.Body),
		Oneway: req.Oneway,
	})

	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(m.replies) == 0 {
		return JSONReply(http.StatusOK, ""), nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return next, nil
}

// Requests returns the recorded transport requests.
func (m *MockExchanger) Requests() []*transport.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*transport.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Envelopes decodes the recorded request bodies.
func (m *MockExchanger) Envelopes() ([]*protocol.Request, error) {
	var out []*protocol.Request
	for _, req := range m.Requests() {
		var env protocol.Request
		if err := json.Unmarshal(req.Body, &env); err != nil {
			return nil, err
		}
		out = append(out, &env)
	}
	return out, nil
}

// AssertCalled fails the test unless a call (not a notification) for method
// was received.
func (s *Server) AssertCalled(method string) {
	s.t.Helper()
	for _, req := range s.Requests() {
		if req != nil && req.Method == method && !req.IsNotification() {
			return
		}
	}
	s.t.Errorf("expected a call to %q", method)
}

// AssertNotified fails the test unless a notification for method was received.
func (s *Server) AssertNotified(method string) {
	s.t.Helper()
	for _, req := range s.Requests() {
		if req != nil && req.Method == method && req.IsNotification() {
			return
		}
	}
	s.t.Errorf("expected a notification %q", method)
}

// AssertRequestCount fails the test unless exactly n requests were received.
func (s *Server) AssertRequestCount(n int) {
	s.t.Helper()
	if got := len(s.Exchanges()); got != n {
		s.t.Errorf("received %d requests, want %d", got, n)
	}
}
