package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

var _ Exchanger = (*WebSocket)(nil)

// closeGrace bounds how long the close handshake may take.
const closeGrace = time.Second

// WebSocket exchanges envelopes over a WebSocket connection that lives for a
// single exchange.
type WebSocket struct {
	dialer    *websocket.Dialer
	readLimit int64
}

// WebSocketOption configures a WebSocket transport.
type WebSocketOption func(*WebSocket)

// WithDialer sets the dialer used to open connections.
func WithDialer(d *websocket.Dialer) WebSocketOption {
	return func(ws *WebSocket) {
		ws.dialer = d
	}
}

// WithWebSocketReadLimit limits the size of the reply frame. Zero means the
// gorilla default (unlimited).
func WithWebSocketReadLimit(n int64) WebSocketOption {
	return func(ws *WebSocket) {
		ws.readLimit = n
	}
}

// NewWebSocket creates a new WebSocket transport.
func NewWebSocket(opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		dialer: websocket.DefaultDialer,
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws
}

// Exchange dials req.URL, writes req.Body as one text frame and, unless
// req.Oneway is set, reads one frame as the reply. The connection is closed
// before Exchange returns.
func (ws *WebSocket) Exchange(ctx context.Context, req *Request) (*Response, error) {
	target, err := websocketURL(req.URL)
	if err != nil {
		return nil, err
	}

	conn, hs, err := ws.dialer.DialContext(ctx, target, cloneHeader(req.Header))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Closing the connection unblocks reads and writes once ctx is done, so
	// any error observed after that point is reported as ctx.Err().
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if ws.readLimit > 0 {
		conn.SetReadLimit(ws.readLimit)
	}

	if err := conn.WriteMessage(websocket.TextMessage, req.Body); err != nil {
		return nil, contextOr(ctx, err)
	}

	resp := &Response{
		OK:         true,
		StatusCode: hs.StatusCode,
		Status:     hs.Status,
		Header:     hs.Header,
	}

	if !req.Oneway {
		_, body, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				return nil, &ResponseTooLargeError{Limit: ws.readLimit}
			}
			return nil, contextOr(ctx, err)
		}
		resp.Body = body
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeGrace))

	return resp, nil
}

// websocketURL maps http(s) endpoints onto ws(s).
func websocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("transport: unsupported websocket scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// contextOr prefers the context error once the context is done, since a
// closed connection is then only a symptom.
func contextOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

