// Package transport provides the exchange primitives the JSON-RPC client
// sends its envelopes through.
//
// An Exchanger performs exactly one request/response exchange per call:
//
//	type Exchanger interface {
//	    Exchange(ctx context.Context, req *Request) (*Response, error)
//	}
//
// The client never retries, pools or multiplexes; each invocation gets its
// own exchange and an Exchanger must be safe for concurrent use.
//
// # HTTP
//
// HTTP posts the envelope to the endpoint and returns the status and the
// whole body:
//
//	t := transport.NewHTTP(
//	    transport.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
//	    transport.WithMaxResponseSize(4*transport.MB),
//	)
//
// # WebSocket
//
// WebSocket dials a fresh connection for every exchange, writes the envelope
// as one text frame and, unless the request is one-way, reads one frame back:
//
//	t := transport.NewWebSocket()
//
// # Stdio
//
// Stdio writes each envelope as one line to a writer and reads the reply
// line from a reader, for JSON-RPC peers running as child processes:
//
//	cmd := exec.Command("calculator")
//	stdin, _ := cmd.StdinPipe()
//	stdout, _ := cmd.StdoutPipe()
//	t := transport.NewStdio(stdout, stdin)
//
// Exchanges over one Stdio are serialized.
//
// # Custom exchangers
//
// ExchangeFunc adapts an ordinary function, which is the easiest way to stub
// the network in tests:
//
//	t := transport.ExchangeFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
//	    return &transport.Response{OK: true, StatusCode: 200, Body: []byte(`{"jsonrpc":"2.0","id":"1","result":3}`)}, nil
//	})
package transport
