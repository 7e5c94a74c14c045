// Package client implements a JSON-RPC 2.0 client.
//
// Each invocation is one transport exchange. Call sends an envelope with a
// fresh correlation id and classifies the reply; Notify sends an envelope
// without an id and never reads a reply.
//
//	c := client.New("http://localhost:8545/rpc")
//	raw, err := c.Call(ctx, "add", []int{1, 2})
//
// # Errors
//
// A reply carrying an error member is returned as a *protocol.Error, exactly
// as the remote party sent it:
//
//	var rpcErr *protocol.Error
//	if errors.As(err, &rpcErr) && rpcErr.Code == protocol.CodeMethodNotFound {
//	    ...
//	}
//
// Local failures match a sentinel: ErrEmptyMethod and ErrInvalidParams
// before any I/O, ErrMalformedResponse when the body is not JSON, and
// ErrSpecViolation when the reply has neither result nor error. With
// WithStrictServerResponse(true) a non-success transport status is reported
// as a *StatusError without reading the body. Transport errors are returned
// unmodified.
//
// # Typed methods
//
// Method describes a remote method with Go params and result types:
//
//	var add = client.NewMethod[[]int, int]("add")
//	sum, err := add.Call(ctx, c, []int{1, 2})
//
// A Registry adds schema validation of params and results at the client
// boundary. Use Register to derive the schemas from the Go types.
package client
