// Package protocol defines the JSON-RPC 2.0 envelope types and error codes.
//
// # Envelopes
//
// Request is the outbound envelope. Its ID decides what kind of message it
// is: with an ID it is a call that expects a reply, without one it is a
// notification.
//
//	req, err := protocol.NewRequest(protocol.StringID("7f3c"), "add", []int{1, 2})
//	// {"jsonrpc":"2.0","id":"7f3c","method":"add","params":[1,2]}
//
//	note, err := protocol.NewNotification("ping", nil)
//	// {"jsonrpc":"2.0","method":"ping"}
//
// Response is the inbound reply. A conformant reply carries exactly one of
// Result or Error.
//
// # Errors
//
// Error is the remote error object. It implements error and matches with
// errors.Is by code:
//
//	if errors.Is(err, protocol.NewMethodNotFound("")) { ... }
//
// Standard codes are defined as constants:
//
//	CodeParseError     = -32700
//	CodeInvalidRequest = -32600
//	CodeMethodNotFound = -32601
//	CodeInvalidParams  = -32602
//	CodeInternalError  = -32603
//
// # Request metadata
//
// RequestMeta travels on the context of a single invocation and is sent by
// the transports as headers. Middleware use it to attach request ids and
// credentials without touching the envelope.
package protocol
