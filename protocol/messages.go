package protocol

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
)

// Request is an outbound JSON-RPC 2.0 envelope. A Request without an ID is a
// notification; the remote party must not reply to it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification returns true if this request has no ID (is a notification).
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// NewRequest builds a call envelope. Params are marshalled with
// encoding/json; a nil params value omits the member and a json.RawMessage
// is used as-is.
func NewRequest(id json.RawMessage, method string, params any) (*Request, error) {
	raw, err := MarshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  raw,
	}, nil
}

// NewNotification builds an envelope without an ID.
func NewNotification(method string, params any) (*Request, error) {
	return NewRequest(nil, method, params)
}

// MarshalParams encodes a params value for an envelope.
func MarshalParams(params any) (json.RawMessage, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	}
	return json.Marshal(params)
}

// Response is an inbound JSON-RPC 2.0 reply. A conformant reply carries
// exactly one of Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a successful reply. A nil result is encoded as null so
// the member is always present.
func NewResponse(id json.RawMessage, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  raw,
	}, nil
}

// NewErrorResponse creates an error reply.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	if id == nil {
		id = NullID()
	}
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   err,
	}
}

// StringID returns a string correlation identifier.
func StringID(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

// NumberID returns a numeric correlation identifier.
func NumberID(n int64) json.RawMessage {
	return json.RawMessage(strconv.FormatInt(n, 10))
}

// NullID returns the null identifier.
func NullID() json.RawMessage {
	return json.RawMessage("null")
}

// SameID reports whether two identifiers hold the same JSON value.
// Whitespace and numeric spelling are ignored; type is not.
func SameID(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
