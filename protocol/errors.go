package protocol

import (
	"encoding/json"
	"fmt"
)

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Implementation-defined server error range.
const (
	CodeServerErrorMin = -32099
	CodeServerErrorMax = -32000
)

// Error is the error object of a JSON-RPC 2.0 reply. It is returned to
// callers exactly as the remote party sent it: Data keeps the original
// bytes and is never re-encoded.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc: %s (code: %d)", e.Message, e.Code)
}

// Is implements errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrorCode returns the numeric code.
func (e *Error) ErrorCode() int {
	return e.Code
}

// DecodeData unmarshals the optional data member into v.
// It is a no-op when the error carries no data.
func (e *Error) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// IsServerError reports whether the code lies in the reserved
// implementation-defined server error range.
func (e *Error) IsServerError() bool {
	return e.Code >= CodeServerErrorMin && e.Code <= CodeServerErrorMax
}

// WithData returns a copy of the error carrying data encoded as JSON.
func (e *Error) WithData(data any) (*Error, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Error{Code: e.Code, Message: e.Message, Data: raw}, nil
}

// NewError creates an error with an arbitrary code.
func NewError(code int, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NewParseError creates a parse error (-32700).
func NewParseError(msg string) *Error {
	return &Error{Code: CodeParseError, Message: msg}
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound(msg string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: msg}
}

// NewInvalidParams creates an invalid params error (-32602).
func NewInvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}
