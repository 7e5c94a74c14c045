package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "method not found",
			err:  &Error{Code: CodeMethodNotFound, Message: "Method not found"},
			want: "jsonrpc: Method not found (code: -32601)",
		},
		{
			name: "application error",
			err:  &Error{Code: 42, Message: "insufficient funds"},
			want: "jsonrpc: insufficient funds (code: 42)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err1 := NewInternalError("test")
	err2 := NewInternalError("different message")
	err3 := NewInvalidParams("test")

	if !errors.Is(err1, err2) {
		t.Error("errors with same code should match with errors.Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match with errors.Is")
	}
	if errors.Is(err1, errors.New("test")) {
		t.Error("non-protocol errors should not match")
	}
}

func TestError_DecodeData(t *testing.T) {
	t.Run("decodes structured data", func(t *testing.T) {
		e := &Error{Code: 1, Message: "x", Data: json.RawMessage(`{"retry_after":5}`)}
		var data struct {
			RetryAfter int `json:"retry_after"`
		}
		if err := e.DecodeData(&data); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if data.RetryAfter != 5 {
			t.Errorf("RetryAfter = %d, want 5", data.RetryAfter)
		}
	})

	t.Run("no data is a no-op", func(t *testing.T) {
		e := &Error{Code: 1, Message: "x"}
		var v any = "unchanged"
		if err := e.DecodeData(&v); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "unchanged" {
			t.Errorf("v = %v, want unchanged", v)
		}
	})
}

func TestError_WithData(t *testing.T) {
	e, err := NewInvalidParams("validation failed").WithData(map[string]string{"field": "query"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(e.Data) != `{"field":"query"}` {
		t.Errorf("Data = %s", e.Data)
	}
	if e.Code != CodeInvalidParams {
		t.Errorf("Code = %d, want %d", e.Code, CodeInvalidParams)
	}
}

func TestError_IsServerError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{-32000, true},
		{-32099, true},
		{-32050, true},
		{-32100, false},
		{-31999, false},
		{CodeMethodNotFound, false},
	}
	for _, tt := range tests {
		if got := NewError(tt.code, "x").IsServerError(); got != tt.want {
			t.Errorf("IsServerError(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code int
	}{
		{"parse", NewParseError("x"), CodeParseError},
		{"invalid request", NewInvalidRequest("x"), CodeInvalidRequest},
		{"method not found", NewMethodNotFound("x"), CodeMethodNotFound},
		{"invalid params", NewInvalidParams("x"), CodeInvalidParams},
		{"internal", NewInternalError("x"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.code)
			}
		})
	}
}
