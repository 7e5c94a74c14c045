package protocol

import (
	"encoding/json"
	"testing"
)

func TestRequest_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		id     json.RawMessage
		method string
		params any
		want   string
	}{
		{
			name:   "call with positional params",
			id:     StringID("abc"),
			method: "add",
			params: []int{1, 2},
			want:   `{"jsonrpc":"2.0","id":"abc","method":"add","params":[1,2]}`,
		},
		{
			name:   "call with named params",
			id:     NumberID(7),
			method: "greet",
			params: map[string]string{"name": "ada"},
			want:   `{"jsonrpc":"2.0","id":7,"method":"greet","params":{"name":"ada"}}`,
		},
		{
			name:   "call without params",
			id:     StringID("abc"),
			method: "status",
			want:   `{"jsonrpc":"2.0","id":"abc","method":"status"}`,
		},
		{
			name:   "call with null id",
			id:     NullID(),
			method: "status",
			want:   `{"jsonrpc":"2.0","id":null,"method":"status"}`,
		},
		{
			name:   "notification",
			method: "ping",
			params: json.RawMessage(`{"n":1}`),
			want:   `{"jsonrpc":"2.0","method":"ping","params":{"n":1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.id, tt.method, tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := json.Marshal(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRequest_IsNotification(t *testing.T) {
	call, _ := NewRequest(StringID("1"), "add", nil)
	if call.IsNotification() {
		t.Error("request with id reported as notification")
	}

	nullID, _ := NewRequest(NullID(), "add", nil)
	if nullID.IsNotification() {
		t.Error("request with null id reported as notification")
	}

	note, _ := NewNotification("ping", nil)
	if !note.IsNotification() {
		t.Error("request without id not reported as notification")
	}
}

func TestMarshalParams(t *testing.T) {
	t.Run("nil omits params", func(t *testing.T) {
		raw, err := MarshalParams(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if raw != nil {
			t.Errorf("raw = %s, want nil", raw)
		}
	})

	t.Run("raw message is passed through", func(t *testing.T) {
		in := json.RawMessage(`[ 1, 2 ]`)
		raw, err := MarshalParams(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(raw) != string(in) {
			t.Errorf("raw = %s, want %s", raw, in)
		}
	})

	t.Run("unsupported value fails", func(t *testing.T) {
		if _, err := MarshalParams(make(chan int)); err == nil {
			t.Error("expected error for channel params")
		}
	})
}

func TestResponse_UnmarshalJSON(t *testing.T) {
	t.Run("success reply", func(t *testing.T) {
		var resp Response
		if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":"x","result":{"sum":3}}`), &resp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Result) != `{"sum":3}` {
			t.Errorf("Result = %s", resp.Result)
		}
		if resp.Error != nil {
			t.Error("Error should be nil")
		}
	})

	t.Run("error reply keeps data verbatim", func(t *testing.T) {
		var resp Response
		body := `{"jsonrpc":"2.0","id":"x","error":{"code":-32602,"message":"bad","data":{"field": "a"}}}`
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Error == nil {
			t.Fatal("Error should not be nil")
		}
		if resp.Error.Code != CodeInvalidParams {
			t.Errorf("Code = %d, want %d", resp.Error.Code, CodeInvalidParams)
		}
		if string(resp.Error.Data) != `{"field": "a"}` {
			t.Errorf("Data = %s", resp.Error.Data)
		}
	})
}

func TestNewResponse(t *testing.T) {
	resp, err := NewResponse(NumberID(42), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := json.Marshal(resp)
	if want := `{"jsonrpc":"2.0","id":42,"result":null}`; string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(nil, NewParseError("bad json"))
	got, _ := json.Marshal(resp)
	if want := `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"bad json"}}`; string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestSameID(t *testing.T) {
	tests := []struct {
		name string
		a, b json.RawMessage
		want bool
	}{
		{"identical strings", StringID("a"), StringID("a"), true},
		{"whitespace", json.RawMessage(` "a" `), StringID("a"), true},
		{"numeric spelling", json.RawMessage(`1.0`), NumberID(1), true},
		{"different strings", StringID("a"), StringID("b"), false},
		{"string vs number", StringID("1"), NumberID(1), false},
		{"null vs null", NullID(), NullID(), true},
		{"null vs string", NullID(), StringID("a"), false},
		{"invalid json", json.RawMessage(`{`), StringID("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameID(tt.a, tt.b); got != tt.want {
				t.Errorf("SameID(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
