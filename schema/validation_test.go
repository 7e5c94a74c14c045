package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSchema_Validate(t *testing.T) {
	transfer, err := For[transferParams]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	list, err := For[listParams]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	tests := []struct {
		name    string
		schema  *Schema
		data    string
		wantErr string // substring; empty means valid
	}{
		{name: "valid object", schema: transfer, data: `{"from":"a","to":"b","amount":12.5}`},
		{name: "missing required", schema: transfer, data: `{"from":"a"}`, wantErr: "to: required field is missing"},
		{name: "wrong property type", schema: transfer, data: `{"from":1,"to":"b"}`, wantErr: "from: expected string"},
		{name: "below minimum", schema: transfer, data: `{"from":"a","to":"b","amount":-1}`, wantErr: "less than minimum"},
		{name: "above maximum", schema: transfer, data: `{"from":"a","to":"b","amount":1001}`, wantErr: "greater than maximum"},
		{name: "object expected", schema: transfer, data: `[1,2]`, wantErr: "expected object"},
		{name: "enum member", schema: list, data: `{"order":"asc","limit":10}`},
		{name: "enum violation", schema: list, data: `{"order":"sideways"}`, wantErr: "order: value must be one of"},
		{name: "decimal for integer", schema: list, data: `{"limit":2.5}`, wantErr: "limit: expected integer"},
		{name: "null is accepted", schema: transfer, data: `null`},
		{name: "null property is accepted", schema: transfer, data: `{"from":null,"to":"b"}`},
		{name: "invalid JSON", schema: transfer, data: `{`, wantErr: "invalid JSON"},
		{
			name:   "array items",
			schema: &Schema{Type: "array", Items: &Schema{Type: "integer"}},
			data:   `[1,2,"three"]`, wantErr: "[2]: expected integer",
		},
		{
			name:   "array expected",
			schema: &Schema{Type: "array"},
			data:   `{"a":1}`, wantErr: "expected array",
		},
		{
			name:   "additional properties",
			schema: &Schema{Type: "object", AdditionalProperties: &Schema{Type: "boolean"}},
			data:   `{"a":true,"b":"no"}`, wantErr: "b: expected boolean",
		},
		{
			name:   "numeric enum",
			schema: &Schema{Type: "integer", Enum: []any{float64(1), float64(2)}},
			data:   `3`, wantErr: "value must be one of",
		},
		{
			name:   "date-time format",
			schema: &Schema{Type: "string", Format: "date-time"},
			data:   `"2024-02-30"`, wantErr: "RFC 3339",
		},
		{
			name:   "valid date-time",
			schema: &Schema{Type: "string", Format: "date-time"},
			data:   `"2024-02-03T10:00:00Z"`,
		},
		{
			name:   "number accepts integer",
			schema: &Schema{Type: "number"},
			data:   `3`,
		},
		{
			name:   "string length",
			schema: &Schema{Type: "string", MinLength: intPtr(2), MaxLength: intPtr(3)},
			data:   `"abcd"`, wantErr: "at most 3 characters",
		},
		{
			name:   "length counts runes",
			schema: &Schema{Type: "string", MaxLength: intPtr(2)},
			data:   `"éé"`,
		},
		{
			name:   "too few items",
			schema: &Schema{Type: "array", MinItems: intPtr(2)},
			data:   `[1]`, wantErr: "at least 2 items",
		},
		{
			name:   "too many items",
			schema: &Schema{Type: "array", MaxItems: intPtr(1)},
			data:   `[1,2]`, wantErr: "at most 1 items",
		},
		{
			name:   "boolean expected",
			schema: &Schema{Type: "boolean"},
			data:   `"yes"`, wantErr: "expected boolean, got string",
		},
		{
			name:   "empty schema accepts anything",
			schema: &Schema{},
			data:   `{"x":[1,"a",null]}`,
		},
		{
			name:   "nil schema accepts anything",
			schema: nil,
			data:   `"whatever"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate(json.RawMessage(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchema_ValidateValue(t *testing.T) {
	s := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"id":    {Type: "integer", Enum: []any{float64(7)}},
			"names": {Type: "array", Items: &Schema{Type: "string"}},
		},
		Required: []string{"id"},
	}

	if err := s.ValidateValue(map[string]any{"id": 7, "names": []string{"a"}}); err != nil {
		t.Errorf("expected valid, got: %v", err)
	}

	err := s.ValidateValue(map[string]any{"names": []any{"a", 1}})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(verrs), verrs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{name: "empty", errs: nil, want: ""},
		{
			name: "single",
			errs: ValidationErrors{{Path: "a", Message: "bad"}},
			want: "a: bad",
		},
		{
			name: "single without path",
			errs: ValidationErrors{{Message: "bad"}},
			want: "bad",
		},
		{
			name: "multiple",
			errs: ValidationErrors{{Path: "a", Message: "bad"}, {Path: "b", Message: "worse"}},
			want: "validation failed:\n  - a: bad\n  - b: worse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.errs.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func intPtr(n int) *int { return &n }
