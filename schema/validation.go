package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Schema type constants.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

// ValidationError is one violation found in a value.
type ValidationError struct {
	Path    string // dotted path to the value, e.g. "to" or "items[2].id"
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationErrors lists every violation found in a value.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	lines := make([]string, len(e))
	for i, err := range e {
		lines[i] = "  - " + err.Error()
	}
	return "validation failed:\n" + strings.Join(lines, "\n")
}

// Validate checks JSON data against s and returns ValidationErrors listing
// every violation. A nil schema accepts anything.
func (s *Schema) Validate(data json.RawMessage) error {
	if s == nil {
		return nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %s", err)}
	}
	return check(s, value)
}

// ValidateValue checks a Go value against s as it would be encoded by
// encoding/json.
func (s *Schema) ValidateValue(value any) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("cannot encode value: %s", err)}
	}
	return s.Validate(data)
}

func check(s *Schema, value any) error {
	var c checker
	c.walk(s, "", value)
	if len(c.errs) > 0 {
		return c.errs
	}
	return nil
}

// checker walks a decoded JSON value. Numbers are float64, objects are
// map[string]any and arrays are []any.
type checker struct {
	errs ValidationErrors
}

func (c *checker) fail(path, format string, args ...any) {
	c.errs = append(c.errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) walk(s *Schema, path string, value any) {
	// null satisfies every type; presence is what Required checks.
	if value == nil {
		return
	}

	if len(s.Enum) > 0 && !s.inEnum(value) {
		c.fail(path, "value must be one of: %v", s.Enum)
	}

	switch s.Type {
	case typeObject:
		c.object(s, path, value)
	case typeArray:
		c.array(s, path, value)
	case typeString:
		c.string(s, path, value)
	case typeInteger, typeNumber:
		c.number(s, path, value)
	case typeBoolean:
		if _, ok := value.(bool); !ok {
			c.fail(path, "expected boolean, got %s", kindOf(value))
		}
	}
}

func (c *checker) object(s *Schema, path string, value any) {
	obj, ok := value.(map[string]any)
	if !ok {
		c.fail(path, "expected object, got %s", kindOf(value))
		return
	}

	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			c.fail(joinPath(path, name), "required field is missing")
		}
	}

	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch prop, ok := s.Properties[name]; {
		case ok:
			c.walk(prop, joinPath(path, name), obj[name])
		case s.AdditionalProperties != nil:
			c.walk(s.AdditionalProperties, joinPath(path, name), obj[name])
		}
	}
}

func (c *checker) array(s *Schema, path string, value any) {
	items, ok := value.([]any)
	if !ok {
		c.fail(path, "expected array, got %s", kindOf(value))
		return
	}

	if s.MinItems != nil && len(items) < *s.MinItems {
		c.fail(path, "expected at least %d items, got %d", *s.MinItems, len(items))
	}
	if s.MaxItems != nil && len(items) > *s.MaxItems {
		c.fail(path, "expected at most %d items, got %d", *s.MaxItems, len(items))
	}

	if s.Items == nil {
		return
	}
	for i, item := range items {
		c.walk(s.Items, fmt.Sprintf("%s[%d]", path, i), item)
	}
}

func (c *checker) string(s *Schema, path string, value any) {
	str, ok := value.(string)
	if !ok {
		c.fail(path, "expected string, got %s", kindOf(value))
		return
	}

	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		c.fail(path, "expected at least %d characters, got %d", *s.MinLength, n)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		c.fail(path, "expected at most %d characters, got %d", *s.MaxLength, n)
	}

	if s.Format == "date-time" {
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			c.fail(path, "expected RFC 3339 date-time")
		}
	}
}

func (c *checker) number(s *Schema, path string, value any) {
	num, ok := value.(float64)
	if !ok {
		c.fail(path, "expected %s, got %s", s.Type, kindOf(value))
		return
	}
	if s.Type == typeInteger && num != math.Trunc(num) {
		c.fail(path, "expected integer, got decimal number")
		return
	}

	if s.Minimum != nil && num < *s.Minimum {
		c.fail(path, "value %v is less than minimum %v", num, *s.Minimum)
	}
	if s.Maximum != nil && num > *s.Maximum {
		c.fail(path, "value %v is greater than maximum %v", num, *s.Maximum)
	}
}

func (s *Schema) inEnum(value any) bool {
	for _, e := range s.Enum {
		if e == value {
			return true
		}
	}
	return false
}

// kindOf names the JSON type of a decoded value.
func kindOf(value any) string {
	switch value.(type) {
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	case string:
		return typeString
	case float64:
		return typeNumber
	case bool:
		return typeBoolean
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
