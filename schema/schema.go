package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Schema represents the subset of JSON Schema used to describe method
// params and results.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Description          string             `json:"description,omitempty"`
	Default              any                `json:"default,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	MaxLength            *int               `json:"maxLength,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
}

var (
	rawMessageType = reflect.TypeFor[json.RawMessage]()
	timeType       = reflect.TypeFor[time.Time]()
)

// Generate creates a schema from the dynamic type of v. A nil v yields a
// schema that accepts any value.
func Generate(v any) (*Schema, error) {
	return GenerateFromType(reflect.TypeOf(v))
}

// For creates a schema from T.
func For[T any]() (*Schema, error) {
	return GenerateFromType(reflect.TypeFor[T]())
}

// GenerateFromType creates a schema from t.
func GenerateFromType(t reflect.Type) (*Schema, error) {
	if t == nil {
		return &Schema{}, nil
	}
	g := &generator{seen: make(map[reflect.Type]bool)}
	return g.fromType(t)
}

type generator struct {
	// seen holds the struct types currently being expanded; a type that
	// refers to itself is described by an empty schema at the second level.
	seen map[reflect.Type]bool
}

func (g *generator) fromType(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case rawMessageType:
		return &Schema{}, nil
	case timeType:
		return &Schema{Type: typeString, Format: "date-time"}, nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return g.structSchema(t)
	case reflect.String:
		return &Schema{Type: typeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: typeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: typeNumber}, nil
	case reflect.Bool:
		return &Schema{Type: typeBoolean}, nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && t.Kind() == reflect.Slice {
			// encoding/json writes []byte as base64.
			return &Schema{Type: typeString}, nil
		}
		items, err := g.fromType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: typeArray, Items: items}, nil
	case reflect.Map:
		if k := t.Key().Kind(); k != reflect.String && !isInteger(k) {
			return nil, fmt.Errorf("schema: unsupported map key type %s", t.Key())
		}
		values, err := g.fromType(t.Elem())
		if err != nil {
			return nil, err
		}
		s := &Schema{Type: typeObject}
		if values.Type != "" {
			s.AdditionalProperties = values
		}
		return s, nil
	case reflect.Interface:
		return &Schema{}, nil
	default:
		return nil, fmt.Errorf("schema: unsupported type %s", t)
	}
}

func (g *generator) structSchema(t reflect.Type) (*Schema, error) {
	if g.seen[t] {
		return &Schema{Type: typeObject}, nil
	}
	g.seen[t] = true
	defer delete(g.seen, t)

	s := &Schema{
		Type:       typeObject,
		Properties: make(map[string]*Schema),
	}
	if err := g.addFields(s, t); err != nil {
		return nil, err
	}
	return s, nil
}

// addFields adds the fields of t to s. Embedded structs without a json name
// are flattened the way encoding/json flattens them.
func (g *generator) addFields(s *Schema, t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name, _, _ := strings.Cut(jsonTag, ",")

		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := g.addFields(s, ft); err != nil {
					return err
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		fs, err := g.fromType(field.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}

		required, err := applyTag(field.Tag.Get("jsonschema"), fs)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if required {
			s.Required = append(s.Required, name)
		}

		s.Properties[name] = fs
	}
	return nil
}

// applyTag applies a jsonschema struct tag to s and reports whether the
// field is required. Recognised keys: required, description=, format=,
// minimum=, maximum=, minLength=, maxLength=, minItems=, maxItems=,
// default=, enum= (values separated by |).
func applyTag(tag string, s *Schema) (required bool, err error) {
	if tag == "" {
		return false, nil
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")

		switch key {
		case "required":
			required = true
		case "description":
			s.Description = value
		case "format":
			s.Format = value
		case "minimum":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return false, fmt.Errorf("minimum: %w", err)
			}
			s.Minimum = &f
		case "maximum":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return false, fmt.Errorf("maximum: %w", err)
			}
			s.Maximum = &f
		case "minLength", "maxLength", "minItems", "maxItems":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return false, fmt.Errorf("%s: invalid count %q", key, value)
			}
			switch key {
			case "minLength":
				s.MinLength = &n
			case "maxLength":
				s.MaxLength = &n
			case "minItems":
				s.MinItems = &n
			default:
				s.MaxItems = &n
			}
		case "default":
			v, err := s.parseValue(value)
			if err != nil {
				return false, fmt.Errorf("default: %w", err)
			}
			s.Default = v
		case "enum":
			for _, ev := range strings.Split(value, "|") {
				v, err := s.parseValue(ev)
				if err != nil {
					return false, fmt.Errorf("enum: %w", err)
				}
				s.Enum = append(s.Enum, v)
			}
		}
	}
	return required, nil
}

// parseValue converts a tag literal to the Go value encoding/json produces
// for the schema's type, so enum and default compare against decoded JSON.
func (s *Schema) parseValue(v string) (any, error) {
	switch s.Type {
	case typeInteger, typeNumber:
		return strconv.ParseFloat(v, 64)
	case typeBoolean:
		return strconv.ParseBool(v)
	default:
		return v, nil
	}
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
