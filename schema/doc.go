// Package schema generates JSON Schema descriptions from Go types and
// validates JSON values against them.
//
// The client method registry uses it to check params before they are sent
// and results after they are received.
//
// # Generating
//
//	type TransferParams struct {
//	    From   string  `json:"from" jsonschema:"required"`
//	    Amount float64 `json:"amount" jsonschema:"minimum=0"`
//	    Order  string  `json:"order" jsonschema:"enum=asc|desc"`
//	}
//
//	s, err := schema.For[TransferParams]()
//
// Recognised jsonschema tag keys are required, description, format,
// minimum, maximum, minLength, maxLength, minItems, maxItems, default and
// enum. Embedded structs are flattened as
// encoding/json flattens them. json.RawMessage and interface types produce a
// schema that accepts any value; time.Time is a date-time string.
//
// # Validating
//
//	if err := s.Validate(raw); err != nil {
//	    var verrs schema.ValidationErrors
//	    errors.As(err, &verrs)
//	}
//
// JSON null is accepted for every type. Missing members are reported
// through Required.
package schema
