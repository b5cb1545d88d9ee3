// Package formskema provides:
//
// - Schema assembly from a flat, parent-linked list of field definitions into a field tree
// - Validation of submitted records with a recursive, field-keyed error payload
// - Binding of validated records into typed clean values (integers, dates, booleans, nested groups)
// - Order-preserving JSON/YAML decoding with duplicate-key and depth enforcement
//
// Design policy:
// - A Schema is an immutable template; BindData returns a fresh Bound per call.
// - Build-time failures (unknown field type, value type or rule) are fatal errors.
// - Data failures are reported as *ValidationError, never as panics.
// - The HTTP boundary lives under middleware/ and server/, the CLI under cmd/formskema.
//
// Typical usage:
//
//	defs, err := formskema.LoadDefinitions("profile.json")
//	s, err := formskema.New(defs)
//	data, err := formskema.DecodeJSON(body)
//	b, err := s.BindData(data)
//	if ve, ok := formskema.AsValidationError(err); ok {
//		payload := ve.Payload() // {"age": ["Value is not an integer"]}
//	}
//	age := b.Value("age").Clean // int64
package formskema
