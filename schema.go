package formskema

import (
	"log/slog"

	"github.com/reoring/formskema/i18n"
)

// Schema is a compiled field tree. It is immutable after New and safe for
// concurrent Validate and BindData calls; bound state lives on the returned
// Bound.
type Schema struct {
	fields   []*Field
	valuable map[string]*Field
	logger   *slog.Logger
}

// New assembles a schema from a flat, ordered definition list. Definitions
// whose parent chain leads to a group are moved into that group's nested
// schema. Errors are fatal and wrap one of the Err* sentinels.
func New(defs []FieldDefinition, opts ...BuildOption) (*Schema, error) {
	return build(defs, newConfig(opts))
}

func build(defs []FieldDefinition, cfg *config) (*Schema, error) {
	s := &Schema{
		valuable: make(map[string]*Field),
		logger:   cfg.logger,
	}
	remaining := append([]FieldDefinition(nil), defs...)
	for len(remaining) > 0 {
		def := remaining[0]
		remaining = remaining[1:]

		f, err := newField(def, remaining, cfg)
		if err != nil {
			return nil, err
		}
		f.schema = s
		s.fields = append(s.fields, f)
		if f.CanStoreValue() {
			if _, dup := s.valuable[f.id]; !dup {
				s.valuable[f.id] = f
			}
			remaining = f.updateSchema(remaining)
		}
		cfg.logger.Debug("field registered", "id", f.id, "kind", string(f.kind), "multiple", f.multiple)
	}
	return s, nil
}

// Field returns the first field declared with id, or nil.
func (s *Schema) Field(id string) *Field {
	for _, f := range s.fields {
		if f.id == id {
			return f
		}
	}
	return nil
}

// Fields returns the top-level fields in declaration order.
func (s *Schema) Fields() []*Field {
	return append([]*Field(nil), s.fields...)
}

// Valuable returns the field registered under id for value storage.
func (s *Schema) Valuable(id string) (*Field, bool) {
	f, ok := s.valuable[id]
	return f, ok
}

// Validate checks data against the schema. It returns nil or a
// *ValidationError whose Detail is keyed by the submitted keys.
//
// data must be a string-keyed mapping: *Record (input order), map[string]any
// (sorted key order) or map[any]any with only string keys. Decode payloads with
// DecodeJSON, or with encoding/json using json.Decoder.UseNumber: plain
// json.Unmarshal turns every number into float64, which integer fields reject.
// Keys declared in the schema but missing from data are not reported; use the
// required rule on a submitted key for that.
func (s *Schema) Validate(data any) error {
	record, ok := asRecord(data)
	if !ok {
		return &ValidationError{
			Field:  SchemaKey,
			Detail: leaf(CodeInvalidShape, i18n.T(i18n.InvalidShape, nil)),
		}
	}

	d := &Detail{}
	for _, key := range record.keys {
		f, ok := s.valuable[key]
		switch {
		case !ok:
			d.addField(key, leaf(CodeUnknownField, i18n.T(i18n.UnknownField, nil)))
		case !f.CanStoreValue():
			d.addField(key, leaf(CodeCannotStoreValue, i18n.T(i18n.CannotStoreValue, nil)))
		default:
			if sub := f.fullValidate(record.values[key], record); sub != nil {
				d.addField(key, sub)
			}
		}
	}
	if d.empty() {
		return nil
	}
	s.logger.Debug("validation failed", "fields", len(d.Fields))
	return &ValidationError{Field: SchemaKey, Detail: d}
}

// BindData validates data and, on success, returns a fresh Bound carrying the
// raw and clean value of every submitted key. Nothing is bound on failure.
func (s *Schema) BindData(data any) (*Bound, error) {
	if err := s.Validate(data); err != nil {
		return nil, err
	}
	record, _ := asRecord(data)
	b := &Bound{
		schema: s,
		data:   data,
		values: make(map[string]*Value, record.Len()),
	}
	for _, key := range record.keys {
		f := s.valuable[key]
		raw := record.values[key]
		clean, err := f.clean(raw)
		if err != nil {
			d := &Detail{}
			d.addField(key, detailFromError(err))
			return nil, &ValidationError{Field: SchemaKey, Detail: d}
		}
		b.keys = append(b.keys, key)
		b.values[key] = &Value{Field: f, Raw: raw, Clean: clean}
	}
	return b, nil
}
