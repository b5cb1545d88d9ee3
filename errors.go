package formskema

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// SchemaKey is the ValidationError field name used when a failure is not
// attributable to a single field.
const SchemaKey = "_meta"

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidShape     = "invalid_shape"
	CodeUnknownField     = "unknown_field"
	CodeCannotStoreValue = "cannot_store_value"
	CodeNotAList         = "not_a_list"
	CodeInvalidType      = "invalid_type"
	CodeInvalidFormat    = "invalid_format"
	CodeInvalidBoolean   = "invalid_boolean"
	CodeInvalidEnum      = "invalid_enum"
	CodeEmptyGroup       = "empty_group"
	// Validator failures (messages are configurable through invalidMsg)
	CodeRequired     = "required"
	CodePattern      = "pattern"
	CodeBusinessRule = "business_rule"
)

// Schema build errors. They mean the definition itself is broken and are never
// reported per field.
var (
	ErrUnknownFieldType      = errors.New("formskema: unknown field type")
	ErrUnknownValueType      = errors.New("formskema: unknown value type")
	ErrUnknownValidationRule = errors.New("formskema: unknown validation rule")
	ErrInvalidRule           = errors.New("formskema: invalid validation rule")
	ErrMissingFieldID        = errors.New("formskema: field id is required")
)

// Issue represents a single validation entry. It implements error so coercers
// and validators can return it directly.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price); empty until flattened.
	Code    string // One of the codes listed above.
	Message string
	// Rule optionally records the validation rule that produced this issue.
	Rule string
}

func (i Issue) Error() string { return i.Message }

// Issues is a flat collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Detail is the recursive error payload of a schema, a field or a list item.
// Exactly one of Issues, Fields or Items is populated.
type Detail struct {
	Issues []Issue
	Fields []FieldDetail // keyed by field id, in input order
	Items  []ItemDetail  // keyed by list index, in input order
}

// FieldDetail attaches a Detail to a field id.
type FieldDetail struct {
	ID     string
	Detail *Detail
}

// ItemDetail attaches a Detail to a list index.
type ItemDetail struct {
	Index  int
	Detail *Detail
}

func leaf(code, msg string) *Detail {
	return &Detail{Issues: []Issue{{Code: code, Message: msg}}}
}

func (d *Detail) addField(id string, sub *Detail) {
	d.Fields = append(d.Fields, FieldDetail{ID: id, Detail: sub})
}

func (d *Detail) addItem(i int, sub *Detail) {
	d.Items = append(d.Items, ItemDetail{Index: i, Detail: sub})
}

func (d *Detail) empty() bool {
	return d == nil || (len(d.Issues) == 0 && len(d.Fields) == 0 && len(d.Items) == 0)
}

// Field returns the nested detail recorded for a field id, or nil.
func (d *Detail) Field(id string) *Detail {
	if d == nil {
		return nil
	}
	for _, fd := range d.Fields {
		if fd.ID == id {
			return fd.Detail
		}
	}
	return nil
}

// Item returns the nested detail recorded for a list index, or nil.
func (d *Detail) Item(i int) *Detail {
	if d == nil {
		return nil
	}
	for _, it := range d.Items {
		if it.Index == i {
			return it.Detail
		}
	}
	return nil
}

// Messages returns the leaf messages in order.
func (d *Detail) Messages() []string {
	if d == nil || len(d.Issues) == 0 {
		return nil
	}
	out := make([]string, len(d.Issues))
	for i, it := range d.Issues {
		out[i] = it.Message
	}
	return out
}

// Payload renders the detail as plain Go values: []string for a message list,
// map[string]any keyed by field id or map[int]any keyed by list index.
func (d *Detail) Payload() any {
	switch {
	case d == nil:
		return nil
	case len(d.Fields) > 0:
		m := make(map[string]any, len(d.Fields))
		for _, fd := range d.Fields {
			m[fd.ID] = fd.Detail.Payload()
		}
		return m
	case len(d.Items) > 0:
		m := make(map[int]any, len(d.Items))
		for _, it := range d.Items {
			m[it.Index] = it.Detail.Payload()
		}
		return m
	default:
		return d.Messages()
	}
}

// MarshalJSON writes the payload keeping field and index order.
func (d *Detail) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Detail) writeJSON(buf *bytes.Buffer) error {
	switch {
	case d == nil:
		buf.WriteString("null")
	case len(d.Fields) > 0:
		buf.WriteByte('{')
		for i, fd := range d.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(buf, fd.ID); err != nil {
				return err
			}
			if err := fd.Detail.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case len(d.Items) > 0:
		buf.WriteByte('{')
		for i, it := range d.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(buf, strconv.Itoa(it.Index)); err != nil {
				return err
			}
			if err := it.Detail.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		msgs := d.Messages()
		if msgs == nil {
			msgs = []string{}
		}
		b, err := json.Marshal(msgs)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

// Flatten lists every leaf issue with its JSON Pointer path below p.
func (d *Detail) Flatten(p PathRef) Issues {
	var out Issues
	d.flatten(p, &out)
	return out
}

func (d *Detail) flatten(p PathRef, out *Issues) {
	if d == nil {
		return
	}
	for _, it := range d.Issues {
		it.Path = p.Pointer()
		*out = append(*out, it)
	}
	for _, fd := range d.Fields {
		fd.Detail.flatten(p.Field(fd.ID), out)
	}
	for _, it := range d.Items {
		it.Detail.flatten(p.Index(it.Index), out)
	}
}

// ValidationError is returned by Schema.Validate and Schema.BindData. Its
// Detail mirrors the nesting of the schema: field id -> messages or submapping.
type ValidationError struct {
	Field  string
	Detail *Detail
}

func (e *ValidationError) Error() string {
	return "formskema: validation failed: " + e.Issues().Error()
}

// Payload returns the error content as plain Go values (see Detail.Payload).
func (e *ValidationError) Payload() any { return e.Detail.Payload() }

// Issues flattens the error into JSON Pointer addressed issues.
func (e *ValidationError) Issues() Issues { return e.Detail.Flatten(RootPath()) }

// MarshalJSON renders the payload only; the field name is implied by the caller.
func (e *ValidationError) MarshalJSON() ([]byte, error) { return e.Detail.MarshalJSON() }

// AsValidationError extracts a *ValidationError using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// detailFromError turns whatever a coercer or validator returned into a Detail.
func detailFromError(err error) *Detail {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Detail
	}
	var is Issue
	if errors.As(err, &is) {
		return &Detail{Issues: []Issue{is}}
	}
	var iss Issues
	if errors.As(err, &iss) {
		return &Detail{Issues: append([]Issue(nil), iss...)}
	}
	return leaf(CodeInvalidType, err.Error())
}
