package formskema

import (
	"fmt"
	"reflect"

	"github.com/reoring/formskema/i18n"
)

// FieldKind is the declared type of a field.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindSelect FieldKind = "select"
	KindGroup  FieldKind = "group"
)

// Field is a compiled schema field. Fields are immutable once the schema is
// built; bound values live on Bound.
type Field struct {
	id          string
	kind        FieldKind
	multiple    bool
	title       string
	description string
	valueType   string
	extra       map[string]any
	coercer     Coercer
	validators  []Validator

	options []Option        // select
	nested  *Schema         // group
	owned   map[string]bool // group: descendant ids claimed from the enclosing list

	schema *Schema
}

func (f *Field) ID() string { return f.id }
func (f *Field) Kind() FieldKind { return f.kind }
func (f *Field) Multiple() bool { return f.multiple }
func (f *Field) Title() string { return f.title }
func (f *Field) Description() string { return f.description }
func (f *Field) ValueType() string { return f.valueType }
func (f *Field) Extra() map[string]any { return f.extra }
func (f *Field) Options() []Option { return append([]Option(nil), f.options...) }
func (f *Field) Nested() *Schema { return f.nested }
func (f *Field) Schema() *Schema { return f.schema }
func (f *Field) Validators() []Validator { return append([]Validator(nil), f.validators...) }
func (f *Field) String() string { return fmt.Sprintf("<%s field id=%s title=%s>", f.kind, f.id, f.title) }
func (f *Field) IsGroup() bool { return f.kind == KindGroup }
func (f *Field) IsSelect() bool { return f.kind == KindSelect }
func (f *Field) CanStoreValue() bool { return true }

// newField builds a field from its definition. remaining holds the definitions
// not consumed yet by the enclosing schema, from which a group claims its
// descendants.
func newField(def FieldDefinition, remaining []FieldDefinition, cfg *config) (*Field, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("%w (type %q)", ErrMissingFieldID, def.Type)
	}
	f := &Field{
		id:          def.ID,
		kind:        FieldKind(def.Type),
		multiple:    def.Multiple,
		title:       def.Title,
		description: def.Description,
		valueType:   def.ValueType,
		extra:       def.Extra,
	}
	if f.extra == nil {
		f.extra = map[string]any{}
	}

	switch f.kind {
	case KindText, KindSelect:
		vt := def.ValueType
		if vt == "" {
			vt = ValueText
		}
		co, ok := cfg.valueTypes[vt]
		if !ok {
			return nil, fmt.Errorf("%w: field %q: %q", ErrUnknownValueType, def.ID, vt)
		}
		f.coercer = co
	case KindGroup:
		f.coercer = groupCoercer{}
	default:
		return nil, fmt.Errorf("%w: field %q: %q", ErrUnknownFieldType, def.ID, def.Type)
	}

	for _, rd := range def.Validation {
		factory, ok := cfg.rules[rd.Rule]
		if !ok {
			return nil, fmt.Errorf("%w: field %q: %q", ErrUnknownValidationRule, def.ID, rd.Rule)
		}
		v, err := factory(f, rd)
		if err != nil {
			return nil, err
		}
		f.validators = append(f.validators, v)
	}

	switch f.kind {
	case KindSelect:
		f.options = append([]Option(nil), def.Options...)
	case KindGroup:
		children := f.claimDescendants(remaining)
		for _, inline := range def.Schema {
			if inline.Parent == "" {
				inline.Parent = f.id
			}
			children = append(children, inline)
		}
		nested, err := build(children, cfg)
		if err != nil {
			return nil, fmt.Errorf("formskema: group %q: %w", f.id, err)
		}
		f.nested = nested
		cfg.logger.Debug("group claimed descendants", "group", f.id, "count", len(children))
	}
	return f, nil
}

// claimDescendants collects the definitions whose parent is this group or any
// descendant of it. Parent ids are gathered in one forward pass first, so a
// child listed before its own parent is still claimed once that parent turns
// out to belong to the group.
func (f *Field) claimDescendants(remaining []FieldDefinition) []FieldDefinition {
	parents := map[string]bool{f.id: true}
	for _, d := range remaining {
		if d.Parent != "" && parents[d.Parent] {
			parents[d.ID] = true
		}
	}
	f.owned = map[string]bool{}
	var children []FieldDefinition
	for _, d := range remaining {
		if d.Parent == "" || !parents[d.Parent] {
			continue
		}
		f.owned[d.ID] = true
		children = append(children, d)
	}
	return children
}

// updateSchema drops the definitions this field claimed from the enclosing
// list. Only groups claim anything.
func (f *Field) updateSchema(remaining []FieldDefinition) []FieldDefinition {
	if len(f.owned) == 0 {
		return remaining
	}
	out := make([]FieldDefinition, 0, len(remaining))
	for _, d := range remaining {
		if !f.owned[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// fullValidate checks one submitted value, element-wise for multiple fields.
// It returns nil on success.
func (f *Field) fullValidate(value any, record *Record) *Detail {
	if !f.multiple {
		return f.validateValue(value, record)
	}
	items, ok := asList(value)
	if !ok {
		return leaf(CodeNotAList, i18n.T(i18n.NotAList, nil))
	}
	d := &Detail{}
	for i, item := range items {
		if sub := f.validateValue(item, record); sub != nil {
			d.addItem(i, sub)
		}
	}
	if d.empty() {
		return nil
	}
	return d
}

// validateValue runs the coercer check, the kind check, then the validators in
// declared order. The first failure wins.
func (f *Field) validateValue(value any, record *Record) *Detail {
	if err := f.coercer.Validate(value, f); err != nil {
		return detailFromError(err)
	}
	if d := f.checkKind(value); d != nil {
		return d
	}
	for _, v := range f.validators {
		if err := v.Validate(value, record); err != nil {
			return detailFromError(err)
		}
	}
	return nil
}

func (f *Field) checkKind(value any) *Detail {
	switch f.kind {
	case KindSelect:
		for _, opt := range f.options {
			if valuesEqual(value, opt.Value) {
				return nil
			}
		}
		msg := i18n.T(i18n.InvalidOption, map[string]string{"value": fmt.Sprint(plain(value))})
		return leaf(CodeInvalidEnum, msg)
	case KindGroup:
		if isMapping(value) && mappingLen(value) == 0 {
			return leaf(CodeEmptyGroup, i18n.T(i18n.EmptyGroup, nil))
		}
	}
	return nil
}

// clean converts a validated raw value. Group values always clean to a list of
// bound nested schemas, one per element.
func (f *Field) clean(raw any) (any, error) {
	if f.kind == KindGroup {
		elems := []any{raw}
		if f.multiple {
			elems, _ = asList(raw)
		}
		out := make([]*Bound, 0, len(elems))
		for _, e := range elems {
			c, err := f.coercer.Clean(e, f)
			if err != nil {
				return nil, err
			}
			out = append(out, c.(*Bound))
		}
		return out, nil
	}
	if !f.multiple {
		return f.coercer.Clean(raw, f)
	}
	elems, _ := asList(raw)
	out := make([]any, len(elems))
	for i, e := range elems {
		c, err := f.coercer.Clean(e, f)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// valuesEqual compares a submitted value with an option value. Numbers compare
// by value whatever their Go type, so 1, int64(1) and 1.0 are equal.
func valuesEqual(a, b any) bool {
	if _, isBool := a.(bool); !isBool {
		if _, isBool := b.(bool); !isBool {
			fa, okA := asFloat64(a)
			fb, okB := asFloat64(b)
			if okA && okB {
				return fa == fb
			}
		}
	}
	return reflect.DeepEqual(plain(a), plain(b))
}
