package formskema

// Value pairs a field with its submitted raw value and the derived clean value.
// Group fields clean to []*Bound, one per element.
type Value struct {
	Field *Field
	Raw   any
	Clean any
}

// Bound is the result of a successful BindData call.
type Bound struct {
	schema *Schema
	data   any
	keys   []string
	values map[string]*Value
}

// Schema returns the template the values were bound against.
func (b *Bound) Schema() *Schema { return b.schema }

// Data returns the record passed to BindData, unchanged.
func (b *Bound) Data() any { return b.data }

// Value returns the bound value of a submitted key, or nil if the key was not
// submitted.
func (b *Bound) Value(id string) *Value {
	if b == nil {
		return nil
	}
	return b.values[id]
}

// Field returns the schema field for id, bound or not.
func (b *Bound) Field(id string) *Field {
	return b.schema.Field(id)
}

// Values returns the bound values in submission order.
func (b *Bound) Values() []*Value {
	out := make([]*Value, 0, len(b.keys))
	for _, k := range b.keys {
		out = append(out, b.values[k])
	}
	return out
}

// Clean returns the clean value of id, recursing into nested groups with
// further ids: Clean("address", 0, "city").
func (b *Bound) Clean(id string, path ...any) (any, bool) {
	v := b.Value(id)
	if v == nil {
		return nil, false
	}
	cur := v.Clean
	for _, step := range path {
		switch s := step.(type) {
		case int:
			list, ok := cur.([]*Bound)
			if ok {
				if s < 0 || s >= len(list) {
					return nil, false
				}
				cur = list[s]
				continue
			}
			items, ok := cur.([]any)
			if !ok || s < 0 || s >= len(items) {
				return nil, false
			}
			cur = items[s]
		case string:
			nb, ok := cur.(*Bound)
			if !ok {
				return nil, false
			}
			nv := nb.Value(s)
			if nv == nil {
				return nil, false
			}
			cur = nv.Clean
		default:
			return nil, false
		}
	}
	return cur, true
}
