package formskema

import (
	"fmt"
	"reflect"
	"sort"
)

// Record is a string-keyed mapping that remembers insertion order. Decoders in
// this package produce *Record for JSON/YAML objects so that errors and bound
// values follow the order of the submitted document.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// RecordOf builds a Record from alternating key/value arguments. It panics on
// a non-string key or an odd argument count; it is meant for literals.
func RecordOf(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("formskema: RecordOf requires key/value pairs")
	}
	r := NewRecord()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("formskema: RecordOf key %v is not a string", kv[i]))
		}
		r.Set(k, kv[i+1])
	}
	return r
}

// Set stores v under key. Overwriting keeps the original position.
func (r *Record) Set(key string, v any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Len reports the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Map converts the record (and nested records) into plain maps and slices.
func (r *Record) Map() map[string]any {
	if r == nil {
		return nil
	}
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		out[k] = plain(r.values[k])
	}
	return out
}

// plain strips Record wrappers from a decoded value tree.
func plain(v any) any {
	switch x := v.(type) {
	case *Record:
		return x.Map()
	case Record:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}

// asRecord views a submitted value as an ordered string-keyed mapping. Go maps
// have no order, so map keys are visited sorted. It reports false for
// non-mappings and for mappings with any non-string key.
func asRecord(v any) (*Record, bool) {
	switch x := v.(type) {
	case *Record:
		if x == nil {
			return nil, false
		}
		return x, true
	case Record:
		return &x, true
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		r := &Record{keys: keys, values: make(map[string]any, len(x))}
		for k, e := range x {
			r.values[k] = e
		}
		return r, true
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			m[ks] = e
		}
		return asRecord(m)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return asRecord(m)
}

// isMapping reports whether v is any kind of mapping, whatever its key type.
func isMapping(v any) bool {
	switch v.(type) {
	case *Record, Record, map[string]any, map[any]any:
		return true
	}
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Map
}

// mappingLen returns the number of entries of a mapping value.
func mappingLen(v any) int {
	switch x := v.(type) {
	case *Record:
		return x.Len()
	case Record:
		return x.Len()
	}
	return reflect.ValueOf(v).Len()
}

// asList views a submitted value as a list. Strings and byte slices are not
// lists.
func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
