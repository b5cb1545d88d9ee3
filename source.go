package formskema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	eng "github.com/reoring/formskema/internal/engine"
)

// DecodeOptions configures DecodeJSON and DecodeJSONReader.
type DecodeOptions struct {
	// MaxDepth limits object/array nesting; 0 means unlimited.
	MaxDepth int
	// AllowDuplicateKeys keeps the last value of a repeated object key instead
	// of failing.
	AllowDuplicateKeys bool
}

// DefaultDecodeOptions rejects duplicate keys and nesting deeper than 64.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{MaxDepth: 64}
}

// DecodeJSON decodes a JSON document into values Validate understands: objects
// become *Record (key order preserved), integral numbers int64 and other
// numbers float64.
func DecodeJSON(b []byte, opts ...DecodeOptions) (any, error) {
	return decodeJSON(eng.NewJSONBytes(b), opts)
}

// DecodeJSONReader is DecodeJSON over a stream.
func DecodeJSONReader(r io.Reader, opts ...DecodeOptions) (any, error) {
	return decodeJSON(eng.NewJSONReader(r), opts)
}

func decodeJSON(src eng.TokenSource, opts []DecodeOptions) (any, error) {
	o := DefaultDecodeOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	src = eng.WrapWithEnforcement(src, eng.EnforceOptions{
		AllowDuplicateKeys: o.AllowDuplicateKeys,
		MaxDepth:           o.MaxDepth,
	})
	v, err := eng.Decode(src, eng.Builder{
		NewObject: func() eng.Object { return NewRecord() },
		Number:    parseNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("formskema: decode json: %w", err)
	}
	return v, nil
}

func parseNumber(s string) (any, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	}
	return strconv.ParseFloat(s, 64)
}

// DecodeYAML decodes a YAML document the same way as DecodeJSON. Mappings with
// a non-string key decode to map[any]any, which Validate rejects.
func DecodeYAML(b []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("formskema: decode yaml: %w", err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return yamlValue(&doc)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		return yamlMapping(n)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("formskema: yaml line %d: %w", n.Line, err)
		}
		if i, ok := v.(int); ok {
			return int64(i), nil
		}
		return v, nil
	}
}

func yamlMapping(n *yaml.Node) (any, error) {
	stringKeys := true
	for i := 0; i < len(n.Content); i += 2 {
		if k := n.Content[i]; k.Kind != yaml.ScalarNode || k.Tag != "!!str" {
			stringKeys = false
			break
		}
	}
	if stringKeys {
		r := NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			r.Set(n.Content[i].Value, v)
		}
		return r, nil
	}
	m := make(map[any]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, err := yamlValue(n.Content[i])
		if err != nil {
			return nil, err
		}
		v, err := yamlValue(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		switch k.(type) {
		case *Record, map[any]any, []any:
			// complex keys are not comparable; keep their text form
			k = fmt.Sprint(plain(k))
		}
		m[k] = v
	}
	return m, nil
}

// LoadDefinitions reads a definition list from a .json, .yaml or .yml file.
func LoadDefinitions(path string) ([]FieldDefinition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := decodeByExt(path, b)
	if err != nil {
		return nil, err
	}
	defs, err := ParseDefinitions(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// LoadData reads a data record from a .json, .yaml or .yml file.
func LoadData(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeByExt(path, b)
}

func decodeByExt(path string, b []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(b)
	case ".json":
		return DecodeJSON(b)
	default:
		// Sniff: JSON documents start with an object or array.
		if t := bytes.TrimSpace(b); len(t) > 0 && (t[0] == '{' || t[0] == '[') {
			return DecodeJSON(b)
		}
		return DecodeYAML(b)
	}
}
