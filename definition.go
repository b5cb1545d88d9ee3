package formskema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// FieldDefinition is one entry of a flat schema definition list. Children of a
// group point at it (or at another descendant) through Parent.
type FieldDefinition struct {
	ID          string            `json:"id" yaml:"id" mapstructure:"id"`
	Type        string            `json:"type" yaml:"type" mapstructure:"type"`
	Parent      string            `json:"parent,omitempty" yaml:"parent,omitempty" mapstructure:"parent"`
	Multiple    bool              `json:"multiple,omitempty" yaml:"multiple,omitempty" mapstructure:"multiple"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	ValueType   string            `json:"valueType,omitempty" yaml:"valueType,omitempty" mapstructure:"valueType"`
	Extra       map[string]any    `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:"extra"`
	Validation  []RuleDefinition  `json:"validation,omitempty" yaml:"validation,omitempty" mapstructure:"validation"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Schema      []FieldDefinition `json:"schema,omitempty" yaml:"schema,omitempty" mapstructure:"schema"`
}

// RuleDefinition configures one validator of a field.
type RuleDefinition struct {
	Rule       string         `json:"rule" yaml:"rule" mapstructure:"rule"`
	InvalidMsg string         `json:"invalidMsg,omitempty" yaml:"invalidMsg,omitempty" mapstructure:"invalidMsg"`
	Extra      map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:"extra"`
}

// Option is a selectable value of a select field.
type Option struct {
	Value any    `json:"value" yaml:"value" mapstructure:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// ParseDefinitions maps an already decoded definition document (a list of
// objects, as produced by DecodeJSON, DecodeYAML or encoding/json) onto
// FieldDefinitions.
func ParseDefinitions(raw any) ([]FieldDefinition, error) {
	list, ok := asList(raw)
	if !ok {
		return nil, fmt.Errorf("formskema: schema definition must be a list, got %T", raw)
	}
	items := make([]any, len(list))
	for i, e := range list {
		items[i] = plain(e)
	}

	var defs []FieldDefinition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &defs,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(items); err != nil {
		return nil, fmt.Errorf("formskema: decode schema definition: %w", err)
	}
	return defs, nil
}
