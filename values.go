package formskema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oarkflow/date"

	"github.com/reoring/formskema/i18n"
)

// Built-in value types.
const (
	ValueText       = "text"
	ValueLocaleText = "locale_text"
	ValueDate       = "date"
	ValueDatetime   = "datetime"
	ValueInteger    = "integer"
	ValueFloat      = "float"
	ValueBoolean    = "boolean"
)

// DatetimeLayout is the accepted layout of datetime values.
const DatetimeLayout = "2006-01-02T15:04:05"

// Coercer checks the raw shape of a single submitted value and converts it to
// its typed clean form. Multiplicity is handled by the field, so a coercer
// only ever sees one element.
type Coercer interface {
	// Validate reports a structural failure, usually as an Issue.
	Validate(value any, f *Field) error
	// Clean converts a value that passed Validate.
	Clean(value any, f *Field) (any, error)
}

func builtinValueTypes() map[string]Coercer {
	return map[string]Coercer{
		ValueText:       textCoercer{},
		ValueLocaleText: localeTextCoercer{},
		ValueDate:       dateCoercer{},
		ValueDatetime:   datetimeCoercer{},
		ValueInteger:    integerCoercer{},
		ValueFloat:      floatCoercer{},
		ValueBoolean:    booleanCoercer{},
	}
}

func issue(code, key string) Issue {
	return Issue{Code: code, Message: i18n.T(key, nil)}
}

type textCoercer struct{}

func (textCoercer) Validate(value any, _ *Field) error {
	if _, ok := value.(string); !ok {
		return issue(CodeInvalidType, i18n.NotAString)
	}
	return nil
}

func (textCoercer) Clean(value any, _ *Field) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return fmt.Sprint(value), nil
}

// localeTextCoercer keeps translations keyed by language, e.g. {"en": "..", "ru": ".."}.
type localeTextCoercer struct{}

func (localeTextCoercer) Validate(value any, _ *Field) error {
	if !isMapping(value) {
		return issue(CodeInvalidType, i18n.NotAnObject)
	}
	return nil
}

func (localeTextCoercer) Clean(value any, _ *Field) (any, error) { return value, nil }

type dateCoercer struct{ textCoercer }

func (c dateCoercer) Validate(value any, f *Field) error {
	if err := c.textCoercer.Validate(value, f); err != nil {
		return err
	}
	if _, err := parseDate(value.(string)); err != nil {
		return issue(CodeInvalidFormat, i18n.InvalidDate)
	}
	return nil
}

func (dateCoercer) Clean(value any, _ *Field) (any, error) {
	s, _ := value.(string)
	return parseDate(s)
}

func parseDate(s string) (time.Time, error) {
	t, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()), nil
}

type datetimeCoercer struct{ textCoercer }

func (c datetimeCoercer) Validate(value any, f *Field) error {
	if err := c.textCoercer.Validate(value, f); err != nil {
		return err
	}
	if _, err := time.Parse(DatetimeLayout, value.(string)); err != nil {
		return issue(CodeInvalidFormat, i18n.InvalidDatetime)
	}
	return nil
}

func (datetimeCoercer) Clean(value any, _ *Field) (any, error) {
	s, _ := value.(string)
	return time.Parse(DatetimeLayout, s)
}

type integerCoercer struct{}

func (integerCoercer) Validate(value any, _ *Field) error {
	if _, ok := asInt64(value); !ok {
		return issue(CodeInvalidType, i18n.NotAnInteger)
	}
	return nil
}

func (integerCoercer) Clean(value any, _ *Field) (any, error) {
	n, ok := asInt64(value)
	if !ok {
		return nil, issue(CodeInvalidType, i18n.NotAnInteger)
	}
	return n, nil
}

// asInt64 accepts Go integer kinds and integral json.Number; bool and floats
// are not integers.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// floatCoercer takes the textual form of a number, as submitted by form inputs.
type floatCoercer struct{ textCoercer }

func (c floatCoercer) Validate(value any, f *Field) error {
	if err := c.textCoercer.Validate(value, f); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(value.(string)), 64); err != nil {
		return issue(CodeInvalidFormat, i18n.InvalidFloat)
	}
	return nil
}

func (floatCoercer) Clean(value any, _ *Field) (any, error) {
	s, _ := value.(string)
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

var (
	truthy = map[string]struct{}{
		"t": {}, "T": {}, "true": {}, "True": {}, "TRUE": {}, "on": {}, "On": {}, "ON": {},
		"y": {}, "Y": {}, "yes": {}, "Yes": {}, "YES": {}, "1": {},
	}
	falsy = map[string]struct{}{
		"f": {}, "F": {}, "false": {}, "False": {}, "FALSE": {}, "off": {}, "Off": {}, "OFF": {},
		"n": {}, "N": {}, "no": {}, "No": {}, "NO": {}, "0": {},
	}
)

type booleanCoercer struct{}

func (booleanCoercer) Validate(value any, _ *Field) error {
	if _, ok := asBool(value); !ok {
		return issue(CodeInvalidBoolean, i18n.InvalidBoolean)
	}
	return nil
}

// Clean yields nil for values outside both sets; Validate rejects those first.
func (booleanCoercer) Clean(value any, _ *Field) (any, error) {
	b, ok := asBool(value)
	if !ok {
		return nil, nil
	}
	return b, nil
}

// asBool looks a value up in the truthy/falsy sets. Numbers match by value,
// so 1 and 1.0 are true, 0 and 0.0 are false.
func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		if _, ok := truthy[x]; ok {
			return true, true
		}
		if _, ok := falsy[x]; ok {
			return false, true
		}
		return false, false
	}
	n, ok := asFloat64(v)
	switch {
	case !ok:
		return false, false
	case n == 1:
		return true, true
	case n == 0:
		return false, true
	}
	return false, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

// groupCoercer delegates to the nested schema of a group field. Clean binds
// one element and yields its *Bound; Field.clean collects them into a list.
type groupCoercer struct{}

func (groupCoercer) Validate(value any, f *Field) error {
	return f.nested.Validate(value)
}

func (groupCoercer) Clean(value any, f *Field) (any, error) {
	return f.nested.BindData(value)
}
