package formskema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/formskema"
)

func withRules(id string, rules ...formskema.RuleDefinition) []formskema.FieldDefinition {
	return []formskema.FieldDefinition{{ID: id, Type: "text", Validation: rules}}
}

func TestRequired(t *testing.T) {
	s := mustNew(t, withRules("v", formskema.RuleDefinition{Rule: "required"}))
	if diff := cmp.Diff([]string{"Required field"}, messages(t, s, "")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if msgs := messages(t, s, "x"); msgs != nil {
		t.Fatalf("unexpected failure %v", msgs)
	}

	custom := mustNew(t, withRules("v", formskema.RuleDefinition{Rule: "required", InvalidMsg: "Please fill in"}))
	if diff := cmp.Diff([]string{"Please fill in"}, messages(t, custom, "")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestRequired_NilOnLocaleText(t *testing.T) {
	// locale_text rejects nil structurally before validators run.
	s := mustNew(t, []formskema.FieldDefinition{{
		ID: "v", Type: "text", ValueType: formskema.ValueLocaleText,
		Validation: []formskema.RuleDefinition{{Rule: "required"}},
	}})
	if diff := cmp.Diff([]string{"Value must be an object"}, messages(t, s, nil)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestRegexp(t *testing.T) {
	s := mustNew(t, withRules("v", formskema.RuleDefinition{
		Rule:       "regexp",
		InvalidMsg: "Digits only",
		Extra:      map[string]any{"regexp": `\d+$`},
	}))
	if msgs := messages(t, s, "12345"); msgs != nil {
		t.Fatalf("unexpected failure %v", msgs)
	}
	for _, bad := range []string{"abc", "a123", "12a"} {
		if diff := cmp.Diff([]string{"Digits only"}, messages(t, s, bad)); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", bad, diff)
		}
	}
}

func TestRegexp_MatchesAtStart(t *testing.T) {
	s := mustNew(t, withRules("v", formskema.RuleDefinition{Rule: "regexp", Extra: map[string]any{"regexp": "ab"}}))
	if msgs := messages(t, s, "abc"); msgs != nil {
		t.Fatalf("prefix match expected, got %v", msgs)
	}
	if diff := cmp.Diff([]string{"Field does not satisfy regular expression"}, messages(t, s, "cab")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestRegexp_DefaultMatchesAnything(t *testing.T) {
	s := mustNew(t, withRules("v", formskema.RuleDefinition{Rule: "regexp"}))
	for _, v := range []string{"", "anything", "\n"} {
		if msgs := messages(t, s, v); msgs != nil {
			t.Fatalf("%q: unexpected failure %v", v, msgs)
		}
	}
}

func TestRegexp_NonStringPattern(t *testing.T) {
	_, err := formskema.New(withRules("v", formskema.RuleDefinition{Rule: "regexp", Extra: map[string]any{"regexp": 5}}))
	if !errors.Is(err, formskema.ErrInvalidRule) {
		t.Fatalf("got %v", err)
	}
}

func TestValidators_FirstFailureWins(t *testing.T) {
	s := mustNew(t, withRules("v",
		formskema.RuleDefinition{Rule: "required", InvalidMsg: "first"},
		formskema.RuleDefinition{Rule: "regexp", InvalidMsg: "second", Extra: map[string]any{"regexp": "x"}},
	))
	if diff := cmp.Diff([]string{"first"}, messages(t, s, "")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"second"}, messages(t, s, "y")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestValidators_CoercerRunsFirst(t *testing.T) {
	s := mustNew(t, withRules("v", formskema.RuleDefinition{Rule: "required", InvalidMsg: "required"}))
	if diff := cmp.Diff([]string{"Value must be a string"}, messages(t, s, nil)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestValidators_RunPerElement(t *testing.T) {
	s := mustNew(t, []formskema.FieldDefinition{{
		ID: "v", Type: "text", Multiple: true,
		Validation: []formskema.RuleDefinition{{Rule: "required"}},
	}})
	got := payloadOf(t, s, map[string]any{"v": []any{"a", "", "c", ""}})
	want := map[string]any{"v": map[int]any{1: []string{"Required field"}, 3: []string{"Required field"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestExpression_CrossField(t *testing.T) {
	s := mustNew(t, []formskema.FieldDefinition{
		{ID: "password", Type: "text"},
		{ID: "confirm", Type: "text", Validation: []formskema.RuleDefinition{{
			Rule:       "expression",
			InvalidMsg: "Passwords do not match",
			Extra:      map[string]any{"expression": "value == password"},
		}}},
	})
	if err := s.Validate(map[string]any{"password": "s3cret", "confirm": "s3cret"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	got := payloadOf(t, s, map[string]any{"password": "s3cret", "confirm": "other"})
	want := map[string]any{"confirm": []string{"Passwords do not match"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestExpression_BuildErrors(t *testing.T) {
	_, err := formskema.New(withRules("v", formskema.RuleDefinition{Rule: "expression"}))
	if !errors.Is(err, formskema.ErrInvalidRule) {
		t.Fatalf("missing expression: got %v", err)
	}
}

type prefixRule struct {
	prefix string
}

func (r prefixRule) Validate(value any, _ *formskema.Record) error {
	if s, _ := value.(string); !strings.HasPrefix(s, r.prefix) {
		return formskema.Issue{Code: formskema.CodePattern, Message: "must start with " + r.prefix}
	}
	return nil
}

func TestWithRule(t *testing.T) {
	factory := func(_ *formskema.Field, def formskema.RuleDefinition) (formskema.Validator, error) {
		p, _ := def.Extra["prefix"].(string)
		return prefixRule{prefix: p}, nil
	}
	s := mustNew(t,
		withRules("v", formskema.RuleDefinition{Rule: "prefix", Extra: map[string]any{"prefix": "ID-"}}),
		formskema.WithRule("prefix", factory),
	)
	if msgs := messages(t, s, "ID-7"); msgs != nil {
		t.Fatalf("unexpected failure %v", msgs)
	}
	if diff := cmp.Diff([]string{"must start with ID-"}, messages(t, s, "7")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	s := mustNew(t, []formskema.FieldDefinition{{
		ID: "v", Type: "select",
		Options: []formskema.Option{{Value: "red", Label: "Red"}, {Value: "green", Label: "Green"}},
	}})
	if msgs := messages(t, s, "green"); msgs != nil {
		t.Fatalf("unexpected failure %v", msgs)
	}
	if diff := cmp.Diff([]string{"Incorrect value: blue"}, messages(t, s, "blue")); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	// The value type check runs before the option lookup.
	if diff := cmp.Diff([]string{"Value must be a string"}, messages(t, s, 1)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSelect_MappingValueMessage(t *testing.T) {
	s := mustNew(t, []formskema.FieldDefinition{{
		ID: "v", Type: "select", ValueType: formskema.ValueLocaleText,
		Options: []formskema.Option{{Value: map[string]any{"en": "yes"}}},
	}})
	if msgs := messages(t, s, formskema.RecordOf("en", "yes")); msgs != nil {
		t.Fatalf("unexpected failure %v", msgs)
	}
	got := messages(t, s, formskema.RecordOf("en", "x"))
	if diff := cmp.Diff([]string{"Incorrect value: map[en:x]"}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSelect_NumericOptionsCompareByValue(t *testing.T) {
	// Options decoded by encoding/json carry float64 values.
	s := mustNew(t, []formskema.FieldDefinition{{
		ID: "v", Type: "select", ValueType: formskema.ValueInteger,
		Options: []formskema.Option{{Value: 1.0}, {Value: int64(2)}},
	}})
	for _, good := range []any{1, int64(1), int32(2)} {
		if msgs := messages(t, s, good); msgs != nil {
			t.Fatalf("%#v rejected: %v", good, msgs)
		}
	}
	if diff := cmp.Diff([]string{"Incorrect value: 3"}, messages(t, s, 3)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if got := cleanOf(t, s, 2); got != int64(2) {
		t.Fatalf("clean = %#v", got)
	}
}
