package formskema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/i18n"
)

func profileSchema(t *testing.T) *formskema.Schema {
	t.Helper()
	return mustNew(t, []formskema.FieldDefinition{
		{ID: "name", Type: "text", Validation: []formskema.RuleDefinition{{Rule: "required"}}},
		{ID: "age", Type: "text", ValueType: "integer"},
		{ID: "addresses", Type: "group", Multiple: true},
		{ID: "city", Type: "text", Parent: "addresses"},
	})
}

func TestValidationError_MarshalJSONKeepsOrder(t *testing.T) {
	s := profileSchema(t)
	data, err := formskema.DecodeJSON([]byte(`{"name":"","age":"x","addresses":[{"city":"Oslo"},{"zip":"1"}]}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	ve, ok := formskema.AsValidationError(s.Validate(data))
	if !ok {
		t.Fatalf("expected validation error")
	}
	out, err := ve.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"name":["Required field"],"age":["Value is not an integer"],"addresses":{"1":{"zip":["Unknown field"]}}}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestValidationError_MarshalJSONTopLevelShape(t *testing.T) {
	ve, _ := formskema.AsValidationError(profileSchema(t).Validate("nope"))
	out, err := ve.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != `["Data must be a dictionary"]` {
		t.Fatalf("got %s", out)
	}
}

func TestValidationError_Issues(t *testing.T) {
	s := profileSchema(t)
	err := s.Validate(formskema.RecordOf(
		"age", "x",
		"addresses", []any{formskema.RecordOf("city", 1), formskema.NewRecord()},
		"a/b", 1,
	))
	ve, _ := formskema.AsValidationError(err)
	type flat struct{ Path, Code string }
	var got []flat
	for _, it := range ve.Issues() {
		got = append(got, flat{it.Path, it.Code})
	}
	want := []flat{
		{"/age", formskema.CodeInvalidType},
		{"/addresses/0/city", formskema.CodeInvalidType},
		{"/addresses/1", formskema.CodeEmptyGroup},
		{"/a~1b", formskema.CodeUnknownField},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(err.Error(), "formskema: validation failed: invalid_type at /age") {
		t.Fatalf("error text = %q", err.Error())
	}
}

func TestValidationError_RuleRecorded(t *testing.T) {
	ve, _ := formskema.AsValidationError(profileSchema(t).Validate(map[string]any{"name": ""}))
	iss := ve.Issues()
	if len(iss) != 1 || iss[0].Rule != formskema.RuleRequired || iss[0].Code != formskema.CodeRequired {
		t.Fatalf("issues = %+v", iss)
	}
}

func TestAsValidationError(t *testing.T) {
	if _, ok := formskema.AsValidationError(nil); ok {
		t.Fatalf("nil is not a validation error")
	}
	if _, ok := formskema.AsValidationError(errors.New("x")); ok {
		t.Fatalf("plain errors are not validation errors")
	}
	inner := profileSchema(t).Validate(1)
	wrapped := fmt.Errorf("submit: %w", inner)
	ve, ok := formskema.AsValidationError(wrapped)
	if !ok || ve.Field != formskema.SchemaKey {
		t.Fatalf("wrapped error not unwrapped: %v", wrapped)
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := formskema.Issues{
		{Path: "/a", Code: "required"},
		{Path: "/b", Code: "required"},
		{Path: "/c", Code: "required"},
		{Path: "/d", Code: "required"},
	}
	want := "required at /a; required at /b; required at /c; ... (total 4)"
	if got := iss.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDetail_Accessors(t *testing.T) {
	ve, _ := formskema.AsValidationError(profileSchema(t).Validate(map[string]any{
		"addresses": []any{map[string]any{}, map[string]any{"city": 2}},
	}))
	addr := ve.Detail.Field("addresses")
	if got := addr.Item(0).Messages(); !cmp.Equal(got, []string{"Objects cannot be empty"}) {
		t.Fatalf("item 0 = %v", got)
	}
	if got := addr.Item(1).Field("city").Messages(); !cmp.Equal(got, []string{"Value must be a string"}) {
		t.Fatalf("item 1 = %v", got)
	}
	if addr.Item(7) != nil || ve.Detail.Field("nope") != nil {
		t.Fatalf("absent entries must be nil")
	}
}

func TestMessages_Translated(t *testing.T) {
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")

	s := mustNew(t, []formskema.FieldDefinition{
		{ID: "v", Type: "text", Validation: []formskema.RuleDefinition{{Rule: "required"}}},
		{ID: "custom", Type: "text", Validation: []formskema.RuleDefinition{{Rule: "required", InvalidMsg: "custom"}}},
	})
	got := payloadOf(t, s, map[string]any{"v": "", "custom": "", "x": 1})
	want := map[string]any{
		"v":      []string{"必須項目です"},
		"custom": []string{"custom"},
		"x":      []string{"未知のフィールドです"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestPathRef(t *testing.T) {
	p := formskema.RootPath().Field("items").Index(2).Field("a~b/c")
	if got := p.Pointer(); got != "/items/2/a~0b~1c" {
		t.Fatalf("pointer = %q", got)
	}
	if got := formskema.RootPath().Pointer(); got != "/" {
		t.Fatalf("root pointer = %q", got)
	}
	is := formskema.ParsePath("/items/2").Issue(formskema.CodeRequired, "m")
	if is.Path != "/items/2" || is.Code != formskema.CodeRequired {
		t.Fatalf("issue = %+v", is)
	}
}
