package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate_PrintsCleanValues(t *testing.T) {
	out, _, err := run(t, "validate",
		"--schema", "../../testdata/profile.json",
		"--data", "../../testdata/profile_valid.json")
	require.NoError(t, err)

	want := `name: "Ada"
age: 36
newsletter: true
plan: "pro"
addresses:
  [0]
    city: "London"
    since: 2020-01-02
  [1]
    city: "Oslo"
`
	assert.Equal(t, want, out)
}

func TestValidate_YAMLSchema(t *testing.T) {
	out, _, err := run(t, "validate",
		"--schema", "../../testdata/profile.yaml",
		"--data", "../../testdata/profile_valid.json")
	require.NoError(t, err)
	assert.Contains(t, out, "age: 36\n")
}

func TestValidate_InvalidData(t *testing.T) {
	out, _, err := run(t, "validate",
		"--schema", "../../testdata/profile.json",
		"--data", "../../testdata/profile_invalid.json")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `"Name is required"`)
	assert.Contains(t, out, `"Value is not an integer"`)
	assert.Contains(t, out, `"nickname"`)
}

func TestValidate_Japanese(t *testing.T) {
	out, _, err := run(t, "validate", "--lang", "ja",
		"--schema", "../../testdata/profile.json",
		"--data", "../../testdata/profile_invalid.json")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "値が整数ではありません")
	// custom messages are not translated
	assert.Contains(t, out, "Name is required")

	// the language is reset once the command returns
	out, _, err = run(t, "validate",
		"--schema", "../../testdata/profile.json",
		"--data", "../../testdata/profile_invalid.json")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "Value is not an integer")
}

func TestValidate_Errors(t *testing.T) {
	_, _, err := run(t, "validate", "--schema", "../../testdata/profile.json")
	require.Error(t, err)

	_, _, err = run(t, "validate", "--schema", "../../testdata/nope.json", "--data", "../../testdata/profile_valid.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errInvalid)

	_, _, err = run(t, "--log-level", "loud", "validate",
		"--schema", "../../testdata/profile.json",
		"--data", "../../testdata/profile_valid.json")
	require.ErrorContains(t, err, `unknown log level "loud"`)
}

func TestValidate_DebugLogging(t *testing.T) {
	_, logs, err := run(t, "--log-level", "debug", "validate",
		"--schema", "../../testdata/profile.json",
		"--data", "../../testdata/profile_invalid.json")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, logs, "level=DEBUG")
	assert.Contains(t, logs, "path=/name")
}

func TestServe_BadDir(t *testing.T) {
	_, _, err := run(t, "serve", "--dir", "../../testdata/missing")
	require.ErrorContains(t, err, "load forms")
}
