package dataspec_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/dataspec"
)

func TestErrorDetails_AsMap(t *testing.T) {
	e := dataspec.ErrorDetails{
		Message: "value '1' is not a string",
		Pred:    "is-str",
		Value:   1,
		Via:     []string{"record", "is-str"},
		Path:    []any{"a", 0},
	}
	m := e.AsMap()
	assert.Equal(t, "value '1' is not a string", m["message"])
	assert.Equal(t, "is-str", m["pred"])
	assert.Equal(t, "1", m["value"])
	assert.Equal(t, []string{"record", "is-str"}, m["via"])
	assert.Equal(t, []string{"a", "0"}, m["path"])
}

func TestErrorDetails_MarshalJSON(t *testing.T) {
	e := dataspec.ErrorDetails{
		Message: "too long",
		Pred:    "max-3",
		Value:   "abcd",
		Via:     []string{"token"},
		Path:    []any{2},
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"too long","pred":"max-3","value":"abcd","via":["token"],"path":["2"]}`, string(data))
}

func TestErrorDetails_MarshalYAMLKeyOrder(t *testing.T) {
	e := dataspec.ErrorDetails{
		Message: "too long",
		Pred:    "max-3",
		Value:   "abcd",
		Via:     []string{"token"},
		Path:    []any{2},
	}
	data, err := yaml.Marshal(e)
	require.NoError(t, err)
	text := string(data)
	require.Contains(t, text, "message: too long")
	// key order is fixed: message, pred, value, via, path
	assert.Less(t, strings.Index(text, "message:"), strings.Index(text, "pred:"))
	assert.Less(t, strings.Index(text, "pred:"), strings.Index(text, "value:"))
	assert.Less(t, strings.Index(text, "value:"), strings.Index(text, "via:"))
	assert.Less(t, strings.Index(text, "via:"), strings.Index(text, "path:"))
}

func TestValidationError_Summary(t *testing.T) {
	ve := &dataspec.ValidationError{Errors: []dataspec.ErrorDetails{
		{Message: "first", Path: []any{"a"}},
		{Message: "second"},
		{Message: "third"},
		{Message: "fourth"},
		{Message: "fifth"},
	}}
	msg := ve.Error()
	assert.Contains(t, msg, "first at [a]")
	assert.Contains(t, msg, "second")
	assert.Contains(t, msg, "third")
	assert.NotContains(t, msg, "fourth")
	assert.Contains(t, msg, "(total 5)")
}

func TestValidationError_MarshalJSON(t *testing.T) {
	ve := &dataspec.ValidationError{Errors: []dataspec.ErrorDetails{
		{Message: "m", Pred: "p", Value: 1, Via: []string{"v"}, Path: []any{"k"}},
	}}
	data, err := json.Marshal(ve)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"message":"m","pred":"p","value":"1","via":["v"],"path":["k"]}]`, string(data))
}

func TestErrorDetails_PrependDoesNotMutate(t *testing.T) {
	s := dataspec.MustBuild(map[any]any{"a": dataspec.IsStr}, dataspec.Tag("outer"))
	seq := s.Validate(map[any]any{"a": 1})
	var first dataspec.ErrorDetails
	for e := range seq {
		first = e
	}
	// replaying must produce an identical via, not a longer one
	for e := range seq {
		require.Equal(t, first.Via, e.Via)
		require.Equal(t, first.Path, e.Path)
	}
}

func TestAsValidationError(t *testing.T) {
	_, ok := dataspec.AsValidationError(nil)
	assert.False(t, ok)

	err := dataspec.MustBuild(dataspec.IsStr).ValidateEx(1)
	ve, ok := dataspec.AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Errors, 1)
}
