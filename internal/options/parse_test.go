package options

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDeclaredOrder(t *testing.T) {
	t.Parallel()

	raw := `{
		"out/b.json": [{"url": "https://example.test/b", "values": {"z": {}, "a": {"storeField": "x/y"}}}],
		"a.json": [
			{"url": "https://example.test/a", "values": {"price": {"parseStart": "<p>", "parseEnd": "</p>", "storeAs": "number"}}},
			{"url": "https://example.test/b", "values": {"raw": {}}}
		]
	}`
	opts, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, opts.Outputs, 2)

	assert.Equal(t, "out/b.json", opts.Outputs[0].Path)
	assert.Equal(t, "a.json", opts.Outputs[1].Path)

	first := opts.Outputs[0].Items[0]
	require.Len(t, first.Values, 2)
	assert.Equal(t, "z", first.Values[0].Name)
	assert.Equal(t, StrategyWholeBody, first.Values[0].Rule.Strategy)
	assert.Equal(t, "a", first.Values[1].Name)
	assert.Equal(t, StrategyFieldPath, first.Values[1].Rule.Strategy)
	assert.Equal(t, []string{"x", "y"}, first.Values[1].Rule.Path())

	price := opts.Outputs[1].Items[0].Values[0].Rule
	assert.Equal(t, StrategyRawSlice, price.Strategy)
	assert.Equal(t, "<p>", price.ParseStart)
	assert.Equal(t, "</p>", price.ParseEnd)
	assert.Equal(t, StoreAsNumber, price.StoreAs)
}

func TestParseRulePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule string
		want Strategy
	}{
		{name: "parse start wins over store field", rule: `{"parseStart": "a", "storeField": "b"}`, want: StrategyRawSlice},
		{name: "empty parse start falls through", rule: `{"parseStart": "", "storeField": "b"}`, want: StrategyFieldPath},
		{name: "store field", rule: `{"storeField": "b"}`, want: StrategyFieldPath},
		{name: "parse end alone is whole body", rule: `{"parseEnd": "x"}`, want: StrategyWholeBody},
		{name: "empty rule", rule: `{}`, want: StrategyWholeBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := `{"o.json": [{"url": "https://example.test", "values": {"f": ` + tt.rule + `}}]}`
			opts, err := Parse([]byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.Outputs[0].Items[0].Values[0].Rule.Strategy)
		})
	}
}

func TestParseDuplicateKeysKeepFirstPosition(t *testing.T) {
	t.Parallel()

	raw := `{
		"one.json": [{"url": "https://example.test/1", "values": {"a": {}}}],
		"two.json": [{"url": "https://example.test/2", "values": {"a": {}}}],
		"one.json": [{"url": "https://example.test/3", "values": {"b": {}, "b": {"storeField": "k"}}}]
	}`
	opts, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, opts.Outputs, 2)
	assert.Equal(t, "one.json", opts.Outputs[0].Path)
	assert.Equal(t, "https://example.test/3", opts.Outputs[0].Items[0].URL)
	require.Len(t, opts.Outputs[0].Items[0].Values, 1)
	assert.Equal(t, StrategyFieldPath, opts.Outputs[0].Items[0].Values[0].Rule.Strategy)
}

func TestParseValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		output string
		want   string
	}{
		{name: "not json", raw: `{"a": [`, want: "not valid JSON"},
		{name: "not an object", raw: `[1, 2]`, want: "must be a JSON object"},
		{name: "no outputs", raw: `{}`, want: "no outputs declared"},
		{name: "empty items", raw: `{"o.json": []}`, output: "o.json", want: "does not have any items"},
		{name: "null items", raw: `{"o.json": null}`, output: "o.json", want: "does not have any items"},
		{name: "items not array", raw: `{"o.json": {"url": "x"}}`, output: "o.json", want: "items must be an array"},
		{name: "missing url", raw: `{"o.json": [{"values": {"a": {}}}]}`, output: "o.json", want: "without a url"},
		{name: "empty url", raw: `{"o.json": [{"url": "", "values": {"a": {}}}]}`, output: "o.json", want: "without a url"},
		{name: "numeric url", raw: `{"o.json": [{"url": 5, "values": {"a": {}}}]}`, output: "o.json", want: "without a url"},
		{name: "missing values", raw: `{"o.json": [{"url": "https://x.test"}]}`, output: "o.json", want: "without a values"},
		{name: "empty values", raw: `{"o.json": [{"url": "https://x.test", "values": {}}]}`, output: "o.json", want: "without a values"},
		{name: "values not object", raw: `{"o.json": [{"url": "https://x.test", "values": [1]}]}`, output: "o.json", want: "values must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.output, verr.Output)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseToleratesMalformedRules(t *testing.T) {
	t.Parallel()

	raw := `{"o.json": [{"url": "https://x.test", "values": {
		"whole": "x",
		"start": {"parseStart": 1, "storeField": "a/b"},
		"kind": {"storeField": "a", "storeAs": "date"},
		"ok": {"storeAs": "number"}
	}}]}`
	opts, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, opts.Outputs, 1)

	values := opts.Outputs[0].Items[0].Values
	require.Len(t, values, 4)
	assert.Equal(t, NewValueRule("", "", "", StoreAsText), values[0].Rule)
	assert.Equal(t, NewValueRule("", "", "a/b", StoreAsText), values[1].Rule)
	assert.Equal(t, NewValueRule("", "", "a", StoreAsText), values[2].Rule)
	assert.Equal(t, NewValueRule("", "", "", StoreAsNumber), values[3].Rule)

	require.Len(t, opts.Warnings, 3)
	assert.Contains(t, opts.Warnings[0], `field "whole": value rule is not an object`)
	assert.Contains(t, opts.Warnings[1], `field "start": ignoring non-string parseStart`)
	assert.Contains(t, opts.Warnings[2], `field "kind": ignoring unsupported storeAs "date"`)
}

func TestParseWellFormedHasNoWarnings(t *testing.T) {
	t.Parallel()

	opts, err := Parse([]byte(`{"o.json": [{"url": "https://x.test", "values": {"a": {"storeField": "a"}}}]}`))
	require.NoError(t, err)
	assert.Empty(t, opts.Warnings)
}

func TestValidateAcceptsWellFormedOptions(t *testing.T) {
	t.Parallel()

	opts := Options{Outputs: []OutputSpec{
		{Path: "a.json", Items: []SourceItem{{
			URL:    "https://example.test",
			Values: []Field{{Name: "x", Rule: NewValueRule("", "", "", StoreAsText)}},
		}}},
		{Path: "dir/b.json", Items: []SourceItem{
			{URL: "https://example.test", Values: []Field{{Name: "y", Rule: NewValueRule("a", "", "", StoreAsNumber)}}},
			{URL: "https://other.test", Values: []Field{{Name: "z", Rule: NewValueRule("", "", "a/b", StoreAsString)}}},
		}},
	}}
	require.NoError(t, opts.Validate())
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Output: "o.json", Item: 2, Field: "price", Reason: "boom"}
	assert.Equal(t, `invalid options: output "o.json" item 2 field "price": boom`, err.Error())

	err = &ValidationError{Item: noItem, Reason: "no outputs declared"}
	assert.Equal(t, "invalid options: no outputs declared", err.Error())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "options.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"o.json": [{"url": "https://x.test", "values": {"a": {}}}]}`), 0o600))

	opts, err := Load(path)
	require.NoError(t, err)
	require.Len(t, opts.Outputs, 1)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read options file")
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}
