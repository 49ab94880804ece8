package options

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Option file keys.
const (
	keyURL        = "url"
	keyValues     = "values"
	keyParseStart = "parseStart"
	keyParseEnd   = "parseEnd"
	keyStoreField = "storeField"
	keyStoreAs    = "storeAs"
)

// Load reads and parses the options file at path.
func Load(path string) (Options, error) {
	// #nosec G304 -- the options path is operator supplied.
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes the options JSON, keeping outputs and fields in declared
// order, and validates the result. A repeated output key replaces the earlier
// definition in its original position. Malformed value rules are tolerated and
// recorded in Options.Warnings.
func Parse(data []byte) (Options, error) {
	if !gjson.ValidBytes(data) {
		return Options{}, &ValidationError{Item: noItem, Reason: "options are not valid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Options{}, &ValidationError{Item: noItem, Reason: "options must be a JSON object"}
	}

	var (
		opts     Options
		parseErr error
	)
	position := make(map[string]int)
	warn := func(msg string) { opts.Warnings = append(opts.Warnings, msg) }
	root.ForEach(func(key, value gjson.Result) bool {
		spec, err := parseOutput(key.String(), value, warn)
		if err != nil {
			parseErr = err
			return false
		}
		if idx, ok := position[spec.Path]; ok {
			opts.Outputs[idx] = spec
			return true
		}
		position[spec.Path] = len(opts.Outputs)
		opts.Outputs = append(opts.Outputs, spec)
		return true
	})
	if parseErr != nil {
		return Options{}, parseErr
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func parseOutput(path string, value gjson.Result, warn func(string)) (OutputSpec, error) {
	spec := OutputSpec{Path: path}
	if value.Type == gjson.Null {
		return spec, &ValidationError{Output: path, Item: noItem, Reason: "does not have any items"}
	}
	if !value.IsArray() {
		return spec, &ValidationError{Output: path, Item: noItem, Reason: "items must be an array"}
	}
	var (
		idx     int
		itemErr error
	)
	value.ForEach(func(_, raw gjson.Result) bool {
		item, err := parseItem(path, idx, raw, warn)
		if err != nil {
			itemErr = err
			return false
		}
		spec.Items = append(spec.Items, item)
		idx++
		return true
	})
	return spec, itemErr
}

func parseItem(output string, idx int, raw gjson.Result, warn func(string)) (SourceItem, error) {
	var item SourceItem
	if !raw.IsObject() {
		return item, &ValidationError{Output: output, Item: idx, Reason: "item must be an object"}
	}
	url := raw.Get(keyURL)
	if url.Type != gjson.String || url.Str == "" {
		return item, &ValidationError{Output: output, Item: idx, Reason: "item without a url field"}
	}
	item.URL = url.Str

	values := raw.Get(keyValues)
	if !values.Exists() || values.Type == gjson.Null {
		return item, &ValidationError{Output: output, Item: idx, Reason: "item without a values field"}
	}
	if !values.IsObject() {
		return item, &ValidationError{Output: output, Item: idx, Reason: "values must be an object"}
	}

	position := make(map[string]int)
	values.ForEach(func(key, rule gjson.Result) bool {
		name := key.String()
		parsed, notes := parseRule(rule)
		for _, note := range notes {
			warn(fmt.Sprintf("output %q item %d field %q: %s", output, idx, name, note))
		}
		if pos, ok := position[name]; ok {
			item.Values[pos].Rule = parsed
			return true
		}
		position[name] = len(item.Values)
		item.Values = append(item.Values, Field{Name: name, Rule: parsed})
		return true
	})
	return item, nil
}

// parseRule never fails. Anything it cannot use is dropped and reported in
// notes; a rule that is not an object stores the whole body.
func parseRule(raw gjson.Result) (ValueRule, []string) {
	if !raw.IsObject() {
		return NewValueRule("", "", "", StoreAsText), []string{"value rule is not an object, storing the whole body"}
	}
	var (
		fields [4]string
		notes  []string
	)
	for i, key := range []string{keyParseStart, keyParseEnd, keyStoreField, keyStoreAs} {
		v := raw.Get(key)
		switch v.Type {
		case gjson.Null:
		case gjson.String:
			fields[i] = v.Str
		default:
			notes = append(notes, fmt.Sprintf("ignoring non-string %s", key))
		}
	}
	storeAs := StoreAs(fields[3])
	switch storeAs {
	case StoreAsText, StoreAsString, StoreAsNumber:
	default:
		notes = append(notes, fmt.Sprintf("ignoring unsupported storeAs %q", fields[3]))
		storeAs = StoreAsText
	}
	return NewValueRule(fields[0], fields[1], fields[2], storeAs), notes
}
