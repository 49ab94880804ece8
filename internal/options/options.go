// Package options models the declarative scrape configuration: which output
// documents to write, which URLs feed them, and how each field is extracted.
package options

import (
	"fmt"
	"strings"
)

// Strategy selects how a field is pulled out of a fetched body.
type Strategy int

// Supported extraction strategies. They are mutually exclusive per field.
const (
	StrategyWholeBody Strategy = iota
	StrategyRawSlice
	StrategyFieldPath
)

// String returns the strategy name used in logs and errors.
func (s Strategy) String() string {
	switch s {
	case StrategyWholeBody:
		return "whole_body"
	case StrategyRawSlice:
		return "raw_slice"
	case StrategyFieldPath:
		return "field_path"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// StoreAs is the optional type coercion applied after extraction.
type StoreAs string

// Supported coercions. The zero value keeps the extracted text.
const (
	StoreAsText   StoreAs = ""
	StoreAsString StoreAs = "string"
	StoreAsNumber StoreAs = "number"
)

// FieldPathSeparator splits storeField into JSON object keys.
const FieldPathSeparator = "/"

// ValueRule describes the extraction of one field.
type ValueRule struct {
	Strategy Strategy
	// ParseStart and ParseEnd bound a RawSlice. ParseEnd is optional.
	ParseStart string
	ParseEnd   string
	// StoreField is the slash-delimited path of a FieldPath rule.
	StoreField string
	StoreAs    StoreAs
}

// NewValueRule applies the precedence used by the options file: a non-empty
// parseStart wins, then a non-empty storeField, otherwise the whole body.
func NewValueRule(parseStart, parseEnd, storeField string, storeAs StoreAs) ValueRule {
	rule := ValueRule{
		ParseStart: parseStart,
		ParseEnd:   parseEnd,
		StoreField: storeField,
		StoreAs:    storeAs,
	}
	switch {
	case parseStart != "":
		rule.Strategy = StrategyRawSlice
	case storeField != "":
		rule.Strategy = StrategyFieldPath
	default:
		rule.Strategy = StrategyWholeBody
	}
	return rule
}

// Path returns the keys of a FieldPath rule in traversal order.
func (r ValueRule) Path() []string {
	if r.StoreField == "" {
		return nil
	}
	return strings.Split(r.StoreField, FieldPathSeparator)
}

// Field binds an output field name to its rule.
type Field struct {
	Name string
	Rule ValueRule
}

// SourceItem is one URL plus the fields extracted from its response.
type SourceItem struct {
	URL    string
	Values []Field
}

// OutputSpec is one destination document and the items that feed it.
type OutputSpec struct {
	Path  string
	Items []SourceItem
}

// Options is the parsed configuration. Outputs keep their declared order.
type Options struct {
	Outputs []OutputSpec
	// Warnings lists value rule problems that Parse tolerated.
	Warnings []string
}

// Validate enforces the structural invariants of the configuration. It does
// no I/O and is safe to call before any network activity.
func (o Options) Validate() error {
	if len(o.Outputs) == 0 {
		return &ValidationError{Item: noItem, Reason: "no outputs declared"}
	}
	for _, out := range o.Outputs {
		if err := out.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s OutputSpec) validate() error {
	if strings.TrimSpace(s.Path) == "" {
		return &ValidationError{Item: noItem, Reason: "output path is empty"}
	}
	if len(s.Items) == 0 {
		return &ValidationError{Output: s.Path, Item: noItem, Reason: "does not have any items"}
	}
	for i, item := range s.Items {
		if item.URL == "" {
			return &ValidationError{Output: s.Path, Item: i, Reason: "item without a url field"}
		}
		if len(item.Values) == 0 {
			return &ValidationError{Output: s.Path, Item: i, Reason: "item without a values field"}
		}
		for _, f := range item.Values {
			if err := f.Rule.validate(); err != nil {
				return &ValidationError{Output: s.Path, Item: i, Field: f.Name, Reason: err.Error()}
			}
		}
	}
	return nil
}

func (r ValueRule) validate() error {
	switch r.StoreAs {
	case StoreAsText, StoreAsString, StoreAsNumber:
	default:
		return fmt.Errorf("unsupported storeAs %q", string(r.StoreAs))
	}
	switch r.Strategy {
	case StrategyWholeBody:
	case StrategyRawSlice:
		if r.ParseStart == "" {
			return fmt.Errorf("raw slice requires parseStart")
		}
	case StrategyFieldPath:
		if r.StoreField == "" {
			return fmt.Errorf("field path requires storeField")
		}
	default:
		return fmt.Errorf("unknown strategy %s", r.Strategy)
	}
	return nil
}
