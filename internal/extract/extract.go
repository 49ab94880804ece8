// Package extract applies value rules to fetched bodies.
package extract

import (
	"fmt"

	"github.com/JakeFAU/json-scraper/internal/options"
)

// Config controls how forgiving extraction is.
//   - Strict: a missing RawSlice marker or a non-numeric "number" value fails
//     the run instead of degrading (start of body, end of body, NaN).
type Config struct {
	Strict bool
}

// Extractor resolves value rules against fetched bodies. It holds no state
// beyond its configuration and is safe for concurrent use.
type Extractor struct {
	cfg Config
}

// New builds an Extractor.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract resolves rule against body, which was fetched from url.
func (e *Extractor) Extract(rule options.ValueRule, url, body string) (Value, error) {
	var (
		text string
		err  error
	)
	switch rule.Strategy {
	case options.StrategyRawSlice:
		text, err = e.slice(url, body, rule.ParseStart, rule.ParseEnd)
	case options.StrategyFieldPath:
		text, err = FieldPath(url, body, rule.StoreField)
	case options.StrategyWholeBody:
		text = body
	default:
		err = fmt.Errorf("unknown extraction strategy %s", rule.Strategy)
	}
	if err != nil {
		return Value{}, err
	}

	if rule.StoreAs != options.StoreAsNumber {
		return Text(text), nil
	}
	if e.cfg.Strict {
		f, ok := ParseNumber(text)
		if !ok {
			return Value{}, &CoercionError{Text: text, URL: url}
		}
		return Number(f), nil
	}
	return Number(ParseFloatPrefix(text)), nil
}

func (e *Extractor) slice(url, body, start, end string) (string, error) {
	text, startFound, endFound := Slice(body, start, end)
	if e.cfg.Strict {
		if !startFound {
			return "", &SliceError{Marker: start, Bound: "parseStart", URL: url}
		}
		if !endFound {
			return "", &SliceError{Marker: end, Bound: "parseEnd", URL: url}
		}
	}
	return text, nil
}
