package extract

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/JakeFAU/json-scraper/internal/options"
)

// FieldPath parses body as JSON, follows the slash-delimited keys in
// storeField, and returns the resolved value re-serialized as compact JSON
// text. A string leaf therefore keeps its quotes.
func FieldPath(url, body, storeField string) (string, error) {
	if !gjson.Valid(body) {
		return "", &InvalidJSONError{Path: storeField, URL: url}
	}
	current := gjson.Parse(body)
	for _, key := range strings.Split(storeField, options.FieldPathSeparator) {
		next := child(current, key)
		if !next.Exists() || next.Type == gjson.Null {
			return "", &FieldPathError{
				Key:       key,
				Path:      storeField,
				URL:       url,
				Available: keysOf(current),
			}
		}
		current = next
	}
	return serialize(current)
}

// child resolves key against an object (last duplicate wins) or an array
// (canonical decimal index). Scalars have no children.
func child(parent gjson.Result, key string) gjson.Result {
	var found gjson.Result
	switch {
	case parent.IsObject():
		parent.ForEach(func(k, v gjson.Result) bool {
			if k.String() == key {
				found = v
			}
			return true
		})
	case parent.IsArray():
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || strconv.Itoa(idx) != key {
			return found
		}
		i := 0
		parent.ForEach(func(_, v gjson.Result) bool {
			if i == idx {
				found = v
				return false
			}
			i++
			return true
		})
	}
	return found
}

func keysOf(r gjson.Result) []string {
	keys := []string{}
	switch {
	case r.IsObject():
		seen := make(map[string]struct{})
		r.ForEach(func(k, _ gjson.Result) bool {
			name := k.String()
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				keys = append(keys, name)
			}
			return true
		})
	case r.IsArray():
		i := 0
		r.ForEach(func(_, _ gjson.Result) bool {
			keys = append(keys, strconv.Itoa(i))
			i++
			return true
		})
	}
	return keys
}

// serialize rebuilds r from its parsed value rather than its source text, so
// numbers take their shortest form, strings are re-escaped and a duplicated
// object key keeps its first position with its last value. Array-index keys
// are ordered numerically ahead of other keys, as a JavaScript object would.
func serialize(r gjson.Result) (string, error) {
	out, err := appendResult(nil, r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func appendResult(dst []byte, r gjson.Result) ([]byte, error) {
	switch {
	case r.IsObject():
		return appendObject(dst, r)
	case r.IsArray():
		var err error
		dst = append(dst, '[')
		i := 0
		r.ForEach(func(_, v gjson.Result) bool {
			if i > 0 {
				dst = append(dst, ',')
			}
			i++
			dst, err = appendResult(dst, v)
			return err == nil
		})
		if err != nil {
			return nil, err
		}
		return append(dst, ']'), nil
	}
	switch r.Type {
	case gjson.String:
		return appendString(dst, r.Str), nil
	case gjson.Number:
		return appendNumber(dst, r.Num)
	case gjson.True:
		return append(dst, "true"...), nil
	case gjson.False:
		return append(dst, "false"...), nil
	default:
		return append(dst, "null"...), nil
	}
}

func appendObject(dst []byte, r gjson.Result) ([]byte, error) {
	var (
		keys   []string
		values = make(map[string]gjson.Result)
	)
	r.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if _, ok := values[name]; !ok {
			keys = append(keys, name)
		}
		values[name] = v
		return true
	})
	sort.SliceStable(keys, func(i, j int) bool {
		a, aIdx := arrayIndex(keys[i])
		b, bIdx := arrayIndex(keys[j])
		if aIdx && bIdx {
			return a < b
		}
		return aIdx && !bIdx
	})

	var err error
	dst = append(dst, '{')
	for i, key := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, key)
		dst = append(dst, ':')
		if dst, err = appendResult(dst, values[key]); err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

// arrayIndex reports whether key is a canonical array index.
func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}
