package extract

import (
	"fmt"
	"strings"
)

// FieldPathError reports a key missing (absent or null) during JSON path
// traversal.
type FieldPathError struct {
	// Key is the path component that could not be resolved.
	Key string
	// Path is the full slash-delimited storeField.
	Path string
	URL  string
	// Available lists the keys present where traversal stopped.
	Available []string
}

func (e *FieldPathError) Error() string {
	quoted := make([]string, len(e.Available))
	for i, k := range e.Available {
		quoted[i] = "'" + k + "'"
	}
	return fmt.Sprintf("cannot find field '%s' when searching for '%s' in response of '%s'. available fields: %s",
		e.Key, e.Path, e.URL, strings.Join(quoted, ", "))
}

// InvalidJSONError reports a FieldPath rule applied to a body that is not JSON.
type InvalidJSONError struct {
	Path string
	URL  string
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("response of '%s' is not valid JSON (searching for '%s')", e.URL, e.Path)
}

// SliceError reports a RawSlice marker that was not found. It is only raised
// in strict mode.
type SliceError struct {
	Marker string
	// Bound is "parseStart" or "parseEnd".
	Bound string
	URL   string
}

func (e *SliceError) Error() string {
	return fmt.Sprintf("%s marker %q not found in response of '%s'", e.Bound, e.Marker, e.URL)
}

// CoercionError reports text that is not a number. It is only raised in
// strict mode.
type CoercionError struct {
	Text string
	URL  string
}

func (e *CoercionError) Error() string {
	text := e.Text
	if len(text) > 64 {
		text = text[:64] + "..."
	}
	return fmt.Sprintf("value %q from '%s' is not a number", text, e.URL)
}
