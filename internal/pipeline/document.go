package pipeline

import (
	"bytes"
	"fmt"

	"github.com/JakeFAU/json-scraper/internal/extract"
)

// Document is one output file's flat field map. Keys keep the order in which
// they were first set; setting an existing key replaces its value in place.
type Document struct {
	path   string
	keys   []string
	values map[string]extract.Value
}

// NewDocument returns an empty document destined for path.
func NewDocument(path string) *Document {
	return &Document{path: path, values: make(map[string]extract.Value)}
}

// Path returns the destination path.
func (d *Document) Path() string {
	return d.path
}

// Set stores v under name. Last write wins.
func (d *Document) Set(name string, v extract.Value) {
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = v
}

// Get returns the value stored under name.
func (d *Document) Get(name string) (extract.Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Keys returns the field names in output order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.keys)
}

// MarshalJSON encodes the document as a compact JSON object in key order.
// HTML characters are not escaped.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := extract.Text(key).MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", key, err)
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := d.values[key].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", key, err)
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
