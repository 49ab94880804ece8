package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"unicode/utf8"
)

// Kind distinguishes the two scalar shapes an extracted value can take.
type Kind int

// Value kinds.
const (
	KindText Kind = iota
	KindNumber
)

// Value is one extracted scalar: text, or a number after coercion.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Text wraps s as a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number wraps f as a numeric value. NaN and infinities are allowed and
// serialize as null.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Kind reports the value kind.
func (v Value) Kind() Kind {
	return v.kind
}

// Float returns the numeric value and whether v is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// String returns the text, or the formatted number.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

// MarshalJSON renders text as a JSON string and numbers in their shortest
// form, with non-finite numbers written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber {
		return appendNumber(nil, v.num)
	}
	return appendString(nil, v.text), nil
}

// appendNumber writes f the way JavaScript prints a JSON number: shortest
// round-trip digits, no negative zero, null for NaN and infinities.
func appendNumber(dst []byte, f float64) ([]byte, error) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return append(dst, "null"...), nil
	case f == 0:
		return append(dst, '0'), nil
	}
	out, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return append(dst, out...), nil
}

// appendString quotes s escaping only quote, backslash and control
// characters. HTML characters and the U+2028/U+2029 separators are written
// as is.
func appendString(dst []byte, s string) []byte {
	const hex = "0123456789abcdef"
	dst = append(dst, '"')
	for _, r := range s {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if r < 0x20 {
				dst = append(dst, '\\', 'u', '0', '0', hex[r>>4], hex[r&0xF])
				continue
			}
			dst = utf8.AppendRune(dst, r)
		}
	}
	return append(dst, '"')
}
