package extract

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseFloatPrefix reads the longest decimal number at the start of s after
// leading whitespace, the way JavaScript's parseFloat does. Text with no
// numeric prefix yields NaN.
func ParseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, isJSSpace)
	m := numericPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	if strings.HasSuffix(m, "Infinity") {
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// ErrRange still carries the correctly rounded ±Inf or ±0.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// ParseNumber accepts only text that is entirely a finite decimal number,
// ignoring surrounding whitespace.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimFunc(s, isJSSpace)
	m := numericPrefix.FindString(s)
	if m == "" || m != s || strings.HasSuffix(m, "Infinity") {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isJSSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
