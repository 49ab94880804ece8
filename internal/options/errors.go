package options

import (
	"fmt"
	"strings"
)

const noItem = -1

// ValidationError reports malformed configuration. It is always raised before
// any network request is issued.
type ValidationError struct {
	// Output is the offending output path, empty for file-level problems.
	Output string
	// Item is the zero-based source item index, or -1.
	Item int
	// Field is the offending value name, if any.
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid options")
	if e.Output != "" {
		fmt.Fprintf(&b, ": output %q", e.Output)
	}
	if e.Item >= 0 {
		fmt.Fprintf(&b, " item %d", e.Item)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}
