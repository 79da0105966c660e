package model

import (
	"fmt"
	"strings"
)

// MalformedLineItemError reports a line item whose quantity or unit price
// cannot be used for totals.
type MalformedLineItemError struct {
	ItemNo string
	Row    int // 1-based source row for imported data, 0 otherwise
	Field  string
	Value  string
	Reason string
}

func (e *MalformedLineItemError) Error() string {
	var b strings.Builder
	b.WriteString("malformed line item")
	if e.ItemNo != "" {
		fmt.Fprintf(&b, " %q", e.ItemNo)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " (row %d)", e.Row)
	}
	fmt.Fprintf(&b, ": %s %q %s", e.Field, e.Value, e.Reason)
	return b.String()
}

// ValidationError is returned by Aggregate when an enforced policy is not met.
// No summary accompanies it.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}
