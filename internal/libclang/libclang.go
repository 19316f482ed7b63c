// Package libclang adapts libclang 13, through go-clang, to the mapper's
// Cursor and Type interfaces and implements the pipeline front end.
//
// The cgo adapter is compiled only with the libclang build tag. Without it
// Frontend.Parse fails with ErrUnavailable.
package libclang

import (
	"fmt"
	"strings"
)

// ParseError lists the error diagnostics libclang reported for a header.
type ParseError struct {
	Header   string
	Messages []string
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Messages) == 0 {
		return fmt.Sprintf("%s: libclang could not parse the header", e.Header)
	}
	return fmt.Sprintf("%s: %s", e.Header, strings.Join(e.Messages, "; "))
}

// Frontend parses headers with libclang. The zero value is ready to use.
type Frontend struct {
	// KeepFunctionBodies disables SkipFunctionBodies, which headers with
	// inline functions rarely need.
	KeepFunctionBodies bool
}
