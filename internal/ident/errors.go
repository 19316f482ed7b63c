package ident

import (
	"errors"
	"fmt"
)

var (
	// ErrReservedSeparator reports text containing Separator.
	ErrReservedSeparator = errors.New("identifier contains reserved separator ':'")
	// ErrStale reports an identifier issued before the table was reset.
	ErrStale = errors.New("identifier belongs to a reset table")
)

// RenameConflictError is returned when an identifier already carries a
// different rename than the one requested.
type RenameConflictError struct {
	Original  string
	Current   string
	Requested string
}

func (e *RenameConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("identifier %q is already renamed to %q, cannot rename to %q", e.Original, e.Current, e.Requested)
}
