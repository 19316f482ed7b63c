package mapper

import (
	"fmt"

	"sennaar/internal/cir"
)

// MappingErrorKind enumerates mapping failures.
type MappingErrorKind uint8

const (
	// ErrUnexpectedCursorKind: a cursor of a different kind was expected here.
	ErrUnexpectedCursorKind MappingErrorKind = iota + 1
	// ErrUnsupportedConstruct: a declaration, type or expression the mapper does not model.
	ErrUnsupportedConstruct
	// ErrTextDecode: a name or spelling is not valid UTF-8 or is not a valid identifier.
	ErrTextDecode
	// ErrLiteralEval: the front end could not evaluate a literal.
	ErrLiteralEval
)

func (k MappingErrorKind) String() string {
	switch k {
	case ErrUnexpectedCursorKind:
		return "unexpected cursor kind"
	case ErrUnsupportedConstruct:
		return "unsupported construct"
	case ErrTextDecode:
		return "text decode error"
	case ErrLiteralEval:
		return "literal evaluation error"
	default:
		return "mapping error"
	}
}

// MappingError aborts the mapping of one cursor. It carries the cursor kind
// and location so the driver can report it and decide to skip or abort.
type MappingError struct {
	Kind     MappingErrorKind
	Cursor   CursorKind
	Expected CursorKind // for ErrUnexpectedCursorKind
	Loc      cir.Location
	Detail   string
	Err      error
}

func (e *MappingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	switch e.Kind {
	case ErrUnexpectedCursorKind:
		msg = fmt.Sprintf("expected %s, got %s", e.Expected, e.Cursor)
	case ErrUnsupportedConstruct:
		msg = fmt.Sprintf("unsupported %s", e.Cursor)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
	case ErrTextDecode:
		msg = fmt.Sprintf("cannot decode text of %s: %s", e.Cursor, e.Detail)
	case ErrLiteralEval:
		msg = fmt.Sprintf("cannot evaluate %s", e.Cursor)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
	default:
		msg = fmt.Sprintf("mapping error kind=%d on %s", e.Kind, e.Cursor)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return e.Loc.String() + ": " + msg
}

func (e *MappingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func unexpected(c Cursor, expected CursorKind) *MappingError {
	return &MappingError{Kind: ErrUnexpectedCursorKind, Cursor: c.Kind(), Expected: expected, Loc: c.Location()}
}

func unsupported(c Cursor, detail string) *MappingError {
	return &MappingError{Kind: ErrUnsupportedConstruct, Cursor: c.Kind(), Loc: c.Location(), Detail: detail}
}
