package materialize

import (
	"fmt"
)

// ConsistencyErrorKind enumerates materializer failures. Each means the
// input was malformed or an earlier pass did not run.
type ConsistencyErrorKind uint8

const (
	// ErrUnresolvedRecord: a typedef names a record the resolver does not know.
	ErrUnresolvedRecord ConsistencyErrorKind = iota + 1
	// ErrAnonymousRecord: an anonymous record reached the registry.
	ErrAnonymousRecord
	// ErrFunctionType: a function prototype, possibly behind a pointer, reached type conversion.
	ErrFunctionType
	// ErrRecordNotDefined: a record declaration without a body was materialized.
	ErrRecordNotDefined
)

func (k ConsistencyErrorKind) String() string {
	switch k {
	case ErrUnresolvedRecord:
		return "unresolved record"
	case ErrAnonymousRecord:
		return "anonymous record"
	case ErrFunctionType:
		return "function type"
	case ErrRecordNotDefined:
		return "record not defined"
	default:
		return "unknown"
	}
}

// ConsistencyError reports a declaration that cannot become a registry
// entity.
type ConsistencyError struct {
	Kind ConsistencyErrorKind
	Name string // record, typedef or usr involved
	Decl string // enclosing declaration, if known
}

func (e *ConsistencyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	switch e.Kind {
	case ErrUnresolvedRecord:
		msg = fmt.Sprintf("cannot resolve record %s", e.Name)
	case ErrAnonymousRecord:
		msg = fmt.Sprintf("anonymous record %s was not named before materialization", e.Name)
	case ErrFunctionType:
		msg = fmt.Sprintf("function prototype %s cannot be converted to a registry type", e.Name)
	case ErrRecordNotDefined:
		msg = fmt.Sprintf("record %s is only declared, not defined", e.Name)
	default:
		msg = fmt.Sprintf("materialize error kind=%d name=%s", e.Kind, e.Name)
	}
	if e.Decl != "" && e.Decl != e.Name {
		return e.Decl + ": " + msg
	}
	return msg
}
