package namer

import (
	"fmt"
	"strings"
)

// ConsistencyErrorKind enumerates namer failures. Both indicate malformed
// input or a pipeline bug and must not be skipped.
type ConsistencyErrorKind uint8

const (
	// ErrMissingUsage: an anonymous record is referenced but no usage was recorded.
	ErrMissingUsage ConsistencyErrorKind = iota + 1
	// ErrCyclicAnonymousRecord: resolving a name reached the same record again.
	ErrCyclicAnonymousRecord
	// ErrNameConflict: a synthesized name could not be interned.
	ErrNameConflict
)

// ConsistencyError reports an anonymous record the namer could not name.
type ConsistencyError struct {
	Kind  ConsistencyErrorKind
	USR   string
	Cycle []string // for ErrCyclicAnonymousRecord
	Err   error
}

func (e *ConsistencyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrMissingUsage:
		return fmt.Sprintf("no usage recorded for anonymous record %s", e.USR)
	case ErrCyclicAnonymousRecord:
		return fmt.Sprintf("cyclic anonymous record %s (cycle: %s)", e.USR, strings.Join(e.Cycle, " -> "))
	case ErrNameConflict:
		return fmt.Sprintf("cannot name anonymous record %s: %v", e.USR, e.Err)
	default:
		return fmt.Sprintf("namer error kind=%d usr=%s", e.Kind, e.USR)
	}
}

func (e *ConsistencyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
