package cir

import (
	"sennaar/internal/ident"
)

// RecordName names a struct or union: either by identifier or, for
// anonymous records not yet processed by the namer, by USR.
// RecordName is comparable and usable as a map key.
type RecordName struct {
	anonymous bool
	name      ident.Identifier
	usr       string
}

// Named returns a RecordName for a named record.
func Named(name ident.Identifier) RecordName {
	return RecordName{name: name}
}

// Anonymous returns a RecordName for an anonymous record identified by usr.
func Anonymous(usr string) RecordName {
	return RecordName{anonymous: true, usr: usr}
}

// IsAnonymous reports whether the record still awaits a synthesized name.
func (n RecordName) IsAnonymous() bool {
	return n.anonymous
}

// Ident returns the identifier of a named record.
func (n RecordName) Ident() (ident.Identifier, bool) {
	if n.anonymous {
		return ident.Identifier{}, false
	}
	return n.name, true
}

// USR returns the USR of an anonymous record.
func (n RecordName) USR() (string, bool) {
	if !n.anonymous {
		return "", false
	}
	return n.usr, true
}

func (n RecordName) String() string {
	if n.anonymous {
		return "<anonymous " + n.usr + ">"
	}
	return n.name.String()
}
