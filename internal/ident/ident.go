// Package ident interns C identifier text and tracks an optional one-time
// rename per identifier.
//
// Identity is the intern slot: two identifiers are equal (==) iff they were
// interned from the same text in the same table and epoch. Ordering is by the
// original text. The encoded form is "original" or "original:renamed".
package ident

import (
	"slices"
	"strings"
)

// Identifier is a handle into a Table. The zero value is "no identifier".
type Identifier struct {
	tab   *Table
	slot  uint32
	epoch uint32
}

// IsZero reports whether id is the zero value.
func (id Identifier) IsZero() bool {
	return id.tab == nil
}

func (id Identifier) mustRead() slot {
	if id.tab == nil {
		return slot{}
	}
	s, err := id.tab.read(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Original returns the text the identifier was interned from.
func (id Identifier) Original() string {
	return id.mustRead().original
}

// Renamed returns the rename, if one was set.
func (id Identifier) Renamed() (string, bool) {
	s := id.mustRead()
	return s.renamed, s.hasName
}

// String returns the display text: the rename if set, else the original.
func (id Identifier) String() string {
	s := id.mustRead()
	if s.hasName {
		return s.renamed
	}
	return s.original
}

// TryRename sets the rename. Setting the same rename twice is a no-op;
// a different one fails with *RenameConflictError.
func (id Identifier) TryRename(text string) error {
	if id.tab == nil {
		return ErrStale
	}
	return id.tab.rename(id, text)
}

// Encode returns "original" or "original:renamed".
func (id Identifier) Encode() string {
	s := id.mustRead()
	if !s.hasName {
		return s.original
	}
	var b strings.Builder
	b.Grow(len(s.original) + 1 + len(s.renamed))
	b.WriteString(s.original)
	b.WriteByte(Separator)
	b.WriteString(s.renamed)
	return b.String()
}

// Compare orders identifiers by original text.
func (id Identifier) Compare(other Identifier) int {
	return strings.Compare(id.Original(), other.Original())
}

// Sort orders ids by original text.
func Sort(ids []Identifier) {
	slices.SortFunc(ids, Identifier.Compare)
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	if id.tab == nil {
		return []byte{}, nil
	}
	s, err := id.tab.read(id)
	if err != nil {
		return nil, err
	}
	if !s.hasName {
		return []byte(s.original), nil
	}
	return []byte(s.original + string(Separator) + s.renamed), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, decoding into Global().
// Empty text decodes to the zero Identifier.
func (id *Identifier) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = Identifier{}
		return nil
	}
	decoded, err := Global().Decode(string(text))
	if err != nil {
		return err
	}
	*id = decoded
	return nil
}
