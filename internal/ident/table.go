package ident

import (
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// Separator splits the original text from the rename in the encoded form.
// Original text never contains it, so decoding is unambiguous.
const Separator = ':'

type slot struct {
	original string
	renamed  string
	hasName  bool
}

// Table is an intern table for identifier text. It is safe for concurrent use:
// translation units mapped in parallel share one table.
type Table struct {
	mu    sync.RWMutex
	epoch uint32
	slots []slot            // slot -> text (slots[0] reserved for the zero Identifier)
	index map[string]uint32 // original text -> slot
}

// NewTable returns an empty table.
func NewTable() *Table {
	t := &Table{}
	t.clear()
	return t
}

var global = NewTable()

// Global returns the process-wide table. Decoding identifiers from text
// (UnmarshalText, registry documents) interns into it.
func Global() *Table {
	return global
}

func (t *Table) clear() {
	t.slots = []slot{{}}
	t.index = make(map[string]uint32, 256)
}

// Intern returns the identifier for text, creating it on first use.
func (t *Table) Intern(text string) (Identifier, error) {
	if strings.IndexByte(text, Separator) >= 0 {
		return Identifier{}, fmt.Errorf("%w: %q", ErrReservedSeparator, text)
	}

	t.mu.RLock()
	if n, ok := t.index[text]; ok {
		id := Identifier{tab: t, slot: n, epoch: t.epoch}
		t.mu.RUnlock()
		return id, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// another goroutine may have won the race between the locks
	if n, ok := t.index[text]; ok {
		return Identifier{tab: t, slot: n, epoch: t.epoch}, nil
	}
	n, err := safecast.Conv[uint32](len(t.slots))
	if err != nil {
		panic(fmt.Errorf("len(slots) overflow: %w", err))
	}
	own := strings.Clone(text)
	t.slots = append(t.slots, slot{original: own})
	t.index[own] = n
	return Identifier{tab: t, slot: n, epoch: t.epoch}, nil
}

// MustIntern is Intern for text known to be valid (literals, generated names).
func (t *Table) MustIntern(text string) Identifier {
	id, err := t.Intern(text)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup returns the identifier for text without creating it.
func (t *Table) Lookup(text string) (Identifier, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.index[text]
	if !ok {
		return Identifier{}, false
	}
	return Identifier{tab: t, slot: n, epoch: t.epoch}, true
}

// Len reports the number of interned texts, excluding the reserved slot.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots) - 1
}

// Reset drops every interned text. Identifiers issued before the reset are
// stale afterwards: reading them panics and renaming them fails with ErrStale.
// Intended for test isolation only.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	t.clear()
}

// Snapshot returns all identifiers in slot order.
func (t *Table) Snapshot() []Identifier {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Identifier, 0, len(t.slots)-1)
	for n := 1; n < len(t.slots); n++ {
		idx, err := safecast.Conv[uint32](n)
		if err != nil {
			panic(fmt.Errorf("slot %d overflow: %w", n, err))
		}
		out = append(out, Identifier{tab: t, slot: idx, epoch: t.epoch})
	}
	return out
}

func (t *Table) read(id Identifier) (slot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id.epoch != t.epoch {
		return slot{}, ErrStale
	}
	if id.slot == 0 || int(id.slot) >= len(t.slots) {
		return slot{}, fmt.Errorf("ident: invalid slot %d", id.slot)
	}
	return t.slots[id.slot], nil
}

func (t *Table) rename(id Identifier, text string) error {
	if strings.IndexByte(text, Separator) >= 0 {
		return fmt.Errorf("%w: %q", ErrReservedSeparator, text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if id.epoch != t.epoch {
		return ErrStale
	}
	if id.slot == 0 || int(id.slot) >= len(t.slots) {
		return fmt.Errorf("ident: invalid slot %d", id.slot)
	}
	s := &t.slots[id.slot]
	if s.hasName {
		if s.renamed == text {
			return nil
		}
		return &RenameConflictError{Original: s.original, Current: s.renamed, Requested: text}
	}
	s.renamed = strings.Clone(text)
	s.hasName = true
	return nil
}

// Decode parses the encoded form produced by Identifier.Encode, replaying
// Intern and TryRename against this table.
func (t *Table) Decode(encoded string) (Identifier, error) {
	original, renamed, hasName := strings.Cut(encoded, string(Separator))
	id, err := t.Intern(original)
	if err != nil {
		return Identifier{}, err
	}
	if hasName {
		if err := id.TryRename(renamed); err != nil {
			return Identifier{}, err
		}
	}
	return id, nil
}
