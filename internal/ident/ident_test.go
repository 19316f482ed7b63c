package ident

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInternEquality(t *testing.T) {
	tab := NewTable()

	a1 := tab.MustIntern("VkInstance")
	a2 := tab.MustIntern("VkInstance")
	b := tab.MustIntern("VkDevice")

	if a1 != a2 {
		t.Fatalf("same text must intern to equal handles: %v != %v", a1, a2)
	}
	if a1 == b {
		t.Fatalf("different texts must intern to different handles")
	}
	if tab.Len() != 2 {
		t.Fatalf("expected 2 interned texts, got %d", tab.Len())
	}
	if a1.Original() != "VkInstance" {
		t.Fatalf("unexpected original %q", a1.Original())
	}
}

func TestInternRejectsSeparator(t *testing.T) {
	tab := NewTable()
	if _, err := tab.Intern("a:b"); !errors.Is(err, ErrReservedSeparator) {
		t.Fatalf("expected ErrReservedSeparator, got %v", err)
	}
	if tab.Len() != 0 {
		t.Fatalf("rejected text must not be interned")
	}
}

func TestRenameSemantics(t *testing.T) {
	tab := NewTable()
	id := tab.MustIntern("_anon")

	if _, ok := id.Renamed(); ok {
		t.Fatalf("fresh identifier must not have a rename")
	}
	if err := id.TryRename("Point"); err != nil {
		t.Fatalf("first rename: %v", err)
	}
	if err := id.TryRename("Point"); err != nil {
		t.Fatalf("repeating the same rename must be a no-op, got %v", err)
	}

	err := id.TryRename("Vector")
	var conflict *RenameConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *RenameConflictError, got %v", err)
	}
	if conflict.Current != "Point" || conflict.Requested != "Vector" || conflict.Original != "_anon" {
		t.Fatalf("conflict must name both values: %+v", conflict)
	}

	if id.Original() != "_anon" {
		t.Fatalf("original text changed: %q", id.Original())
	}
	if id.String() != "Point" {
		t.Fatalf("display must prefer the rename, got %q", id.String())
	}
	// renaming never changes the lookup key
	if got, ok := tab.Lookup("_anon"); !ok || got != id {
		t.Fatalf("lookup by original failed")
	}
	if _, ok := tab.Lookup("Point"); ok {
		t.Fatalf("rename must not become a lookup key")
	}
	if err := id.TryRename("x:y"); !errors.Is(err, ErrReservedSeparator) {
		t.Fatalf("rename with separator: expected ErrReservedSeparator, got %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := NewTable()
	plain := src.MustIntern("uint32_t")
	renamed := src.MustIntern("struct_de_var_g")
	if err := renamed.TryRename("GlobalState"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id      Identifier
		encoded string
	}{
		{plain, "uint32_t"},
		{renamed, "struct_de_var_g:GlobalState"},
	}

	dst := NewTable()
	for _, tt := range tests {
		if got := tt.id.Encode(); got != tt.encoded {
			t.Fatalf("Encode() = %q, want %q", got, tt.encoded)
		}
		back, err := dst.Decode(tt.id.Encode())
		if err != nil {
			t.Fatalf("Decode(%q): %v", tt.encoded, err)
		}
		if back.Original() != tt.id.Original() {
			t.Errorf("original lost: %q != %q", back.Original(), tt.id.Original())
		}
		gotName, gotOK := back.Renamed()
		wantName, wantOK := tt.id.Renamed()
		if gotName != wantName || gotOK != wantOK {
			t.Errorf("rename state lost for %q: (%q,%v) != (%q,%v)", tt.encoded, gotName, gotOK, wantName, wantOK)
		}
	}
}

func TestDecodeSurfacesConflict(t *testing.T) {
	tab := NewTable()
	id := tab.MustIntern("Foo")
	if err := id.TryRename("Bar"); err != nil {
		t.Fatal(err)
	}
	var conflict *RenameConflictError
	if _, err := tab.Decode("Foo:Baz"); !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := tab.Decode("Foo:Bar"); err != nil {
		t.Fatalf("agreeing rename must decode: %v", err)
	}
}

func TestDecodeSplitsOnFirstSeparator(t *testing.T) {
	tab := NewTable()
	if _, err := tab.Decode("a:b:c"); !errors.Is(err, ErrReservedSeparator) {
		t.Fatalf("rename part with a separator must be rejected, got %v", err)
	}
}

func TestOrderingByOriginal(t *testing.T) {
	tab := NewTable()
	c := tab.MustIntern("c")
	a := tab.MustIntern("a")
	b := tab.MustIntern("b")
	if err := a.TryRename("zzz"); err != nil {
		t.Fatal(err)
	}

	ids := []Identifier{c, b, a}
	Sort(ids)
	if ids[0] != a || ids[1] != b || ids[2] != c {
		t.Fatalf("expected order a,b,c by original text, got %v", ids)
	}
}

func TestTextMarshalUsesGlobal(t *testing.T) {
	id := Global().MustIntern("text_marshal_sample")
	raw, err := id.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Identifier
	if err := back.UnmarshalText(raw); err != nil {
		t.Fatal(err)
	}
	if back != id {
		t.Fatalf("round trip through Global() must yield the same handle")
	}
}

func TestResetMakesHandlesStale(t *testing.T) {
	tab := NewTable()
	id := tab.MustIntern("old")
	tab.Reset()

	if tab.Len() != 0 {
		t.Fatalf("reset must clear the table")
	}
	if err := id.TryRename("new"); !errors.Is(err, ErrStale) {
		t.Fatalf("rename of stale handle: expected ErrStale, got %v", err)
	}
	fresh := tab.MustIntern("old")
	if fresh == id {
		t.Fatalf("handle from a previous epoch must not equal a fresh one")
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("reading a stale handle must panic")
		}
	}()
	_ = id.Original()
}

func TestZeroIdentifier(t *testing.T) {
	var id Identifier
	if !id.IsZero() {
		t.Fatalf("zero value must report IsZero")
	}
	if id.String() != "" || id.Original() != "" {
		t.Fatalf("zero identifier must read as empty text")
	}
	raw, err := id.MarshalText()
	if err != nil || len(raw) != 0 {
		t.Fatalf("zero identifier must marshal to empty text, got %q, %v", raw, err)
	}
	back := Global().MustIntern("zero_overwrite")
	before := Global().Len()
	if err := back.UnmarshalText(raw); err != nil {
		t.Fatal(err)
	}
	if !back.IsZero() {
		t.Fatalf("empty text must decode to the zero identifier, got %q", back.Original())
	}
	if Global().Len() != before {
		t.Fatalf("decoding empty text must not intern anything")
	}
}

func TestSnapshotOrder(t *testing.T) {
	tab := NewTable()
	want := []string{"b", "a", "c"}
	for _, s := range want {
		tab.MustIntern(s)
	}
	snap := tab.Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("snapshot has %d entries, want %d", len(snap), len(want))
	}
	for i, id := range snap {
		if id.Original() != want[i] {
			t.Errorf("slot %d: got %q, want %q", i+1, id.Original(), want[i])
		}
		if again := tab.MustIntern(want[i]); again != id {
			t.Errorf("slot %d: snapshot handle differs from interned handle", i+1)
		}
	}
}

func TestConcurrentInternAndRename(t *testing.T) {
	tab := NewTable()
	const workers = 64
	const names = 500

	var wg sync.WaitGroup
	wg.Add(workers)
	errs := make(chan error, workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			for i := range names {
				id, err := tab.Intern(fmt.Sprintf("name_%d", i))
				if err != nil {
					errs <- err
					return
				}
				// every worker agrees on the rename, so none may conflict
				if i%7 == 0 {
					if err := id.TryRename(fmt.Sprintf("Renamed%d", i)); err != nil {
						errs <- fmt.Errorf("worker %d: %w", w, err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	if tab.Len() != names {
		t.Fatalf("expected %d identifiers, got %d", names, tab.Len())
	}
	seen := make(map[Identifier]bool)
	for _, id := range tab.Snapshot() {
		if seen[id] {
			t.Fatalf("duplicate handle %v", id)
		}
		seen[id] = true
	}
}
