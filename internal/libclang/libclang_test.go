//go:build libclang

package libclang_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sennaar/internal/diag"
	"sennaar/internal/ident"
	"sennaar/internal/libclang"
	"sennaar/internal/mapper"
	"sennaar/internal/pipeline"
	tk "sennaar/internal/testkit"
)

const demoHeader = `
#define DEMO_VERSION 3
typedef struct _H* H;
typedef int MyInt;
int add(int a, int b);
enum Color { RED, GREEN = 5, BLUE };
struct Outer {
	struct { int x; } inner;
	unsigned flags : 3;
	int : 0;
};
static const int LIMIT = 1 << 4;
typedef void (*Callback)(void *user, int code);
`

func writeHeader(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.h")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAndBuild(t *testing.T) {
	header := writeHeader(t, demoHeader)
	fe := &libclang.Frontend{}
	root, dispose, err := fe.Parse(context.Background(), header, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer dispose()
	if root.Kind() != mapper.CursorTranslationUnit {
		t.Fatalf("root kind = %s", root.Kind())
	}

	tab := ident.NewTable()
	bag := diag.NewBag(0)
	reg, err := pipeline.BuildUnit(context.Background(), tab, "demo", root, pipeline.UnitOptions{SkipSystemHeaders: true}, bag)
	if err != nil {
		t.Fatalf("BuildUnit: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if err := tk.CheckRegistryKeys(reg); err != nil {
		t.Fatal(err)
	}

	id := func(s string) ident.Identifier {
		t.Helper()
		v, ok := tab.Lookup(s)
		if !ok {
			t.Fatalf("%q was never interned", s)
		}
		return v
	}
	if !reg.OpaqueHandleTypedefs.Has(id("H")) {
		t.Errorf("H must be an opaque handle")
	}
	if a, ok := reg.Aliases.Get(id("MyInt")); !ok || a.Type.String() != "int" {
		t.Errorf("MyInt must alias int")
	}
	if c, ok := reg.Commands.Get(id("add")); !ok || len(c.Params) != 2 {
		t.Errorf("add must be a two-parameter command")
	}
	color, ok := reg.Enumerations.Get(id("Color"))
	if !ok || len(color.Variants) != 3 || !color.Variants[1].Explicit || color.Variants[2].Explicit {
		t.Errorf("unexpected Color: %+v", color)
	}
	if ft, ok := reg.FunctionTypedefs.Get(id("Callback")); !ok || !ft.IsPointer || len(ft.Params) != 2 {
		t.Errorf("Callback must be a function pointer typedef")
	}
	if !reg.Constants.Has(id("LIMIT")) {
		t.Errorf("LIMIT must be a constant")
	}
	if reg.Structs.Len() != 2 {
		t.Errorf("expected Outer and its named field record, got %d structs", reg.Structs.Len())
	}
	outer, ok := reg.Structs.Get(id("Outer"))
	if !ok || len(outer.Members) != 2 {
		t.Errorf("Outer must keep inner and flags, got %+v", outer)
	}
}

func TestParseError(t *testing.T) {
	header := writeHeader(t, "int broken = ;\n")
	_, _, err := (&libclang.Frontend{}).Parse(context.Background(), header, nil)
	var perr *libclang.ParseError
	if !errors.As(err, &perr) || len(perr.Messages) == 0 {
		t.Fatalf("expected a ParseError with messages, got %v", err)
	}
}

func TestParseHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := (&libclang.Frontend{}).Parse(ctx, "unused.h", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
