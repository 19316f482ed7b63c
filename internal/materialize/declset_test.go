package materialize

import (
	"testing"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
)

func TestDeclSetDedupe(t *testing.T) {
	tab := ident.NewTable()
	s := tab.MustIntern("S")
	at := cir.Location{}
	fwd := func() cir.Decl {
		return cir.NewRecord(at, &cir.RecordDecl{IsStruct: true, Name: cir.Named(s)})
	}
	def := cir.NewRecord(at, &cir.RecordDecl{
		IsStruct:     true,
		Name:         cir.Named(s),
		IsDefinition: true,
		Fields:       []cir.FieldDecl{{Name: tab.MustIntern("v"), Type: cir.MakePrimitive(cir.PrimInt)}},
	})
	alias := cir.NewTypedef(at, s, cir.MakeRecord(true, cir.Named(s)))
	fn := cir.NewFunction(at, tab.MustIntern("f"), cir.MakePrimitive(cir.PrimVoid), nil, false)
	anonEnum := func() cir.Decl {
		return cir.NewEnum(at, &cir.EnumDecl{Anonymous: true, Type: cir.MakePrimitive(cir.PrimInt)})
	}

	set := NewDeclSet([]cir.Decl{fwd(), fn, alias, def, fwd(), fn, anonEnum(), anonEnum()})

	if set.Len() != 5 {
		t.Fatalf("expected S, f, typedef S and two anonymous enums, got %d", set.Len())
	}
	first, ok := set.Decls()[0].Record()
	if !ok || !first.IsDefinition || len(first.Fields) != 1 {
		t.Fatalf("the definition must replace the forward declaration in place: %+v", first)
	}

	d, ok := set.Resolve(s)
	if !ok || d.Kind != cir.DeclRecord {
		t.Fatalf("records resolve before typedefs")
	}
	if _, ok := set.Resolve(tab.MustIntern("f")); ok {
		t.Fatalf("functions are not resolvable")
	}

	var kinds []cir.DeclKind
	for _, d := range set.Ordered() {
		kinds = append(kinds, d.Kind)
	}
	want := []cir.DeclKind{cir.DeclTypedef, cir.DeclRecord, cir.DeclFunction, cir.DeclEnum, cir.DeclEnum}
	if len(kinds) != len(want) {
		t.Fatalf("ordered kinds %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("ordered kinds %v, want %v", kinds, want)
		}
	}
}

func TestDeclSetKeepsForwardOnlyForResolve(t *testing.T) {
	tab := ident.NewTable()
	h := tab.MustIntern("_H")
	set := NewDeclSet([]cir.Decl{
		cir.NewRecord(cir.Location{}, &cir.RecordDecl{IsStruct: true, Name: cir.Named(h)}),
	})
	if len(set.Ordered()) != 0 {
		t.Fatalf("forward declarations are not materialized")
	}
	d, ok := set.Resolve(h)
	if !ok {
		t.Fatalf("forward declaration must stay resolvable")
	}
	if rec, _ := d.Record(); rec.IsDefinition {
		t.Fatalf("unexpected definition")
	}
	if set.Add(cir.NewRecord(cir.Location{}, &cir.RecordDecl{IsStruct: true, Name: cir.Named(h)})) {
		t.Fatalf("a second forward declaration must be dropped")
	}
}
