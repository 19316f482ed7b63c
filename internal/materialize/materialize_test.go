package materialize_test

import (
	"errors"
	"testing"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/mapper"
	"sennaar/internal/materialize"
	"sennaar/internal/namer"
	"sennaar/internal/registry"
	tk "sennaar/internal/testkit"
)

type unit struct {
	t   *testing.T
	tab *ident.Table
	reg *registry.Registry
}

func (u *unit) id(s string) ident.Identifier {
	u.t.Helper()
	id, ok := u.tab.Lookup(s)
	if !ok {
		u.t.Fatalf("identifier %q was never interned", s)
	}
	return id
}

func build(t *testing.T, root *tk.Node) *unit {
	t.Helper()
	tab, reg, err := tryBuild(t, root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := tk.CheckRegistryKeys(reg); err != nil {
		t.Fatalf("registry keys: %v", err)
	}
	return &unit{t: t, tab: tab, reg: reg}
}

// tryBuild maps and names root, returning the materializer's error as is.
func tryBuild(t *testing.T, root *tk.Node) (*ident.Table, *registry.Registry, error) {
	t.Helper()
	tab := ident.NewTable()
	decls, err := mapper.New(tab).MapUnit(root, mapper.UnitOptions{})
	if err != nil {
		t.Fatalf("MapUnit: %v", err)
	}
	if decls, err = namer.New(tab).Run(decls); err != nil {
		t.Fatalf("namer: %v", err)
	}
	if err := tk.CheckNoAnonymous(decls); err != nil {
		t.Fatalf("namer left anonymous records: %v", err)
	}
	reg := registry.New("test")
	return tab, reg, materialize.New(tab).Build(reg, materialize.NewDeclSet(decls))
}

func TestEndToEnd(t *testing.T) {
	// typedef struct _H* H;
	// typedef int MyInt;
	// int add(int a, int b);
	// enum Color { RED, GREEN=5, BLUE };
	fwd := tk.StructFwd("_H")
	u := build(t, tk.TU(
		tk.Typedef("H", tk.Ptr(tk.Elab(tk.RecordRef(fwd)))),
		tk.Typedef("MyInt", tk.Int()),
		tk.Function("add", tk.Int(), tk.Param("a", tk.Int()), tk.Param("b", tk.Int())),
		tk.Enum("Color", tk.Prim(mapper.TypeUInt),
			tk.EnumConst("RED", 0),
			tk.EnumConst("GREEN", 5, tk.IntLit(5, tk.Int())),
			tk.EnumConst("BLUE", 6),
		),
	))
	reg := u.reg

	if reg.Len() != 4 {
		t.Fatalf("expected 4 entities, got %d: %+v", reg.Len(), reg.Counts())
	}
	if !reg.OpaqueHandleTypedefs.Has(u.id("H")) {
		t.Fatalf("H must be an opaque handle typedef")
	}

	alias, ok := reg.Aliases.Get(u.id("MyInt"))
	if !ok || alias.Type.String() != "int" {
		t.Fatalf("MyInt must alias int, got %+v", alias)
	}

	add, ok := reg.Commands.Get(u.id("add"))
	if !ok {
		t.Fatalf("missing command add")
	}
	if add.Result.String() != "int" || len(add.Params) != 2 {
		t.Fatalf("unexpected signature %+v", add)
	}
	for i, want := range []string{"a", "b"} {
		if p := add.Params[i]; p.Name.String() != want || p.Type.String() != "int" || p.Optional {
			t.Errorf("param %d: got %s %s, want %s int", i, p.Name, p.Type, want)
		}
	}
	if len(add.SuccessCodes) != 0 || len(add.ErrorCodes) != 0 || add.AliasTo != nil {
		t.Fatalf("codes and alias target are left to later passes")
	}

	color, ok := reg.Enumerations.Get(u.id("Color"))
	if !ok || len(color.Variants) != 3 {
		t.Fatalf("unexpected enumeration %+v", color)
	}
	want := []struct {
		name     string
		value    string
		explicit bool
	}{
		{"RED", "0x0", false},
		{"GREEN", "0x5", true},
		{"BLUE", "0x6", false},
	}
	for i, w := range want {
		v := color.Variants[i]
		lit, ok := v.Value.Data.(*cir.IntLiteral)
		if v.Name.String() != w.name || !ok || lit.Value != w.value || v.Explicit != w.explicit {
			t.Errorf("variant %d: got %s=%v explicit=%v, want %s=%s explicit=%v",
				i, v.Name, v.Value.Data, v.Explicit, w.name, w.value, w.explicit)
		}
	}
}

func TestTypedefClassification(t *testing.T) {
	// struct S { int v; }; typedef struct S S; typedef struct S *SP;
	// typedef struct X X; typedef struct X *XP;
	s := tk.Struct("S", tk.Field("v", tk.Int()))
	x := tk.StructFwd("X")
	u := build(t, tk.TU(
		s,
		tk.Typedef("S", tk.Elab(tk.RecordRef(s))),
		tk.Typedef("SP", tk.Ptr(tk.Elab(tk.RecordRef(s)))),
		tk.Typedef("X", tk.Elab(tk.RecordRef(x))),
		tk.Typedef("XP", tk.Ptr(tk.Elab(tk.RecordRef(x)))),
	))
	reg := u.reg

	if a, ok := reg.Aliases.Get(u.id("S")); !ok || a.Type.String() != "S" {
		t.Fatalf("S must alias the defined struct S")
	}
	if a, ok := reg.Aliases.Get(u.id("SP")); !ok || a.Type.String() != "S*" {
		t.Fatalf("SP must alias S*")
	}
	if !reg.OpaqueTypedefs.Has(u.id("X")) {
		t.Fatalf("X must be an opaque typedef")
	}
	if !reg.OpaqueHandleTypedefs.Has(u.id("XP")) {
		t.Fatalf("XP must be an opaque handle typedef")
	}
	if st, ok := reg.Structs.Get(u.id("S")); !ok || len(st.Members) != 1 || st.Members[0].Type.String() != "int" {
		t.Fatalf("unexpected struct S %+v", st)
	}
	if reg.Structs.Has(u.id("X")) {
		t.Fatalf("a forward declaration is not a structure")
	}
}

func TestFunctionTypedefs(t *testing.T) {
	// typedef void (*G)(int x, int y);
	// typedef int Bare(int);
	// void on(G cb);
	u := build(t, tk.TU(
		tk.Typedef("G", tk.Ptr(tk.Proto(tk.Void(), tk.Int(), tk.Int())),
			tk.Param("x", tk.Int()),
			tk.Param("y", tk.Int()),
		),
		tk.Typedef("Bare", tk.Proto(tk.Int(), tk.Int())),
		tk.Function("on", tk.Void(), tk.Param("cb", tk.TypedefRef("G"))),
	))

	g, ok := u.reg.FunctionTypedefs.Get(u.id("G"))
	if !ok || !g.IsPointer || g.IsNativeAPI {
		t.Fatalf("G must be a function pointer typedef, got %+v", g)
	}
	if len(g.Params) != 2 || g.Params[0].Name.String() != "x" || g.Params[1].Name.String() != "y" {
		t.Fatalf("unexpected params %+v", g.Params)
	}
	if g.Result.String() != "void" {
		t.Fatalf("unexpected result %s", g.Result)
	}

	bare, ok := u.reg.FunctionTypedefs.Get(u.id("Bare"))
	if !ok || bare.IsPointer {
		t.Fatalf("Bare must be a non-pointer function typedef, got %+v", bare)
	}
	if len(bare.Params) != 1 || bare.Params[0].Name.String() != "param0" {
		t.Fatalf("unnamed parameter must become param0, got %+v", bare.Params)
	}

	on, ok := u.reg.Commands.Get(u.id("on"))
	if !ok || len(on.Params) != 1 || on.Params[0].Type.String() != "G" {
		t.Fatalf("a callback behind a named typedef must materialize, got %+v", on)
	}
}

func TestInlineFunctionPointersRejected(t *testing.T) {
	cb := tk.Ptr(tk.Proto(tk.Void(), tk.Int()))
	tests := []struct {
		name string
		root *tk.Node
		decl string
	}{
		{
			// typedef void (*F)(void (*g)(int x), int y);
			name: "typedef parameter",
			root: tk.TU(tk.Typedef("F", tk.Ptr(tk.Proto(tk.Void(), cb, tk.Int())),
				tk.Param("g", cb, tk.Param("x", tk.Int())),
				tk.Param("y", tk.Int()),
			)),
			decl: "F",
		},
		{
			// void on(void (*cb)(int));
			name: "command parameter",
			root: tk.TU(tk.Function("on", tk.Void(), tk.Param("cb", cb))),
			decl: "on",
		},
		{
			// struct S { void (*fn)(int); };
			name: "struct member",
			root: tk.TU(tk.Struct("S", tk.Field("fn", cb))),
			decl: "S",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reg, err := tryBuild(t, tt.root)
			var ce *materialize.ConsistencyError
			if !errors.As(err, &ce) {
				t.Fatalf("expected a consistency error, got %v", err)
			}
			if ce.Kind != materialize.ErrFunctionType {
				t.Fatalf("kind = %v, want ErrFunctionType", ce.Kind)
			}
			if ce.Decl != tt.decl {
				t.Fatalf("decl = %q, want %q", ce.Decl, tt.decl)
			}
			if reg.Len() != 0 {
				t.Fatalf("nothing may be committed from a rejected unit")
			}
		})
	}
}

func TestNamedAnonymousRecords(t *testing.T) {
	// typedef struct { int x; } P;
	// union U { struct { int a; } s; float f; };
	anonP := tk.AnonStruct("c:@SA@P", tk.Field("x", tk.Int()))
	anonS := tk.AnonStruct("c:@U@U@Sa", tk.Field("a", tk.Int()))
	u := build(t, tk.TU(
		anonP,
		tk.Typedef("P", tk.Elab(tk.RecordRef(anonP))),
		tk.Union("U",
			anonS,
			tk.Field("s", tk.Elab(tk.RecordRef(anonS))),
			tk.Field("f", tk.Prim(mapper.TypeFloat)),
		),
	))
	reg := u.reg

	if !reg.Structs.Has(u.id("struct_de_typedef_P")) {
		t.Fatalf("typedef'd anonymous struct must be named after the typedef: %v", reg.Structs.Keys())
	}
	if a, ok := reg.Aliases.Get(u.id("P")); !ok || a.Type.String() != "struct_de_typedef_P" {
		t.Fatalf("P must alias the synthesized struct")
	}
	un, ok := reg.Unions.Get(u.id("U"))
	if !ok || len(un.Members) != 2 {
		t.Fatalf("unexpected union %+v", un)
	}
	if got := un.Members[0].Type.String(); got != "struct_de_union_U_de_field_s" {
		t.Fatalf("member s has type %s", got)
	}
	if un.Members[1].Type.String() != "float" {
		t.Fatalf("member f has type %s", un.Members[1].Type)
	}
	if !reg.Structs.Has(u.id("struct_de_union_U_de_field_s")) {
		t.Fatalf("nested struct must be materialized: %v", reg.Structs.Keys())
	}
}

func TestConstants(t *testing.T) {
	// enum { A = 1, B };
	// static const int LIMIT = 10;
	// int counter;
	u := build(t, tk.TU(
		tk.AnonEnum("c:@Ea@A", tk.Int(),
			tk.EnumConst("A", 1, tk.IntLit(1, tk.Int())),
			tk.EnumConst("B", 2),
		),
		tk.Var("LIMIT", tk.Const(tk.Int()), tk.IntLit(10, tk.Int())),
		tk.Var("counter", tk.Int(), nil),
	))
	reg := u.reg

	if reg.Enumerations.Len() != 0 {
		t.Fatalf("an anonymous enum is not an enumeration")
	}
	if reg.Constants.Len() != 3 {
		t.Fatalf("expected A, B and LIMIT, got %v", reg.Constants.Keys())
	}
	for name, want := range map[string]string{"A": "0x1", "B": "0x2", "LIMIT": "0xA"} {
		c, ok := reg.Constants.Get(u.id(name))
		if !ok {
			t.Fatalf("missing constant %s", name)
		}
		lit, ok := c.Expr.Data.(*cir.IntLiteral)
		if !ok || lit.Value != want || c.Type.String() != "int" {
			t.Errorf("%s: got %s %+v, want int %s", name, c.Type, c.Expr.Data, want)
		}
	}
	if reg.Constants.Has(u.id("counter")) {
		t.Fatalf("a non-const variable is not a constant")
	}
}

func TestConvertType(t *testing.T) {
	tab := ident.NewTable()
	m := materialize.New(tab)
	s := tab.MustIntern("S")
	tests := []struct {
		name string
		in   cir.Type
		want string
		chk  func(t *testing.T, got registry.Type)
	}{
		{"primitive", cir.MakePrimitive(cir.PrimULongLong), "unsigned long long", nil},
		{"record", cir.MakeRecord(true, cir.Named(s)), "S", nil},
		{"pointer to const", cir.MakePointer(cir.MakePrimitive(cir.PrimChar).WithConst(true)), "const char*", func(t *testing.T, got registry.Type) {
			p, _ := got.Pointer()
			if !p.IsConst || p.Nullable || p.PointerToOne {
				t.Fatalf("unexpected pointer flags %+v", p)
			}
		}},
		{"array", cir.MakeArray(cir.MakePrimitive(cir.PrimInt), 16).WithConst(true), "int[0x10]", func(t *testing.T, got registry.Type) {
			a, _ := got.Array()
			if !a.IsConst {
				t.Fatalf("array const flag lost")
			}
		}},
		{"incomplete array", cir.MakeIncompleteArray(cir.MakePrimitive(cir.PrimInt)), "int[]", nil},
		{"typedef", cir.MakeTypedef(tab.MustIntern("size_t")), "size_t", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ConvertType(tt.in)
			if err != nil {
				t.Fatalf("ConvertType: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
			if tt.chk != nil {
				tt.chk(t, got)
			}
		})
	}
}

func TestConsistencyErrors(t *testing.T) {
	tab := ident.NewTable()
	at := cir.Location{File: "x.h", Line: 3, Column: 1}
	fwd := cir.NewRecord(at, &cir.RecordDecl{IsStruct: true, Name: cir.Named(tab.MustIntern("Fwd"))})
	anon := cir.NewRecord(at, &cir.RecordDecl{IsStruct: true, Name: cir.Anonymous("c:@Sa"), IsDefinition: true})
	proto := cir.MakeFunction(cir.MakePrimitive(cir.PrimVoid), nil, false)

	tests := []struct {
		name string
		decl cir.Decl
		set  []cir.Decl
		want materialize.ConsistencyErrorKind
	}{
		{"forward record", fwd, nil, materialize.ErrRecordNotDefined},
		{"anonymous record", anon, nil, materialize.ErrAnonymousRecord},
		{
			"unresolved typedef target",
			cir.NewTypedef(at, tab.MustIntern("T"), cir.MakePointer(cir.MakeRecord(true, cir.Named(tab.MustIntern("Missing"))))),
			nil,
			materialize.ErrUnresolvedRecord,
		},
		{
			"typedef resolves to a non-record",
			cir.NewTypedef(at, tab.MustIntern("T2"), cir.MakeRecord(true, cir.Named(tab.MustIntern("Other")))),
			[]cir.Decl{cir.NewTypedef(at, tab.MustIntern("Other"), cir.MakePrimitive(cir.PrimInt))},
			materialize.ErrUnresolvedRecord,
		},
		{
			"anonymous typedef target",
			cir.NewTypedef(at, tab.MustIntern("T3"), cir.MakeRecord(false, cir.Anonymous("c:@Ua"))),
			nil,
			materialize.ErrAnonymousRecord,
		},
		{
			"function type in a field",
			cir.NewRecord(at, &cir.RecordDecl{
				IsStruct:     true,
				Name:         cir.Named(tab.MustIntern("R")),
				IsDefinition: true,
				Fields:       []cir.FieldDecl{{Name: tab.MustIntern("f"), Type: proto}},
			}),
			nil,
			materialize.ErrFunctionType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New("err")
			err := materialize.New(tab).Materialize(reg, tt.decl, materialize.NewDeclSet(tt.set))
			var ce *materialize.ConsistencyError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConsistencyError, got %v", err)
			}
			if ce.Kind != tt.want {
				t.Fatalf("got kind %s, want %s", ce.Kind, tt.want)
			}
			if ce.Decl == "" {
				t.Fatalf("error must name the declaration")
			}
			if reg.Len() != 0 {
				t.Fatalf("a failed declaration must not add entities")
			}
		})
	}
}

func TestBuildReportsAnonymousRecords(t *testing.T) {
	tab := ident.NewTable()
	decls := []cir.Decl{
		cir.NewRecord(cir.Location{}, &cir.RecordDecl{IsStruct: true, Name: cir.Anonymous("c:@Sa"), IsDefinition: true}),
	}
	err := materialize.New(tab).Build(registry.New("x"), materialize.NewDeclSet(decls))
	var ce *materialize.ConsistencyError
	if !errors.As(err, &ce) || ce.Kind != materialize.ErrAnonymousRecord {
		t.Fatalf("an unnamed record must not be silently dropped, got %v", err)
	}
}
