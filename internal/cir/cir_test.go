package cir

import (
	"strings"
	"testing"

	"sennaar/internal/ident"
	"sennaar/internal/jsonx"
)

func TestReferencesUSRThroughNesting(t *testing.T) {
	anon := MakeRecord(true, Anonymous("c:@S@Nest@Sa"))
	other := MakeRecord(false, Anonymous("c:@S@Nest@Ua"))

	tests := []struct {
		name string
		ty   Type
		want bool
	}{
		{"direct", anon, true},
		{"pointer", MakePointer(anon), true},
		{"array of pointers", MakeArray(MakePointer(anon), 4), true},
		{"function result", MakePointer(MakeFunction(anon, nil, false)), true},
		{"function param", MakeFunction(MakePrimitive(PrimVoid), []Param{{Type: MakePointer(anon)}}, false), true},
		{"other record", MakePointer(other), false},
		{"primitive", MakePrimitive(PrimInt), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReferencesUSR(tt.ty, "c:@S@Nest@Sa"); got != tt.want {
				t.Fatalf("ReferencesUSR = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHexLiteralIsUppercase(t *testing.T) {
	tests := []struct {
		v    uint64
		want string
	}{
		{0, "0x0"},
		{5, "0x5"},
		{255, "0xFF"},
		{^uint64(0), "0xFFFFFFFFFFFFFFFF"},
	}
	for _, tt := range tests {
		e := HexLit(tt.v, "U")
		lit := e.Data.(*IntLiteral)
		if lit.Value != tt.want || lit.Suffix != "U" {
			t.Errorf("HexLit(%d) = %q%s, want %qU", tt.v, lit.Value, lit.Suffix, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	tab := ident.NewTable()
	orig := MakePointer(MakeFunction(MakePrimitive(PrimInt), []Param{{Type: MakePrimitive(PrimInt)}}, false))
	cp := orig.Clone()

	fn, _ := cp.Data.(*PointerType).Pointee.Function()
	fn.Params[0].Name = tab.MustIntern("x")

	origFn, _ := orig.Data.(*PointerType).Pointee.Function()
	if origFn.Params[0].HasName() {
		t.Fatalf("mutating the clone leaked into the original")
	}
}

func TestExprJSONCarriesKindTag(t *testing.T) {
	tab := ident.Global()
	e := Binary(BinShl,
		HexLit(1, "U"),
		Paren(Cast(Ident(tab.MustIntern("FLAG_BIT")), Ident(tab.MustIntern("unsigned int")))),
	)

	raw, err := jsonx.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	if !strings.HasPrefix(s, `{"$kind":"Binary"`) {
		t.Fatalf("tag must lead the object: %s", s)
	}
	if !strings.Contains(s, `"op":"Shl"`) || !strings.Contains(s, `"value":"0x1"`) {
		t.Fatalf("unexpected encoding: %s", s)
	}

	var back Expr
	if err := jsonx.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	bin, ok := back.Data.(*BinaryExpr)
	if !ok || bin.Op != BinShl {
		t.Fatalf("decoded %s, want Binary Shl", back.Kind)
	}
	cast := bin.Right.Data.(*ParenExpr).Expr.Data.(*CastExpr)
	if got := cast.Expr.Data.(*IdentifierExpr).Ident.Original(); got != "FLAG_BIT" {
		t.Fatalf("identifier lost: %q", got)
	}
}

func TestExprJSONRejectsUnknownKind(t *testing.T) {
	var e Expr
	if err := jsonx.Unmarshal([]byte(`{"$kind":"Lambda"}`), &e); err == nil {
		t.Fatalf("expected an error for an unknown kind")
	}
	if err := jsonx.Unmarshal([]byte(`{"value":"1"}`), &e); err == nil {
		t.Fatalf("expected an error for a missing tag")
	}
}

func TestBinaryOpTokens(t *testing.T) {
	for _, tok := range []string{"<<=", "&&", ",", "!=", "%"} {
		op, ok := BinaryOpFromToken(tok)
		if !ok || op.Token() != tok {
			t.Errorf("token %q did not round trip (got %v, %v)", tok, op, ok)
		}
	}
	if _, ok := BinaryOpFromToken("->"); ok {
		t.Errorf("-> is not a binary operator")
	}
}
