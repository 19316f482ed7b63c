//go:build libclang

package libclang

import (
	"fortio.org/safecast"
	"github.com/go-clang/clang-v13/clang"

	"sennaar/internal/cir"
	"sennaar/internal/mapper"
)

// cursor adapts a libclang cursor. tu is needed for tokenization.
type cursor struct {
	c  clang.Cursor
	tu clang.TranslationUnit
}

var _ mapper.Cursor = cursor{}

func wrapCursor(c clang.Cursor, tu clang.TranslationUnit) mapper.Cursor {
	if c.IsNull() {
		return nil
	}
	return cursor{c: c, tu: tu}
}

func (c cursor) Kind() mapper.CursorKind { return cursorKind(c.c.Kind()) }
func (c cursor) Spelling() string        { return c.c.Spelling() }
func (c cursor) DisplayName() string     { return c.c.DisplayName() }
func (c cursor) USR() string             { return c.c.USR() }
func (c cursor) IsAnonymous() bool       { return c.c.IsAnonymous() }
func (c cursor) IsDefinition() bool      { return c.c.IsCursorDefinition() }
func (c cursor) InSystemHeader() bool    { return c.c.Location().IsInSystemHeader() }

func (c cursor) Location() cir.Location {
	f, line, col, _ := c.c.Location().FileLocation()
	return cir.Location{File: f.Name(), Line: line, Column: col}
}

func (c cursor) Children() []mapper.Cursor {
	var out []mapper.Cursor
	c.c.Visit(func(child, _ clang.Cursor) clang.ChildVisitResult {
		out = append(out, cursor{c: child, tu: c.tu})
		return clang.ChildVisit_Continue
	})
	return out
}

func (c cursor) Type() mapper.Type              { return wrapType(c.c.Type(), c.tu) }
func (c cursor) TypedefUnderlying() mapper.Type { return wrapType(c.c.TypedefDeclUnderlyingType(), c.tu) }
func (c cursor) ResultType() mapper.Type        { return wrapType(c.c.ResultType(), c.tu) }
func (c cursor) EnumIntegerType() mapper.Type   { return wrapType(c.c.EnumDeclIntegerType(), c.tu) }
func (c cursor) EnumConstantUnsigned() uint64   { return c.c.EnumConstantDeclUnsignedValue() }

func (c cursor) Evaluate() (mapper.EvalResult, bool) {
	ev := c.c.Evaluate()
	defer ev.Dispose()
	switch ev.Kind() {
	case clang.Eval_Int:
		if ev.IsUnsignedInt() {
			return mapper.EvalResult{Kind: mapper.EvalInt, IsUnsigned: true, Unsigned: ev.AsUnsigned()}, true
		}
		return mapper.EvalResult{Kind: mapper.EvalInt, Signed: ev.AsLongLong()}, true
	case clang.Eval_Float:
		return mapper.EvalResult{Kind: mapper.EvalFloat, Float: ev.AsDouble()}, true
	case clang.Eval_StrLiteral:
		return mapper.EvalResult{Kind: mapper.EvalString, Str: ev.AsStr()}, true
	}
	return mapper.EvalResult{}, false
}

// Operator recovers the operator token: libclang 13 exposes no operator
// kind, so it is found by position among the expression's tokens.
func (c cursor) Operator() (string, bool) {
	toks := c.tokens(c.c)
	if len(toks) == 0 {
		return "", false
	}
	var first clang.Cursor
	hasChild := false
	c.c.Visit(func(child, _ clang.Cursor) clang.ChildVisitResult {
		first = child
		hasChild = true
		return clang.ChildVisit_Break
	})

	switch c.c.Kind() {
	case clang.Cursor_UnaryExpr:
		return toks[0], false
	case clang.Cursor_UnaryOperator:
		if hasChild && offset(first.Extent().Start()) == offset(c.c.Extent().Start()) {
			return toks[len(toks)-1], true
		}
		return toks[0], false
	case clang.Cursor_BinaryOperator, clang.Cursor_CompoundAssignOperator, clang.Cursor_MemberRefExpr:
		if !hasChild {
			break
		}
		if n := len(c.tokens(first)); n < len(toks) {
			return toks[n], false
		}
	}
	return "", false
}

func (c cursor) tokens(of clang.Cursor) []string {
	toks := c.tu.Tokenize(of.Extent())
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, c.tu.TokenSpelling(t))
	}
	return out
}

func offset(loc clang.SourceLocation) uint32 {
	_, _, _, off := loc.FileLocation()
	return off
}

// typ adapts a libclang type.
type typ struct {
	t  clang.Type
	tu clang.TranslationUnit
}

var _ mapper.Type = typ{}

func wrapType(t clang.Type, tu clang.TranslationUnit) mapper.Type {
	if t.Kind() == clang.Type_Invalid {
		return nil
	}
	return typ{t: t, tu: tu}
}

func (t typ) Kind() mapper.TypeKind { return typeKind(t.t.Kind()) }
func (t typ) Spelling() string      { return t.t.Spelling() }
func (t typ) IsConst() bool         { return t.t.IsConstQualifiedType() }
func (t typ) Pointee() mapper.Type  { return wrapType(t.t.PointeeType(), t.tu) }
func (t typ) Result() mapper.Type   { return wrapType(t.t.ResultType(), t.tu) }
func (t typ) IsVariadic() bool      { return t.t.IsFunctionTypeVariadic() }
func (t typ) Element() mapper.Type  { return wrapType(t.t.ArrayElementType(), t.tu) }
func (t typ) ArraySize() int64      { return t.t.ArraySize() }
func (t typ) Named() mapper.Type    { return wrapType(t.t.NamedType(), t.tu) }
func (t typ) TypedefName() string   { return t.t.TypedefName() }

func (t typ) Args() []mapper.Type {
	n := t.t.NumArgTypes()
	if n <= 0 {
		return nil
	}
	out := make([]mapper.Type, 0, n)
	for i := range n {
		idx, err := safecast.Conv[uint32](i)
		if err != nil {
			break
		}
		out = append(out, wrapType(t.t.ArgType(idx), t.tu))
	}
	return out
}

func (t typ) Declaration() mapper.Cursor {
	d := t.t.Declaration()
	if d.Kind() == clang.Cursor_NoDeclFound {
		return nil
	}
	return wrapCursor(d, t.tu)
}
