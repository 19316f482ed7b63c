package mapper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"sennaar/internal/cir"
)

var intSuffixes = map[TypeKind]string{
	TypeInt:       "",
	TypeUInt:      "U",
	TypeLong:      "L",
	TypeULong:     "UL",
	TypeLongLong:  "LL",
	TypeULongLong: "ULL",
}

var floatSuffixes = map[TypeKind]string{
	TypeFloat:      "F",
	TypeDouble:     "",
	TypeLongDouble: "L",
}

var prefixOps = map[string]cir.UnaryOp{
	"++": cir.UnaryInc,
	"--": cir.UnaryDec,
	"&":  cir.UnaryAddrOf,
	"*":  cir.UnaryDeref,
	"+":  cir.UnaryPlus,
	"-":  cir.UnaryMinus,
	"~":  cir.UnaryBitNot,
	"!":  cir.UnaryNot,
}

var traitOps = map[string]cir.UnaryOp{
	"sizeof":      cir.UnarySizeOf,
	"alignof":     cir.UnaryAlignOf,
	"_Alignof":    cir.UnaryAlignOf,
	"__alignof":   cir.UnaryAlignOf,
	"__alignof__": cir.UnaryAlignOf,
}

// MapExpr maps an expression cursor. Integer and character literals are
// evaluated to canonical text; every other form keeps its structure.
func (m *Mapper) MapExpr(c Cursor) (*cir.Expr, error) {
	switch c.Kind() {
	case CursorIntegerLiteral:
		return m.intLiteral(c)

	case CursorFloatingLiteral:
		ev, ok := c.Evaluate()
		if !ok || ev.Kind != EvalFloat {
			return nil, evalError(c, "floating literal")
		}
		return cir.FloatLit(formatFloat(ev.Float), floatSuffixes[typeKindOf(c)]), nil

	case CursorCharacterLiteral:
		ev, ok := c.Evaluate()
		if !ok || ev.Kind != EvalInt {
			return nil, evalError(c, "character literal")
		}
		cp := ev.Unsigned
		if !ev.IsUnsigned {
			cp = uint64(ev.Signed) //nolint:gosec // validated below
		}
		if cp > utf8.MaxRune || !utf8.ValidRune(rune(cp)) { //nolint:gosec // bounded by MaxRune
			return nil, evalError(c, fmt.Sprintf("code point %#x", cp))
		}
		return cir.CharLit(escapeDefault(rune(cp))), nil //nolint:gosec // bounded by MaxRune

	case CursorStringLiteral:
		if ev, ok := c.Evaluate(); ok && ev.Kind == EvalString {
			return cir.StringLit(ev.Str), nil
		}
		s, err := strconv.Unquote(c.Spelling())
		if err != nil {
			return nil, &MappingError{Kind: ErrLiteralEval, Cursor: c.Kind(), Loc: c.Location(), Detail: c.Spelling(), Err: err}
		}
		return cir.StringLit(s), nil

	case CursorDeclRefExpr:
		id, err := m.intern(c, c.DisplayName())
		if err != nil {
			return nil, err
		}
		return cir.Ident(id), nil

	case CursorArraySubscriptExpr:
		kids, err := m.mapChildren(c, 2)
		if err != nil {
			return nil, err
		}
		return cir.Index(kids[0], kids[1]), nil

	case CursorCallExpr:
		children := c.Children()
		if len(children) == 0 {
			return nil, unsupported(c, "call without callee")
		}
		callee, err := m.MapExpr(children[0])
		if err != nil {
			return nil, err
		}
		args := make([]*cir.Expr, 0, len(children)-1)
		for _, a := range children[1:] {
			arg, err := m.MapExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return cir.Call(callee, args), nil

	case CursorMemberRefExpr:
		kids, err := m.mapChildren(c, 1)
		if err != nil {
			return nil, err
		}
		member, err := m.intern(c, c.DisplayName())
		if err != nil {
			return nil, err
		}
		if op, _ := c.Operator(); op == "->" {
			return cir.PtrMember(kids[0], member), nil
		}
		return cir.Member(kids[0], member), nil

	case CursorUnaryOperator:
		kids, err := m.mapChildren(c, 1)
		if err != nil {
			return nil, err
		}
		op, postfix := c.Operator()
		if postfix {
			switch op {
			case "++":
				return cir.PostfixIncDec(kids[0], cir.OpInc), nil
			case "--":
				return cir.PostfixIncDec(kids[0], cir.OpDec), nil
			}
			return nil, unsupported(c, "postfix operator "+op)
		}
		uop, ok := prefixOps[op]
		if !ok {
			return nil, unsupported(c, "unary operator "+op)
		}
		return cir.Unary(uop, kids[0]), nil

	case CursorUnaryExpr:
		return m.traitExpr(c)

	case CursorCStyleCastExpr:
		children := c.Children()
		if len(children) == 0 {
			return nil, unsupported(c, "cast without operand")
		}
		// a TypeRef child precedes the operand for named target types
		operand, err := m.MapExpr(children[len(children)-1])
		if err != nil {
			return nil, err
		}
		ty, err := m.intern(c, c.Type().Spelling())
		if err != nil {
			return nil, err
		}
		return cir.Cast(operand, cir.Ident(ty)), nil

	case CursorBinaryOperator, CursorCompoundAssignOperator:
		kids, err := m.mapChildren(c, 2)
		if err != nil {
			return nil, err
		}
		tok, _ := c.Operator()
		op, ok := cir.BinaryOpFromToken(tok)
		if !ok {
			return nil, unsupported(c, "binary operator "+tok)
		}
		return cir.Binary(op, kids[0], kids[1]), nil

	case CursorConditionalOperator:
		kids, err := m.mapChildren(c, 3)
		if err != nil {
			return nil, err
		}
		return cir.Conditional(kids[0], kids[1], kids[2]), nil

	case CursorParenExpr:
		kids, err := m.mapChildren(c, 1)
		if err != nil {
			return nil, err
		}
		return cir.Paren(kids[0]), nil

	case CursorUnexposedExpr:
		// implicit casts and similar wrappers
		children := c.Children()
		if len(children) != 1 {
			return nil, unsupported(c, fmt.Sprintf("unexposed expression with %d children", len(children)))
		}
		return m.MapExpr(children[0])
	}
	return nil, unsupported(c, "expression")
}

func (m *Mapper) intLiteral(c Cursor) (*cir.Expr, error) {
	ev, ok := c.Evaluate()
	if !ok || ev.Kind != EvalInt {
		return nil, evalError(c, "integer literal")
	}
	v := ev.Unsigned
	if !ev.IsUnsigned {
		v = uint64(ev.Signed) //nolint:gosec // two's complement rendering is intended
	}
	return cir.HexLit(v, intSuffixes[typeKindOf(c)]), nil
}

// traitExpr maps sizeof/alignof. With a type operand and no expression child
// the front end's evaluated value is kept instead.
func (m *Mapper) traitExpr(c Cursor) (*cir.Expr, error) {
	tok, _ := c.Operator()
	op, ok := traitOps[tok]
	if !ok {
		return nil, unsupported(c, "unary trait "+tok)
	}
	for _, child := range c.Children() {
		if child.Kind() == CursorTypeRef {
			ty, err := m.intern(child, child.Spelling())
			if err != nil {
				return nil, err
			}
			return cir.Unary(op, cir.Ident(ty)), nil
		}
		operand, err := m.MapExpr(child)
		if err != nil {
			return nil, err
		}
		return cir.Unary(op, operand), nil
	}
	return m.intLiteral(c)
}

func (m *Mapper) mapChildren(c Cursor, n int) ([]*cir.Expr, error) {
	children := c.Children()
	if len(children) != n {
		return nil, unsupported(c, fmt.Sprintf("expected %d operands, got %d", n, len(children)))
	}
	out := make([]*cir.Expr, n)
	for i, child := range children {
		e, err := m.MapExpr(child)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func typeKindOf(c Cursor) TypeKind {
	if t := c.Type(); t != nil {
		return t.Kind()
	}
	return TypeInvalid
}

func evalError(c Cursor, what string) *MappingError {
	return &MappingError{Kind: ErrLiteralEval, Cursor: c.Kind(), Loc: c.Location(), Detail: what}
}

// formatFloat renders f so that it still reads as a floating literal.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INFINITY"
	case math.IsInf(f, -1):
		return "-INFINITY"
	case math.IsNaN(f):
		return "NAN"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// escapeDefault escapes a code point the way character literals are
// rendered: quotes, backslash and \t \r \n get a backslash, printable ASCII
// stays, anything else becomes \u{hex}.
func escapeDefault(r rune) string {
	switch r {
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\n':
		return `\n`
	case '\\', '\'', '"':
		return `\` + string(r)
	}
	if r >= 0x20 && r <= 0x7e {
		return string(r)
	}
	return fmt.Sprintf(`\u{%x}`, r)
}
