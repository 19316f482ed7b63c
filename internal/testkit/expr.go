package testkit

import (
	"strconv"

	"sennaar/internal/mapper"
)

// IntLit is an integer literal of type t evaluating to v.
func IntLit(v int64, t *TypeNode) *Node {
	n := &Node{kind: mapper.CursorIntegerLiteral, spelling: strconv.FormatInt(v, 10), ty: t, loc: loc()}
	return n.Evaluates(mapper.EvalResult{Kind: mapper.EvalInt, Signed: v})
}

// UIntLit is an unsigned integer literal of type t.
func UIntLit(v uint64, t *TypeNode) *Node {
	n := &Node{kind: mapper.CursorIntegerLiteral, spelling: strconv.FormatUint(v, 10), ty: t, loc: loc()}
	return n.Evaluates(mapper.EvalResult{Kind: mapper.EvalInt, IsUnsigned: true, Unsigned: v})
}

// FloatLit is a floating literal of type t.
func FloatLit(f float64, t *TypeNode) *Node {
	n := &Node{kind: mapper.CursorFloatingLiteral, spelling: strconv.FormatFloat(f, 'g', -1, 64), ty: t, loc: loc()}
	return n.Evaluates(mapper.EvalResult{Kind: mapper.EvalFloat, Float: f})
}

// CharLit is a character literal evaluating to r.
func CharLit(r rune) *Node {
	n := &Node{kind: mapper.CursorCharacterLiteral, spelling: strconv.QuoteRune(r), ty: Int(), loc: loc()}
	return n.Evaluates(mapper.EvalResult{Kind: mapper.EvalInt, Signed: int64(r)})
}

// StrLit is a string literal; spelling is the quoted source text.
func StrLit(spelling string) *Node {
	return &Node{kind: mapper.CursorStringLiteral, spelling: spelling, loc: loc()}
}

// DeclRef refers to a declared name.
func DeclRef(name string) *Node {
	return &Node{kind: mapper.CursorDeclRefExpr, spelling: name, loc: loc()}
}

// TypeRefNode names a type inside an expression.
func TypeRefNode(spelling string) *Node {
	return &Node{kind: mapper.CursorTypeRef, spelling: spelling, loc: loc()}
}

// BinOp is a binary or comma operator.
func BinOp(op string, l, r *Node) *Node {
	return &Node{kind: mapper.CursorBinaryOperator, op: op, children: []*Node{l, r}, loc: loc()}
}

// AssignOp is a compound assignment.
func AssignOp(op string, l, r *Node) *Node {
	return &Node{kind: mapper.CursorCompoundAssignOperator, op: op, children: []*Node{l, r}, loc: loc()}
}

// UnOp is a prefix operator.
func UnOp(op string, x *Node) *Node {
	return &Node{kind: mapper.CursorUnaryOperator, op: op, children: []*Node{x}, loc: loc()}
}

// Postfix is x++ or x--.
func Postfix(op string, x *Node) *Node {
	return &Node{kind: mapper.CursorUnaryOperator, op: op, postfix: true, children: []*Node{x}, loc: loc()}
}

// SizeOf is sizeof applied to an expression or, through TypeRefNode, a type.
func SizeOf(operand *Node) *Node {
	return &Node{kind: mapper.CursorUnaryExpr, op: "sizeof", children: []*Node{operand}, loc: loc()}
}

// Paren parenthesizes x.
func Paren(x *Node) *Node {
	return &Node{kind: mapper.CursorParenExpr, children: []*Node{x}, loc: loc()}
}

// Cond is c ? a : b.
func Cond(c, a, b *Node) *Node {
	return &Node{kind: mapper.CursorConditionalOperator, children: []*Node{c, a, b}, loc: loc()}
}

// Call calls callee with args.
func Call(callee *Node, args ...*Node) *Node {
	return &Node{kind: mapper.CursorCallExpr, children: append([]*Node{callee}, args...), loc: loc()}
}

// Subscript is base[index].
func Subscript(base, index *Node) *Node {
	return &Node{kind: mapper.CursorArraySubscriptExpr, children: []*Node{base, index}, loc: loc()}
}

// Member is obj.name, or obj->name when arrow is set.
func Member(obj *Node, name string, arrow bool) *Node {
	op := "."
	if arrow {
		op = "->"
	}
	return &Node{kind: mapper.CursorMemberRefExpr, spelling: name, op: op, children: []*Node{obj}, loc: loc()}
}

// Cast is (t)x.
func Cast(t *TypeNode, x *Node) *Node {
	return &Node{kind: mapper.CursorCStyleCastExpr, ty: t, children: []*Node{x}, loc: loc()}
}

// Unexposed wraps x in an implicit conversion.
func Unexposed(x *Node) *Node {
	return &Node{kind: mapper.CursorUnexposedExpr, children: []*Node{x}, loc: loc()}
}

// InitList is a brace initializer.
func InitList(items ...*Node) *Node {
	return &Node{kind: mapper.CursorInitListExpr, children: items, loc: loc()}
}
