package cir

import (
	"strconv"
	"strings"

	"sennaar/internal/ident"
)

// ExprKind enumerates expression variants. The String form is the "$kind"
// tag used in registry documents.
type ExprKind uint8

const (
	ExprIntLiteral ExprKind = iota
	ExprFloatLiteral
	ExprCharLiteral
	ExprStringLiteral
	ExprIdentifier
	ExprIndex
	ExprCall
	ExprMember
	ExprPtrMember
	ExprPostfixIncDec
	ExprUnary
	ExprCast
	ExprBinary
	ExprConditional
	ExprParen
)

var exprKindNames = [...]string{
	ExprIntLiteral:    "IntLiteral",
	ExprFloatLiteral:  "FloatLiteral",
	ExprCharLiteral:   "CharLiteral",
	ExprStringLiteral: "StringLiteral",
	ExprIdentifier:    "Identifier",
	ExprIndex:         "Index",
	ExprCall:          "Call",
	ExprMember:        "Member",
	ExprPtrMember:     "PtrMember",
	ExprPostfixIncDec: "PostfixIncDec",
	ExprUnary:         "Unary",
	ExprCast:          "Cast",
	ExprBinary:        "Binary",
	ExprConditional:   "Conditional",
	ExprParen:         "Paren",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

func parseExprKind(s string) (ExprKind, bool) {
	for i, name := range exprKindNames {
		if name == s {
			return ExprKind(i), true //nolint:gosec // bounded by the table
		}
	}
	return 0, false
}

// Expr is a C expression tree. Literals hold evaluated text, everything else
// is kept structurally.
type Expr struct {
	Kind ExprKind
	Data ExprData
}

// ExprData is implemented by the payload of each ExprKind.
type ExprData interface {
	exprData()
}

// IntLiteral holds an evaluated integer in "0x..." form plus its suffix.
type IntLiteral struct {
	Value  string `json:"value"`
	Suffix string `json:"suffix"`
}

type FloatLiteral struct {
	Value  string `json:"value"`
	Suffix string `json:"suffix"`
}

type CharLiteral struct {
	Value string `json:"value"`
}

type StringLiteral struct {
	Value string `json:"value"`
}

type IdentifierExpr struct {
	Ident ident.Identifier `json:"ident"`
}

type IndexExpr struct {
	Base  *Expr `json:"base"`
	Index *Expr `json:"index"`
}

type CallExpr struct {
	Callee *Expr   `json:"callee"`
	Args   []*Expr `json:"args"`
}

type MemberExpr struct {
	Obj    *Expr            `json:"obj"`
	Member ident.Identifier `json:"member"`
}

type PtrMemberExpr struct {
	Obj    *Expr            `json:"obj"`
	Member ident.Identifier `json:"member"`
}

type PostfixIncDecExpr struct {
	Base *Expr     `json:"base"`
	Op   IncDecOp `json:"op"`
}

type UnaryExpr struct {
	Expr *Expr   `json:"expr"`
	Op   UnaryOp `json:"op"`
}

// CastExpr keeps the target type as an identifier expression carrying the
// type's spelling.
type CastExpr struct {
	Expr *Expr `json:"expr"`
	Type *Expr `json:"type"`
}

type BinaryExpr struct {
	Op    BinaryOp `json:"op"`
	Left  *Expr    `json:"left"`
	Right *Expr    `json:"right"`
}

type ConditionalExpr struct {
	Cond      *Expr `json:"cond"`
	Then      *Expr `json:"then"`
	Otherwise *Expr `json:"otherwise"`
}

type ParenExpr struct {
	Expr *Expr `json:"expr"`
}

func (*IntLiteral) exprData()        {}
func (*FloatLiteral) exprData()      {}
func (*CharLiteral) exprData()       {}
func (*StringLiteral) exprData()     {}
func (*IdentifierExpr) exprData()    {}
func (*IndexExpr) exprData()         {}
func (*CallExpr) exprData()          {}
func (*MemberExpr) exprData()        {}
func (*PtrMemberExpr) exprData()     {}
func (*PostfixIncDecExpr) exprData() {}
func (*UnaryExpr) exprData()         {}
func (*CastExpr) exprData()          {}
func (*BinaryExpr) exprData()        {}
func (*ConditionalExpr) exprData()   {}
func (*ParenExpr) exprData()         {}

func newExprData(k ExprKind) ExprData {
	switch k {
	case ExprIntLiteral:
		return &IntLiteral{}
	case ExprFloatLiteral:
		return &FloatLiteral{}
	case ExprCharLiteral:
		return &CharLiteral{}
	case ExprStringLiteral:
		return &StringLiteral{}
	case ExprIdentifier:
		return &IdentifierExpr{}
	case ExprIndex:
		return &IndexExpr{}
	case ExprCall:
		return &CallExpr{}
	case ExprMember:
		return &MemberExpr{}
	case ExprPtrMember:
		return &PtrMemberExpr{}
	case ExprPostfixIncDec:
		return &PostfixIncDecExpr{}
	case ExprUnary:
		return &UnaryExpr{}
	case ExprCast:
		return &CastExpr{}
	case ExprBinary:
		return &BinaryExpr{}
	case ExprConditional:
		return &ConditionalExpr{}
	case ExprParen:
		return &ParenExpr{}
	default:
		return nil
	}
}

// IntLit builds an integer literal expression.
func IntLit(value, suffix string) *Expr {
	return &Expr{Kind: ExprIntLiteral, Data: &IntLiteral{Value: value, Suffix: suffix}}
}

// HexLit builds the canonical literal for v: "0x" followed by uppercase hex digits.
func HexLit(v uint64, suffix string) *Expr {
	return IntLit("0x"+strings.ToUpper(strconv.FormatUint(v, 16)), suffix)
}

// FloatLit builds a floating literal expression.
func FloatLit(value, suffix string) *Expr {
	return &Expr{Kind: ExprFloatLiteral, Data: &FloatLiteral{Value: value, Suffix: suffix}}
}

// CharLit builds a character literal expression.
func CharLit(value string) *Expr {
	return &Expr{Kind: ExprCharLiteral, Data: &CharLiteral{Value: value}}
}

// StringLit builds a string literal expression.
func StringLit(value string) *Expr {
	return &Expr{Kind: ExprStringLiteral, Data: &StringLiteral{Value: value}}
}

// Ident builds an identifier expression.
func Ident(id ident.Identifier) *Expr {
	return &Expr{Kind: ExprIdentifier, Data: &IdentifierExpr{Ident: id}}
}

// Index builds `base[index]`.
func Index(base, index *Expr) *Expr {
	return &Expr{Kind: ExprIndex, Data: &IndexExpr{Base: base, Index: index}}
}

// Call builds `callee(args...)`.
func Call(callee *Expr, args []*Expr) *Expr {
	return &Expr{Kind: ExprCall, Data: &CallExpr{Callee: callee, Args: args}}
}

// Member builds `obj.member`.
func Member(obj *Expr, member ident.Identifier) *Expr {
	return &Expr{Kind: ExprMember, Data: &MemberExpr{Obj: obj, Member: member}}
}

// PtrMember builds `obj->member`.
func PtrMember(obj *Expr, member ident.Identifier) *Expr {
	return &Expr{Kind: ExprPtrMember, Data: &PtrMemberExpr{Obj: obj, Member: member}}
}

// PostfixIncDec builds `base++` or `base--`.
func PostfixIncDec(base *Expr, op IncDecOp) *Expr {
	return &Expr{Kind: ExprPostfixIncDec, Data: &PostfixIncDecExpr{Base: base, Op: op}}
}

// Unary builds a prefix unary expression.
func Unary(op UnaryOp, e *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Data: &UnaryExpr{Expr: e, Op: op}}
}

// Cast builds `(ty)e`.
func Cast(e, ty *Expr) *Expr {
	return &Expr{Kind: ExprCast, Data: &CastExpr{Expr: e, Type: ty}}
}

// Binary builds `left op right`.
func Binary(op BinaryOp, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Data: &BinaryExpr{Op: op, Left: left, Right: right}}
}

// Conditional builds `cond ? then : otherwise`.
func Conditional(cond, then, otherwise *Expr) *Expr {
	return &Expr{Kind: ExprConditional, Data: &ConditionalExpr{Cond: cond, Then: then, Otherwise: otherwise}}
}

// Paren builds `(e)`.
func Paren(e *Expr) *Expr {
	return &Expr{Kind: ExprParen, Data: &ParenExpr{Expr: e}}
}
