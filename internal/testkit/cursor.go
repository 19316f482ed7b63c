// Package testkit builds in-memory AST trees for tests and checks IR and
// registry invariants.
package testkit

import (
	"sennaar/internal/cir"
	"sennaar/internal/mapper"
)

// Node is an in-memory mapper.Cursor.
type Node struct {
	kind       mapper.CursorKind
	spelling   string
	display    string
	usr        string
	anonymous  bool
	definition bool
	system     bool
	loc        cir.Location
	children   []*Node
	ty         *TypeNode
	underlying *TypeNode
	result     *TypeNode
	enumType   *TypeNode
	enumValue  uint64
	eval       mapper.EvalResult
	hasEval    bool
	op         string
	postfix    bool
}

var _ mapper.Cursor = (*Node)(nil)

func (n *Node) Kind() mapper.CursorKind { return n.kind }
func (n *Node) Spelling() string        { return n.spelling }
func (n *Node) USR() string             { return n.usr }
func (n *Node) IsAnonymous() bool       { return n.anonymous }
func (n *Node) IsDefinition() bool      { return n.definition }
func (n *Node) InSystemHeader() bool    { return n.system }
func (n *Node) Location() cir.Location  { return n.loc }

func (n *Node) DisplayName() string {
	if n.display != "" {
		return n.display
	}
	return n.spelling
}

func (n *Node) Children() []mapper.Cursor {
	out := make([]mapper.Cursor, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *Node) Type() mapper.Type              { return typeOrNil(n.ty) }
func (n *Node) TypedefUnderlying() mapper.Type { return typeOrNil(n.underlying) }
func (n *Node) ResultType() mapper.Type        { return typeOrNil(n.result) }
func (n *Node) EnumIntegerType() mapper.Type   { return typeOrNil(n.enumType) }
func (n *Node) EnumConstantUnsigned() uint64   { return n.enumValue }

func (n *Node) Evaluate() (mapper.EvalResult, bool) { return n.eval, n.hasEval }

func (n *Node) Operator() (string, bool) { return n.op, n.postfix }

// At sets the node's location.
func (n *Node) At(file string, line, col uint32) *Node {
	n.loc = cir.Location{File: file, Line: line, Column: col}
	return n
}

// System marks the node as declared in a system header.
func (n *Node) System() *Node {
	n.system = true
	return n
}

// Named overrides the display name, which differs from the spelling for
// references such as `x` in `f(x)`.
func (n *Node) Named(display string) *Node {
	n.display = display
	return n
}

// Evaluates attaches a compile-time evaluation result.
func (n *Node) Evaluates(r mapper.EvalResult) *Node {
	n.eval, n.hasEval = r, true
	return n
}

// Add appends children.
func (n *Node) Add(children ...*Node) *Node {
	n.children = append(n.children, children...)
	return n
}

// TypeNode is an in-memory mapper.Type.
type TypeNode struct {
	kind        mapper.TypeKind
	spelling    string
	isConst     bool
	pointee     *TypeNode
	result      *TypeNode
	elem        *TypeNode
	named       *TypeNode
	args        []*TypeNode
	variadic    bool
	size        int64
	decl        *Node
	typedefName string
}

var _ mapper.Type = (*TypeNode)(nil)

func (t *TypeNode) Kind() mapper.TypeKind { return t.kind }
func (t *TypeNode) IsConst() bool         { return t.isConst }
func (t *TypeNode) Pointee() mapper.Type  { return typeOrNil(t.pointee) }
func (t *TypeNode) Result() mapper.Type   { return typeOrNil(t.result) }
func (t *TypeNode) Element() mapper.Type  { return typeOrNil(t.elem) }
func (t *TypeNode) Named() mapper.Type    { return typeOrNil(t.named) }
func (t *TypeNode) IsVariadic() bool      { return t.variadic }
func (t *TypeNode) ArraySize() int64      { return t.size }
func (t *TypeNode) TypedefName() string   { return t.typedefName }

func (t *TypeNode) Spelling() string {
	if t.isConst {
		return "const " + t.spelling
	}
	return t.spelling
}

func (t *TypeNode) Args() []mapper.Type {
	out := make([]mapper.Type, len(t.args))
	for i, a := range t.args {
		out[i] = a
	}
	return out
}

func (t *TypeNode) Declaration() mapper.Cursor {
	if t.decl == nil {
		return nil
	}
	return t.decl
}

func typeOrNil(t *TypeNode) mapper.Type {
	if t == nil {
		return nil
	}
	return t
}
