package namer

import (
	"strconv"
	"strings"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
)

// NodeKind classifies one step of a usage path.
type NodeKind uint8

const (
	NodeStruct NodeKind = iota + 1
	NodeUnion
	NodeFunctionReturn
	NodePointerTo
	NodeArrayOf
	NodeField
	NodeFunctionParam
	NodeVar
	NodeNestedIndex
	NodeTypedef
	NodeFunction
)

// Node is one step of a usage path. Record is set for NodeStruct and
// NodeUnion, Name for the named steps, Index for NodeNestedIndex.
type Node struct {
	Kind   NodeKind
	Record cir.RecordName
	Name   string
	Index  int
}

func (n Node) String() string {
	switch n.Kind {
	case NodeStruct:
		return "Struct(" + n.Record.String() + ")"
	case NodeUnion:
		return "Union(" + n.Record.String() + ")"
	case NodeFunctionReturn:
		return "FunctionReturn"
	case NodePointerTo:
		return "PointerTo"
	case NodeArrayOf:
		return "ArrayOf"
	case NodeField:
		return "Field(" + n.Name + ")"
	case NodeFunctionParam:
		return "FunctionParam(" + n.Name + ")"
	case NodeVar:
		return "Var(" + n.Name + ")"
	case NodeNestedIndex:
		return "NestedIndex(" + strconv.Itoa(n.Index) + ")"
	case NodeTypedef:
		return "Typedef(" + n.Name + ")"
	case NodeFunction:
		return "Function(" + n.Name + ")"
	default:
		return "?"
	}
}

// Usage is the path from a declaration down to one reference of an
// anonymous record.
type Usage []Node

func (u Usage) String() string {
	parts := make([]string, len(u))
	for i, n := range u {
		parts[i] = n.String()
	}
	return strings.Join(parts, " > ")
}

// Usages maps each anonymous record USR to its references in discovery order.
type Usages struct {
	byUSR map[string][]Usage
	order []string
}

// Collect records every reference to an anonymous record in decls: variable,
// typedef and function types, fields of defined records and subrecord
// entries.
func Collect(decls []cir.Decl) *Usages {
	u := &Usages{byUSR: make(map[string][]Usage)}
	for _, d := range decls {
		switch p := d.Data.(type) {
		case *cir.VarDecl:
			u.walk(p.Type, Usage{{Kind: NodeVar, Name: text(p.Name)}})
		case *cir.TypedefDecl:
			u.walk(p.Underlying, Usage{{Kind: NodeTypedef, Name: text(p.Name)}})
		case *cir.FunctionDecl:
			ctx := Usage{{Kind: NodeFunction, Name: text(p.Name)}}
			u.walk(p.Result, with(ctx, Node{Kind: NodeFunctionReturn}))
			for i, param := range p.Params {
				u.walk(param.Type, with(ctx, Node{Kind: NodeFunctionParam, Name: paramName(param, i)}))
			}
		case *cir.RecordDecl:
			if !p.IsDefinition {
				continue
			}
			owner := recordNode(p.IsStruct, p.Name)
			for _, f := range p.Fields {
				u.walk(f.Type, Usage{owner, {Kind: NodeField, Name: text(f.Name)}})
			}
			for i, sub := range p.Subrecords {
				if usr, ok := sub.USR(); ok {
					u.add(usr, Usage{owner, {Kind: NodeNestedIndex, Index: i}})
				}
			}
		}
	}
	return u
}

// First returns the usage that names usr: the first one discovered.
func (u *Usages) First(usr string) (Usage, bool) {
	all := u.byUSR[usr]
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// All returns every usage of usr.
func (u *Usages) All(usr string) []Usage {
	return u.byUSR[usr]
}

// USRs returns the referenced USRs in order of first reference.
func (u *Usages) USRs() []string {
	return u.order
}

func (u *Usages) add(usr string, path Usage) {
	if _, seen := u.byUSR[usr]; !seen {
		u.order = append(u.order, usr)
	}
	u.byUSR[usr] = append(u.byUSR[usr], path)
}

func (u *Usages) walk(t cir.Type, ctx Usage) {
	switch d := t.Data.(type) {
	case *cir.ArrayType:
		u.walk(d.Elem, with(ctx, Node{Kind: NodeArrayOf}))
	case *cir.PointerType:
		u.walk(d.Pointee, with(ctx, Node{Kind: NodePointerTo}))
	case *cir.FunctionType:
		u.walk(d.Result, with(ctx, Node{Kind: NodeFunctionReturn}))
		for i, p := range d.Params {
			u.walk(p.Type, with(ctx, Node{Kind: NodeFunctionParam, Name: paramName(p, i)}))
		}
	case *cir.RecordType:
		if usr, ok := d.Name.USR(); ok {
			u.add(usr, ctx)
		}
	}
}

// with returns a copy of ctx extended by n; sibling paths never share
// backing arrays.
func with(ctx Usage, n Node) Usage {
	out := make(Usage, len(ctx), len(ctx)+1)
	copy(out, ctx)
	return append(out, n)
}

func recordNode(isStruct bool, name cir.RecordName) Node {
	if isStruct {
		return Node{Kind: NodeStruct, Record: name}
	}
	return Node{Kind: NodeUnion, Record: name}
}

func paramName(p cir.Param, i int) string {
	if p.HasName() {
		return text(p.Name)
	}
	return "param" + strconv.Itoa(i)
}

func text(id ident.Identifier) string {
	return id.String()
}
