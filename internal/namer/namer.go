// Package namer gives every anonymous struct and union a name derived from
// where it is used.
//
// Naming runs in three phases over a unit's whole declaration sequence:
// usages are collected, names are synthesized from the first usage of each
// record (recursing, with memoization, into anonymous enclosing records),
// and finally every anonymous reference is rewritten to its named form.
package namer

import (
	"fmt"
	"strconv"
	"strings"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/trace"
)

// Namer rewrites anonymous records. It holds no per-unit state.
type Namer struct {
	idents *ident.Table
	tracer trace.Tracer
	span   uint64
}

// Option configures a Namer.
type Option func(*Namer)

// WithTracer emits a debug point per synthesized name under parent.
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(n *Namer) {
		n.tracer = t
		n.span = parent
	}
}

// New returns a Namer interning synthesized names into idents.
func New(idents *ident.Table, opts ...Option) *Namer {
	n := &Namer{idents: idents, tracer: trace.Nop}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run names every anonymous record in decls and rewrites all references in
// place. decls is returned for convenience.
func (n *Namer) Run(decls []cir.Decl) ([]cir.Decl, error) {
	st := n.newState(decls)
	for i := range decls {
		if err := st.rewrite(&decls[i]); err != nil {
			return nil, err
		}
	}
	return decls, nil
}

// Resolve returns the name the anonymous record usr receives in decls
// without rewriting anything.
func (n *Namer) Resolve(decls []cir.Decl, usr string) (ident.Identifier, error) {
	st := n.newState(decls)
	return st.name(usr, st.tagOf(usr, true))
}

func (n *Namer) newState(decls []cir.Decl) *state {
	st := &state{
		namer:    n,
		usages:   Collect(decls),
		isStruct: make(map[string]bool),
		raw:      make(map[string]string),
		names:    make(map[string]ident.Identifier),
		visiting: make(map[string]bool),
	}
	for _, d := range decls {
		if rec, ok := d.Record(); ok {
			if usr, anon := rec.Name.USR(); anon {
				st.isStruct[usr] = rec.IsStruct
			}
		}
	}
	return st
}

type state struct {
	namer    *Namer
	usages   *Usages
	isStruct map[string]bool
	raw      map[string]string
	names    map[string]ident.Identifier
	visiting map[string]bool
	stack    []string
}

func (s *state) rewrite(d *cir.Decl) error {
	var err error
	d.Types(func(t *cir.Type) {
		if err == nil {
			err = s.rewriteType(t)
		}
	})
	if err != nil {
		return err
	}
	rec, ok := d.Record()
	if !ok {
		return nil
	}
	if usr, anon := rec.Name.USR(); anon {
		id, err := s.name(usr, rec.IsStruct)
		if err != nil {
			return err
		}
		rec.Name = cir.Named(id)
	}
	for i, sub := range rec.Subrecords {
		usr, anon := sub.USR()
		if !anon {
			continue
		}
		id, err := s.name(usr, s.tagOf(usr, true))
		if err != nil {
			return err
		}
		rec.Subrecords[i] = cir.Named(id)
	}
	return nil
}

func (s *state) rewriteType(t *cir.Type) error {
	switch d := t.Data.(type) {
	case *cir.ArrayType:
		return s.rewriteType(&d.Elem)
	case *cir.PointerType:
		return s.rewriteType(&d.Pointee)
	case *cir.FunctionType:
		if err := s.rewriteType(&d.Result); err != nil {
			return err
		}
		for i := range d.Params {
			if err := s.rewriteType(&d.Params[i].Type); err != nil {
				return err
			}
		}
	case *cir.RecordType:
		if usr, anon := d.Name.USR(); anon {
			id, err := s.name(usr, s.tagOf(usr, d.IsStruct))
			if err != nil {
				return err
			}
			d.Name = cir.Named(id)
		}
	}
	return nil
}

// tagOf prefers the record declaration's own tag over the one a reference
// carries.
func (s *state) tagOf(usr string, fallback bool) bool {
	if isStruct, ok := s.isStruct[usr]; ok {
		return isStruct
	}
	return fallback
}

// name returns the final interned name of usr.
func (s *state) name(usr string, isStruct bool) (ident.Identifier, error) {
	if id, ok := s.names[usr]; ok {
		return id, nil
	}
	raw, err := s.rawName(usr)
	if err != nil {
		return ident.Identifier{}, err
	}
	prefix := "union_de_"
	if isStruct {
		prefix = "struct_de_"
	}
	id, err := s.namer.idents.Intern(prefix + raw)
	if err != nil {
		return ident.Identifier{}, &ConsistencyError{Kind: ErrNameConflict, USR: usr, Err: err}
	}
	s.names[usr] = id
	trace.Point(s.namer.tracer, trace.ScopeDecl, "name", usr+" => "+id.String(), s.namer.span)
	return id, nil
}

// rawName renders the first usage of usr without the struct/union prefix.
func (s *state) rawName(usr string) (string, error) {
	if raw, ok := s.raw[usr]; ok {
		return raw, nil
	}
	if s.visiting[usr] {
		cycle := append([]string(nil), s.stack...)
		return "", &ConsistencyError{Kind: ErrCyclicAnonymousRecord, USR: usr, Cycle: append(cycle, usr)}
	}
	usage, ok := s.usages.First(usr)
	if !ok || len(usage) == 0 {
		return "", &ConsistencyError{Kind: ErrMissingUsage, USR: usr}
	}

	s.visiting[usr] = true
	s.stack = append(s.stack, usr)
	defer func() {
		delete(s.visiting, usr)
		s.stack = s.stack[:len(s.stack)-1]
	}()

	parts := make([]string, 0, len(usage))
	for _, node := range usage {
		frag, err := s.fragment(node)
		if err != nil {
			return "", err
		}
		parts = append(parts, frag)
	}
	raw := strings.Join(parts, "_")
	s.raw[usr] = raw
	return raw, nil
}

func (s *state) fragment(n Node) (string, error) {
	switch n.Kind {
	case NodeStruct, NodeUnion:
		tag := "struct_"
		if n.Kind == NodeUnion {
			tag = "union_"
		}
		if usr, anon := n.Record.USR(); anon {
			inner, err := s.rawName(usr)
			if err != nil {
				return "", err
			}
			return tag + inner, nil
		}
		id, _ := n.Record.Ident()
		return tag + id.String(), nil
	case NodeFunctionReturn:
		return "f", nil
	case NodePointerTo:
		return "p", nil
	case NodeArrayOf:
		return "arr", nil
	case NodeField:
		return "de_field_" + n.Name, nil
	case NodeFunctionParam:
		return "de_param_" + n.Name, nil
	case NodeVar:
		return "var_" + n.Name, nil
	case NodeNestedIndex:
		return "de_nest_" + strconv.Itoa(n.Index), nil
	case NodeTypedef:
		return "typedef_" + n.Name, nil
	case NodeFunction:
		return "fn_" + n.Name, nil
	}
	panic(fmt.Sprintf("namer: unknown usage node kind %d", n.Kind))
}
