package mapper

import (
	"strings"

	"sennaar/internal/cir"
)

// mapType converts a front-end type. c locates errors.
func (m *Mapper) mapType(c Cursor, t Type) (cir.Type, error) {
	if t == nil {
		return cir.Type{}, unsupported(c, "missing type")
	}
	isConst := t.IsConst()
	if prim, ok := primitiveKinds[t.Kind()]; ok {
		return cir.MakePrimitive(prim).WithConst(isConst), nil
	}

	switch t.Kind() {
	case TypePointer:
		pointee, err := m.mapType(c, t.Pointee())
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakePointer(pointee).WithConst(isConst), nil

	case TypeFunctionProto:
		result, err := m.mapType(c, t.Result())
		if err != nil {
			return cir.Type{}, err
		}
		args := t.Args()
		params := make([]cir.Param, 0, len(args))
		for _, a := range args {
			pt, err := m.mapType(c, a)
			if err != nil {
				return cir.Type{}, err
			}
			// names live on the declaration cursors, see enrich
			params = append(params, cir.Param{Type: pt})
		}
		return cir.MakeFunction(result, params, t.IsVariadic()).WithConst(isConst), nil

	case TypeFunctionNoProto:
		result, err := m.mapType(c, t.Result())
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakeFunction(result, nil, false).WithConst(isConst), nil

	case TypeConstantArray:
		elem, err := m.mapType(c, t.Element())
		if err != nil {
			return cir.Type{}, err
		}
		n, err := arrayLength(c, t)
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakeArray(elem, n).WithConst(isConst), nil

	case TypeIncompleteArray:
		elem, err := m.mapType(c, t.Element())
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakeIncompleteArray(elem).WithConst(isConst), nil

	case TypeElaborated:
		inner, err := m.mapType(c, t.Named())
		if err != nil {
			return cir.Type{}, err
		}
		return inner.WithConst(isConst || inner.Const), nil

	case TypeTypedef:
		name, err := m.intern(c, t.TypedefName())
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakeTypedef(name).WithConst(isConst), nil

	case TypeRecord:
		decl := t.Declaration()
		isStruct := !strings.Contains(t.Spelling(), "union ")
		if decl != nil && decl.Kind().IsRecord() {
			isStruct = decl.Kind() == CursorStructDecl
			if decl.IsAnonymous() {
				return cir.MakeRecord(isStruct, cir.Anonymous(decl.USR())).WithConst(isConst), nil
			}
		}
		name, err := m.intern(c, tagName(decl, t, "struct", "union"))
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakeRecord(isStruct, cir.Named(name)).WithConst(isConst), nil

	case TypeEnum:
		decl := t.Declaration()
		if decl != nil && decl.IsAnonymous() {
			// `enum { A, B } mode;` has no name to refer to; use its integer type
			inner, err := m.mapType(c, decl.EnumIntegerType())
			if err != nil {
				return cir.Type{}, err
			}
			return inner.WithConst(isConst || inner.Const), nil
		}
		name, err := m.intern(c, tagName(decl, t, "enum"))
		if err != nil {
			return cir.Type{}, err
		}
		return cir.MakeEnum(name).WithConst(isConst), nil
	}

	return cir.Type{}, unsupported(c, "type "+t.Spelling()+" ("+t.Kind().String()+")")
}

// tagName prefers the declaration's own spelling; the type spelling carries
// qualifiers and the tag keyword.
func tagName(decl Cursor, t Type, tags ...string) string {
	if decl != nil {
		if s := decl.Spelling(); s != "" {
			return s
		}
	}
	s := t.Spelling()
	for _, q := range []string{"const ", "volatile ", "restrict "} {
		s = strings.TrimPrefix(s, q)
	}
	for _, tag := range tags {
		if rest, ok := strings.CutPrefix(s, tag+" "); ok {
			return rest
		}
	}
	return s
}

// enrich walks t down to its function prototype and names its parameters
// from parms, pairwise. When the two sequences differ in length the shorter
// one wins.
func (m *Mapper) enrich(t *cir.Type, parms []Cursor) error {
	if len(parms) == 0 {
		return nil
	}
	fn := functionOf(*t)
	if fn == nil {
		return nil
	}
	for i := range min(len(fn.Params), len(parms)) {
		p := parms[i]
		if p.Kind() != CursorParmDecl {
			continue
		}
		if s := p.Spelling(); s != "" {
			name, err := m.intern(p, s)
			if err != nil {
				return err
			}
			fn.Params[i].Name = name
		}
		if err := m.enrich(&fn.Params[i].Type, parmDecls(p)); err != nil {
			return err
		}
	}
	return nil
}

// functionOf finds the prototype reached through pointers and arrays.
func functionOf(t cir.Type) *cir.FunctionType {
	for {
		switch d := t.Data.(type) {
		case *cir.FunctionType:
			return d
		case *cir.PointerType:
			t = d.Pointee
		case *cir.ArrayType:
			t = d.Elem
		default:
			return nil
		}
	}
}
