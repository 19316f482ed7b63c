package cir

// Walk visits t and every type nested in it (array elements, pointees,
// function results and parameters) in pre-order. Returning false from fn
// stops the walk; Walk reports whether it ran to completion.
func Walk(t Type, fn func(Type) bool) bool {
	if !fn(t) {
		return false
	}
	switch d := t.Data.(type) {
	case *ArrayType:
		return Walk(d.Elem, fn)
	case *PointerType:
		return Walk(d.Pointee, fn)
	case *FunctionType:
		if !Walk(d.Result, fn) {
			return false
		}
		for _, p := range d.Params {
			if !Walk(p.Type, fn) {
				return false
			}
		}
	}
	return true
}

// ReferencesUSR reports whether t reaches the anonymous record usr through
// arrays, pointers or function prototype positions.
func ReferencesUSR(t Type, usr string) bool {
	found := false
	Walk(t, func(n Type) bool {
		if rec, ok := n.Record(); ok {
			if u, anon := rec.Name.USR(); anon && u == usr {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// FirstAnonymous returns the first anonymous record reference in t.
func FirstAnonymous(t Type) (string, bool) {
	var usr string
	found := false
	Walk(t, func(n Type) bool {
		if rec, ok := n.Record(); ok && rec.Name.IsAnonymous() {
			usr, _ = rec.Name.USR()
			found = true
			return false
		}
		return true
	})
	return usr, found
}

// Types calls fn for every top-level type slot of d: typedef underlying,
// function result and parameters, field types, enum type and variable type.
func (d Decl) Types(fn func(*Type)) {
	switch p := d.Data.(type) {
	case *TypedefDecl:
		fn(&p.Underlying)
	case *FunctionDecl:
		fn(&p.Result)
		for i := range p.Params {
			fn(&p.Params[i].Type)
		}
	case *RecordDecl:
		for i := range p.Fields {
			fn(&p.Fields[i].Type)
		}
	case *EnumDecl:
		fn(&p.Type)
	case *VarDecl:
		fn(&p.Type)
	}
}
