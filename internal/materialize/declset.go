package materialize

import (
	"sennaar/internal/cir"
	"sennaar/internal/ident"
)

type declKey struct {
	kind cir.DeclKind
	name ident.Identifier
}

// DeclSet is a unit's declarations with repeated declarations removed.
// Records, typedefs, enums, functions and variables each have their own
// namespace. A record definition replaces an earlier forward declaration
// in place; everything else keeps its first occurrence. Anonymous enums
// and still-anonymous records are never merged.
//
// DeclSet is the Resolver of its unit: records are looked up first, then
// typedefs.
type DeclSet struct {
	decls []cir.Decl
	index map[declKey]int
}

// NewDeclSet returns a set holding decls.
func NewDeclSet(decls []cir.Decl) *DeclSet {
	s := &DeclSet{index: make(map[declKey]int, len(decls))}
	for _, d := range decls {
		s.Add(d)
	}
	return s
}

// Add inserts d and reports whether it was kept.
func (s *DeclSet) Add(d cir.Decl) bool {
	key, ok := keyOf(d)
	if !ok {
		s.decls = append(s.decls, d)
		return true
	}
	i, seen := s.index[key]
	if !seen {
		s.index[key] = len(s.decls)
		s.decls = append(s.decls, d)
		return true
	}
	if rec, ok := d.Record(); ok && rec.IsDefinition {
		if have, _ := s.decls[i].Record(); !have.IsDefinition {
			s.decls[i] = d
			return true
		}
	}
	return false
}

func keyOf(d cir.Decl) (declKey, bool) {
	switch p := d.Data.(type) {
	case *cir.RecordDecl:
		id, ok := p.Name.Ident()
		return declKey{kind: cir.DeclRecord, name: id}, ok
	case *cir.EnumDecl:
		return declKey{kind: cir.DeclEnum, name: p.Name}, !p.Anonymous
	case *cir.TypedefDecl:
		return declKey{kind: cir.DeclTypedef, name: p.Name}, true
	case *cir.FunctionDecl:
		return declKey{kind: cir.DeclFunction, name: p.Name}, true
	case *cir.VarDecl:
		return declKey{kind: cir.DeclVar, name: p.Name}, true
	}
	return declKey{}, false
}

// Len returns the number of declarations kept.
func (s *DeclSet) Len() int {
	return len(s.decls)
}

// Decls returns the kept declarations in discovery order.
func (s *DeclSet) Decls() []cir.Decl {
	return s.decls
}

// Resolve finds the record called name, or else the typedef.
func (s *DeclSet) Resolve(name ident.Identifier) (*cir.Decl, bool) {
	for _, kind := range [...]cir.DeclKind{cir.DeclRecord, cir.DeclTypedef} {
		if i, ok := s.index[declKey{kind: kind, name: name}]; ok {
			return &s.decls[i], true
		}
	}
	return nil, false
}

// Ordered returns the declarations to materialize: typedefs first, then
// record definitions, then the rest, each group in discovery order.
// Forward record declarations are left out; typedefs see them through
// Resolve.
func (s *DeclSet) Ordered() []cir.Decl {
	out := make([]cir.Decl, 0, len(s.decls))
	for _, d := range s.decls {
		if d.Kind == cir.DeclTypedef {
			out = append(out, d)
		}
	}
	for _, d := range s.decls {
		if rec, ok := d.Record(); ok && (rec.IsDefinition || rec.Name.IsAnonymous()) {
			out = append(out, d)
		}
	}
	for _, d := range s.decls {
		if d.Kind != cir.DeclTypedef && d.Kind != cir.DeclRecord {
			out = append(out, d)
		}
	}
	return out
}
