// Package materialize turns named IR declarations into registry entities.
//
// A declaration is classified by kind and, for typedefs, by the shape of
// the underlying type and whether the record it names is defined anywhere
// in the unit. The resolver gives access to the whole unit for that check.
package materialize

import (
	"errors"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/registry"
	"sennaar/internal/trace"
)

// Resolver looks up a declaration of the unit by name.
type Resolver interface {
	Resolve(name ident.Identifier) (*cir.Decl, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name ident.Identifier) (*cir.Decl, bool)

func (f ResolverFunc) Resolve(name ident.Identifier) (*cir.Decl, bool) {
	return f(name)
}

// Materializer adds declarations to a registry.
type Materializer struct {
	idents *ident.Table
	tracer trace.Tracer
	span   uint64
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithTracer emits a debug point per materialized declaration under parent.
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(m *Materializer) {
		m.tracer = t
		m.span = parent
	}
}

// New returns a Materializer interning primitive spellings and fallback
// parameter names into idents.
func New(idents *ident.Table, opts ...Option) *Materializer {
	m := &Materializer{idents: idents, tracer: trace.Nop}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Build materializes every declaration of set in its materialization order.
func (m *Materializer) Build(reg *registry.Registry, set *DeclSet) error {
	for _, d := range set.Ordered() {
		if err := m.Materialize(reg, d, set); err != nil {
			return err
		}
	}
	return nil
}

// Materialize adds the entity for d to reg. Non-constant variables produce
// nothing. Consistency failures are returned as *ConsistencyError.
func (m *Materializer) Materialize(reg *registry.Registry, d cir.Decl, res Resolver) error {
	trace.Point(m.tracer, trace.ScopeDecl, "materialize", d.Kind.String()+" "+d.Name(), m.span)

	var err error
	switch p := d.Data.(type) {
	case *cir.TypedefDecl:
		err = m.typedef(reg, p, res)
	case *cir.FunctionDecl:
		err = m.function(reg, p)
	case *cir.RecordDecl:
		err = m.record(reg, p)
	case *cir.EnumDecl:
		err = m.enum(reg, p)
	case *cir.VarDecl:
		err = m.variable(reg, p)
	default:
		return errors.New("materialize: declaration without payload")
	}
	var ce *ConsistencyError
	if errors.As(err, &ce) && ce.Decl == "" {
		ce.Decl = d.Name()
	}
	return err
}

func (m *Materializer) typedef(reg *registry.Registry, td *cir.TypedefDecl, res Resolver) error {
	switch u := td.Underlying.Data.(type) {
	case *cir.PointerType:
		switch p := u.Pointee.Data.(type) {
		case *cir.FunctionType:
			return m.functionTypedef(reg, td.Name, p, true)
		case *cir.RecordType:
			defined, err := recordDefined(p.Name, res)
			if err != nil {
				return err
			}
			if !defined {
				// typedef struct _X *X;
				reg.OpaqueHandleTypedefs.Put(registry.NewOpaqueHandleTypedef(td.Name))
				return nil
			}
		}
	case *cir.FunctionType:
		return m.functionTypedef(reg, td.Name, u, false)
	case *cir.RecordType:
		defined, err := recordDefined(u.Name, res)
		if err != nil {
			return err
		}
		if !defined {
			// typedef struct X X;
			reg.OpaqueTypedefs.Put(registry.NewOpaqueTypedef(td.Name))
			return nil
		}
	}

	ty, err := m.ConvertType(td.Underlying)
	if err != nil {
		return err
	}
	reg.Aliases.Put(registry.NewTypedef(td.Name, ty))
	return nil
}

// recordDefined reports whether the record called name has a definition
// in the unit.
func recordDefined(name cir.RecordName, res Resolver) (bool, error) {
	id, ok := name.Ident()
	if !ok {
		return false, &ConsistencyError{Kind: ErrAnonymousRecord, Name: name.String()}
	}
	if res == nil {
		return false, &ConsistencyError{Kind: ErrUnresolvedRecord, Name: id.String()}
	}
	d, ok := res.Resolve(id)
	if !ok {
		return false, &ConsistencyError{Kind: ErrUnresolvedRecord, Name: id.String()}
	}
	rec, ok := d.Record()
	if !ok {
		return false, &ConsistencyError{Kind: ErrUnresolvedRecord, Name: id.String()}
	}
	return rec.IsDefinition, nil
}

func (m *Materializer) functionTypedef(reg *registry.Registry, name ident.Identifier, f *cir.FunctionType, isPointer bool) error {
	params, err := m.params(f.Params)
	if err != nil {
		return err
	}
	result, err := m.ConvertType(f.Result)
	if err != nil {
		return err
	}
	reg.FunctionTypedefs.Put(registry.NewFunctionTypedef(name, params, result, isPointer))
	return nil
}

func (m *Materializer) function(reg *registry.Registry, fn *cir.FunctionDecl) error {
	params, err := m.params(fn.Params)
	if err != nil {
		return err
	}
	result, err := m.ConvertType(fn.Result)
	if err != nil {
		return err
	}
	reg.Commands.Put(registry.NewCommand(fn.Name, params, result))
	return nil
}

func (m *Materializer) record(reg *registry.Registry, rec *cir.RecordDecl) error {
	id, ok := rec.Name.Ident()
	if !ok {
		return &ConsistencyError{Kind: ErrAnonymousRecord, Name: rec.Name.String()}
	}
	if !rec.IsDefinition {
		return &ConsistencyError{Kind: ErrRecordNotDefined, Name: id.String()}
	}
	members := make([]registry.Member, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		ty, err := m.ConvertType(f.Type)
		if err != nil {
			return err
		}
		members = append(members, registry.NewMember(f.Name, ty))
	}
	if rec.IsStruct {
		reg.Structs.Put(registry.NewStructure(id, members))
	} else {
		reg.Unions.Put(registry.NewStructure(id, members))
	}
	return nil
}

func (m *Materializer) enum(reg *registry.Registry, e *cir.EnumDecl) error {
	if e.Anonymous {
		// enum { A = 1 }; only contributes constants
		ty, err := m.ConvertType(e.Type)
		if err != nil {
			return err
		}
		for _, c := range e.Members {
			reg.Constants.Put(registry.NewConstant(c.Name, ty, cir.HexLit(c.Value, "")))
		}
		return nil
	}
	variants := make([]registry.EnumVariant, 0, len(e.Members))
	for _, c := range e.Members {
		variants = append(variants, registry.NewEnumVariant(c.Name, cir.HexLit(c.Value, ""), c.Explicit))
	}
	reg.Enumerations.Put(registry.NewEnumeration(e.Name, variants))
	return nil
}

func (m *Materializer) variable(reg *registry.Registry, v *cir.VarDecl) error {
	if v.Init == nil {
		return nil
	}
	ty, err := m.ConvertType(v.Type)
	if err != nil {
		return err
	}
	reg.Constants.Put(registry.NewConstant(v.Name, ty, v.Init))
	return nil
}
