// Package mapper turns front-end AST cursors into cir declarations.
//
// Nested records found while mapping a struct or union body are appended to
// an out-of-band extras slice ahead of their parent, so a unit's declaration
// sequence is in discovery (completion) order. Function-pointer parameter
// names, which type introspection loses, are restored from the ParmDecl
// cursors at the declaration site.
package mapper

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/trace"
)

// Mapper maps cursors of one or more translation units. It holds no per-unit
// state and may be shared across goroutines when its table is.
type Mapper struct {
	idents *ident.Table
	tracer trace.Tracer
	span   uint64
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithTracer emits a debug point per mapped declaration under parent.
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(m *Mapper) {
		m.tracer = t
		m.span = parent
	}
}

// New returns a Mapper interning every name into idents.
func New(idents *ident.Table, opts ...Option) *Mapper {
	m := &Mapper{idents: idents, tracer: trace.Nop}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Idents returns the table names are interned into.
func (m *Mapper) Idents() *ident.Table {
	return m.idents
}

// MapDecl maps one declaration cursor. Nested records and enums discovered
// along the way are appended to extra.
func (m *Mapper) MapDecl(c Cursor, extra *[]cir.Decl) (cir.Decl, error) {
	var (
		d   cir.Decl
		err error
	)
	switch c.Kind() {
	case CursorTypedefDecl:
		d, err = m.mapTypedef(c, extra)
	case CursorFunctionDecl:
		d, err = m.mapFunction(c)
	case CursorStructDecl, CursorUnionDecl:
		d, err = m.mapRecord(c, extra)
	case CursorEnumDecl:
		d, err = m.mapEnum(c)
	case CursorVarDecl:
		d, err = m.mapVar(c)
	default:
		return cir.Decl{}, unsupported(c, fmt.Sprintf("top-level declaration %q", c.Spelling()))
	}
	if err != nil {
		return cir.Decl{}, err
	}
	trace.Point(m.tracer, trace.ScopeDecl, d.Kind.String(), d.Name(), m.span)
	return d, nil
}

// intern validates and interns text read from the AST.
func (m *Mapper) intern(c Cursor, text string) (ident.Identifier, error) {
	if !utf8.ValidString(text) {
		return ident.Identifier{}, &MappingError{Kind: ErrTextDecode, Cursor: c.Kind(), Loc: c.Location(), Detail: fmt.Sprintf("invalid UTF-8 in %q", text)}
	}
	id, err := m.idents.Intern(norm.NFC.String(text))
	if err != nil {
		return ident.Identifier{}, &MappingError{Kind: ErrTextDecode, Cursor: c.Kind(), Loc: c.Location(), Detail: fmt.Sprintf("%q", text), Err: err}
	}
	return id, nil
}

func (m *Mapper) mapTypedef(c Cursor, extra *[]cir.Decl) (cir.Decl, error) {
	name, err := m.intern(c, c.Spelling())
	if err != nil {
		return cir.Decl{}, err
	}
	under := c.TypedefUnderlying()
	ty, err := m.mapType(c, under)
	if err != nil {
		return cir.Decl{}, err
	}
	if err := m.enrich(&ty, parmDecls(c)); err != nil {
		return cir.Decl{}, err
	}
	if err := m.forwardRecord(under, extra); err != nil {
		return cir.Decl{}, err
	}
	return cir.NewTypedef(c.Location(), name, ty), nil
}

// forwardRecord emits the non-definition record a typedef names through an
// elaborated specifier (`typedef struct _H *H;`), so later classification can
// resolve it even when the front end never surfaces it at top level.
func (m *Mapper) forwardRecord(t Type, extra *[]cir.Decl) error {
	for t != nil {
		switch t.Kind() {
		case TypeElaborated:
			t = t.Named()
			continue
		case TypePointer:
			t = t.Pointee()
			continue
		case TypeRecord:
			decl := t.Declaration()
			if decl == nil || !decl.Kind().IsRecord() || decl.IsDefinition() || decl.IsAnonymous() {
				return nil
			}
			fwd, err := m.mapRecord(decl, extra)
			if err != nil {
				return err
			}
			*extra = append(*extra, fwd)
		}
		return nil
	}
	return nil
}

func (m *Mapper) mapFunction(c Cursor) (cir.Decl, error) {
	name, err := m.intern(c, c.Spelling())
	if err != nil {
		return cir.Decl{}, err
	}
	result, err := m.mapType(c, c.ResultType())
	if err != nil {
		return cir.Decl{}, err
	}
	parms := parmDecls(c)
	params := make([]cir.Param, 0, len(parms))
	for _, p := range parms {
		param, err := m.mapParam(p)
		if err != nil {
			return cir.Decl{}, err
		}
		params = append(params, param)
	}
	variadic := false
	if ft := c.Type(); ft != nil && ft.Kind() == TypeFunctionProto {
		variadic = ft.IsVariadic()
	}
	return cir.NewFunction(c.Location(), name, result, params, variadic), nil
}

func (m *Mapper) mapParam(c Cursor) (cir.Param, error) {
	if c.Kind() != CursorParmDecl {
		return cir.Param{}, unexpected(c, CursorParmDecl)
	}
	var p cir.Param
	if s := c.Spelling(); s != "" {
		name, err := m.intern(c, s)
		if err != nil {
			return cir.Param{}, err
		}
		p.Name = name
	}
	ty, err := m.mapType(c, c.Type())
	if err != nil {
		return cir.Param{}, err
	}
	if err := m.enrich(&ty, parmDecls(c)); err != nil {
		return cir.Param{}, err
	}
	p.Type = ty
	return p, nil
}

func (m *Mapper) mapRecord(c Cursor, extra *[]cir.Decl) (cir.Decl, error) {
	if !c.Kind().IsRecord() {
		return cir.Decl{}, unexpected(c, CursorStructDecl)
	}
	rec := &cir.RecordDecl{
		IsStruct:     c.Kind() == CursorStructDecl,
		IsDefinition: c.IsDefinition(),
	}
	if c.IsAnonymous() {
		rec.Name = cir.Anonymous(c.USR())
	} else {
		name, err := m.intern(c, c.Spelling())
		if err != nil {
			return cir.Decl{}, err
		}
		rec.Name = cir.Named(name)
	}

	var nested []string
	for _, child := range c.Children() {
		switch k := child.Kind(); {
		case k == CursorFieldDecl:
			if child.Spelling() == "" {
				continue // unnamed bit-field padding
			}
			f, err := m.mapField(child)
			if err != nil {
				return cir.Decl{}, err
			}
			rec.Fields = append(rec.Fields, f)
		case k.IsRecord():
			sub, err := m.mapRecord(child, extra)
			if err != nil {
				return cir.Decl{}, err
			}
			*extra = append(*extra, sub)
			if usr, ok := sub.Data.(*cir.RecordDecl).Name.USR(); ok {
				nested = append(nested, usr)
			}
		case k == CursorEnumDecl:
			sub, err := m.mapEnum(child)
			if err != nil {
				return cir.Decl{}, err
			}
			*extra = append(*extra, sub)
		case k == CursorAttribute:
		default:
			return cir.Decl{}, unexpected(child, CursorFieldDecl)
		}
	}

	// a field naming the anonymous record absorbs it (indirect field rule)
	for _, usr := range nested {
		reached := false
		for _, f := range rec.Fields {
			if cir.ReferencesUSR(f.Type, usr) {
				reached = true
				break
			}
		}
		if !reached {
			rec.Subrecords = append(rec.Subrecords, cir.Anonymous(usr))
		}
	}
	return cir.NewRecord(c.Location(), rec), nil
}

func (m *Mapper) mapField(c Cursor) (cir.FieldDecl, error) {
	if c.Kind() != CursorFieldDecl {
		return cir.FieldDecl{}, unexpected(c, CursorFieldDecl)
	}
	name, err := m.intern(c, c.Spelling())
	if err != nil {
		return cir.FieldDecl{}, err
	}
	ty, err := m.mapType(c, c.Type())
	if err != nil {
		return cir.FieldDecl{}, err
	}
	if err := m.enrich(&ty, parmDecls(c)); err != nil {
		return cir.FieldDecl{}, err
	}
	return cir.FieldDecl{Name: name, Type: ty}, nil
}

func (m *Mapper) mapEnum(c Cursor) (cir.Decl, error) {
	if c.Kind() != CursorEnumDecl {
		return cir.Decl{}, unexpected(c, CursorEnumDecl)
	}
	enum := &cir.EnumDecl{Anonymous: c.IsAnonymous()}
	if !enum.Anonymous {
		name, err := m.intern(c, c.Spelling())
		if err != nil {
			return cir.Decl{}, err
		}
		enum.Name = name
	}
	ty, err := m.mapType(c, c.EnumIntegerType())
	if err != nil {
		return cir.Decl{}, err
	}
	enum.Type = ty

	for _, child := range c.Children() {
		switch child.Kind() {
		case CursorEnumConstantDecl:
			name, err := m.intern(child, child.Spelling())
			if err != nil {
				return cir.Decl{}, err
			}
			enum.Members = append(enum.Members, cir.EnumConstant{
				Name:     name,
				Explicit: len(child.Children()) > 0,
				Value:    child.EnumConstantUnsigned(),
			})
		case CursorAttribute:
		default:
			return cir.Decl{}, unexpected(child, CursorEnumConstantDecl)
		}
	}
	return cir.NewEnum(c.Location(), enum), nil
}

func (m *Mapper) mapVar(c Cursor) (cir.Decl, error) {
	name, err := m.intern(c, c.Spelling())
	if err != nil {
		return cir.Decl{}, err
	}
	ty, err := m.mapType(c, c.Type())
	if err != nil {
		return cir.Decl{}, err
	}
	if err := m.enrich(&ty, parmDecls(c)); err != nil {
		return cir.Decl{}, err
	}

	var init *cir.Expr
	if ty.Const {
		if e := initializer(c); e != nil && e.Kind() != CursorInitListExpr {
			init, err = m.MapExpr(e)
			if err != nil {
				return cir.Decl{}, err
			}
		}
	}
	return cir.NewVar(c.Location(), name, ty, init), nil
}

// initializer returns the expression child of a VarDecl, if any.
func initializer(c Cursor) Cursor {
	for _, child := range c.Children() {
		switch child.Kind() {
		case CursorTypeRef, CursorAttribute, CursorParmDecl:
			continue
		}
		return child
	}
	return nil
}

func parmDecls(c Cursor) []Cursor {
	var out []Cursor
	for _, child := range c.Children() {
		if child.Kind() == CursorParmDecl {
			out = append(out, child)
		}
	}
	return out
}

func arrayLength(c Cursor, t Type) (uint64, error) {
	n, err := safecast.Conv[uint64](t.ArraySize())
	if err != nil {
		return 0, &MappingError{Kind: ErrUnsupportedConstruct, Cursor: c.Kind(), Loc: c.Location(), Detail: "array size of " + t.Spelling(), Err: err}
	}
	return n, nil
}
