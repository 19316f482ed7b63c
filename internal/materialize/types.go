package materialize

import (
	"fmt"
	"strconv"
	"strings"

	"sennaar/internal/cir"
	"sennaar/internal/registry"
)

// ConvertType converts an IR type to a registry type. Primitives become
// identifiers spelled the C way; records, enums and typedefs become their
// names. Function prototypes, bare or behind a pointer, and anonymous records
// are rejected: callbacks must be spelled through a named typedef.
func (m *Materializer) ConvertType(t cir.Type) (registry.Type, error) {
	switch d := t.Data.(type) {
	case *cir.PrimitiveType:
		id, err := m.idents.Intern(d.Prim.String())
		if err != nil {
			return registry.Type{}, err
		}
		return registry.Named(id), nil
	case *cir.ArrayType:
		elem, err := m.ConvertType(d.Elem)
		if err != nil {
			return registry.Type{}, err
		}
		var length *cir.Expr
		if d.HasLength {
			length = cir.HexLit(d.Length, "")
		}
		return registry.Array(elem, length, t.Const), nil
	case *cir.PointerType:
		pointee, err := m.ConvertType(d.Pointee)
		if err != nil {
			return registry.Type{}, err
		}
		return registry.Pointer(pointee, d.Pointee.Const), nil
	case *cir.FunctionType:
		return registry.Type{}, &ConsistencyError{Kind: ErrFunctionType, Name: describeProto(d)}
	case *cir.RecordType:
		id, ok := d.Name.Ident()
		if !ok {
			return registry.Type{}, &ConsistencyError{Kind: ErrAnonymousRecord, Name: d.Name.String()}
		}
		return registry.Named(id), nil
	case *cir.EnumType:
		return registry.Named(d.Name), nil
	case *cir.TypedefType:
		return registry.Named(d.Name), nil
	}
	return registry.Type{}, fmt.Errorf("materialize: type %s has no payload", t.Kind)
}

// params converts prototype parameters; unnamed ones become param<i>.
func (m *Materializer) params(ps []cir.Param) ([]registry.Param, error) {
	out := make([]registry.Param, 0, len(ps))
	for i, p := range ps {
		name := p.Name
		if !p.HasName() {
			var err error
			name, err = m.idents.Intern("param" + strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
		}
		ty, err := m.ConvertType(p.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, registry.NewParam(name, ty))
	}
	return out, nil
}

func describeProto(f *cir.FunctionType) string {
	var b strings.Builder
	b.WriteString(f.Result.Kind.String())
	b.WriteString(" (")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.Kind.String())
		if p.HasName() {
			b.WriteByte(' ')
			b.WriteString(p.Name.String())
		}
	}
	if f.Variadic {
		if len(f.Params) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteByte(')')
	return b.String()
}
