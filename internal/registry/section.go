package registry

import (
	"bytes"

	"sennaar/internal/ident"
	"sennaar/internal/jsonx"
)

// section is a type-erased view of one entity map, paired by name with the
// same map of another registry.
type section struct {
	name    string
	count   func() int
	collide func(o *Registry) []ident.Identifier
	absorb  func(o *Registry)
	// dropIdentical deletes entities equal to the same-named entity of o.
	dropIdentical func(o *Registry) (int, error)
}

func sectionOf[T any, P entityPtr[T]](name string, mine *Entities[T, P], pick func(*Registry) *Entities[T, P]) section {
	return section{
		name:  name,
		count: mine.Len,
		collide: func(o *Registry) []ident.Identifier {
			var out []ident.Identifier
			for _, k := range pick(o).Keys() {
				if mine.Has(k) {
					out = append(out, k)
				}
			}
			return out
		},
		absorb: func(o *Registry) {
			for _, v := range pick(o).Values() {
				mine.Put(v)
			}
		},
		dropIdentical: func(o *Registry) (int, error) {
			theirs := pick(o)
			dropped := 0
			for _, k := range mine.Keys() {
				other, ok := theirs.Get(k)
				if !ok {
					continue
				}
				v, _ := mine.Get(k)
				a, err := jsonx.Marshal(v)
				if err != nil {
					return dropped, err
				}
				b, err := jsonx.Marshal(other)
				if err != nil {
					return dropped, err
				}
				if bytes.Equal(a, b) {
					mine.Delete(k)
					dropped++
				}
			}
			return dropped, nil
		},
	}
}

func (r *Registry) sections() []section {
	return []section{
		sectionOf("aliases", &r.Aliases, func(o *Registry) *Entities[Typedef, *Typedef] { return &o.Aliases }),
		sectionOf("bitmasks", &r.Bitmasks, func(o *Registry) *Entities[Bitmask, *Bitmask] { return &o.Bitmasks }),
		sectionOf("constants", &r.Constants, func(o *Registry) *Entities[Constant, *Constant] { return &o.Constants }),
		sectionOf("commands", &r.Commands, func(o *Registry) *Entities[Command, *Command] { return &o.Commands }),
		sectionOf("enumerations", &r.Enumerations, func(o *Registry) *Entities[Enumeration, *Enumeration] { return &o.Enumerations }),
		sectionOf("functionTypedefs", &r.FunctionTypedefs, func(o *Registry) *Entities[FunctionTypedef, *FunctionTypedef] {
			return &o.FunctionTypedefs
		}),
		sectionOf("opaqueTypedefs", &r.OpaqueTypedefs, func(o *Registry) *Entities[OpaqueTypedef, *OpaqueTypedef] {
			return &o.OpaqueTypedefs
		}),
		sectionOf("opaqueHandleTypedefs", &r.OpaqueHandleTypedefs, func(o *Registry) *Entities[OpaqueHandleTypedef, *OpaqueHandleTypedef] {
			return &o.OpaqueHandleTypedefs
		}),
		sectionOf("structs", &r.Structs, func(o *Registry) *Entities[Structure, *Structure] { return &o.Structs }),
		sectionOf("unions", &r.Unions, func(o *Registry) *Entities[Structure, *Structure] { return &o.Unions }),
	}
}
