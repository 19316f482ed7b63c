// Package registry is the canonical, serializable description of a C API:
// typedefs, commands, records, enumerations and constants keyed by
// identifier.
//
// Identifiers in a decoded document are interned into ident.Global(), so
// registries that are merged or compared must come from the same table.
package registry

import (
	"slices"
	"strings"

	"sennaar/internal/jsonx"
)

// Import names another registry this one depends on.
type Import struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
	Depend  bool    `json:"depend"`
}

func (i Import) equal(o Import) bool {
	if i.Name != o.Name || i.Depend != o.Depend || (i.Version == nil) != (o.Version == nil) {
		return false
	}
	return i.Version == nil || *i.Version == *o.Version
}

// Registry is the API description built from one or more translation units.
type Registry struct {
	Name     string            `json:"name"`
	Imports  []Import          `json:"imports"`
	Metadata map[string]string `json:"metadata"`

	Aliases              Entities[Typedef, *Typedef]                         `json:"aliases"`
	Bitmasks             Entities[Bitmask, *Bitmask]                         `json:"bitmasks"`
	Constants            Entities[Constant, *Constant]                       `json:"constants"`
	Commands             Entities[Command, *Command]                         `json:"commands"`
	Enumerations         Entities[Enumeration, *Enumeration]                 `json:"enumerations"`
	FunctionTypedefs     Entities[FunctionTypedef, *FunctionTypedef]         `json:"functionTypedefs"`
	OpaqueTypedefs       Entities[OpaqueTypedef, *OpaqueTypedef]             `json:"opaqueTypedefs"`
	OpaqueHandleTypedefs Entities[OpaqueHandleTypedef, *OpaqueHandleTypedef] `json:"opaqueHandleTypedefs"`
	Structs              Entities[Structure, *Structure]                     `json:"structs"`
	Unions               Entities[Structure, *Structure]                     `json:"unions"`

	// Ext is an opaque JSON payload owned by later passes.
	Ext jsonx.RawMessage `json:"ext"`
}

// New returns an empty registry.
func New(name string) *Registry {
	return &Registry{
		Name:     name,
		Imports:  []Import{},
		Metadata: map[string]string{},
		Ext:      jsonx.RawMessage("null"),
	}
}

// AddImport adds imp unless an equal import is present. Imports stay
// sorted by name.
func (r *Registry) AddImport(imp Import) {
	for _, have := range r.Imports {
		if have.equal(imp) {
			return
		}
	}
	r.Imports = append(r.Imports, imp)
	slices.SortStableFunc(r.Imports, func(a, b Import) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// Len returns the total number of entities.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.sections() {
		n += s.count()
	}
	return n
}

// Counts returns the number of entities per section, in document order.
func (r *Registry) Counts() []SectionCount {
	secs := r.sections()
	out := make([]SectionCount, len(secs))
	for i, s := range secs {
		out[i] = SectionCount{Section: s.name, Count: s.count()}
	}
	return out
}

// SectionCount is the size of one entity map.
type SectionCount struct {
	Section string
	Count   int
}
