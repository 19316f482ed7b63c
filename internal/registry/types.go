package registry

import (
	"fmt"

	"sennaar/internal/cir"
	"sennaar/internal/ident"
	"sennaar/internal/jsonx"
)

// TypeKind tags the variants of Type.
type TypeKind uint8

const (
	TypeIdentifier TypeKind = iota + 1
	TypeArray
	TypePointer
)

var typeKindNames = map[TypeKind]string{
	TypeIdentifier: "IdentifierType",
	TypeArray:      "ArrayType",
	TypePointer:    "PointerType",
}

func (k TypeKind) String() string {
	if s, ok := typeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TypeKind(%d)", uint8(k))
}

// Type is a registry type: a name, an array or a pointer.
type Type struct {
	Kind TypeKind
	Data TypeData
}

// TypeData is implemented by the payload of each TypeKind.
type TypeData interface {
	registryType()
}

// IdentifierType names a primitive, typedef, record or enum.
type IdentifierType struct {
	Ident ident.Identifier `json:"ident"`
}

// ArrayType is an array; Length is absent for arrays of unknown size.
type ArrayType struct {
	Element Type      `json:"element"`
	Length  *cir.Expr `json:"length,omitempty"`
	IsConst bool      `json:"isConst"`
}

// PointerType is a pointer. IsConst qualifies the pointee.
type PointerType struct {
	Pointee      Type `json:"pointee"`
	IsConst      bool `json:"isConst"`
	PointerToOne bool `json:"pointerToOne"`
	Nullable     bool `json:"nullable"`
}

func (*IdentifierType) registryType() {}
func (*ArrayType) registryType()      {}
func (*PointerType) registryType()    {}

// Named builds an identifier type.
func Named(id ident.Identifier) Type {
	return Type{Kind: TypeIdentifier, Data: &IdentifierType{Ident: id}}
}

// Array builds an array type.
func Array(elem Type, length *cir.Expr, isConst bool) Type {
	return Type{Kind: TypeArray, Data: &ArrayType{Element: elem, Length: length, IsConst: isConst}}
}

// Pointer builds a pointer type.
func Pointer(pointee Type, isConst bool) Type {
	return Type{Kind: TypePointer, Data: &PointerType{Pointee: pointee, IsConst: isConst}}
}

// Pointer returns the pointer payload.
func (t Type) Pointer() (*PointerType, bool) {
	p, ok := t.Data.(*PointerType)
	return p, ok
}

// Array returns the array payload.
func (t Type) Array() (*ArrayType, bool) {
	p, ok := t.Data.(*ArrayType)
	return p, ok
}

// Ident returns the identifier payload.
func (t Type) Ident() (ident.Identifier, bool) {
	p, ok := t.Data.(*IdentifierType)
	if !ok {
		return ident.Identifier{}, false
	}
	return p.Ident, true
}

// String renders t in C-like notation for diagnostics.
func (t Type) String() string {
	switch d := t.Data.(type) {
	case *IdentifierType:
		return d.Ident.String()
	case *ArrayType:
		if d.Length == nil {
			return d.Element.String() + "[]"
		}
		if lit, ok := d.Length.Data.(*cir.IntLiteral); ok {
			return d.Element.String() + "[" + lit.Value + lit.Suffix + "]"
		}
		return d.Element.String() + "[...]"
	case *PointerType:
		if d.IsConst {
			return "const " + d.Pointee.String() + "*"
		}
		return d.Pointee.String() + "*"
	}
	return "<invalid>"
}

func (t Type) MarshalJSON() ([]byte, error) {
	name, ok := typeKindNames[t.Kind]
	if !ok || t.Data == nil {
		return nil, fmt.Errorf("registry: cannot encode type of kind %s", t.Kind)
	}
	body, err := jsonx.Marshal(t.Data)
	if err != nil {
		return nil, err
	}
	return jsonx.WithTag(name, body)
}

func (t *Type) UnmarshalJSON(data []byte) error {
	tag, err := jsonx.ReadTag(data)
	if err != nil {
		return fmt.Errorf("registry type: %w", err)
	}
	var payload TypeData
	switch tag {
	case "IdentifierType":
		t.Kind, payload = TypeIdentifier, &IdentifierType{}
	case "ArrayType":
		t.Kind, payload = TypeArray, &ArrayType{}
	case "PointerType":
		t.Kind, payload = TypePointer, &PointerType{}
	default:
		return fmt.Errorf("registry type: unknown kind %q", tag)
	}
	if err := jsonx.Unmarshal(data, payload); err != nil {
		return err
	}
	t.Data = payload
	return nil
}
