// Package cir is the typed intermediate representation of C declarations,
// types and expressions produced by the mapper.
//
// Nodes are tree-owned: every parent exclusively owns its children. Names are
// ident.Identifier handles; anonymous records are referenced by USR until the
// namer resolves them.
package cir

import (
	"sennaar/internal/ident"
)

// Primitive enumerates C arithmetic and void types.
type Primitive uint8

const (
	PrimVoid Primitive = iota
	PrimBool
	PrimChar
	PrimSChar
	PrimUChar
	PrimShort
	PrimUShort
	PrimInt
	PrimUInt
	PrimLong
	PrimULong
	PrimLongLong
	PrimULongLong
	PrimFloat
	PrimDouble
	PrimLongDouble
)

// String returns the C spelling of the primitive.
func (p Primitive) String() string {
	switch p {
	case PrimVoid:
		return "void"
	case PrimBool:
		return "_Bool"
	case PrimChar:
		return "char"
	case PrimSChar:
		return "signed char"
	case PrimUChar:
		return "unsigned char"
	case PrimShort:
		return "short"
	case PrimUShort:
		return "unsigned short"
	case PrimInt:
		return "int"
	case PrimUInt:
		return "unsigned int"
	case PrimLong:
		return "long"
	case PrimULong:
		return "unsigned long"
	case PrimLongLong:
		return "long long"
	case PrimULongLong:
		return "unsigned long long"
	case PrimFloat:
		return "float"
	case PrimDouble:
		return "double"
	case PrimLongDouble:
		return "long double"
	default:
		return "unknown"
	}
}

// TypeKind enumerates the base type variants.
type TypeKind uint8

const (
	TypePrimitive TypeKind = iota
	TypeArray
	TypePointer
	TypeFunction
	TypeRecord
	TypeEnum
	TypeTypedef
)

func (k TypeKind) String() string {
	switch k {
	case TypePrimitive:
		return "Primitive"
	case TypeArray:
		return "Array"
	case TypePointer:
		return "Pointer"
	case TypeFunction:
		return "FunctionPrototype"
	case TypeRecord:
		return "Record"
	case TypeEnum:
		return "Enum"
	case TypeTypedef:
		return "Typedef"
	default:
		return "Unknown"
	}
}

// Type is a possibly const-qualified C type.
type Type struct {
	Const bool
	Kind  TypeKind
	Data  TypeData // Kind-specific payload
}

// TypeData is implemented by the payload of each TypeKind.
type TypeData interface {
	typeData()
}

// PrimitiveType holds data for TypePrimitive.
type PrimitiveType struct {
	Prim Primitive
}

// ArrayType holds data for TypeArray. HasLength is false for `T[]`.
type ArrayType struct {
	Elem      Type
	Length    uint64
	HasLength bool
}

// PointerType holds data for TypePointer.
type PointerType struct {
	Pointee Type
}

// FunctionType holds data for TypeFunction. Parameter names are empty
// until enrichment fills them from declaration cursors.
type FunctionType struct {
	Result   Type
	Params   []Param
	Variadic bool
}

// RecordType holds data for TypeRecord.
type RecordType struct {
	IsStruct bool
	Name     RecordName
}

// EnumType holds data for TypeEnum.
type EnumType struct {
	Name ident.Identifier
}

// TypedefType holds data for TypeTypedef.
type TypedefType struct {
	Name ident.Identifier
}

func (*PrimitiveType) typeData() {}
func (*ArrayType) typeData()     {}
func (*PointerType) typeData()   {}
func (*FunctionType) typeData()  {}
func (*RecordType) typeData()    {}
func (*EnumType) typeData()      {}
func (*TypedefType) typeData()   {}

// Param is a function prototype parameter. Name is zero when unknown.
type Param struct {
	Name ident.Identifier
	Type Type
}

// HasName reports whether the parameter carries a source name.
func (p Param) HasName() bool {
	return !p.Name.IsZero()
}

// MakePrimitive builds a primitive type.
func MakePrimitive(p Primitive) Type {
	return Type{Kind: TypePrimitive, Data: &PrimitiveType{Prim: p}}
}

// MakePointer builds a pointer to pointee.
func MakePointer(pointee Type) Type {
	return Type{Kind: TypePointer, Data: &PointerType{Pointee: pointee}}
}

// MakeArray builds `elem[length]`.
func MakeArray(elem Type, length uint64) Type {
	return Type{Kind: TypeArray, Data: &ArrayType{Elem: elem, Length: length, HasLength: true}}
}

// MakeIncompleteArray builds `elem[]`.
func MakeIncompleteArray(elem Type) Type {
	return Type{Kind: TypeArray, Data: &ArrayType{Elem: elem}}
}

// MakeFunction builds a function prototype.
func MakeFunction(result Type, params []Param, variadic bool) Type {
	return Type{Kind: TypeFunction, Data: &FunctionType{Result: result, Params: params, Variadic: variadic}}
}

// MakeRecord builds a struct or union reference.
func MakeRecord(isStruct bool, name RecordName) Type {
	return Type{Kind: TypeRecord, Data: &RecordType{IsStruct: isStruct, Name: name}}
}

// MakeEnum builds an enum reference.
func MakeEnum(name ident.Identifier) Type {
	return Type{Kind: TypeEnum, Data: &EnumType{Name: name}}
}

// MakeTypedef builds a typedef-name reference.
func MakeTypedef(name ident.Identifier) Type {
	return Type{Kind: TypeTypedef, Data: &TypedefType{Name: name}}
}

// WithConst returns t with the const qualifier set to c.
func (t Type) WithConst(c bool) Type {
	t.Const = c
	return t
}

// Primitive returns the payload if t is a primitive.
func (t Type) Primitive() (*PrimitiveType, bool) {
	d, ok := t.Data.(*PrimitiveType)
	return d, ok
}

// Array returns the payload if t is an array.
func (t Type) Array() (*ArrayType, bool) {
	d, ok := t.Data.(*ArrayType)
	return d, ok
}

// Pointer returns the payload if t is a pointer.
func (t Type) Pointer() (*PointerType, bool) {
	d, ok := t.Data.(*PointerType)
	return d, ok
}

// Function returns the payload if t is a function prototype.
func (t Type) Function() (*FunctionType, bool) {
	d, ok := t.Data.(*FunctionType)
	return d, ok
}

// Record returns the payload if t is a struct or union reference.
func (t Type) Record() (*RecordType, bool) {
	d, ok := t.Data.(*RecordType)
	return d, ok
}

// Enum returns the payload if t is an enum reference.
func (t Type) Enum() (*EnumType, bool) {
	d, ok := t.Data.(*EnumType)
	return d, ok
}

// Typedef returns the payload if t is a typedef-name reference.
func (t Type) Typedef() (*TypedefType, bool) {
	d, ok := t.Data.(*TypedefType)
	return d, ok
}

// Clone returns a deep copy of t.
func (t Type) Clone() Type {
	out := t
	switch d := t.Data.(type) {
	case *PrimitiveType:
		cp := *d
		out.Data = &cp
	case *ArrayType:
		cp := *d
		cp.Elem = d.Elem.Clone()
		out.Data = &cp
	case *PointerType:
		out.Data = &PointerType{Pointee: d.Pointee.Clone()}
	case *FunctionType:
		cp := FunctionType{Result: d.Result.Clone(), Variadic: d.Variadic}
		if d.Params != nil {
			cp.Params = make([]Param, len(d.Params))
			for i, p := range d.Params {
				cp.Params[i] = Param{Name: p.Name, Type: p.Type.Clone()}
			}
		}
		out.Data = &cp
	case *RecordType:
		cp := *d
		out.Data = &cp
	case *EnumType:
		cp := *d
		out.Data = &cp
	case *TypedefType:
		cp := *d
		out.Data = &cp
	}
	return out
}
