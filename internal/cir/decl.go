package cir

import (
	"fmt"

	"sennaar/internal/ident"
)

// Location is a source position reported by the front end.
type Location struct {
	File   string
	Line   uint32
	Column uint32
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// DeclKind enumerates declaration variants.
type DeclKind uint8

const (
	DeclTypedef DeclKind = iota
	DeclFunction
	DeclRecord
	DeclEnum
	DeclVar
)

func (k DeclKind) String() string {
	switch k {
	case DeclTypedef:
		return "Typedef"
	case DeclFunction:
		return "Function"
	case DeclRecord:
		return "Record"
	case DeclEnum:
		return "Enum"
	case DeclVar:
		return "Var"
	default:
		return "Unknown"
	}
}

// Decl is one C declaration.
type Decl struct {
	Kind DeclKind
	Loc  Location
	Data DeclData
}

// DeclData is implemented by the payload of each DeclKind.
type DeclData interface {
	declData()
}

// TypedefDecl holds data for DeclTypedef.
type TypedefDecl struct {
	Name       ident.Identifier
	Underlying Type
}

// FunctionDecl holds data for DeclFunction.
type FunctionDecl struct {
	Name     ident.Identifier
	Result   Type
	Params   []Param
	Variadic bool
}

// FieldDecl is one member of a record.
type FieldDecl struct {
	Name ident.Identifier
	Type Type
}

// RecordDecl holds data for DeclRecord.
//
// Subrecords lists anonymous records nested directly in this record that no
// field type reaches.
type RecordDecl struct {
	IsStruct     bool
	Name         RecordName
	Fields       []FieldDecl
	IsDefinition bool
	Subrecords   []RecordName
}

// EnumConstant is one enumerator. Explicit is set when the source gave an
// initializer.
type EnumConstant struct {
	Name     ident.Identifier
	Explicit bool
	Value    uint64
}

// EnumDecl holds data for DeclEnum. Anonymous enums have a zero Name.
type EnumDecl struct {
	Name      ident.Identifier
	Anonymous bool
	Type      Type
	Members   []EnumConstant
}

// VarDecl holds data for DeclVar. Init is only mapped for const variables.
type VarDecl struct {
	Name ident.Identifier
	Type Type
	Init *Expr
}

func (*TypedefDecl) declData()  {}
func (*FunctionDecl) declData() {}
func (*RecordDecl) declData()   {}
func (*EnumDecl) declData()     {}
func (*VarDecl) declData()      {}

// Typedef returns the payload if d is a typedef.
func (d Decl) Typedef() (*TypedefDecl, bool) {
	p, ok := d.Data.(*TypedefDecl)
	return p, ok
}

// Function returns the payload if d is a function.
func (d Decl) Function() (*FunctionDecl, bool) {
	p, ok := d.Data.(*FunctionDecl)
	return p, ok
}

// Record returns the payload if d is a struct or union.
func (d Decl) Record() (*RecordDecl, bool) {
	p, ok := d.Data.(*RecordDecl)
	return p, ok
}

// Enum returns the payload if d is an enum.
func (d Decl) Enum() (*EnumDecl, bool) {
	p, ok := d.Data.(*EnumDecl)
	return p, ok
}

// Var returns the payload if d is a variable.
func (d Decl) Var() (*VarDecl, bool) {
	p, ok := d.Data.(*VarDecl)
	return p, ok
}

// Name returns a printable name of the declaration.
func (d Decl) Name() string {
	switch p := d.Data.(type) {
	case *TypedefDecl:
		return p.Name.String()
	case *FunctionDecl:
		return p.Name.String()
	case *RecordDecl:
		return p.Name.String()
	case *EnumDecl:
		if p.Anonymous {
			return "<anonymous enum>"
		}
		return p.Name.String()
	case *VarDecl:
		return p.Name.String()
	default:
		return "<invalid>"
	}
}

// NewTypedef builds a typedef declaration.
func NewTypedef(loc Location, name ident.Identifier, underlying Type) Decl {
	return Decl{Kind: DeclTypedef, Loc: loc, Data: &TypedefDecl{Name: name, Underlying: underlying}}
}

// NewFunction builds a function declaration.
func NewFunction(loc Location, name ident.Identifier, result Type, params []Param, variadic bool) Decl {
	return Decl{Kind: DeclFunction, Loc: loc, Data: &FunctionDecl{Name: name, Result: result, Params: params, Variadic: variadic}}
}

// NewRecord builds a record declaration.
func NewRecord(loc Location, rec *RecordDecl) Decl {
	return Decl{Kind: DeclRecord, Loc: loc, Data: rec}
}

// NewEnum builds an enum declaration.
func NewEnum(loc Location, enum *EnumDecl) Decl {
	return Decl{Kind: DeclEnum, Loc: loc, Data: enum}
}

// NewVar builds a variable declaration.
func NewVar(loc Location, name ident.Identifier, ty Type, init *Expr) Decl {
	return Decl{Kind: DeclVar, Loc: loc, Data: &VarDecl{Name: name, Type: ty, Init: init}}
}
