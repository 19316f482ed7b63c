package registry

import (
	"sennaar/internal/cir"
	"sennaar/internal/ident"
)

// Common holds the fields every entity carries.
type Common struct {
	Name     ident.Identifier    `json:"name"`
	Metadata map[string]Metadata `json:"metadata,omitempty"`
	Doc      []string            `json:"doc,omitempty"`
	Platform *Platform           `json:"platform,omitempty"`
}

// Base returns the common part of an entity.
func (c *Common) Base() *Common { return c }

// Entity is implemented by every registry entity through Common.
type Entity interface {
	Base() *Common
}

// Typedef is a plain alias.
type Typedef struct {
	Common
	Type Type `json:"type"`
}

// Bitwidth is the storage width of a bitmask.
type Bitwidth uint8

const (
	Bit32 Bitwidth = 32
	Bit64 Bitwidth = 64
)

// Bitmask is a set of flags stored in an integer of Bitwidth bits.
type Bitmask struct {
	Common
	Bitwidth Bitwidth  `json:"bitwidth"`
	Bitflags []Bitflag `json:"bitflags"`
}

// Bitflag is one flag of a Bitmask.
type Bitflag struct {
	Common
	Value *cir.Expr `json:"value"`
}

// Param is a command or function typedef parameter.
type Param struct {
	Common
	Type     Type      `json:"type"`
	Optional bool      `json:"optional"`
	Len      *cir.Expr `json:"len,omitempty"`
}

// Command is a callable function.
type Command struct {
	Common
	Params       []Param           `json:"params"`
	Result       Type              `json:"result"`
	SuccessCodes []*cir.Expr       `json:"successCodes"`
	ErrorCodes   []*cir.Expr       `json:"errorCodes"`
	AliasTo      *ident.Identifier `json:"aliasTo,omitempty"`
}

// Constant is a named compile-time value.
type Constant struct {
	Common
	Type Type      `json:"type"`
	Expr *cir.Expr `json:"expr"`
}

// EnumVariant is one enumerator; Explicit records a source initializer.
type EnumVariant struct {
	Common
	Value    *cir.Expr `json:"value"`
	Explicit bool      `json:"explicit"`
}

// Enumeration is a C enum.
type Enumeration struct {
	Common
	Variants []EnumVariant `json:"variants"`
}

// FunctionTypedef is a typedef of a function type or function pointer type.
type FunctionTypedef struct {
	Common
	Params      []Param `json:"params"`
	Result      Type    `json:"result"`
	IsPointer   bool    `json:"isPointer"`
	IsNativeAPI bool    `json:"isNativeApi"`
}

// OpaqueTypedef aliases an undefined record by value: `typedef struct X X;`.
type OpaqueTypedef struct {
	Common
}

// OpaqueHandleTypedef aliases a pointer to an undefined record:
// `typedef struct X_T *X;`.
type OpaqueHandleTypedef struct {
	Common
	IsDispatchable bool `json:"isDispatchable"`
}

// Member is a struct or union field.
type Member struct {
	Common
	Type     Type      `json:"type"`
	Bits     *int      `json:"bits,omitempty"`
	Init     *cir.Expr `json:"init,omitempty"`
	Optional bool      `json:"optional"`
	Len      *cir.Expr `json:"len,omitempty"`
}

// Structure is a struct or union definition.
type Structure struct {
	Common
	Members []Member `json:"members"`
}

func named(name ident.Identifier) Common {
	return Common{Name: name}
}

// NewTypedef builds an alias entity.
func NewTypedef(name ident.Identifier, t Type) *Typedef {
	return &Typedef{Common: named(name), Type: t}
}

// NewCommand builds a command with no success or error codes.
func NewCommand(name ident.Identifier, params []Param, result Type) *Command {
	if params == nil {
		params = []Param{}
	}
	return &Command{Common: named(name), Params: params, Result: result, SuccessCodes: []*cir.Expr{}, ErrorCodes: []*cir.Expr{}}
}

// NewParam builds a required parameter.
func NewParam(name ident.Identifier, t Type) Param {
	return Param{Common: named(name), Type: t}
}

// NewConstant builds a constant entity.
func NewConstant(name ident.Identifier, t Type, expr *cir.Expr) *Constant {
	return &Constant{Common: named(name), Type: t, Expr: expr}
}

// NewEnumeration builds an enumeration entity.
func NewEnumeration(name ident.Identifier, variants []EnumVariant) *Enumeration {
	if variants == nil {
		variants = []EnumVariant{}
	}
	return &Enumeration{Common: named(name), Variants: variants}
}

// NewEnumVariant builds one enumerator.
func NewEnumVariant(name ident.Identifier, value *cir.Expr, explicit bool) EnumVariant {
	return EnumVariant{Common: named(name), Value: value, Explicit: explicit}
}

// NewFunctionTypedef builds a function typedef entity.
func NewFunctionTypedef(name ident.Identifier, params []Param, result Type, isPointer bool) *FunctionTypedef {
	if params == nil {
		params = []Param{}
	}
	return &FunctionTypedef{Common: named(name), Params: params, Result: result, IsPointer: isPointer}
}

// NewOpaqueTypedef builds an opaque typedef entity.
func NewOpaqueTypedef(name ident.Identifier) *OpaqueTypedef {
	return &OpaqueTypedef{Common: named(name)}
}

// NewOpaqueHandleTypedef builds an opaque handle entity.
func NewOpaqueHandleTypedef(name ident.Identifier) *OpaqueHandleTypedef {
	return &OpaqueHandleTypedef{Common: named(name)}
}

// NewStructure builds a struct or union entity.
func NewStructure(name ident.Identifier, members []Member) *Structure {
	if members == nil {
		members = []Member{}
	}
	return &Structure{Common: named(name), Members: members}
}

// NewMember builds a member with only a type.
func NewMember(name ident.Identifier, t Type) Member {
	return Member{Common: named(name), Type: t}
}

// NewBitmask builds a bitmask entity.
func NewBitmask(name ident.Identifier, width Bitwidth, flags []Bitflag) *Bitmask {
	if flags == nil {
		flags = []Bitflag{}
	}
	return &Bitmask{Common: named(name), Bitwidth: width, Bitflags: flags}
}
