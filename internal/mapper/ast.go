package mapper

import "sennaar/internal/cir"

// CursorKind classifies AST cursors. Only the kinds the mapper cares about
// are distinguished; everything else is CursorOther.
type CursorKind uint8

const (
	CursorInvalid CursorKind = iota
	CursorTranslationUnit
	CursorTypedefDecl
	CursorFunctionDecl
	CursorStructDecl
	CursorUnionDecl
	CursorEnumDecl
	CursorEnumConstantDecl
	CursorFieldDecl
	CursorVarDecl
	CursorParmDecl
	CursorTypeRef
	CursorAttribute
	CursorMacroDefinition
	CursorMacroExpansion
	CursorInclusionDirective
	CursorIntegerLiteral
	CursorFloatingLiteral
	CursorCharacterLiteral
	CursorStringLiteral
	CursorDeclRefExpr
	CursorMemberRefExpr
	CursorCallExpr
	CursorArraySubscriptExpr
	CursorParenExpr
	CursorUnaryOperator
	CursorUnaryExpr
	CursorBinaryOperator
	CursorCompoundAssignOperator
	CursorConditionalOperator
	CursorCStyleCastExpr
	CursorUnexposedExpr
	CursorInitListExpr
	CursorOther
)

var cursorKindNames = [...]string{
	CursorInvalid:                "Invalid",
	CursorTranslationUnit:        "TranslationUnit",
	CursorTypedefDecl:            "TypedefDecl",
	CursorFunctionDecl:           "FunctionDecl",
	CursorStructDecl:             "StructDecl",
	CursorUnionDecl:              "UnionDecl",
	CursorEnumDecl:               "EnumDecl",
	CursorEnumConstantDecl:       "EnumConstantDecl",
	CursorFieldDecl:              "FieldDecl",
	CursorVarDecl:                "VarDecl",
	CursorParmDecl:               "ParmDecl",
	CursorTypeRef:                "TypeRef",
	CursorAttribute:              "Attribute",
	CursorMacroDefinition:        "MacroDefinition",
	CursorMacroExpansion:         "MacroExpansion",
	CursorInclusionDirective:     "InclusionDirective",
	CursorIntegerLiteral:         "IntegerLiteral",
	CursorFloatingLiteral:        "FloatingLiteral",
	CursorCharacterLiteral:       "CharacterLiteral",
	CursorStringLiteral:          "StringLiteral",
	CursorDeclRefExpr:            "DeclRefExpr",
	CursorMemberRefExpr:          "MemberRefExpr",
	CursorCallExpr:               "CallExpr",
	CursorArraySubscriptExpr:     "ArraySubscriptExpr",
	CursorParenExpr:              "ParenExpr",
	CursorUnaryOperator:          "UnaryOperator",
	CursorUnaryExpr:              "UnaryExpr",
	CursorBinaryOperator:         "BinaryOperator",
	CursorCompoundAssignOperator: "CompoundAssignOperator",
	CursorConditionalOperator:    "ConditionalOperator",
	CursorCStyleCastExpr:         "CStyleCastExpr",
	CursorUnexposedExpr:          "UnexposedExpr",
	CursorInitListExpr:           "InitListExpr",
	CursorOther:                  "Other",
}

func (k CursorKind) String() string {
	if int(k) < len(cursorKindNames) {
		return cursorKindNames[k]
	}
	return "Unknown"
}

// IsDecl reports whether k is a declaration the mapper can turn into a cir.Decl.
func (k CursorKind) IsDecl() bool {
	switch k {
	case CursorTypedefDecl, CursorFunctionDecl, CursorStructDecl, CursorUnionDecl, CursorEnumDecl, CursorVarDecl:
		return true
	}
	return false
}

// IsRecord reports whether k declares a struct or union.
func (k CursorKind) IsRecord() bool {
	return k == CursorStructDecl || k == CursorUnionDecl
}

// TypeKind classifies front-end types.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeVoid
	TypeBool
	TypeCharS // plain char, signed on the target
	TypeCharU // plain char, unsigned on the target
	TypeSChar
	TypeUChar
	TypeShort
	TypeUShort
	TypeInt
	TypeUInt
	TypeLong
	TypeULong
	TypeLongLong
	TypeULongLong
	TypeFloat
	TypeDouble
	TypeLongDouble
	TypePointer
	TypeFunctionProto
	TypeFunctionNoProto
	TypeConstantArray
	TypeIncompleteArray
	TypeElaborated
	TypeTypedef
	TypeRecord
	TypeEnum
	TypeOther
)

var typeKindNames = [...]string{
	TypeInvalid:         "Invalid",
	TypeVoid:            "Void",
	TypeBool:            "Bool",
	TypeCharS:           "Char_S",
	TypeCharU:           "Char_U",
	TypeSChar:           "SChar",
	TypeUChar:           "UChar",
	TypeShort:           "Short",
	TypeUShort:          "UShort",
	TypeInt:             "Int",
	TypeUInt:            "UInt",
	TypeLong:            "Long",
	TypeULong:           "ULong",
	TypeLongLong:        "LongLong",
	TypeULongLong:       "ULongLong",
	TypeFloat:           "Float",
	TypeDouble:          "Double",
	TypeLongDouble:      "LongDouble",
	TypePointer:         "Pointer",
	TypeFunctionProto:   "FunctionProto",
	TypeFunctionNoProto: "FunctionNoProto",
	TypeConstantArray:   "ConstantArray",
	TypeIncompleteArray: "IncompleteArray",
	TypeElaborated:      "Elaborated",
	TypeTypedef:         "Typedef",
	TypeRecord:          "Record",
	TypeEnum:            "Enum",
	TypeOther:           "Other",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "Unknown"
}

var primitiveKinds = map[TypeKind]cir.Primitive{
	TypeVoid:       cir.PrimVoid,
	TypeBool:       cir.PrimBool,
	TypeCharS:      cir.PrimChar,
	TypeCharU:      cir.PrimChar,
	TypeSChar:      cir.PrimSChar,
	TypeUChar:      cir.PrimUChar,
	TypeShort:      cir.PrimShort,
	TypeUShort:     cir.PrimUShort,
	TypeInt:        cir.PrimInt,
	TypeUInt:       cir.PrimUInt,
	TypeLong:       cir.PrimLong,
	TypeULong:      cir.PrimULong,
	TypeLongLong:   cir.PrimLongLong,
	TypeULongLong:  cir.PrimULongLong,
	TypeFloat:      cir.PrimFloat,
	TypeDouble:     cir.PrimDouble,
	TypeLongDouble: cir.PrimLongDouble,
}

// EvalKind is the result class of compile-time evaluation.
type EvalKind uint8

const (
	EvalNone EvalKind = iota
	EvalInt
	EvalFloat
	EvalString
)

// EvalResult is a compile-time evaluated literal.
type EvalResult struct {
	Kind       EvalKind
	IsUnsigned bool
	Signed     int64
	Unsigned   uint64
	Float      float64
	Str        string
}

// Cursor is the mapper's view of an AST node. The front end adapter
// (internal/libclang) and the in-memory trees of internal/testkit implement it.
// The mapper never retains a Cursor past the call that consumed it.
type Cursor interface {
	Kind() CursorKind
	Spelling() string
	DisplayName() string
	// USR is the front end's unique source reference for declarations.
	USR() string
	IsAnonymous() bool
	IsDefinition() bool
	InSystemHeader() bool
	Location() cir.Location
	Children() []Cursor
	Type() Type
	// TypedefUnderlying is the aliased type of a TypedefDecl.
	TypedefUnderlying() Type
	// ResultType is the return type of a FunctionDecl.
	ResultType() Type
	// EnumConstantUnsigned is the value of an EnumConstantDecl.
	EnumConstantUnsigned() uint64
	// EnumIntegerType is the integer type backing an EnumDecl.
	EnumIntegerType() Type
	Evaluate() (EvalResult, bool)
	// Operator returns the operator spelling of UnaryOperator, UnaryExpr,
	// BinaryOperator, CompoundAssignOperator ("+", "<<=", "sizeof") and
	// MemberRefExpr ("." or "->"). postfix is set for x++ and x--.
	Operator() (spelling string, postfix bool)
}

// Type is the mapper's view of a front-end type.
type Type interface {
	Kind() TypeKind
	Spelling() string
	IsConst() bool
	Pointee() Type
	Result() Type
	Args() []Type
	IsVariadic() bool
	Element() Type
	// ArraySize is the length of a constant array, -1 otherwise.
	ArraySize() int64
	// Named is the type an Elaborated type wraps.
	Named() Type
	// Declaration is the cursor declaring a Record, Enum or Typedef type.
	Declaration() Cursor
	TypedefName() string
}
