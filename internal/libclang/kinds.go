//go:build libclang

package libclang

import (
	"github.com/go-clang/clang-v13/clang"

	"sennaar/internal/mapper"
)

var cursorKinds = map[clang.CursorKind]mapper.CursorKind{
	clang.Cursor_TranslationUnit:        mapper.CursorTranslationUnit,
	clang.Cursor_TypedefDecl:            mapper.CursorTypedefDecl,
	clang.Cursor_FunctionDecl:           mapper.CursorFunctionDecl,
	clang.Cursor_StructDecl:             mapper.CursorStructDecl,
	clang.Cursor_UnionDecl:              mapper.CursorUnionDecl,
	clang.Cursor_EnumDecl:               mapper.CursorEnumDecl,
	clang.Cursor_EnumConstantDecl:       mapper.CursorEnumConstantDecl,
	clang.Cursor_FieldDecl:              mapper.CursorFieldDecl,
	clang.Cursor_VarDecl:                mapper.CursorVarDecl,
	clang.Cursor_ParmDecl:               mapper.CursorParmDecl,
	clang.Cursor_TypeRef:                mapper.CursorTypeRef,
	clang.Cursor_MacroDefinition:        mapper.CursorMacroDefinition,
	clang.Cursor_MacroExpansion:         mapper.CursorMacroExpansion,
	clang.Cursor_InclusionDirective:     mapper.CursorInclusionDirective,
	clang.Cursor_IntegerLiteral:         mapper.CursorIntegerLiteral,
	clang.Cursor_FloatingLiteral:        mapper.CursorFloatingLiteral,
	clang.Cursor_CharacterLiteral:       mapper.CursorCharacterLiteral,
	clang.Cursor_StringLiteral:          mapper.CursorStringLiteral,
	clang.Cursor_DeclRefExpr:            mapper.CursorDeclRefExpr,
	clang.Cursor_MemberRefExpr:          mapper.CursorMemberRefExpr,
	clang.Cursor_CallExpr:               mapper.CursorCallExpr,
	clang.Cursor_ArraySubscriptExpr:     mapper.CursorArraySubscriptExpr,
	clang.Cursor_ParenExpr:              mapper.CursorParenExpr,
	clang.Cursor_UnaryOperator:          mapper.CursorUnaryOperator,
	clang.Cursor_UnaryExpr:              mapper.CursorUnaryExpr,
	clang.Cursor_BinaryOperator:         mapper.CursorBinaryOperator,
	clang.Cursor_CompoundAssignOperator: mapper.CursorCompoundAssignOperator,
	clang.Cursor_ConditionalOperator:    mapper.CursorConditionalOperator,
	clang.Cursor_CStyleCastExpr:         mapper.CursorCStyleCastExpr,
	clang.Cursor_UnexposedExpr:          mapper.CursorUnexposedExpr,
	clang.Cursor_InitListExpr:           mapper.CursorInitListExpr,
}

func cursorKind(k clang.CursorKind) mapper.CursorKind {
	if mk, ok := cursorKinds[k]; ok {
		return mk
	}
	if k.IsAttribute() {
		return mapper.CursorAttribute
	}
	if k.IsInvalid() {
		return mapper.CursorInvalid
	}
	return mapper.CursorOther
}

var typeKinds = map[clang.TypeKind]mapper.TypeKind{
	clang.Type_Invalid:         mapper.TypeInvalid,
	clang.Type_Void:            mapper.TypeVoid,
	clang.Type_Bool:            mapper.TypeBool,
	clang.Type_Char_S:          mapper.TypeCharS,
	clang.Type_Char_U:          mapper.TypeCharU,
	clang.Type_SChar:           mapper.TypeSChar,
	clang.Type_UChar:           mapper.TypeUChar,
	clang.Type_Short:           mapper.TypeShort,
	clang.Type_UShort:          mapper.TypeUShort,
	clang.Type_Int:             mapper.TypeInt,
	clang.Type_UInt:            mapper.TypeUInt,
	clang.Type_Long:            mapper.TypeLong,
	clang.Type_ULong:           mapper.TypeULong,
	clang.Type_LongLong:        mapper.TypeLongLong,
	clang.Type_ULongLong:       mapper.TypeULongLong,
	clang.Type_Float:           mapper.TypeFloat,
	clang.Type_Double:          mapper.TypeDouble,
	clang.Type_LongDouble:      mapper.TypeLongDouble,
	clang.Type_Pointer:         mapper.TypePointer,
	clang.Type_FunctionProto:   mapper.TypeFunctionProto,
	clang.Type_FunctionNoProto: mapper.TypeFunctionNoProto,
	clang.Type_ConstantArray:   mapper.TypeConstantArray,
	clang.Type_IncompleteArray: mapper.TypeIncompleteArray,
	clang.Type_Elaborated:      mapper.TypeElaborated,
	clang.Type_Typedef:         mapper.TypeTypedef,
	clang.Type_Record:          mapper.TypeRecord,
	clang.Type_Enum:            mapper.TypeEnum,
}

func typeKind(k clang.TypeKind) mapper.TypeKind {
	if mk, ok := typeKinds[k]; ok {
		return mk
	}
	return mapper.TypeOther
}
