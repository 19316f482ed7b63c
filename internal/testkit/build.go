package testkit

import (
	"strconv"
	"strings"

	"sennaar/internal/cir"
	"sennaar/internal/mapper"
)

var primSpellings = map[mapper.TypeKind]string{
	mapper.TypeVoid:       "void",
	mapper.TypeBool:       "_Bool",
	mapper.TypeCharS:      "char",
	mapper.TypeCharU:      "char",
	mapper.TypeSChar:      "signed char",
	mapper.TypeUChar:      "unsigned char",
	mapper.TypeShort:      "short",
	mapper.TypeUShort:     "unsigned short",
	mapper.TypeInt:        "int",
	mapper.TypeUInt:       "unsigned int",
	mapper.TypeLong:       "long",
	mapper.TypeULong:      "unsigned long",
	mapper.TypeLongLong:   "long long",
	mapper.TypeULongLong:  "unsigned long long",
	mapper.TypeFloat:      "float",
	mapper.TypeDouble:     "double",
	mapper.TypeLongDouble: "long double",
}

// TU is the translation unit root.
func TU(children ...*Node) *Node {
	return &Node{kind: mapper.CursorTranslationUnit, spelling: "test.h", children: children}
}

func record(kind mapper.CursorKind, name, usr string, def bool, children []*Node) *Node {
	return &Node{
		kind:       kind,
		spelling:   name,
		usr:        usr,
		anonymous:  name == "",
		definition: def,
		children:   children,
		loc:        loc(),
	}
}

// Struct is a struct definition.
func Struct(name string, children ...*Node) *Node {
	return record(mapper.CursorStructDecl, name, "c:@S@"+name, true, children)
}

// StructFwd is a struct declaration without a body.
func StructFwd(name string) *Node {
	return record(mapper.CursorStructDecl, name, "c:@S@"+name, false, nil)
}

// AnonStruct is an anonymous struct definition identified by usr.
func AnonStruct(usr string, children ...*Node) *Node {
	return record(mapper.CursorStructDecl, "", usr, true, children)
}

// Union is a union definition.
func Union(name string, children ...*Node) *Node {
	return record(mapper.CursorUnionDecl, name, "c:@U@"+name, true, children)
}

// AnonUnion is an anonymous union definition identified by usr.
func AnonUnion(usr string, children ...*Node) *Node {
	return record(mapper.CursorUnionDecl, "", usr, true, children)
}

// Field is a field declaration. parms name the parameters of a
// function-pointer field.
func Field(name string, t *TypeNode, parms ...*Node) *Node {
	return &Node{kind: mapper.CursorFieldDecl, spelling: name, ty: t, children: parms, loc: loc()}
}

// Typedef declares name as an alias of under.
func Typedef(name string, under *TypeNode, parms ...*Node) *Node {
	return &Node{
		kind:       mapper.CursorTypedefDecl,
		spelling:   name,
		usr:        "c:@T@" + name,
		definition: true,
		underlying: under,
		ty:         TypedefRef(name),
		children:   parms,
		loc:        loc(),
	}
}

// Function declares a prototyped function.
func Function(name string, result *TypeNode, params ...*Node) *Node {
	args := make([]*TypeNode, len(params))
	for i, p := range params {
		args[i] = p.ty
	}
	return &Node{
		kind:     mapper.CursorFunctionDecl,
		spelling: name,
		usr:      "c:@F@" + name,
		result:   result,
		ty:       Proto(result, args...),
		children: params,
		loc:      loc(),
	}
}

// VariadicFunction declares a function taking a trailing ellipsis.
func VariadicFunction(name string, result *TypeNode, params ...*Node) *Node {
	n := Function(name, result, params...)
	n.ty.variadic = true
	return n
}

// Param is a parameter declaration; an empty name is an unnamed parameter.
func Param(name string, t *TypeNode, parms ...*Node) *Node {
	return &Node{kind: mapper.CursorParmDecl, spelling: name, ty: t, children: parms, loc: loc()}
}

// Enum is an enum definition backed by intType.
func Enum(name string, intType *TypeNode, consts ...*Node) *Node {
	return &Node{
		kind:       mapper.CursorEnumDecl,
		spelling:   name,
		usr:        "c:@E@" + name,
		definition: true,
		enumType:   intType,
		children:   consts,
		loc:        loc(),
	}
}

// AnonEnum is an enum without a tag.
func AnonEnum(usr string, intType *TypeNode, consts ...*Node) *Node {
	n := Enum("", intType, consts...)
	n.usr = usr
	n.anonymous = true
	return n
}

// EnumConst is an enumerator. An init expression marks it explicit.
func EnumConst(name string, value uint64, init ...*Node) *Node {
	return &Node{kind: mapper.CursorEnumConstantDecl, spelling: name, enumValue: value, children: init, loc: loc()}
}

// Var declares a variable with an optional initializer.
func Var(name string, t *TypeNode, init *Node) *Node {
	n := &Node{kind: mapper.CursorVarDecl, spelling: name, usr: "c:@" + name, ty: t, loc: loc()}
	if init != nil {
		n.children = []*Node{init}
	}
	return n
}

// Attr is an attribute child, ignored by the mapper.
func Attr(name string) *Node {
	return &Node{kind: mapper.CursorAttribute, spelling: name}
}

// Macro is a macro definition at top level.
func Macro(name string) *Node {
	return &Node{kind: mapper.CursorMacroDefinition, spelling: name}
}

// Raw builds a cursor of an arbitrary kind, for error paths.
func Raw(kind mapper.CursorKind, spelling string, children ...*Node) *Node {
	return &Node{kind: kind, spelling: spelling, children: children, loc: loc()}
}

func loc() cir.Location { return cir.Location{File: "test.h", Line: 1, Column: 1} }

// Prim is a builtin type.
func Prim(k mapper.TypeKind) *TypeNode {
	return &TypeNode{kind: k, spelling: primSpellings[k], size: -1}
}

// Int is shorthand for Prim(mapper.TypeInt).
func Int() *TypeNode { return Prim(mapper.TypeInt) }

// Void is shorthand for Prim(mapper.TypeVoid).
func Void() *TypeNode { return Prim(mapper.TypeVoid) }

// Const returns a const-qualified copy of t.
func Const(t *TypeNode) *TypeNode {
	c := *t
	c.isConst = true
	return &c
}

// Ptr is a pointer to t.
func Ptr(t *TypeNode) *TypeNode {
	return &TypeNode{kind: mapper.TypePointer, spelling: t.Spelling() + " *", pointee: t, size: -1}
}

// Array is a constant array of n elements.
func Array(t *TypeNode, n int64) *TypeNode {
	return &TypeNode{kind: mapper.TypeConstantArray, spelling: t.Spelling() + "[" + strconv.FormatInt(n, 10) + "]", elem: t, size: n}
}

// IncArray is an array of unknown length.
func IncArray(t *TypeNode) *TypeNode {
	return &TypeNode{kind: mapper.TypeIncompleteArray, spelling: t.Spelling() + "[]", elem: t, size: -1}
}

// Proto is a function prototype.
func Proto(result *TypeNode, args ...*TypeNode) *TypeNode {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Spelling()
	}
	return &TypeNode{
		kind:     mapper.TypeFunctionProto,
		spelling: result.Spelling() + " (" + strings.Join(parts, ", ") + ")",
		result:   result,
		args:     args,
		size:     -1,
	}
}

// NoProto is a K&R function type without a parameter list.
func NoProto(result *TypeNode) *TypeNode {
	return &TypeNode{kind: mapper.TypeFunctionNoProto, spelling: result.Spelling() + " ()", result: result, size: -1}
}

// Elab wraps t in an elaborated type specifier.
func Elab(t *TypeNode) *TypeNode {
	return &TypeNode{kind: mapper.TypeElaborated, spelling: t.Spelling(), named: t, size: -1}
}

// TypedefRef refers to a typedef by name.
func TypedefRef(name string) *TypeNode {
	return &TypeNode{kind: mapper.TypeTypedef, spelling: name, typedefName: name, size: -1}
}

// RecordRef is the type declared by a struct or union cursor.
func RecordRef(decl *Node) *TypeNode {
	tag := "struct "
	if decl.kind == mapper.CursorUnionDecl {
		tag = "union "
	}
	spelling := tag + decl.spelling
	if decl.anonymous {
		spelling = tag + "(unnamed at test.h)"
	}
	return &TypeNode{kind: mapper.TypeRecord, spelling: spelling, decl: decl, size: -1}
}

// EnumRef is the type declared by an enum cursor.
func EnumRef(decl *Node) *TypeNode {
	return &TypeNode{kind: mapper.TypeEnum, spelling: "enum " + decl.spelling, decl: decl, size: -1}
}
