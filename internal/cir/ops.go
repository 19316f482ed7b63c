package cir

import "fmt"

// IncDecOp is the operator of a postfix increment or decrement.
type IncDecOp uint8

const (
	OpInc IncDecOp = iota
	OpDec
)

func (o IncDecOp) String() string {
	if o == OpDec {
		return "Dec"
	}
	return "Inc"
}

func (o IncDecOp) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *IncDecOp) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Inc":
		*o = OpInc
	case "Dec":
		*o = OpDec
	default:
		return fmt.Errorf("unknown inc/dec operator %q", b)
	}
	return nil
}

// UnaryOp enumerates prefix operators, including sizeof and alignof.
type UnaryOp uint8

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryNot
	UnaryBitNot
	UnaryDeref
	UnaryAddrOf
	UnarySizeOf
	UnaryAlignOf
	UnaryInc
	UnaryDec
)

var unaryOpNames = [...]string{
	UnaryPlus:    "Plus",
	UnaryMinus:   "Minus",
	UnaryNot:     "Not",
	UnaryBitNot:  "BitNot",
	UnaryDeref:   "Deref",
	UnaryAddrOf:  "AddrOf",
	UnarySizeOf:  "SizeOf",
	UnaryAlignOf: "AlignOf",
	UnaryInc:     "Inc",
	UnaryDec:     "Dec",
}

func (o UnaryOp) String() string {
	if int(o) < len(unaryOpNames) {
		return unaryOpNames[o]
	}
	return "Unknown"
}

func (o UnaryOp) MarshalText() ([]byte, error) {
	if int(o) >= len(unaryOpNames) {
		return nil, fmt.Errorf("invalid unary operator %d", o)
	}
	return []byte(o.String()), nil
}

func (o *UnaryOp) UnmarshalText(b []byte) error {
	for i, name := range unaryOpNames {
		if name == string(b) {
			*o = UnaryOp(i) //nolint:gosec // bounded by the table
			return nil
		}
	}
	return fmt.Errorf("unknown unary operator %q", b)
}

// BinaryOp enumerates binary and assignment operators.
type BinaryOp uint8

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLess
	BinGreater
	BinLessEq
	BinGreaterEq
	BinEq
	BinNotEq
	BinBitAnd
	BinBitXor
	BinBitOr
	BinAnd
	BinOr
	BinAssign
	BinMulAssign
	BinDivAssign
	BinModAssign
	BinAddAssign
	BinSubAssign
	BinShlAssign
	BinShrAssign
	BinBitAndAssign
	BinBitXorAssign
	BinBitOrAssign
	BinComma
)

type binaryOpInfo struct {
	name  string
	token string
}

var binaryOps = [...]binaryOpInfo{
	BinMul:          {"Mul", "*"},
	BinDiv:          {"Div", "/"},
	BinMod:          {"Mod", "%"},
	BinAdd:          {"Add", "+"},
	BinSub:          {"Sub", "-"},
	BinShl:          {"Shl", "<<"},
	BinShr:          {"Shr", ">>"},
	BinLess:         {"Less", "<"},
	BinGreater:      {"Greater", ">"},
	BinLessEq:       {"LessEq", "<="},
	BinGreaterEq:    {"GreaterEq", ">="},
	BinEq:           {"Eq", "=="},
	BinNotEq:        {"NotEq", "!="},
	BinBitAnd:       {"BitAnd", "&"},
	BinBitXor:       {"BitXor", "^"},
	BinBitOr:        {"BitOr", "|"},
	BinAnd:          {"And", "&&"},
	BinOr:           {"Or", "||"},
	BinAssign:       {"Assign", "="},
	BinMulAssign:    {"MulAssign", "*="},
	BinDivAssign:    {"DivAssign", "/="},
	BinModAssign:    {"ModAssign", "%="},
	BinAddAssign:    {"AddAssign", "+="},
	BinSubAssign:    {"SubAssign", "-="},
	BinShlAssign:    {"ShlAssign", "<<="},
	BinShrAssign:    {"ShrAssign", ">>="},
	BinBitAndAssign: {"BitAndAssign", "&="},
	BinBitXorAssign: {"BitXorAssign", "^="},
	BinBitOrAssign:  {"BitOrAssign", "|="},
	BinComma:        {"Comma", ","},
}

func (o BinaryOp) String() string {
	if int(o) < len(binaryOps) {
		return binaryOps[o].name
	}
	return "Unknown"
}

// Token returns the C spelling of the operator.
func (o BinaryOp) Token() string {
	if int(o) < len(binaryOps) {
		return binaryOps[o].token
	}
	return ""
}

// BinaryOpFromToken maps a C operator spelling to a BinaryOp.
func BinaryOpFromToken(tok string) (BinaryOp, bool) {
	for i, info := range binaryOps {
		if info.token == tok {
			return BinaryOp(i), true //nolint:gosec // bounded by the table
		}
	}
	return 0, false
}

func (o BinaryOp) MarshalText() ([]byte, error) {
	if int(o) >= len(binaryOps) {
		return nil, fmt.Errorf("invalid binary operator %d", o)
	}
	return []byte(o.String()), nil
}

func (o *BinaryOp) UnmarshalText(b []byte) error {
	for i, info := range binaryOps {
		if info.name == string(b) {
			*o = BinaryOp(i) //nolint:gosec // bounded by the table
			return nil
		}
	}
	return fmt.Errorf("unknown binary operator %q", b)
}
