package ast

// ValueType is the closed set of value types the type checker and code
// generator reason about. Unknown means "not yet inferred" and is only
// legal to carry past type checking on a declaration-only statement with no
// initializer.
type ValueType int

const (
	Unknown ValueType = iota
	Bool
	I16
	I32
	I64
	F32
	F64
	Char
	Str
)

func (vt ValueType) String() string {
	switch vt {
	case Bool:
		return "bool"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Char:
		return "char"
	case Str:
		return "str"
	default:
		return "unknown"
	}
}

// Size reports the width in bytes a value of this type occupies in a stack
// slot or global cell. Str is a pointer width, not the string's length.
func (vt ValueType) Size() int {
	switch vt {
	case Bool:
		return 1
	case I16:
		return 2
	case I32:
		return 4
	case I64:
		return 8
	case F32:
		return 4
	case F64:
		return 8
	case Char:
		return 1
	case Str:
		return 8
	default:
		return 0
	}
}

// IsNumeric reports whether vt supports arithmetic operators.
func (vt ValueType) IsNumeric() bool {
	switch vt {
	case I16, I32, I64, F32, F64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether vt is one of the two floating-point types.
func (vt ValueType) IsFloat() bool {
	return vt == F32 || vt == F64
}

// BinOpKind enumerates the binary operators a BinOp node can carry.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Le
	Gt
	Ge
	Eq
	Neq
)

func (k BinOpKind) String() string {
	switch k {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case Eq:
		return "=="
	case Neq:
		return "!="
	default:
		return "?"
	}
}

// IsComparison reports whether k yields a Bool result rather than an
// operand-typed arithmetic result.
func (k BinOpKind) IsComparison() bool {
	switch k {
	case Lt, Le, Gt, Ge, Eq, Neq:
		return true
	default:
		return false
	}
}

// UnaryOpKind enumerates the unary operators a Unary node can carry.
type UnaryOpKind int

const (
	Not UnaryOpKind = iota
	Neg
)

func (k UnaryOpKind) String() string {
	if k == Not {
		return "!"
	}
	return "-"
}
