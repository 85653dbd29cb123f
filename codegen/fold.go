package codegen

import (
	"strconv"

	"minic/ast"
)

// globalValue is the compile-time-constant result of folding a global's
// initializer, ready to be written out as a NASM data directive.
type globalValue struct {
	typ  ast.ValueType
	ival int64
	bval bool
}

func (v globalValue) directive() string {
	switch v.typ {
	case ast.Bool:
		if v.bval {
			return "db 1"
		}
		return "db 0"
	case ast.I16:
		return "dw " + strconv.FormatInt(v.ival, 10)
	case ast.I32:
		return "dd " + strconv.FormatInt(v.ival, 10)
	case ast.I64:
		return "dq " + strconv.FormatInt(v.ival, 10)
	default:
		return "dq 0"
	}
}

// zeroDirective initializes a declared-but-unassigned global to zero. Plain
// d* directives keep every global in .data rather than splitting the
// uninitialized ones into .bss.
func zeroDirective(typ ast.ValueType) string {
	switch typ.Size() {
	case 1:
		return "db 0"
	case 2:
		return "dw 0"
	case 4:
		return "dd 0"
	default:
		return "dq 0"
	}
}

// foldConstant evaluates a global initializer at compile time. Only
// integer and boolean constant expressions are supported: floating point
// globals and any initializer containing a function call, a variable
// reference, or a modulus are rejected.
func foldConstant(e ast.Expression) (globalValue, error) {
	switch n := e.(type) {
	case *ast.Wrapper:
		return foldConstant(n.Inner)
	case *ast.Value:
		switch lit := n.Literal.(type) {
		case bool:
			return globalValue{typ: ast.Bool, bval: lit}, nil
		case int64:
			return globalValue{typ: n.ValueType, ival: lit}, nil
		default:
			return globalValue{}, CodegenError{Message: "global initializer must be an integer or boolean constant, not a float"}
		}
	case *ast.Unary:
		inner, err := foldConstant(n.Operand)
		if err != nil {
			return globalValue{}, err
		}
		switch n.Op {
		case ast.Neg:
			inner.ival = -inner.ival
			return inner, nil
		case ast.Not:
			inner.bval = !inner.bval
			return inner, nil
		}
		return globalValue{}, CodegenError{Message: "unsupported unary operator in global initializer"}
	case *ast.BinOp:
		left, err := foldConstant(n.Left)
		if err != nil {
			return globalValue{}, err
		}
		right, err := foldConstant(n.Right)
		if err != nil {
			return globalValue{}, err
		}
		return foldBinOp(n.Op, left, right)
	default:
		return globalValue{}, CodegenError{Message: "global initializer must be a compile-time constant"}
	}
}

func foldBinOp(op ast.BinOpKind, left, right globalValue) (globalValue, error) {
	result := globalValue{typ: left.typ}
	switch op {
	case ast.Add:
		result.ival = left.ival + right.ival
	case ast.Sub:
		result.ival = left.ival - right.ival
	case ast.Mul:
		result.ival = left.ival * right.ival
	case ast.Div:
		if right.ival == 0 {
			return globalValue{}, CodegenError{Message: "division by zero in global initializer"}
		}
		result.ival = left.ival / right.ival
	case ast.Mod:
		return globalValue{}, CodegenError{Message: "modulus is not supported by this code generator"}
	case ast.Lt, ast.Le, ast.Gt, ast.Ge, ast.Eq, ast.Neq:
		result.typ = ast.Bool
		result.bval = compareInts(op, left.ival, right.ival)
	default:
		return globalValue{}, CodegenError{Message: "unsupported operator in global initializer"}
	}
	return result, nil
}

func compareInts(op ast.BinOpKind, l, r int64) bool {
	switch op {
	case ast.Lt:
		return l < r
	case ast.Le:
		return l <= r
	case ast.Gt:
		return l > r
	case ast.Ge:
		return l >= r
	case ast.Eq:
		return l == r
	case ast.Neq:
		return l != r
	}
	return false
}
