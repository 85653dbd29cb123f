package parser

import (
	"minic/ast"
	"minic/token"
)

// binaryPrecedence gives each binary operator's binding strength; higher
// binds tighter. Both expression-construction algorithms share this table
// so they agree on where a rotation (Algorithm B) or a climb bound
// (Algorithm A) applies.
func binaryPrecedence(tt token.TokenType) (int, bool) {
	switch tt {
	case token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL:
		return 1, true
	case token.ADD, token.SUB:
		return 2, true
	case token.MULT, token.DIV, token.MOD:
		return 3, true
	default:
		return 0, false
	}
}

func binOpKindFor(tt token.TokenType) ast.BinOpKind {
	switch tt {
	case token.ADD:
		return ast.Add
	case token.SUB:
		return ast.Sub
	case token.MULT:
		return ast.Mul
	case token.DIV:
		return ast.Div
	case token.MOD:
		return ast.Mod
	case token.LESS:
		return ast.Lt
	case token.LESS_EQUAL:
		return ast.Le
	case token.LARGER:
		return ast.Gt
	case token.LARGER_EQUAL:
		return ast.Ge
	case token.EQUAL_EQUAL:
		return ast.Eq
	case token.NOT_EQUAL:
		return ast.Neq
	}
	panic("binOpKindFor: not a binary operator token: " + string(tt))
}

func precedenceOfKind(k ast.BinOpKind) int {
	switch k {
	case ast.Eq, ast.Neq, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return 1
	case ast.Add, ast.Sub:
		return 2
	case ast.Mul, ast.Div, ast.Mod:
		return 3
	}
	return 0
}
