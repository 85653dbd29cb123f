// Package parser builds a typed abstract syntax tree from a token stream.
// Two interchangeable expression-construction algorithms are supported,
// selected at construction; both must produce structurally identical trees
// on every valid input (see ast.PrintASTJSON, used by the equivalence test).
package parser

import (
	"fmt"

	"minic/ast"
	"minic/token"
)

const maxParams = 6

// Algorithm selects which expression-construction strategy New wires up.
type Algorithm int

const (
	// AlgorithmPratt is the standard precedence-climbing recursive descent.
	AlgorithmPratt Algorithm = iota
	// AlgorithmRightSkew builds a strictly right-leaning tree first, then
	// restructures it into the canonical shape with rotation.
	AlgorithmRightSkew
)

// Parser consumes a token stream and produces a statement list. Its
// position is always one unit ahead of the "current" token.
type Parser struct {
	tokens    []token.Token
	position  int
	algorithm Algorithm
}

// New builds a Parser over tokens, using the given expression-construction
// algorithm.
func New(tokens []token.Token, algorithm Algorithm) *Parser {
	return &Parser{tokens: tokens, algorithm: algorithm}
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.position]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.position-1]
}

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) isFinished() bool {
	return p.peek().TokenType == token.EOF
}

func (p *Parser) checkType(tt token.TokenType) bool {
	if p.isFinished() {
		return tt == token.EOF
	}
	return p.peek().TokenType == tt
}

func (p *Parser) isMatch(tt token.TokenType) bool {
	if p.checkType(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(tt token.TokenType, message string) (token.Token, error) {
	if p.checkType(tt) {
		return p.advance(), nil
	}
	cur := p.peek()
	return token.Token{}, CreateParseError(cur.Line, cur.Column, message)
}

// Parse consumes the entire token stream into a statement list. Parsing
// aborts on the first error encountered, matching the strictly linear
// control flow the rest of the pipeline follows.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var statements []ast.Stmt
	for !p.isFinished() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

// statement recognizes a single statement by its leading token.
func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.isMatch(token.IF):
		return p.ifStatement()
	case p.isMatch(token.WHILE):
		return p.whileStatement()
	case p.isMatch(token.LCUR):
		return p.block()
	case p.isMatch(token.RETURN):
		return p.returnStatement()
	}

	if token.TypeKeywords[p.peek().TokenType] {
		return p.typedStatement()
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after expression statement"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expr: expr}, nil
}

func valueTypeForKeyword(tt token.TokenType) ast.ValueType {
	switch tt {
	case token.BOOL:
		return ast.Bool
	case token.I16:
		return ast.I16
	case token.I32:
		return ast.I32
	case token.I64:
		return ast.I64
	case token.F32:
		return ast.F32
	case token.F64:
		return ast.F64
	case token.CHARW:
		return ast.Char
	case token.STR:
		return ast.Str
	}
	return ast.Unknown
}

// typedStatement parses anything that starts with a type keyword: a
// function definition (type keyword, identifier, '('), a typed initialized
// assignment (type keyword, identifier, '='), or a bare typed declaration.
func (p *Parser) typedStatement() (ast.Stmt, error) {
	typeTok := p.advance()
	declaredType := valueTypeForKeyword(typeTok.TokenType)

	nameTok, err := p.consume(token.IDENTIFIER, "expected an identifier after a type keyword")
	if err != nil {
		return nil, err
	}

	if p.checkType(token.LPA) {
		return p.functionDefinition(nameTok, declaredType)
	}

	variable := &ast.Variable{Name: nameTok.Lexeme, ValueType: declaredType}

	if p.isMatch(token.ASSIGN) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.SEMICOLON, "expected ';' after a declaration"); err != nil {
			return nil, err
		}
		return &ast.ExpressionStmt{Expr: &ast.Assign{Target: variable, Value: value}}, nil
	}

	if _, err := p.consume(token.SEMICOLON, "expected ';' after a declaration"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expr: variable}, nil
}

func (p *Parser) functionDefinition(nameTok token.Token, returnType ast.ValueType) (ast.Stmt, error) {
	if _, err := p.consume(token.LPA, "expected '(' to start a parameter list"); err != nil {
		return nil, err
	}

	var params []ast.Param
	if !p.checkType(token.RPA) {
		for {
			if !token.TypeKeywords[p.peek().TokenType] {
				cur := p.peek()
				return nil, CreateParseError(cur.Line, cur.Column, "expected a parameter type")
			}
			paramType := valueTypeForKeyword(p.advance().TokenType)
			paramName, err := p.consume(token.IDENTIFIER, "expected a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: paramName.Lexeme, Type: paramType})
			if len(params) > maxParams {
				return nil, CreateParseError(nameTok.Line, nameTok.Column, fmt.Sprintf("function %q declares more than %d parameters", nameTok.Lexeme, maxParams))
			}
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}

	if _, err := p.consume(token.RPA, "expected ')' after a parameter list"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' to start a function body"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &ast.Function{Name: nameTok.Lexeme, Params: params, Body: body, ReturnType: returnType}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after a return value"); err != nil {
		return nil, err
	}
	return &ast.Return{Value: value}, nil
}

// whileStatement parses a condition-guarded loop. The condition is a plain
// expression: `while (x < 3)` works because the parentheses parse as a
// Wrapper, not because the statement form requires them.
func (p *Parser) whileStatement() (ast.Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' to start a while body"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LCUR, "expected '{' to start an if body"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}

	ifStmt := &ast.If{Cond: cond, Then: then}
	if p.isMatch(token.ELSE) {
		if p.isMatch(token.IF) {
			elseIf, err := p.ifStatement()
			if err != nil {
				return nil, err
			}
			ifStmt.Else = elseIf
		} else {
			if _, err := p.consume(token.LCUR, "expected '{' to start an else body"); err != nil {
				return nil, err
			}
			elseBlock, err := p.block()
			if err != nil {
				return nil, err
			}
			ifStmt.Else = elseBlock
		}
	}
	return ifStmt, nil
}

// block parses statements up to and including the closing '}'. The opening
// '{' has already been consumed by the caller.
func (p *Parser) block() (*ast.Block, error) {
	var statements []ast.Stmt
	for !p.checkType(token.RCUR) && !p.isFinished() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close a block"); err != nil {
		return nil, err
	}
	return &ast.Block{Statements: statements}, nil
}

// expression is the entry point shared by both statement forms that embed
// one: it dispatches to whichever algorithm this Parser was constructed
// with.
func (p *Parser) expression() (ast.Expression, error) {
	switch p.algorithm {
	case AlgorithmRightSkew:
		return p.parseAssignment(p.buildRightSkewed)
	default:
		return p.parseAssignment(p.climb0)
	}
}

// parseAssignment handles the `=` level shared by both algorithms: it is
// right-associative, legal only with a Variable LHS, and forbidden as an
// RHS (no chained assignment).
func (p *Parser) parseAssignment(build func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := build()
	if err != nil {
		return nil, err
	}
	if !p.isMatch(token.ASSIGN) {
		return left, nil
	}
	eqTok := p.previous()
	value, err := p.parseAssignment(build)
	if err != nil {
		return nil, err
	}
	if _, ok := value.(*ast.Assign); ok {
		return nil, CreateParseError(eqTok.Line, eqTok.Column, "chained assignment is not permitted")
	}
	variable, ok := left.(*ast.Variable)
	if !ok {
		return nil, CreateParseError(eqTok.Line, eqTok.Column, "left-hand side of '=' must be a variable")
	}
	return &ast.Assign{Target: variable, Value: value}, nil
}

// climb0 is Algorithm A: standard precedence-climbing recursive descent,
// starting at the lowest non-assignment precedence level.
func (p *Parser) climb0() (ast.Expression, error) {
	return p.climb(1)
}

func (p *Parser) climb(minPrec int) (ast.Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := binaryPrecedence(p.peek().TokenType)
		if !ok || prec < minPrec {
			break
		}
		opTok := p.advance()
		right, err := p.climb(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: binOpKindFor(opTok.TokenType), Left: left, Right: right}
	}
	return left, nil
}

// buildRightSkewed is Algorithm B: it attaches each operator
// right-recursively, with no regard for relative precedence between
// adjacent operators, and hands every new node to descent as the recursion
// unwinds, so the subtree it returns is already in canonical shape.
func (p *Parser) buildRightSkewed() (ast.Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	if _, ok := binaryPrecedence(p.peek().TokenType); !ok {
		return left, nil
	}
	opTok := p.advance()
	right, err := p.buildRightSkewed()
	if err != nil {
		return nil, err
	}
	return descent(&ast.BinOp{Op: binOpKindFor(opTok.TokenType), Left: left, Right: right}), nil
}

// descent restructures a BinOp whose right subtree is already canonical
// into the canonical left-associative shape: if the root's right child is a
// BinOp whose precedence is no higher than the root's, that child is
// rotated up and the old root, now holding the child's former left operand
// as its right subtree, becomes the child's left operand. The demoted root
// is then descended into again, since the operand it received may itself
// bind no tighter than it.
func descent(node ast.Expression) ast.Expression {
	bin, ok := node.(*ast.BinOp)
	if !ok {
		return node
	}
	rightBin, ok := bin.Right.(*ast.BinOp)
	if !ok || precedenceOfKind(rightBin.Op) > precedenceOfKind(bin.Op) {
		return bin
	}
	bin.Right = rightBin.Left
	rightBin.Left = descent(bin)
	return rightBin
}

// unary parses a prefix '!' or '-', binding tighter than any binary
// operator, and otherwise defers to primary.
func (p *Parser) unary() (ast.Expression, error) {
	switch {
	case p.isMatch(token.BANG):
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Not, Operand: right}, nil
	case p.isMatch(token.SUB):
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: ast.Neg, Operand: right}, nil
	}
	return p.primary()
}

func (p *Parser) primary() (ast.Expression, error) {
	if p.isMatch(token.TRUE) {
		return &ast.Value{Literal: true}, nil
	}
	if p.isMatch(token.FALSE) {
		return &ast.Value{Literal: false}, nil
	}
	if p.isMatch(token.INT) || p.isMatch(token.FLOAT) {
		return &ast.Value{Literal: p.previous().Literal}, nil
	}
	if p.isMatch(token.IDENTIFIER) {
		name := p.previous()
		if p.isMatch(token.LPA) {
			return p.finishCall(name)
		}
		return &ast.Variable{Name: name.Lexeme}, nil
	}
	if p.isMatch(token.LPA) {
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPA, "expected ')' to close a parenthesized expression"); err != nil {
			return nil, err
		}
		return &ast.Wrapper{Inner: inner}, nil
	}

	cur := p.peek()
	return nil, CreateParseError(cur.Line, cur.Column, "expected an expression")
}

// finishCall parses the comma-separated argument list of a function call;
// the callee name and the opening '(' have already been consumed.
func (p *Parser) finishCall(name token.Token) (ast.Expression, error) {
	var args []ast.Expression
	if !p.checkType(token.RPA) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPA, "expected ')' after call arguments"); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: name.Lexeme, Args: args}, nil
}
