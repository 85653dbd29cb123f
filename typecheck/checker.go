// Package typecheck walks a parsed AST, maintaining a stack of lexical
// scopes mapping identifiers to ast.ValueType, propagating inferred types
// upward through expressions and diagnosing mismatches. It resolves both
// implicit-declaration forms (bare and typed variable statements), and
// checks every function body against its declared parameter and return
// types.
package typecheck

import (
	"fmt"

	"minic/ast"
	"minic/internal/stack"
)

// signature is a registered function's parameter and return types, indexed
// by name so call sites can be checked regardless of definition order.
type signature struct {
	params     []ast.ValueType
	returnType ast.ValueType
}

// Checker implements ast.ExpressionVisitor and ast.StmtVisitor over a stack
// of lexical scopes. The bottom scope is the global scope and is never
// popped.
type Checker struct {
	scopes            stack.Stack[map[string]ast.ValueType]
	funcs             map[string]signature
	currentReturnType ast.ValueType
	inFunction        bool
}

// New builds a Checker with a single, empty global scope pushed.
func New() *Checker {
	c := &Checker{funcs: map[string]signature{}}
	c.scopes.Push(map[string]ast.ValueType{})
	return c
}

// Check walks every top-level statement, registering function signatures
// up front so mutually recursive calls resolve regardless of definition
// order. A semantic fault is reported as a single TypeError; the walk
// recovers from it internally rather than threading an error return
// through every visitor method.
func (c *Checker) Check(statements []ast.Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if te, ok := r.(TypeError); ok {
				err = te
				return
			}
			panic(r)
		}
	}()

	c.registerFunctions(statements)
	for _, stmt := range statements {
		stmt.Accept(c)
	}
	return nil
}

// registerFunctions pre-scans the top-level statement list for Function
// definitions. Functions are a top-level-only form, so a single flat pass
// suffices.
func (c *Checker) registerFunctions(statements []ast.Stmt) {
	for _, stmt := range statements {
		fn, ok := stmt.(*ast.Function)
		if !ok {
			continue
		}
		params := make([]ast.ValueType, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}
		if _, dup := c.funcs[fn.Name]; dup {
			panic(TypeError{Message: fmt.Sprintf("function %q is already defined", fn.Name)})
		}
		c.funcs[fn.Name] = signature{params: params, returnType: fn.ReturnType}
	}
}

func (c *Checker) lookup(name string) (ast.ValueType, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return ast.Unknown, false
}

// lookupScopeIndex is like lookup but also reports which scope held the
// binding, so VisitAssign can upgrade an Unknown binding in place without
// re-declaring it in a possibly different (inner) scope.
func (c *Checker) lookupScopeIndex(name string) (t ast.ValueType, idx int, ok bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, present := c.scopes[i][name]; present {
			return v, i, true
		}
	}
	return ast.Unknown, -1, false
}

func (c *Checker) declareInTop(name string, t ast.ValueType) {
	c.scopes[len(c.scopes)-1][name] = t
}

func (c *Checker) pushScope() {
	c.scopes.Push(map[string]ast.ValueType{})
}

func (c *Checker) popScope() {
	c.scopes.Pop()
}

func valType(result any) ast.ValueType {
	return result.(ast.ValueType)
}

// --- Statements ---------------------------------------------------------

// VisitExpressionStmt special-cases a bare Variable expression (declared or
// undeclared): such a statement introduces or reuses a binding rather than
// producing a value. Every other expression statement is walked for its
// type but the result is discarded.
func (c *Checker) VisitExpressionStmt(stmt *ast.ExpressionStmt) any {
	if v, ok := stmt.Expr.(*ast.Variable); ok {
		c.declareOrTouch(v)
		return nil
	}
	stmt.Expr.Accept(c)
	return nil
}

// declareOrTouch resolves a standalone `Variable;` statement. If the name
// already resolves in some enclosing scope, that binding is left untouched
// (the statement is a no-op reference). A typed declaration (`i32 x;`)
// installs the parser-annotated type in the current scope; the statement
// itself still counts as declaration-only and produces no value. An untyped
// bare name (`x;`) reserves the name bound to Unknown until its first
// assignment commits a type — reading it before that assignment is a fault.
func (c *Checker) declareOrTouch(v *ast.Variable) {
	if t, ok := c.lookup(v.Name); ok {
		v.ValueType = t
		return
	}
	c.declareInTop(v.Name, v.ValueType)
}

func (c *Checker) VisitBlock(block *ast.Block) any {
	c.pushScope()
	defer c.popScope()
	for _, stmt := range block.Statements {
		stmt.Accept(c)
	}
	return nil
}

func (c *Checker) VisitWhile(while *ast.While) any {
	condType := valType(while.Cond.Accept(c))
	if condType != ast.Bool {
		panic(TypeError{Message: fmt.Sprintf("while condition must be bool, got %s", condType)})
	}
	while.Body.Accept(c)
	return nil
}

func (c *Checker) VisitIf(ifStmt *ast.If) any {
	condType := valType(ifStmt.Cond.Accept(c))
	if condType != ast.Bool {
		panic(TypeError{Message: fmt.Sprintf("if condition must be bool, got %s", condType)})
	}
	ifStmt.Then.Accept(c)
	if ifStmt.Else != nil {
		ifStmt.Else.Accept(c)
	}
	return nil
}

// VisitFunction pushes a fresh scope seeded with the function's parameters,
// sets the current-return-type slot every Return inside the body is
// checked against, then walks the body (whose own Block.Accept pushes a
// second, nested scope for its locals).
func (c *Checker) VisitFunction(fn *ast.Function) any {
	c.pushScope()
	defer c.popScope()
	for _, p := range fn.Params {
		c.declareInTop(p.Name, p.Type)
	}

	prevReturnType, prevInFunction := c.currentReturnType, c.inFunction
	c.currentReturnType = fn.ReturnType
	c.inFunction = true
	fn.Body.Accept(c)
	c.currentReturnType, c.inFunction = prevReturnType, prevInFunction
	return nil
}

func (c *Checker) VisitReturn(ret *ast.Return) any {
	if !c.inFunction {
		panic(TypeError{Message: "return used outside of a function body"})
	}
	valueType := valType(ret.Value.Accept(c))
	if valueType != c.currentReturnType {
		panic(TypeError{Message: fmt.Sprintf("return type mismatch: expected %s, got %s", c.currentReturnType, valueType)})
	}
	return nil
}

func (c *Checker) VisitEOF(*ast.EOF) any {
	return nil
}

// --- Expressions ---------------------------------------------------------

func (c *Checker) VisitWrapper(w *ast.Wrapper) any {
	t := valType(w.Inner.Accept(c))
	w.ValueType = t
	return t
}

func (c *Checker) VisitFunctionCall(call *ast.FunctionCall) any {
	sig, ok := c.funcs[call.Name]
	if !ok {
		panic(TypeError{Message: fmt.Sprintf("call to undefined function %q", call.Name)})
	}
	if len(call.Args) != len(sig.params) {
		panic(TypeError{Message: fmt.Sprintf("function %q expects %d argument(s), got %d", call.Name, len(sig.params), len(call.Args))})
	}
	for i, arg := range call.Args {
		argType := valType(arg.Accept(c))
		if argType != sig.params[i] {
			panic(TypeError{Message: fmt.Sprintf("function %q argument %d: expected %s, got %s", call.Name, i+1, sig.params[i], argType)})
		}
	}
	call.ReturnType = sig.returnType
	call.ValueType = sig.returnType
	return sig.returnType
}

// VisitAssign evaluates the right-hand side first; if the target has no
// binding anywhere, it introduces one in the current scope (checking any
// declared type the assignment carries); if its existing binding is
// Unknown (a prior declaration-only statement), it upgrades it in place;
// otherwise the right-hand type must match exactly.
func (c *Checker) VisitAssign(a *ast.Assign) any {
	rhsType := valType(a.Value.Accept(c))
	if rhsType == ast.Unknown {
		panic(TypeError{Message: fmt.Sprintf("cannot assign an unresolved value to %q", a.Target.Name)})
	}

	existing, idx, ok := c.lookupScopeIndex(a.Target.Name)
	switch {
	case !ok:
		if declared := a.Target.ValueType; declared != ast.Unknown && declared != rhsType {
			panic(TypeError{Message: fmt.Sprintf("cannot assign %s to %q, declared %s", rhsType, a.Target.Name, declared)})
		}
		c.declareInTop(a.Target.Name, rhsType)
	case existing == ast.Unknown:
		c.scopes[idx][a.Target.Name] = rhsType
	case existing != rhsType:
		panic(TypeError{Message: fmt.Sprintf("cannot assign %s to %q, previously declared %s", rhsType, a.Target.Name, existing)})
	}

	a.Target.ValueType = rhsType
	a.ValueType = rhsType
	return rhsType
}

func (c *Checker) VisitBinOp(b *ast.BinOp) any {
	leftType := valType(b.Left.Accept(c))
	rightType := valType(b.Right.Accept(c))

	if leftType != rightType {
		panic(TypeError{Message: fmt.Sprintf("operand type mismatch: %s %s %s", leftType, b.Op, rightType)})
	}

	if b.Op.IsComparison() {
		b.ValueType = ast.Bool
		return ast.Bool
	}

	b.ValueType = leftType
	return leftType
}

// VisitUnary requires a Bool operand for '!' and an i32 or f64 operand for
// unary '-'.
func (c *Checker) VisitUnary(u *ast.Unary) any {
	operandType := valType(u.Operand.Accept(c))
	switch u.Op {
	case ast.Not:
		if operandType != ast.Bool {
			panic(TypeError{Message: fmt.Sprintf("'!' requires a bool operand, got %s", operandType)})
		}
		u.ValueType = ast.Bool
	case ast.Neg:
		if operandType != ast.I32 && operandType != ast.F64 {
			panic(TypeError{Message: fmt.Sprintf("unary '-' requires i32 or f64, got %s", operandType)})
		}
		u.ValueType = operandType
	}
	return u.ValueType
}

// VisitVariable resolves a Variable occurring in expression position (not
// as a bare declaration statement, which VisitExpressionStmt handles
// separately). An unresolved name is an undeclared-variable fault; a name
// bound to Unknown is a use of a declared-but-never-assigned variable —
// both are TypeErrors here, since only the standalone declaration
// statement form may legally carry Unknown past type checking.
func (c *Checker) VisitVariable(v *ast.Variable) any {
	t, ok := c.lookup(v.Name)
	if !ok {
		panic(TypeError{Message: fmt.Sprintf("undeclared variable %q", v.Name)})
	}
	if t == ast.Unknown {
		panic(TypeError{Message: fmt.Sprintf("variable %q used before being assigned a value", v.Name)})
	}
	v.ValueType = t
	return t
}

// VisitValue assigns the literal's type from the Go value the lexer/parser
// produced for it: bool literals are Bool, integer literals default to
// I32, and float literals are F64.
func (c *Checker) VisitValue(v *ast.Value) any {
	switch v.Literal.(type) {
	case bool:
		v.ValueType = ast.Bool
	case int64:
		v.ValueType = ast.I32
	case float64:
		v.ValueType = ast.F64
	default:
		panic(TypeError{Message: fmt.Sprintf("unrecognized literal kind %T", v.Literal)})
	}
	return v.ValueType
}
