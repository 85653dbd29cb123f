// interfaces.go contains the visitor interfaces that any code traversing
// expression and statement AST nodes must implement, and the Expression/Stmt
// interfaces every node type implements via Accept.

package ast

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. The type checker and the debug printer each implement this once;
// the code generator walks expressions with a type switch instead.
//
// Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	VisitWrapper(wrapper *Wrapper) any
	VisitFunctionCall(call *FunctionCall) any
	VisitAssign(assign *Assign) any
	VisitBinOp(binOp *BinOp) any
	VisitUnary(unary *Unary) any
	VisitVariable(variable *Variable) any
	VisitValue(value *Value) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
type StmtVisitor interface {
	VisitExpressionStmt(stmt *ExpressionStmt) any
	VisitBlock(block *Block) any
	VisitWhile(while *While) any
	VisitIf(ifStmt *If) any
	VisitFunction(fn *Function) any
	VisitReturn(ret *Return) any
	VisitEOF(eof *EOF) any
}

// Expression is the core interface for every expression node. Accept
// dispatches the node to the matching method on an ExpressionVisitor,
// implementing the double-dispatch half of the visitor pattern.
type Expression interface {
	Accept(v ExpressionVisitor) any
}

// Stmt is the base interface for every statement node.
type Stmt interface {
	Accept(v StmtVisitor) any
}
