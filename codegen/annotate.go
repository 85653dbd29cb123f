package codegen

import "minic/ast"

// annotateProgram walks every statement in the program and, for each
// expression root it finds (an ExpressionStmt's expression, a Return's
// value, or an If/While's condition), runs the two-phase HasCall pass:
// a bottom-up detection of whether a call occurs anywhere in the subtree,
// followed by a top-down forced propagation that makes HasCall uniform
// across the whole subtree once any part of it is true. A uniform flag
// lets emitExpr pick a node's register pool from that node alone, with no
// context threaded down from its ancestors.
func annotateProgram(statements []ast.Stmt) {
	for _, stmt := range statements {
		annotateStmt(stmt)
	}
}

func annotateStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ExpressionStmt:
		annotateRoot(st.Expr)
	case *ast.Block:
		for _, inner := range st.Statements {
			annotateStmt(inner)
		}
	case *ast.While:
		annotateRoot(st.Cond)
		annotateStmt(st.Body)
	case *ast.If:
		annotateRoot(st.Cond)
		annotateStmt(st.Then)
		if st.Else != nil {
			annotateStmt(st.Else)
		}
	case *ast.Function:
		annotateStmt(st.Body)
	case *ast.Return:
		annotateRoot(st.Value)
	case *ast.EOF:
	}
}

func annotateRoot(e ast.Expression) {
	detectCalls(e)
	forcePropagate(e, false)
}

// detectCalls computes, bottom-up, whether a FunctionCall occurs anywhere
// in e's subtree and records the per-node result before propagation.
func detectCalls(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Wrapper:
		n.HasCall = detectCalls(n.Inner)
		return n.HasCall
	case *ast.FunctionCall:
		for _, a := range n.Args {
			detectCalls(a)
		}
		n.HasCall = true
		return true
	case *ast.Assign:
		n.HasCall = detectCalls(n.Value)
		return n.HasCall
	case *ast.BinOp:
		l := detectCalls(n.Left)
		r := detectCalls(n.Right)
		n.HasCall = l || r
		return n.HasCall
	case *ast.Unary:
		n.HasCall = detectCalls(n.Operand)
		return n.HasCall
	case *ast.Variable:
		n.HasCall = false
		return false
	case *ast.Value:
		n.HasCall = false
		return false
	default:
		return false
	}
}

// forcePropagate pushes a true HasCall down into every descendant once any
// ancestor (or the node itself) is marked true. force is the flag inherited
// from the parent; a node is forced true if its parent was, or if its own
// bottom-up detection already found a call inside it.
func forcePropagate(e ast.Expression, force bool) {
	switch n := e.(type) {
	case *ast.Wrapper:
		f := force || n.HasCall
		n.HasCall = f
		forcePropagate(n.Inner, f)
	case *ast.FunctionCall:
		n.HasCall = true
		for _, a := range n.Args {
			forcePropagate(a, true)
		}
	case *ast.Assign:
		f := force || n.HasCall
		n.HasCall = f
		forcePropagate(n.Value, f)
	case *ast.BinOp:
		f := force || n.HasCall
		n.HasCall = f
		forcePropagate(n.Left, f)
		forcePropagate(n.Right, f)
	case *ast.Unary:
		f := force || n.HasCall
		n.HasCall = f
		forcePropagate(n.Operand, f)
	case *ast.Variable:
		n.HasCall = force || n.HasCall
	case *ast.Value:
		n.HasCall = force || n.HasCall
	}
}

// countCalls counts FunctionCall nodes anywhere within e, used by the
// statement emitters (emitStmt, emitReturn, emitIf, emitWhile) to decide
// whether a call's own result needs a callee-saved
// destination (more than one call appears in the same statement) or may
// use a caller-saved scratch register (the call is the statement's only
// one).
func countCalls(e ast.Expression) int {
	switch n := e.(type) {
	case *ast.Wrapper:
		return countCalls(n.Inner)
	case *ast.FunctionCall:
		total := 1
		for _, a := range n.Args {
			total += countCalls(a)
		}
		return total
	case *ast.Assign:
		return countCalls(n.Value)
	case *ast.BinOp:
		return countCalls(n.Left) + countCalls(n.Right)
	case *ast.Unary:
		return countCalls(n.Operand)
	default:
		return 0
	}
}
