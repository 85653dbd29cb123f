package codegen

import (
	"minic/ast"
	"minic/internal/stack"
)

// frame tracks one function's stack-slot and scope bookkeeping while its
// body is walked. Locals are addressed as negative offsets from rbp;
// params occupy the offsets nearest rbp (assigned first, in declaration
// order; in main, after its result slot), followed by each block's own
// locals (assigned in descending-size order).
type frame struct {
	fnName     string
	scopes     stack.Stack[map[string]int] // name -> offset from rbp, one map per lexical scope
	cursor     int                         // bytes of the frame committed along the current scope path
	maxStack   int                         // permanent high-water mark across all sibling paths
	calleeHigh int                         // high-water mark of callee-saved registers used by this function
	callerHigh int                         // high-water mark of scratch caller-saved registers used by this function
	resultSlot int                         // main only: offset of the stashed-return-value slot
	multiCall  bool                        // true while emitting a statement whose expression contains >1 call
	labelNums  map[string]int
}

func newFrame(fnName string) *frame {
	fr := &frame{fnName: fnName, labelNums: map[string]int{}}
	fr.pushScope()
	return fr
}

func (fr *frame) pushScope() {
	fr.scopes.Push(map[string]int{})
}

func (fr *frame) popScope() {
	fr.scopes.Pop()
}

func (fr *frame) lookupLocal(name string) (int, bool) {
	for i := len(fr.scopes) - 1; i >= 0; i-- {
		if off, ok := fr.scopes[i][name]; ok {
			return off, true
		}
	}
	return 0, false
}

func (fr *frame) declareInTop(name string, offset int) {
	fr.scopes[len(fr.scopes)-1][name] = offset
}

// reserve commits size bytes to the frame at the given alignment, growing
// the current-path cursor and the function's permanent high-water mark,
// and returns the new slot's offset (negative, from rbp).
func (fr *frame) reserve(size, align int) int {
	fr.cursor = alignUp(fr.cursor, align) + size
	if fr.cursor > fr.maxStack {
		fr.maxStack = fr.cursor
	}
	return -fr.cursor
}

// enterBlock snapshots the cursor so a sibling block (an else-branch, or a
// statement following an if/while) can reuse the same stack space a prior
// sibling used: branches with non-overlapping lifetimes contribute their
// max to the frame, not their sum. exitBlock restores it.
func (fr *frame) enterBlock() int {
	fr.pushScope()
	return fr.cursor
}

func (fr *frame) exitBlock(savedCursor int) {
	fr.popScope()
	fr.cursor = savedCursor
}

func (fr *frame) declareParam(name string, vt ast.ValueType) {
	off := fr.reserve(vt.Size(), vt.Size())
	fr.declareInTop(name, off)
}

// nextLabelNum returns the next monotonic counter for a label kind (e.g.
// "else", "end_if", "start_while", "end_while"), scoped to this function,
// for the generator's "<fn>_<kind>_<n>" label names.
func (fr *frame) nextLabelNum(kind string) int {
	n := fr.labelNums[kind]
	fr.labelNums[kind] = n + 1
	return n
}

func (fr *frame) label(kind string) string {
	n := fr.nextLabelNum(kind)
	return fmtLabel(fr.fnName, kind, n)
}

func fmtLabel(fnName, kind string, n int) string {
	return fnName + "_" + kind + "_" + itoa(n)
}

// itoa avoids importing strconv solely for this; kept local since it is
// only ever called with small non-negative label counters.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// pendingLocal is a name newly introduced by a direct statement of some
// block, awaiting a concrete type before it can be sized and offset.
type pendingLocal struct {
	name string
	typ  ast.ValueType
}

// collectBlockLocals finds every name first introduced by a direct
// (non-nested) statement of block: a bare declaration (`i32 a;`) or an
// assignment to a name with no existing binding (`a = 1;`, including the
// combined `i32 a = 1;` form the parser desugars to an Assign). A name
// already visible in an enclosing scope or as a global is a reference, not
// a new local, and is skipped.
//
// A typed bare declaration carries its width on the node itself (the
// parser annotated it, and the type checker leaves the annotation alone).
// An untyped bare name carries Unknown until its first assignment, so its
// width is recovered by searching the rest of this block's subtree,
// including nested blocks, for the first concrete-typed reference to the
// same name. Type checking already guarantees every local that is actually
// read resolves to a concrete type before that read succeeds, so this
// search only fails for a name that is introduced and never used again, in
// which case it is given a single pointer-sized (8-byte) slot it will
// never reference.
func (g *Generator) collectBlockLocals(block *ast.Block) []pendingLocal {
	var pending []pendingLocal
	seen := map[string]int{} // name -> index into pending

	visible := func(name string) bool {
		if _, ok := g.fr.lookupLocal(name); ok {
			return true
		}
		_, isGlobal := g.globals[name]
		return isGlobal
	}

	for _, stmt := range block.Statements {
		exprStmt, ok := stmt.(*ast.ExpressionStmt)
		if !ok {
			continue
		}
		switch e := exprStmt.Expr.(type) {
		case *ast.Variable:
			if visible(e.Name) {
				continue
			}
			if _, dup := seen[e.Name]; dup {
				continue
			}
			seen[e.Name] = len(pending)
			pending = append(pending, pendingLocal{name: e.Name, typ: e.ValueType})
		case *ast.Assign:
			if i, already := seen[e.Target.Name]; already {
				pending[i].typ = e.Target.ValueType
				continue
			}
			if visible(e.Target.Name) {
				continue
			}
			seen[e.Target.Name] = len(pending)
			pending = append(pending, pendingLocal{name: e.Target.Name, typ: e.Target.ValueType})
		}
	}

	for i := range pending {
		if pending[i].typ == ast.Unknown {
			if t, ok := findConcreteType(block, pending[i].name); ok {
				pending[i].typ = t
			} else {
				pending[i].typ = ast.I64
			}
		}
	}
	return pending
}

// findConcreteType searches a block's whole subtree, including nested
// blocks, for the first reference to name that already carries a concrete
// (non-Unknown) type: either the target of an assignment or a read of the
// variable.
func findConcreteType(block *ast.Block, name string) (ast.ValueType, bool) {
	for _, stmt := range block.Statements {
		if t, ok := findConcreteTypeStmt(stmt, name); ok {
			return t, true
		}
	}
	return ast.Unknown, false
}

func findConcreteTypeStmt(s ast.Stmt, name string) (ast.ValueType, bool) {
	switch st := s.(type) {
	case *ast.ExpressionStmt:
		return findConcreteTypeExpr(st.Expr, name)
	case *ast.Block:
		return findConcreteType(st, name)
	case *ast.While:
		if t, ok := findConcreteTypeExpr(st.Cond, name); ok {
			return t, true
		}
		return findConcreteType(st.Body, name)
	case *ast.If:
		if t, ok := findConcreteTypeExpr(st.Cond, name); ok {
			return t, true
		}
		if t, ok := findConcreteType(st.Then, name); ok {
			return t, true
		}
		if st.Else != nil {
			return findConcreteTypeStmt(st.Else, name)
		}
	case *ast.Return:
		return findConcreteTypeExpr(st.Value, name)
	}
	return ast.Unknown, false
}

func findConcreteTypeExpr(e ast.Expression, name string) (ast.ValueType, bool) {
	switch n := e.(type) {
	case *ast.Wrapper:
		return findConcreteTypeExpr(n.Inner, name)
	case *ast.FunctionCall:
		for _, a := range n.Args {
			if t, ok := findConcreteTypeExpr(a, name); ok {
				return t, true
			}
		}
	case *ast.Assign:
		if n.Target.Name == name && n.Target.ValueType != ast.Unknown {
			return n.Target.ValueType, true
		}
		return findConcreteTypeExpr(n.Value, name)
	case *ast.BinOp:
		if t, ok := findConcreteTypeExpr(n.Left, name); ok {
			return t, true
		}
		return findConcreteTypeExpr(n.Right, name)
	case *ast.Unary:
		return findConcreteTypeExpr(n.Operand, name)
	case *ast.Variable:
		if n.Name == name && n.ValueType != ast.Unknown {
			return n.ValueType, true
		}
	}
	return ast.Unknown, false
}

// allocateBlockLocals assigns stack offsets to a block's newly introduced
// locals, largest type first so smaller slots pack behind aligned larger
// ones, then registers each in the block's scope. The handful of locals a
// block can hold doesn't justify sort.Slice; a stable insertion sort keeps
// equal-size locals in declaration order.
func (g *Generator) allocateBlockLocals(block *ast.Block) {
	pending := g.collectBlockLocals(block)

	for i := 1; i < len(pending); i++ {
		cur := pending[i]
		j := i - 1
		for j >= 0 && pending[j].typ.Size() < cur.typ.Size() {
			pending[j+1] = pending[j]
			j--
		}
		pending[j+1] = cur
	}

	for _, p := range pending {
		off := g.fr.reserve(p.typ.Size(), p.typ.Size())
		g.fr.declareInTop(p.name, off)
	}
}
