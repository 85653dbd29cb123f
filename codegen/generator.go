// Package codegen lowers a type-checked AST into NASM-style x86-64 SysV
// assembly, glued to a minimal C runtime exposing printf. It mirrors the
// type checker's single-panic-per-entry-point convention: any fault found
// while walking the tree is a typed panic recovered into a returned error
// at the Generate boundary.
package codegen

import (
	"fmt"
	"strings"

	"minic/ast"
)

// Generator walks a type-checked program and emits one NASM source string.
// It implements ast.ExpressionVisitor only indirectly — emission is driven
// by an explicit type switch (emitExpr/emitStmt) rather than the Accept
// double dispatch the type checker uses, since emission also needs to
// thread a register-pool index through each call that a visitor method
// signature has no room for.
type Generator struct {
	globals map[string]ast.ValueType
	fr      *frame
	body    []string
}

// New builds an empty Generator.
func New() *Generator {
	return &Generator{globals: map[string]ast.ValueType{}}
}

// Generate lowers statements to assembly text. A fault found during
// annotation, folding, or emission is reported as a single CodegenError.
func (g *Generator) Generate(statements []ast.Stmt) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(CodegenError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	annotateProgram(statements)

	dataLines := []string{`result_fmt: db "Result was: %d", 10, 0`}
	var functions []*ast.Function
	for _, stmt := range statements {
		switch s := stmt.(type) {
		case *ast.ExpressionStmt:
			dataLines = append(dataLines, g.emitGlobal(s.Expr))
		case *ast.Function:
			functions = append(functions, s)
		case *ast.EOF:
		default:
			panic(CodegenError{Message: "unsupported top-level statement in code generator"})
		}
	}

	var out strings.Builder
	out.WriteString("extern printf\n\n")
	out.WriteString("section .data\n")
	for _, l := range dataLines {
		out.WriteString(l)
		out.WriteByte('\n')
	}
	out.WriteString("\nsection .text\n")
	out.WriteString("global main\n\n")

	for _, fn := range functions {
		for _, l := range g.emitFunction(fn) {
			out.WriteString(l)
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}

	return out.String(), nil
}

// emitGlobal folds a top-level declaration into a .data entry. A bare
// declaration with no initializer (`i32 g;`) reserves zeroed storage; an
// initialized one (`i32 g = 1 + 2;`) must fold to a compile-time constant.
func (g *Generator) emitGlobal(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Variable:
		vt := e.ValueType
		if vt == ast.Unknown {
			vt = ast.I64
		}
		g.globals[e.Name] = vt
		return fmt.Sprintf("global %s\nalign %d\n%s: %s", e.Name, vt.Size(), e.Name, zeroDirective(vt))
	case *ast.Assign:
		val, err := foldConstant(e.Value)
		if err != nil {
			panic(err)
		}
		vt := e.Target.ValueType
		g.globals[e.Target.Name] = vt
		return fmt.Sprintf("global %s\nalign %d\n%s: %s", e.Target.Name, vt.Size(), e.Target.Name, val.directive())
	default:
		panic(CodegenError{Message: "unsupported top-level statement in code generator"})
	}
}

// emit appends one already-indented line of assembly to the function
// currently being emitted.
func (g *Generator) emit(format string, args ...any) {
	g.body = append(g.body, fmt.Sprintf(format, args...))
}

func (g *Generator) addressOf(name string) string {
	if off, ok := g.fr.lookupLocal(name); ok {
		return fmt.Sprintf("[rbp%+d]", off)
	}
	return "[" + name + "]"
}

// alignFrameSize computes the sub-rsp amount so that, together with the
// return address, the saved rbp, and every `push` of a callee-saved
// register the prologue performs, rsp is 16-byte aligned at every `call`
// site inside the function body.
func alignFrameSize(maxStack, calleeCount int) int {
	raw := alignUp(maxStack, 8)
	if (raw+8*calleeCount)%16 != 0 {
		raw += 8
	}
	return raw
}

// emitFunction lowers one function to a self-contained label with a
// standard push-rbp/mov-rbp-rsp/sub-rsp prologue and a leave/ret epilogue.
// main gets an additional printf call immediately before its epilogue that
// reports its return value, since this compiler has no other form of
// program output.
func (g *Generator) emitFunction(fn *ast.Function) []string {
	g.fr = newFrame(fn.Name)
	isMain := fn.Name == "main"
	if isMain {
		g.fr.resultSlot = g.fr.reserve(8, 8)
	}

	for _, p := range fn.Params {
		g.fr.declareParam(p.Name, p.Type)
	}

	g.body = nil
	for i, p := range fn.Params {
		src := sizedReg(sysvArgRegs64[i], p.Type.Size())
		g.emit("\tmov %s, %s", g.addressOf(p.Name), src)
	}
	g.emitBlock(fn.Body)
	bodyLines := g.body

	frameSize := alignFrameSize(g.fr.maxStack, g.fr.calleeHigh)
	fn.MaxStack = frameSize
	fn.MaxCalleeSaved = g.fr.calleeHigh
	fn.MaxCallerSaved = g.fr.callerHigh

	var lines []string
	lines = append(lines, fn.Name+":")
	lines = append(lines, "\tpush rbp")
	lines = append(lines, "\tmov rbp, rsp")
	if frameSize > 0 {
		lines = append(lines, fmt.Sprintf("\tsub rsp, %d", frameSize))
	}
	for i := 0; i < g.fr.calleeHigh; i++ {
		lines = append(lines, "\tpush "+calleeSaved64[i])
	}
	lines = append(lines, bodyLines...)
	lines = append(lines, fn.Name+"_return:")
	if isMain {
		lines = append(lines, g.emitMainEpilogue()...)
	}
	for i := g.fr.calleeHigh - 1; i >= 0; i-- {
		lines = append(lines, "\tpop "+calleeSaved64[i])
	}
	lines = append(lines, "\tleave")
	lines = append(lines, "\tret")
	return lines
}

func (g *Generator) emitMainEpilogue() []string {
	slot := fmt.Sprintf("[rbp%+d]", g.fr.resultSlot)
	return []string{
		fmt.Sprintf("\tmov %s, rax", slot),
		"\tlea rdi, [rel result_fmt]",
		fmt.Sprintf("\tmov esi, %s", slot),
		"\txor eax, eax",
		"\tcall printf",
		fmt.Sprintf("\tmov rax, %s", slot),
	}
}

// --- statements ----------------------------------------------------------

func (g *Generator) emitBlock(block *ast.Block) {
	saved := g.fr.enterBlock()
	g.allocateBlockLocals(block)
	for _, stmt := range block.Statements {
		g.emitStmt(stmt)
	}
	g.fr.exitBlock(saved)
}

func (g *Generator) emitStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ExpressionStmt:
		if _, bareDeclare := st.Expr.(*ast.Variable); bareDeclare {
			return
		}
		g.fr.multiCall = countCalls(st.Expr) > 1
		g.emitExpr(st.Expr, 0)
	case *ast.Block:
		g.emitBlock(st)
	case *ast.While:
		g.emitWhile(st)
	case *ast.If:
		g.emitIf(st)
	case *ast.Return:
		g.emitReturn(st)
	case *ast.EOF:
	default:
		panic(CodegenError{Message: "unsupported statement in code generator"})
	}
}

func (g *Generator) emitReturn(ret *ast.Return) {
	g.fr.multiCall = countCalls(ret.Value) > 1
	valReg, _ := g.emitExpr(ret.Value, 0)
	size := typeOf(ret.Value).Size()
	if size == 0 {
		size = 8
	}
	raxSized := sizedReg("rax", size)
	if valReg != raxSized {
		g.emit("\tmov %s, %s", raxSized, valReg)
	}
	g.emit("\tjmp %s_return", g.fr.fnName)
}

func (g *Generator) emitIf(ifStmt *ast.If) {
	g.fr.multiCall = countCalls(ifStmt.Cond) > 1
	condReg, _ := g.emitExpr(ifStmt.Cond, 0)

	if ifStmt.Else == nil {
		endLabel := g.fr.label("end_if")
		g.emit("\ttest %s, %s", condReg, condReg)
		g.emit("\tjz %s", endLabel)
		g.emitBlock(ifStmt.Then)
		g.emit("%s:", endLabel)
		return
	}

	elseLabel := g.fr.label("else")
	endLabel := g.fr.label("end_if")
	g.emit("\ttest %s, %s", condReg, condReg)
	g.emit("\tjz %s", elseLabel)
	g.emitBlock(ifStmt.Then)
	g.emit("\tjmp %s", endLabel)
	g.emit("%s:", elseLabel)
	g.emitStmt(ifStmt.Else)
	g.emit("%s:", endLabel)
}

func (g *Generator) emitWhile(w *ast.While) {
	startLabel := g.fr.label("start_while")
	endLabel := g.fr.label("end_while")
	g.emit("%s:", startLabel)
	g.fr.multiCall = countCalls(w.Cond) > 1
	condReg, _ := g.emitExpr(w.Cond, 0)
	g.emit("\ttest %s, %s", condReg, condReg)
	g.emit("\tjz %s", endLabel)
	g.emitBlock(w.Body)
	g.emit("\tjmp %s", startLabel)
	g.emit("%s:", endLabel)
}

// --- expressions -----------------------------------------------------------

// emitExpr lowers e and returns the register holding its result together
// with the next free index in whichever register pool e's HasCall flag
// selects, so a caller evaluating a sibling operand allocates a distinct
// register instead of clobbering this one.
func (g *Generator) emitExpr(e ast.Expression, idx int) (string, int) {
	hc := hasCallFlag(e)
	switch n := e.(type) {
	case *ast.Wrapper:
		return g.emitExpr(n.Inner, idx)

	case *ast.Value:
		size := n.ValueType.Size()
		dst := g.reg(hc, idx, size)
		switch lit := n.Literal.(type) {
		case bool:
			v := 0
			if lit {
				v = 1
			}
			g.emit("\tmov %s, %d", dst, v)
		case int64:
			g.emit("\tmov %s, %d", dst, lit)
		default:
			panic(CodegenError{Message: "floating point literals are not supported by this code generator"})
		}
		return dst, bump(hc, idx)

	case *ast.Variable:
		size := n.ValueType.Size()
		dst := g.reg(hc, idx, size)
		g.emit("\tmov %s, %s", dst, g.addressOf(n.Name))
		return dst, bump(hc, idx)

	case *ast.Unary:
		src, next := g.emitExpr(n.Operand, idx)
		switch n.Op {
		case ast.Not:
			base, ok := regBase(src)
			if !ok {
				panic(CodegenError{Message: "internal: unknown register " + src})
			}
			b := sizedReg(base, 1)
			g.emit("\ttest %s, %s", b, b)
			g.emit("\tsetz %s", b)
			g.emit("\tmovzx %s, %s", sizedReg(base, 4), b)
		case ast.Neg:
			g.emit("\tneg %s", src)
		}
		return src, next

	case *ast.BinOp:
		return g.emitBinOp(n, idx)

	case *ast.Assign:
		srcReg, next := g.emitExpr(n.Value, idx)
		g.emit("\tmov %s, %s", g.addressOf(n.Target.Name), srcReg)
		return srcReg, next

	case *ast.FunctionCall:
		return g.emitCall(n, idx)

	default:
		panic(CodegenError{Message: "unsupported expression in code generator"})
	}
}

var setCC = map[ast.BinOpKind]string{
	ast.Lt: "l", ast.Le: "le", ast.Gt: "g", ast.Ge: "ge", ast.Eq: "e", ast.Neq: "ne",
}

func (g *Generator) emitBinOp(n *ast.BinOp, idx int) (string, int) {
	leftType, rightType := typeOf(n.Left), typeOf(n.Right)
	if leftType.IsFloat() || rightType.IsFloat() {
		panic(CodegenError{Message: "floating point arithmetic is not supported by this code generator"})
	}
	if n.Op == ast.Mod {
		panic(CodegenError{Message: "modulus is not supported by this code generator"})
	}

	hc := hasCallFlag(n)
	leftReg, next := g.emitExpr(n.Left, idx)
	rightReg, next2 := g.emitExpr(n.Right, next)
	size := leftType.Size()

	switch n.Op {
	case ast.Add:
		g.emit("\tadd %s, %s", leftReg, rightReg)
		return leftReg, next2
	case ast.Sub:
		g.emit("\tsub %s, %s", leftReg, rightReg)
		return leftReg, next2
	case ast.Mul:
		g.emit("\timul %s, %s", leftReg, rightReg)
		return leftReg, next2
	case ast.Div:
		raxSized := sizedReg("rax", size)
		if leftReg != raxSized {
			g.emit("\tmov %s, %s", raxSized, leftReg)
		}
		switch size {
		case 8:
			g.emit("\tcqo")
		case 2:
			g.emit("\tcwd")
		default:
			g.emit("\tcdq")
		}
		g.emit("\tidiv %s", rightReg)
		if leftReg != raxSized {
			g.emit("\tmov %s, %s", leftReg, raxSized)
		}
		return leftReg, next2
	default:
		g.emit("\tcmp %s, %s", leftReg, rightReg)
		dst := g.reg(hc, idx, 1)
		g.emit("\tset%s %s", setCC[n.Op], dst)
		g.emit("\tmovzx %s, %s", g.reg(hc, idx, 4), dst)
		return dst, next2
	}
}

// emitCall evaluates every argument into the callee-saved pool (every
// argument expression is forced HasCall=true by annotateProgram, since it
// is evaluated in the shadow of the call that follows it), moves each into
// its SysV argument register immediately before `call`, and finally
// decides where the call's own result lives: a plain caller-saved rax read
// if this is the only call in the enclosing statement, or a dedicated
// callee-saved slot if a sibling call elsewhere in the statement would
// otherwise clobber it before it is consumed.
func (g *Generator) emitCall(n *ast.FunctionCall, idx int) (string, int) {
	argRegs := make([]string, len(n.Args))
	next := idx
	for i, a := range n.Args {
		r, ni := g.emitExpr(a, next)
		argRegs[i] = r
		next = ni
	}
	for i, r := range argRegs {
		dstArg := sizedReg(sysvArgRegs64[i], typeOf(n.Args[i]).Size())
		if dstArg != r {
			g.emit("\tmov %s, %s", dstArg, r)
		}
	}
	g.emit("\tcall %s", n.Name)

	size := n.ReturnType.Size()
	if size == 0 {
		size = 8
	}
	resultReg := sizedReg("rax", size)
	if !g.fr.multiCall {
		return resultReg, idx
	}
	dst := g.reg(true, idx, size)
	if dst != resultReg {
		g.emit("\tmov %s, %s", dst, resultReg)
	}
	return dst, bump(true, idx)
}
