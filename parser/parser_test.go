package parser

import (
	"testing"

	"minic/ast"
	"minic/lexer"
)

func parseBoth(t *testing.T, src string) (astA, astB []ast.Stmt) {
	t.Helper()
	l := lexer.New(src)
	toks, err := l.Scan()
	if err != nil {
		t.Fatalf("lexer.Scan(%q): %v", src, err)
	}

	pa := New(toks, AlgorithmPratt)
	astA, err = pa.Parse()
	if err != nil {
		t.Fatalf("Parse (Pratt) %q: %v", src, err)
	}

	pb := New(toks, AlgorithmRightSkew)
	astB, err = pb.Parse()
	if err != nil {
		t.Fatalf("Parse (RightSkew) %q: %v", src, err)
	}
	return astA, astB
}

func TestAlgorithmsAgreeOnPrecedence(t *testing.T) {
	cases := []string{
		"1 + 2 * 3;",
		"1 * 2 + 3;",
		"1 - 2 - 3;",
		"1 + 2 - 3 + 4;",
		"1 * 2 / 3 % 4;",
		"1 < 2 + 3;",
		"1 + 2 < 3 * 4;",
		"x = 1 + 2 * 3;",
		"(1 + 2) * 3;",
		"1 + (2 + 3) * 4;",
		"-1 + 2;",
		"!x == y;",
	}
	for _, src := range cases {
		astA, astB := parseBoth(t, src)
		jsonA, err := ast.PrintASTJSON(astA)
		if err != nil {
			t.Fatalf("PrintASTJSON(A) for %q: %v", src, err)
		}
		jsonB, err := ast.PrintASTJSON(astB)
		if err != nil {
			t.Fatalf("PrintASTJSON(B) for %q: %v", src, err)
		}
		if jsonA != jsonB {
			t.Errorf("algorithms disagree for %q:\nPratt:     %s\nRightSkew: %s", src, jsonA, jsonB)
		}
	}
}

func TestExpressionStatement(t *testing.T) {
	l := lexer.New("x;")
	toks, err := l.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	exprStmt, ok := stmts[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *ast.ExpressionStmt", stmts[0])
	}
	v, ok := exprStmt.Expr.(*ast.Variable)
	if !ok || v.Name != "x" {
		t.Fatalf("exprStmt.Expr = %#v, want Variable{Name: x}", exprStmt.Expr)
	}
}

func TestTypedDeclarationWithInitializer(t *testing.T) {
	l := lexer.New("i32 x = 5;")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	exprStmt := stmts[0].(*ast.ExpressionStmt)
	assign, ok := exprStmt.Expr.(*ast.Assign)
	if !ok {
		t.Fatalf("Expr = %T, want *ast.Assign", exprStmt.Expr)
	}
	if assign.Target.Name != "x" || assign.Target.ValueType != ast.I32 {
		t.Fatalf("Target = %#v, want {x i32}", assign.Target)
	}
}

func TestFunctionDefinition(t *testing.T) {
	l := lexer.New("i32 add(i32 a, i32 b) { return a + b; }")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fn, ok := stmts[0].(*ast.Function)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *ast.Function", stmts[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 || fn.ReturnType != ast.I32 {
		t.Fatalf("fn = %#v", fn)
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("body len = %d, want 1", len(fn.Body.Statements))
	}
	if _, ok := fn.Body.Statements[0].(*ast.Return); !ok {
		t.Fatalf("body[0] = %T, want *ast.Return", fn.Body.Statements[0])
	}
}

func TestTooManyParamsIsParseError(t *testing.T) {
	l := lexer.New("i32 f(i32 a, i32 b, i32 c, i32 d, i32 e, i32 f, i32 g) { return a; }")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected a ParseError for a 7-parameter function, got nil")
	}
}

func TestChainedAssignmentIsParseError(t *testing.T) {
	l := lexer.New("x = y = 5;")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected a ParseError for chained assignment, got nil")
	}
}

func TestInvalidAssignmentTargetIsParseError(t *testing.T) {
	l := lexer.New("1 = 2;")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected a ParseError for an invalid assignment target, got nil")
	}
}

func TestMissingClosingBraceIsParseError(t *testing.T) {
	l := lexer.New("while (true) { x = 1;")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected a ParseError for a missing '}', got nil")
	}
}

func TestIfElseIfChain(t *testing.T) {
	l := lexer.New("if (a) { x = 1; } else if (b) { x = 2; } else { x = 3; }")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ifStmt, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *ast.If", stmts[0])
	}
	elseIf, ok := ifStmt.Else.(*ast.If)
	if !ok {
		t.Fatalf("ifStmt.Else = %T, want *ast.If", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*ast.Block); !ok {
		t.Fatalf("elseIf.Else = %T, want *ast.Block", elseIf.Else)
	}
}

func TestIfConditionWithoutParentheses(t *testing.T) {
	l := lexer.New("if a == 1 { x = 2; }")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ifStmt, ok := stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *ast.If", stmts[0])
	}
	if _, ok := ifStmt.Cond.(*ast.BinOp); !ok {
		t.Fatalf("Cond = %T, want *ast.BinOp", ifStmt.Cond)
	}
}

func TestParenthesizedConditionParsesAsWrapper(t *testing.T) {
	l := lexer.New("while (a < 3) { a = a + 1; }")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	while, ok := stmts[0].(*ast.While)
	if !ok {
		t.Fatalf("stmts[0] = %T, want *ast.While", stmts[0])
	}
	if _, ok := while.Cond.(*ast.Wrapper); !ok {
		t.Fatalf("Cond = %T, want *ast.Wrapper", while.Cond)
	}
}

func TestFunctionCallParsing(t *testing.T) {
	l := lexer.New("add(1, 2);")
	toks, _ := l.Scan()
	p := New(toks, AlgorithmPratt)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	exprStmt := stmts[0].(*ast.ExpressionStmt)
	call, ok := exprStmt.Expr.(*ast.FunctionCall)
	if !ok || call.Name != "add" || len(call.Args) != 2 {
		t.Fatalf("Expr = %#v, want FunctionCall{add, [1 2]}", exprStmt.Expr)
	}
}
