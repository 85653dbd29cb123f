package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/ast"
	"minic/lexer"
	"minic/parser"
)

func parseSource(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	l := lexer.New(src)
	toks, err := l.Scan()
	require.NoError(t, err)
	p := parser.New(toks, parser.AlgorithmPratt)
	stmts, err := p.Parse()
	require.NoError(t, err)
	return stmts
}

func TestCheckArithmeticInfersReturnType(t *testing.T) {
	stmts := parseSource(t, "i32 main() { return 1 + 2 * 3; }")
	require.NoError(t, New().Check(stmts))

	fn := stmts[0].(*ast.Function)
	ret := fn.Body.Statements[0].(*ast.Return)
	assert.Equal(t, ast.I32, ret.Value.(*ast.BinOp).ValueType)
}

func TestCheckGlobalThenReferencedInFunction(t *testing.T) {
	stmts := parseSource(t, "i32 x = 10; i32 main() { return x; }")
	require.NoError(t, New().Check(stmts))
}

func TestCheckBareDeclarationThenAssignment(t *testing.T) {
	stmts := parseSource(t, "i32 main() { i32 a; a = 5; return a; }")
	require.NoError(t, New().Check(stmts))
}

func TestCheckBoolAssignedToIntIsTypeError(t *testing.T) {
	stmts := parseSource(t, "i32 main() { bool b = true; i32 x = b; return x; }")
	err := New().Check(stmts)
	require.Error(t, err)
	var typeErr TypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestCheckUndeclaredVariableIsTypeError(t *testing.T) {
	stmts := parseSource(t, "i32 main() { return y; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckUntypedDeclarationUseBeforeAssignIsTypeError(t *testing.T) {
	stmts := parseSource(t, "i32 main() { a; return a; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckTypedDeclarationInstallsDeclaredType(t *testing.T) {
	stmts := parseSource(t, "i32 main() { i32 a; return a; }")
	require.NoError(t, New().Check(stmts))
}

func TestCheckTypedDeclarationMismatchedInitializer(t *testing.T) {
	stmts := parseSource(t, "i32 main() { bool b = true; i32 a; a = b; return a; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckWhileConditionMustBeBool(t *testing.T) {
	stmts := parseSource(t, "i32 main() { i32 a = 1; while (a) { a = a - 1; } return a; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckFunctionArgumentTypesAndArity(t *testing.T) {
	stmts := parseSource(t, "i32 add(i32 a, i32 b) { return a + b; } i32 main() { return add(2, 3); }")
	require.NoError(t, New().Check(stmts))
}

func TestCheckFunctionCallArityMismatch(t *testing.T) {
	stmts := parseSource(t, "i32 add(i32 a, i32 b) { return a + b; } i32 main() { return add(2); }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckFunctionCallArgumentTypeMismatch(t *testing.T) {
	stmts := parseSource(t, "i32 add(i32 a, i32 b) { return a + b; } i32 main() { bool flag = true; return add(flag, 3); }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	stmts := parseSource(t, "i32 main() { return true; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckScopesDoNotLeak(t *testing.T) {
	stmts := parseSource(t, "i32 main() { if (true) { i32 a = 1; } return a; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckShadowingAcrossNestedScopesIsAllowed(t *testing.T) {
	stmts := parseSource(t, "i32 main() { i32 a = 1; if (true) { i32 a = 2; a = a + 1; } return a; }")
	require.NoError(t, New().Check(stmts))
}

func TestCheckComparisonYieldsBool(t *testing.T) {
	stmts := parseSource(t, "i32 main() { i32 a = 1; if (a == 1) { return 1; } return 0; }")
	require.NoError(t, New().Check(stmts))
}

func TestCheckUnaryNegRejectsBool(t *testing.T) {
	stmts := parseSource(t, "i32 main() { bool b = true; return -b; }")
	err := New().Check(stmts)
	require.Error(t, err)
}

func TestCheckCallUndefinedFunction(t *testing.T) {
	stmts := parseSource(t, "i32 main() { return missing(); }")
	err := New().Check(stmts)
	require.Error(t, err)
}
