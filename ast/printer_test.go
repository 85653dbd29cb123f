package ast

import "testing"

func TestPrintASTJSONMatchesForEquivalentTrees(t *testing.T) {
	// (1 + 2) * 3, built twice as separate node graphs, must print
	// identically: this is what the parser's algorithm-equivalence test
	// relies on.
	treeA := []Stmt{
		&ExpressionStmt{Expr: &BinOp{
			Op:   Mul,
			Left: &Wrapper{Inner: &BinOp{Op: Add, Left: &Value{Literal: int64(1)}, Right: &Value{Literal: int64(2)}}},
			Right: &Value{Literal: int64(3)},
		}},
	}
	treeB := []Stmt{
		&ExpressionStmt{Expr: &BinOp{
			Op:   Mul,
			Left: &Wrapper{Inner: &BinOp{Op: Add, Left: &Value{Literal: int64(1)}, Right: &Value{Literal: int64(2)}}},
			Right: &Value{Literal: int64(3)},
		}},
	}

	jsonA, err := PrintASTJSON(treeA)
	if err != nil {
		t.Fatalf("PrintASTJSON(treeA): %v", err)
	}
	jsonB, err := PrintASTJSON(treeB)
	if err != nil {
		t.Fatalf("PrintASTJSON(treeB): %v", err)
	}
	if jsonA != jsonB {
		t.Errorf("equivalent trees printed differently:\nA: %s\nB: %s", jsonA, jsonB)
	}
}

func TestPrintASTJSONDistinguishesShape(t *testing.T) {
	// 1 + (2 * 3)
	left := []Stmt{
		&ExpressionStmt{Expr: &BinOp{
			Op:   Add,
			Left: &Value{Literal: int64(1)},
			Right: &Wrapper{Inner: &BinOp{Op: Mul, Left: &Value{Literal: int64(2)}, Right: &Value{Literal: int64(3)}}},
		}},
	}
	// (1 + 2) * 3
	right := []Stmt{
		&ExpressionStmt{Expr: &BinOp{
			Op:   Mul,
			Left: &Wrapper{Inner: &BinOp{Op: Add, Left: &Value{Literal: int64(1)}, Right: &Value{Literal: int64(2)}}},
			Right: &Value{Literal: int64(3)},
		}},
	}

	jsonLeft, err := PrintASTJSON(left)
	if err != nil {
		t.Fatalf("PrintASTJSON(left): %v", err)
	}
	jsonRight, err := PrintASTJSON(right)
	if err != nil {
		t.Fatalf("PrintASTJSON(right): %v", err)
	}
	if jsonLeft == jsonRight {
		t.Error("differently shaped trees printed identically")
	}
}
