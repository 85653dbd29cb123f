package stack

import "testing"

func TestPushPopPeek(t *testing.T) {
	var s Stack[int]
	if !s.IsEmpty() {
		t.Fatal("new stack should be empty")
	}

	s.Push(1)
	s.Push(2)
	s.Push(3)

	if peeked, ok := s.Peek(); !ok || peeked != 3 {
		t.Fatalf("Peek() = %v, %v, want 3, true", peeked, ok)
	}

	if popped, ok := s.Pop(); !ok || popped != 3 {
		t.Fatalf("Pop() = %v, %v, want 3, true", popped, ok)
	}
	if popped, ok := s.Pop(); !ok || popped != 2 {
		t.Fatalf("Pop() = %v, %v, want 2, true", popped, ok)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	s.Pop()
	if _, ok := s.Pop(); ok {
		t.Fatal("Pop() on an empty stack should report ok = false")
	}
}

func TestGenericOverStructs(t *testing.T) {
	type scope map[string]int
	var s Stack[scope]
	s.Push(scope{"x": 1})
	s.Push(scope{"y": 2})
	top, _ := s.Pop()
	if top["y"] != 2 {
		t.Fatalf("top scope = %v, want y=2", top)
	}
}
