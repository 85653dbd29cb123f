package typecheck

import "fmt"

// TypeError reports a semantic fault discovered while walking the AST: an
// operand-type mismatch, a non-boolean condition, an undeclared or
// uninitialized variable reference, a function call against the wrong
// arity/argument types, or a return value that disagrees with its
// function's declared return type.
type TypeError struct {
	Message string
}

func (e TypeError) Error() string {
	return fmt.Sprintf("💥 TypeError: %s", e.Message)
}
