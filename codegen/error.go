package codegen

import "fmt"

// CodegenError reports a fault discovered while lowering a typed AST to
// assembly text: an unsupported type reaching emission, a register pool
// exhausted, an unimplemented operator (modulus, floating point), or a
// global initializer that is not a compile-time constant. These faults all
// arise after a successful type check: a rejected operator or type, a
// program beyond the generator's register or global-folding limits, or an
// internal inconsistency.
type CodegenError struct {
	Message string
}

func (e CodegenError) Error() string {
	return fmt.Sprintf("💥 CodegenError: %s", e.Message)
}
