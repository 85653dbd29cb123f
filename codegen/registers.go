package codegen

import "minic/ast"

// callerSaved64 is the SysV caller-saved / argument register pool, indexed
// 0..6. Index 0 doubles as the return register; index 3 (rdx) is skipped
// during a general scratch walk so it stays free for idiv's remainder.
var callerSaved64 = []string{"rax", "rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// calleeSaved64 is the callee-saved pool used for any value that must
// survive a nested call.
var calleeSaved64 = []string{"rbx", "r12", "r13", "r14", "r15"}

// sysvArgRegs64 is the SysV integer argument-passing order, used only at a
// call site to move already-stashed callee-saved argument values into
// their ABI-mandated homes immediately before `call`.
var sysvArgRegs64 = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// sizedNames maps each 64-bit register name to its {8,16,32,64}-bit
// sub-register spellings, indexed by regSizeIndex.
var sizedNames = map[string][4]string{
	"rax": {"al", "ax", "eax", "rax"},
	"rdi": {"dil", "di", "edi", "rdi"},
	"rsi": {"sil", "si", "esi", "rsi"},
	"rdx": {"dl", "dx", "edx", "rdx"},
	"rcx": {"cl", "cx", "ecx", "rcx"},
	"r8":  {"r8b", "r8w", "r8d", "r8"},
	"r9":  {"r9b", "r9w", "r9d", "r9"},
	"rbx": {"bl", "bx", "ebx", "rbx"},
	"r12": {"r12b", "r12w", "r12d", "r12"},
	"r13": {"r13b", "r13w", "r13d", "r13"},
	"r14": {"r14b", "r14w", "r14d", "r14"},
	"r15": {"r15b", "r15w", "r15d", "r15"},
}

func regSizeIndex(size int) int {
	switch size {
	case 1:
		return 0
	case 2:
		return 1
	case 8:
		return 3
	default:
		return 2
	}
}

// regBase finds the 64-bit register name a sub-register spelling belongs
// to.
func regBase(name string) (string, bool) {
	for base, names := range sizedNames {
		for _, n := range names {
			if n == name {
				return base, true
			}
		}
	}
	return "", false
}

// sizedReg returns the sub-register spelling of a 64-bit register name
// matching the given byte width.
func sizedReg(base64 string, size int) string {
	names, ok := sizedNames[base64]
	if !ok {
		panic(CodegenError{Message: "internal: unknown register " + base64})
	}
	return names[regSizeIndex(size)]
}

// reg picks the register for pool index idx, sized for the given value
// type, and records the new high-water mark for that pool. hasCall
// selects the callee-saved pool (values that must survive a nested call);
// otherwise the caller-saved/scratch pool is used.
func (g *Generator) reg(hasCall bool, idx int, size int) string {
	if hasCall {
		if idx < 0 || idx >= len(calleeSaved64) {
			panic(CodegenError{Message: "out of callee-saved registers"})
		}
		if idx+1 > g.fr.calleeHigh {
			g.fr.calleeHigh = idx + 1
		}
		return sizedReg(calleeSaved64[idx], size)
	}
	if idx < 0 || idx >= len(callerSaved64) {
		panic(CodegenError{Message: "out of caller-saved registers"})
	}
	if idx+1 > g.fr.callerHigh {
		g.fr.callerHigh = idx + 1
	}
	return sizedReg(callerSaved64[idx], size)
}

// bump advances a pool watermark to the next usable slot: sequential for
// the callee-saved pool, skipping index 3 (rdx) for the caller-saved pool.
func bump(hasCall bool, idx int) int {
	idx++
	if !hasCall && idx == 3 {
		idx++
	}
	return idx
}

// hasCallFlag reads the HasCall annotation off any Expression node.
func hasCallFlag(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.Wrapper:
		return n.HasCall
	case *ast.FunctionCall:
		return n.HasCall
	case *ast.Assign:
		return n.HasCall
	case *ast.BinOp:
		return n.HasCall
	case *ast.Unary:
		return n.HasCall
	case *ast.Variable:
		return n.HasCall
	case *ast.Value:
		return n.HasCall
	default:
		return false
	}
}

// typeOf reads the ValueType annotation off any Expression node.
func typeOf(e ast.Expression) ast.ValueType {
	switch n := e.(type) {
	case *ast.Wrapper:
		return n.ValueType
	case *ast.FunctionCall:
		return n.ValueType
	case *ast.Assign:
		return n.ValueType
	case *ast.BinOp:
		return n.ValueType
	case *ast.Unary:
		return n.ValueType
	case *ast.Variable:
		return n.ValueType
	case *ast.Value:
		return n.ValueType
	default:
		return ast.Unknown
	}
}

func alignUp(x, multiple int) int {
	if multiple <= 0 {
		return x
	}
	return (x + multiple - 1) / multiple * multiple
}
