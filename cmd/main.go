// Command minic is the compiler driver: it reads one source file, runs it
// through the lexer, parser, type checker, and code generator in strict
// sequence, and writes the resulting NASM text to an output file. Any
// stage failure prints one red diagnostic line to standard error and
// exits non-zero; no output file is written on failure.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"minic/codegen"
	"minic/lexer"
	"minic/parser"
	"minic/typecheck"
)

const outputPath = "compiled_test.txt"

var redColor = color.New(color.FgRed)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <filename>\n", os.Args[0])
		os.Exit(1)
	}

	source, err := os.ReadFile(os.Args[1])
	if err != nil {
		redColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	asm, err := compile(string(source))
	if err != nil {
		redColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, []byte(asm), 0o644); err != nil {
		redColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// compile runs the full pipeline and returns the assembled NASM text. It
// is a separate function from main so the driver's exit-status handling
// stays isolated from the pipeline itself.
func compile(source string) (string, error) {
	l := lexer.New(source)
	tokens, err := l.Scan()
	if err != nil {
		return "", err
	}

	p := parser.New(tokens, parser.AlgorithmPratt)
	statements, err := p.Parse()
	if err != nil {
		return "", err
	}

	if err := typecheck.New().Check(statements); err != nil {
		return "", err
	}

	return codegen.New().Generate(statements)
}
