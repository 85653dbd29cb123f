package lexer

import "fmt"

// LexError reports a fault encountered while scanning source bytes into
// tokens: an invalid number literal, an unclosed string/char literal, or a
// byte that begins no recognized token. It is always a user-facing fault.
type LexError struct {
	Message string
	Line    int32
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("💥 LexError: %s (line %d, column %d)", e.Message, e.Line, e.Column)
}
