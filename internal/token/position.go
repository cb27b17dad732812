// Package token defines the lexical token vocabulary consumed by the IR
// parser: entity-kind-prefixed handle tokens, literal tokens, and the
// fixed punctuation set the grammar in spec section 6 names.
package token

import "fmt"

// Position locates a token in the source text. Columns and lines are
// 1-indexed; Offset is a 0-indexed byte offset used for snippet extraction.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders "line:column", the form every diagnostic message quotes.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
