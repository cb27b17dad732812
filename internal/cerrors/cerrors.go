// Package cerrors formats the diagnostics produced by the parser and the
// flags verifier with source context, following the same line/column/caret
// presentation as the teacher's internal/errors.CompilerError, adapted to
// the taxonomy of spec section 7 (lexical, syntactic, reference, type
// inference, arity, alias, flags).
package cerrors

import (
	"fmt"
	"strings"

	"github.com/kbasalt/ebbc/internal/token"
)

// Code classifies a diagnostic for programmatic handling, mirroring the
// teacher parser's string error-code constants.
type Code string

const (
	ErrLexical      Code = "E_LEXICAL"
	ErrSyntax       Code = "E_SYNTAX"
	ErrReference    Code = "E_REFERENCE"
	ErrTypeInfer    Code = "E_TYPE_INFERENCE"
	ErrArity        Code = "E_ARITY"
	ErrAlias        Code = "E_ALIAS"
	ErrFlags        Code = "E_FLAGS"
	ErrStackmap     Code = "E_STACKMAP"
)

// Error is a single diagnostic with a source position and a short,
// lower-case message, per spec section 7's propagation policy: the first
// error reported aborts the parse or the verification pass.
type Error struct {
	Message string
	Code    Code
	Pos     token.Position
}

func New(code Code, pos token.Position, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Format renders the error with a source snippet and caret, matching the
// teacher's CompilerError.Format presentation.
func (e *Error) Format(source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error at %s: %s\n", e.Pos, e.Message)

	lines := strings.Split(source, "\n")
	if e.Pos.Line >= 1 && e.Pos.Line <= len(lines) {
		line := lines[e.Pos.Line-1]
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+col-1))
		sb.WriteString("^\n")
	}
	return sb.String()
}
