// Package lexer tokenizes the textual IR format described in spec section 6.
// It is the parser's external token-producing collaborator: a single-pass
// scanner that never backtracks on its own, leaving lookahead to the parser.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kbasalt/ebbc/internal/token"
)

// entityPrefixes maps a leading identifier prefix to the handle-kinded
// token.Kind it introduces, e.g. "v12" -> token.Value with Handle 12.
var entityPrefixes = map[string]token.Kind{
	"v": token.Value, "ebb": token.Ebb, "ss": token.StackSlot,
	"gv": token.GlobalVar, "heap": token.Heap, "sig": token.SigRef,
	"fn": token.FuncRef, "jt": token.JumpTable,
}

// typeKeywords is the closed set of value-type spellings the lexer
// recognizes directly, sparing the parser from having to reclassify
// identifiers itself.
var typeKeywords = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true,
	"f32": true, "f64": true, "b1": true,
	"iflags": true, "fflags": true,
	"r32": true, "r64": true,
}

// Error is a lexical failure: an unrecognized character or malformed
// literal. The parser reports the first of these as an ErrLexical
// diagnostic once it reaches the end of the file; an ILLEGAL token that
// breaks the grammar earlier fails the parse as a syntax error instead.
type Error struct {
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Lexer scans UTF-8 source text into a stream of tokens, funneling
// malformed input into an accumulated error list rather than stopping.
type Lexer struct {
	input        string
	errors       []Error
	position     int
	readPosition int
	line         int
	column       int
	offset       int
	ch           rune
}

// New creates a Lexer over src, ready to yield its first token.
func New(src string) *Lexer {
	l := &Lexer{input: src, line: 1, column: 0}
	l.readChar()
	return l
}

// Errors returns every lexical error accumulated so far.
func (l *Lexer) Errors() []Error { return l.errors }

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += width
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.ch = r
	l.column++
	l.offset = l.position
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) curPos() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.offset}
}

// Next scans and returns the next token. It skips whitespace and blank
// lines but returns each `;` comment as a Comment token, leaving the
// comment-gathering decision to the parser's mode flag.
func (l *Lexer) Next() token.Token {
	l.skipSpacesAndNewlinesButNotComments()

	pos := l.curPos()

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.EOF, Pos: pos}
	case l.ch == ';':
		return l.readComment(pos)
	case l.ch == '(':
		l.readChar()
		return token.Token{Kind: token.LPar, Text: "(", Pos: pos}
	case l.ch == ')':
		l.readChar()
		return token.Token{Kind: token.RPar, Text: ")", Pos: pos}
	case l.ch == '{':
		l.readChar()
		return token.Token{Kind: token.LBrace, Text: "{", Pos: pos}
	case l.ch == '}':
		l.readChar()
		return token.Token{Kind: token.RBrace, Text: "}", Pos: pos}
	case l.ch == '[':
		l.readChar()
		return token.Token{Kind: token.LBracket, Text: "[", Pos: pos}
	case l.ch == ']':
		l.readChar()
		return token.Token{Kind: token.RBracket, Text: "]", Pos: pos}
	case l.ch == ':':
		l.readChar()
		return token.Token{Kind: token.Colon, Text: ":", Pos: pos}
	case l.ch == ',':
		l.readChar()
		return token.Token{Kind: token.Comma, Text: ",", Pos: pos}
	case l.ch == '=':
		l.readChar()
		return token.Token{Kind: token.Equal, Text: "=", Pos: pos}
	case l.ch == '.':
		l.readChar()
		return token.Token{Kind: token.Dot, Text: ".", Pos: pos}
	case l.ch == '-':
		if l.peekChar() == '>' {
			l.readChar()
			l.readChar()
			return token.Token{Kind: token.Arrow, Text: "->", Pos: pos}
		}
		if isDigit(l.peekChar()) || startsNaN(l.input[l.readPosition:]) || startsInf(l.input[l.readPosition:]) {
			return l.readNumber(pos)
		}
		l.readChar()
		return token.Token{Kind: token.Minus, Text: "-", Pos: pos}
	case l.ch == '@':
		return l.readSourceLoc(pos)
	case l.ch == '#':
		return l.readEncodingBits(pos)
	case l.ch == '%':
		return l.readRegisterName(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == 'N' && startsNaN(l.input[l.position:]):
		return l.readNumber(pos)
	case l.ch == 'I' && startsInf(l.input[l.position:]):
		return l.readNumber(pos)
	case isIdentStart(l.ch):
		return l.readIdentLike(pos)
	default:
		bad := l.ch
		l.readChar()
		l.errors = append(l.errors, Error{
			Message: fmt.Sprintf("invalid character %q", bad),
			Pos:     pos,
		})
		return token.Token{Kind: token.ILLEGAL, Text: string(bad), Pos: pos}
	}
}

func (l *Lexer) skipSpacesAndNewlinesButNotComments() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func (l *Lexer) readComment(pos token.Position) token.Token {
	start := l.position
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	return token.Token{Kind: token.Comment, Text: l.input[start:l.position], Pos: pos}
}

func (l *Lexer) readSourceLoc(pos token.Position) token.Token {
	start := l.position
	l.readChar() // consume '@'
	for isHexDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.SourceLoc, Text: l.input[start+1 : l.position], Pos: pos}
}

// readEncodingBits scans a `#HEX` encoding-bits literal, the instruction-
// prefix spelling the printer emits for `[recipe#bits]`. Distinct from the
// `0x`-prefixed HexSequence spelling parseIeeeBits reads: both share
// token.HexSequence, but each call site parses its own known source form.
func (l *Lexer) readEncodingBits(pos token.Position) token.Token {
	start := l.position
	l.readChar() // consume '#'
	for isHexDigit(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.HexSequence, Text: l.input[start+1 : l.position], Pos: pos}
}

func (l *Lexer) readRegisterName(pos token.Position) token.Token {
	start := l.position
	l.readChar() // consume '%'
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return token.Token{Kind: token.Name, Text: l.input[start:l.position], Pos: pos}
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return token.Token{Kind: token.HexSequence, Text: l.input[start:l.position], Pos: pos}
	}
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'N' && startsNaN(l.input[l.position:]) {
		isFloat = true
		for i := 0; i < 3; i++ {
			l.readChar()
		}
	} else if l.ch == 'I' && startsInf(l.input[l.position:]) {
		isFloat = true
		for i := 0; i < 3; i++ {
			l.readChar()
		}
	}
	text := l.input[start:l.position]
	if isFloat {
		return token.Token{Kind: token.Float, Text: text, Pos: pos}
	}
	tok := token.Token{Kind: token.Integer, Text: text, Pos: pos}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil && n >= 0 {
		tok.Handle = uint32(n)
		tok.HasDigit = true
	}
	return tok
}

func (l *Lexer) readIdentLike(pos token.Position) token.Token {
	start := l.position
	for isIdentPart(l.ch) {
		// ':' only continues the `u<namespace>:<index>` user-ref form, so
		// `v0: i32` still lexes as a value handle followed by a Colon.
		if sofar := l.input[start:l.position]; l.ch == ':' && !(len(sofar) > 1 && sofar[0] == 'u' && allDigits(sofar[1:])) {
			break
		}
		l.readChar()
	}
	text := l.input[start:l.position]

	if kind, handle, ok := splitEntityPrefix(text); ok {
		return token.Token{Kind: kind, Text: text, Handle: handle, HasDigit: true, Pos: pos}
	}
	if typeKeywords[text] || isVectorTypeSpelling(text) {
		return token.Token{Kind: token.Type, Text: text, Pos: pos}
	}
	if strings.HasPrefix(text, "u") && strings.Contains(text, ":") {
		return token.Token{Kind: token.UserRef, Text: text, Pos: pos}
	}
	return token.Token{Kind: token.Identifier, Text: text, Pos: pos}
}

// splitEntityPrefix recognizes "<prefix><decimal digits>" identifiers like
// "v12" or "ebb3" and reports the entity kind and parsed handle.
func splitEntityPrefix(text string) (token.Kind, uint32, bool) {
	for prefix, kind := range entityPrefixes {
		if !strings.HasPrefix(text, prefix) {
			continue
		}
		digits := text[len(prefix):]
		if digits == "" || !allDigits(digits) {
			continue
		}
		n, err := strconv.ParseUint(digits, 10, 32)
		if err != nil {
			continue
		}
		return kind, uint32(n), true
	}
	return 0, 0, false
}

// isVectorTypeSpelling recognizes "<scalar>x<lanes>" type spellings like
// "i32x4" or "b1x8", so the parser sees them as a single token.Type instead
// of an unrecognized Identifier (types.ByName parses the lane count itself,
// this only decides the token's Kind).
func isVectorTypeSpelling(text string) bool {
	for scalar := range typeKeywords {
		if !strings.HasPrefix(text, scalar) {
			continue
		}
		rest := text[len(scalar):]
		if len(rest) < 2 || rest[0] != 'x' || !allDigits(rest[1:]) {
			continue
		}
		return true
	}
	return false
}

func startsNaN(s string) bool { return strings.HasPrefix(s, "NaN") }
func startsInf(s string) bool { return strings.HasPrefix(s, "Inf") }

func allDigits(s string) bool {
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isHexDigit(r rune) bool   { return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') }
func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ':'
}
