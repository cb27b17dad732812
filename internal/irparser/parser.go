package irparser

import (
	"strings"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/lexer"
	"github.com/kbasalt/ebbc/internal/sourcemap"
	"github.com/kbasalt/ebbc/internal/token"
)

// Parser is a single-lookahead recursive-descent parser over one source
// file's token stream. Every parse method returns (result, error); the
// first error encountered aborts the whole file parse and is returned to
// the caller untouched, per spec section 7's propagation policy — a
// deliberate departure from the teacher's own parser, which collects
// multiple diagnostics before giving up (documented in DESIGN.md).
type Parser struct {
	lex      *lexer.Lexer
	registry *isa.Registry
	cur      token.Token

	gathering  bool
	commentBuf []string
	comments   []Comment

	fn *ir.Function
	sm *sourcemap.SourceMap

	pending []token.Token // one-token lookahead buffer beyond cur
}

// Parse tokenizes and parses src into a TestFile.
func Parse(src string) (*TestFile, error) {
	p := &Parser{lex: lexer.New(src), registry: isa.NewRegistry(), gathering: true}
	p.advance()
	return p.parseFile()
}

func (p *Parser) advance() {
	if len(p.pending) > 0 {
		p.cur = p.pending[0]
		p.pending = p.pending[1:]
		return
	}
	p.cur = p.nextRaw()
}

// peek returns the token after cur without consuming it, buffering it for
// the next advance(). Needed where the grammar cannot be distinguished on a
// single token, e.g. `vN = OP` versus `vN -> vM` versus a multi-result list.
func (p *Parser) peek() token.Token {
	if len(p.pending) == 0 {
		p.pending = append(p.pending, p.nextRaw())
	}
	return p.pending[0]
}

// nextRaw pulls the next non-comment token, diverting Comment tokens into
// the gather buffer when gathering is active.
func (p *Parser) nextRaw() token.Token {
	for {
		t := p.lex.Next()
		if t.Kind == token.Comment {
			if p.gathering {
				p.commentBuf = append(p.commentBuf, strings.TrimPrefix(strings.TrimSpace(t.Text), ";"))
			}
			continue
		}
		return t
	}
}

// claimComments attributes every comment gathered since the last claim to
// owner, returning them and resetting the buffer (spec section 4.1,
// "comment attribution").
func (p *Parser) claimComments(owner string) []Comment {
	if len(p.commentBuf) == 0 {
		return nil
	}
	out := make([]Comment, 0, len(p.commentBuf))
	for _, text := range p.commentBuf {
		c := Comment{Owner: owner, Text: text}
		out = append(out, c)
		p.comments = append(p.comments, c)
	}
	p.commentBuf = nil
	return out
}

func (p *Parser) errorf(code cerrors.Code, format string, args ...any) error {
	return cerrors.New(code, p.cur.Pos, format, args...)
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, p.errorf(cerrors.ErrSyntax, "expected %s, found %s %q", k, p.cur.Kind, p.cur.Text)
	}
	t := p.cur
	p.advance()
	return t, nil
}

func (p *Parser) atKeyword(word string) bool {
	return p.cur.Kind == token.Identifier && p.cur.Text == word
}

func (p *Parser) isCommandStart() bool {
	return p.atKeyword("test") || p.atKeyword("set") || p.atKeyword("isa")
}

func (p *Parser) isFunctionStart() bool { return p.atKeyword("function") }

// parseFile is the top-level grammar entry point: an optional prelude of
// test/set/isa command lines, then zero or more function definitions.
func (p *Parser) parseFile() (*TestFile, error) {
	tf := &TestFile{}

	if err := p.parsePrelude(tf); err != nil {
		return nil, err
	}
	tf.PreambleComments = p.claimComments("<preamble>")

	for p.isFunctionStart() {
		fr, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		tf.Functions = append(tf.Functions, fr)
	}

	if p.cur.Kind != token.EOF {
		return nil, p.errorf(cerrors.ErrSyntax, "unexpected %s %q at top level", p.cur.Kind, p.cur.Text)
	}
	if errs := p.lex.Errors(); len(errs) > 0 {
		return nil, cerrors.New(cerrors.ErrLexical, errs[0].Pos, "%s", errs[0].Message)
	}
	return tf, nil
}
