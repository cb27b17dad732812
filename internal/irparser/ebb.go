package irparser

import (
	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/sourcemap"
	"github.com/kbasalt/ebbc/internal/token"
	"github.com/kbasalt/ebbc/internal/types"
)

// parseEbb parses one `ebbN(vM: TYPE, ...): INST*` block and everything up
// to (but not including) the next ebb header or the function's closing
// brace.
func (p *Parser) parseEbb() error {
	tok, _ := p.expect(token.Ebb)
	if err := p.sm.Define(sourcemap.KindEbb, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	ebb := ir.Ebb(tok.Handle)
	p.fn.AddEbb(ebb)

	if _, err := p.expect(token.LPar); err != nil {
		return err
	}
	for p.cur.Kind != token.RPar {
		vtok, err := p.expect(token.Value)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return err
		}
		if p.cur.Kind != token.Type {
			return p.errorf(cerrors.ErrSyntax, "expected a value type, found %s %q", p.cur.Kind, p.cur.Text)
		}
		typ, ok := types.ByName(p.cur.Text)
		if !ok {
			return p.errorf(cerrors.ErrSyntax, "unrecognized type spelling %q", p.cur.Text)
		}
		p.advance()
		p.fn.DFG.AppendEbbParamForParser(ebb, ir.Value(vtok.Handle), typ)
		if p.cur.Kind == token.Comma {
			p.advance()
		}
	}
	p.advance() // consume ')'
	if _, err := p.expect(token.Colon); err != nil {
		return err
	}
	p.claimComments(ebbLabel(tok.Handle))

	for p.cur.Kind != token.Ebb && p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		if err := p.parseEbbStatement(ebb); err != nil {
			return err
		}
	}
	return nil
}

// parseEbbStatement parses one instruction or alias statement inside ebb.
func (p *Parser) parseEbbStatement(ebb ir.Ebb) error {
	gathered := len(p.commentBuf)
	srcloc, hasSrcloc, hasEnc, enc := p.parseInstPrefix()

	if p.cur.Kind == token.Value && p.peek().Kind == token.Arrow {
		return p.parseAliasStmt()
	}

	var resultToks []token.Token
	if p.cur.Kind == token.Value {
		for {
			t, err := p.expect(token.Value)
			if err != nil {
				return err
			}
			resultToks = append(resultToks, t)
			if p.cur.Kind != token.Comma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(token.Equal); err != nil {
			return err
		}
	}

	inst, err := p.parseInstructionBody(ebb, resultToks)
	if err != nil {
		return err
	}
	if hasSrcloc {
		p.fn.SrcLocs[inst] = srcloc
	}
	if hasEnc {
		p.fn.Encodings[inst] = enc
	}
	// Comments read while looking past the statement's last token belong to
	// whichever entity completes next, not to this instruction.
	rest := append([]string(nil), p.commentBuf[gathered:]...)
	p.commentBuf = p.commentBuf[:gathered]
	p.claimComments(instLabel(resultToks))
	p.commentBuf = rest
	return nil
}

func instLabel(results []token.Token) string {
	if len(results) == 0 {
		return "<stmt>"
	}
	return vLabel(results[0].Handle)
}

// parseInstPrefix consumes an optional `@SRCLOC` and an optional
// `[RECIPE HEX16]`/`[-]` encoding bracket, in whichever order they appear.
func (p *Parser) parseInstPrefix() (srcloc uint32, hasSrcloc bool, hasEnc bool, enc ir.Encoding) {
	for {
		switch p.cur.Kind {
		case token.SourceLoc:
			srcloc = parseHexOr0(p.cur.Text)
			hasSrcloc = true
			p.advance()
		case token.LBracket:
			hasEnc = true
			p.advance()
			if p.cur.Kind == token.Minus {
				p.advance()
				enc.Present = false
			} else if p.cur.Kind == token.Identifier {
				enc.Recipe = p.cur.Text
				enc.Present = true
				p.advance()
				if p.cur.Kind == token.HexSequence {
					enc.Bits = uint16(parseHexOr0(p.cur.Text))
					p.advance()
				}
			}
			if p.cur.Kind == token.RBracket {
				p.advance()
			}
		default:
			return srcloc, hasSrcloc, hasEnc, enc
		}
	}
}

func parseHexOr0(text string) uint32 {
	var n uint32
	for _, r := range text {
		n <<= 4
		switch {
		case r >= '0' && r <= '9':
			n |= uint32(r - '0')
		case r >= 'a' && r <= 'f':
			n |= uint32(r-'a') + 10
		case r >= 'A' && r <= 'F':
			n |= uint32(r-'A') + 10
		case r == 'x' || r == 'X':
			n = 0 // restart after the "0x" prefix
		}
	}
	return n
}

func (p *Parser) parseAliasStmt() error {
	dest, err := p.expect(token.Value)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Arrow); err != nil {
		return err
	}
	src, err := p.expect(token.Value)
	if err != nil {
		return err
	}
	p.fn.DFG.EnsureValue(ir.Value(src.Handle))
	p.fn.DFG.RecordAlias(ir.Value(dest.Handle), ir.Value(src.Handle))
	p.claimComments(vLabel(dest.Handle))
	return nil
}
