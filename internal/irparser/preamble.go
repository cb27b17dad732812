package irparser

import (
	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/sourcemap"
	"github.com/kbasalt/ebbc/internal/token"
)

// parsePreambleDecl parses one `ssN = ...`, `gvN = ...`, `heapN = ...`,
// `sigN = ...`, `fnN = ...`, or `jtN = ...` entity declaration, recording
// its definition site in the SourceMap (spec section 4.1, "duplicate
// entity" detection) and padding forward-referenced lower handles with the
// entity kind's zero filler via the Function's ensureX/DefineX accessors.
func (p *Parser) parsePreambleDecl() error {
	switch p.cur.Kind {
	case token.StackSlot:
		return p.parseStackSlotDecl()
	case token.GlobalVar:
		return p.parseGlobalVarDecl()
	case token.Heap:
		return p.parseHeapDecl()
	case token.SigRef:
		return p.parseSigDecl()
	case token.FuncRef:
		return p.parseFuncDecl()
	case token.JumpTable:
		return p.parseJumpTableDecl()
	default:
		return p.errorf(cerrors.ErrSyntax, "expected a preamble declaration or ebb header, found %s %q", p.cur.Kind, p.cur.Text)
	}
}

func (p *Parser) parseStackSlotDecl() error {
	tok, _ := p.expect(token.StackSlot)
	if err := p.sm.Define(sourcemap.KindStackSlot, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	if _, err := p.expect(token.Equal); err != nil {
		return err
	}
	if p.cur.Kind != token.Identifier {
		return p.errorf(cerrors.ErrSyntax, "expected a stack slot kind, found %s %q", p.cur.Kind, p.cur.Text)
	}
	var data ir.StackSlotData
	switch p.cur.Text {
	case "explicit_slot":
		data.Kind = ir.ExplicitSlot
	case "spill_slot":
		data.Kind = ir.SpillSlot
	case "incoming_arg":
		data.Kind = ir.IncomingArg
	case "outgoing_arg":
		data.Kind = ir.OutgoingArg
	default:
		return p.errorf(cerrors.ErrSyntax, "unknown stack slot kind %q", p.cur.Text)
	}
	p.advance()

	size, err := p.expectUint("stack slot size")
	if err != nil {
		return err
	}
	data.Size = size

	if p.cur.Kind == token.Comma {
		p.advance()
		off, err := p.expectInt("stack slot offset")
		if err != nil {
			return err
		}
		data.Offset = off
	}

	p.fn.DefineStackSlot(ir.StackSlot(tok.Handle), data)
	p.claimComments(ssLabel(tok.Handle))
	return nil
}

func (p *Parser) parseGlobalVarDecl() error {
	tok, _ := p.expect(token.GlobalVar)
	if err := p.sm.Define(sourcemap.KindGlobalVar, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	if _, err := p.expect(token.Equal); err != nil {
		return err
	}

	var data ir.GlobalVarData
	switch {
	case p.atKeyword("vmctx"):
		p.advance()
		data.Kind = ir.GVVMContext
		data.Offset = p.parseOptionalSignedOffset()

	case p.atKeyword("deref"):
		p.advance()
		base, err := p.expect(token.GlobalVar)
		if err != nil {
			return err
		}
		data.Kind = ir.GVDeref
		data.Base = ir.GlobalVar(base.Handle)
		data.Offset = p.parseOptionalSignedOffset()

	default:
		if p.atKeyword("colocated") {
			data.Colocated = true
			p.advance()
		}
		if p.cur.Kind != token.Name && p.cur.Kind != token.UserRef {
			return p.errorf(cerrors.ErrSyntax, "expected a symbol name, found %s %q", p.cur.Kind, p.cur.Text)
		}
		data.Kind = ir.GVSymbol
		data.Name = externalNameFromToken(p.cur)
		p.advance()
		data.Offset = p.parseOptionalSignedOffset()
	}

	p.fn.DefineGlobalVar(ir.GlobalVar(tok.Handle), data)
	p.claimComments(gvLabel(tok.Handle))
	return nil
}

func (p *Parser) parseOptionalSignedOffset() int32 {
	if p.cur.Kind != token.Minus && p.cur.Kind != token.Integer {
		return 0
	}
	neg := false
	if p.cur.Kind == token.Minus {
		neg = true
		p.advance()
	}
	n, err := p.expectInt("offset")
	if err != nil {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

func (p *Parser) parseHeapDecl() error {
	tok, _ := p.expect(token.Heap)
	if err := p.sm.Define(sourcemap.KindHeap, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	if _, err := p.expect(token.Equal); err != nil {
		return err
	}

	var data ir.HeapData
	switch {
	case p.atKeyword("static"):
		data.Kind = ir.HeapStatic
	case p.atKeyword("dynamic"):
		data.Kind = ir.HeapDynamic
	default:
		return p.errorf(cerrors.ErrSyntax, "expected 'static' or 'dynamic', found %s %q", p.cur.Kind, p.cur.Text)
	}
	p.advance()

	gv, err := p.expect(token.GlobalVar)
	if err != nil {
		return err
	}
	data.BaseKind = ir.HeapBaseGlobalVar
	data.BaseGV = ir.GlobalVar(gv.Handle)

	if p.atKeyword("min") {
		p.advance()
		n, err := p.expectUint64("heap min size")
		if err != nil {
			return err
		}
		data.MinSize = n
	}
	if p.cur.Kind == token.Comma {
		p.advance()
	}
	if p.atKeyword("bound") {
		p.advance()
		if p.cur.Kind == token.GlobalVar {
			data.BoundIsGV = true
			data.BoundGV = ir.GlobalVar(p.cur.Handle)
			p.advance()
		} else {
			n, err := p.expectUint64("heap bound")
			if err != nil {
				return err
			}
			data.Bound = n
		}
	}
	if p.cur.Kind == token.Comma {
		p.advance()
		if p.atKeyword("guard_size") {
			p.advance()
			n, err := p.expectUint64("guard size")
			if err != nil {
				return err
			}
			data.GuardSize = n
		}
	}

	p.fn.DefineHeap(ir.Heap(tok.Handle), data)
	p.claimComments(heapLabel(tok.Handle))
	return nil
}

func (p *Parser) parseSigDecl() error {
	tok, _ := p.expect(token.SigRef)
	if err := p.sm.Define(sourcemap.KindSigRef, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	if _, err := p.expect(token.Equal); err != nil {
		return err
	}
	sig, err := p.parseSignature()
	if err != nil {
		return err
	}
	p.fn.DefineSignature(ir.SigRef(tok.Handle), ir.SignatureData{Signature: sig})
	p.claimComments(sigLabel(tok.Handle))
	return nil
}

func (p *Parser) parseFuncDecl() error {
	tok, _ := p.expect(token.FuncRef)
	if err := p.sm.Define(sourcemap.KindFuncRef, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	if _, err := p.expect(token.Equal); err != nil {
		return err
	}

	var data ir.ExtFuncData
	if p.atKeyword("colocated") {
		data.Colocated = true
		p.advance()
	}
	if p.cur.Kind != token.Name && p.cur.Kind != token.UserRef {
		return p.errorf(cerrors.ErrSyntax, "expected a function name, found %s %q", p.cur.Kind, p.cur.Text)
	}
	data.Name = externalNameFromToken(p.cur)
	p.advance()

	if p.cur.Kind == token.SigRef {
		data.Signature = ir.SigRef(p.cur.Handle)
		p.advance()
	} else {
		sig, err := p.parseSignature()
		if err != nil {
			return err
		}
		newSig := ir.SigRef(len(p.fn.Signatures))
		p.fn.DefineSignature(newSig, ir.SignatureData{Signature: sig})
		data.Signature = newSig
	}

	p.fn.DefineExtFunc(ir.FuncRef(tok.Handle), data)
	p.claimComments(fnLabel(tok.Handle))
	return nil
}

func (p *Parser) parseJumpTableDecl() error {
	tok, _ := p.expect(token.JumpTable)
	if err := p.sm.Define(sourcemap.KindJumpTable, tok.Handle, tok.Pos); err != nil {
		return cerrors.New(cerrors.ErrReference, tok.Pos, "%s", err)
	}
	if _, err := p.expect(token.Equal); err != nil {
		return err
	}
	if !p.atKeyword("jump_table") {
		return p.errorf(cerrors.ErrSyntax, "expected 'jump_table', found %s %q", p.cur.Kind, p.cur.Text)
	}
	p.advance()

	var entries []ir.Ebb
	for {
		switch p.cur.Kind {
		case token.Ebb:
			entries = append(entries, ir.Ebb(p.cur.Handle))
			p.advance()
		case token.Integer:
			if p.cur.Text != "0" {
				return p.errorf(cerrors.ErrSyntax, "expected an ebb reference or literal 0, found %q", p.cur.Text)
			}
			entries = append(entries, ir.NilEbb)
			p.advance()
		default:
			return p.errorf(cerrors.ErrSyntax, "expected an ebb reference or literal 0, found %s %q", p.cur.Kind, p.cur.Text)
		}
		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}

	p.fn.DefineJumpTable(ir.JumpTable(tok.Handle), ir.JumpTableData{Entries: entries})
	p.claimComments(jtLabel(tok.Handle))
	return nil
}
