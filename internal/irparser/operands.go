package irparser

import (
	"math"
	"strconv"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/token"
)

// parseOperands dispatches to the per-format operand grammar and fills in
// the relevant fields of data. Every format below corresponds to one of the
// named shapes in spec section 4.1's "per-format operand parsers".
func (p *Parser) parseOperands(info ir.OpcodeInfo, data *ir.InstructionData) error {
	switch info.Format {
	case ir.FormatNullAry, ir.FormatTrap:
		return nil

	case ir.FormatUnary:
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		return nil

	case ir.FormatUnaryImm:
		imm, err := p.parseSignedImm()
		if err != nil {
			return err
		}
		data.Imm = imm
		return nil

	case ir.FormatUnaryIeee32:
		bits, err := p.parseIeeeBits(32)
		if err != nil {
			return err
		}
		data.Ieee32 = uint32(bits)
		return nil

	case ir.FormatUnaryIeee64:
		bits, err := p.parseIeeeBits(64)
		if err != nil {
			return err
		}
		data.Ieee64 = bits
		return nil

	case ir.FormatUnaryBool:
		if p.cur.Kind != token.Identifier || (p.cur.Text != "true" && p.cur.Text != "false") {
			return p.errorf(cerrors.ErrSyntax, "expected 'true' or 'false', found %s %q", p.cur.Kind, p.cur.Text)
		}
		if p.cur.Text == "true" {
			data.Imm = 1
		}
		p.advance()
		return nil

	case ir.FormatUnaryGlobalVar:
		gv, err := p.expect(token.GlobalVar)
		if err != nil {
			return err
		}
		data.GlobalVarRef = ir.GlobalVar(gv.Handle)
		return nil

	case ir.FormatBinary:
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		y, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{x, y}
		return nil

	case ir.FormatBinaryImm:
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		imm, err := p.parseSignedImm()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{x}
		data.Imm = imm
		return nil

	case ir.FormatTernary:
		vals, err := p.parseValueList(3)
		if err != nil {
			return err
		}
		data.Args = vals
		return nil

	case ir.FormatMultiAry:
		vals, err := p.parseOptionalValueList()
		if err != nil {
			return err
		}
		data.Args = vals
		return nil

	case ir.FormatJump:
		dest, err := p.parseEbbDest()
		if err != nil {
			return err
		}
		data.Destinations = []ir.BranchDest{dest}
		return nil

	case ir.FormatBranch:
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		dest, err := p.parseEbbDest()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		data.Destinations = []ir.BranchDest{dest}
		return nil

	case ir.FormatBranchIcmp:
		cond, err := p.parseCond()
		if err != nil {
			return err
		}
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		y, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		dest, err := p.parseEbbDest()
		if err != nil {
			return err
		}
		data.Cond = cond
		data.Args = []ir.Value{x, y}
		data.Destinations = []ir.BranchDest{dest}
		return nil

	case ir.FormatBranchTable:
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		defTok, err := p.expect(token.Ebb)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		jt, err := p.expect(token.JumpTable)
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		data.Destinations = []ir.BranchDest{{Ebb: ir.Ebb(defTok.Handle)}}
		data.JumpTableRef = ir.JumpTable(jt.Handle)
		return nil

	case ir.FormatInsertLane:
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		lane, err := p.parseLane()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		y, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{x, y}
		data.Lane = lane
		return nil

	case ir.FormatExtractLane:
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		lane, err := p.parseLane()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{x}
		data.Lane = lane
		return nil

	case ir.FormatIntCompare, ir.FormatFloatCompare:
		cond, err := p.parseCond()
		if err != nil {
			return err
		}
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		y, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Cond = cond
		data.Args = []ir.Value{x, y}
		return nil

	case ir.FormatIntCompareImm:
		cond, err := p.parseCond()
		if err != nil {
			return err
		}
		x, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		imm, err := p.parseSignedImm()
		if err != nil {
			return err
		}
		data.Cond = cond
		data.Args = []ir.Value{x}
		data.Imm = imm
		return nil

	case ir.FormatIntSelect:
		vals, err := p.parseValueList(3)
		if err != nil {
			return err
		}
		data.Args = vals
		return nil

	case ir.FormatCall:
		fn, err := p.expect(token.FuncRef)
		if err != nil {
			return err
		}
		args, err := p.parseParenValueList()
		if err != nil {
			return err
		}
		data.FuncRefRef = ir.FuncRef(fn.Handle)
		data.SigRefRef = p.fn.ExtFuncData(data.FuncRefRef).Signature
		data.Args = args
		return nil

	case ir.FormatCallIndirect:
		sig, err := p.expect(token.SigRef)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		callee, err := p.parseValue()
		if err != nil {
			return err
		}
		args, err := p.parseParenValueList()
		if err != nil {
			return err
		}
		data.SigRefRef = ir.SigRef(sig.Handle)
		data.Args = append([]ir.Value{callee}, args...)
		return nil

	case ir.FormatFuncAddr:
		fn, err := p.expect(token.FuncRef)
		if err != nil {
			return err
		}
		data.FuncRefRef = ir.FuncRef(fn.Handle)
		return nil

	case ir.FormatStackLoad:
		slot, err := p.expect(token.StackSlot)
		if err != nil {
			return err
		}
		data.StackSlotRef = ir.StackSlot(slot.Handle)
		data.Offset = p.parseOptionalCommaOffset()
		return nil

	case ir.FormatStackStore:
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		slot, err := p.expect(token.StackSlot)
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		data.StackSlotRef = ir.StackSlot(slot.Handle)
		data.Offset = p.parseOptionalCommaOffset()
		return nil

	case ir.FormatHeapAddr:
		heap, err := p.expect(token.Heap)
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		data.HeapRef = ir.Heap(heap.Handle)
		data.Args = []ir.Value{v}
		data.Offset = p.parseOptionalCommaOffset()
		return nil

	case ir.FormatLoad:
		p.parseMemFlags(&data.MemFlags)
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		data.Offset = p.parseOptionalCommaOffset()
		return nil

	case ir.FormatStore:
		p.parseMemFlags(&data.MemFlags)
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Comma); err != nil {
			return err
		}
		addr, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v, addr}
		data.Offset = p.parseOptionalCommaOffset()
		return nil

	case ir.FormatRegMove:
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		src, dst, err := p.parseLocArrow()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		data.Src, data.Dst = src, dst
		return nil

	case ir.FormatCopySpecial:
		src, err := p.parseLoc()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.Arrow); err != nil {
			return err
		}
		dst, err := p.parseLoc()
		if err != nil {
			return err
		}
		data.Src, data.Dst = src, dst
		return nil

	case ir.FormatRegSpill, ir.FormatRegFill:
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		src, dst, err := p.parseLocArrow()
		if err != nil {
			return err
		}
		data.Args = []ir.Value{v}
		data.Src, data.Dst = src, dst
		return nil

	case ir.FormatIntCondTrap, ir.FormatFloatCondTrap:
		cond, err := p.parseCond()
		if err != nil {
			return err
		}
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		data.Cond = cond
		data.Args = []ir.Value{v}
		return nil

	default:
		return p.errorf(cerrors.ErrSyntax, "unsupported instruction format")
	}
}

func (p *Parser) parseValue() (ir.Value, error) {
	t, err := p.expect(token.Value)
	if err != nil {
		return ir.NilValue, err
	}
	v := ir.Value(t.Handle)
	p.fn.DFG.EnsureValue(v)
	return v, nil
}

func (p *Parser) parseValueList(n int) ([]ir.Value, error) {
	vals := make([]ir.Value, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (p *Parser) parseOptionalValueList() ([]ir.Value, error) {
	if p.cur.Kind != token.Value {
		return nil, nil
	}
	var vals []ir.Value
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}
	return vals, nil
}

func (p *Parser) parseParenValueList() ([]ir.Value, error) {
	if _, err := p.expect(token.LPar); err != nil {
		return nil, err
	}
	var vals []ir.Value
	for p.cur.Kind != token.RPar {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(token.RPar); err != nil {
		return nil, err
	}
	return vals, nil
}

func (p *Parser) parseEbbDest() (ir.BranchDest, error) {
	tok, err := p.expect(token.Ebb)
	if err != nil {
		return ir.BranchDest{}, err
	}
	dest := ir.BranchDest{Ebb: ir.Ebb(tok.Handle)}
	if p.cur.Kind == token.LPar {
		args, err := p.parseParenValueList()
		if err != nil {
			return ir.BranchDest{}, err
		}
		dest.Args = args
	}
	return dest, nil
}

func (p *Parser) parseCond() (string, error) {
	if p.cur.Kind != token.Identifier {
		return "", p.errorf(cerrors.ErrSyntax, "expected a condition code, found %s %q", p.cur.Kind, p.cur.Text)
	}
	cond := p.cur.Text
	p.advance()
	return cond, nil
}

func (p *Parser) parseLane() (uint8, error) {
	if p.cur.Kind != token.Integer {
		return 0, p.errorf(cerrors.ErrSyntax, "expected a lane index, found %s %q", p.cur.Kind, p.cur.Text)
	}
	n, err := strconv.ParseUint(p.cur.Text, 10, 8)
	if err != nil {
		return 0, p.errorf(cerrors.ErrSyntax, "lane index %q out of range", p.cur.Text)
	}
	p.advance()
	return uint8(n), nil
}

func (p *Parser) parseSignedImm() (int64, error) {
	neg := false
	if p.cur.Kind == token.Minus {
		neg = true
		p.advance()
	}
	if p.cur.Kind != token.Integer {
		return 0, p.errorf(cerrors.ErrSyntax, "expected an integer immediate, found %s %q", p.cur.Kind, p.cur.Text)
	}
	n, err := strconv.ParseInt(p.cur.Text, 10, 64)
	if err != nil {
		return 0, p.errorf(cerrors.ErrSyntax, "immediate %q out of range", p.cur.Text)
	}
	p.advance()
	if neg {
		return -n, nil
	}
	return n, nil
}

// parseIeeeBits accepts either a Float literal (reparsed to its bit
// pattern) or a HexSequence spelling the bits directly, matching the two
// ways spec section 6 allows a float literal to be written.
func (p *Parser) parseIeeeBits(width int) (uint64, error) {
	switch p.cur.Kind {
	case token.HexSequence:
		text := p.cur.Text
		p.advance()
		n, err := strconv.ParseUint(text, 0, width)
		if err != nil {
			return 0, p.errorf(cerrors.ErrSyntax, "invalid hex float bits %q", text)
		}
		return n, nil
	case token.Float, token.Integer:
		text := p.cur.Text
		p.advance()
		if width == 32 {
			f, err := strconv.ParseFloat(text, 32)
			if err != nil {
				return 0, p.errorf(cerrors.ErrSyntax, "invalid float literal %q", text)
			}
			return uint64(math.Float32bits(float32(f))), nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, p.errorf(cerrors.ErrSyntax, "invalid float literal %q", text)
		}
		return math.Float64bits(f), nil
	default:
		return 0, p.errorf(cerrors.ErrSyntax, "expected a float literal, found %s %q", p.cur.Kind, p.cur.Text)
	}
}

func (p *Parser) parseOptionalCommaOffset() int32 {
	if p.cur.Kind != token.Comma {
		return 0
	}
	p.advance()
	off, err := p.expectInt("offset")
	if err != nil {
		return 0
	}
	return off
}

func (p *Parser) parseMemFlags(flags *ir.MemFlags) {
	for p.cur.Kind == token.Identifier {
		if !flags.SetByName(p.cur.Text) {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseLoc() (ir.ValueLoc, error) {
	switch p.cur.Kind {
	case token.StackSlot:
		loc := ir.ValueLoc{Kind: ir.LocStackSlotLoc, Slot: ir.StackSlot(p.cur.Handle)}
		p.advance()
		return loc, nil
	case token.Name:
		loc := ir.ValueLoc{Kind: ir.LocRegisterLoc, Reg: trimPercent(p.cur.Text)}
		p.advance()
		return loc, nil
	case token.Minus:
		p.advance()
		return ir.ValueLoc{Kind: ir.LocUnassignedLoc}, nil
	default:
		return ir.ValueLoc{}, p.errorf(cerrors.ErrSyntax, "expected a location, found %s %q", p.cur.Kind, p.cur.Text)
	}
}

func (p *Parser) parseLocArrow() (src, dst ir.ValueLoc, err error) {
	if _, err = p.expect(token.Comma); err != nil {
		return
	}
	if src, err = p.parseLoc(); err != nil {
		return
	}
	if _, err = p.expect(token.Arrow); err != nil {
		return
	}
	dst, err = p.parseLoc()
	return
}

func trimPercent(s string) string {
	if len(s) > 0 && s[0] == '%' {
		return s[1:]
	}
	return s
}
