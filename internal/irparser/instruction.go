package irparser

import (
	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/token"
	"github.com/kbasalt/ebbc/internal/types"
)

// parseInstructionBody parses one opcode and its per-format operands,
// resolves its controlling type variable, creates the instruction, and
// binds resultToks as its SSA results. This is the heart of the textual IR
// grammar (spec section 4.1): a single data-driven dispatch over
// Opcode.Info().Format, rather than one parse function per opcode.
func (p *Parser) parseInstructionBody(ebb ir.Ebb, resultToks []token.Token) (ir.Inst, error) {
	if p.cur.Kind != token.Identifier {
		return ir.NilInst, p.errorf(cerrors.ErrSyntax, "expected an opcode, found %s %q", p.cur.Kind, p.cur.Text)
	}
	op, ok := ir.LookupOpcode(p.cur.Text)
	if !ok {
		return ir.NilInst, p.errorf(cerrors.ErrSyntax, "unknown opcode %q", p.cur.Text)
	}
	p.advance()

	var explicitType types.Type
	hasExplicit := false
	if p.cur.Kind == token.Dot {
		p.advance()
		if p.cur.Kind != token.Type {
			return ir.NilInst, p.errorf(cerrors.ErrSyntax, "expected a value type after '.', found %s %q", p.cur.Kind, p.cur.Text)
		}
		t, ok := types.ByName(p.cur.Text)
		if !ok {
			return ir.NilInst, p.errorf(cerrors.ErrSyntax, "unrecognized type spelling %q", p.cur.Text)
		}
		explicitType, hasExplicit = t, true
		p.advance()
	}

	info := op.Info()
	data := ir.InstructionData{Opcode: op}

	if err := p.parseOperands(info, &data); err != nil {
		return ir.NilInst, err
	}

	ctrl, err := p.resolveCtrlType(info, data, hasExplicit, explicitType)
	if err != nil {
		return ir.NilInst, err
	}
	data.Ctrl = ctrl

	inst := p.fn.MakeInst(data)
	p.fn.AppendInst(ebb, inst)

	if err := p.bindResults(inst, op, info, ctrl, data, resultToks); err != nil {
		return ir.NilInst, err
	}
	return inst, nil
}

// resolveCtrlType implements the four-step controlling-type-variable rule:
// a non-polymorphic opcode resolves to VOID and rejects an explicit `.TYPE`
// suffix; otherwise an explicit suffix wins; otherwise a typevar-operand
// opcode infers its type from the already-typed operand at
// TypevarOperandIdx; any other case is unresolvable.
func (p *Parser) resolveCtrlType(info ir.OpcodeInfo, data ir.InstructionData, hasExplicit bool, explicit types.Type) (types.Type, error) {
	c := info.Constraints
	if !c.Polymorphic {
		if hasExplicit {
			return types.Invalid, p.errorf(cerrors.ErrSyntax, "%s does not take a typevar", info.Name)
		}
		return types.VOID, nil
	}

	var ctrl types.Type
	switch {
	case hasExplicit:
		ctrl = explicit
	case c.UseTypevarOperand:
		if c.TypevarOperandIdx >= len(data.Args) {
			return types.Invalid, p.errorf(cerrors.ErrTypeInfer, "cannot infer controlling type for %s: missing operand", info.Name)
		}
		ctrl = p.fn.DFG.ValueType(data.Args[c.TypevarOperandIdx])
	default:
		if c.Example != "" {
			return types.Invalid, p.errorf(cerrors.ErrTypeInfer, "cannot infer controlling type for %s, e.g. '%s'", info.Name, c.Example)
		}
		return types.Invalid, p.errorf(cerrors.ErrTypeInfer, "cannot infer controlling type for %s", info.Name)
	}

	if c.CtrlTypeset != nil && !c.CtrlTypeset.Contains(ctrl) {
		return types.Invalid, p.errorf(cerrors.ErrTypeInfer, "type %s is not admissible for %s", ctrl, info.Name)
	}
	return ctrl, nil
}

// bindResults allocates resultToks as inst's SSA results, checking arity
// against the opcode's declared NumResults (spec section 7, "arity"
// errors) and choosing each result's type: the controlling type for most
// formats, a fixed type for the handful of opcodes whose result type
// differs from it, or the referenced signature's declared return types for
// the variadic call formats.
func (p *Parser) bindResults(inst ir.Inst, op ir.Opcode, info ir.OpcodeInfo, ctrl types.Type, data ir.InstructionData, resultToks []token.Token) error {
	n := info.Constraints.NumResults

	if n == -1 {
		var sigReturns []ir.AbiParam
		switch op {
		case ir.OpCall:
			sigReturns = p.fn.SignatureData(data.SigRefRef).Signature.Returns
		case ir.OpCallIndirect:
			sigReturns = p.fn.SignatureData(data.SigRefRef).Signature.Returns
		}
		vals := valuesOf(resultToks)
		p.fn.DFG.MakeInstResultsForParser(inst, vals, types.VOID)
		for i, v := range vals {
			if i < len(sigReturns) {
				p.fn.DFG.SetResultType(v, sigReturns[i].Type)
			}
		}
		return nil
	}

	if n == 0 {
		if len(resultToks) != 0 {
			return cerrors.New(cerrors.ErrArity, resultToks[0].Pos, "%s produces no results", info.Name)
		}
		return nil
	}

	if len(resultToks) != n {
		pos := p.cur.Pos
		if len(resultToks) > 0 {
			pos = resultToks[0].Pos
		}
		return cerrors.New(cerrors.ErrArity, pos, "%s produces %d result(s), found %d", info.Name, n, len(resultToks))
	}

	resultType := resultTypeFor(op, ctrl)
	vals := valuesOf(resultToks)
	p.fn.DFG.MakeInstResultsForParser(inst, vals, resultType)
	return nil
}

func resultTypeFor(op ir.Opcode, ctrl types.Type) types.Type {
	switch op {
	case ir.OpF32const:
		return types.F32
	case ir.OpF64const:
		return types.F64
	case ir.OpIfcmp:
		return types.IFlags
	case ir.OpFfcmp:
		return types.FFlags
	case ir.OpIcmp, ir.OpIcmpImm, ir.OpFcmp:
		return types.B1
	default:
		return ctrl
	}
}

func valuesOf(toks []token.Token) []ir.Value {
	vals := make([]ir.Value, len(toks))
	for i, t := range toks {
		vals[i] = ir.Value(t.Handle)
	}
	return vals
}
