// Package printer renders a Function back to the textual IR form
// internal/irparser reads, so that parse(print(parse(src))) == parse(src)
// is a testable property (spec section 4.1, "the parser and printer agree
// on canonical form").
package printer

import (
	"fmt"
	"strings"

	"github.com/kbasalt/ebbc/internal/ir"
)

// Function renders fn as a `function ...{ ... }` block.
func Function(fn *ir.Function) string {
	var sb strings.Builder
	sb.WriteString("function ")
	sb.WriteString(externalName(fn.Name))
	sb.WriteString(signature(fn.Signature))
	sb.WriteString(" {\n")

	for i, data := range fn.StackSlots {
		fmt.Fprintf(&sb, "    ss%d = %s %d, %d\n", i, data.Kind, data.Size, data.Offset)
	}
	for i, data := range fn.GlobalVars {
		fmt.Fprintf(&sb, "    gv%d = %s\n", i, globalVar(data))
	}
	for i, data := range fn.Heaps {
		fmt.Fprintf(&sb, "    heap%d = %s\n", i, heap(data))
	}
	for i, data := range fn.Signatures {
		fmt.Fprintf(&sb, "    sig%d = %s\n", i, signature(data.Signature))
	}
	for i, data := range fn.ExtFuncs {
		fmt.Fprintf(&sb, "    fn%d = %s%s sig%d\n", i, colocatedPrefix(data.Colocated), externalName(data.Name), data.Signature)
	}
	for i, data := range fn.JumpTables {
		fmt.Fprintf(&sb, "    jt%d = jump_table %s\n", i, jumpTableEntries(data.Entries))
	}

	for _, ebb := range fn.Layout.Ebbs() {
		sb.WriteString(ebbHeader(fn, ebb))
		for _, inst := range fn.Layout.EbbInsts(ebb) {
			sb.WriteString(instruction(fn, inst))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func colocatedPrefix(b bool) string {
	if b {
		return "colocated "
	}
	return ""
}

func externalName(n ir.ExternalName) string {
	if n.IsUser {
		return fmt.Sprintf("u%d:%d", n.Namespace, n.Index)
	}
	return "%" + n.TestName
}

func signature(sig ir.Signature) string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range sig.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(abiParam(p))
	}
	sb.WriteString(")")
	if len(sig.Returns) > 0 {
		sb.WriteString(" -> (")
		for i, p := range sig.Returns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(abiParam(p))
		}
		sb.WriteString(")")
	}
	if sig.CallConv != ir.CallConvFast {
		sb.WriteString(" " + sig.CallConv.String())
	}
	return sb.String()
}

func abiParam(p ir.AbiParam) string {
	s := p.Type.String()
	if ext := p.Extension.String(); ext != "" {
		s += " " + ext
	}
	if purpose := p.Purpose.String(); purpose != "" {
		s += " " + purpose
	}
	return s
}

func globalVar(data ir.GlobalVarData) string {
	switch data.Kind {
	case ir.GVVMContext:
		return offsetSuffix("vmctx", data.Offset)
	case ir.GVDeref:
		return offsetSuffix(fmt.Sprintf("deref gv%d", data.Base), data.Offset)
	default:
		return offsetSuffix(colocatedPrefix(data.Colocated)+externalName(data.Name), data.Offset)
	}
}

func offsetSuffix(base string, offset int32) string {
	if offset == 0 {
		return base
	}
	if offset > 0 {
		return fmt.Sprintf("%s %d", base, offset)
	}
	return fmt.Sprintf("%s -%d", base, -offset)
}

// commaOffsetSuffix renders an instruction-operand offset the way
// internal/irparser's parseOptionalCommaOffset reads it back: a leading
// comma before a nonzero offset, nothing when it is zero.
func commaOffsetSuffix(base string, offset int32) string {
	if offset == 0 {
		return base
	}
	return fmt.Sprintf("%s, %d", base, offset)
}

func heap(data ir.HeapData) string {
	kind := "static"
	if data.Kind == ir.HeapDynamic {
		kind = "dynamic"
	}
	bound := fmt.Sprintf("%d", data.Bound)
	if data.BoundIsGV {
		bound = fmt.Sprintf("gv%d", data.BoundGV)
	}
	s := fmt.Sprintf("%s gv%d min %d, bound %s", kind, data.BaseGV, data.MinSize, bound)
	if data.GuardSize != 0 {
		s += fmt.Sprintf(", guard_size %d", data.GuardSize)
	}
	return s
}

func jumpTableEntries(entries []ir.Ebb) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e == ir.NilEbb {
			parts[i] = "0"
		} else {
			parts[i] = fmt.Sprintf("ebb%d", e)
		}
	}
	return strings.Join(parts, ", ")
}

func ebbHeader(fn *ir.Function, ebb ir.Ebb) string {
	params := fn.DFG.EbbParams(ebb)
	parts := make([]string, len(params))
	for i, v := range params {
		parts[i] = fmt.Sprintf("v%d: %s", v, fn.DFG.ValueType(v))
	}
	return fmt.Sprintf("ebb%d(%s):\n", ebb, strings.Join(parts, ", "))
}

func instruction(fn *ir.Function, inst ir.Inst) string {
	data := fn.DFG.Inst(inst)
	var sb strings.Builder
	sb.WriteString("    ")

	if srcloc, ok := fn.SrcLocs[inst]; ok && srcloc != 0 {
		fmt.Fprintf(&sb, "@%x ", srcloc)
	}
	if enc, ok := fn.Encodings[inst]; ok {
		if enc.Present {
			fmt.Fprintf(&sb, "[%s#%x] ", enc.Recipe, enc.Bits)
		} else {
			sb.WriteString("[-] ")
		}
	}

	results := fn.DFG.InstResults(inst)
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, v := range results {
			parts[i] = fmt.Sprintf("v%d", v)
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(" = ")
	}

	info := data.Opcode.Info()
	sb.WriteString(info.Name)
	if info.Constraints.Polymorphic {
		sb.WriteString("." + data.Ctrl.String())
	}

	operands := operandText(fn, data)
	if operands != "" {
		sb.WriteString(" ")
		sb.WriteString(operands)
	}
	sb.WriteString("\n")
	return sb.String()
}

func operandText(fn *ir.Function, data ir.InstructionData) string {
	var parts []string
	if data.Cond != "" {
		parts = append(parts, data.Cond)
	}

	var argTexts []string
	for _, v := range data.Args {
		argTexts = append(argTexts, fmt.Sprintf("v%d", v))
	}

	switch data.Opcode.Info().Format {
	case ir.FormatUnaryImm:
		return fmt.Sprintf("%d", data.Imm)
	case ir.FormatUnaryIeee32:
		return fmt.Sprintf("0x%x", data.Ieee32)
	case ir.FormatUnaryIeee64:
		return fmt.Sprintf("0x%x", data.Ieee64)
	case ir.FormatBinaryImm:
		return fmt.Sprintf("%s, %d", argTexts[0], data.Imm)
	case ir.FormatIntCompareImm:
		return fmt.Sprintf("%s %s, %d", data.Cond, argTexts[0], data.Imm)
	case ir.FormatUnaryBool:
		if data.Imm != 0 {
			return "true"
		}
		return "false"
	case ir.FormatUnaryGlobalVar:
		return fmt.Sprintf("gv%d", data.GlobalVarRef)
	case ir.FormatJump:
		return destText(data.Destinations[0])
	case ir.FormatBranch:
		return fmt.Sprintf("%s, %s", argTexts[0], destText(data.Destinations[0]))
	case ir.FormatBranchIcmp:
		return fmt.Sprintf("%s %s, %s, %s", data.Cond, argTexts[0], argTexts[1], destText(data.Destinations[0]))
	case ir.FormatIntCompare, ir.FormatFloatCompare:
		return fmt.Sprintf("%s %s, %s", data.Cond, argTexts[0], argTexts[1])
	case ir.FormatBranchTable:
		return fmt.Sprintf("%s, ebb%d, jt%d", argTexts[0], data.Destinations[0].Ebb, data.JumpTableRef)
	case ir.FormatInsertLane:
		return fmt.Sprintf("%s, %d, %s", argTexts[0], data.Lane, argTexts[1])
	case ir.FormatExtractLane:
		return fmt.Sprintf("%s, %d", argTexts[0], data.Lane)
	case ir.FormatCall:
		return fmt.Sprintf("fn%d(%s)", data.FuncRefRef, strings.Join(argTexts, ", "))
	case ir.FormatCallIndirect:
		callee := argTexts[0]
		rest := argTexts[1:]
		return fmt.Sprintf("sig%d, %s(%s)", data.SigRefRef, callee, strings.Join(rest, ", "))
	case ir.FormatFuncAddr:
		return fmt.Sprintf("fn%d", data.FuncRefRef)
	case ir.FormatStackLoad:
		return commaOffsetSuffix(fmt.Sprintf("ss%d", data.StackSlotRef), data.Offset)
	case ir.FormatStackStore:
		return fmt.Sprintf("%s, %s", argTexts[0], commaOffsetSuffix(fmt.Sprintf("ss%d", data.StackSlotRef), data.Offset))
	case ir.FormatHeapAddr:
		return fmt.Sprintf("heap%d, %s", data.HeapRef, commaOffsetSuffix(argTexts[0], data.Offset))
	case ir.FormatLoad:
		return flagsPrefix(data.MemFlags) + commaOffsetSuffix(argTexts[0], data.Offset)
	case ir.FormatStore:
		return flagsPrefix(data.MemFlags) + fmt.Sprintf("%s, %s", argTexts[0], commaOffsetSuffix(argTexts[1], data.Offset))
	case ir.FormatRegMove:
		return fmt.Sprintf("%s, %s -> %s", argTexts[0], data.Src, data.Dst)
	case ir.FormatCopySpecial:
		return fmt.Sprintf("%s -> %s", data.Src, data.Dst)
	case ir.FormatRegSpill, ir.FormatRegFill:
		return fmt.Sprintf("%s, %s -> %s", argTexts[0], data.Src, data.Dst)
	case ir.FormatIntCondTrap, ir.FormatFloatCondTrap:
		return fmt.Sprintf("%s %s", data.Cond, argTexts[0])
	case ir.FormatNullAry, ir.FormatTrap:
		return ""
	default:
		parts = append(parts, argTexts...)
		return strings.Join(parts, ", ")
	}
}

func flagsPrefix(f ir.MemFlags) string {
	names := f.Names()
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, " ") + " "
}

func destText(dest ir.BranchDest) string {
	if len(dest.Args) == 0 {
		return fmt.Sprintf("ebb%d", dest.Ebb)
	}
	parts := make([]string, len(dest.Args))
	for i, v := range dest.Args {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return fmt.Sprintf("ebb%d(%s)", dest.Ebb, strings.Join(parts, ", "))
}
