package liveness

import (
	"testing"

	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/types"
)

// buildDiamond builds:
//
//	ebb0(v0: i32):
//	    brz v0, ebb2
//	    jump ebb1
//	ebb1:
//	    v1 = iadd_imm v0, 1
//	    jump ebb2
//	ebb2:
//	    return v0
//
// so v0 is live across every block, and v1 is live only within ebb1.
func buildDiamond() *ir.Function {
	fn := ir.NewFunction(ir.TestExternalName("diamond"), ir.Signature{})
	fn.AddEbb(0)
	fn.AddEbb(1)
	fn.AddEbb(2)

	fn.DFG.AppendEbbParamForParser(0, 0, types.I32)

	brz := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpBrz,
		Args:         []ir.Value{0},
		Destinations: []ir.BranchDest{{Ebb: 2}},
	})
	fn.AppendInst(0, brz)
	jump0 := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpJump,
		Destinations: []ir.BranchDest{{Ebb: 1}},
	})
	fn.AppendInst(0, jump0)

	add := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIaddImm, Args: []ir.Value{0}, Imm: 1})
	fn.DFG.MakeInstResultsForParser(add, []ir.Value{1}, types.I32)
	fn.AppendInst(1, add)
	jump1 := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpJump,
		Destinations: []ir.BranchDest{{Ebb: 2}},
	})
	fn.AppendInst(1, jump1)

	ret := fn.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: []ir.Value{0}})
	fn.AppendInst(2, ret)

	return fn
}

func TestLivenessAcrossDiamond(t *testing.T) {
	fn := buildDiamond()
	a := Compute(fn)

	if !contains(a.LiveOut(0), 0) {
		t.Errorf("LiveOut(ebb0) = %v, want it to contain v0", a.LiveOut(0))
	}
	if !contains(a.LiveIn(1), 0) {
		t.Errorf("LiveIn(ebb1) = %v, want it to contain v0", a.LiveIn(1))
	}
	if contains(a.LiveOut(1), 1) {
		t.Errorf("LiveOut(ebb1) = %v, v1 should not survive past its only use", a.LiveOut(1))
	}
	if !contains(a.LiveIn(2), 0) {
		t.Errorf("LiveIn(ebb2) = %v, want it to contain v0 for the return", a.LiveIn(2))
	}
	if contains(a.LiveIn(2), 1) {
		t.Errorf("LiveIn(ebb2) = %v, v1 should not be live into ebb2", a.LiveIn(2))
	}
}

func TestLivenessBrTableSuccessors(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("switcher"), ir.Signature{})
	fn.AddEbb(0)
	fn.AddEbb(1)
	fn.AddEbb(2)
	fn.DFG.AppendEbbParamForParser(0, 0, types.I32)
	fn.DefineJumpTable(0, ir.JumpTableData{Entries: []ir.Ebb{1, 2}})

	brTable := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpBrTable,
		Args:         []ir.Value{0},
		JumpTableRef: 0,
		Destinations: []ir.BranchDest{{Ebb: 1}},
	})
	fn.AppendInst(0, brTable)
	for _, e := range []ir.Ebb{1, 2} {
		ret := fn.MakeInst(ir.InstructionData{Opcode: ir.OpReturn})
		fn.AppendInst(e, ret)
	}

	a := Compute(fn)
	if len(a.succs[0]) < 2 {
		t.Fatalf("br_table should record at least its jump-table entries as successors, got %v", a.succs[0])
	}
	if !containsEbb(a.succs[0], 1) || !containsEbb(a.succs[0], 2) {
		t.Errorf("succs(ebb0) = %v, want it to include both jump-table targets 1 and 2", a.succs[0])
	}
}

func contains(vs []ir.Value, target ir.Value) bool {
	for _, v := range vs {
		if v == target {
			return true
		}
	}
	return false
}

func containsEbb(es []ir.Ebb, target ir.Ebb) bool {
	for _, e := range es {
		if e == target {
			return true
		}
	}
	return false
}
