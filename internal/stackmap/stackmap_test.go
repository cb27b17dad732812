package stackmap

import (
	"testing"

	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/types"
)

// buildCallWithLiveRef builds a single-EBB function where a reference-typed
// value is live across a call, so the inserter must record it as a root:
//
//	ebb0(v0: r64):
//	    v1 = call fn0()
//	    return v0
func buildCallWithLiveRef() *ir.Function {
	fn := ir.NewFunction(ir.TestExternalName("gc_call"), ir.Signature{})
	fn.AddEbb(0)
	fn.DFG.AppendEbbParamForParser(0, 0, types.R64)
	fn.DefineExtFunc(0, ir.ExtFuncData{Name: ir.TestExternalName("callee")})

	call := fn.MakeInst(ir.InstructionData{Opcode: ir.OpCall, FuncRefRef: 0})
	fn.DFG.MakeInstResultsForParser(call, nil, types.VOID)
	fn.AppendInst(0, call)

	ret := fn.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: []ir.Value{0}})
	fn.AppendInst(0, ret)

	return fn
}

func TestInserterRecordsLiveRefAcrossCall(t *testing.T) {
	fn := buildCallWithLiveRef()
	registry := isa.NewRegistry()
	target, err := registry.New("x86_64", nil)
	if err != nil {
		t.Fatalf("New(x86_64) failed: %v", err)
	}

	inserter := New(fn, target)
	n := inserter.Run()
	if n != 1 {
		t.Fatalf("Run() inserted %d stackmaps, want 1", n)
	}

	var found bool
	for _, inst := range fn.Layout.EbbInsts(0) {
		data := fn.DFG.Inst(inst)
		if data.Opcode != ir.OpStackmap {
			continue
		}
		found = true
		if len(data.Args) != 1 || data.Args[0] != 0 {
			t.Errorf("stackmap roots = %v, want [v0]", data.Args)
		}
		if enc, ok := fn.Encodings[inst]; !ok || !enc.Present {
			t.Error("inserted stackmap instruction should have an encoding recorded")
		}
	}
	if !found {
		t.Error("no stackmap instruction found in the layout after Run()")
	}
}

func TestInserterSkipsNonSafepoints(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("no_calls"), ir.Signature{})
	fn.AddEbb(0)
	fn.DFG.AppendEbbParamForParser(0, 0, types.I32)
	add := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIaddImm, Args: []ir.Value{0}, Imm: 1})
	fn.DFG.MakeInstResultsForParser(add, []ir.Value{1}, types.I32)
	fn.AppendInst(0, add)
	ret := fn.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: []ir.Value{1}})
	fn.AppendInst(0, ret)

	inserter := New(fn, nil)
	if n := inserter.Run(); n != 0 {
		t.Errorf("Run() inserted %d stackmaps in a function with no calls, want 0", n)
	}
}

func TestInserterHandlesSelfLoop(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("self_loop"), ir.Signature{})
	fn.AddEbb(0)
	fn.DFG.AppendEbbParamForParser(0, 0, types.R64)
	fn.DefineExtFunc(0, ir.ExtFuncData{Name: ir.TestExternalName("callee")})

	call := fn.MakeInst(ir.InstructionData{Opcode: ir.OpCall, FuncRefRef: 0})
	fn.DFG.MakeInstResultsForParser(call, nil, types.VOID)
	fn.AppendInst(0, call)

	brnz := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpBrnz,
		Args:         []ir.Value{0},
		Destinations: []ir.BranchDest{{Ebb: 0, Args: []ir.Value{0}}},
	})
	fn.AppendInst(0, brnz)

	ret := fn.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: []ir.Value{0}})
	fn.AppendInst(0, ret)

	inserter := New(fn, nil)
	n := inserter.Run()
	if n != 2 {
		t.Fatalf("Run() on a self-looping EBB inserted %d stackmaps, want 2 (one for the EBB's own loop-head, one for the call)", n)
	}

	var stackmaps int
	for _, inst := range fn.Layout.EbbInsts(0) {
		data := fn.DFG.Inst(inst)
		if data.Opcode != ir.OpStackmap {
			continue
		}
		stackmaps++
		if len(data.Args) != 1 || data.Args[0] != 0 {
			t.Errorf("stackmap roots = %v, want [v0]", data.Args)
		}
	}
	if stackmaps != 2 {
		t.Errorf("found %d stackmap instructions in the layout, want 2", stackmaps)
	}
}

// buildLoopHeadWithoutCall builds a two-EBB function where ebb1 is a branch
// target from later in the layout (a self-loop) and a reference-typed value
// is live across that edge, but no instruction in the loop is itself a
// safepoint. Spec section 4.2's EBB-top rule must still insert a stackmap at
// ebb1's top, independent of the call-site path (section 8 scenario 4).
//
//	ebb0(v0: r64):
//	    jump ebb1(v0)
//	ebb1(v1: r64):
//	    v2 = iconst.i32 0
//	    brnz v2, ebb1(v1)
//	    return v1
func buildLoopHeadWithoutCall() *ir.Function {
	fn := ir.NewFunction(ir.TestExternalName("loop_head_no_call"), ir.Signature{})
	fn.AddEbb(0)
	fn.AddEbb(1)
	fn.DFG.AppendEbbParamForParser(0, 0, types.R64)
	fn.DFG.AppendEbbParamForParser(1, 1, types.R64)

	jump := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpJump,
		Destinations: []ir.BranchDest{{Ebb: 1, Args: []ir.Value{0}}},
	})
	fn.AppendInst(0, jump)

	cond := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIconst, Ctrl: types.I32, Imm: 0})
	fn.DFG.MakeInstResultsForParser(cond, []ir.Value{2}, types.I32)
	fn.AppendInst(1, cond)

	brnz := fn.MakeInst(ir.InstructionData{
		Opcode:       ir.OpBrnz,
		Args:         []ir.Value{2},
		Destinations: []ir.BranchDest{{Ebb: 1, Args: []ir.Value{1}}},
	})
	fn.AppendInst(1, brnz)

	ret := fn.MakeInst(ir.InstructionData{Opcode: ir.OpReturn, Args: []ir.Value{1}})
	fn.AppendInst(1, ret)

	return fn
}

func TestInserterHandlesLoopHeadWithoutCall(t *testing.T) {
	fn := buildLoopHeadWithoutCall()

	inserter := New(fn, nil)
	n := inserter.Run()
	if n != 1 {
		t.Fatalf("Run() on a loop head with no call inserted %d stackmaps, want 1", n)
	}

	insts := fn.Layout.EbbInsts(1)
	if len(insts) == 0 || fn.DFG.Inst(insts[0]).Opcode != ir.OpStackmap {
		t.Fatalf("ebb1 insts = %v, want a stackmap as the first instruction", insts)
	}
	data := fn.DFG.Inst(insts[0])
	if len(data.Args) != 1 || data.Args[0] != 1 {
		t.Errorf("stackmap roots = %v, want [v1]", data.Args)
	}

	for _, ebb := range []ir.Ebb{0} {
		for _, inst := range fn.Layout.EbbInsts(ebb) {
			if fn.DFG.Inst(inst).Opcode == ir.OpStackmap {
				t.Errorf("unexpected stackmap in ebb%d, the loop head's own top should be the only insertion site", ebb)
			}
		}
	}
}
