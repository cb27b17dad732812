package flags

import (
	"testing"

	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/types"
)

func TestVerifyAcceptsSingleFlagsValue(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("single_flags"), ir.Signature{})
	fn.AddEbb(0)

	ifcmp := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp, []ir.Value{0}, types.IFlags)
	fn.AppendInst(0, ifcmp)

	trapif := fn.MakeInst(ir.InstructionData{Opcode: ir.OpTrapif, Args: []ir.Value{0}})
	fn.AppendInst(0, trapif)

	if err := New(fn, nil).Verify(); err != nil {
		t.Errorf("Verify() = %v, want nil for a single live flags value", err)
	}
}

func TestVerifyDetectsConflictingFlagsValues(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("conflicting_flags"), ir.Signature{})
	fn.AddEbb(0)

	ifcmp0 := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp0, []ir.Value{0}, types.IFlags)
	fn.AppendInst(0, ifcmp0)

	ifcmp1 := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp1, []ir.Value{1}, types.IFlags)
	fn.AppendInst(0, ifcmp1)

	trapif0 := fn.MakeInst(ir.InstructionData{Opcode: ir.OpTrapif, Args: []ir.Value{0}})
	fn.AppendInst(0, trapif0)

	trapif1 := fn.MakeInst(ir.InstructionData{Opcode: ir.OpTrapif, Args: []ir.Value{1}})
	fn.AppendInst(0, trapif1)

	if err := New(fn, nil).Verify(); err == nil {
		t.Error("Verify() = nil, want a conflict error for two simultaneously live flags values")
	}
}

func TestVerifyDetectsClobberBeforeUse(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("clobbered_flags"), ir.Signature{})
	fn.AddEbb(0)

	ifcmp := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp, []ir.Value{0}, types.IFlags)
	fn.AppendInst(0, ifcmp)

	clobber := fn.MakeInst(ir.InstructionData{Opcode: ir.OpNop})
	fn.AppendInst(0, clobber)

	trapif := fn.MakeInst(ir.InstructionData{Opcode: ir.OpTrapif, Args: []ir.Value{0}})
	fn.AppendInst(0, trapif)

	registry := isa.NewRegistry()
	target, err := registry.New("x86_64", nil)
	if err != nil {
		t.Fatalf("New(x86_64) failed: %v", err)
	}
	fn.Encodings[clobber] = ir.Encoding{Recipe: "rcmp", Present: true}

	if err := New(fn, target).Verify(); err == nil {
		t.Error("Verify() = nil, want a clobber error when a flags-clobbering recipe sits between def and use")
	}
}

func TestVerifyDetectsResultClobberOfLiveFlags(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("result_clobbers_flags"), ir.Signature{})
	fn.AddEbb(0)

	ifcmp0 := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp0, []ir.Value{0}, types.IFlags)
	fn.AppendInst(0, ifcmp0)

	// v1 is a distinct flags-typed result, produced while v0 is still needed
	// by the trapif below — it must clobber v0 even though nothing ever
	// reads v1 as an operand.
	ifcmp1 := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp1, []ir.Value{1}, types.IFlags)
	fn.AppendInst(0, ifcmp1)

	trapif := fn.MakeInst(ir.InstructionData{Opcode: ir.OpTrapif, Args: []ir.Value{0}})
	fn.AppendInst(0, trapif)

	if err := New(fn, nil).Verify(); err == nil {
		t.Error("Verify() = nil, want a clobber error when a distinct flags result is produced while another flags value is still live")
	}
}

func TestVerifyIgnoresClobberWithoutTarget(t *testing.T) {
	fn := ir.NewFunction(ir.TestExternalName("no_target"), ir.Signature{})
	fn.AddEbb(0)

	ifcmp := fn.MakeInst(ir.InstructionData{Opcode: ir.OpIfcmp})
	fn.DFG.MakeInstResultsForParser(ifcmp, []ir.Value{0}, types.IFlags)
	fn.AppendInst(0, ifcmp)

	clobber := fn.MakeInst(ir.InstructionData{Opcode: ir.OpNop})
	fn.AppendInst(0, clobber)
	fn.Encodings[clobber] = ir.Encoding{Recipe: "rcmp", Present: true}

	trapif := fn.MakeInst(ir.InstructionData{Opcode: ir.OpTrapif, Args: []ir.Value{0}})
	fn.AppendInst(0, trapif)

	if err := New(fn, nil).Verify(); err != nil {
		t.Errorf("Verify() = %v, want nil when no target ISA is supplied to check clobbers against", err)
	}
}
