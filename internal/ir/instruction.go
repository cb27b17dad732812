package ir

import "github.com/kbasalt/ebbc/internal/types"

// BranchDest is one branch target: the destination EBB and the EBB-param
// arguments passed to it, for the jump/branch instruction formats.
type BranchDest struct {
	Ebb  Ebb
	Args []Value
}

// InstructionData holds every field any instruction format might use;
// which fields are meaningful is determined by Opcode.Info().Format. A
// single struct (rather than one type per format) mirrors the teacher's
// own Instruction encoding in internal/bytecode/instruction.go, which packs
// every opcode's operands into one fixed-shape record instead of a sum
// type, because Go's format dispatch (via the opcode table) makes a tagged
// union unnecessary.
type InstructionData struct {
	Opcode Opcode
	Ctrl   types.Type // resolved controlling type variable; VOID if non-polymorphic

	Args []Value // generic operand list: unary/binary/ternary/multiary operands,
	// the condition-compare operands, the call's argument list, etc.

	Imm    int64  // integer immediate (UnaryImm, BinaryImm, IntCompareImm)
	Ieee32 uint32 // raw bits of a UnaryIeee32 literal
	Ieee64 uint64 // raw bits of a UnaryIeee64 literal
	Cond   string // compare condition code spelling: "eq","ne","slt","sgt", "ogt", ...

	MemFlags MemFlags // Load/Store prefix flags
	Offset   int32    // Load/Store/StackLoad/StackStore/HeapAddr byte offset

	StackSlotRef StackSlot // StackLoad/StackStore
	GlobalVarRef GlobalVar // UnaryGlobalVar (global_value) operand
	HeapRef      Heap      // HeapAddr
	SigRefRef    SigRef    // CallIndirect
	FuncRefRef   FuncRef   // Call, FuncAddr
	JumpTableRef JumpTable // BranchTable

	Lane uint8 // InsertLane/ExtractLane lane index

	Destinations []BranchDest // Jump/Branch/BranchIcmp (len 1); BranchTable default is Destinations[0]

	Src ValueLoc // RegMove/RegSpill/RegFill/CopySpecial source
	Dst ValueLoc // RegMove/RegSpill/RegFill/CopySpecial destination
}

// IsBranch and IsCall report the opcode's branch and call classification
// from its constraint table entry.
func (d InstructionData) IsBranch() bool { return d.Opcode.Info().Constraints.IsBranch }
func (d InstructionData) IsCall() bool   { return d.Opcode.Info().Constraints.IsCall }
