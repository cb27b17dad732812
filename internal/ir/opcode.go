package ir

import "github.com/kbasalt/ebbc/internal/types"

// Opcode names an instruction's operation. The set below is a
// representative cross-section of the real instruction set's format
// families (Unary, Binary, Branch, Call, Load/Store, register-allocator
// pseudo-ops, trap, and the stackmap pseudo-instruction), chosen to
// exercise every distinct operand-parsing shape spec section 4.1 names
// rather than the full production opcode table (documented in DESIGN.md).
type Opcode int

const (
	OpInvalid Opcode = iota

	OpIconst  // UnaryImm: vN = iconst.TY IMM
	OpF32const
	OpF64const
	OpBconst // UnaryBool

	OpIadd // Binary
	OpIsub
	OpImul
	OpBand
	OpBor
	OpBxor

	OpIaddImm // BinaryImm: vN = iadd_imm vX, IMM
	OpImulImm
	OpIrsubImm

	OpCopy  // Unary, polymorphic, typevar inferred from operand
	OpSplat // Unary, polymorphic, typevar NOT inferable: requires explicit .TY

	OpGlobalValue // UnaryGlobalVar: vN = global_value.TY gvM

	OpIcmp     // IntCompare: produces b1
	OpIcmpImm  // IntCompareImm
	OpIfcmp    // IntCond(ish) Binary producing iflags: vN = ifcmp vX, vY
	OpFfcmp    // Binary producing fflags
	OpFcmp     // FloatCompare, produces b1
	OpSelect   // IntSelect: ternary, vN = select vC, vX, vY

	OpInsertlane  // InsertLane
	OpExtractlane // ExtractLane

	OpJump      // Jump: unconditional, single EBB destination
	OpBrz       // Branch: conditional on a value, EBB destination + pass-through args
	OpBrnz      // Branch
	OpBrIcmp    // BranchIcmp: compares two values with a condition code, branches
	OpBrTable   // BranchTable: indexed multi-way branch through a jump table

	OpCall         // Call: direct call through fnN
	OpCallIndirect // CallIndirect: indirect call through sigN and a callee value
	OpFuncAddr     // FuncAddr: address-of a function

	OpStackLoad // StackLoad
	OpStackStore
	OpHeapAddr // HeapAddr
	OpLoad     // Load, with optional memflags prefix
	OpStore    // Store, with optional memflags prefix

	OpRegmove     // RegMove: register-allocator pseudo-op
	OpRegspill    // RegSpill
	OpRegfill     // RegFill
	OpCopySpecial // CopySpecial

	OpTrap        // Trap: unconditional
	OpTrapif      // IntCondTrap
	OpTrapff      // FloatCondTrap

	OpNop      // NullAry, non-polymorphic
	OpReturn   // MultiAry, variadic return values
	OpStackmap // MultiAry, variadic; produced by the stackmap inserter, and accepted by the parser when written out
)

// Format names the fixed operand shape an opcode's operands are parsed
// with (spec section 4.1's "per-format operand parsers").
type Format int

const (
	FormatUnary Format = iota
	FormatUnaryImm
	FormatUnaryIeee32
	FormatUnaryIeee64
	FormatUnaryBool
	FormatUnaryGlobalVar
	FormatBinary
	FormatBinaryImm
	FormatTernary
	FormatMultiAry
	FormatNullAry
	FormatJump
	FormatBranch
	FormatBranchIcmp
	FormatBranchTable
	FormatInsertLane
	FormatExtractLane
	FormatIntCompare
	FormatIntCompareImm
	FormatFloatCompare
	FormatIntSelect
	FormatCall
	FormatCallIndirect
	FormatFuncAddr
	FormatStackLoad
	FormatStackStore
	FormatHeapAddr
	FormatLoad
	FormatStore
	FormatRegMove
	FormatCopySpecial
	FormatRegSpill
	FormatRegFill
	FormatTrap
	FormatIntCondTrap
	FormatFloatCondTrap
)

// Constraints is the data-driven per-opcode descriptor spec section 4.1 and
// 9 insist on keeping in one table: whether the opcode is polymorphic,
// whether its controlling type variable is inferable from an operand, and
// the admissible type set for that controlling type.
type Constraints struct {
	Polymorphic       bool
	UseTypevarOperand bool
	TypevarOperandIdx int // which operand position carries the controlling type, when UseTypevarOperand
	CtrlTypeset       *types.TypeSet
	NumResults        int // -1 for variadic (MultiAry results, e.g. call)
	IsBranch          bool
	IsCall            bool
	Example           string // admissible example type for error messages
}

// OpcodeInfo bundles an opcode's format and constraints.
type OpcodeInfo struct {
	Name        string
	Format      Format
	Constraints Constraints
}

var anyScalar = &types.TypeSet{Ints: true, Floats: true, Bools: true}
var anyInt = &types.TypeSet{Ints: true}
var anyFloat = &types.TypeSet{Floats: true}
var anyLaneType = &types.TypeSet{Ints: true, Floats: true, Bools: true, Example: "splat.i32x4"}

// opcodeTable is consulted identically by every per-format operand parser,
// exactly as spec section 9 recommends: "keep this table in one place".
var opcodeTable = map[Opcode]OpcodeInfo{
	OpInvalid: {Name: "invalid", Format: FormatNullAry},

	OpIconst:   {Name: "iconst", Format: FormatUnaryImm, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpF32const: {Name: "f32const", Format: FormatUnaryIeee32, Constraints: Constraints{NumResults: 1}},
	OpF64const: {Name: "f64const", Format: FormatUnaryIeee64, Constraints: Constraints{NumResults: 1}},
	OpBconst:   {Name: "bconst", Format: FormatUnaryBool, Constraints: Constraints{Polymorphic: true, CtrlTypeset: &types.TypeSet{Bools: true}, NumResults: 1}},

	OpIadd: {Name: "iadd", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpIsub: {Name: "isub", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpImul: {Name: "imul", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpBand: {Name: "band", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpBor:  {Name: "bor", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpBxor: {Name: "bxor", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},

	OpIaddImm:  {Name: "iadd_imm", Format: FormatBinaryImm, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpImulImm:  {Name: "imul_imm", Format: FormatBinaryImm, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpIrsubImm: {Name: "irsub_imm", Format: FormatBinaryImm, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},

	OpCopy:  {Name: "copy", Format: FormatUnary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyScalar, NumResults: 1}},
	OpSplat: {Name: "splat", Format: FormatUnary, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyLaneType, NumResults: 1, Example: "splat.i32x4"}},

	OpGlobalValue: {Name: "global_value", Format: FormatUnaryGlobalVar, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyInt, NumResults: 1}},

	OpIcmp:    {Name: "icmp", Format: FormatIntCompare, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, TypevarOperandIdx: 1, CtrlTypeset: anyInt, NumResults: 1}},
	OpIcmpImm: {Name: "icmp_imm", Format: FormatIntCompareImm, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpIfcmp:   {Name: "ifcmp", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpFfcmp:   {Name: "ffcmp", Format: FormatBinary, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyFloat, NumResults: 1}},
	OpFcmp:    {Name: "fcmp", Format: FormatFloatCompare, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, TypevarOperandIdx: 1, CtrlTypeset: anyFloat, NumResults: 1}},
	OpSelect:  {Name: "select", Format: FormatIntSelect, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, TypevarOperandIdx: 1, CtrlTypeset: anyScalar, NumResults: 1}},

	OpInsertlane:  {Name: "insertlane", Format: FormatInsertLane, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyLaneType, NumResults: 1}},
	OpExtractlane: {Name: "extractlane", Format: FormatExtractLane, Constraints: Constraints{Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyLaneType, NumResults: 1}},

	OpJump:    {Name: "jump", Format: FormatJump, Constraints: Constraints{IsBranch: true}},
	OpBrz:     {Name: "brz", Format: FormatBranch, Constraints: Constraints{IsBranch: true}},
	OpBrnz:    {Name: "brnz", Format: FormatBranch, Constraints: Constraints{IsBranch: true}},
	OpBrIcmp:  {Name: "br_icmp", Format: FormatBranchIcmp, Constraints: Constraints{IsBranch: true, Polymorphic: true, UseTypevarOperand: true, CtrlTypeset: anyInt}},
	OpBrTable: {Name: "br_table", Format: FormatBranchTable, Constraints: Constraints{IsBranch: true}},

	OpCall:         {Name: "call", Format: FormatCall, Constraints: Constraints{IsCall: true, NumResults: -1}},
	OpCallIndirect: {Name: "call_indirect", Format: FormatCallIndirect, Constraints: Constraints{IsCall: true, NumResults: -1}},
	OpFuncAddr:     {Name: "func_addr", Format: FormatFuncAddr, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyInt, NumResults: 1}},

	OpStackLoad:  {Name: "stack_load", Format: FormatStackLoad, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyScalar, NumResults: 1}},
	OpStackStore: {Name: "stack_store", Format: FormatStackStore, Constraints: Constraints{}},
	OpHeapAddr:   {Name: "heap_addr", Format: FormatHeapAddr, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyInt, NumResults: 1}},
	OpLoad:       {Name: "load", Format: FormatLoad, Constraints: Constraints{Polymorphic: true, CtrlTypeset: anyScalar, NumResults: 1}},
	OpStore:      {Name: "store", Format: FormatStore, Constraints: Constraints{}},

	OpRegmove:     {Name: "regmove", Format: FormatRegMove, Constraints: Constraints{}},
	OpRegspill:    {Name: "regspill", Format: FormatRegSpill, Constraints: Constraints{}},
	OpRegfill:     {Name: "regfill", Format: FormatRegFill, Constraints: Constraints{}},
	OpCopySpecial: {Name: "copy_special", Format: FormatCopySpecial, Constraints: Constraints{}},

	OpTrap:   {Name: "trap", Format: FormatTrap, Constraints: Constraints{}},
	OpTrapif: {Name: "trapif", Format: FormatIntCondTrap, Constraints: Constraints{}},
	OpTrapff: {Name: "trapff", Format: FormatFloatCondTrap, Constraints: Constraints{}},

	OpNop:      {Name: "nop", Format: FormatNullAry, Constraints: Constraints{}},
	OpReturn:   {Name: "return", Format: FormatMultiAry, Constraints: Constraints{NumResults: 0}},
	OpStackmap: {Name: "stackmap", Format: FormatMultiAry, Constraints: Constraints{NumResults: 0}},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		m[info.Name] = op
	}
	return m
}()

// LookupOpcode resolves a textual opcode spelling.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

// Info returns op's format and constraints, or the zero value for an
// unknown opcode (callers are expected to have validated via LookupOpcode).
func (op Opcode) Info() OpcodeInfo { return opcodeTable[op] }

func (op Opcode) String() string { return opcodeTable[op].Name }
