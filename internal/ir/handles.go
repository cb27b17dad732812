// Package ir is the shared in-memory representation the parser (P),
// stackmap inserter (S), and flags verifier (F) all operate on: a Function
// built from dense, append-only, handle-indexed tables (spec section 3).
package ir

// Handles are small dense integers into the Function's entity tables.
// Allocation is monotonic and handles are never reused, so a handle value
// alone is enough to test "was this ever defined" against a table length.
type (
	Value     uint32
	Inst      uint32
	Ebb       uint32
	StackSlot uint32
	GlobalVar uint32
	Heap      uint32
	SigRef    uint32
	FuncRef   uint32
	JumpTable uint32
)

// Nil sentinels. Every handle type reserves its max value as "no handle",
// never produced by normal allocation (tables never grow anywhere near
// 2^32 entries in practice).
const (
	NilValue     Value     = ^Value(0)
	NilInst      Inst      = ^Inst(0)
	NilEbb       Ebb       = ^Ebb(0)
	NilStackSlot StackSlot = ^StackSlot(0)
	NilGlobalVar GlobalVar = ^GlobalVar(0)
	NilHeap      Heap      = ^Heap(0)
	NilSigRef    SigRef    = ^SigRef(0)
	NilFuncRef   FuncRef   = ^FuncRef(0)
	NilJumpTable JumpTable = ^JumpTable(0)
)
