package ir

// Function is the top-level IR container spec section 3 describes: a
// signature and preamble of dense entity tables, a DataFlowGraph, a
// Layout, and the side-tables keyed by instruction or value handle.
type Function struct {
	Name      ExternalName
	Signature Signature

	StackSlots []StackSlotData
	GlobalVars []GlobalVarData
	Heaps      []HeapData
	Signatures []SignatureData
	ExtFuncs   []ExtFuncData
	JumpTables []JumpTableData

	DFG    *DataFlowGraph
	Layout *Layout

	Encodings map[Inst]Encoding
	Locations map[Value]ValueLoc  // result/param location annotations
	SrcLocs   map[Inst]uint32     // hex srcloc prefix, default 0

	nextInst uint32
}

// NewFunction creates an empty Function ready for the parser to populate.
func NewFunction(name ExternalName, sig Signature) *Function {
	return &Function{
		Name:      name,
		Signature: sig,
		DFG:       NewDataFlowGraph(),
		Layout:    NewLayout(),
		Encodings: map[Inst]Encoding{},
		Locations: map[Value]ValueLoc{},
		SrcLocs:   map[Inst]uint32{},
	}
}

// AddEbb creates ebb on first reference, a no-op if already created, and
// appends it to the layout in source order (spec section 3,
// "An EBB is created by the parser (add_ebb) on first reference").
func (f *Function) AddEbb(ebb Ebb) {
	f.DFG.growEbbs(ebb)
	f.Layout.AppendEbb(ebb)
}

// MakeInst allocates a new instruction handle, assigning it monotonically.
// Mirrors spec section 3's "Instructions are created by make_inst,
// appended via append_inst, and ... never renumbered."
func (f *Function) MakeInst(data InstructionData) Inst {
	inst := Inst(f.nextInst)
	f.nextInst++
	f.DFG.MakeInst(inst, data)
	return inst
}

// AppendInst appends inst to ebb's instruction list.
func (f *Function) AppendInst(ebb Ebb, inst Inst) {
	f.Layout.AppendInst(ebb, inst)
}

// --- Preamble forward-reference padding ------------------------------

func (f *Function) ensureStackSlots(n StackSlot) {
	for StackSlot(len(f.StackSlots)) <= n {
		f.StackSlots = append(f.StackSlots, defaultStackSlot())
	}
}

// DefineStackSlot overwrites slot n's data, padding intermediate slots
// with zero-size spill-slot fillers per spec section 4.1.
func (f *Function) DefineStackSlot(n StackSlot, data StackSlotData) {
	f.ensureStackSlots(n)
	f.StackSlots[n] = data
}

func (f *Function) StackSlot(n StackSlot) StackSlotData {
	f.ensureStackSlots(n)
	return f.StackSlots[n]
}

func (f *Function) ensureGlobalVars(n GlobalVar) {
	for GlobalVar(len(f.GlobalVars)) <= n {
		f.GlobalVars = append(f.GlobalVars, defaultGlobalVar())
	}
}

func (f *Function) DefineGlobalVar(n GlobalVar, data GlobalVarData) {
	f.ensureGlobalVars(n)
	f.GlobalVars[n] = data
}

func (f *Function) GlobalVarData(n GlobalVar) GlobalVarData {
	f.ensureGlobalVars(n)
	return f.GlobalVars[n]
}

func (f *Function) ensureHeaps(n Heap) {
	for Heap(len(f.Heaps)) <= n {
		f.Heaps = append(f.Heaps, defaultHeap())
	}
}

func (f *Function) DefineHeap(n Heap, data HeapData) {
	f.ensureHeaps(n)
	f.Heaps[n] = data
}

func (f *Function) HeapData(n Heap) HeapData {
	f.ensureHeaps(n)
	return f.Heaps[n]
}

func (f *Function) ensureSignatures(n SigRef) {
	for SigRef(len(f.Signatures)) <= n {
		f.Signatures = append(f.Signatures, defaultSignature())
	}
}

func (f *Function) DefineSignature(n SigRef, data SignatureData) {
	f.ensureSignatures(n)
	f.Signatures[n] = data
}

func (f *Function) SignatureData(n SigRef) SignatureData {
	f.ensureSignatures(n)
	return f.Signatures[n]
}

func (f *Function) ensureExtFuncs(n FuncRef) {
	for FuncRef(len(f.ExtFuncs)) <= n {
		f.ExtFuncs = append(f.ExtFuncs, defaultExtFunc())
	}
}

func (f *Function) DefineExtFunc(n FuncRef, data ExtFuncData) {
	f.ensureExtFuncs(n)
	f.ExtFuncs[n] = data
}

func (f *Function) ExtFuncData(n FuncRef) ExtFuncData {
	f.ensureExtFuncs(n)
	return f.ExtFuncs[n]
}

func (f *Function) ensureJumpTables(n JumpTable) {
	for JumpTable(len(f.JumpTables)) <= n {
		f.JumpTables = append(f.JumpTables, defaultJumpTable())
	}
}

func (f *Function) DefineJumpTable(n JumpTable, data JumpTableData) {
	f.ensureJumpTables(n)
	f.JumpTables[n] = data
}

func (f *Function) JumpTableData(n JumpTable) JumpTableData {
	f.ensureJumpTables(n)
	return f.JumpTables[n]
}
