package ir

import "github.com/kbasalt/ebbc/internal/types"

// valueKind distinguishes how a Value's ValueData should be interpreted.
type valueKind int

const (
	valueInvalid valueKind = iota // forward-referenced but not yet defined
	valueInst                     // defined as an instruction result
	valueParam                    // defined as an EBB parameter
	valueAlias                    // defined as `vDest -> vSrc`
)

// valueData is the per-Value record the DataFlowGraph owns: its type and
// the site that defines it. Forward references are padded with the
// valueInvalid placeholder (spec section 3, "Lifecycles").
type valueData struct {
	kind      valueKind
	typ       types.Type
	def       Inst  // valid when kind == valueInst
	resultIdx int   // index into dfg.results[def] when kind == valueInst
	ebb       Ebb   // valid when kind == valueParam
	paramIdx  int   // index into dfg.ebbParams[ebb] when kind == valueParam
	alias     Value // valid when kind == valueAlias: the aliased-to value as written
}

// DataFlowGraph owns every Value and Inst in a Function: their types,
// definitions, operand lists, and the EBB-parameter and instruction-result
// lists that make up the SSA graph (spec section 3).
type DataFlowGraph struct {
	values    []valueData
	insts     []InstructionData
	ebbParams [][]Value // indexed by Ebb
	results   [][]Value // indexed by Inst
}

func NewDataFlowGraph() *DataFlowGraph {
	return &DataFlowGraph{}
}

// growValues pads the values table with invalid placeholders so that
// index v exists, implementing the "handle density" invariant.
func (dfg *DataFlowGraph) growValues(v Value) {
	for Value(len(dfg.values)) <= v {
		dfg.values = append(dfg.values, valueData{kind: valueInvalid, typ: types.Invalid})
	}
}

func (dfg *DataFlowGraph) growInsts(i Inst) {
	for Inst(len(dfg.insts)) <= i {
		dfg.insts = append(dfg.insts, InstructionData{})
		dfg.results = append(dfg.results, nil)
	}
}

func (dfg *DataFlowGraph) growEbbs(e Ebb) {
	for Ebb(len(dfg.ebbParams)) <= e {
		dfg.ebbParams = append(dfg.ebbParams, nil)
	}
}

// NumValues reports one past the largest Value handle ever touched.
func (dfg *DataFlowGraph) NumValues() int { return len(dfg.values) }

// NumInsts reports one past the largest Inst handle ever touched.
func (dfg *DataFlowGraph) NumInsts() int { return len(dfg.insts) }

// ValueIsValid reports whether v has been given a real definition (not
// still a forward-reference placeholder).
func (dfg *DataFlowGraph) ValueIsValid(v Value) bool {
	if int(v) >= len(dfg.values) {
		return false
	}
	return dfg.values[v].kind != valueInvalid
}

// EnsureValue pads the table so v exists as a (still invalid) placeholder,
// used when the parser meets a forward reference.
func (dfg *DataFlowGraph) EnsureValue(v Value) { dfg.growValues(v) }

// AppendEbbParamForParser creates EBB parameter index paramIdx of ebb with
// the given type, overwriting the forward-reference placeholder if the
// value handle was already touched. Mirrors
// `append_ebb_param_for_parser` from spec section 3.
func (dfg *DataFlowGraph) AppendEbbParamForParser(ebb Ebb, v Value, typ types.Type) {
	dfg.growEbbs(ebb)
	dfg.growValues(v)
	idx := len(dfg.ebbParams[ebb])
	dfg.ebbParams[ebb] = append(dfg.ebbParams[ebb], v)
	dfg.values[v] = valueData{kind: valueParam, typ: typ, ebb: ebb, paramIdx: idx}
}

// EbbParams returns ebb's parameter values in declaration order.
func (dfg *DataFlowGraph) EbbParams(ebb Ebb) []Value {
	if int(ebb) >= len(dfg.ebbParams) {
		return nil
	}
	return dfg.ebbParams[ebb]
}

// MakeInst allocates inst's InstructionData, overwriting any padding.
// Mirrors `make_inst` from spec section 3.
func (dfg *DataFlowGraph) MakeInst(inst Inst, data InstructionData) {
	dfg.growInsts(inst)
	dfg.insts[inst] = data
}

// Inst returns inst's InstructionData.
func (dfg *DataFlowGraph) Inst(inst Inst) InstructionData {
	return dfg.insts[inst]
}

// SetInst overwrites inst's InstructionData (used by the stackmap inserter
// and by alias/type-inference post-passes that need to rewrite operands).
func (dfg *DataFlowGraph) SetInst(inst Inst, data InstructionData) {
	dfg.growInsts(inst)
	dfg.insts[inst] = data
}

// MakeInstResultsForParser allocates n result values for inst, each typed
// typ (refined per-result by the caller afterwards for multi-result
// formats), overwriting forward-reference placeholders. Mirrors
// `make_inst_results_for_parser`.
func (dfg *DataFlowGraph) MakeInstResultsForParser(inst Inst, results []Value, typ types.Type) {
	dfg.growInsts(inst)
	for idx, v := range results {
		dfg.growValues(v)
		dfg.values[v] = valueData{kind: valueInst, typ: typ, def: inst, resultIdx: idx}
	}
	dfg.results[inst] = append([]Value(nil), results...)
}

// SetResultType overwrites the type of an already-created instruction
// result, for formats whose result type differs from the controlling type
// (e.g. icmp's b1 result under an integer controlling type).
func (dfg *DataFlowGraph) SetResultType(v Value, typ types.Type) {
	d := dfg.values[v]
	d.typ = typ
	dfg.values[v] = d
}

// InstResults returns inst's result values in order.
func (dfg *DataFlowGraph) InstResults(inst Inst) []Value {
	if int(inst) >= len(dfg.results) {
		return nil
	}
	return dfg.results[inst]
}

// RecordAlias records `vDest -> vSrc` without yet resolving vDest's type.
// The parser's post-pass (ResolveAliases) propagates the terminal type and
// detects cycles.
func (dfg *DataFlowGraph) RecordAlias(dest, src Value) {
	dfg.growValues(dest)
	dfg.values[dest] = valueData{kind: valueAlias, alias: src}
}

// IsAlias reports whether v was defined via `->`.
func (dfg *DataFlowGraph) IsAlias(v Value) bool {
	return int(v) < len(dfg.values) && dfg.values[v].kind == valueAlias
}

// AliasTarget returns the value v aliases to, as written (not resolved
// through the chain).
func (dfg *DataFlowGraph) AliasTarget(v Value) Value { return dfg.values[v].alias }

// ResolveAliases walks every alias edge, propagates the terminal type back
// onto each link in the chain, and reports the first cycle found, if any
// (spec section 4.1 and 9: "alias cycle involving vN").
func (dfg *DataFlowGraph) ResolveAliases() (cycle Value, found bool) {
	// visiting: 0 = unvisited, 1 = on current walk's stack, 2 = resolved.
	state := make([]uint8, len(dfg.values))
	for v := range dfg.values {
		if cv, ok := dfg.resolveAliasChain(Value(v), state); ok {
			return cv, true
		}
	}
	return 0, false
}

func (dfg *DataFlowGraph) resolveAliasChain(v Value, state []uint8) (Value, bool) {
	if state[v] == 2 || dfg.values[v].kind != valueAlias {
		return 0, false
	}
	if state[v] == 1 {
		return v, true
	}
	state[v] = 1

	target := dfg.values[v].alias
	if int(target) < len(state) {
		if cv, ok := dfg.resolveAliasChain(target, state); ok {
			return cv, true
		}
	}

	resolved := dfg.ResolveValue(target)
	d := dfg.values[v]
	d.typ = resolved.typ
	dfg.values[v] = d
	state[v] = 2
	return 0, false
}

// ResolveValue follows v's alias chain (if any) to the value that actually
// defines a type, and returns that value's valueData. It assumes
// ResolveAliases has already run (or that v is not mid-chain).
func (dfg *DataFlowGraph) ResolveValue(v Value) valueData {
	seen := map[Value]bool{}
	for int(v) < len(dfg.values) && dfg.values[v].kind == valueAlias && !seen[v] {
		seen[v] = true
		v = dfg.values[v].alias
	}
	if int(v) >= len(dfg.values) {
		return valueData{kind: valueInvalid, typ: types.Invalid}
	}
	return dfg.values[v]
}

// ResolveAliasesTo returns the final non-alias Value that v's chain bottoms
// out at (spec section 8's `resolve_aliases(v)`).
func (dfg *DataFlowGraph) ResolveAliasesTo(v Value) Value {
	seen := map[Value]bool{}
	for int(v) < len(dfg.values) && dfg.values[v].kind == valueAlias && !seen[v] {
		seen[v] = true
		v = dfg.values[v].alias
	}
	return v
}

// ValueType returns v's type, resolving through any alias chain.
func (dfg *DataFlowGraph) ValueType(v Value) types.Type {
	if int(v) >= len(dfg.values) {
		return types.Invalid
	}
	if dfg.values[v].kind == valueAlias {
		return dfg.ResolveValue(v).typ
	}
	return dfg.values[v].typ
}

// ValueDef reports whether v is defined by an instruction, and if so which
// one (used by the parser's typevar-operand inference and by the
// liveness/stackmap/flags analyses to walk def-use).
func (dfg *DataFlowGraph) ValueDef(v Value) (Inst, bool) {
	if int(v) >= len(dfg.values) {
		return NilInst, false
	}
	d := dfg.values[v]
	if d.kind == valueAlias {
		return dfg.ValueDef(d.alias)
	}
	return d.def, d.kind == valueInst
}
