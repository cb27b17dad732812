package liveness

import (
	"sort"

	"github.com/kbasalt/ebbc/internal/ir"
)

// Tracker maintains the live value set at a cursor point as a client walks
// a function EBB by EBB, instruction by instruction (spec section 2's
// LiveValueTracker: ebb_top, process_inst, drop_dead, drop_dead_params,
// live()). It is driven by a precomputed Analysis rather than recomputing
// liveness itself.
type Tracker struct {
	fn       *ir.Function
	analysis *Analysis
	live     map[ir.Value]bool
	neededAfter []map[ir.Value]bool // indexed parallel to the current EBB's instruction list
	instIndex   map[ir.Inst]int
}

func NewTracker(fn *ir.Function, analysis *Analysis) *Tracker {
	return &Tracker{fn: fn, analysis: analysis, live: map[ir.Value]bool{}}
}

// EbbTop seeds the tracker at the top of ebb: the live set becomes ebb's
// live-in, and the per-instruction "needed after" suffix sets used by
// DropDead are recomputed for this EBB.
func (t *Tracker) EbbTop(ebb ir.Ebb) {
	insts := t.fn.Layout.EbbInsts(ebb)
	t.neededAfter = make([]map[ir.Value]bool, len(insts))
	t.instIndex = make(map[ir.Inst]int, len(insts))
	for i, inst := range insts {
		t.instIndex[inst] = i
	}

	liveAfter := map[ir.Value]bool{}
	for _, v := range t.analysis.LiveOut(ebb) {
		liveAfter[v] = true
	}
	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		t.neededAfter[i] = liveAfter

		data := t.fn.DFG.Inst(inst)
		liveBefore := map[ir.Value]bool{}
		for v := range liveAfter {
			liveBefore[v] = true
		}
		for _, r := range t.fn.DFG.InstResults(inst) {
			delete(liveBefore, r)
		}
		for _, arg := range operandsOf(data) {
			liveBefore[arg] = true
		}
		for _, dest := range data.Destinations {
			for _, arg := range dest.Args {
				liveBefore[arg] = true
			}
		}
		liveAfter = liveBefore
	}

	// liveAfter now holds what the backward per-instruction walk found
	// needed before this EBB's first instruction — ebb's own params among
	// them, since nothing in that walk ever removes a value that isn't an
	// instruction result. analysis.LiveIn(ebb) only carries values needed
	// from outside the block; union both in, since a param an EBB passes
	// to itself across a back edge is otherwise invisible to the
	// cross-block equations (the value is "defined" in this same block,
	// so it never enters that analysis's use set).
	t.live = liveAfter
	for _, v := range t.analysis.LiveIn(ebb) {
		t.live[v] = true
	}
}

// DropDeadParams removes from the live set any of ebb's own parameters
// that are not in fact needed (a no-op given a precise Analysis, kept for
// parity with the spec's named step — see spec section 4.2 step 1).
func (t *Tracker) DropDeadParams(ebb ir.Ebb) {
	for _, p := range t.fn.DFG.EbbParams(ebb) {
		if t.live[p] {
			continue
		}
		delete(t.live, p)
	}
}

// ProcessInst advances the cursor past inst: every value inst reads
// becomes (or remains) live, and so does every result inst defines;
// DropDead then trims whatever is no longer needed after inst.
func (t *Tracker) ProcessInst(inst ir.Inst) {
	data := t.fn.DFG.Inst(inst)
	for _, arg := range operandsOf(data) {
		t.live[arg] = true
	}
	for _, r := range t.fn.DFG.InstResults(inst) {
		t.live[r] = true
	}
	for _, dest := range data.Destinations {
		for _, arg := range dest.Args {
			t.live[arg] = true
		}
	}
}

// DropDead removes from the live set every value whose last use was inst.
func (t *Tracker) DropDead(inst ir.Inst) {
	idx, ok := t.instIndex[inst]
	if !ok {
		return
	}
	needed := t.neededAfter[idx]
	for v := range t.live {
		if !needed[v] {
			delete(t.live, v)
		}
	}
}

// Live returns the currently live values, sorted by handle.
func (t *Tracker) Live() []ir.Value {
	out := make([]ir.Value, 0, len(t.live))
	for v := range t.live {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LiveRefs returns the subset of the currently live values whose type
// reports IsRef() — the GC-root set the stackmap inserter needs (spec
// section 4.2, "Identifying a 'reference'").
func (t *Tracker) LiveRefs() []ir.Value {
	all := t.Live()
	out := all[:0:0]
	for _, v := range all {
		if t.fn.DFG.ValueType(v).IsRef() {
			out = append(out, v)
		}
	}
	return out
}
