// Package stackmap implements the S component: it walks a Function's
// layout in reverse order and splices a stackmap pseudo-instruction in
// front of every instruction that can trigger a garbage collection while a
// reference-typed value is live, recording which values are roots at that
// point (spec section 4.2).
package stackmap

import (
	"sort"

	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/liveness"
	"github.com/kbasalt/ebbc/internal/types"
)

// Inserter drives one pass over a Function, consulting a LiveValueTracker
// (internal/liveness.Tracker standing in for the spec's external
// collaborator of the same name) to decide, instruction by instruction,
// which reference-typed values must be recorded as roots.
type Inserter struct {
	fn       *ir.Function
	target   *isa.ISA
	analysis *liveness.Analysis

	// destEbbs records, for every EBB, the set of EBBs at or after it in
	// layout whose branches target it (its self-loop and back-edge
	// predecessors) — spec section 4.2's "dest_ebbs" bookkeeping. Built once
	// up front over the whole function (buildDestEbbs), rather than
	// incrementally during the reverse walk the way the original does it, so
	// every back-edge into an EBB, its own self-loop included, is already
	// known the one time that EBB is visited.
	destEbbs map[ir.Ebb]map[ir.Ebb]bool

	inserted int
}

// isSafepoint reports whether data can trigger a collection: a call may
// invoke a GC-triggering runtime function, so every call instruction is
// treated as a safepoint (spec section 4.2).
func isSafepoint(data ir.InstructionData) bool {
	return data.IsCall()
}

// New prepares an Inserter for fn, targeting the given ISA (used only to
// validate that the "stackmap" recipe encodes, spec section 4.2's debug
// assertion).
func New(fn *ir.Function, target *isa.ISA) *Inserter {
	return &Inserter{
		fn:       fn,
		target:   target,
		analysis: liveness.Compute(fn),
		destEbbs: map[ir.Ebb]map[ir.Ebb]bool{},
	}
}

// Run performs the insertion pass and returns the number of stackmap
// pseudo-instructions inserted.
func (ins *Inserter) Run() int {
	ins.buildDestEbbs()

	tracker := liveness.NewTracker(ins.fn, ins.analysis)

	// Reverse layout order lets the tracker be seeded from each EBB's
	// already-computed live-out set without a second forward pass (spec
	// section 4.2). Because destEbbs was already built over the whole
	// function, every EBB's incoming edges — including a back-edge from an
	// EBB further down in layout, i.e. a loop head — are known before that
	// EBB is visited, so a single visit per EBB suffices.
	for _, ebb := range ins.fn.Layout.EbbsReverse() {
		ins.visitEbb(ebb, tracker)
	}

	return ins.inserted
}

func (ins *Inserter) buildDestEbbs() {
	order := map[ir.Ebb]int{}
	for i, ebb := range ins.fn.Layout.Ebbs() {
		order[ebb] = i
	}
	for _, ebb := range ins.fn.Layout.Ebbs() {
		for _, inst := range ins.fn.Layout.EbbInsts(ebb) {
			data := ins.fn.DFG.Inst(inst)
			for _, dest := range data.Destinations {
				if order[dest.Ebb] > order[ebb] {
					continue // a forward edge does not make dest a loop head
				}
				if ins.destEbbs[dest.Ebb] == nil {
					ins.destEbbs[dest.Ebb] = map[ir.Ebb]bool{}
				}
				ins.destEbbs[dest.Ebb][ebb] = true
			}
		}
	}
}

func (ins *Inserter) visitEbb(ebb ir.Ebb, tracker *liveness.Tracker) {
	tracker.EbbTop(ebb)
	tracker.DropDeadParams(ebb)

	// Snapshot before any insertion: tryInsertAtEbbTop may splice a
	// stackmap in front of insts[0], and the pseudo-instruction it adds
	// must not be walked below as if it were one of ebb's own instructions.
	insts := ins.fn.Layout.EbbInsts(ebb)
	ins.tryInsertAtEbbTop(ebb, insts, tracker)

	for _, inst := range insts {
		data := ins.fn.DFG.Inst(inst)

		if isSafepoint(data) && len(tracker.LiveRefs()) > 0 {
			ins.insertStackmap(ebb, inst, tracker)
		}

		tracker.ProcessInst(inst)
		tracker.DropDead(inst)
	}
}

// tryInsertAtEbbTop is the loop-head half of spec section 4.2's insertion
// rule: an EBB that is branched to from itself or from an EBB later in
// layout, with at least one reference-typed value live at its top, gets a
// stackmap at its own
// top, mirroring the original's try_insert_savepoint_at_ebb_top.
func (ins *Inserter) tryInsertAtEbbTop(ebb ir.Ebb, insts []ir.Inst, tracker *liveness.Tracker) {
	if len(insts) == 0 || len(ins.destEbbs[ebb]) == 0 {
		return
	}
	if len(tracker.LiveRefs()) == 0 {
		return
	}
	ins.insertStackmap(ebb, insts[0], tracker)
}

func (ins *Inserter) insertStackmap(ebb ir.Ebb, before ir.Inst, tracker *liveness.Tracker) {
	roots := tracker.LiveRefs()
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	data := ir.InstructionData{Opcode: ir.OpStackmap, Args: roots}
	inst := ins.fn.MakeInst(data)
	ins.fn.Layout.InsertInstBefore(before, inst)
	ins.fn.DFG.MakeInstResultsForParser(inst, nil, types.VOID)

	if ins.target != nil {
		// Debug-mode assertion (spec section 4.2): a freshly inserted
		// stackmap pseudo-instruction must always be encodable.
		if _, ok := ins.target.Encode(isa.StackmapRecipe, 0); !ok {
			panic("stackmap: target ISA cannot encode the stackmap pseudo-instruction")
		}
		ins.fn.Encodings[inst] = ir.Encoding{Recipe: isa.StackmapRecipe, Present: true}
	}

	ins.inserted++
}
