// Package liveness implements the dataflow analysis and the LiveValueTracker
// cursor the stackmap inserter is specified to consult (spec section 2,
// where both are named as an excluded external collaborator). Nothing in
// the retrieved example pack provides SSA liveness, so this package is
// built as ordinary in-module supporting infrastructure, per SPEC_FULL.md
// section 12.
package liveness

import (
	"sort"

	"github.com/kbasalt/ebbc/internal/ir"
)

// Analysis is a whole-function backward liveness dataflow: for every EBB,
// the set of values live on entry and on exit. It treats EBB parameters as
// definitions and branch-argument lists as uses, the same treatment that
// makes phi-less, direct-cross-block-reference SSA IRs liveness-computable
// with the textbook `live_in = use ∪ (live_out - def)` fixed point.
type Analysis struct {
	fn      *ir.Function
	defs    map[ir.Ebb]map[ir.Value]bool
	uses    map[ir.Ebb]map[ir.Value]bool
	liveIn  map[ir.Ebb]map[ir.Value]bool
	liveOut map[ir.Ebb]map[ir.Value]bool
	succs   map[ir.Ebb][]ir.Ebb
}

// Compute runs the fixed point over every EBB in fn and returns the result.
func Compute(fn *ir.Function) *Analysis {
	a := &Analysis{
		fn:      fn,
		defs:    map[ir.Ebb]map[ir.Value]bool{},
		uses:    map[ir.Ebb]map[ir.Value]bool{},
		liveIn:  map[ir.Ebb]map[ir.Value]bool{},
		liveOut: map[ir.Ebb]map[ir.Value]bool{},
		succs:   map[ir.Ebb][]ir.Ebb{},
	}
	for _, ebb := range fn.Layout.Ebbs() {
		a.analyzeEbb(ebb)
	}
	a.fixedPoint(fn.Layout.Ebbs())
	return a
}

func (a *Analysis) analyzeEbb(ebb ir.Ebb) {
	def := map[ir.Value]bool{}
	use := map[ir.Value]bool{}
	definedSoFar := map[ir.Value]bool{}

	for _, p := range a.fn.DFG.EbbParams(ebb) {
		def[p] = true
		definedSoFar[p] = true
	}

	var succs []ir.Ebb
	for _, inst := range a.fn.Layout.EbbInsts(ebb) {
		data := a.fn.DFG.Inst(inst)
		for _, arg := range operandsOf(data) {
			if !definedSoFar[arg] {
				use[arg] = true
			}
		}
		for _, dest := range data.Destinations {
			succs = append(succs, dest.Ebb)
			for _, arg := range dest.Args {
				if !definedSoFar[arg] {
					use[arg] = true
				}
			}
		}
		if data.Opcode == ir.OpBrTable {
			for _, target := range a.fn.JumpTableData(data.JumpTableRef).Entries {
				if target != ir.NilEbb {
					succs = append(succs, target)
				}
			}
		}
		for _, r := range a.fn.DFG.InstResults(inst) {
			def[r] = true
			definedSoFar[r] = true
		}
	}

	a.defs[ebb] = def
	a.uses[ebb] = use
	a.succs[ebb] = succs
	a.liveIn[ebb] = map[ir.Value]bool{}
	a.liveOut[ebb] = map[ir.Value]bool{}
}

// operandsOf returns the plain (non-branch-argument) operand list an
// instruction reads, covering every format's meaningful Value-typed field.
func operandsOf(d ir.InstructionData) []ir.Value {
	return d.Args
}

func (a *Analysis) fixedPoint(ebbs []ir.Ebb) {
	changed := true
	for changed {
		changed = false
		for i := len(ebbs) - 1; i >= 0; i-- {
			ebb := ebbs[i]
			out := map[ir.Value]bool{}
			for _, s := range a.succs[ebb] {
				for v := range a.liveIn[s] {
					out[v] = true
				}
			}
			in := map[ir.Value]bool{}
			for v := range a.uses[ebb] {
				in[v] = true
			}
			for v := range out {
				if !a.defs[ebb][v] {
					in[v] = true
				}
			}
			if !setsEqual(in, a.liveIn[ebb]) || !setsEqual(out, a.liveOut[ebb]) {
				changed = true
			}
			a.liveIn[ebb] = in
			a.liveOut[ebb] = out
		}
	}
}

func setsEqual(a, b map[ir.Value]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if !b[v] {
			return false
		}
	}
	return true
}

// LiveIn returns the values live on entry to ebb, sorted by handle for
// deterministic output.
func (a *Analysis) LiveIn(ebb ir.Ebb) []ir.Value { return sortedValues(a.liveIn[ebb]) }

// LiveOut returns the values live on exit from ebb.
func (a *Analysis) LiveOut(ebb ir.Ebb) []ir.Value { return sortedValues(a.liveOut[ebb]) }

func sortedValues(set map[ir.Value]bool) []ir.Value {
	out := make([]ir.Value, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
