// Package flags implements the F component: a backward fixed-point check,
// repeating reverse-layout sweeps over every EBB until nothing changes, that no EBB ever needs two different CPU-flags values
// live at once, and that no instruction clobbers a flags value another
// instruction still needs (spec section 4.3).
package flags

import (
	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/token"
)

// Verifier walks a Function after encodings have been assigned and
// confirms the single-live-flags-value invariant holds throughout.
type Verifier struct {
	fn     *ir.Function
	target *isa.ISA

	liveIn map[ir.Ebb]ir.Value // NilValue = no flags value live on entry
	succs  map[ir.Ebb][]ir.Ebb
}

// New prepares a Verifier for fn against target (which supplies the
// per-recipe ClobbersFlags predicate).
func New(fn *ir.Function, target *isa.ISA) *Verifier {
	return &Verifier{fn: fn, target: target, liveIn: map[ir.Ebb]ir.Value{}, succs: map[ir.Ebb][]ir.Ebb{}}
}

// Verify runs the fixed point and returns the first conflict found, if any.
func (v *Verifier) Verify() error {
	ebbs := v.fn.Layout.Ebbs()
	for _, ebb := range ebbs {
		for _, p := range v.fn.DFG.EbbParams(ebb) {
			if v.fn.DFG.ValueType(p).IsFlags() {
				return cerrors.New(cerrors.ErrFlags, token.Position{}, "flags value v%d cannot be a parameter of ebb%d", p, ebb)
			}
		}
		v.liveIn[ebb] = ir.NilValue
		v.succs[ebb] = v.successorsOf(ebb)
	}

	changed := true
	for changed {
		changed = false
		for i := len(ebbs) - 1; i >= 0; i-- {
			ebb := ebbs[i]
			out, err := v.visitEbb(ebb)
			if err != nil {
				return err
			}
			if out != v.liveIn[ebb] {
				changed = true
				v.liveIn[ebb] = out
			}
		}
	}
	return nil
}

func (v *Verifier) successorsOf(ebb ir.Ebb) []ir.Ebb {
	var out []ir.Ebb
	for _, inst := range v.fn.Layout.EbbInsts(ebb) {
		data := v.fn.DFG.Inst(inst)
		for _, dest := range data.Destinations {
			out = append(out, dest.Ebb)
		}
		if data.Opcode == ir.OpBrTable {
			for _, target := range v.fn.JumpTableData(data.JumpTableRef).Entries {
				if target != ir.NilEbb {
					out = append(out, target)
				}
			}
		}
	}
	return out
}

// visitEbb computes the flags value live on entry to ebb by walking its
// instructions backward from the live-in value of its successors,
// reporting a conflict the moment two distinct flags-producing values are
// both required live at the same program point, or an already-live flags
// value is clobbered before its last use.
func (v *Verifier) visitEbb(ebb ir.Ebb) (ir.Value, error) {
	var live ir.Value = ir.NilValue
	for _, s := range v.succs[ebb] {
		in := v.liveIn[s]
		if in == ir.NilValue {
			continue
		}
		if live != ir.NilValue && live != in {
			return ir.NilValue, v.conflict(ebb, live, in)
		}
		live = in
	}

	insts := v.fn.Layout.EbbInsts(ebb)
	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		data := v.fn.DFG.Inst(inst)

		for _, r := range v.fn.DFG.InstResults(inst) {
			if r == live {
				live = ir.NilValue
			} else if live != ir.NilValue && v.fn.DFG.ValueType(r).IsFlags() {
				return ir.NilValue, cerrors.New(cerrors.ErrFlags, token.Position{},
					"v%d clobbers live CPU flags in v%d", r, live)
			}
		}

		if v.clobbers(inst) && live != ir.NilValue {
			return ir.NilValue, cerrors.New(cerrors.ErrFlags, token.Position{},
				"instruction clobbers flags value v%d still needed later in ebb%d", live, ebb)
		}

		for _, arg := range data.Args {
			if v.fn.DFG.ValueType(arg).IsFlags() {
				if live != ir.NilValue && live != arg {
					return ir.NilValue, v.conflict(ebb, live, arg)
				}
				live = arg
			}
		}
	}

	return live, nil
}

func (v *Verifier) clobbers(inst ir.Inst) bool {
	if v.target == nil {
		return false
	}
	enc, ok := v.fn.Encodings[inst]
	if !ok || !enc.Present {
		return false
	}
	recipe, ok := v.target.LookupRecipe(enc.Recipe)
	return ok && recipe.ClobbersFlags
}

func (v *Verifier) conflict(ebb ir.Ebb, a, b ir.Value) error {
	return cerrors.New(cerrors.ErrFlags, token.Position{},
		"conflicting live flags values v%d and v%d in ebb%d", a, b, ebb)
}
