package printer_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/irparser"
	"github.com/kbasalt/ebbc/internal/printer"
)

// wideFixture exercises one instruction from each of several format families:
// preamble entities (stack slot, global var, heap, signature, external
// function), control flow across three EBBs, and a call through an
// external function reference whose return type flows into the result.
const wideFixture = `function %example(i32, i32) -> (i32) {
    ss0 = explicit_slot 8
    gv0 = %counter
    heap0 = static gv0 min 4096, bound 65536
    sig0 = (i32) -> (i32)
    fn0 = %helper sig0

ebb0(v0: i32, v1: i32):
    v2 = icmp eq v0, v1
    brnz v2, ebb2
    jump ebb1

ebb1():
    v3 = iconst.i32 1
    v4 = iadd v0, v3
    stack_store v4, ss0
    v5 = stack_load.i32 ss0
    v6 = heap_addr.i32 heap0, v5
    v7 = call fn0(v6)
    return v7

ebb2():
    return v1
}
`

func mustParseOne(t *testing.T, src string) irparser.FunctionResult {
	t.Helper()
	tf, err := irparser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	if len(tf.Functions) != 1 {
		t.Fatalf("Parse() produced %d functions, want 1", len(tf.Functions))
	}
	return tf.Functions[0]
}

func TestFunctionPrintsParsableOutput(t *testing.T) {
	fr := mustParseOne(t, wideFixture)
	out := printer.Function(fr.Func)

	if !strings.Contains(out, "function %example") {
		t.Errorf("printed output missing function header:\n%s", out)
	}
	if !strings.Contains(out, "ss0 = explicit_slot 8") {
		t.Errorf("printed output missing stack slot declaration:\n%s", out)
	}
	if !strings.Contains(out, "gv0 = %counter") {
		t.Errorf("printed output missing global var declaration:\n%s", out)
	}
	if !strings.Contains(out, "heap0 = static gv0 min 4096, bound 65536") {
		t.Errorf("printed output missing heap declaration:\n%s", out)
	}
	if !strings.Contains(out, "fn0 = %helper sig0") {
		t.Errorf("printed output missing external function declaration:\n%s", out)
	}
	if !strings.Contains(out, "call fn0(v6)") {
		t.Errorf("printed output missing call instruction:\n%s", out)
	}

	if _, err := irparser.Parse(out); err != nil {
		t.Fatalf("re-parsing printed output failed: %v\noutput:\n%s", err, out)
	}
}

// TestRoundTripReachesFixedPoint asserts parse -> print -> parse -> print
// produces byte-identical text on the second pass, i.e. the canonical form
// the printer emits is itself a fixed point of the pair.
func TestRoundTripReachesFixedPoint(t *testing.T) {
	first := mustParseOne(t, wideFixture)
	pass1 := printer.Function(first.Func)

	second := mustParseOne(t, pass1)
	pass2 := printer.Function(second.Func)

	if pass1 != pass2 {
		t.Errorf("printer output is not a fixed point:\npass1:\n%s\npass2:\n%s", pass1, pass2)
	}
}

func TestRoundTripPreservesInstructionShape(t *testing.T) {
	first := mustParseOne(t, wideFixture)
	pass1 := printer.Function(first.Func)
	second := mustParseOne(t, pass1)

	fn1, fn2 := first.Func, second.Func
	if len(fn1.Layout.Ebbs()) != len(fn2.Layout.Ebbs()) {
		t.Fatalf("ebb count changed across round trip: %d vs %d", len(fn1.Layout.Ebbs()), len(fn2.Layout.Ebbs()))
	}
	for _, ebb := range fn1.Layout.Ebbs() {
		insts1 := fn1.Layout.EbbInsts(ebb)
		insts2 := fn2.Layout.EbbInsts(ebb)
		if len(insts1) != len(insts2) {
			t.Fatalf("ebb%d instruction count changed: %d vs %d", ebb, len(insts1), len(insts2))
		}
		for i := range insts1 {
			op1 := fn1.DFG.Inst(insts1[i]).Opcode
			op2 := fn2.DFG.Inst(insts2[i]).Opcode
			if op1 != op2 {
				t.Errorf("ebb%d instruction %d opcode changed: %s vs %s", ebb, i, op1, op2)
			}
		}
	}
}

// TestFunctionPrintMatchesSnapshot pins the canonical rendering of a
// whole function against a stored snapshot, the same way fixture output
// is pinned elsewhere in this codebase.
func TestFunctionPrintMatchesSnapshot(t *testing.T) {
	fr := mustParseOne(t, wideFixture)
	out := printer.Function(fr.Func)
	snaps.MatchSnapshot(t, "wide_fixture_print", out)
}

func TestPrintVectorSplatRoundTrips(t *testing.T) {
	src := `function %vec(i32) -> (i32x4) {
ebb0(v0: i32):
    v1 = splat.i32x4 v0
    return v1
}
`
	fr := mustParseOne(t, src)
	out := printer.Function(fr.Func)
	if !strings.Contains(out, "splat.i32x4 v0") {
		t.Errorf("printed output = %q, want the vector splat instruction preserved", out)
	}
	if _, err := irparser.Parse(out); err != nil {
		t.Fatalf("re-parsing printed vector output failed: %v", err)
	}
}

func TestPrintFloatConstantRoundTrips(t *testing.T) {
	src := `function %f(f32) -> (f32) {
ebb0(v0: f32):
    v1 = f32const NaN
    return v1
}
`
	fr := mustParseOne(t, src)
	out := printer.Function(fr.Func)
	if _, err := irparser.Parse(out); err != nil {
		t.Fatalf("re-parsing printed NaN constant failed: %v", err)
	}
}

func TestParseReportsSyntaxErrorWithCode(t *testing.T) {
	src := `function %broken(i32) -> (i32) {
ebb0(v0: i32):
    v1 = iadd v0,
    return v1
}
`
	_, err := irparser.Parse(src)
	if err == nil {
		t.Fatal("Parse() should fail on a trailing comma with no second operand")
	}
	cerr, ok := err.(*cerrors.Error)
	if !ok {
		t.Fatalf("Parse() error = %T, want *cerrors.Error", err)
	}
	if cerr.Code != cerrors.ErrSyntax {
		t.Errorf("Parse() error code = %s, want %s", cerr.Code, cerrors.ErrSyntax)
	}
}
