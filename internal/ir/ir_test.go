package ir

import (
	"testing"

	"github.com/kbasalt/ebbc/internal/types"
)

func TestLookupOpcodeRoundTrips(t *testing.T) {
	tests := []string{"iconst", "iadd", "icmp", "br_table", "call_indirect", "stackmap"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			op, ok := LookupOpcode(name)
			if !ok {
				t.Fatalf("LookupOpcode(%q) not found", name)
			}
			if got := op.String(); got != name {
				t.Errorf("String() = %q, want %q", got, name)
			}
		})
	}
}

func TestLookupOpcodeUnknown(t *testing.T) {
	if _, ok := LookupOpcode("not_a_real_opcode"); ok {
		t.Error("LookupOpcode found a result for a nonexistent opcode")
	}
}

func TestOpcodeInfoFormat(t *testing.T) {
	op, ok := LookupOpcode("iadd")
	if !ok {
		t.Fatal("LookupOpcode(iadd) failed")
	}
	info := op.Info()
	if info.Format != FormatBinary {
		t.Errorf("Format = %v, want FormatBinary", info.Format)
	}
	if !info.Constraints.Polymorphic || !info.Constraints.UseTypevarOperand {
		t.Error("iadd should be polymorphic with an inferable typevar operand")
	}
}

func TestDataFlowGraphHandleDensity(t *testing.T) {
	dfg := NewDataFlowGraph()
	dfg.EnsureValue(5)
	if dfg.NumValues() != 6 {
		t.Fatalf("NumValues() = %d, want 6 after touching handle 5", dfg.NumValues())
	}
	for v := Value(0); v < 5; v++ {
		if dfg.ValueIsValid(v) {
			t.Errorf("value %d should still be an invalid placeholder", v)
		}
	}
}

func TestDataFlowGraphEbbParams(t *testing.T) {
	dfg := NewDataFlowGraph()
	dfg.AppendEbbParamForParser(Ebb(0), Value(0), types.I32)
	dfg.AppendEbbParamForParser(Ebb(0), Value(1), types.F64)

	params := dfg.EbbParams(Ebb(0))
	if len(params) != 2 || params[0] != 0 || params[1] != 1 {
		t.Fatalf("EbbParams(0) = %v, want [0 1]", params)
	}
	if !dfg.ValueIsValid(0) || !dfg.ValueIsValid(1) {
		t.Error("EBB parameter values should be valid once appended")
	}
	if dfg.ValueType(0) != types.I32 {
		t.Errorf("ValueType(0) = %v, want i32", dfg.ValueType(0))
	}
	if dfg.ValueType(1) != types.F64 {
		t.Errorf("ValueType(1) = %v, want f64", dfg.ValueType(1))
	}
}

func TestDataFlowGraphInstResults(t *testing.T) {
	dfg := NewDataFlowGraph()
	dfg.MakeInst(Inst(0), InstructionData{Opcode: OpIadd})
	dfg.MakeInstResultsForParser(Inst(0), []Value{2}, types.I32)

	results := dfg.InstResults(Inst(0))
	if len(results) != 1 || results[0] != 2 {
		t.Fatalf("InstResults(0) = %v, want [2]", results)
	}
	def, ok := dfg.ValueDef(2)
	if !ok || def != 0 {
		t.Errorf("ValueDef(2) = (%d, %v), want (0, true)", def, ok)
	}
}

func TestResolveAliasesSimpleChain(t *testing.T) {
	dfg := NewDataFlowGraph()
	dfg.MakeInst(Inst(0), InstructionData{Opcode: OpIconst})
	dfg.MakeInstResultsForParser(Inst(0), []Value{0}, types.I32)
	dfg.RecordAlias(Value(1), Value(0))
	dfg.RecordAlias(Value(2), Value(1))

	if _, found := dfg.ResolveAliases(); found {
		t.Fatal("ResolveAliases reported a cycle in an acyclic chain")
	}
	if got := dfg.ValueType(2); got != types.I32 {
		t.Errorf("ValueType(2) through a two-hop alias chain = %v, want i32", got)
	}
	if target := dfg.ResolveAliasesTo(2); target != 0 {
		t.Errorf("ResolveAliasesTo(2) = %d, want 0", target)
	}
}

func TestResolveAliasesDetectsCycle(t *testing.T) {
	dfg := NewDataFlowGraph()
	dfg.RecordAlias(Value(0), Value(1))
	dfg.RecordAlias(Value(1), Value(0))

	cycle, found := dfg.ResolveAliases()
	if !found {
		t.Fatal("ResolveAliases failed to detect a two-value alias cycle")
	}
	if cycle != 0 && cycle != 1 {
		t.Errorf("cycle value = %d, want 0 or 1", cycle)
	}
}

func TestLayoutForwardAndReverseOrder(t *testing.T) {
	l := NewLayout()
	l.AppendEbb(Ebb(0))
	l.AppendEbb(Ebb(1))
	l.AppendEbb(Ebb(2))

	forward := l.Ebbs()
	want := []Ebb{0, 1, 2}
	if len(forward) != len(want) {
		t.Fatalf("Ebbs() = %v, want %v", forward, want)
	}
	for i := range want {
		if forward[i] != want[i] {
			t.Errorf("Ebbs()[%d] = %d, want %d", i, forward[i], want[i])
		}
	}

	reverse := l.EbbsReverse()
	wantReverse := []Ebb{2, 1, 0}
	for i := range wantReverse {
		if reverse[i] != wantReverse[i] {
			t.Errorf("EbbsReverse()[%d] = %d, want %d", i, reverse[i], wantReverse[i])
		}
	}
}

func TestLayoutAppendAndInsertInst(t *testing.T) {
	l := NewLayout()
	l.AppendEbb(Ebb(0))
	l.AppendInst(Ebb(0), Inst(0))
	l.AppendInst(Ebb(0), Inst(2))
	l.InsertInstBefore(Inst(2), Inst(1))

	insts := l.EbbInsts(Ebb(0))
	want := []Inst{0, 1, 2}
	if len(insts) != len(want) {
		t.Fatalf("EbbInsts(0) = %v, want %v", insts, want)
	}
	for i := range want {
		if insts[i] != want[i] {
			t.Errorf("EbbInsts(0)[%d] = %d, want %d", i, insts[i], want[i])
		}
	}
	if l.EbbOf(Inst(1)) != Ebb(0) {
		t.Errorf("EbbOf(1) = %d, want 0", l.EbbOf(Inst(1)))
	}
}

func TestLayoutEbbIsInLayoutIdempotent(t *testing.T) {
	l := NewLayout()
	l.AppendEbb(Ebb(0))
	l.AppendEbb(Ebb(0))
	if got := len(l.Ebbs()); got != 1 {
		t.Errorf("appending the same EBB twice produced %d entries, want 1", got)
	}
}
