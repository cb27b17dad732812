package types

import "testing"

func TestScalarStrings(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"i8", I8, "i8"},
		{"i32", I32, "i32"},
		{"i64", I64, "i64"},
		{"f32", F32, "f32"},
		{"f64", F64, "f64"},
		{"b1", B1, "b1"},
		{"iflags", IFlags, "iflags"},
		{"fflags", FFlags, "fflags"},
		{"r64", R64, "r64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		spell   string
		wantOk  bool
		wantStr string
	}{
		{"scalar i32", "i32", true, "i32"},
		{"scalar iflags", "iflags", true, "iflags"},
		{"vector i32x4", "i32x4", true, "i32x4"},
		{"vector b1x8", "b1x8", true, "b1x8"},
		{"unknown", "xyz", false, ""},
		{"vector lane 1 rejected", "i32x1", false, ""},
		{"vector non-digit lanes rejected", "i32xN", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ByName(tt.spell)
			if ok != tt.wantOk {
				t.Fatalf("ByName(%q) ok = %v, want %v", tt.spell, ok, tt.wantOk)
			}
			if ok && got.String() != tt.wantStr {
				t.Errorf("ByName(%q) = %q, want %q", tt.spell, got.String(), tt.wantStr)
			}
		})
	}
}

func TestVectorByAndLaneCount(t *testing.T) {
	vec, ok := I32.By(4)
	if !ok {
		t.Fatal("By(4) rejected a power-of-two lane count")
	}
	if vec.LaneCount() != 4 {
		t.Errorf("LaneCount() = %d, want 4", vec.LaneCount())
	}
	if vec.Lane() != I32 {
		t.Errorf("Lane() = %v, want I32", vec.Lane())
	}
	if _, ok := I32.By(3); ok {
		t.Error("By(3) accepted a non-power-of-two lane count")
	}
}

func TestClassificationPredicates(t *testing.T) {
	tests := []struct {
		name                                   string
		typ                                    Type
		isInt, isFloat, isBool, isRef, isFlags bool
	}{
		{"i32", I32, true, false, false, false, false},
		{"f64", F64, false, true, false, false, false},
		{"b1", B1, false, false, true, false, false},
		{"r32", R32, false, false, false, true, false},
		{"iflags", IFlags, false, false, false, false, true},
		{"fflags", FFlags, false, false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsInt(); got != tt.isInt {
				t.Errorf("IsInt() = %v, want %v", got, tt.isInt)
			}
			if got := tt.typ.IsFloat(); got != tt.isFloat {
				t.Errorf("IsFloat() = %v, want %v", got, tt.isFloat)
			}
			if got := tt.typ.IsBool(); got != tt.isBool {
				t.Errorf("IsBool() = %v, want %v", got, tt.isBool)
			}
			if got := tt.typ.IsRef(); got != tt.isRef {
				t.Errorf("IsRef() = %v, want %v", got, tt.isRef)
			}
			if got := tt.typ.IsFlags(); got != tt.isFlags {
				t.Errorf("IsFlags() = %v, want %v", got, tt.isFlags)
			}
		})
	}
}

func TestTypeSetContains(t *testing.T) {
	ts := TypeSet{Ints: true, MinBits: 32}
	if !ts.Contains(I32) {
		t.Error("TypeSet{Ints, MinBits: 32} should admit i32")
	}
	if ts.Contains(I8) {
		t.Error("TypeSet{Ints, MinBits: 32} should reject i8")
	}
	if ts.Contains(F32) {
		t.Error("TypeSet{Ints} should reject f32")
	}
}

func TestInvalidType(t *testing.T) {
	if !Invalid.IsInvalid() {
		t.Error("Invalid.IsInvalid() = false, want true")
	}
	if VOID.IsInvalid() {
		t.Error("VOID should not report itself as the forward-reference placeholder")
	}
	if VOID.String() != "invalid" {
		t.Errorf("VOID.String() = %q, want %q", VOID.String(), "invalid")
	}
}
