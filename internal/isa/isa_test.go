package isa

import "testing"

func TestRegistryRecognizedAndUnsupported(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name            string
		wantRecognized  bool
		wantUnsupported bool
	}{
		{"x86_64", true, false},
		{"arm64", true, false},
		{"riscv64", true, true},
		{"s390x", true, true},
		{"made_up", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Recognized(tt.name); got != tt.wantRecognized {
				t.Errorf("Recognized(%q) = %v, want %v", tt.name, got, tt.wantRecognized)
			}
			if got := r.Unsupported(tt.name); got != tt.wantUnsupported {
				t.Errorf("Unsupported(%q) = %v, want %v", tt.name, got, tt.wantUnsupported)
			}
		})
	}
}

func TestRegistryNewUnknownISA(t *testing.T) {
	r := NewRegistry()
	if _, err := r.New("made_up", nil); err == nil {
		t.Error("New() with an unknown ISA name should fail")
	}
}

func TestRegistryNewCopiesFlags(t *testing.T) {
	r := NewRegistry()
	flags := map[string]string{"opt_level": "speed"}
	built, err := r.New("x86_64", flags)
	if err != nil {
		t.Fatalf("New(x86_64) failed: %v", err)
	}
	if built.Flags["opt_level"] != "speed" {
		t.Fatalf("Flags not copied: %+v", built.Flags)
	}
	flags["opt_level"] = "size"
	if built.Flags["opt_level"] != "speed" {
		t.Error("ISA.Flags aliases the caller's map instead of copying it")
	}
}

func TestX86_64RecipesAndRegisters(t *testing.T) {
	r := NewRegistry()
	x86, err := r.New("x86_64", nil)
	if err != nil {
		t.Fatalf("New(x86_64) failed: %v", err)
	}
	if !x86.IsValidRegister("rax") {
		t.Error("rax should be a valid x86_64 register")
	}
	if x86.IsValidRegister("x0") {
		t.Error("x0 is an arm64 register and should not be valid on x86_64")
	}
	rcmp, ok := x86.LookupRecipe("rcmp")
	if !ok || !rcmp.ClobbersFlags {
		t.Errorf("rcmp recipe = %+v, %v, want a flags-clobbering recipe", rcmp, ok)
	}
	op1rr, ok := x86.LookupRecipe("op1rr")
	if !ok || op1rr.ClobbersFlags {
		t.Errorf("op1rr recipe = %+v, %v, want a non-clobbering recipe", op1rr, ok)
	}
	if _, ok := x86.LookupRecipe("not_a_recipe"); ok {
		t.Error("LookupRecipe found a result for a nonexistent recipe")
	}
}

func TestArm64RecipesAndRegisters(t *testing.T) {
	r := NewRegistry()
	arm, err := r.New("arm64", nil)
	if err != nil {
		t.Fatalf("New(arm64) failed: %v", err)
	}
	if !arm.IsValidRegister("x0") || !arm.IsValidRegister("sp") {
		t.Error("x0 and sp should be valid arm64 registers")
	}
	ccmp, ok := arm.LookupRecipe("ccmp")
	if !ok || !ccmp.ClobbersFlags {
		t.Errorf("ccmp recipe = %+v, %v, want a flags-clobbering recipe", ccmp, ok)
	}
}

func TestStackmapRecipeAlwaysEncodable(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"x86_64", "arm64"} {
		t.Run(name, func(t *testing.T) {
			built, err := r.New(name, nil)
			if err != nil {
				t.Fatalf("New(%s) failed: %v", name, err)
			}
			if _, ok := built.Encode(StackmapRecipe, 0); !ok {
				t.Errorf("Encode(%s) failed for the stackmap recipe", name)
			}
		})
	}
}

func TestEncodeUnknownRecipeFails(t *testing.T) {
	r := NewRegistry()
	built, err := r.New("x86_64", nil)
	if err != nil {
		t.Fatalf("New(x86_64) failed: %v", err)
	}
	if _, ok := built.Encode("not_a_recipe", 0); ok {
		t.Error("Encode() succeeded for an unknown recipe name")
	}
}
