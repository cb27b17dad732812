// Package isa stands in for the target-specific encoding collaborator the
// parser, stackmap inserter, and flags verifier all consult: a recipe
// table keyed by name, and the two predicates (register-name validity,
// clobbers_flags) the spec names but leaves to "the unique ISA" to answer.
// Machine-code emission itself is out of scope (spec section 1, Non-goals).
package isa

import "fmt"

// Recipe is a target-specific schema for lowering one instruction shape to
// bytes (GLOSSARY, "Recipe"). Only the fields the three core subsystems
// need are modeled: whether encoding with this recipe clobbers CPU flags,
// and the recipe's name for round-tripping the textual encoding bracket.
type Recipe struct {
	Name           string
	ClobbersFlags  bool
}

// ISA is the minimal target description the parser and stackmap inserter
// consult: a recipe table and a register-name validity check.
type ISA struct {
	Name       string
	Flags      map[string]string // accumulated `set`/`isa` option assignments
	recipes    map[string]Recipe
	registers  map[string]bool
}

// Registry is the set of ISA builders known by name, analogous to the
// "recognized but not built-in" distinction spec section 4.1 draws between
// an unknown ISA name (hard error) and an unsupported one (silently
// skipped).
type Registry struct {
	builtin map[string]func() *ISA
}

func NewRegistry() *Registry {
	return &Registry{builtin: map[string]func() *ISA{
		"x86_64": newX86_64,
		"arm64":  newArm64,
	}}
}

// Recognized reports whether name is known to the registry at all
// (built-in or merely a recognized-but-unsupported placeholder).
func (r *Registry) Recognized(name string) bool {
	if _, ok := r.builtin[name]; ok {
		return true
	}
	return name == "riscv64" || name == "s390x" // recognized, not built in: silently skipped
}

// Unsupported reports whether name is recognized but has no builder.
func (r *Registry) Unsupported(name string) bool {
	_, ok := r.builtin[name]
	return r.Recognized(name) && !ok
}

// New constructs a fresh ISA builder seeded with the given flags snapshot.
func (r *Registry) New(name string, flags map[string]string) (*ISA, error) {
	ctor, ok := r.builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown ISA %q", name)
	}
	isa := ctor()
	isa.Flags = map[string]string{}
	for k, v := range flags {
		isa.Flags[k] = v
	}
	return isa, nil
}

func newX86_64() *ISA {
	return &ISA{
		Name: "x86_64",
		recipes: map[string]Recipe{
			"op1rr":     {Name: "op1rr"},
			"op2rr":     {Name: "op2rr"},
			"rcmp":      {Name: "rcmp", ClobbersFlags: true},
			"fcmp":      {Name: "fcmp", ClobbersFlags: true},
			"fillSib32": {Name: "fillSib32"},
			"spillSib32": {Name: "spillSib32"},
			"jmpb":      {Name: "jmpb"},
			"brfb":      {Name: "brfb"},
			"call_id":   {Name: "call_id"},
			"trap":      {Name: "trap"},
			StackmapRecipe: {Name: StackmapRecipe},
		},
		registers: map[string]bool{
			"rax": true, "rbx": true, "rcx": true, "rdx": true,
			"rsi": true, "rdi": true, "rbp": true, "rsp": true,
			"r8": true, "r9": true, "r10": true, "r11": true,
			"r12": true, "r13": true, "r14": true, "r15": true,
		},
	}
}

func newArm64() *ISA {
	return &ISA{
		Name: "arm64",
		recipes: map[string]Recipe{
			"op1rr":  {Name: "op1rr"},
			"op2rr":  {Name: "op2rr"},
			"ccmp":   {Name: "ccmp", ClobbersFlags: true},
			"stack":  {Name: "stack"},
			"branch": {Name: "branch"},
			"call":   {Name: "call"},
			"trap":   {Name: "trap"},
			StackmapRecipe: {Name: StackmapRecipe},
		},
		registers: map[string]bool{
			"x0": true, "x1": true, "x2": true, "x3": true,
			"x4": true, "x5": true, "x6": true, "x7": true,
			"sp": true, "fp": true, "lr": true,
		},
	}
}

// LookupRecipe resolves a recipe by name.
func (isa *ISA) LookupRecipe(name string) (Recipe, bool) {
	r, ok := isa.recipes[name]
	return r, ok
}

// IsValidRegister reports whether name is one of the ISA's register names.
func (isa *ISA) IsValidRegister(name string) bool { return isa.registers[name] }

// Encode assigns an instruction's encoding by looking up its recipe; in a
// real backend this would also validate operand shapes against the
// recipe's predicate and pick concrete bits. Here it only needs to
// succeed-or-fail, since the stackmap inserter's debug assertion (spec
// section 4.2) only cares that encoding a freshly inserted stackmap
// instruction does not fail.
func (isa *ISA) Encode(recipeName string, payload uint16) (recipe Recipe, ok bool) {
	r, ok := isa.recipes[recipeName]
	if !ok {
		return Recipe{}, false
	}
	return r, true
}

// StackmapRecipe is the fixed recipe name the stackmap inserter uses when
// it manufactures a new pseudo-instruction; every ISA this package builds
// recognizes it so debug-mode encoding never fails (spec section 4.2).
const StackmapRecipe = "stackmap"
