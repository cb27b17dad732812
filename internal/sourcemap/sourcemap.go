// Package sourcemap records where in the source text every IR entity was
// defined, rejects a second definition of the same handle, and resolves
// textual names (register names, recipe names) back to the handles they
// stand for. Its lifetime is independent of the Function it describes
// (spec section 3, "Ownership"): it holds only handles, never references.
package sourcemap

import (
	"fmt"

	"github.com/kbasalt/ebbc/internal/token"
)

// EntityKind tags which dense table a handle in a SourceMap key belongs
// to, since handles of different kinds are small integers that alias.
type EntityKind int

const (
	KindEbb EntityKind = iota
	KindValue
	KindStackSlot
	KindGlobalVar
	KindHeap
	KindSigRef
	KindFuncRef
	KindJumpTable
)

func (k EntityKind) String() string {
	switch k {
	case KindEbb:
		return "ebb"
	case KindValue:
		return "value"
	case KindStackSlot:
		return "stack slot"
	case KindGlobalVar:
		return "global var"
	case KindHeap:
		return "heap"
	case KindSigRef:
		return "signature"
	case KindFuncRef:
		return "function"
	case KindJumpTable:
		return "jump table"
	}
	return "entity"
}

type entityKey struct {
	kind   EntityKind
	handle uint32
}

// SourceMap is the definition-location registry the parser builds while
// parsing one Function, and hands to its caller afterwards (spec section
// 4.1, Details.map).
type SourceMap struct {
	defs  map[entityKey]token.Position
	names map[string]entityKey
}

func New() *SourceMap {
	return &SourceMap{defs: map[entityKey]token.Position{}, names: map[string]entityKey{}}
}

// Define records that the entity (kind, handle) was defined at pos. It
// returns an error if that entity was already defined ("duplicate
// entity"), per spec sections 4.1 and 7.
func (m *SourceMap) Define(kind EntityKind, handle uint32, pos token.Position) error {
	key := entityKey{kind, handle}
	if _, ok := m.defs[key]; ok {
		return fmt.Errorf("duplicate entity: %s%d already defined", kind, handle)
	}
	m.defs[key] = pos
	return nil
}

// DefineName additionally registers a textual name (a register name, a
// recipe name) as resolving to the same entity, so later lookups by name
// succeed without re-scanning the handle tables.
func (m *SourceMap) DefineName(name string, kind EntityKind, handle uint32) {
	m.names[name] = entityKey{kind, handle}
}

// ResolveName looks up a previously registered textual name.
func (m *SourceMap) ResolveName(name string) (kind EntityKind, handle uint32, ok bool) {
	key, ok := m.names[name]
	return key.kind, key.handle, ok
}

// DefinitionOf returns where (kind, handle) was defined, if at all.
func (m *SourceMap) DefinitionOf(kind EntityKind, handle uint32) (token.Position, bool) {
	pos, ok := m.defs[entityKey{kind, handle}]
	return pos, ok
}

// IsDefined reports whether (kind, handle) has a recorded definition.
func (m *SourceMap) IsDefined(kind EntityKind, handle uint32) bool {
	_, ok := m.defs[entityKey{kind, handle}]
	return ok
}
