// Package irparser implements the textual-IR-to-Function parser: the P
// component of spec section 4.1. It is a single-lookahead recursive-
// descent parser, in the style of the teacher's Pratt parser
// (internal/parser.Parser in the teacher repo) but table-driven per
// instruction format rather than per-operator precedence, since the IR
// grammar has no expression precedence to speak of.
package irparser

import (
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/sourcemap"
	"github.com/kbasalt/ebbc/internal/token"
)

// TestFile is the parse result of a whole input file: spec section 4.1.
type TestFile struct {
	Commands         []string
	IsaSpec          IsaSpec
	PreambleComments []Comment
	Functions        []FunctionResult
}

// IsaSpec is the result of parse_isa_specs: either no ISA was named
// (Isas is nil, Flags holds accumulated `set` options) or one or more ISA
// builders were snapshotted (spec section 4.1).
type IsaSpec struct {
	Flags map[string]string
	Isas  []*isa.ISA
}

func (s IsaSpec) HasUniqueIsa() bool { return len(s.Isas) == 1 }

func (s IsaSpec) UniqueIsa() *isa.ISA {
	if len(s.Isas) != 1 {
		return nil
	}
	return s.Isas[0]
}

// FunctionResult pairs a parsed Function with its Details (spec section
// 4.1: `Details = { location, comments, map: SourceMap }`).
type FunctionResult struct {
	Func    *ir.Function
	Details Details
}

// Comment attributes a gathered comment to the entity whose parse
// completed when it was claimed (spec section 4.1, "Comment attribution").
type Comment struct {
	Owner string
	Text  string
}

// Details is the per-function metadata the parser hands back alongside
// the Function itself.
type Details struct {
	Location token.Position
	Comments []Comment
	Map      *sourcemap.SourceMap
}
