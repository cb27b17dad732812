package irparser

import (
	"strings"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/token"
)

// parsePrelude consumes every test/set/isa command line ahead of the first
// function definition, implementing parse_isa_specs from spec section 4.1:
// `set` lines accumulate option flags; `isa` lines snapshot one ISA builder
// per recognized, built-in target name, merging in every flag seen so far.
// An unrecognized ISA name is a hard error; a recognized-but-unsupported one
// (riscv64, s390x) is silently skipped, per spec section 4.1 rule (e).
func (p *Parser) parsePrelude(tf *TestFile) error {
	flags := map[string]string{}

	// danglingSet holds the position of the most recent `set` line seen
	// since the last `isa` line, so that a `set` trailing every `isa` in
	// the prelude — one whose flags can never reach an ISA builder — can
	// be reported once the whole prelude has been consumed (spec section
	// 4.1 rule (c); ported from parse_isa_specs's last_set_loc).
	var danglingSet token.Position
	haveDanglingSet := false

	for p.isCommandStart() {
		switch {
		case p.atKeyword("test"):
			line, err := p.parseTestLine()
			if err != nil {
				return err
			}
			tf.Commands = append(tf.Commands, line)

		case p.atKeyword("set"):
			pos := p.cur.Pos
			key, val, err := p.parseSetLine()
			if err != nil {
				return err
			}
			flags[key] = val
			danglingSet, haveDanglingSet = pos, true

		case p.atKeyword("isa"):
			name, localFlags, err := p.parseIsaLine()
			if err != nil {
				return err
			}
			merged := make(map[string]string, len(flags)+len(localFlags))
			for k, v := range flags {
				merged[k] = v
			}
			for k, v := range localFlags {
				merged[k] = v
			}
			if p.registry.Unsupported(name) {
				continue // recognized but has no builder: silently skipped
			}
			if !p.registry.Recognized(name) {
				return p.errorf(cerrors.ErrReference, "unknown ISA %q", name)
			}
			built, err := p.registry.New(name, merged)
			if err != nil {
				return cerrors.New(cerrors.ErrReference, p.cur.Pos, "%s", err)
			}
			tf.IsaSpec.Isas = append(tf.IsaSpec.Isas, built)
			haveDanglingSet = false
		}
	}

	if len(tf.IsaSpec.Isas) > 0 && haveDanglingSet {
		return cerrors.New(cerrors.ErrSyntax, danglingSet, "dangling 'set' command after ISA specification has no effect")
	}

	tf.IsaSpec.Flags = flags
	return nil
}

func (p *Parser) parseTestLine() (string, error) {
	p.advance() // consume 'test'
	parts := []string{"test"}
	for !p.isCommandStart() && !p.isFunctionStart() && p.cur.Kind != token.EOF {
		parts = append(parts, p.cur.Text)
		p.advance()
	}
	return strings.Join(parts, " "), nil
}

func (p *Parser) parseSetLine() (key, val string, err error) {
	p.advance() // consume 'set'
	if p.cur.Kind != token.Identifier {
		return "", "", p.errorf(cerrors.ErrSyntax, "expected option name after 'set', found %s %q", p.cur.Kind, p.cur.Text)
	}
	key = p.cur.Text
	p.advance()
	val = "true"
	if p.cur.Kind == token.Equal {
		p.advance()
		val = p.cur.Text
		p.advance()
	}
	return key, val, nil
}

func (p *Parser) parseIsaLine() (name string, flags map[string]string, err error) {
	p.advance() // consume 'isa'
	if p.cur.Kind != token.Identifier {
		return "", nil, p.errorf(cerrors.ErrSyntax, "expected ISA name after 'isa', found %s %q", p.cur.Kind, p.cur.Text)
	}
	name = p.cur.Text
	p.advance()

	flags = map[string]string{}
	for p.cur.Kind == token.Identifier && !p.isCommandStart() && !p.isFunctionStart() {
		k := p.cur.Text
		p.advance()
		v := "true"
		if p.cur.Kind == token.Equal {
			p.advance()
			v = p.cur.Text
			p.advance()
		}
		flags[k] = v
	}
	return name, flags, nil
}
