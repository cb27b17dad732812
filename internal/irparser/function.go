package irparser

import (
	"fmt"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/sourcemap"
	"github.com/kbasalt/ebbc/internal/token"
)

// parseFunction parses one `function NAME(...) -> (...) [callconv] { ... }`
// definition: spec section 4.1's top-level production.
func (p *Parser) parseFunction() (FunctionResult, error) {
	var fr FunctionResult
	loc := p.cur.Pos

	p.advance() // consume 'function'

	if p.cur.Kind != token.Name && p.cur.Kind != token.UserRef {
		return fr, p.errorf(cerrors.ErrSyntax, "expected a function name, found %s %q", p.cur.Kind, p.cur.Text)
	}
	name := externalNameFromToken(p.cur)
	p.advance()

	sig, err := p.parseSignature()
	if err != nil {
		return fr, err
	}

	fn := ir.NewFunction(name, sig)
	sm := sourcemap.New()
	p.fn, p.sm = fn, sm

	if _, err := p.expect(token.LBrace); err != nil {
		return fr, err
	}

	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.Ebb {
			if err := p.parseEbb(); err != nil {
				return fr, err
			}
			continue
		}
		if err := p.parsePreambleDecl(); err != nil {
			return fr, err
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return fr, err
	}

	if cycle, found := fn.DFG.ResolveAliases(); found {
		return fr, cerrors.New(cerrors.ErrAlias, loc, "alias cycle involving v%d", cycle)
	}
	if err := p.checkUndefinedOperands(fn); err != nil {
		return fr, err
	}

	fnName := name.TestName
	if name.IsUser {
		fnName = fnNameForUser(name)
	}
	fr.Func = fn
	fr.Details = Details{
		Location: loc,
		Comments: p.claimComments(fnName),
		Map:      sm,
	}
	return fr, nil
}

func fnNameForUser(name ir.ExternalName) string {
	return fmt.Sprintf("u%d:%d", name.Namespace, name.Index)
}

// checkUndefinedOperands walks every instruction's operand and branch
// argument list and reports the first value referenced but never defined
// (spec section 7, "reference to an undefined value").
func (p *Parser) checkUndefinedOperands(fn *ir.Function) error {
	for _, ebb := range fn.Layout.Ebbs() {
		for _, inst := range fn.Layout.EbbInsts(ebb) {
			data := fn.DFG.Inst(inst)
			for _, v := range data.Args {
				if !fn.DFG.ValueIsValid(v) {
					return cerrors.New(cerrors.ErrReference, token.Position{}, "reference to undefined value v%d", v)
				}
			}
			for _, dest := range data.Destinations {
				if !fn.Layout.EbbIsInLayout(dest.Ebb) {
					return cerrors.New(cerrors.ErrReference, token.Position{}, "reference to undefined ebb%d", dest.Ebb)
				}
				for _, v := range dest.Args {
					if !fn.DFG.ValueIsValid(v) {
						return cerrors.New(cerrors.ErrReference, token.Position{}, "reference to undefined value v%d", v)
					}
				}
			}
		}
	}
	return nil
}
