package irparser

import (
	"strings"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/ir"
	"github.com/kbasalt/ebbc/internal/token"
	"github.com/kbasalt/ebbc/internal/types"
)

// parseSignature parses `(PARAM, ...) [-> (RETURN, ...)] [callconv]`.
func (p *Parser) parseSignature() (ir.Signature, error) {
	var sig ir.Signature

	if _, err := p.expect(token.LPar); err != nil {
		return sig, err
	}
	params, err := p.parseAbiParamList()
	if err != nil {
		return sig, err
	}
	if _, err := p.expect(token.RPar); err != nil {
		return sig, err
	}
	sig.Params = params

	if p.cur.Kind == token.Arrow {
		p.advance()
		if _, err := p.expect(token.LPar); err != nil {
			return sig, err
		}
		returns, err := p.parseAbiParamList()
		if err != nil {
			return sig, err
		}
		if _, err := p.expect(token.RPar); err != nil {
			return sig, err
		}
		sig.Returns = returns
	}

	if p.cur.Kind == token.Identifier {
		cc, ok := ir.LookupCallConv(p.cur.Text)
		if !ok {
			return sig, p.errorf(cerrors.ErrSyntax, "unknown calling convention %q", p.cur.Text)
		}
		sig.CallConv = cc
		p.advance()
	}

	return sig, nil
}

func (p *Parser) parseAbiParamList() ([]ir.AbiParam, error) {
	var params []ir.AbiParam
	if p.cur.Kind == token.RPar {
		return params, nil
	}
	for {
		param, err := p.parseAbiParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.cur.Kind != token.Comma {
			break
		}
		p.advance()
	}
	return params, nil
}

func (p *Parser) parseAbiParam() (ir.AbiParam, error) {
	var param ir.AbiParam
	if p.cur.Kind != token.Type {
		return param, p.errorf(cerrors.ErrSyntax, "expected a value type, found %s %q", p.cur.Kind, p.cur.Text)
	}
	typ, ok := types.ByName(p.cur.Text)
	if !ok {
		return param, p.errorf(cerrors.ErrSyntax, "unrecognized type spelling %q", p.cur.Text)
	}
	param.Type = typ
	p.advance()

	for p.cur.Kind == token.Identifier {
		switch p.cur.Text {
		case "sext":
			param.Extension = ir.ExtSext
		case "uext":
			param.Extension = ir.ExtUext
		case "sret":
			param.Purpose = ir.PurposeStructReturn
		case "vmctx":
			param.Purpose = ir.PurposeVMContext
		default:
			return param, nil
		}
		p.advance()
	}
	return param, nil
}

// externalNameFromToken turns a lexed %-prefixed Name token (or a UserRef
// token of the form uNS:IDX) into an ir.ExternalName.
func externalNameFromToken(t token.Token) ir.ExternalName {
	if t.Kind == token.UserRef {
		rest := strings.TrimPrefix(t.Text, "u")
		parts := strings.SplitN(rest, ":", 2)
		var ns, idx uint32
		if len(parts) == 2 {
			ns = parseUintOr0(parts[0])
			idx = parseUintOr0(parts[1])
		}
		return ir.UserExternalName(ns, idx)
	}
	return ir.TestExternalName(strings.TrimPrefix(t.Text, "%"))
}

func parseUintOr0(s string) uint32 {
	var n uint32
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + uint32(r-'0')
	}
	return n
}
