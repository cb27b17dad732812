package irparser

import (
	"fmt"
	"strconv"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/token"
)

func (p *Parser) expectUint(what string) (uint32, error) {
	if p.cur.Kind != token.Integer {
		return 0, p.errorf(cerrors.ErrSyntax, "expected %s, found %s %q", what, p.cur.Kind, p.cur.Text)
	}
	n, err := strconv.ParseUint(p.cur.Text, 10, 32)
	if err != nil {
		return 0, p.errorf(cerrors.ErrSyntax, "invalid %s %q", what, p.cur.Text)
	}
	p.advance()
	return uint32(n), nil
}

func (p *Parser) expectUint64(what string) (uint64, error) {
	if p.cur.Kind != token.Integer {
		return 0, p.errorf(cerrors.ErrSyntax, "expected %s, found %s %q", what, p.cur.Kind, p.cur.Text)
	}
	n, err := strconv.ParseUint(p.cur.Text, 10, 64)
	if err != nil {
		return 0, p.errorf(cerrors.ErrSyntax, "invalid %s %q", what, p.cur.Text)
	}
	p.advance()
	return n, nil
}

func (p *Parser) expectInt(what string) (int32, error) {
	neg := false
	if p.cur.Kind == token.Minus {
		neg = true
		p.advance()
	}
	if p.cur.Kind != token.Integer {
		return 0, p.errorf(cerrors.ErrSyntax, "expected %s, found %s %q", what, p.cur.Kind, p.cur.Text)
	}
	n, err := strconv.ParseInt(p.cur.Text, 10, 32)
	if err != nil {
		return 0, p.errorf(cerrors.ErrSyntax, "invalid %s %q", what, p.cur.Text)
	}
	p.advance()
	if neg {
		return int32(-n), nil
	}
	return int32(n), nil
}

func ssLabel(h uint32) string   { return fmt.Sprintf("ss%d", h) }
func gvLabel(h uint32) string   { return fmt.Sprintf("gv%d", h) }
func heapLabel(h uint32) string { return fmt.Sprintf("heap%d", h) }
func sigLabel(h uint32) string  { return fmt.Sprintf("sig%d", h) }
func fnLabel(h uint32) string   { return fmt.Sprintf("fn%d", h) }
func jtLabel(h uint32) string   { return fmt.Sprintf("jt%d", h) }
func ebbLabel(h uint32) string  { return fmt.Sprintf("ebb%d", h) }
func vLabel(h uint32) string    { return fmt.Sprintf("v%d", h) }
