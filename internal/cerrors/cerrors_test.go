package cerrors

import (
	"strings"
	"testing"

	"github.com/kbasalt/ebbc/internal/token"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrSyntax, token.Position{Line: 3, Column: 5}, "expected %s, found %s", "value", "comma")
	want := "expected value, found comma at 3:5"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Code != ErrSyntax {
		t.Errorf("Code = %q, want %q", err.Code, ErrSyntax)
	}
}

func TestErrorFormatPointsAtColumn(t *testing.T) {
	src := "ebb0(v0: i32):\n    v1 = iadd v0, v2\n"
	err := New(ErrReference, token.Position{Line: 2, Column: 19}, "reference to undefined value v2")

	out := err.Format(src)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Format produced %d lines, want 3:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "iadd v0, v2") {
		t.Errorf("snippet line %q does not contain the source line", lines[1])
	}
	caretCol := strings.Index(lines[2], "^")
	if caretCol != strings.Index(lines[1], "v2") {
		t.Errorf("caret at column %d, want it under %q (column %d)", caretCol, "v2", strings.Index(lines[1], "v2"))
	}
}

func TestErrorFormatOutOfRangeLine(t *testing.T) {
	err := New(ErrSyntax, token.Position{Line: 99, Column: 1}, "boom")
	out := err.Format("only one line\n")
	if strings.Contains(out, "|") {
		t.Errorf("Format should not render a snippet for an out-of-range line, got %q", out)
	}
}
