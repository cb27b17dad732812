package ir

import "fmt"

// These helpers render handles in the canonical kind-prefixed decimal form
// spec section 6 specifies ("v7", "ebb3", "ss1", "gv2", "heap0", "sig4",
// "fn5", "jt6"). Only ssName has a caller (ValueLoc.String); the printer
// formats handles itself.
func vName(v Value) string         { return fmt.Sprintf("v%d", v) }
func ebbName(e Ebb) string         { return fmt.Sprintf("ebb%d", e) }
func ssName(s StackSlot) string    { return fmt.Sprintf("ss%d", s) }
func gvName(g GlobalVar) string    { return fmt.Sprintf("gv%d", g) }
func heapName(h Heap) string       { return fmt.Sprintf("heap%d", h) }
func sigName(s SigRef) string      { return fmt.Sprintf("sig%d", s) }
func fnName(f FuncRef) string      { return fmt.Sprintf("fn%d", f) }
func jtName(j JumpTable) string    { return fmt.Sprintf("jt%d", j) }
