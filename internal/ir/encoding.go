package ir

// Encoding is a resolved (recipe, payload) pair: spec section 4.1's
// encoding bracket `[RECIPE HEX16 ...]`, and the GLOSSARY's "Encoding".
type Encoding struct {
	Recipe  string
	Bits    uint16
	Present bool // false for "[-]" (no encoding, only result locations)
}
