// Command ebbc is a thin driver over the parser, stackmap inserter, and
// flags verifier: a textual-IR test harness in the spirit of spec
// section 6's run-file format, not a code generator.
package main

import (
	"os"

	"github.com/kbasalt/ebbc/cmd/ebbc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
