package cmd

import (
	"fmt"

	"github.com/kbasalt/ebbc/internal/irparser"
	"github.com/kbasalt/ebbc/internal/printer"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print FILE",
	Short: "parse a textual IR test file and print it back in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}
		tf, err := irparser.Parse(src)
		if err != nil {
			printParseError(c, src, err)
			return err
		}
		for _, fr := range tf.Functions {
			fmt.Fprint(c.OutOrStdout(), printer.Function(fr.Func))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}
