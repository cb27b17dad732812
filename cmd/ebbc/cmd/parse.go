package cmd

import (
	"fmt"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/irparser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "parse a textual IR test file and report success or the first diagnostic",
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
		fmt.Fprintf(c.OutOrStdout(), "ok: %d function(s), %d command(s)\n", len(tf.Functions), len(tf.Commands))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func printParseError(c *cobra.Command, src string, err error) {
	if ce, ok := err.(*cerrors.Error); ok {
		fmt.Fprint(c.ErrOrStderr(), ce.Format(src))
		return
	}
	fmt.Fprintln(c.ErrOrStderr(), err)
}
