package cmd

import (
	"fmt"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/flags"
	"github.com/kbasalt/ebbc/internal/irparser"
	"github.com/spf13/cobra"
)

var verifyFlagsIsaFlag string

var verifyFlagsCmd = &cobra.Command{
	Use:   "verify-flags FILE",
	Short: "check that no EBB ever needs two distinct CPU-flags values live at once",
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

		target, err := resolveTarget(tf, verifyFlagsIsaFlag)
		if err != nil {
			return err
		}

		for _, fr := range tf.Functions {
			if err := flags.New(fr.Func, target).Verify(); err != nil {
				if ce, ok := err.(*cerrors.Error); ok {
					fmt.Fprint(c.ErrOrStderr(), ce.Format(src))
				}
				return err
			}
		}
		fmt.Fprintln(c.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	verifyFlagsCmd.Flags().StringVar(&verifyFlagsIsaFlag, "isa", "", "ISA to target when the file names none or more than one")
	rootCmd.AddCommand(verifyFlagsCmd)
}
