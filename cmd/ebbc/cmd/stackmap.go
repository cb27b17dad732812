package cmd

import (
	"fmt"

	"github.com/kbasalt/ebbc/internal/irparser"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/printer"
	"github.com/kbasalt/ebbc/internal/stackmap"
	"github.com/spf13/cobra"
)

var stackmapIsaFlag string

var stackmapCmd = &cobra.Command{
	Use:   "stackmap FILE",
	Short: "insert stackmap pseudo-instructions and print the resulting functions",
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

		target, err := resolveTarget(tf, stackmapIsaFlag)
		if err != nil {
			return err
		}

		for _, fr := range tf.Functions {
			n := stackmap.New(fr.Func, target).Run()
			fmt.Fprintf(c.ErrOrStderr(), "%s: inserted %d stackmap(s)\n", fr.Func.Name.TestName, n)
			fmt.Fprint(c.OutOrStdout(), printer.Function(fr.Func))
		}
		return nil
	},
}

func init() {
	stackmapCmd.Flags().StringVar(&stackmapIsaFlag, "isa", "", "ISA to target when the file names none or more than one")
	rootCmd.AddCommand(stackmapCmd)
}

func resolveTarget(tf *irparser.TestFile, flagIsa string) (*isa.ISA, error) {
	if tf.IsaSpec.HasUniqueIsa() {
		return tf.IsaSpec.UniqueIsa(), nil
	}
	if flagIsa == "" {
		return nil, nil
	}
	return isa.NewRegistry().New(flagIsa, tf.IsaSpec.Flags)
}
