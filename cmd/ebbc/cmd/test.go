package cmd

import (
	"fmt"
	"strings"

	"github.com/kbasalt/ebbc/internal/cerrors"
	"github.com/kbasalt/ebbc/internal/flags"
	"github.com/kbasalt/ebbc/internal/irparser"
	"github.com/kbasalt/ebbc/internal/isa"
	"github.com/kbasalt/ebbc/internal/stackmap"
	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test FILE",
	Short: "run every `test ...` command a file's prelude names, against every function in it",
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
		target, err := resolveTarget(tf, "")
		if err != nil {
			return err
		}

		for _, command := range tf.Commands {
			if err := runCommand(c, src, tf, target, command); err != nil {
				return err
			}
		}
		fmt.Fprintln(c.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runCommand(c *cobra.Command, src string, tf *irparser.TestFile, target *isa.ISA, command string) error {
	switch {
	case strings.Contains(command, "verifier") || strings.Contains(command, "flags"):
		for _, fr := range tf.Functions {
			if err := flags.New(fr.Func, target).Verify(); err != nil {
				reportTestError(c, src, err)
				return err
			}
		}
	case strings.Contains(command, "stackmap"):
		for _, fr := range tf.Functions {
			stackmap.New(fr.Func, target).Run()
		}
	}
	return nil
}

func reportTestError(c *cobra.Command, src string, err error) {
	if ce, ok := err.(*cerrors.Error); ok {
		fmt.Fprint(c.ErrOrStderr(), ce.Format(src))
		return
	}
	fmt.Fprintln(c.ErrOrStderr(), err)
}
