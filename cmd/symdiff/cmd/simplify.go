package cmd

import (
	"fmt"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/njchilds90/symdiff"
)

// newSimplifyCmd creates the simplify command.
func newSimplifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "simplify [file|-]",
		Short:   "Simplify an expression tree",
		Example: `  symdiff simplify tree.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.readTree(cmd, args)
			if err != nil {
				return err
			}
			s, err := symdiff.Simplify(e)
			if err != nil {
				return err
			}
			return root.writeTree(cmd, s)
		},
	}
}

// newValidateCmd creates the validate command.
func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check an expression tree",
		Long: `Check that a tree decodes, uses only known functions with the right
number of arguments, and has no missing operands. All problems are
reported at once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.readTree(cmd, args)
			if err != nil {
				return err
			}
			if root.output == "json" {
				return root.writeTree(cmd, e)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", e)
			return err
		},
	}
}

// newDumpCmd creates the dump command.
func newDumpCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file|-]",
		Short: "Print the decoded Go tree for debugging",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.readTree(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), litter.Options{StripPackageNames: true}.Sdump(e))
			return err
		},
	}
}
