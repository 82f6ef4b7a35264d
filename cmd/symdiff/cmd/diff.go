package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/njchilds90/symdiff"
)

type diffOptions struct {
	variable string
	order    int
	raw      bool
}

// newDiffCmd creates the diff command.
func newDiffCmd(root *rootOptions) *cobra.Command {
	opts := &diffOptions{}
	cmd := &cobra.Command{
		Use:   "diff [file|-]",
		Short: "Differentiate an expression tree",
		Long: `Differentiate an expression tree with respect to one variable.

The result is simplified after every pass unless --raw is given.`,
		Example: `  symdiff diff --var x tree.json
  symdiff diff --var t --order 2 -o json tree.json
  cat tree.json | symdiff diff --raw -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := root.readTree(cmd, args)
			if err != nil {
				return err
			}
			d, err := opts.run(e, root.cfg.Limits.MaxOrder)
			if err != nil {
				return err
			}
			root.log.Debug("differentiated", "var", opts.variable, "order", opts.order, "raw", opts.raw)
			return root.writeTree(cmd, d)
		},
	}
	cmd.Flags().StringVar(&opts.variable, "var", "x", "variable to differentiate with respect to")
	cmd.Flags().IntVarP(&opts.order, "order", "n", 1, "order of the derivative")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "skip simplification")
	return cmd
}

func (o *diffOptions) run(e symdiff.Expr, maxOrder int) (symdiff.Expr, error) {
	if o.variable == "" {
		return nil, errors.New("--var must not be empty")
	}
	if o.order < 0 || o.order > maxOrder {
		return nil, errors.Errorf("--order must be between 0 and %d, got %d", maxOrder, o.order)
	}
	if !o.raw {
		return symdiff.DiffN(e, o.variable, o.order)
	}
	d := symdiff.Copy(e)
	for i := 0; i < o.order; i++ {
		var err error
		if d, err = symdiff.Diff(d, o.variable); err != nil {
			return nil, err
		}
	}
	return d, nil
}
