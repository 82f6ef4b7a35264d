// Package cmd provides the CLI commands for symdiff.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/njchilds90/symdiff"
	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	cfgFile  string
	logLevel string
	output   string

	cfg *config.Config
	log *slog.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "symdiff",
		Short: "Symbolic differentiation and simplification of expression trees",
		Long: `symdiff reads an expression tree in its JSON form, differentiates or
simplifies it, and prints the result as a debug rendering or as JSON.

Input is read from the file named by the last argument, or from stdin
when the argument is "-" or missing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "YAML config file (limits and logging)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "plain", "output format (plain|json)")

	cmd.AddCommand(newDiffCmd(opts))
	cmd.AddCommand(newSimplifyCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newDumpCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		reportError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	if o.output != "plain" && o.output != "json" {
		return errors.Errorf("unknown output format %q", o.output)
	}
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.Format == "json",
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = logger.With("command", cmd.Name())
	return nil
}

// readTree decodes the JSON tree named by args, or stdin.
func (o *rootOptions) readTree(cmd *cobra.Command, args []string) (symdiff.Expr, error) {
	var (
		data []byte
		err  error
		src  = "stdin"
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src = args[0]
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", src)
	}
	o.log.Debug("read input", "source", src, "bytes", len(data))

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "%s: invalid JSON", src)
	}
	e, err := symdiff.FromJSONDepth(m, o.cfg.Limits.MaxDepth)
	if err != nil {
		return nil, errors.Wrap(err, src)
	}
	return e, nil
}

// writeTree prints e in the selected output format.
func (o *rootOptions) writeTree(cmd *cobra.Command, e symdiff.Expr) error {
	w := cmd.OutOrStdout()
	if o.output == "json" {
		b, err := symdiff.MarshalExpr(e)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	_, err := fmt.Fprintln(w, e.String())
	return err
}

// reportError prints err with its kind and offending subexpression.
func reportError(w io.Writer, err error) {
	if kind := symdiff.KindOf(err); kind != "" {
		fmt.Fprintf(w, "Error [%s]: %v\n", kind, err)
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	if at := symdiff.OffendingExpr(err); at != nil {
		fmt.Fprintf(w, "  at: %s\n", at)
	}
}
