// Package cli implements the prune command: solving instances, inspecting
// them and listing the stored history of runs.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions are the flags shared by every command.
type RootOptions struct {
	Verbose  bool
	Format   string // "text" or "json"
	Database string // history database; empty disables it
}

// ValidFormats lists the output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand returns the prune command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "prune solves combinatorial problems by constraint programming",
		Long: `prune reads QAP, TSP, job-shop, RCPSP and MAX-SAT instances and minimizes their
objective with a finite-domain constraint solver, optionally using large
neighborhood search. Runs and their improving solutions can be kept in a
SQLite history database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log search progress to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the SQLite history database")

	cmd.AddCommand(NewSolveCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	return cmd
}

func (o *RootOptions) formatter(w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: w}
}

// logger logs to w at debug level when verbose, and only warnings
// otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
