package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cespare/prune/internal/store"
)

// HistoryOptions are the flags of the history command.
type HistoryOptions struct {
	*RootOptions
	Kind  string
	Limit int
	RunID string // run whose solutions to list
}

// NewHistoryCommand returns the history command.
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "history --db FILE [INSTANCE]",
		Short: "List stored runs",
		Long: `History lists the runs stored in the database, most recent first. With
an instance file (and --kind), only the runs on that instance are shown.
With --run, the improving solutions of one run are listed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "format of the instance argument")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "list the solutions of this run")
	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, w io.Writer, args []string) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "history needs --db")
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()
	out := opts.formatter(w)

	if opts.RunID != "" {
		sols, err := st.Solutions(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read solutions", err)
		}
		return out.Success(sols, func(w io.Writer) error { return writeSolutions(w, sols) })
	}

	var hash string
	if len(args) == 1 {
		_, data, err := readInstance(opts.Kind, args[0])
		if err != nil {
			return err
		}
		hash = store.InstanceHash(data)
	}
	runs, err := st.ListRuns(ctx, hash, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	return out.Success(runs, func(w io.Writer) error { return writeRuns(w, runs) })
}

func writeRuns(w io.Writer, runs []store.Run) error {
	p := message.NewPrinter(language.English)
	if len(runs) == 0 {
		_, err := p.Fprintln(w, "no runs")
		return err
	}
	for _, r := range runs {
		obj := "-"
		switch {
		case r.Found && r.Optimal:
			obj = p.Sprintf("%d*", r.Objective)
		case r.Found:
			obj = p.Sprintf("%d", r.Objective)
		case !r.Finished:
			obj = "running"
		}
		_, err := p.Fprintf(w, "%s  %s  %-8s %10s  %12d nodes  %8v  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Kind, obj,
			r.Nodes, r.Elapsed, r.Instance)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeSolutions(w io.Writer, sols []store.Solution) error {
	p := message.NewPrinter(language.English)
	for _, s := range sols {
		if _, err := p.Fprintf(w, "restart %4d  objective %10d  %v\n", s.Restart, s.Objective, s.Values); err != nil {
			return err
		}
	}
	return nil
}
