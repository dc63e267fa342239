package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cespare/prune/internal/config"
	"github.com/cespare/prune/internal/models"
	"github.com/cespare/prune/internal/store"
)

// SolveOptions are the flags of the solve command. Search settings given
// as flags override those of the config file.
type SolveOptions struct {
	*RootOptions
	Kind       string
	ConfigPath string
	Resume     bool

	timeLimit time.Duration
	nodes     int
	failures  int
	solutions int
	restarts  int
	fragment  int
	seed      int64
	lds       int
	branching string
}

// NewSolveCommand returns the solve command.
func NewSolveCommand(root *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "solve --kind KIND FILE",
		Short: "Minimize the objective of an instance",
		Long: `Solve builds the constraint model of an instance and minimizes its
objective: the weighted distance for QAP, the tour length for TSP, the
makespan for job-shop and RCPSP, and the number of violated clauses for
MAX-SAT over a DIMACS CNF formula.

The exit status is 1 when no solution was found and 2 on usage errors.

Examples:
  prune solve --kind tsp tours/berlin12.txt
  prune solve --kind jobshop --restarts 200 --time 30s ft10.txt
  prune solve --kind rcpsp --db runs.db --resume j301_1.rcp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Kind, "kind", "", "instance format (qap|tsp|jobshop|rcpsp|maxsat)")
	_ = cmd.MarkFlagRequired("kind")
	f.StringVar(&opts.ConfigPath, "config", "", "YAML search configuration")
	f.BoolVar(&opts.Resume, "resume", false, "start from the best solution stored in --db")
	f.DurationVar(&opts.timeLimit, "time", 0, "time limit")
	f.IntVar(&opts.nodes, "nodes", 0, "node limit")
	f.IntVar(&opts.failures, "failures", 0, "failure limit")
	f.IntVar(&opts.solutions, "solutions", 0, "solution limit")
	f.IntVar(&opts.restarts, "restarts", 0, "LNS restarts (0 disables LNS)")
	f.IntVar(&opts.fragment, "fragment", 0, "LNS: percent of variables pinned at each restart")
	f.Int64Var(&opts.seed, "seed", 0, "LNS random seed")
	f.IntVar(&opts.lds, "lds", 0, "discrepancy bound (0 for none)")
	f.StringVar(&opts.branching, "branching", "",
		"branching heuristic (default|first-fail|conflict-ordering|last-conflict)")
	return cmd
}

// searchConfig loads the config file, if any, and applies the flags the
// user set.
func (o *SolveOptions) searchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath); err != nil {
			return nil, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("time") {
		cfg.Limits.Time = o.timeLimit
	}
	if changed("nodes") {
		cfg.Limits.Nodes = o.nodes
	}
	if changed("failures") {
		cfg.Limits.Failures = o.failures
	}
	if changed("solutions") {
		cfg.Limits.Solutions = o.solutions
	}
	if changed("restarts") {
		cfg.LNS.Restarts = o.restarts
	}
	if changed("fragment") {
		cfg.LNS.FragmentPercent = o.fragment
	}
	if changed("seed") {
		cfg.LNS.Seed = o.seed
	}
	if changed("lds") {
		cfg.MaxDiscrepancy = o.lds
	}
	if changed("branching") {
		cfg.Branching = o.branching
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search settings: %w", err)
	}
	return cfg, nil
}

func runSolve(cmd *cobra.Command, opts *SolveOptions, path string) error {
	out := opts.formatter(cmd.OutOrStdout())
	log := opts.logger(cmd.ErrOrStderr())

	inst, data, err := readInstance(opts.Kind, path)
	if err != nil {
		return err
	}
	cfg, err := opts.searchConfig(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "bad configuration", err)
	}
	if opts.Resume && opts.Database == "" {
		return NewExitError(ExitCommandError, "--resume needs --db")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var (
		st  *store.Store
		run *store.Run
	)
	solveOpts := models.Options{Config: cfg, Logger: log}
	if opts.Database != "" {
		if st, err = store.Open(opts.Database); err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		hash := store.InstanceHash(data)
		if opts.Resume {
			best, err := st.BestSolution(ctx, hash)
			switch {
			case errors.Is(err, store.ErrNotFound):
				log.Warn("no stored solution to resume from", "instance", path)
			case err != nil:
				return WrapExitError(ExitCommandError, "failed to read history", err)
			default:
				log.Info("resuming", "run", best.RunID, "objective", best.Objective)
				solveOpts.Incumbent = best.Values
			}
		}
		if run, err = st.CreateRun(ctx, opts.Kind, path, hash); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	res, err := models.Solve(ctx, inst, solveOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "solve failed", err)
	}
	log.Debug("solve finished", "stats", res.Stats.String(), "elapsed", res.Elapsed)

	if st != nil {
		if err := recordRun(context.WithoutCancel(ctx), st, run, res); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
	}

	if err := out.Success(res, func(w io.Writer) error { return writeResult(w, res) }); err != nil {
		return err
	}
	if !res.Found {
		if res.Optimal {
			return NewExitError(ExitFailure, "instance is infeasible")
		}
		return NewExitError(ExitFailure, "no solution found within the limits")
	}
	return nil
}

func recordRun(ctx context.Context, st *store.Store, run *store.Run, res *models.Result) error {
	for _, imp := range res.Trace {
		sol := store.Solution{
			RunID:     run.ID,
			Objective: imp.Objective,
			Restart:   imp.Restart,
			Values:    imp.Values,
		}
		if err := st.AddSolution(ctx, sol); err != nil {
			return err
		}
	}
	run.Found = res.Found
	run.Objective = res.Objective
	run.Optimal = res.Optimal
	run.Nodes = res.Stats.Nodes
	run.Failures = res.Stats.Failures
	run.Restarts = res.Restarts
	run.Elapsed = res.Elapsed
	return st.FinishRun(ctx, run)
}

func writeResult(w io.Writer, res *models.Result) error {
	p := message.NewPrinter(language.English)
	switch {
	case !res.Found && res.Optimal:
		p.Fprintf(w, "%s: infeasible\n", res.Kind)
	case !res.Found:
		p.Fprintf(w, "%s: no solution\n", res.Kind)
	default:
		status := "best found"
		if res.Optimal {
			status = "optimal"
		}
		p.Fprintf(w, "%s: objective %d (%s)\n", res.Kind, res.Objective, status)
		vals := make([]string, len(res.Values))
		for i, v := range res.Values {
			vals[i] = fmt.Sprint(v)
		}
		p.Fprintf(w, "values: %s\n", strings.Join(vals, " "))
	}
	_, err := p.Fprintf(w, "nodes %d, failures %d, solutions %d, restarts %d, %v\n",
		res.Stats.Nodes, res.Stats.Failures, res.Stats.Solutions, res.Restarts,
		res.Elapsed.Round(time.Millisecond))
	return err
}
