// Package models builds prune models for the instance formats of package
// instance and drives their optimization, optionally with large
// neighborhood search.
package models

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cespare/prune"
	"github.com/cespare/prune/internal/config"
	"github.com/cespare/prune/internal/instance"
)

// Options control a solve.
type Options struct {
	Config *config.Config // nil means config.Default()
	Logger *slog.Logger   // nil discards
	// Incumbent, when it has one value per decision variable, is a
	// previously found solution. The search first tries to rebuild it so
	// that only better solutions are looked for afterwards.
	Incumbent []int
}

// An Improvement is one improving solution found during a solve.
type Improvement struct {
	Objective int   `json:"objective"`
	Restart   int   `json:"restart"` // 0 for the initial search
	Values    []int `json:"-"`
}

// Result is the outcome of a solve.
type Result struct {
	Kind      instance.Kind    `json:"kind"`
	Found     bool             `json:"found"`
	Objective int              `json:"objective"`
	Values    []int            `json:"values"`
	Optimal   bool             `json:"optimal"`
	Stats     prune.Statistics `json:"stats"`
	Restarts  int              `json:"restarts"`
	Trace     []Improvement    `json:"trace"`
	Elapsed   time.Duration    `json:"elapsed"`
}

// model is a built CP model ready to be optimized.
type model struct {
	kind      instance.Kind
	s         *prune.Solver
	decision  []prune.IntVar
	objective prune.IntVar
	// heuristic is the model's own branching.
	heuristic prune.Branching
}

// Solve builds the model of inst, which must be one of the instance types,
// and minimizes its objective.
func Solve(ctx context.Context, inst any, opts Options) (*Result, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := prune.NewSolver(prune.WithLogger(opts.Logger))
	var (
		m   *model
		err error
	)
	switch inst := inst.(type) {
	case *instance.QAP:
		m, err = buildQAP(s, inst)
	case *instance.TSP:
		m, err = buildTSP(s, inst)
	case *instance.JobShop:
		m, err = buildJobShop(s, inst)
	case *instance.RCPSP:
		m, err = buildRCPSP(s, inst)
	case *instance.CNF:
		m, err = buildMaxSAT(s, inst)
	default:
		return nil, fmt.Errorf("unsupported instance type %T", inst)
	}
	if err != nil {
		if prune.IsInconsistency(err) {
			// The root propagation already proves infeasibility.
			return &Result{Kind: kindOf(inst), Optimal: true}, nil
		}
		return nil, fmt.Errorf("building %s model: %w", kindOf(inst), err)
	}
	return m.solve(ctx, opts)
}

func kindOf(inst any) instance.Kind {
	switch inst.(type) {
	case *instance.QAP:
		return instance.KindQAP
	case *instance.TSP:
		return instance.KindTSP
	case *instance.JobShop:
		return instance.KindJobShop
	case *instance.RCPSP:
		return instance.KindRCPSP
	case *instance.CNF:
		return instance.KindMaxSAT
	}
	return ""
}

// branching returns the branching selected by cfg, bounded by its
// discrepancy limit.
func (m *model) branching(cfg *config.Config) prune.Branching {
	var b prune.Branching
	switch cfg.Branching {
	case config.BranchingFirstFail:
		b = prune.FirstFail(m.decision...)
	case config.BranchingConflictOrdering:
		b = prune.ConflictOrdering(prune.FirstUnbound(m.decision...), prune.MinValue)
	case config.BranchingLastConflict:
		b = prune.LastConflict(prune.SmallestDomain(m.decision...), prune.MinValue)
	default:
		b = m.heuristic
	}
	// The objective is functionally defined by the decisions, but binding
	// it explicitly keeps solutions complete whatever the propagation
	// strength.
	b = prune.And(b, prune.FirstFail(m.objective))
	if cfg.MaxDiscrepancy > 0 {
		b = prune.LimitedDiscrepancy(m.s, b, cfg.MaxDiscrepancy)
	}
	return b
}

func limitFromConfig(ctx context.Context, l config.Limits) prune.Limit {
	limits := []prune.Limit{func(prune.Statistics) bool { return ctx.Err() != nil }}
	if l.Solutions > 0 {
		limits = append(limits, prune.SolutionLimit(l.Solutions))
	}
	if l.Failures > 0 {
		limits = append(limits, prune.FailureLimit(l.Failures))
	}
	if l.Nodes > 0 {
		limits = append(limits, prune.NodeLimit(l.Nodes))
	}
	if l.Time > 0 {
		limits = append(limits, prune.TimeLimit(l.Time))
	}
	return prune.AnyLimit(limits...)
}

func (m *model) solve(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	log := opts.Logger
	start := time.Now()
	res := &Result{Kind: m.kind}
	obj := m.s.Minimize(m.objective)
	search := prune.NewDFSearch(m.s, m.branching(cfg))

	restart := 0
	var total prune.Statistics
	search.OnSolution(func() {
		res.Found = true
		res.Objective = m.objective.Min()
		res.Values = values(m.decision)
		res.Trace = append(res.Trace, Improvement{
			Objective: res.Objective,
			Restart:   restart,
			Values:    res.Values,
		})
		log.Info("solution", "kind", m.kind, "objective", res.Objective, "restart", restart)
	})
	globalLimit := limitFromConfig(ctx, cfg.Limits)
	accumulate := func(st prune.Statistics) {
		total.Solutions += st.Solutions
		total.Failures += st.Failures
		total.Nodes += st.Nodes
	}
	// Limits apply to the whole solve, not to each restart.
	limit := func(st prune.Statistics) bool {
		sum := total
		sum.Solutions += st.Solutions
		sum.Failures += st.Failures
		sum.Nodes += st.Nodes
		return globalLimit(sum)
	}

	if len(opts.Incumbent) == len(m.decision) {
		st, err := search.OptimizeSubjectTo(obj, limit, m.pin(opts.Incumbent, func() bool { return true }))
		if err != nil {
			return nil, err
		}
		accumulate(st)
		log.Info("incumbent replayed", "found", res.Found)
	}

	lns := cfg.LNS
	if lns.Restarts == 0 {
		st, err := search.Optimize(obj, limit)
		if err != nil {
			return nil, err
		}
		accumulate(st)
		total.Completed = st.Completed
	} else {
		if !res.Found {
			st, err := search.Optimize(obj, prune.AnyLimit(limit, prune.SolutionLimit(1)))
			if err != nil {
				return nil, err
			}
			accumulate(st)
			if st.Completed && !res.Found {
				total.Completed = true
			}
		}
		rng := rand.New(rand.NewSource(lns.Seed))
		for restart = 1; res.Found && restart <= lns.Restarts; restart++ {
			if limit(prune.Statistics{}) {
				break
			}
			incumbent := res.Values
			pinned := func() bool { return rng.Intn(100) < lns.FragmentPercent }
			st, err := search.OptimizeSubjectTo(obj,
				prune.AnyLimit(limit, prune.FailureLimit(lns.FailureLimit)),
				m.pin(incumbent, pinned))
			if err != nil {
				return nil, err
			}
			accumulate(st)
			res.Restarts = restart
			log.Debug("restart", "n", restart, "stats", st.String())
		}
	}
	res.Stats = total
	// A discrepancy bound may cut the tree below the root, so exhausting it
	// proves nothing unless the root alone settled the instance.
	cut := cfg.MaxDiscrepancy > 0 && total.Nodes > 0
	res.Optimal = total.Completed && lns.Restarts == 0 && !cut
	res.Elapsed = time.Since(start)
	return res, nil
}

// pin returns a setup pinning each decision variable for which choose
// returns true to its value in incumbent.
func (m *model) pin(incumbent []int, choose func() bool) func() error {
	return func() error {
		for i, x := range m.decision {
			if choose() {
				if err := x.Assign(incumbent[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func values(xs []prune.IntVar) []int {
	vs := make([]int, len(xs))
	for i, x := range xs {
		vs[i] = x.Min()
	}
	return vs
}
