package prune

import (
	"errors"
	"fmt"
	"time"
)

// Statistics describes one run of a search.
type Statistics struct {
	Solutions int
	Failures  int
	Nodes     int
	// Completed is set when the whole search tree was explored, that is,
	// when no limit stopped the search.
	Completed bool
}

func (s Statistics) String() string {
	return fmt.Sprintf("nodes=%d failures=%d solutions=%d completed=%t",
		s.Nodes, s.Failures, s.Solutions, s.Completed)
}

// A Limit stops a search when it returns true. It is evaluated before every
// search step.
type Limit func(Statistics) bool

// SolutionLimit stops the search after n solutions.
func SolutionLimit(n int) Limit {
	return func(s Statistics) bool { return s.Solutions >= n }
}

// FailureLimit stops the search after n failures.
func FailureLimit(n int) Limit {
	return func(s Statistics) bool { return s.Failures >= n }
}

// NodeLimit stops the search after n nodes.
func NodeLimit(n int) Limit {
	return func(s Statistics) bool { return s.Nodes >= n }
}

// TimeLimit stops the search once d has elapsed since TimeLimit was called.
func TimeLimit(d time.Duration) Limit {
	deadline := time.Now().Add(d)
	return func(Statistics) bool { return !time.Now().Before(deadline) }
}

// AnyLimit stops the search as soon as one of limits does. Nil limits are
// ignored.
func AnyLimit(limits ...Limit) Limit {
	return func(s Statistics) bool {
		for _, l := range limits {
			if l != nil && l(s) {
				return true
			}
		}
		return false
	}
}

var errStopSearch = errors.New("prune: search stopped by limit")

type stepKind uint8

const (
	stepSave stepKind = iota
	stepTry
	stepRestore
)

type step struct {
	kind stepKind
	alt  Alternative
}

// DFSearch is a depth-first search driven by a Branching. Only the current
// path exists at any time: the open alternatives are kept on an explicit
// stack interleaved with the trail save/restore steps that bracket them.
type DFSearch struct {
	s         *Solver
	branching Branching

	onSolution []func()
	onFailure  []func()
	hooks      []func() error // run after onSolution; used by Optimize
}

// NewDFSearch returns a search over s using b to generate alternatives.
func NewDFSearch(s *Solver, b Branching) *DFSearch {
	return &DFSearch{s: s, branching: b}
}

// OnSolution registers f to run at each solution.
func (d *DFSearch) OnSolution(f func()) { d.onSolution = append(d.onSolution, f) }

// OnFailure registers f to run at each failed alternative.
func (d *DFSearch) OnFailure(f func()) { d.onFailure = append(d.onFailure, f) }

// Solve explores the search tree until it is exhausted or limit (which may be
// nil) returns true. All changes made during the search are undone before
// Solve returns. The error is non-nil only when an alternative or a listener
// fails with something other than ErrInconsistency.
func (d *DFSearch) Solve(limit Limit) (Statistics, error) {
	var stats Statistics
	err := d.solve(&stats, limit)
	return stats, err
}

// SolveSubjectTo is like Solve but first runs setup, typically posting extra
// constraints. Their effect is undone when the search ends. An inconsistent
// setup counts as a single failure.
func (d *DFSearch) SolveSubjectTo(limit Limit, setup func() error) (Statistics, error) {
	var stats Statistics
	err := d.s.trail.WithNewState(func() error {
		if err := d.setup(setup); err != nil {
			if !IsInconsistency(err) {
				return err
			}
			stats.Failures++
			stats.Completed = true
			d.notifyFailure()
			return nil
		}
		return d.solve(&stats, limit)
	})
	return stats, err
}

// Optimize is like Solve but tightens obj at each solution, so that every
// solution found improves on the previous one.
func (d *DFSearch) Optimize(obj Objective, limit Limit) (Statistics, error) {
	return d.OptimizeSubjectTo(obj, limit, nil)
}

// OptimizeSubjectTo combines Optimize and SolveSubjectTo. It is the building
// block of large neighborhood search: setup pins part of the variables to an
// incumbent and the search repairs the rest. The objective bound survives
// the call.
func (d *DFSearch) OptimizeSubjectTo(obj Objective, limit Limit, setup func() error) (Statistics, error) {
	n := len(d.hooks)
	d.hooks = append(d.hooks, obj.Tighten)
	defer func() { d.hooks = d.hooks[:n] }()
	if setup == nil {
		return d.Solve(limit)
	}
	return d.SolveSubjectTo(limit, setup)
}

func (d *DFSearch) setup(f func() error) error {
	if err := f(); err != nil {
		d.s.clearQueue()
		return err
	}
	return d.s.FixPoint()
}

func (d *DFSearch) solve(stats *Statistics, limit Limit) error {
	t := d.s.trail
	level := t.Level()
	t.SaveState()
	defer t.RestoreStateUntil(level)

	// Objective bounds from earlier runs take effect before the root is
	// branched on.
	if err := d.s.FixPoint(); err != nil {
		if !IsInconsistency(err) {
			return err
		}
		stats.Failures++
		stats.Completed = true
		d.notifyFailure()
		return nil
	}

	err := d.dfs(stats, limit)
	switch {
	case err == errStopSearch:
	case err != nil:
		return err
	default:
		stats.Completed = true
	}
	d.s.log.Debug("search finished", "stats", stats.String())
	return nil
}

func (d *DFSearch) dfs(stats *Statistics, limit Limit) error {
	var stack []step
	if err := d.expand(&stack, stats); err != nil {
		return err
	}
	t := d.s.trail
	for len(stack) > 0 {
		if limit != nil && limit(*stats) {
			return errStopSearch
		}
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch st.kind {
		case stepSave:
			t.SaveState()
		case stepRestore:
			t.RestoreState()
		case stepTry:
			stats.Nodes++
			err := st.alt()
			if err == nil {
				err = d.expand(&stack, stats)
			}
			if err != nil {
				if !IsInconsistency(err) {
					return err
				}
				stats.Failures++
				d.s.debugState("failure", "failures", stats.Failures, "err", err)
				d.notifyFailure()
			}
		}
	}
	return nil
}

// expand pushes the alternatives of the current node, leftmost on top, or
// reports a solution when there are none.
func (d *DFSearch) expand(stack *[]step, stats *Statistics) error {
	alts := d.branching()
	if len(alts) == 0 {
		stats.Solutions++
		d.s.debugState("solution", "solutions", stats.Solutions,
			"nodes", stats.Nodes, "failures", stats.Failures)
		return d.notifySolution()
	}
	for i := len(alts) - 1; i >= 0; i-- {
		*stack = append(*stack,
			step{kind: stepRestore},
			step{kind: stepTry, alt: alts[i]},
			step{kind: stepSave},
		)
	}
	return nil
}

func (d *DFSearch) notifySolution() error {
	for _, f := range d.onSolution {
		f()
	}
	for _, f := range d.hooks {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DFSearch) notifyFailure() {
	for _, f := range d.onFailure {
		f()
	}
}
