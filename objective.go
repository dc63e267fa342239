package prune

import (
	"fmt"
	"math"
)

// An Objective is tightened by the search each time a solution is found so
// that later solutions must improve on it.
type Objective interface {
	// Tighten records the current (bound) value of the objective
	// variable as the incumbent.
	Tighten() error
	// Best reports the incumbent value and whether there is one.
	Best() (int, bool)
}

// Minimize is an objective asking for smaller values of a variable.
type Minimize struct {
	x     IntVar
	bound int // x must stay <= bound
	found bool
}

// NewMinimize returns an objective minimizing x. Its bound is enforced at the
// start of every fixpoint of x's solver.
func NewMinimize(x IntVar) *Minimize {
	m := &Minimize{x: x, bound: math.MaxInt}
	x.Solver().OnFixPoint(func() error {
		return x.RemoveAbove(m.bound)
	})
	return m
}

// NewMaximize returns an objective maximizing x.
func NewMaximize(x IntVar) *Maximize {
	return &Maximize{Minimize: NewMinimize(Minus(x))}
}

func (m *Minimize) Tighten() error {
	if !m.x.IsBound() {
		return fmt.Errorf("prune: objective %v not bound at a solution", m.x)
	}
	m.bound = m.x.Max() - 1
	m.found = true
	return nil
}

func (m *Minimize) Best() (int, bool) {
	if !m.found {
		return 0, false
	}
	return m.bound + 1, true
}

// Bound is the value every new solution must stay at or below.
func (m *Minimize) Bound() int { return m.bound }

// Maximize is an objective asking for larger values of a variable.
type Maximize struct {
	*Minimize
}

func (m *Maximize) Best() (int, bool) {
	v, ok := m.Minimize.Best()
	return -v, ok
}

// Bound is the value every new solution must stay at or above.
func (m *Maximize) Bound() int { return -m.Minimize.Bound() }

// Minimize returns an objective minimizing x.
func (s *Solver) Minimize(x IntVar) *Minimize { return NewMinimize(x) }

// Maximize returns an objective maximizing x.
func (s *Solver) Maximize(x IntVar) *Maximize { return NewMaximize(x) }
