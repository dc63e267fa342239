package prune

import (
	"fmt"
	"math"
	"sort"
)

// An IntVar is a decision variable with a finite integer domain.
//
// Mutators return ErrInconsistency instead of emptying the domain. Each
// successful mutation schedules the constraints subscribed to the events it
// produced.
type IntVar interface {
	Solver() *Solver

	Min() int
	Max() int
	Size() int
	Contains(v int) bool
	IsBound() bool
	// FillArray copies the domain into dst, which must have room for
	// Size() values, and returns the number of values written.
	FillArray(dst []int) int

	Remove(v int) error
	Assign(v int) error
	RemoveBelow(v int) error
	RemoveAbove(v int) error

	// PropagateOnDomainChange schedules c whenever the domain shrinks.
	PropagateOnDomainChange(c Constraint)
	// PropagateOnBind schedules c when the variable becomes bound.
	PropagateOnBind(c Constraint)
	// PropagateOnBoundChange schedules c when the minimum or maximum moves.
	PropagateOnBoundChange(c Constraint)

	WhenBind(f func() error)
	WhenBoundsChange(f func() error)
	WhenDomainChange(f func() error)

	String() string
}

type intVar struct {
	s        *Solver
	dom      *domain
	onDomain *StateStack[Constraint]
	onBind   *StateStack[Constraint]
	onBounds *StateStack[Constraint]
}

// NewIntVar returns a variable with domain {min, ..., max}.
func NewIntVar(s *Solver, min, max int) (IntVar, error) {
	if min == math.MinInt || max == math.MaxInt {
		return nil, fmt.Errorf("prune: domain bounds must be strictly inside the int range")
	}
	if min > max {
		return nil, fmt.Errorf("prune: empty domain [%d, %d]", min, max)
	}
	return newIntVar(s, min, max), nil
}

func newIntVar(s *Solver, min, max int) *intVar {
	t := s.trail
	x := &intVar{
		s:        s,
		dom:      newDomain(t, min, max),
		onDomain: NewStateStack[Constraint](t),
		onBind:   NewStateStack[Constraint](t),
		onBounds: NewStateStack[Constraint](t),
	}
	s.vars = append(s.vars, x)
	return x
}

// NewIntVarN returns a variable with domain {0, ..., n-1}.
func NewIntVarN(s *Solver, n int) (IntVar, error) {
	return NewIntVar(s, 0, n-1)
}

// NewIntVarSet returns a variable whose domain is exactly values.
func NewIntVarSet(s *Solver, values ...int) (IntVar, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("prune: empty value set")
	}
	vals := append([]int(nil), values...)
	sort.Ints(vals)
	x, err := NewIntVar(s, vals[0], vals[len(vals)-1])
	if err != nil {
		return nil, err
	}
	// Only the gaps between consecutive values are removed, so the domain
	// cannot become empty.
	for k := 1; k < len(vals); k++ {
		for v := vals[k-1] + 1; v < vals[k]; v++ {
			_ = x.Remove(v)
		}
	}
	return x, nil
}

// NewIntVarArray returns n variables with domain {min, ..., max}.
func NewIntVarArray(s *Solver, n, min, max int) ([]IntVar, error) {
	xs := make([]IntVar, n)
	for i := range xs {
		x, err := NewIntVar(s, min, max)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

// MustIntVar is like NewIntVar but panics on invalid bounds.
func MustIntVar(s *Solver, min, max int) IntVar {
	x, err := NewIntVar(s, min, max)
	if err != nil {
		panic(err)
	}
	return x
}

func (x *intVar) Solver() *Solver { return x.s }

func (x *intVar) Min() int                { return x.dom.Min() }
func (x *intVar) Max() int                { return x.dom.Max() }
func (x *intVar) Size() int               { return x.dom.Size() }
func (x *intVar) Contains(v int) bool     { return x.dom.Contains(v) }
func (x *intVar) IsBound() bool           { return x.dom.IsBound() }
func (x *intVar) FillArray(dst []int) int { return x.dom.FillArray(dst) }
func (x *intVar) String() string          { return x.dom.String() }

func (x *intVar) Remove(v int) error      { return x.dom.Remove(v, x) }
func (x *intVar) Assign(v int) error      { return x.dom.RemoveAllBut(v, x) }
func (x *intVar) RemoveBelow(v int) error { return x.dom.RemoveBelow(v, x) }
func (x *intVar) RemoveAbove(v int) error { return x.dom.RemoveAbove(v, x) }

func (x *intVar) PropagateOnDomainChange(c Constraint) { x.onDomain.Push(c) }
func (x *intVar) PropagateOnBind(c Constraint)         { x.onBind.Push(c) }
func (x *intVar) PropagateOnBoundChange(c Constraint)  { x.onBounds.Push(c) }

func (x *intVar) WhenBind(f func() error)         { x.onBind.Push(NewReaction(x.s, f)) }
func (x *intVar) WhenBoundsChange(f func() error) { x.onBounds.Push(NewReaction(x.s, f)) }
func (x *intVar) WhenDomainChange(f func() error) { x.onDomain.Push(NewReaction(x.s, f)) }

// domainListener

func (x *intVar) empty() error { return ErrInconsistency }
func (x *intVar) bind()        { x.scheduleAll(x.onBind) }
func (x *intVar) change()      { x.scheduleAll(x.onDomain) }
func (x *intVar) changeMin()   { x.scheduleAll(x.onBounds) }
func (x *intVar) changeMax()   { x.scheduleAll(x.onBounds) }

func (x *intVar) scheduleAll(cs *StateStack[Constraint]) {
	for i := 0; i < cs.Size(); i++ {
		x.s.Schedule(cs.Get(i))
	}
}
