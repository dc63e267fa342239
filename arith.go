package prune

import (
	"fmt"
	"math"
)

type equal struct {
	ConstraintBase
	x, y IntVar
	buf  []int
}

// NewEqual returns the domain-consistent constraint x = y.
func NewEqual(x, y IntVar) Constraint {
	return &equal{ConstraintBase: NewConstraintBase(x.Solver()), x: x, y: y}
}

func (c *equal) Post() error {
	n := c.x.Size()
	if m := c.y.Size(); m > n {
		n = m
	}
	c.buf = make([]int, n)
	c.x.PropagateOnDomainChange(c)
	c.y.PropagateOnDomainChange(c)
	return c.Propagate()
}

func (c *equal) Propagate() error {
	if err := c.x.RemoveBelow(c.y.Min()); err != nil {
		return err
	}
	if err := c.x.RemoveAbove(c.y.Max()); err != nil {
		return err
	}
	if err := c.y.RemoveBelow(c.x.Min()); err != nil {
		return err
	}
	if err := c.y.RemoveAbove(c.x.Max()); err != nil {
		return err
	}
	if err := pruneMissing(c.x, c.y, c.buf); err != nil {
		return err
	}
	if err := pruneMissing(c.y, c.x, c.buf); err != nil {
		return err
	}
	if c.x.IsBound() {
		c.SetActive(false)
	}
	return nil
}

// pruneMissing removes from x every value that y does not contain.
func pruneMissing(x, y IntVar, buf []int) error {
	n := x.FillArray(buf)
	for _, v := range buf[:n] {
		if !y.Contains(v) {
			if err := x.Remove(v); err != nil {
				return err
			}
		}
	}
	return nil
}

type notEqual struct {
	ConstraintBase
	x, y IntVar
	c    int
}

// NewNotEqual returns the constraint x != y + c.
func NewNotEqual(x, y IntVar, c int) Constraint {
	return &notEqual{ConstraintBase: NewConstraintBase(x.Solver()), x: x, y: y, c: c}
}

func (c *notEqual) Post() error {
	if c.x.IsBound() || c.y.IsBound() {
		return c.Propagate()
	}
	c.x.PropagateOnBind(c)
	c.y.PropagateOnBind(c)
	return nil
}

func (c *notEqual) Propagate() error {
	switch {
	case c.y.IsBound():
		c.SetActive(false)
		return c.x.Remove(c.y.Min() + c.c)
	case c.x.IsBound():
		c.SetActive(false)
		return c.y.Remove(c.x.Min() - c.c)
	}
	return nil
}

type lessOrEqual struct {
	ConstraintBase
	x, y IntVar
}

// NewLessOrEqual returns the constraint x <= y.
func NewLessOrEqual(x, y IntVar) Constraint {
	return &lessOrEqual{ConstraintBase: NewConstraintBase(x.Solver()), x: x, y: y}
}

func (c *lessOrEqual) Post() error {
	c.x.PropagateOnBoundChange(c)
	c.y.PropagateOnBoundChange(c)
	return c.Propagate()
}

func (c *lessOrEqual) Propagate() error {
	if err := c.x.RemoveAbove(c.y.Max()); err != nil {
		return err
	}
	if err := c.y.RemoveBelow(c.x.Min()); err != nil {
		return err
	}
	if c.x.Max() <= c.y.Min() {
		c.SetActive(false)
	}
	return nil
}

// sum is the bound-consistent constraint sum(x) = 0. Bound terms are folded
// into a reversible constant so propagation only scans the free ones.
type sum struct {
	ConstraintBase
	x        []IntVar
	free     []int // indices of x; the first nFree are unbound
	nFree    *StateInt
	fixedSum *StateInt
}

// NewSum returns the constraint sum(x) = y.
func NewSum(x []IntVar, y IntVar) (Constraint, error) {
	terms := make([]IntVar, len(x)+1)
	copy(terms, x)
	terms[len(x)] = Minus(y)
	return NewSumZero(terms)
}

// NewSumZero returns the constraint sum(x) = 0.
func NewSumZero(x []IntVar) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: sum of no terms")
	}
	s := x[0].Solver()
	c := &sum{
		ConstraintBase: NewConstraintBase(s),
		x:              x,
		free:           make([]int, len(x)),
		nFree:          s.trail.NewStateInt(len(x)),
		fixedSum:       s.trail.NewStateInt(0),
	}
	for i := range c.free {
		c.free[i] = i
	}
	return c, nil
}

// SumVar returns a fresh variable constrained to sum(x), posting the
// constraint without running the fixpoint.
func SumVar(x ...IntVar) (IntVar, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: sum of no terms")
	}
	lo, hi := 0, 0
	for _, xi := range x {
		lo += xi.Min()
		hi += xi.Max()
	}
	s := x[0].Solver()
	y, err := NewIntVar(s, lo, hi)
	if err != nil {
		return nil, err
	}
	c, err := NewSum(x, y)
	if err != nil {
		return nil, err
	}
	if err := s.PostNoFixPoint(c); err != nil {
		return nil, err
	}
	return y, nil
}

func (c *sum) Post() error {
	for _, x := range c.x {
		x.PropagateOnBoundChange(c)
	}
	return c.Propagate()
}

func (c *sum) Propagate() error {
	nFree := c.nFree.Value()
	fixed := c.fixedSum.Value()
	sumMin, sumMax := fixed, fixed
	for i := nFree - 1; i >= 0; i-- {
		idx := c.free[i]
		x := c.x[idx]
		sumMin += x.Min()
		sumMax += x.Max()
		if x.IsBound() {
			fixed += x.Min()
			nFree--
			c.free[i], c.free[nFree] = c.free[nFree], idx
		}
	}
	c.nFree.SetValue(nFree)
	c.fixedSum.SetValue(fixed)
	if sumMin > 0 || sumMax < 0 {
		return ErrInconsistency
	}
	for i := 0; i < nFree; i++ {
		x := c.x[c.free[i]]
		xMin, xMax := x.Min(), x.Max()
		if err := x.RemoveAbove(xMin - sumMin); err != nil {
			return err
		}
		if err := x.RemoveBelow(xMax - sumMax); err != nil {
			return err
		}
	}
	return nil
}

type maximum struct {
	ConstraintBase
	x []IntVar
	y IntVar
}

// NewMaximum returns the constraint y = max(x).
func NewMaximum(x []IntVar, y IntVar) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: maximum of no terms")
	}
	return &maximum{ConstraintBase: NewConstraintBase(y.Solver()), x: x, y: y}, nil
}

// MaximumVar returns a fresh variable constrained to max(x).
func MaximumVar(x ...IntVar) (IntVar, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: maximum of no terms")
	}
	lo, hi := math.MinInt, math.MinInt
	for _, xi := range x {
		lo = max(lo, xi.Min())
		hi = max(hi, xi.Max())
	}
	s := x[0].Solver()
	y, err := NewIntVar(s, lo, hi)
	if err != nil {
		return nil, err
	}
	c, err := NewMaximum(x, y)
	if err != nil {
		return nil, err
	}
	if err := s.PostNoFixPoint(c); err != nil {
		return nil, err
	}
	return y, nil
}

func (c *maximum) Post() error {
	for _, x := range c.x {
		x.PropagateOnBoundChange(c)
	}
	c.y.PropagateOnBoundChange(c)
	return c.Propagate()
}

func (c *maximum) Propagate() error {
	yMax := c.y.Max()
	maxOfMax, maxOfMin := math.MinInt, math.MinInt
	for _, x := range c.x {
		if err := x.RemoveAbove(yMax); err != nil {
			return err
		}
		maxOfMax = max(maxOfMax, x.Max())
		maxOfMin = max(maxOfMin, x.Min())
	}
	if err := c.y.RemoveAbove(maxOfMax); err != nil {
		return err
	}
	if err := c.y.RemoveBelow(maxOfMin); err != nil {
		return err
	}
	// If a single x can still reach y, it must be equal to it.
	var support IntVar
	for _, x := range c.x {
		if x.Max() >= c.y.Min() {
			if support != nil {
				return nil
			}
			support = x
		}
	}
	if support != nil {
		c.SetActive(false)
		return c.solver.PostNoFixPoint(NewEqual(support, c.y))
	}
	return nil
}

type absolute struct {
	ConstraintBase
	x, y IntVar
	buf  []int
}

// NewAbsolute returns the constraint y = |x|.
func NewAbsolute(x, y IntVar) Constraint {
	return &absolute{ConstraintBase: NewConstraintBase(x.Solver()), x: x, y: y}
}

func (c *absolute) Post() error {
	c.buf = make([]int, max(c.x.Size(), c.y.Size()))
	if err := c.y.RemoveBelow(0); err != nil {
		return err
	}
	c.x.PropagateOnDomainChange(c)
	c.y.PropagateOnDomainChange(c)
	return c.Propagate()
}

func (c *absolute) Propagate() error {
	n := c.x.FillArray(c.buf)
	for _, v := range c.buf[:n] {
		if !c.y.Contains(abs(v)) {
			if err := c.x.Remove(v); err != nil {
				return err
			}
		}
	}
	n = c.y.FillArray(c.buf)
	for _, v := range c.buf[:n] {
		if !c.x.Contains(v) && !c.x.Contains(-v) {
			if err := c.y.Remove(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
