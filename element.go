package prune

import (
	"fmt"
	"math"
	"sort"
)

type element1D struct {
	ConstraintBase
	t    []int
	y, z IntVar

	// byZ lists the (index, value) pairs of t sorted by value. The pairs in
	// byZ[low..up] are the ones that may still be used.
	byZ      []indexValue
	low, up  *StateInt
	supports []*StateInt // for each index, whether its pair is still in range
}

type indexValue struct {
	i, v int
}

// NewElement1D returns the constraint t[y] = z.
func NewElement1D(t []int, y, z IntVar) (Constraint, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("prune: element over an empty array")
	}
	s := y.Solver()
	c := &element1D{
		ConstraintBase: NewConstraintBase(s),
		t:              t,
		y:              y,
		z:              z,
		byZ:            make([]indexValue, len(t)),
		low:            s.trail.NewStateInt(0),
		up:             s.trail.NewStateInt(len(t) - 1),
		supports:       make([]*StateInt, len(t)),
	}
	for i, v := range t {
		c.byZ[i] = indexValue{i, v}
		c.supports[i] = s.trail.NewStateInt(1)
	}
	sort.Slice(c.byZ, func(i, j int) bool { return c.byZ[i].v < c.byZ[j].v })
	return c, nil
}

// ElementVar returns a fresh variable constrained to t[y].
func ElementVar(t []int, y IntVar) (IntVar, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("prune: element over an empty array")
	}
	lo, hi := math.MaxInt, math.MinInt
	for _, v := range t {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	s := y.Solver()
	z, err := NewIntVar(s, lo, hi)
	if err != nil {
		return nil, err
	}
	c, err := NewElement1D(t, y, z)
	if err != nil {
		return nil, err
	}
	if err := s.PostNoFixPoint(c); err != nil {
		return nil, err
	}
	return z, nil
}

func (c *element1D) Post() error {
	if err := c.y.RemoveBelow(0); err != nil {
		return err
	}
	if err := c.y.RemoveAbove(len(c.t) - 1); err != nil {
		return err
	}
	c.y.PropagateOnDomainChange(c)
	c.z.PropagateOnBoundChange(c)
	return c.Propagate()
}

func (c *element1D) lose(pos int) error {
	i := c.byZ[pos].i
	if c.supports[i].Decrement() == 0 {
		return c.y.Remove(i)
	}
	return nil
}

func (c *element1D) Propagate() error {
	l, u := c.low.Value(), c.up.Value()
	zMin, zMax := c.z.Min(), c.z.Max()
	for c.byZ[l].v < zMin || !c.y.Contains(c.byZ[l].i) {
		if err := c.lose(l); err != nil {
			return err
		}
		l++
		if l > u {
			return ErrInconsistency
		}
	}
	for c.byZ[u].v > zMax || !c.y.Contains(c.byZ[u].i) {
		if err := c.lose(u); err != nil {
			return err
		}
		u--
		if l > u {
			return ErrInconsistency
		}
	}
	c.low.SetValue(l)
	c.up.SetValue(u)
	if err := c.z.RemoveBelow(c.byZ[l].v); err != nil {
		return err
	}
	return c.z.RemoveAbove(c.byZ[u].v)
}

type element1DVar struct {
	ConstraintBase
	t    []IntVar
	y, z IntVar
	buf  []int
}

// NewElement1DVar returns the constraint t[y] = z over an array of
// variables.
func NewElement1DVar(t []IntVar, y, z IntVar) (Constraint, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("prune: element over an empty array")
	}
	return &element1DVar{ConstraintBase: NewConstraintBase(y.Solver()), t: t, y: y, z: z}, nil
}

func (c *element1DVar) Post() error {
	if err := c.y.RemoveBelow(0); err != nil {
		return err
	}
	if err := c.y.RemoveAbove(len(c.t) - 1); err != nil {
		return err
	}
	c.buf = make([]int, c.y.Size())
	c.y.PropagateOnDomainChange(c)
	c.z.PropagateOnBoundChange(c)
	for _, t := range c.t {
		t.PropagateOnBoundChange(c)
	}
	return c.Propagate()
}

func (c *element1DVar) Propagate() error {
	n := c.y.FillArray(c.buf)
	lo, hi := math.MaxInt, math.MinInt
	for _, i := range c.buf[:n] {
		t := c.t[i]
		if t.Min() > c.z.Max() || t.Max() < c.z.Min() {
			if err := c.y.Remove(i); err != nil {
				return err
			}
			continue
		}
		lo = min(lo, t.Min())
		hi = max(hi, t.Max())
	}
	if err := c.z.RemoveBelow(lo); err != nil {
		return err
	}
	if err := c.z.RemoveAbove(hi); err != nil {
		return err
	}
	if c.y.IsBound() {
		t := c.t[c.y.Min()]
		if err := t.RemoveBelow(c.z.Min()); err != nil {
			return err
		}
		if err := t.RemoveAbove(c.z.Max()); err != nil {
			return err
		}
		if err := c.z.RemoveBelow(t.Min()); err != nil {
			return err
		}
		return c.z.RemoveAbove(t.Max())
	}
	return nil
}

type element1DDC struct {
	ConstraintBase
	t      []int
	y, z   IntVar
	ys, zs []int
	seen   map[int]bool
}

// NewElement1DDC returns the constraint t[y] = z with domain consistent
// filtering: every value left in y or z belongs to a solution of the
// constraint. NewElement1D only keeps the bounds of z consistent.
func NewElement1DDC(t []int, y, z IntVar) (Constraint, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("prune: element over an empty array")
	}
	return &element1DDC{
		ConstraintBase: NewConstraintBase(y.Solver()),
		t:              t,
		y:              y,
		z:              z,
		seen:           make(map[int]bool),
	}, nil
}

func (c *element1DDC) Post() error {
	if err := c.y.RemoveBelow(0); err != nil {
		return err
	}
	if err := c.y.RemoveAbove(len(c.t) - 1); err != nil {
		return err
	}
	c.ys = make([]int, c.y.Size())
	c.zs = make([]int, c.z.Size())
	c.y.PropagateOnDomainChange(c)
	c.z.PropagateOnDomainChange(c)
	return c.Propagate()
}

func (c *element1DDC) Propagate() error {
	clear(c.seen)
	n := c.y.FillArray(c.ys)
	for _, i := range c.ys[:n] {
		if !c.z.Contains(c.t[i]) {
			if err := c.y.Remove(i); err != nil {
				return err
			}
			continue
		}
		c.seen[c.t[i]] = true
	}
	n = c.z.FillArray(c.zs)
	for _, v := range c.zs[:n] {
		if !c.seen[v] {
			if err := c.z.Remove(v); err != nil {
				return err
			}
		}
	}
	return nil
}

type element1DVarDC struct {
	ConstraintBase
	t      []IntVar
	y, z   IntVar
	ys, zs []int
	buf    []int
	// residue[i] is a value last found in both t[i] and z. It is only a
	// hint and needs no trail.
	residue []int
	hasRes  []bool
}

// NewElement1DVarDC returns the constraint t[y] = z over an array of
// variables, with domain consistent filtering of y, z and t[y].
func NewElement1DVarDC(t []IntVar, y, z IntVar) (Constraint, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("prune: element over an empty array")
	}
	return &element1DVarDC{
		ConstraintBase: NewConstraintBase(y.Solver()),
		t:              t,
		y:              y,
		z:              z,
		residue:        make([]int, len(t)),
		hasRes:         make([]bool, len(t)),
	}, nil
}

func (c *element1DVarDC) Post() error {
	if err := c.y.RemoveBelow(0); err != nil {
		return err
	}
	if err := c.y.RemoveAbove(len(c.t) - 1); err != nil {
		return err
	}
	c.ys = make([]int, c.y.Size())
	c.zs = make([]int, c.z.Size())
	size := 0
	for _, t := range c.t {
		size = max(size, t.Size())
	}
	c.buf = make([]int, size)
	c.y.PropagateOnDomainChange(c)
	c.z.PropagateOnDomainChange(c)
	for _, t := range c.t {
		t.PropagateOnDomainChange(c)
	}
	return c.Propagate()
}

// supported reports whether t[i] and z share a value.
func (c *element1DVarDC) supported(i int) bool {
	t := c.t[i]
	if c.hasRes[i] && t.Contains(c.residue[i]) && c.z.Contains(c.residue[i]) {
		return true
	}
	n := t.FillArray(c.buf)
	for _, v := range c.buf[:n] {
		if c.z.Contains(v) {
			c.residue[i], c.hasRes[i] = v, true
			return true
		}
	}
	c.hasRes[i] = false
	return false
}

func (c *element1DVarDC) Propagate() error {
	n := c.y.FillArray(c.ys)
	for _, i := range c.ys[:n] {
		if !c.supported(i) {
			if err := c.y.Remove(i); err != nil {
				return err
			}
		}
	}
	n = c.y.FillArray(c.ys)
	ys := c.ys[:n]
	m := c.z.FillArray(c.zs)
	for _, v := range c.zs[:m] {
		ok := false
		for _, i := range ys {
			if c.t[i].Contains(v) {
				ok = true
				break
			}
		}
		if !ok {
			if err := c.z.Remove(v); err != nil {
				return err
			}
		}
	}
	if len(ys) > 1 {
		return nil
	}
	// y is bound: t[y] and z must agree value by value.
	t := c.t[ys[0]]
	k := t.FillArray(c.buf)
	for _, v := range c.buf[:k] {
		if !c.z.Contains(v) {
			if err := t.Remove(v); err != nil {
				return err
			}
		}
	}
	return nil
}
