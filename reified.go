package prune

import "fmt"

type isEqual struct {
	ConstraintBase
	b BoolVar
	x IntVar
	v int
}

// NewIsEqual returns the constraint b <=> (x = v).
func NewIsEqual(b BoolVar, x IntVar, v int) Constraint {
	return &isEqual{ConstraintBase: NewConstraintBase(x.Solver()), b: b, x: x, v: v}
}

func (c *isEqual) Post() error {
	if err := c.Propagate(); err != nil {
		return err
	}
	if c.Active() {
		c.x.PropagateOnDomainChange(c)
		c.b.PropagateOnBind(c)
	}
	return nil
}

func (c *isEqual) Propagate() error {
	switch {
	case c.b.IsTrue():
		c.SetActive(false)
		return c.x.Assign(c.v)
	case c.b.IsFalse():
		c.SetActive(false)
		return c.x.Remove(c.v)
	case !c.x.Contains(c.v):
		c.SetActive(false)
		return c.b.AssignBool(false)
	case c.x.IsBound():
		c.SetActive(false)
		return c.b.AssignBool(true)
	}
	return nil
}

type isLessOrEqual struct {
	ConstraintBase
	b BoolVar
	x IntVar
	v int
}

// NewIsLessOrEqual returns the constraint b <=> (x <= v).
func NewIsLessOrEqual(b BoolVar, x IntVar, v int) Constraint {
	return &isLessOrEqual{ConstraintBase: NewConstraintBase(x.Solver()), b: b, x: x, v: v}
}

func (c *isLessOrEqual) Post() error {
	if err := c.Propagate(); err != nil {
		return err
	}
	if c.Active() {
		c.x.PropagateOnBoundChange(c)
		c.b.PropagateOnBind(c)
	}
	return nil
}

func (c *isLessOrEqual) Propagate() error {
	switch {
	case c.b.IsTrue():
		c.SetActive(false)
		return c.x.RemoveAbove(c.v)
	case c.b.IsFalse():
		c.SetActive(false)
		return c.x.RemoveBelow(c.v + 1)
	case c.x.Min() > c.v:
		c.SetActive(false)
		return c.b.AssignBool(false)
	case c.x.Max() <= c.v:
		c.SetActive(false)
		return c.b.AssignBool(true)
	}
	return nil
}

// or is the clause x[0] ∨ ... ∨ x[n-1], propagated with two watched
// literals. The watches only move inward, so they are reversible ints.
type or struct {
	ConstraintBase
	x      []BoolVar
	wLeft  *StateInt
	wRight *StateInt
}

// NewOr returns the constraint that at least one of x is true.
func NewOr(x []BoolVar) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: empty clause")
	}
	s := x[0].Solver()
	return &or{
		ConstraintBase: NewConstraintBase(s),
		x:              x,
		wLeft:          s.trail.NewStateInt(0),
		wRight:         s.trail.NewStateInt(len(x) - 1),
	}, nil
}

func (c *or) Post() error {
	return c.Propagate()
}

func (c *or) Propagate() error {
	n := len(c.x)
	i := c.wLeft.Value()
	for i < n && c.x[i].IsBound() {
		if c.x[i].IsTrue() {
			c.SetActive(false)
			return nil
		}
		i++
	}
	c.wLeft.SetValue(i)
	j := c.wRight.Value()
	for j >= 0 && c.x[j].IsBound() && j >= i {
		if c.x[j].IsTrue() {
			c.SetActive(false)
			return nil
		}
		j--
	}
	c.wRight.SetValue(j)
	switch {
	case i > j:
		return ErrInconsistency
	case i == j:
		c.SetActive(false)
		return c.x[i].AssignBool(true)
	}
	c.x[i].PropagateOnBind(c)
	c.x[j].PropagateOnBind(c)
	return nil
}

type isOr struct {
	ConstraintBase
	b      BoolVar
	x      []BoolVar
	free   []int
	nFree  *StateInt
	clause Constraint
}

// NewIsOr returns the constraint b <=> (x[0] ∨ ... ∨ x[n-1]).
func NewIsOr(b BoolVar, x []BoolVar) (Constraint, error) {
	clause, err := NewOr(x)
	if err != nil {
		return nil, err
	}
	s := b.Solver()
	c := &isOr{
		ConstraintBase: NewConstraintBase(s),
		b:              b,
		x:              x,
		free:           make([]int, len(x)),
		nFree:          s.trail.NewStateInt(len(x)),
		clause:         clause,
	}
	for i := range c.free {
		c.free[i] = i
	}
	return c, nil
}

func (c *isOr) Post() error {
	c.b.PropagateOnBind(c)
	for _, x := range c.x {
		x.PropagateOnBind(c)
	}
	return c.Propagate()
}

func (c *isOr) Propagate() error {
	if c.b.IsTrue() {
		c.SetActive(false)
		return c.solver.PostNoFixPoint(c.clause)
	}
	if c.b.IsFalse() {
		c.SetActive(false)
		for _, x := range c.x {
			if err := x.AssignBool(false); err != nil {
				return err
			}
		}
		return nil
	}
	nFree := c.nFree.Value()
	for i := nFree - 1; i >= 0; i-- {
		idx := c.free[i]
		x := c.x[idx]
		if x.IsTrue() {
			c.SetActive(false)
			return c.b.AssignBool(true)
		}
		if x.IsFalse() {
			nFree--
			c.free[i], c.free[nFree] = c.free[nFree], idx
		}
	}
	c.nFree.SetValue(nFree)
	if nFree == 0 {
		c.SetActive(false)
		return c.b.AssignBool(false)
	}
	return nil
}
