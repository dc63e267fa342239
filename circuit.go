package prune

import "fmt"

// circuit states that the successor variables x form a single Hamiltonian
// cycle: x[i] = j means node j follows node i. Besides the all-different on
// the successors, it tracks the chains of bound successors and forbids the
// arc that would close a chain into a sub-tour.
type circuit struct {
	ConstraintBase
	x []IntVar
	// For each chain, indexed by its first and last node.
	dest         []*StateInt
	orig         []*StateInt
	lengthToDest []*StateInt
}

// NewCircuit returns the constraint that the successors x form one cycle
// through all nodes 0..len(x)-1.
func NewCircuit(x ...IntVar) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: circuit over no nodes")
	}
	s := x[0].Solver()
	c := &circuit{
		ConstraintBase: NewConstraintBase(s),
		x:              x,
		dest:           make([]*StateInt, len(x)),
		orig:           make([]*StateInt, len(x)),
		lengthToDest:   make([]*StateInt, len(x)),
	}
	for i := range x {
		c.dest[i] = s.trail.NewStateInt(i)
		c.orig[i] = s.trail.NewStateInt(i)
		c.lengthToDest[i] = s.trail.NewStateInt(0)
	}
	return c, nil
}

func (c *circuit) Post() error {
	n := len(c.x)
	if n == 1 {
		return c.x[0].Assign(0)
	}
	for i, x := range c.x {
		if err := x.RemoveBelow(0); err != nil {
			return err
		}
		if err := x.RemoveAbove(n - 1); err != nil {
			return err
		}
		if err := x.Remove(i); err != nil {
			return err
		}
	}
	ad, err := NewAllDifferentDC(c.x...)
	if err != nil {
		return err
	}
	if err := c.solver.PostNoFixPoint(ad); err != nil {
		return err
	}
	for i, x := range c.x {
		if x.IsBound() {
			if err := c.bind(i); err != nil {
				return err
			}
			continue
		}
		x.WhenBind(func() error { return c.bind(i) })
	}
	return nil
}

func (c *circuit) Propagate() error { return nil }

// bind joins the chain ending at i with the chain starting at x[i].
func (c *circuit) bind(i int) error {
	j := c.x[i].Min()
	origI := c.orig[i].Value()
	destJ := c.dest[j].Value()
	c.dest[origI].SetValue(destJ)
	c.orig[destJ].SetValue(origI)
	length := c.lengthToDest[origI].Value() + c.lengthToDest[j].Value() + 1
	c.lengthToDest[origI].SetValue(length)
	if length < len(c.x)-1 {
		return c.x[destJ].Remove(origI)
	}
	return nil
}
