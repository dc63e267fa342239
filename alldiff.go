package prune

import "fmt"

// allDifferentDC enforces generalized arc consistency for pairwise
// distinctness (Régin). At each propagation it computes a maximum matching
// between variables and values and removes every value that belongs to no
// maximum matching: such a value and its variable lie in different strongly
// connected components of the residual graph.
type allDifferentDC struct {
	ConstraintBase
	x        []IntVar
	matching *maximumMatching
	match    []int
	buf      []int

	minVal, nVal int
	g            *digraph
	scc          sccFinder
}

// NewAllDifferentDC returns the domain-consistent all-different constraint.
func NewAllDifferentDC(x ...IntVar) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: all-different over no variables")
	}
	return &allDifferentDC{
		ConstraintBase: NewConstraintBase(x[0].Solver()),
		x:              x,
		match:          make([]int, len(x)),
	}, nil
}

func (c *allDifferentDC) Post() error {
	for _, x := range c.x {
		x.PropagateOnDomainChange(c)
	}
	c.matching = newMaximumMatching(c.x)
	// Domains only shrink below this point, so the value range is fixed.
	c.minVal = c.matching.min
	c.nVal = c.matching.max - c.matching.min + 1
	maxSize := 0
	for _, x := range c.x {
		maxSize = max(maxSize, x.Size())
	}
	c.buf = make([]int, maxSize)
	c.g = newDigraph(len(c.x) + c.nVal + 1)
	return c.Propagate()
}

// Node layout: variables 0..n-1, values n..n+nVal-1, then the sink.
func (c *allDifferentDC) valNode(v int) int { return v - c.minVal + len(c.x) }

func (c *allDifferentDC) updateGraph() {
	n := len(c.x)
	sink := n + c.nVal
	c.g.clear()
	matched := make([]bool, c.nVal)
	for i, x := range c.x {
		v := c.match[i]
		matched[v-c.minVal] = true
		c.g.link(c.valNode(v), i)
		c.g.link(sink, c.valNode(v))
		size := x.FillArray(c.buf)
		for _, w := range c.buf[:size] {
			if w != v {
				c.g.link(i, c.valNode(w))
			}
		}
	}
	for k, m := range matched {
		if !m {
			c.g.link(n+k, sink)
		}
	}
}

func (c *allDifferentDC) Propagate() error {
	if c.matching.compute(c.match) < len(c.x) {
		return ErrInconsistency
	}
	c.updateGraph()
	comp := c.scc.components(c.g)
	for i, x := range c.x {
		size := x.FillArray(c.buf)
		for _, v := range c.buf[:size] {
			if v != c.match[i] && comp[i] != comp[c.valNode(v)] {
				if err := x.Remove(v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// allDifferentFW is the forward-checking all-different: once a variable is
// bound its value is removed from the others.
type allDifferentFW struct {
	ConstraintBase
	x     []IntVar
	free  []int
	nFree *StateInt
	bound []int
}

// NewAllDifferentFW returns the forward-checking all-different constraint.
func NewAllDifferentFW(x ...IntVar) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: all-different over no variables")
	}
	s := x[0].Solver()
	c := &allDifferentFW{
		ConstraintBase: NewConstraintBase(s),
		x:              x,
		free:           make([]int, len(x)),
		nFree:          s.trail.NewStateInt(len(x)),
	}
	for i := range c.free {
		c.free[i] = i
	}
	return c, nil
}

func (c *allDifferentFW) Post() error {
	for _, x := range c.x {
		x.PropagateOnBind(c)
	}
	return c.Propagate()
}

func (c *allDifferentFW) Propagate() error {
	nFree := c.nFree.Value()
	c.bound = c.bound[:0]
	for i := nFree - 1; i >= 0; i-- {
		idx := c.free[i]
		if c.x[idx].IsBound() {
			c.bound = append(c.bound, c.x[idx].Min())
			nFree--
			c.free[i], c.free[nFree] = c.free[nFree], idx
		}
	}
	c.nFree.SetValue(nFree)
	// Variables bound since the last run have not pruned each other yet.
	for i, v := range c.bound {
		for _, w := range c.bound[i+1:] {
			if v == w {
				return ErrInconsistency
			}
		}
	}
	for i := 0; i < nFree; i++ {
		x := c.x[c.free[i]]
		for _, v := range c.bound {
			if err := x.Remove(v); err != nil {
				return err
			}
		}
	}
	return nil
}
