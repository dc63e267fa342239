package prune

import (
	"fmt"
	"sort"
)

// disjunctive states that activities i, each occupying [start[i],
// start[i]+dur[i]), never overlap. Each propagation runs overload checking,
// detectable precedences and not-last (Vilím) until none of them changes a
// bound. The same filter posted on the mirrored activities, whose starts are
// -(start+dur), adjusts the upper bounds of the starts through the lower
// bounds of the mirror.
type disjunctive struct {
	ConstraintBase
	start  []IntVar
	dur    []int
	mirror bool

	tree *thetaTree
	est  []int
	ect  []int
	lst  []int
	lct  []int

	byEST, byECT, byLST, byLCT []int
	rank                       []int // leaf of each activity, in EST order
	bound                      []int
}

// NewDisjunctive returns the constraint that the activities with the given
// start variables and durations execute one at a time.
func NewDisjunctive(start []IntVar, dur []int) (Constraint, error) {
	return newDisjunctive(start, dur, true)
}

func newDisjunctive(start []IntVar, dur []int, mirror bool) (*disjunctive, error) {
	if len(start) == 0 {
		return nil, fmt.Errorf("prune: disjunctive over no activities")
	}
	if len(start) != len(dur) {
		return nil, fmt.Errorf("prune: disjunctive has %d starts and %d durations", len(start), len(dur))
	}
	for i, d := range dur {
		if d < 0 {
			return nil, fmt.Errorf("prune: activity %d has negative duration %d", i, d)
		}
	}
	base := NewConstraintBase(start[0].Solver())
	// Zero-length activities overlap nothing.
	var ss []IntVar
	var ds []int
	for i, d := range dur {
		if d > 0 {
			ss = append(ss, start[i])
			ds = append(ds, d)
		}
	}
	n := len(ss)
	return &disjunctive{
		ConstraintBase: base,
		start:          ss,
		dur:            ds,
		mirror:         mirror,
		tree:           newThetaTree(n),
		est:            make([]int, n),
		ect:            make([]int, n),
		lst:            make([]int, n),
		lct:            make([]int, n),
		byEST:          identity(n),
		byECT:          identity(n),
		byLST:          identity(n),
		byLCT:          identity(n),
		rank:           make([]int, n),
		bound:          make([]int, n),
	}, nil
}

func identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func (c *disjunctive) Post() error {
	for _, s := range c.start {
		s.PropagateOnBoundChange(c)
	}
	if c.mirror {
		ms := make([]IntVar, len(c.start))
		for i, s := range c.start {
			ms[i] = Minus(Plus(s, c.dur[i]))
		}
		m, err := newDisjunctive(ms, c.dur, false)
		if err != nil {
			return err
		}
		if err := c.solver.PostNoFixPoint(m); err != nil {
			return err
		}
	}
	return c.Propagate()
}

func (c *disjunctive) Propagate() error {
	for {
		c.update()
		if err := c.overloadCheck(); err != nil {
			return err
		}
		changed, err := c.detectablePrecedence()
		if err != nil {
			return err
		}
		if changed {
			continue
		}
		if changed, err = c.notLast(); err != nil || !changed {
			return err
		}
	}
}

// update reads the bounds and recomputes the four orders.
func (c *disjunctive) update() {
	for i, s := range c.start {
		c.est[i] = s.Min()
		c.lst[i] = s.Max()
		c.ect[i] = c.est[i] + c.dur[i]
		c.lct[i] = c.lst[i] + c.dur[i]
	}
	sortBy(c.byEST, c.est)
	sortBy(c.byECT, c.ect)
	sortBy(c.byLST, c.lst)
	sortBy(c.byLCT, c.lct)
	for r, i := range c.byEST {
		c.rank[i] = r
	}
}

// sortBy sorts the activity indices p by key, ties by index.
func sortBy(p, key []int) {
	sort.Slice(p, func(a, b int) bool {
		ka, kb := key[p[a]], key[p[b]]
		if ka != kb {
			return ka < kb
		}
		return p[a] < p[b]
	})
}

func (c *disjunctive) insert(i int) { c.tree.insert(c.rank[i], c.ect[i], c.dur[i]) }

// ectWithout returns the ECT of the tree with activity i taken out.
func (c *disjunctive) ectWithout(i int) int {
	if !c.tree.isPresent(c.rank[i]) {
		return c.tree.ECT()
	}
	c.tree.remove(c.rank[i])
	e := c.tree.ECT()
	c.insert(i)
	return e
}

// overloadCheck fails when some set of activities cannot complete before
// the latest completion time of the set.
func (c *disjunctive) overloadCheck() error {
	c.tree.reset()
	for _, i := range c.byLCT {
		c.insert(i)
		if c.tree.ECT() > c.lct[i] {
			return ErrInconsistency
		}
	}
	return nil
}

// detectablePrecedence raises est[i] to the ECT of the activities that must
// precede i, that is the j with ect[i] > lst[j].
func (c *disjunctive) detectablePrecedence() (bool, error) {
	c.tree.reset()
	j := 0
	for _, i := range c.byECT {
		for j < len(c.byLST) && c.ect[i] > c.lst[c.byLST[j]] {
			c.insert(c.byLST[j])
			j++
		}
		c.bound[i] = max(c.est[i], c.ectWithout(i))
	}
	changed := false
	for i, s := range c.start {
		if c.bound[i] > c.est[i] {
			if err := s.RemoveBelow(c.bound[i]); err != nil {
				return false, err
			}
			changed = true
		}
	}
	return changed, nil
}

// notLast lowers lct[i] when i cannot be the last of the activities j with
// lst[j] < lct[i]: one of them must then run after i.
func (c *disjunctive) notLast() (bool, error) {
	c.tree.reset()
	j := 0
	for _, i := range c.byLCT {
		for j < len(c.byLST) && c.lct[i] > c.lst[c.byLST[j]] {
			c.insert(c.byLST[j])
			j++
		}
		c.bound[i] = c.lct[i]
		if c.ectWithout(i) <= c.lst[i] {
			continue
		}
		// The tree minus i is non-empty here; its largest lst is the last
		// inserted activity other than i.
		k := c.byLST[j-1]
		if k == i {
			k = c.byLST[j-2]
		}
		c.bound[i] = min(c.lct[i], c.lst[k])
	}
	changed := false
	for i, s := range c.start {
		if c.bound[i] < c.lct[i] {
			if err := s.RemoveAbove(c.bound[i] - c.dur[i]); err != nil {
				return false, err
			}
			changed = true
		}
	}
	return changed, nil
}
