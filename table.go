package prune

import (
	"fmt"
	"math/bits"
)

// bitSet is a fixed-size set of tuple indices.
type bitSet []uint64

func newBitSet(n int) bitSet { return make(bitSet, (n+63)/64) }

func (b bitSet) set(i int) { b[i/64] |= 1 << uint(i%64) }

func (b bitSet) setAll(n int) {
	for i := range b {
		b[i] = ^uint64(0)
	}
	if r := n % 64; r != 0 {
		b[len(b)-1] = 1<<uint(r) - 1
	}
}

func (b bitSet) clear() {
	for i := range b {
		b[i] = 0
	}
}

func (b bitSet) or(o bitSet) {
	for i := range b {
		b[i] |= o[i]
	}
}

func (b bitSet) and(o bitSet) {
	for i := range b {
		b[i] &= o[i]
	}
}

func (b bitSet) intersects(o bitSet) bool {
	for i := range b {
		if b[i]&o[i] != 0 {
			return true
		}
	}
	return false
}

func (b bitSet) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

type table struct {
	ConstraintBase
	x      []IntVar
	mins   []int
	tuples int
	// supports[i][v-mins[i]] is the set of tuples compatible with x[i] = v.
	supports  [][]bitSet
	supported bitSet
	tmp       bitSet
	buf       []int
}

// NewTable returns the constraint that x takes the values of one of the rows
// of tuples. A row entry equal to star matches any value.
func NewTable(x []IntVar, tuples [][]int, star int) (Constraint, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("prune: table over no variables")
	}
	for r, t := range tuples {
		if len(t) != len(x) {
			return nil, fmt.Errorf("prune: table row %d has %d entries, want %d", r, len(t), len(x))
		}
	}
	c := &table{
		ConstraintBase: NewConstraintBase(x[0].Solver()),
		x:              x,
		mins:           make([]int, len(x)),
		tuples:         len(tuples),
		supports:       make([][]bitSet, len(x)),
		supported:      newBitSet(len(tuples)),
		tmp:            newBitSet(len(tuples)),
	}
	maxSize := 0
	for i, xi := range x {
		c.mins[i] = xi.Min()
		c.supports[i] = make([]bitSet, xi.Max()-xi.Min()+1)
		for j := range c.supports[i] {
			c.supports[i][j] = newBitSet(len(tuples))
		}
		maxSize = max(maxSize, xi.Size())
	}
	c.buf = make([]int, maxSize)
	for r, t := range tuples {
		for i, v := range t {
			if v == star {
				for j := range c.supports[i] {
					c.supports[i][j].set(r)
				}
			} else if x[i].Contains(v) {
				c.supports[i][v-c.mins[i]].set(r)
			}
		}
	}
	return c, nil
}

func (c *table) Post() error {
	for _, x := range c.x {
		x.PropagateOnDomainChange(c)
	}
	return c.Propagate()
}

func (c *table) Propagate() error {
	c.supported.setAll(c.tuples)
	for i, x := range c.x {
		c.tmp.clear()
		n := x.FillArray(c.buf)
		for _, v := range c.buf[:n] {
			c.tmp.or(c.supports[i][v-c.mins[i]])
		}
		c.supported.and(c.tmp)
	}
	if c.supported.count() == 0 {
		return ErrInconsistency
	}
	for i, x := range c.x {
		n := x.FillArray(c.buf)
		for _, v := range c.buf[:n] {
			if !c.supported.intersects(c.supports[i][v-c.mins[i]]) {
				if err := x.Remove(v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
