package prune

import (
	"fmt"
	"strings"
)

// domainListener receives the events produced by a domain mutation.
// For one mutation they fire in this order: change, changeMin/changeMax,
// bind. empty is called instead of all of them when the mutation would
// leave no value; its result is returned to the caller.
type domainListener interface {
	empty() error
	bind()
	change()
	changeMin()
	changeMax()
}

// sparseSet is a reversible set of integers over a fixed range [ofs, ofs+n).
//
// values is a permutation of the range where the first size entries are the
// members; indexes is its inverse. Removing a value swaps it past the end of
// the member prefix, so restoring size restores the set. min and max are
// kept relative to ofs.
type sparseSet struct {
	values  []int
	indexes []int
	size    *StateInt
	min     *StateInt
	max     *StateInt
	ofs     int
	n       int
}

func newSparseSet(t *Trail, n, ofs int) *sparseSet {
	s := &sparseSet{
		values:  make([]int, n),
		indexes: make([]int, n),
		size:    t.NewStateInt(n),
		min:     t.NewStateInt(0),
		max:     t.NewStateInt(n - 1),
		ofs:     ofs,
		n:       n,
	}
	for i := range s.values {
		s.values[i] = i
		s.indexes[i] = i
	}
	return s
}

func (s *sparseSet) Size() int     { return s.size.Value() }
func (s *sparseSet) IsEmpty() bool { return s.size.Value() == 0 }
func (s *sparseSet) Min() int      { return s.min.Value() + s.ofs }
func (s *sparseSet) Max() int      { return s.max.Value() + s.ofs }

func (s *sparseSet) Contains(v int) bool {
	v -= s.ofs
	if v < 0 || v >= s.n {
		return false
	}
	return s.indexes[v] < s.size.Value()
}

func (s *sparseSet) FillArray(dst []int) int {
	size := s.size.Value()
	for i := 0; i < size; i++ {
		dst[i] = s.values[i] + s.ofs
	}
	return size
}

func (s *sparseSet) exchange(v1, v2 int) {
	i1, i2 := s.indexes[v1], s.indexes[v2]
	s.values[i1] = v2
	s.values[i2] = v1
	s.indexes[v1] = i2
	s.indexes[v2] = i1
}

// Remove removes v and reports whether it was a member.
func (s *sparseSet) Remove(v int) bool {
	if !s.Contains(v) {
		return false
	}
	v -= s.ofs
	size := s.size.Value()
	s.exchange(v, s.values[size-1])
	s.size.Decrement()
	if size-1 == 0 {
		return true
	}
	if v == s.min.Value() {
		s.updateMinValRemoved(v)
	}
	if v == s.max.Value() {
		s.updateMaxValRemoved(v)
	}
	return true
}

func (s *sparseSet) updateMinValRemoved(v int) {
	for w := v + 1; w <= s.max.Value(); w++ {
		if s.indexes[w] < s.size.Value() {
			s.min.SetValue(w)
			return
		}
	}
}

func (s *sparseSet) updateMaxValRemoved(v int) {
	for w := v - 1; w >= s.min.Value(); w-- {
		if s.indexes[w] < s.size.Value() {
			s.max.SetValue(w)
			return
		}
	}
}

// RemoveAllBut keeps only v, which must be a member.
func (s *sparseSet) RemoveAllBut(v int) {
	v -= s.ofs
	s.exchange(v, s.values[0])
	s.min.SetValue(v)
	s.max.SetValue(v)
	s.size.SetValue(1)
}

// RemoveBelow removes every member smaller than v, walking up from the
// current minimum.
func (s *sparseSet) RemoveBelow(v int) {
	for w := s.Min(); w < v && s.Size() > 0; w = s.Min() {
		s.Remove(w)
	}
}

// RemoveAbove removes every member larger than v, walking down from the
// current maximum.
func (s *sparseSet) RemoveAbove(v int) {
	for w := s.Max(); w > v && s.Size() > 0; w = s.Max() {
		s.Remove(w)
	}
}

func (s *sparseSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	size := s.Size()
	for i := 0; i < size; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprint(&b, s.values[i]+s.ofs)
	}
	b.WriteByte('}')
	return b.String()
}

// A domain is the reversible set of values of one variable. Mutations that
// would empty it are refused and reported through the listener.
type domain struct {
	set *sparseSet
}

func newDomain(t *Trail, min, max int) *domain {
	return &domain{set: newSparseSet(t, max-min+1, min)}
}

func (d *domain) Min() int            { return d.set.Min() }
func (d *domain) Max() int            { return d.set.Max() }
func (d *domain) Size() int           { return d.set.Size() }
func (d *domain) Contains(v int) bool { return d.set.Contains(v) }
func (d *domain) IsBound() bool       { return d.set.Size() == 1 }
func (d *domain) FillArray(dst []int) int {
	return d.set.FillArray(dst)
}
func (d *domain) String() string { return d.set.String() }

func (d *domain) Remove(v int, l domainListener) error {
	if !d.set.Contains(v) {
		return nil
	}
	if d.set.Size() == 1 {
		return l.empty()
	}
	minChanged := d.Min() == v
	maxChanged := d.Max() == v
	d.set.Remove(v)
	l.change()
	if minChanged {
		l.changeMin()
	}
	if maxChanged {
		l.changeMax()
	}
	if d.set.Size() == 1 {
		l.bind()
	}
	return nil
}

func (d *domain) RemoveAllBut(v int, l domainListener) error {
	if !d.set.Contains(v) {
		return l.empty()
	}
	if d.set.Size() == 1 {
		return nil
	}
	minChanged := d.Min() != v
	maxChanged := d.Max() != v
	d.set.RemoveAllBut(v)
	l.change()
	if minChanged {
		l.changeMin()
	}
	if maxChanged {
		l.changeMax()
	}
	l.bind()
	return nil
}

func (d *domain) RemoveBelow(v int, l domainListener) error {
	if d.Min() >= v {
		return nil
	}
	if d.Max() < v {
		return l.empty()
	}
	d.set.RemoveBelow(v)
	l.change()
	l.changeMin()
	if d.set.Size() == 1 {
		l.bind()
	}
	return nil
}

func (d *domain) RemoveAbove(v int, l domainListener) error {
	if d.Max() <= v {
		return nil
	}
	if d.Min() > v {
		return l.empty()
	}
	d.set.RemoveAbove(v)
	l.change()
	l.changeMax()
	if d.set.Size() == 1 {
		l.bind()
	}
	return nil
}
