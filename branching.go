package prune

import (
	"fmt"
	"math"
)

// An Alternative is one branch of a search node. It usually posts a
// constraint and propagates; returning ErrInconsistency marks the branch as
// failed.
type Alternative func() error

// A Branching returns the alternatives of the current node, leftmost first.
// No alternatives means every decision has been made: the node is a
// solution.
type Branching func() []Alternative

// Branch is a convenience for building the result of a Branching.
func Branch(alts ...Alternative) []Alternative { return alts }

// SelectMin returns the element of xs satisfying p with the smallest key,
// breaking ties by position. ok is false when no element satisfies p.
func SelectMin[T any](xs []T, p func(T) bool, key func(T) int) (best T, ok bool) {
	bestKey := math.MaxInt
	for _, x := range xs {
		if !p(x) {
			continue
		}
		if k := key(x); !ok || k < bestKey {
			best, bestKey, ok = x, k, true
		}
	}
	return best, ok
}

func unbound(x IntVar) bool { return !x.IsBound() }

// FirstFail branches on the unbound variable with the smallest domain:
// left x = min(x), right x != min(x).
func FirstFail(xs ...IntVar) Branching {
	return func() []Alternative {
		x, ok := SelectMin(xs, unbound, IntVar.Size)
		if !ok {
			return nil
		}
		v := x.Min()
		return Branch(
			func() error { return Assign(x, v) },
			func() error { return Exclude(x, v) },
		)
	}
}

// FirstUnbound returns a variable selector picking the first unbound
// variable of xs, or nil once all are bound.
func FirstUnbound(xs ...IntVar) func() IntVar {
	return func() IntVar {
		for _, x := range xs {
			if !x.IsBound() {
				return x
			}
		}
		return nil
	}
}

// SmallestDomain returns a variable selector implementing first-fail.
func SmallestDomain(xs ...IntVar) func() IntVar {
	return func() IntVar {
		x, ok := SelectMin(xs, unbound, IntVar.Size)
		if !ok {
			return nil
		}
		return x
	}
}

// MinValue is the value selector choosing the smallest value.
func MinValue(x IntVar) int { return x.Min() }

// And tries each branching in turn and uses the first one that still has
// alternatives.
func And(bs ...Branching) Branching {
	return func() []Alternative {
		for _, b := range bs {
			if alts := b(); len(alts) > 0 {
				return alts
			}
		}
		return nil
	}
}

// LimitedDiscrepancy prunes the alternatives of b whose discrepancy exceeds
// maxD. Taking the i-th alternative of a node costs i discrepancies. The
// discrepancy of the current node lives on the trail of s, so the returned
// branching can drive any number of searches.
func LimitedDiscrepancy(s *Solver, b Branching, maxD int) Branching {
	if maxD < 0 {
		panic(fmt.Sprintf("prune: negative discrepancy limit %d", maxD))
	}
	cur := s.trail.NewStateInt(0)
	return func() []Alternative {
		alts := b()
		if len(alts) == 0 {
			return nil
		}
		// An alternative never raises cur above maxD, so n >= 1.
		n := min(maxD-cur.Value()+1, len(alts))
		bounded := make([]Alternative, n)
		for i := 0; i < n; i++ {
			d, alt := cur.Value()+i, alts[i]
			bounded[i] = func() error {
				cur.SetValue(d)
				return alt()
			}
		}
		return bounded
	}
}

// ConflictOrdering implements conflict ordering search: it branches first on
// the unbound variable that failed most recently, falling back to varSel.
// Branches are x = val(x) and x != val(x).
func ConflictOrdering(varSel func() IntVar, valSel func(IntVar) int) Branching {
	stamps := make(map[IntVar]int)
	conflicts := 0
	record := func(x IntVar, err error) error {
		if IsInconsistency(err) {
			conflicts++
			stamps[x] = conflicts
		}
		return err
	}
	return func() []Alternative {
		var x IntVar
		best := 0
		for y, stamp := range stamps {
			if stamp > best && !y.IsBound() {
				x, best = y, stamp
			}
		}
		if x == nil {
			if x = varSel(); x == nil {
				return nil
			}
		}
		v := valSel(x)
		return Branch(
			func() error { return record(x, Assign(x, v)) },
			func() error { return record(x, Exclude(x, v)) },
		)
	}
}

// LastConflict branches on the variable of the last failed branch for as
// long as it is unbound, falling back to varSel.
func LastConflict(varSel func() IntVar, valSel func(IntVar) int) Branching {
	var last IntVar
	record := func(x IntVar, err error) error {
		if IsInconsistency(err) {
			last = x
		}
		return err
	}
	return func() []Alternative {
		x := last
		if x == nil || x.IsBound() {
			if x = varSel(); x == nil {
				return nil
			}
		}
		v := valSel(x)
		return Branch(
			func() error { return record(x, Assign(x, v)) },
			func() error { return record(x, Exclude(x, v)) },
		)
	}
}

// BoundImpactValue returns a value selector choosing, for x, the value whose
// assignment leaves the lowest lower bound on obj. Each candidate is tried
// inside a temporary trail level. Ties go to the smaller value.
func BoundImpactValue(obj IntVar) func(IntVar) int {
	return func(x IntVar) int {
		t := x.Solver().Trail()
		dom := make([]int, x.Size())
		n := x.FillArray(dom)
		best, bestObj := x.Min(), math.MaxInt
		for _, v := range dom[:n] {
			level := t.Level()
			t.SaveState()
			if err := Assign(x, v); err == nil {
				if o := obj.Min(); o < bestObj || (o == bestObj && v < best) {
					best, bestObj = v, o
				}
			}
			t.RestoreStateUntil(level)
		}
		return best
	}
}
