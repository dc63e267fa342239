package models

import (
	"cmp"
	"slices"

	"github.com/cespare/prune"
	"github.com/cespare/prune/internal/instance"
)

// buildMaxSAT minimizes the number of violated clauses. Each clause gets a
// reified truth value; the objective sums their negations.
func buildMaxSAT(s *prune.Solver, inst *instance.CNF) (*model, error) {
	x := make([]prune.BoolVar, inst.Vars)
	decision := make([]prune.IntVar, inst.Vars)
	for i := range x {
		x[i] = prune.NewBoolVar(s)
		decision[i] = x[i]
	}
	lit := func(l int) prune.BoolVar {
		if l < 0 {
			return prune.Not(x[-l-1])
		}
		return x[l-1]
	}
	alwaysViolated := 0
	var violated []prune.IntVar
	for _, clause := range inst.Clauses {
		if len(clause) == 0 {
			alwaysViolated++
			continue
		}
		lits := make([]prune.BoolVar, len(clause))
		for j, l := range clause {
			lits[j] = lit(l)
		}
		sat := prune.NewBoolVar(s)
		c, err := prune.NewIsOr(sat, lits)
		if err != nil {
			return nil, err
		}
		if err := s.Post(c); err != nil {
			return nil, err
		}
		violated = append(violated, prune.Not(sat))
	}
	violated = append(violated, prune.MustIntVar(s, alwaysViolated, alwaysViolated))
	total, err := prune.SumVar(violated...)
	if err != nil {
		return nil, err
	}
	if err := s.FixPoint(); err != nil {
		return nil, err
	}
	return &model{
		kind:      instance.KindMaxSAT,
		s:         s,
		decision:  decision,
		objective: total,
		heuristic: maxSATBranching(inst, x),
	}, nil
}

// maxSATBranching decides variables by decreasing number of occurrences,
// first with the polarity that occurs more often.
func maxSATBranching(inst *instance.CNF, x []prune.BoolVar) prune.Branching {
	pos := make([]int, len(x))
	neg := make([]int, len(x))
	for _, clause := range inst.Clauses {
		for _, l := range clause {
			if l > 0 {
				pos[l-1]++
			} else {
				neg[-l-1]++
			}
		}
	}
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(pos[b]+neg[b], pos[a]+neg[a])
	})
	return func() []prune.Alternative {
		for _, i := range order {
			b := x[i]
			if b.IsBound() {
				continue
			}
			first := pos[i] >= neg[i]
			return prune.Branch(
				func() error { return b.AssignBool(first) },
				func() error { return b.AssignBool(!first) },
			)
		}
		return nil
	}
}
