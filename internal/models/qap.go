package models

import (
	"math"

	"github.com/cespare/prune"
	"github.com/cespare/prune/internal/instance"
)

// buildQAP places facility i at location x[i]. The cost of a pair is read
// from the flattened distance matrix at index x[i]*n + x[j].
func buildQAP(s *prune.Solver, inst *instance.QAP) (*model, error) {
	n := inst.N
	x, err := prune.NewIntVarArray(s, n, 0, n-1)
	if err != nil {
		return nil, err
	}
	ad, err := prune.NewAllDifferentDC(x...)
	if err != nil {
		return nil, err
	}
	if err := s.Post(ad); err != nil {
		return nil, err
	}
	flat := make([]int, 0, n*n)
	for _, row := range inst.Distance {
		flat = append(flat, row...)
	}
	var terms []prune.IntVar
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			w := inst.Weight[i][j]
			if w == 0 || i == j {
				continue
			}
			idx, err := prune.SumVar(prune.Mul(x[i], n), x[j])
			if err != nil {
				return nil, err
			}
			d, err := prune.ElementVar(flat, idx)
			if err != nil {
				return nil, err
			}
			terms = append(terms, prune.Mul(d, w))
		}
	}
	var total prune.IntVar
	if len(terms) == 0 {
		total = prune.MustIntVar(s, 0, 0)
	} else if total, err = prune.SumVar(terms...); err != nil {
		return nil, err
	}
	if err := s.FixPoint(); err != nil {
		return nil, err
	}
	return &model{
		kind:      instance.KindQAP,
		s:         s,
		decision:  x,
		objective: total,
		heuristic: qapBranching(inst, x),
	}, nil
}

// qapBranching places first the facility of the heaviest pair with an
// unplaced end, at the location closest to a location still open for the
// other end.
func qapBranching(inst *instance.QAP, x []prune.IntVar) prune.Branching {
	type pair struct{ i, j int }
	var pairs []pair
	for i := range x {
		for j := range x {
			pairs = append(pairs, pair{i, j})
		}
	}
	buf := make([]int, len(x))
	bufJ := make([]int, len(x))
	return func() []prune.Alternative {
		sel, ok := prune.SelectMin(pairs,
			func(p pair) bool { return !x[p.i].IsBound() },
			func(p pair) int { return -inst.Weight[p.i][p.j] })
		if !ok {
			return nil
		}
		xi, xj := x[sel.i], x[sel.j]
		di := buf[:xi.FillArray(buf)]
		dj := bufJ[:xj.FillArray(bufJ)]
		best, bestD := xi.Min(), math.MaxInt
		for _, a := range di {
			for _, b := range dj {
				if a != b && inst.Distance[a][b] < bestD {
					best, bestD = a, inst.Distance[a][b]
				}
			}
		}
		return prune.Branch(
			func() error { return prune.Assign(xi, best) },
			func() error { return prune.Exclude(xi, best) },
		)
	}
}
