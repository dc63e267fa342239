package models

import (
	"math"

	"github.com/cespare/prune"
	"github.com/cespare/prune/internal/instance"
)

// buildTSP uses the successor model: succ[i] is the city visited after i.
func buildTSP(s *prune.Solver, inst *instance.TSP) (*model, error) {
	n := inst.N
	succ, err := prune.NewIntVarArray(s, n, 0, n-1)
	if err != nil {
		return nil, err
	}
	circuit, err := prune.NewCircuit(succ...)
	if err != nil {
		return nil, err
	}
	if err := s.Post(circuit); err != nil {
		return nil, err
	}
	dist := make([]prune.IntVar, n)
	for i := range succ {
		if dist[i], err = prune.ElementVar(inst.Distance[i], succ[i]); err != nil {
			return nil, err
		}
	}
	total, err := prune.SumVar(dist...)
	if err != nil {
		return nil, err
	}
	if err := s.FixPoint(); err != nil {
		return nil, err
	}
	return &model{
		kind:      instance.KindTSP,
		s:         s,
		decision:  succ,
		objective: total,
		heuristic: tspBranching(inst, succ),
	}, nil
}

// tspBranching is min-regret: it branches on the city whose two closest
// possible successors differ most, trying the closest one first.
func tspBranching(inst *instance.TSP, succ []prune.IntVar) prune.Branching {
	idx := make([]int, len(succ))
	for i := range idx {
		idx[i] = i
	}
	buf := make([]int, len(succ))
	regret := func(i int) int {
		d1, d2 := math.MaxInt, math.MaxInt
		for _, j := range buf[:succ[i].FillArray(buf)] {
			switch d := inst.Distance[i][j]; {
			case d < d1:
				d1, d2 = d, d1
			case d < d2:
				d2 = d
			}
		}
		if d2 == math.MaxInt {
			return 0
		}
		return d1 - d2
	}
	return func() []prune.Alternative {
		i, ok := prune.SelectMin(idx, func(i int) bool { return !succ[i].IsBound() }, regret)
		if !ok {
			return nil
		}
		x := succ[i]
		best, bestD := x.Min(), math.MaxInt
		for _, j := range buf[:x.FillArray(buf)] {
			if d := inst.Distance[i][j]; d < bestD {
				best, bestD = j, d
			}
		}
		return prune.Branch(
			func() error { return prune.Assign(x, best) },
			func() error { return prune.Exclude(x, best) },
		)
	}
}
