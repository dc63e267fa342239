package models

import (
	"github.com/cespare/prune"
	"github.com/cespare/prune/internal/instance"
)

// buildRCPSP posts one cumulative per resource and the precedences, and
// minimizes the makespan.
func buildRCPSP(s *prune.Solver, inst *instance.RCPSP) (*model, error) {
	n := len(inst.Activities)
	horizon := inst.Horizon()
	start, err := prune.NewIntVarArray(s, n, 0, horizon)
	if err != nil {
		return nil, err
	}
	dur := make([]int, n)
	end := make([]prune.IntVar, n)
	for i, a := range inst.Activities {
		dur[i] = a.Duration
		end[i] = prune.Plus(start[i], a.Duration)
	}
	for r, capa := range inst.Capacity {
		demand := make([]int, n)
		for i, a := range inst.Activities {
			demand[i] = a.Demand[r]
		}
		c, err := prune.NewCumulative(start, dur, demand, capa)
		if err != nil {
			return nil, err
		}
		if err := s.Post(c); err != nil {
			return nil, err
		}
	}
	for i, a := range inst.Activities {
		for _, j := range a.Successors {
			if err := s.Post(prune.NewLessOrEqual(end[i], start[j])); err != nil {
				return nil, err
			}
		}
	}
	makespan, err := prune.MaximumVar(end...)
	if err != nil {
		return nil, err
	}
	if err := s.FixPoint(); err != nil {
		return nil, err
	}
	return &model{
		kind:      instance.KindRCPSP,
		s:         s,
		decision:  start,
		objective: makespan,
		heuristic: prune.LastConflict(prune.FirstUnbound(start...), prune.BoundImpactValue(makespan)),
	}, nil
}
