package models

import (
	"github.com/cespare/prune"
	"github.com/cespare/prune/internal/instance"
)

// buildJobShop models each operation by its start time. Operations of a job
// are chained; those of a machine are disjunctive.
func buildJobShop(s *prune.Solver, inst *instance.JobShop) (*model, error) {
	horizon := inst.Horizon()
	var starts []prune.IntVar
	onMachine := make([][]prune.IntVar, inst.Machines)
	durOnMachine := make([][]int, inst.Machines)
	var ends []prune.IntVar
	for _, job := range inst.Jobs {
		var prevEnd prune.IntVar
		for _, op := range job {
			st, err := prune.NewIntVar(s, 0, horizon-op.Duration)
			if err != nil {
				return nil, err
			}
			starts = append(starts, st)
			onMachine[op.Machine] = append(onMachine[op.Machine], st)
			durOnMachine[op.Machine] = append(durOnMachine[op.Machine], op.Duration)
			if prevEnd != nil {
				if err := s.Post(prune.NewLessOrEqual(prevEnd, st)); err != nil {
					return nil, err
				}
			}
			prevEnd = prune.Plus(st, op.Duration)
		}
		if prevEnd != nil {
			ends = append(ends, prevEnd)
		}
	}
	for m := range onMachine {
		if len(onMachine[m]) == 0 {
			continue
		}
		d, err := prune.NewDisjunctive(onMachine[m], durOnMachine[m])
		if err != nil {
			return nil, err
		}
		if err := s.Post(d); err != nil {
			return nil, err
		}
	}
	makespan, err := prune.MaximumVar(ends...)
	if err != nil {
		return nil, err
	}
	if err := s.FixPoint(); err != nil {
		return nil, err
	}
	return &model{
		kind:      instance.KindJobShop,
		s:         s,
		decision:  starts,
		objective: makespan,
		heuristic: prune.ConflictOrdering(prune.SmallestDomain(starts...), prune.MinValue),
	}, nil
}
