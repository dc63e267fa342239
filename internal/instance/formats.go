package instance

import (
	"fmt"
	"io"
)

// QAP is a quadratic assignment instance: N facilities go to N distinct
// locations, minimizing the sum over facility pairs (i, j) of
// Weight[i][j] * Distance[loc(i)][loc(j)].
type QAP struct {
	N        int
	Weight   [][]int
	Distance [][]int
}

// ParseQAP reads N, then the N×N weight matrix, then the N×N distance
// matrix.
func ParseQAP(r io.Reader) (*QAP, error) {
	ir := newIntReader(r)
	n, err := ir.count("size")
	if err != nil {
		return nil, err
	}
	w, err := ir.matrix(n, "weight")
	if err != nil {
		return nil, err
	}
	d, err := ir.matrix(n, "distance")
	if err != nil {
		return nil, err
	}
	if err := ir.end(); err != nil {
		return nil, err
	}
	return &QAP{N: n, Weight: w, Distance: d}, nil
}

// TSP is a traveling salesman instance with an asymmetric distance matrix.
type TSP struct {
	N        int
	Distance [][]int
}

// ParseTSP reads N followed by the N×N distance matrix.
func ParseTSP(r io.Reader) (*TSP, error) {
	ir := newIntReader(r)
	n, err := ir.count("size")
	if err != nil {
		return nil, err
	}
	d, err := ir.matrix(n, "distance")
	if err != nil {
		return nil, err
	}
	if err := ir.end(); err != nil {
		return nil, err
	}
	return &TSP{N: n, Distance: d}, nil
}

// An Operation is one step of a job: it runs on Machine for Duration.
type Operation struct {
	Machine  int
	Duration int
}

// JobShop is a job-shop instance. Each job is a sequence of operations that
// run in order; each machine processes one operation at a time.
type JobShop struct {
	Machines int
	Jobs     [][]Operation
}

// ParseJobShop reads the number of jobs and machines, then for each job a
// line of machine/duration pairs, one per machine. Machines are numbered
// from 0.
func ParseJobShop(r io.Reader) (*JobShop, error) {
	ir := newIntReader(r)
	nJobs, err := ir.count("number of jobs")
	if err != nil {
		return nil, err
	}
	nMachines, err := ir.count("number of machines")
	if err != nil {
		return nil, err
	}
	js := &JobShop{Machines: nMachines, Jobs: make([][]Operation, nJobs)}
	for j := range js.Jobs {
		js.Jobs[j] = make([]Operation, nMachines)
		for k := range js.Jobs[j] {
			m, err := ir.nonNegative("machine")
			if err != nil {
				return nil, err
			}
			if m >= nMachines {
				return nil, fmt.Errorf("job %d uses machine %d, but there are %d machines", j, m, nMachines)
			}
			d, err := ir.nonNegative("duration")
			if err != nil {
				return nil, err
			}
			js.Jobs[j][k] = Operation{Machine: m, Duration: d}
		}
	}
	if err := ir.end(); err != nil {
		return nil, err
	}
	return js, nil
}

// Horizon is the sum of all durations, an upper bound on any makespan.
func (js *JobShop) Horizon() int {
	h := 0
	for _, job := range js.Jobs {
		for _, op := range job {
			h += op.Duration
		}
	}
	return h
}

// An Activity of an RCPSP instance.
type Activity struct {
	Duration   int
	Demand     []int // per resource
	Successors []int // indices of the activities that start after this one ends
}

// RCPSP is a resource-constrained project scheduling instance.
type RCPSP struct {
	Capacity   []int
	Activities []Activity
}

// ParseRCPSP reads the PSPLIB .rcp layout: the number of activities and of
// resources, the resource capacities, then per activity its duration, its
// demand on each resource, its number of successors and their 1-based
// indices.
func ParseRCPSP(r io.Reader) (*RCPSP, error) {
	ir := newIntReader(r)
	nActs, err := ir.count("number of activities")
	if err != nil {
		return nil, err
	}
	nRes, err := ir.count("number of resources")
	if err != nil {
		return nil, err
	}
	p := &RCPSP{Capacity: make([]int, nRes), Activities: make([]Activity, nActs)}
	for k := range p.Capacity {
		if p.Capacity[k], err = ir.nonNegative("capacity"); err != nil {
			return nil, err
		}
	}
	for i := range p.Activities {
		a := &p.Activities[i]
		if a.Duration, err = ir.nonNegative("duration"); err != nil {
			return nil, err
		}
		a.Demand = make([]int, nRes)
		for k := range a.Demand {
			if a.Demand[k], err = ir.nonNegative("demand"); err != nil {
				return nil, err
			}
			if a.Demand[k] > p.Capacity[k] {
				return nil, fmt.Errorf("activity %d demands %d of resource %d, over its capacity %d",
					i+1, a.Demand[k], k+1, p.Capacity[k])
			}
		}
		nSucc, err := ir.nonNegative("number of successors")
		if err != nil {
			return nil, err
		}
		for k := 0; k < nSucc; k++ {
			s, err := ir.next("successor")
			if err != nil {
				return nil, err
			}
			if s < 1 || s > nActs {
				return nil, fmt.Errorf("activity %d has successor %d out of range [1, %d]", i+1, s, nActs)
			}
			a.Successors = append(a.Successors, s-1)
		}
	}
	if err := ir.end(); err != nil {
		return nil, err
	}
	return p, nil
}

// Horizon is the sum of all durations, an upper bound on any makespan.
func (p *RCPSP) Horizon() int {
	h := 0
	for _, a := range p.Activities {
		h += a.Duration
	}
	return h
}
