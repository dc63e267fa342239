package prune

import (
	"fmt"
	"math"
	"sort"
)

// profileRect is a maximal interval [start, end) of constant height in the
// resource usage profile.
type profileRect struct {
	start, end, height int
}

// profile is the usage over time of a set of rectangles. It covers the whole
// int range with rectangles sorted by start.
type profile []profileRect

type profileEvent struct {
	t, delta int
}

// buildProfile sums the given rectangles into a profile. Empty rectangles
// are ignored.
func buildProfile(rects []profileRect) profile {
	events := make([]profileEvent, 0, 2*len(rects))
	for _, r := range rects {
		if r.start < r.end && r.height != 0 {
			events = append(events, profileEvent{r.start, r.height}, profileEvent{r.end, -r.height})
		}
	}
	sort.Slice(events, func(a, b int) bool { return events[a].t < events[b].t })
	p := profile{}
	from, height := math.MinInt, 0
	for k := 0; k < len(events); {
		t := events[k].t
		h := height
		for ; k < len(events) && events[k].t == t; k++ {
			h += events[k].delta
		}
		if h == height {
			continue
		}
		p = append(p, profileRect{from, t, height})
		from, height = t, h
	}
	return append(p, profileRect{from, math.MaxInt, height})
}

// rectIndex returns the index of the rectangle containing t.
func (p profile) rectIndex(t int) int {
	return sort.Search(len(p), func(i int) bool { return p[i].end > t })
}

// cumulative states that at any time the summed demand of the running
// activities does not exceed the capacity. Filtering is a time-table over
// compulsory parts: an activity with lst < ect certainly runs on [lst, ect),
// the profile of these parts must fit the capacity and each activity start
// is pushed past the profile peaks it cannot share. The mirror filters the
// upper bounds.
type cumulative struct {
	ConstraintBase
	start  []IntVar
	dur    []int
	demand []int
	capa   int
	mirror bool
	rects  []profileRect
}

// NewCumulative returns the constraint that activities with the given
// starts, durations and demands never use more than capa units of a
// resource at the same time.
func NewCumulative(start []IntVar, dur, demand []int, capa int) (Constraint, error) {
	return newCumulative(start, dur, demand, capa, true)
}

func newCumulative(start []IntVar, dur, demand []int, capa int, mirror bool) (*cumulative, error) {
	if len(start) == 0 {
		return nil, fmt.Errorf("prune: cumulative over no activities")
	}
	if len(start) != len(dur) || len(start) != len(demand) {
		return nil, fmt.Errorf("prune: cumulative has %d starts, %d durations and %d demands",
			len(start), len(dur), len(demand))
	}
	if capa < 0 {
		return nil, fmt.Errorf("prune: negative capacity %d", capa)
	}
	for i := range start {
		if dur[i] < 0 || demand[i] < 0 {
			return nil, fmt.Errorf("prune: activity %d has negative duration or demand", i)
		}
	}
	return &cumulative{
		ConstraintBase: NewConstraintBase(start[0].Solver()),
		start:          start,
		dur:            dur,
		demand:         demand,
		capa:           capa,
		mirror:         mirror,
		rects:          make([]profileRect, len(start)),
	}, nil
}

func (c *cumulative) Post() error {
	for i, s := range c.start {
		if c.demand[i] > c.capa && c.dur[i] > 0 {
			return ErrInconsistency
		}
		s.PropagateOnBoundChange(c)
	}
	if c.mirror {
		ms := make([]IntVar, len(c.start))
		for i, s := range c.start {
			ms[i] = Minus(Plus(s, c.dur[i]))
		}
		m, err := newCumulative(ms, c.dur, c.demand, c.capa, false)
		if err != nil {
			return err
		}
		if err := c.solver.PostNoFixPoint(m); err != nil {
			return err
		}
	}
	return c.Propagate()
}

func (c *cumulative) Propagate() error {
	for i, s := range c.start {
		c.rects[i] = profileRect{s.Max(), s.Min() + c.dur[i], c.demand[i]}
	}
	p := buildProfile(c.rects)
	for _, r := range p {
		if r.height > c.capa {
			return ErrInconsistency
		}
	}
	for i, s := range c.start {
		if s.IsBound() || c.dur[i] == 0 || c.demand[i] == 0 {
			continue
		}
		if err := s.RemoveBelow(c.earliestFit(p, i)); err != nil {
			return err
		}
	}
	return nil
}

// earliestFit returns the smallest start from est[i] at which activity i
// fits under the profile, its own compulsory part discounted.
func (c *cumulative) earliestFit(p profile, i int) int {
	est, lst := c.start[i].Min(), c.start[i].Max()
	ect := est + c.dur[i]
	s := est
	for t := s; t < s+c.dur[i]; {
		r := p[p.rectIndex(t)]
		h := r.height
		if lst <= t && t < ect {
			h -= c.demand[i]
		}
		// The height seen by i is constant on [t, next).
		next := r.end
		if t < lst && lst < next {
			next = lst
		}
		if t < ect && ect < next {
			next = ect
		}
		if h+c.demand[i] > c.capa {
			s = next
			if s > lst {
				return s
			}
		}
		t = next
	}
	return s
}
