package prune

import "math"

const noValue = math.MinInt

// maximumMatching maintains a maximum matching between variables and the
// values of their domains. The matching is kept between calls and repaired
// incrementally: pairs whose value left the domain are dropped and the
// unmatched variables are augmented along alternating paths. Any matching is
// a valid starting point, so it needs no trail.
type maximumMatching struct {
	x        []IntVar
	match    []int // value matched to each variable, or noValue
	valMatch []int // variable matched to each value - min, or -1
	size     int
	min, max int

	magic   int
	varSeen []int
	valSeen []int
}

func newMaximumMatching(x []IntVar) *maximumMatching {
	m := &maximumMatching{
		x:       x,
		match:   make([]int, len(x)),
		varSeen: make([]int, len(x)),
		min:     math.MaxInt,
		max:     math.MinInt,
	}
	for _, xi := range x {
		m.min = min(m.min, xi.Min())
		m.max = max(m.max, xi.Max())
	}
	nVal := m.max - m.min + 1
	m.valMatch = make([]int, nVal)
	m.valSeen = make([]int, nVal)
	for i := range m.valMatch {
		m.valMatch[i] = -1
	}
	for i := range m.match {
		m.match[i] = noValue
	}
	m.findInitialMatching()
	return m
}

// compute repairs the matching against the current domains, copies it into
// result and returns its size.
func (m *maximumMatching) compute(result []int) int {
	for i, xi := range m.x {
		if v := m.match[i]; v != noValue && !xi.Contains(v) {
			m.valMatch[v-m.min] = -1
			m.match[i] = noValue
			m.size--
		}
	}
	m.findMaximalMatching()
	copy(result, m.match)
	return m.size
}

func (m *maximumMatching) findInitialMatching() {
	m.size = 0
	for i, xi := range m.x {
		for v := xi.Min(); v <= xi.Max(); v++ {
			if m.valMatch[v-m.min] < 0 && xi.Contains(v) {
				m.match[i] = v
				m.valMatch[v-m.min] = i
				m.size++
				break
			}
		}
	}
}

func (m *maximumMatching) findMaximalMatching() {
	if m.size == len(m.x) {
		return
	}
	for i := range m.x {
		if m.match[i] != noValue {
			continue
		}
		m.magic++
		if m.augmentFromVar(i) {
			m.size++
		}
	}
}

func (m *maximumMatching) augmentFromVar(i int) bool {
	if m.varSeen[i] == m.magic {
		return false
	}
	m.varSeen[i] = m.magic
	xi := m.x[i]
	for v := xi.Min(); v <= xi.Max(); v++ {
		if m.match[i] == v || !xi.Contains(v) {
			continue
		}
		if m.augmentFromVal(v) {
			m.match[i] = v
			m.valMatch[v-m.min] = i
			return true
		}
	}
	return false
}

func (m *maximumMatching) augmentFromVal(v int) bool {
	if m.valSeen[v-m.min] == m.magic {
		return false
	}
	m.valSeen[v-m.min] = m.magic
	j := m.valMatch[v-m.min]
	return j < 0 || m.augmentFromVar(j)
}
