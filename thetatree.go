package prune

import "math"

// noECT stands for the earliest completion time of an empty set. It is far
// enough from the int limits that adding durations to it cannot overflow.
const noECT = math.MinInt / 4

// thetaTree is Vilím's Θ-tree: a balanced binary tree whose leaves are the
// activities sorted by earliest start time. Each node stores, for the
// activities present in its subtree, the sum of durations and the earliest
// completion time of the whole subset. Insertion, removal and the query of
// the root ECT are O(log n).
type thetaTree struct {
	isize   int // number of internal nodes; leaf pos is at isize+pos
	sump    []int
	ect     []int
	present []bool
}

func newThetaTree(size int) *thetaTree {
	h := 0
	for 1<<h < size {
		h++
	}
	isize := 1<<h - 1
	n := isize + 1<<h
	t := &thetaTree{
		isize:   isize,
		sump:    make([]int, n),
		ect:     make([]int, n),
		present: make([]bool, 1<<h),
	}
	t.reset()
	return t
}

// reset empties the tree.
func (t *thetaTree) reset() {
	for i := range t.sump {
		t.sump[i] = 0
		t.ect[i] = noECT
	}
	for i := range t.present {
		t.present[i] = false
	}
}

// insert adds the activity at leaf pos with the given earliest completion
// time and duration.
func (t *thetaTree) insert(pos, ect, dur int) {
	node := t.isize + pos
	t.sump[node] = dur
	t.ect[node] = ect
	t.present[pos] = true
	t.update(node)
}

// remove takes the activity at leaf pos out of the tree.
func (t *thetaTree) remove(pos int) {
	node := t.isize + pos
	t.sump[node] = 0
	t.ect[node] = noECT
	t.present[pos] = false
	t.update(node)
}

func (t *thetaTree) isPresent(pos int) bool { return t.present[pos] }

// ECT returns the earliest completion time of the activities in the tree,
// or noECT when it is empty.
func (t *thetaTree) ECT() int { return t.ect[0] }

func (t *thetaTree) update(node int) {
	for node > 0 {
		node = (node - 1) / 2
		l, r := 2*node+1, 2*node+2
		t.sump[node] = t.sump[l] + t.sump[r]
		t.ect[node] = max(t.ect[r], t.ect[l]+t.sump[r])
	}
}
