package prune

// digraph is a directed graph over nodes 0..n-1 stored as adjacency lists.
// Lists are truncated rather than reallocated so one graph can be rebuilt at
// every propagation.
type digraph struct {
	out [][]int
}

func newDigraph(n int) *digraph {
	return &digraph{out: make([][]int, n)}
}

func (g *digraph) n() int { return len(g.out) }

func (g *digraph) clear() {
	for i := range g.out {
		g.out[i] = g.out[i][:0]
	}
}

func (g *digraph) link(from, to int) {
	g.out[from] = append(g.out[from], to)
}

// sccFinder computes strongly connected components with Tarjan's algorithm.
// Its buffers are reused across calls.
type sccFinder struct {
	index   []int
	low     []int
	onStack []bool
	stack   []int
	comp    []int
	counter int
	ncomp   int
}

// components labels each node of g with the id of its strongly connected
// component. The returned slice is owned by f.
func (f *sccFinder) components(g *digraph) []int {
	n := g.n()
	if cap(f.index) < n {
		f.index = make([]int, n)
		f.low = make([]int, n)
		f.onStack = make([]bool, n)
		f.comp = make([]int, n)
	}
	f.index = f.index[:n]
	f.low = f.low[:n]
	f.onStack = f.onStack[:n]
	f.comp = f.comp[:n]
	for i := 0; i < n; i++ {
		f.index[i] = -1
		f.onStack[i] = false
	}
	f.stack = f.stack[:0]
	f.counter = 0
	f.ncomp = 0
	for v := 0; v < n; v++ {
		if f.index[v] < 0 {
			f.visit(g, v)
		}
	}
	return f.comp
}

func (f *sccFinder) visit(g *digraph, v int) {
	f.index[v] = f.counter
	f.low[v] = f.counter
	f.counter++
	f.stack = append(f.stack, v)
	f.onStack[v] = true
	for _, w := range g.out[v] {
		switch {
		case f.index[w] < 0:
			f.visit(g, w)
			f.low[v] = min(f.low[v], f.low[w])
		case f.onStack[w]:
			f.low[v] = min(f.low[v], f.index[w])
		}
	}
	if f.low[v] != f.index[v] {
		return
	}
	for {
		w := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		f.onStack[w] = false
		f.comp[w] = f.ncomp
		if w == v {
			break
		}
	}
	f.ncomp++
}
