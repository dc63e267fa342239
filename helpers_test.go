package prune

import (
	"fmt"
	"sort"
	"testing"
)

// enumerate calls f with every tuple of the cartesian product of the given
// domains.
func enumerate(doms [][]int, f func([]int)) {
	tuple := make([]int, len(doms))
	var rec func(i int)
	rec = func(i int) {
		if i == len(doms) {
			f(tuple)
			return
		}
		for _, v := range doms[i] {
			tuple[i] = v
			rec(i + 1)
		}
	}
	rec(0)
}

// bruteForce returns, as sorted strings, the tuples of the product of doms
// satisfying ok.
func bruteForce(doms [][]int, ok func([]int) bool) []string {
	var sols []string
	enumerate(doms, func(tuple []int) {
		if ok(tuple) {
			sols = append(sols, fmt.Sprint(tuple))
		}
	})
	sort.Strings(sols)
	return sols
}

// searchAll returns, as sorted strings, every solution found by a complete
// first-fail search over xs.
func searchAll(t *testing.T, xs []IntVar) []string {
	t.Helper()
	var sols []string
	search := NewDFSearch(xs[0].Solver(), FirstFail(xs...))
	search.OnSolution(func() { sols = append(sols, fmt.Sprint(values(xs))) })
	stats, err := search.Solve(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Completed {
		t.Fatalf("search not completed: %v", stats)
	}
	sort.Strings(sols)
	return sols
}

func values(xs []IntVar) []int {
	vs := make([]int, len(xs))
	for i, x := range xs {
		vs[i] = x.Min()
	}
	return vs
}

func domainOf(x IntVar) []int {
	buf := make([]int, x.Size())
	buf = buf[:x.FillArray(buf)]
	sort.Ints(buf)
	return buf
}

func domainsOf(xs []IntVar) [][]int {
	doms := make([][]int, len(xs))
	for i, x := range xs {
		doms[i] = domainOf(x)
	}
	return doms
}

// must unwraps the result of a constraint constructor.
func must(c Constraint, err error) Constraint {
	if err != nil {
		panic(err)
	}
	return c
}

func mustPost(t *testing.T, c Constraint) {
	t.Helper()
	if err := c.base().Solver().Post(c); err != nil {
		t.Fatalf("Post: %v", err)
	}
}

func mustVars(t *testing.T, s *Solver, n, min, max int) []IntVar {
	t.Helper()
	xs, err := NewIntVarArray(s, n, min, max)
	if err != nil {
		t.Fatal(err)
	}
	return xs
}
