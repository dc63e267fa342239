package prune

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func queens(t *testing.T, n int) (*Solver, []IntVar) {
	t.Helper()
	s := NewSolver()
	q := mustVars(t, s, n, 0, n-1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for _, c := range []Constraint{
				NewNotEqual(q[i], q[j], 0),
				NewNotEqual(q[i], q[j], i-j),
				NewNotEqual(q[i], q[j], j-i),
			} {
				mustPost(t, c)
			}
		}
	}
	return s, q
}

func TestQueensCount(t *testing.T) {
	for _, tt := range []struct {
		n    int
		want int
	}{
		{1, 1},
		{2, 0},
		{3, 0},
		{4, 2},
		{6, 4},
		{8, 92},
	} {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			s, q := queens(t, tt.n)
			stats, err := NewDFSearch(s, FirstFail(q...)).Solve(nil)
			if err != nil {
				t.Fatal(err)
			}
			if stats.Solutions != tt.want || !stats.Completed {
				t.Fatalf("got %v; want %d solutions, completed", stats, tt.want)
			}
			if s.Trail().Level() != 0 {
				t.Fatalf("trail level %d after search", s.Trail().Level())
			}
			for _, x := range q {
				if x.Size() != tt.n {
					t.Fatalf("domain %v not restored", x)
				}
			}
		})
	}
}

func TestSearchLimits(t *testing.T) {
	for _, tt := range []struct {
		name  string
		limit Limit
		check func(Statistics) bool
	}{
		{"solutions", SolutionLimit(3), func(s Statistics) bool { return s.Solutions == 3 }},
		{"failures", FailureLimit(5), func(s Statistics) bool { return s.Failures == 5 }},
		{"nodes", NodeLimit(10), func(s Statistics) bool { return s.Nodes == 10 }},
		{"any", AnyLimit(nil, SolutionLimit(1), NodeLimit(1000)), func(s Statistics) bool { return s.Solutions == 1 }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, q := queens(t, 8)
			stats, err := NewDFSearch(s, FirstFail(q...)).Solve(tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if !tt.check(stats) || stats.Completed {
				t.Fatalf("unexpected statistics %v", stats)
			}
		})
	}
}

func TestSearchUserError(t *testing.T) {
	s, q := queens(t, 6)
	boom := errors.New("boom")
	calls := 0
	b := func() []Alternative {
		alts := FirstFail(q...)()
		if len(alts) == 0 {
			return nil
		}
		return Branch(func() error {
			if calls++; calls == 3 {
				return boom
			}
			return alts[0]()
		}, alts[1])
	}
	_, err := NewDFSearch(s, b).Solve(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v; want %v", err, boom)
	}
	if s.Trail().Level() != 0 {
		t.Fatalf("trail level %d after failed search", s.Trail().Level())
	}
}

func TestSolveSubjectTo(t *testing.T) {
	s, q := queens(t, 8)
	search := NewDFSearch(s, FirstFail(q...))
	stats, err := search.SolveSubjectTo(nil, func() error {
		return q[0].Assign(0)
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Solutions != 4 {
		t.Fatalf("got %d solutions with q[0]=0; want 4", stats.Solutions)
	}
	if q[0].Size() != 8 {
		t.Fatalf("q[0] = %v after SolveSubjectTo; want full domain", q[0])
	}

	stats, err = search.SolveSubjectTo(nil, func() error {
		if err := q[0].Assign(0); err != nil {
			return err
		}
		return q[1].Assign(0)
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Solutions != 0 || stats.Failures != 1 || !stats.Completed {
		t.Fatalf("inconsistent setup gave %v", stats)
	}
}

func TestLimitedDiscrepancy(t *testing.T) {
	var prev int
	for d := 0; d <= 40; d++ {
		s, q := queens(t, 6)
		stats, err := NewDFSearch(s, LimitedDiscrepancy(s, FirstFail(q...), d)).Solve(nil)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Solutions < prev {
			t.Fatalf("maxD=%d found %d solutions, fewer than %d", d, stats.Solutions, prev)
		}
		prev = stats.Solutions
	}
	if prev != 4 {
		t.Fatalf("wide discrepancy found %d solutions; want 4", prev)
	}

	s, q := queens(t, 6)
	stats, err := NewDFSearch(s, LimitedDiscrepancy(s, FirstFail(q...), 0)).Solve(nil)
	if err != nil {
		t.Fatal(err)
	}
	// Without discrepancies only the leftmost branch is tried at each node.
	if stats.Nodes > len(q) {
		t.Fatalf("maxD=0 visited %d nodes", stats.Nodes)
	}
}

// TestSearchStatistics checks the exact counters on trees small enough to
// trace by hand. Every tried alternative is a node, whether it fails or not.
func TestSearchStatistics(t *testing.T) {
	for _, tt := range []struct {
		name  string
		build func(s *Solver) []IntVar
		want  Statistics
	}{
		{
			// Three free booleans: a full binary tree of depth 3.
			name: "free",
			build: func(s *Solver) []IntVar {
				return mustVars(t, s, 3, 0, 1)
			},
			want: Statistics{Solutions: 8, Nodes: 14, Completed: true},
		},
		{
			// x != y binds y with x; z stays free.
			name: "not-equal",
			build: func(s *Solver) []IntVar {
				xs := mustVars(t, s, 3, 0, 1)
				mustPost(t, NewNotEqual(xs[0], xs[1], 0))
				return xs
			},
			want: Statistics{Solutions: 4, Nodes: 6, Completed: true},
		},
		{
			// Three pairwise different booleans: both branches on the
			// first variable wipe out a domain.
			name: "pigeonhole",
			build: func(s *Solver) []IntVar {
				xs := mustVars(t, s, 3, 0, 1)
				for i := range xs {
					for j := i + 1; j < len(xs); j++ {
						mustPost(t, NewNotEqual(xs[i], xs[j], 0))
					}
				}
				return xs
			},
			want: Statistics{Failures: 2, Nodes: 2, Completed: true},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSolver()
			xs := tt.build(s)
			got, err := NewDFSearch(s, FirstFail(xs...)).Solve(nil)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %v; want %v", got, tt.want)
			}
		})
	}
}

func TestLimitedDiscrepancyCounts(t *testing.T) {
	// Over three free booleans, a leaf with discrepancy k is reached by
	// choosing k right branches out of 3.
	for _, tt := range []struct {
		maxD int
		want Statistics
	}{
		{0, Statistics{Solutions: 1, Nodes: 3, Completed: true}},
		{1, Statistics{Solutions: 4, Nodes: 9, Completed: true}},
		{2, Statistics{Solutions: 7, Nodes: 13, Completed: true}},
		{3, Statistics{Solutions: 8, Nodes: 14, Completed: true}},
		{10, Statistics{Solutions: 8, Nodes: 14, Completed: true}},
	} {
		s := NewSolver()
		xs := mustVars(t, s, 3, 0, 1)
		search := NewDFSearch(s, LimitedDiscrepancy(s, FirstFail(xs...), tt.maxD))
		// The discrepancy counter is restored between runs, so the same
		// search gives the same tree every time.
		for run := 0; run < 3; run++ {
			got, err := search.Solve(nil)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("maxD=%d run %d: got %v; want %v", tt.maxD, run, got, tt.want)
			}
		}
	}
}

func TestLimitedDiscrepancyReuse(t *testing.T) {
	s := NewSolver()
	xs := mustVars(t, s, 3, 0, 2)
	search := NewDFSearch(s, LimitedDiscrepancy(s, FirstFail(xs...), 1))
	// Value v of a variable costs v discrepancies, so the leaves are
	// (0,0,0) and the three tuples with a single 1.
	want := Statistics{Solutions: 4, Nodes: 12, Completed: true}
	for run := 0; run < 3; run++ {
		got, err := search.Solve(nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("run %d: got %v; want %v", run, got, want)
		}
	}
}

func TestLimitedDiscrepancyStopped(t *testing.T) {
	s := NewSolver()
	xs := mustVars(t, s, 3, 0, 1)
	search := NewDFSearch(s, LimitedDiscrepancy(s, FirstFail(xs...), 1))
	// Stop deep in the tree, where the counter is nonzero.
	stats, err := search.Solve(SolutionLimit(3))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Completed {
		t.Fatalf("limited run completed: %v", stats)
	}
	want := Statistics{Solutions: 4, Nodes: 9, Completed: true}
	if got, err := search.Solve(nil); err != nil {
		t.Fatal(err)
	} else if got != want {
		t.Fatalf("run after a stopped run: got %v; want %v", got, want)
	}
}

// TestHeuristicsComplete checks that every branching explores the same
// solution set.
func TestHeuristicsComplete(t *testing.T) {
	for _, tt := range []struct {
		name string
		b    func(q []IntVar) Branching
	}{
		{"first-fail", func(q []IntVar) Branching { return FirstFail(q...) }},
		{"conflict-ordering", func(q []IntVar) Branching {
			return ConflictOrdering(FirstUnbound(q...), MinValue)
		}},
		{"last-conflict", func(q []IntVar) Branching {
			return LastConflict(SmallestDomain(q...), MinValue)
		}},
		{"and", func(q []IntVar) Branching {
			return And(FirstFail(q[:3]...), FirstFail(q[3:]...))
		}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, q := queens(t, 7)
			var sols []string
			search := NewDFSearch(s, tt.b(q))
			search.OnSolution(func() { sols = append(sols, fmt.Sprint(values(q))) })
			stats, err := search.Solve(nil)
			if err != nil {
				t.Fatal(err)
			}
			if stats.Solutions != 40 {
				t.Fatalf("got %d solutions; want 40", stats.Solutions)
			}
			seen := make(map[string]bool)
			for _, sol := range sols {
				if seen[sol] {
					t.Fatalf("solution %s found twice", sol)
				}
				seen[sol] = true
			}
		})
	}
}

func TestOptimize(t *testing.T) {
	s := NewSolver()
	x := mustVars(t, s, 4, 0, 9)
	mustPost(t, must(NewAllDifferentDC(x...)))
	total, err := SumVar(x...)
	if err != nil {
		t.Fatal(err)
	}
	obj := s.Minimize(total)
	var trace []int
	// Try the largest values first so the search has to improve.
	search := NewDFSearch(s, ConflictOrdering(FirstUnbound(x...), IntVar.Max))
	search.OnSolution(func() { trace = append(trace, total.Min()) })
	stats, err := search.Optimize(obj, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Completed {
		t.Fatalf("search not completed: %v", stats)
	}
	best, ok := obj.Best()
	if !ok || best != 6 {
		t.Fatalf("Best() = %d, %t; want 6, true", best, ok)
	}
	for i := 1; i < len(trace); i++ {
		if trace[i] >= trace[i-1] {
			t.Fatalf("solution %d does not improve: %v", i, trace)
		}
	}
}

func TestMaximize(t *testing.T) {
	s := NewSolver()
	x := mustVars(t, s, 3, 0, 4)
	mustPost(t, must(NewAllDifferentFW(x...)))
	total, err := SumVar(x...)
	if err != nil {
		t.Fatal(err)
	}
	obj := s.Maximize(total)
	if _, err := NewDFSearch(s, FirstFail(x...)).Optimize(obj, nil); err != nil {
		t.Fatal(err)
	}
	if best, ok := obj.Best(); !ok || best != 9 {
		t.Fatalf("Best() = %d, %t; want 9, true", best, ok)
	}
	if got := obj.Bound(); got != 10 {
		t.Fatalf("Bound() = %d; want 10", got)
	}
}

// TestLNSNeverWorsens runs restarts with a failure limit of one, each
// pinning a random half of the variables to the incumbent.
func TestLNSNeverWorsens(t *testing.T) {
	const n = 8
	rng := rand.New(rand.NewSource(1))
	target := rng.Perm(n)

	s := NewSolver()
	x := mustVars(t, s, n, 0, n-1)
	mustPost(t, must(NewAllDifferentDC(x...)))
	dist := make([]IntVar, n)
	for i := range x {
		dist[i] = MustIntVar(s, 0, n)
		mustPost(t, NewAbsolute(Plus(x[i], -target[i]), dist[i]))
	}
	total, err := SumVar(dist...)
	if err != nil {
		t.Fatal(err)
	}
	obj := s.Minimize(total)
	search := NewDFSearch(s, FirstFail(x...))
	incumbent := make([]int, n)
	search.OnSolution(func() { copy(incumbent, values(x)) })

	if _, err := search.Optimize(obj, SolutionLimit(1)); err != nil {
		t.Fatal(err)
	}
	prev, ok := obj.Best()
	if !ok {
		t.Fatal("no initial solution")
	}
	for round := 0; round < 50; round++ {
		_, err := search.OptimizeSubjectTo(obj, FailureLimit(1), func() error {
			for i := range x {
				if rng.Intn(2) == 0 {
					if err := x[i].Assign(incumbent[i]); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		best, _ := obj.Best()
		if best > prev {
			t.Fatalf("round %d: incumbent worsened from %d to %d", round, prev, best)
		}
		prev = best
	}
}
