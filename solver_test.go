package prune

import (
	"bytes"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestFixPointConfluence posts the same constraints in different orders and
// checks that propagation reaches the same domains.
func TestFixPointConfluence(t *testing.T) {
	for seed := 0; seed < 200; seed++ {
		rng := rand.New(rand.NewSource(int64(seed)))
		doms := randomDomains(rng, 5, 7)
		perm := rng.Perm(5)
		type model func(x []IntVar) Constraint
		models := []model{
			func(x []IntVar) Constraint { return must(NewAllDifferentDC(x[:3]...)) },
			func(x []IntVar) Constraint { return must(NewSum(x[2:4], x[4])) },
			func(x []IntVar) Constraint { return NewLessOrEqual(x[perm[0]], x[perm[1]]) },
			func(x []IntVar) Constraint { return NewNotEqual(x[perm[2]], x[perm[3]], 1) },
			func(x []IntVar) Constraint { return must(NewElement1D([]int{4, 2, 6, 0, 1, 5, 3}, x[0], x[3])) },
		}
		run := func(order []int) ([][]int, bool) {
			s := NewSolver()
			x := newVarsFromDomains(t, s, doms)
			for _, i := range order {
				if err := s.Post(models[i](x)); err != nil {
					return nil, false
				}
			}
			return domainsOf(x), true
		}
		want, wantOK := run([]int{0, 1, 2, 3, 4})
		for k := 0; k < 5; k++ {
			order := rng.Perm(len(models))
			got, ok := run(order)
			if ok != wantOK {
				t.Fatalf("[seed=%d] order %v: consistent=%t; want %t", seed, order, ok, wantOK)
			}
			if diff := cmp.Diff(got, want); diff != "" {
				t.Fatalf("[seed=%d] order %v: domains (-got, +want):\n%s", seed, order, diff)
			}
		}
	}
}

func TestScheduleDedup(t *testing.T) {
	s := NewSolver()
	x := MustIntVar(s, 0, 10)
	runs := 0
	x.WhenDomainChange(func() error {
		runs++
		return nil
	})
	if err := x.Remove(3); err != nil {
		t.Fatal(err)
	}
	if err := x.Remove(4); err != nil {
		t.Fatal(err)
	}
	if err := s.FixPoint(); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("reaction ran %d times; want 1", runs)
	}
	if s.NumPropagations() != 1 {
		t.Fatalf("NumPropagations() = %d; want 1", s.NumPropagations())
	}
}

func TestFailureClearsQueue(t *testing.T) {
	s := NewSolver()
	x := MustIntVar(s, 0, 3)
	y := MustIntVar(s, 0, 3)
	mustPost(t, NewLessOrEqual(x, y))
	other := 0
	y.WhenBoundsChange(func() error {
		other++
		return nil
	})
	x.WhenBind(func() error { return ErrInconsistency })
	s.Trail().SaveState()
	if err := Assign(x, 2); !IsInconsistency(err) {
		t.Fatalf("Assign = %v; want inconsistency", err)
	}
	s.Trail().RestoreState()
	// The pending reactions were dropped: a new fixpoint runs nothing.
	before := s.NumPropagations()
	if err := s.FixPoint(); err != nil {
		t.Fatal(err)
	}
	if s.NumPropagations() != before {
		t.Fatalf("queue not cleared after failure")
	}
}

func TestWhenBindReaction(t *testing.T) {
	s := NewSolver()
	x := MustIntVar(s, 0, 3)
	y := MustIntVar(s, 0, 3)
	x.WhenBind(func() error { return y.Remove(x.Min()) })
	s.Trail().SaveState()
	if err := Assign(x, 1); err != nil {
		t.Fatal(err)
	}
	if y.Contains(1) {
		t.Fatalf("y = %v; want 1 removed", y)
	}
	s.Trail().RestoreState()
	if !y.Contains(1) || x.IsBound() {
		t.Fatalf("x = %v, y = %v after restore", x, y)
	}
}

func TestViews(t *testing.T) {
	s := NewSolver()
	x, err := NewIntVarSet(s, 1, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		name     string
		v        IntVar
		min, max int
		dom      []int
	}{
		{"plus", Plus(x, 10), 11, 14, []int{11, 13, 14}},
		{"minus", Minus(x), -4, -1, []int{-4, -3, -1}},
		{"mul", Mul(x, 3), 3, 12, []int{3, 9, 12}},
		{"composed", Minus(Plus(Mul(x, 2), 1)), -9, -3, []int{-9, -7, -3}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Min() != tt.min || tt.v.Max() != tt.max {
				t.Errorf("bounds [%d, %d]; want [%d, %d]", tt.v.Min(), tt.v.Max(), tt.min, tt.max)
			}
			if diff := cmp.Diff(domainOf(tt.v), tt.dom); diff != "" {
				t.Errorf("domain (-got, +want):\n%s", diff)
			}
			for _, v := range tt.dom {
				if !tt.v.Contains(v) {
					t.Errorf("Contains(%d) = false", v)
				}
			}
		})
	}

	s.Trail().SaveState()
	m := Mul(x, 3)
	if err := m.RemoveAbove(10); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove(9); err != nil {
		t.Fatal(err)
	}
	if !x.IsBound() || x.Min() != 1 {
		t.Fatalf("x = %v; want {1}", x)
	}
	if err := Minus(x).Assign(-2); !IsInconsistency(err) {
		t.Fatalf("Assign(-2) = %v; want inconsistency", err)
	}
	s.Trail().RestoreState()
	if x.String() == "{1}" {
		t.Fatalf("x not restored")
	}
}

func TestNewIntVarErrors(t *testing.T) {
	s := NewSolver()
	if _, err := NewIntVar(s, 3, 2); err == nil {
		t.Error("NewIntVar(3, 2) succeeded")
	}
	if _, err := NewIntVarSet(s); err == nil {
		t.Error("NewIntVarSet() succeeded")
	}
	x, err := NewIntVarSet(s, 7, -2, 7, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(domainOf(x), []int{-2, 0, 7}); diff != "" {
		t.Fatalf("domain (-got, +want):\n%s", diff)
	}
}

func TestBoolVar(t *testing.T) {
	s := NewSolver()
	b := NewBoolVar(s)
	nb := Not(b)
	if err := nb.AssignBool(false); err != nil {
		t.Fatal(err)
	}
	if !b.IsTrue() || !nb.IsFalse() {
		t.Fatalf("b = %v, ¬b = %v", b, nb)
	}
}

func TestSolverLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSolver(WithLogger(log))
	x := mustVars(t, s, 2, 0, 1)
	mustPost(t, must(NewAllDifferentDC(x...)))
	if _, err := NewDFSearch(s, FirstFail(x...)).Solve(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "search finished") {
		t.Fatalf("missing search log in:\n%s", buf.String())
	}
	if got := Dump(x...); !strings.Contains(got, "{0,1}") {
		t.Fatalf("Dump = %s", got)
	}
	// The first solution is x = (0, 1).
	var solution string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "msg=solution") {
			solution = line
			break
		}
	}
	if !strings.Contains(solution, "domains=") || !strings.Contains(solution, "{0}") || !strings.Contains(solution, "{1}") {
		t.Fatalf("solution log lacks the domains: %q", solution)
	}
}

func TestSolverLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSolver(WithLogger(log))
	x := mustVars(t, s, 3, 0, 1)
	for i := range x {
		for j := i + 1; j < len(x); j++ {
			mustPost(t, NewNotEqual(x[i], x[j], 0))
		}
	}
	if _, err := NewDFSearch(s, FirstFail(x...)).Solve(nil); err != nil {
		t.Fatal(err)
	}
	var failures int
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "msg=failure") {
			failures++
			if !strings.Contains(line, "domains=") {
				t.Errorf("failure log lacks the domains: %q", line)
			}
		}
	}
	if failures != 2 {
		t.Fatalf("logged %d failures; want 2:\n%s", failures, buf.String())
	}
}

func TestSolverQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	s := NewSolver(WithLogger(log))
	x := mustVars(t, s, 2, 0, 1)
	if _, err := NewDFSearch(s, FirstFail(x...)).Solve(nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("logged at Info level:\n%s", buf.String())
	}
}
