package prune

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildProfile(t *testing.T) {
	got := buildProfile([]profileRect{
		{0, 4, 1},
		{2, 6, 2},
		{6, 6, 5}, // empty
		{6, 8, 3},
	})
	want := profile{
		{math.MinInt, 0, 0},
		{0, 2, 1},
		{2, 4, 3},
		{4, 6, 2},
		{6, 8, 3},
		{8, math.MaxInt, 0},
	}
	if diff := cmp.Diff(got, want, cmp.AllowUnexported(profileRect{})); diff != "" {
		t.Fatalf("profile (-got, +want):\n%s", diff)
	}
	for _, tt := range []struct{ t, want int }{{-3, 0}, {0, 1}, {3, 2}, {5, 3}, {7, 4}, {100, 5}} {
		if got := got.rectIndex(tt.t); got != tt.want {
			t.Errorf("rectIndex(%d) = %d; want %d", tt.t, got, tt.want)
		}
	}
}

func TestCumulativePush(t *testing.T) {
	s := NewSolver()
	a := MustIntVar(s, 2, 3) // compulsory on [3, 5)
	b := MustIntVar(s, 0, 10)
	mustPost(t, must(NewCumulative([]IntVar{a, b}, []int{3, 4}, []int{2, 1}, 2)))
	if b.Min() != 5 {
		t.Errorf("b.Min() = %d; want 5", b.Min())
	}
}

func TestCumulativeRandomized(t *testing.T) {
	for _, tt := range []struct {
		numActs  int
		horizon  int
		capa     int
		numSeeds int
	}{
		{2, 6, 1, 100},
		{3, 8, 2, 200},
		{4, 8, 3, 200},
	} {
		name := fmt.Sprintf("acts=%d,horizon=%d,capa=%d", tt.numActs, tt.horizon, tt.capa)
		t.Run(name, func(t *testing.T) {
			for seed := 0; seed < tt.numSeeds; seed++ {
				rng := rand.New(rand.NewSource(int64(seed)))
				acts := randomActivities(rng, tt.numActs, tt.horizon, tt.capa)
				dur := make([]int, len(acts))
				demand := make([]int, len(acts))
				for i, a := range acts {
					dur[i] = a.dur
					demand[i] = a.demand
				}
				checkScheduling(t, seed, acts, tt.capa, func(start []IntVar) Constraint {
					return must(NewCumulative(start, dur, demand, tt.capa))
				})
			}
		})
	}
}
