package instance

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseDIMACS(t *testing.T) {
	for _, tt := range []struct {
		text string
		want *CNF
	}{
		{
			text: `
c Trivial
p cnf 1 1
1 0
`,
			want: &CNF{Vars: 1, Clauses: [][]int{{1}}},
		},
		{
			text: `
c Empty clauses
p cnf 3 5
1 3 0 0 -3 0
0 -2 -1
`,
			want: &CNF{Vars: 3, Clauses: [][]int{{1, 3}, {}, {-3}, {}, {-2, -1}}},
		},
		{
			text: `
c DIMACS example file
c
p cnf 4 3
1 3 -4 0
4 0 2
-3
`,
			want: &CNF{Vars: 4, Clauses: [][]int{{1, 3, -4}, {4}, {2, -3}}},
		},
		{
			text: `
c Missing problem line and unused vars
-5 2 0
c comment in the middle
2 0
%
junk after the trailer
`,
			want: &CNF{Vars: 5, Clauses: [][]int{{-5, 2}, {2}}},
		},
	} {
		text := strings.TrimSpace(tt.text)
		name := strings.TrimPrefix(text[:strings.IndexByte(text, '\n')], "c ")
		t.Run(name, func(t *testing.T) {
			got, err := ParseDIMACS(strings.NewReader(text))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, tt.want, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("ParseDIMACS (-got, +want):\n%s", diff)
			}
		})
	}
}

func TestWriteDIMACS(t *testing.T) {
	f := &CNF{Vars: 3, Clauses: [][]int{{1, -3}, {}, {2}}}
	var b strings.Builder
	if err := WriteDIMACS(&b, f); err != nil {
		t.Fatal(err)
	}
	const want = "p cnf 3 3\n1 -3 0\n0\n2 0\n"
	if got := b.String(); got != want {
		t.Fatalf("WriteDIMACS wrote %q; want %q", got, want)
	}
	back, err := ParseDIMACS(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(back, f, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("reparsed formula (-got, +want):\n%s", diff)
	}
}

func TestViolated(t *testing.T) {
	f := &CNF{Vars: 2, Clauses: [][]int{{1, 2}, {-1}, {-2}, {}}}
	for _, tt := range []struct {
		assignment []bool
		want       int
	}{
		{[]bool{false, false}, 2},
		{[]bool{true, false}, 2},
		{[]bool{true, true}, 3},
	} {
		if got := f.Violated(tt.assignment); got != tt.want {
			t.Errorf("Violated(%v) = %d; want %d", tt.assignment, got, tt.want)
		}
	}
}
