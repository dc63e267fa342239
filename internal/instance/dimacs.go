package instance

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CNF is a formula in conjunctive normal form, solved as MAX-SAT: find an
// assignment violating as few clauses as possible. Variables are numbered
// from 1 and a negative literal -v stands for the negation of v.
type CNF struct {
	Vars    int
	Clauses [][]int
}

// ParseDIMACS parses text in the DIMACS CNF format.
//
// For convenience, a few non-standard variations are accepted:
//
//   - Comments (lines beginning with 'c') may appear anywhere, not just in
//     the preamble.
//   - The problem line may be missing. The number of variables is then the
//     largest one used.
//   - A line containing a single % ends the formula.
func ParseDIMACS(r io.Reader) (*CNF, error) {
	var problem struct {
		seen    bool
		vars    int
		clauses int
	}
	var (
		clauses [][]int
		clause  []int
		maxVar  int
		lineNum int
	)
	s := bufio.NewScanner(r)
	for s.Scan() {
		lineNum++
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 || len(clause) > 0 {
				return nil, fmt.Errorf("line %d: problem line appears after clauses", lineNum)
			}
			if problem.seen {
				return nil, fmt.Errorf("line %d: multiple problem lines", lineNum)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" {
				return nil, fmt.Errorf("line %d: malformed problem line %q", lineNum, line)
			}
			if fields[1] != "cnf" {
				return nil, fmt.Errorf("line %d: only cnf supported; got %q", lineNum, fields[1])
			}
			var err error
			if problem.vars, err = strconv.Atoi(fields[2]); err != nil || problem.vars < 0 {
				return nil, fmt.Errorf("line %d: invalid #vars %q", lineNum, fields[2])
			}
			if problem.clauses, err = strconv.Atoi(fields[3]); err != nil || problem.clauses < 0 {
				return nil, fmt.Errorf("line %d: invalid #clauses %q", lineNum, fields[3])
			}
			problem.seen = true
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid literal %q", lineNum, field)
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
				continue
			}
			clause = append(clause, n)
			maxVar = max(maxVar, abs(n))
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}

	cnf := &CNF{Vars: maxVar, Clauses: clauses}
	if !problem.seen {
		return cnf, nil
	}
	// Some vars may be missing from the clauses.
	if maxVar > problem.vars {
		return nil, fmt.Errorf("formula contains var %d, but problem line asserts %d vars",
			maxVar, problem.vars)
	}
	if len(clauses) != problem.clauses {
		return nil, fmt.Errorf("problem line specifies %d clauses, but there are %d",
			problem.clauses, len(clauses))
	}
	cnf.Vars = problem.vars
	return cnf, nil
}

// WriteDIMACS writes f in the DIMACS CNF format, one clause per line.
func WriteDIMACS(w io.Writer, f *CNF) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", f.Vars, len(f.Clauses))
	for _, clause := range f.Clauses {
		for _, lit := range clause {
			bw.WriteString(strconv.Itoa(lit))
			bw.WriteByte(' ')
		}
		bw.WriteString("0\n")
	}
	return bw.Flush()
}

// Satisfies reports whether clause is satisfied by the assignment, where
// assignment[v-1] is the value of variable v.
func Satisfies(clause []int, assignment []bool) bool {
	for _, lit := range clause {
		if (lit > 0) == assignment[abs(lit)-1] {
			return true
		}
	}
	return false
}

// Violated counts the clauses of f the assignment does not satisfy.
func (f *CNF) Violated(assignment []bool) int {
	n := 0
	for _, clause := range f.Clauses {
		if !Satisfies(clause, assignment) {
			n++
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
