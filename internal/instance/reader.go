// Package instance reads the plain-text benchmark formats solved by prune:
// quadratic assignment, traveling salesman, job-shop, resource-constrained
// project scheduling and MAX-SAT over DIMACS CNF formulas.
//
// All formats are whitespace-separated integers. For convenience, lines
// beginning with 'c' or '#' are comments and may appear anywhere (DIMACS
// only knows 'c').
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// intReader hands out the integers of a text stream one at a time.
type intReader struct {
	s      *bufio.Scanner
	fields []string
	line   int
}

func newIntReader(r io.Reader) *intReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &intReader{s: s}
}

// next returns the next integer. what names the value in error messages.
func (r *intReader) next(what string) (int, error) {
	for len(r.fields) == 0 {
		if !r.s.Scan() {
			if err := r.s.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("unexpected end of input reading %s", what)
		}
		r.line++
		line := strings.TrimSpace(r.s.Text())
		if len(line) == 0 || line[0] == 'c' || line[0] == '#' {
			continue
		}
		r.fields = strings.Fields(line)
	}
	field := r.fields[0]
	r.fields = r.fields[1:]
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("line %d: malformed %s %q", r.line, what, field)
	}
	return n, nil
}

// count reads a size that must be positive.
func (r *intReader) count(what string) (int, error) {
	n, err := r.next(what)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("line %d: invalid %s %d", r.line, what, n)
	}
	return n, nil
}

// nonNegative reads a value that must be >= 0.
func (r *intReader) nonNegative(what string) (int, error) {
	n, err := r.next(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("line %d: negative %s %d", r.line, what, n)
	}
	return n, nil
}

func (r *intReader) matrix(n int, what string) ([][]int, error) {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			v, err := r.nonNegative(what)
			if err != nil {
				return nil, err
			}
			m[i][j] = v
		}
	}
	return m, nil
}

// end checks that only comments and blank lines remain.
func (r *intReader) end() error {
	if len(r.fields) > 0 {
		return fmt.Errorf("line %d: trailing data %q", r.line, strings.Join(r.fields, " "))
	}
	for r.s.Scan() {
		r.line++
		line := strings.TrimSpace(r.s.Text())
		if len(line) == 0 || line[0] == 'c' || line[0] == '#' {
			continue
		}
		return fmt.Errorf("line %d: trailing data %q", r.line, line)
	}
	return r.s.Err()
}

// Kind names an instance format.
type Kind string

const (
	KindQAP     Kind = "qap"
	KindTSP     Kind = "tsp"
	KindJobShop Kind = "jobshop"
	KindRCPSP   Kind = "rcpsp"
	KindMaxSAT  Kind = "maxsat"
)

// Kinds lists the supported formats.
var Kinds = []Kind{KindQAP, KindTSP, KindJobShop, KindRCPSP, KindMaxSAT}

var ErrUnknownKind = errors.New("unknown instance kind")

// ParseKind validates a format name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w %q (want one of %v)", ErrUnknownKind, s, Kinds)
}

// Parse reads an instance of the given kind. The result is a *QAP, *TSP,
// *JobShop, *RCPSP or *CNF.
func Parse(kind Kind, r io.Reader) (any, error) {
	switch kind {
	case KindQAP:
		return ParseQAP(r)
	case KindTSP:
		return ParseTSP(r)
	case KindJobShop:
		return ParseJobShop(r)
	case KindRCPSP:
		return ParseRCPSP(r)
	case KindMaxSAT:
		return ParseDIMACS(r)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}
