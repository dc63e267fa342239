package prune

import (
	"fmt"
	"strings"
)

// Views are affine transformations of a variable. They hold no domain of
// their own: reads are computed from the underlying variable and writes are
// translated onto it, so the underlying domain stays the only writer.

// Plus returns a view of x + c.
func Plus(x IntVar, c int) IntVar {
	if c == 0 {
		return x
	}
	if o, ok := x.(*offsetView); ok {
		return &offsetView{x: o.x, o: o.o + c}
	}
	return &offsetView{x: x, o: c}
}

// Minus returns a view of -x.
func Minus(x IntVar) IntVar {
	if o, ok := x.(*oppositeView); ok {
		return o.x
	}
	return &oppositeView{x: x}
}

// Mul returns a view of a*x. a must be positive; use Minus for negative
// coefficients.
func Mul(x IntVar, a int) IntVar {
	if a <= 0 {
		panic(fmt.Sprintf("prune: Mul coefficient must be positive, got %d", a))
	}
	if a == 1 {
		return x
	}
	return &mulView{x: x, a: a}
}

type offsetView struct {
	x IntVar
	o int
}

func (v *offsetView) Solver() *Solver     { return v.x.Solver() }
func (v *offsetView) Min() int            { return v.x.Min() + v.o }
func (v *offsetView) Max() int            { return v.x.Max() + v.o }
func (v *offsetView) Size() int           { return v.x.Size() }
func (v *offsetView) Contains(w int) bool { return v.x.Contains(w - v.o) }
func (v *offsetView) IsBound() bool       { return v.x.IsBound() }

func (v *offsetView) FillArray(dst []int) int {
	n := v.x.FillArray(dst)
	for i := 0; i < n; i++ {
		dst[i] += v.o
	}
	return n
}

func (v *offsetView) Remove(w int) error      { return v.x.Remove(w - v.o) }
func (v *offsetView) Assign(w int) error      { return v.x.Assign(w - v.o) }
func (v *offsetView) RemoveBelow(w int) error { return v.x.RemoveBelow(w - v.o) }
func (v *offsetView) RemoveAbove(w int) error { return v.x.RemoveAbove(w - v.o) }

func (v *offsetView) PropagateOnDomainChange(c Constraint) { v.x.PropagateOnDomainChange(c) }
func (v *offsetView) PropagateOnBind(c Constraint)         { v.x.PropagateOnBind(c) }
func (v *offsetView) PropagateOnBoundChange(c Constraint)  { v.x.PropagateOnBoundChange(c) }
func (v *offsetView) WhenBind(f func() error)              { v.x.WhenBind(f) }
func (v *offsetView) WhenBoundsChange(f func() error)      { v.x.WhenBoundsChange(f) }
func (v *offsetView) WhenDomainChange(f func() error)      { v.x.WhenDomainChange(f) }

func (v *offsetView) String() string { return domainString(v) }

type oppositeView struct {
	x IntVar
}

func (v *oppositeView) Solver() *Solver     { return v.x.Solver() }
func (v *oppositeView) Min() int            { return -v.x.Max() }
func (v *oppositeView) Max() int            { return -v.x.Min() }
func (v *oppositeView) Size() int           { return v.x.Size() }
func (v *oppositeView) Contains(w int) bool { return v.x.Contains(-w) }
func (v *oppositeView) IsBound() bool       { return v.x.IsBound() }

func (v *oppositeView) FillArray(dst []int) int {
	n := v.x.FillArray(dst)
	for i := 0; i < n; i++ {
		dst[i] = -dst[i]
	}
	return n
}

func (v *oppositeView) Remove(w int) error      { return v.x.Remove(-w) }
func (v *oppositeView) Assign(w int) error      { return v.x.Assign(-w) }
func (v *oppositeView) RemoveBelow(w int) error { return v.x.RemoveAbove(-w) }
func (v *oppositeView) RemoveAbove(w int) error { return v.x.RemoveBelow(-w) }

func (v *oppositeView) PropagateOnDomainChange(c Constraint) { v.x.PropagateOnDomainChange(c) }
func (v *oppositeView) PropagateOnBind(c Constraint)         { v.x.PropagateOnBind(c) }
func (v *oppositeView) PropagateOnBoundChange(c Constraint)  { v.x.PropagateOnBoundChange(c) }
func (v *oppositeView) WhenBind(f func() error)              { v.x.WhenBind(f) }
func (v *oppositeView) WhenBoundsChange(f func() error)      { v.x.WhenBoundsChange(f) }
func (v *oppositeView) WhenDomainChange(f func() error)      { v.x.WhenDomainChange(f) }

func (v *oppositeView) String() string { return domainString(v) }

type mulView struct {
	x IntVar
	a int
}

func (v *mulView) Solver() *Solver { return v.x.Solver() }
func (v *mulView) Min() int        { return v.a * v.x.Min() }
func (v *mulView) Max() int        { return v.a * v.x.Max() }
func (v *mulView) Size() int       { return v.x.Size() }
func (v *mulView) IsBound() bool   { return v.x.IsBound() }

func (v *mulView) Contains(w int) bool {
	return w%v.a == 0 && v.x.Contains(w/v.a)
}

func (v *mulView) FillArray(dst []int) int {
	n := v.x.FillArray(dst)
	for i := 0; i < n; i++ {
		dst[i] *= v.a
	}
	return n
}

func (v *mulView) Remove(w int) error {
	if w%v.a != 0 {
		return nil
	}
	return v.x.Remove(w / v.a)
}

func (v *mulView) Assign(w int) error {
	if w%v.a != 0 {
		return ErrInconsistency
	}
	return v.x.Assign(w / v.a)
}

func (v *mulView) RemoveBelow(w int) error { return v.x.RemoveBelow(ceilDiv(w, v.a)) }
func (v *mulView) RemoveAbove(w int) error { return v.x.RemoveAbove(floorDiv(w, v.a)) }

func (v *mulView) PropagateOnDomainChange(c Constraint) { v.x.PropagateOnDomainChange(c) }
func (v *mulView) PropagateOnBind(c Constraint)         { v.x.PropagateOnBind(c) }
func (v *mulView) PropagateOnBoundChange(c Constraint)  { v.x.PropagateOnBoundChange(c) }
func (v *mulView) WhenBind(f func() error)              { v.x.WhenBind(f) }
func (v *mulView) WhenBoundsChange(f func() error)      { v.x.WhenBoundsChange(f) }
func (v *mulView) WhenDomainChange(f func() error)      { v.x.WhenDomainChange(f) }

func (v *mulView) String() string { return domainString(v) }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

func domainString(x IntVar) string {
	vals := make([]int, x.Size())
	x.FillArray(vals)
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprint(&b, v)
	}
	b.WriteByte('}')
	return b.String()
}
