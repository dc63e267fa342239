package prune

// A BoolVar is an IntVar over {0, 1} where 1 means true.
type BoolVar interface {
	IntVar
	IsTrue() bool
	IsFalse() bool
	AssignBool(b bool) error
}

type boolVar struct {
	IntVar
}

// NewBoolVar returns an unbound boolean variable.
func NewBoolVar(s *Solver) BoolVar {
	return boolVar{newIntVar(s, 0, 1)}
}

// AsBool wraps x, whose domain must be within {0, 1}.
func AsBool(x IntVar) BoolVar {
	if b, ok := x.(BoolVar); ok {
		return b
	}
	return boolVar{x}
}

// Not returns a view of ¬b.
func Not(b BoolVar) BoolVar {
	return boolVar{Plus(Minus(b), 1)}
}

func (b boolVar) IsTrue() bool  { return b.Min() == 1 }
func (b boolVar) IsFalse() bool { return b.Max() == 0 }

func (b boolVar) AssignBool(v bool) error {
	if v {
		return b.Assign(1)
	}
	return b.Assign(0)
}
