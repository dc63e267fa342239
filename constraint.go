package prune

// A Constraint is a propagator over a fixed set of variables.
//
// Post registers the constraint's subscriptions and establishes initial
// consistency, usually by calling Propagate once. Propagate is invoked by
// the solver's fixpoint loop whenever a subscribed event occurs; it returns
// ErrInconsistency when it proves the current node infeasible.
//
// Implementations embed ConstraintBase.
type Constraint interface {
	Post() error
	Propagate() error
	Active() bool
	SetActive(bool)
	base() *ConstraintBase
}

// ConstraintBase holds the bookkeeping shared by every constraint: the
// reversible active flag and the scheduled flag used for queue dedup.
type ConstraintBase struct {
	solver    *Solver
	active    *StateBool
	scheduled bool
}

// NewConstraintBase returns the base of a constraint living in s.
func NewConstraintBase(s *Solver) ConstraintBase {
	return ConstraintBase{solver: s, active: s.trail.NewStateBool(true)}
}

// Solver returns the solver the constraint belongs to.
func (c *ConstraintBase) Solver() *Solver { return c.solver }

// Active reports whether the constraint still takes part in propagation.
func (c *ConstraintBase) Active() bool { return c.active.Value() }

// SetActive(false) removes the constraint from propagation until the search
// backtracks above the current node. Constraints call it once they can prove
// they hold whatever happens below.
func (c *ConstraintBase) SetActive(active bool) { c.active.SetValue(active) }

func (c *ConstraintBase) base() *ConstraintBase { return c }

// A Reaction is a constraint made of a single callback. Variables use it to
// implement WhenBind, WhenBoundsChange and WhenDomainChange.
type Reaction struct {
	ConstraintBase
	f func() error
}

// NewReaction wraps f as a constraint of s.
func NewReaction(s *Solver, f func() error) *Reaction {
	return &Reaction{ConstraintBase: NewConstraintBase(s), f: f}
}

func (r *Reaction) Post() error      { return nil }
func (r *Reaction) Propagate() error { return r.f() }
