package prune

import (
	"context"
	"io"
	"log/slog"

	"github.com/kr/pretty"
)

// A Solver owns the trail and the propagation queue shared by all the
// variables and constraints of one model.
type Solver struct {
	trail *Trail
	log   *slog.Logger

	queue []Constraint
	head  int

	fixPointListeners []func() error

	// vars holds every variable created on the solver, for debug dumps.
	vars []IntVar

	numPropagations int64
}

// An Option configures a Solver.
type Option func(*Solver)

// WithLogger makes the solver and its searches log to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.log = l }
}

// NewSolver returns an empty solver.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		trail: NewTrail(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trail returns the solver's state manager.
func (s *Solver) Trail() *Trail { return s.trail }

// Logger returns the solver's logger.
func (s *Solver) Logger() *slog.Logger { return s.log }

// NumPropagations reports how many times a propagator has run.
func (s *Solver) NumPropagations() int64 { return s.numPropagations }

// Post posts c and runs propagation to a fixpoint.
func (s *Solver) Post(c Constraint) error {
	if err := c.Post(); err != nil {
		s.clearQueue()
		return err
	}
	return s.FixPoint()
}

// PostNoFixPoint posts c without draining the queue. Constraints use it to
// post auxiliary constraints from inside their own Post.
func (s *Solver) PostNoFixPoint(c Constraint) error {
	return c.Post()
}

// Schedule enqueues c unless it is inactive or already queued.
func (s *Solver) Schedule(c Constraint) {
	b := c.base()
	if b.scheduled || !c.Active() {
		return
	}
	b.scheduled = true
	s.queue = append(s.queue, c)
}

// OnFixPoint registers f to run at the start of every FixPoint.
func (s *Solver) OnFixPoint(f func() error) {
	s.fixPointListeners = append(s.fixPointListeners, f)
}

// FixPoint runs the scheduled propagators in FIFO order until none is left.
// On failure the queue is emptied and the error returned.
func (s *Solver) FixPoint() error {
	for _, f := range s.fixPointListeners {
		if err := f(); err != nil {
			s.clearQueue()
			return err
		}
	}
	for s.head < len(s.queue) {
		c := s.queue[s.head]
		s.queue[s.head] = nil
		s.head++
		if err := s.propagate(c); err != nil {
			s.clearQueue()
			return err
		}
	}
	s.queue = s.queue[:0]
	s.head = 0
	return nil
}

func (s *Solver) propagate(c Constraint) error {
	c.base().scheduled = false
	if !c.Active() {
		return nil
	}
	s.numPropagations++
	return c.Propagate()
}

func (s *Solver) clearQueue() {
	for i := s.head; i < len(s.queue); i++ {
		s.queue[i].base().scheduled = false
		s.queue[i] = nil
	}
	s.queue = s.queue[:0]
	s.head = 0
}

// Assign binds x to v and propagates. It is the left branch of most
// branchings.
func Assign(x IntVar, v int) error {
	if err := x.Assign(v); err != nil {
		x.Solver().clearQueue()
		return err
	}
	return x.Solver().FixPoint()
}

// Exclude removes v from x and propagates.
func Exclude(x IntVar, v int) error {
	if err := x.Remove(v); err != nil {
		x.Solver().clearQueue()
		return err
	}
	return x.Solver().FixPoint()
}

// debugState logs msg at Debug level together with the domains of all the
// solver's variables. The dump is only built when Debug is enabled.
func (s *Solver) debugState(msg string, args ...any) {
	if !s.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	s.log.Debug(msg, append(args, "domains", Dump(s.vars...))...)
}

// Dump returns a readable rendering of the domains of vars, for debugging.
func Dump(vars ...IntVar) string {
	doms := make([]string, len(vars))
	for i, x := range vars {
		doms[i] = x.String()
	}
	return pretty.Sprint(doms)
}
