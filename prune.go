// Package prune is a finite-domain constraint programming engine.
//
// A model is a set of integer variables with finite domains living in a
// Solver, and constraints posted on them. Every constraint is a propagator
// that removes values which cannot take part in any solution; the solver runs
// the propagators to a fixpoint after every change. A DFSearch then explores
// the remaining choices depth-first, saving and restoring all reversible
// state through the solver's Trail on backtrack.
//
// Failure is reported with ErrInconsistency. It is an ordinary value that
// unwinds the current propagation round and makes the search try the next
// alternative.
package prune
