package prune

import "errors"

// ErrInconsistency is returned by any operation that would empty a domain and
// by propagators that prove the current node infeasible. The search treats it
// as a failed alternative; it is never a fatal error.
var ErrInconsistency = errors.New("prune: inconsistency")

// IsInconsistency reports whether err is (or wraps) ErrInconsistency.
func IsInconsistency(err error) bool {
	return errors.Is(err, ErrInconsistency)
}
