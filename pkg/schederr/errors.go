// Package schederr taxonomises scheduler-op failures by condition, not by
// type, per spec.md §7. Every scheduler operation returns one of these
// sentinels (wrapped with context via fmt.Errorf("...: %w", ...)) rather than
// an ad-hoc error type; callers propagate unless an explicit recovery path
// exists (dead-neighbour demotion in the CE heuristic, trylock retry in ST
// placement — see pkg/scheduler).
package schederr

import "errors"

var (
	// ErrInvalidArgument is returned for a malformed or out-of-domain
	// argument (e.g. a hint property/value mismatch).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotSupported is returned when an operation is not implemented by
	// the selected heuristic (e.g. get_work on the placement-affinity
	// heuristic, which only acts on pre-process-msg).
	ErrNotSupported = errors.New("not supported")

	// ErrNotFound is returned when a referenced scheduler object (EDT, DB,
	// container entry) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotEmpty is returned when a container precondition required to be
	// empty is not (e.g. destroying a Wst with work still queued).
	ErrNotEmpty = errors.New("not empty")

	// ErrBadLocation is returned when a PDLocation argument does not
	// resolve to a known PD.
	ErrBadLocation = errors.New("bad location")

	// ErrOutOfMemory surfaces allocation failure from the underlying
	// container/factory.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrTransientSend indicates the message transport failed in a way the
	// caller may retry (spec.md §7's only non-fatal send outcome besides
	// permanent failure).
	ErrTransientSend = errors.New("transient send failure")

	// ErrPermanentSend indicates the destination location is permanently
	// unreachable ("dead location"). The CE heuristic treats this as
	// neighbour demotion; the ST heuristic treats it as fatal for the
	// in-flight analysis.
	ErrPermanentSend = errors.New("permanent send failure: dead location")

	// ErrNoOp is returned (not an error condition) when an operation was a
	// deliberate no-op per the heuristic's contract (e.g. HC's notify on
	// kinds it does not react to).
	ErrNoOp = errors.New("no-op")
)

// Fatal reports whether err represents a condition spec.md §7 calls fatal to
// the caller's operation — i.e. everything except the two recoverable paths
// (ErrTransientSend is retryable by the caller; ErrPermanentSend itself is
// not recoverable but is the trigger for the CE heuristic's one recovery
// path, handled by that heuristic rather than by the generic caller).
func Fatal(err error) bool {
	if err == nil || errors.Is(err, ErrNoOp) || errors.Is(err, ErrTransientSend) {
		return false
	}
	return true
}
