package textcrdt

import "fmt"

// Sentinel error kinds. Operation handlers are all-or-nothing: any
// returned error aborts the handler before it emits an event, and (for
// UnknownId/InvariantViolation) the replica is considered corrupted
// from that point on.
var (
	// ErrIndexOutOfBounds is returned by indexToNode and public calls
	// given an index outside the valid range for the operation.
	ErrIndexOutOfBounds = fmt.Errorf("textcrdt: index out of bounds")

	// ErrUnknownID is returned when a received message references a
	// parentID or target id absent from the directory. This indicates a
	// causal-ordering violation or a corrupted stream; it is fatal.
	ErrUnknownID = fmt.Errorf("textcrdt: unknown id")

	// ErrInvariantViolation signals that an internal consistency check
	// failed (an index lookup falling off the balanced tree within
	// bounds, a missing successor during Insert, or any CheckInvariants
	// failure). String does not compare its result's length against
	// Length, and SALM.Split does not verify its path; neither raises it.
	// Fatal: the replica must be discarded.
	ErrInvariantViolation = fmt.Errorf("textcrdt: invariant violation")

	// ErrNotImplemented is returned by Save/Load until a persistence
	// format is wired in.
	ErrNotImplemented = fmt.Errorf("textcrdt: not implemented")
)

// indexError wraps ErrIndexOutOfBounds with the offending index and bound,
// so callers get a useful message while errors.Is(err, ErrIndexOutOfBounds)
// still succeeds.
type indexError struct {
	index, length int
}

func (e *indexError) Error() string {
	return fmt.Sprintf("textcrdt: index %d out of bounds for length %d", e.index, e.length)
}

func (e *indexError) Unwrap() error { return ErrIndexOutOfBounds }

func outOfBounds(index, length int) error {
	return &indexError{index: index, length: length}
}

// unknownIDError wraps ErrUnknownID with the offending id.
type unknownIDError struct {
	id string
}

func (e *unknownIDError) Error() string {
	return fmt.Sprintf("textcrdt: unknown id %q", e.id)
}

func (e *unknownIDError) Unwrap() error { return ErrUnknownID }

func unknownID(id string) error {
	return &unknownIDError{id: id}
}

// invariantError wraps ErrInvariantViolation with a diagnostic message.
type invariantError struct {
	msg string
}

func (e *invariantError) Error() string {
	return "textcrdt: invariant violation: " + e.msg
}

func (e *invariantError) Unwrap() error { return ErrInvariantViolation }

func invariantViolation(msg string) error {
	return &invariantError{msg: msg}
}
