// Package async tracks the lifecycle of one user-triggered network
// operation so views can drive spinners, error banners and success messages
// from a single state machine instead of ad hoc flags.
package async

// State is the lifecycle phase of a tracked operation.
type State int

const (
	// Idle means no operation has run yet.
	Idle State = iota
	// Pending means an operation is in flight.
	Pending
	// Succeeded means the last settled operation completed.
	Succeeded
	// Failed means the last settled operation errored.
	Failed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tracker is the Idle → Pending → Succeeded/Failed machine wrapping a
// network call. Entering Pending clears the previous terminal state's
// user-visible message, so no stale banner outlives a new attempt.
//
// The tracker does not queue or deduplicate concurrent invocations: callers
// disable the triggering control while Pending. The guarantee is only that
// the state reflects the most recently settled call; a settle token from a
// superseded invocation is dropped. This weak guarantee is deliberate.
type Tracker struct {
	state      State
	generation int
	message    string
}

// NewTracker returns a tracker in the Idle state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// State returns the current lifecycle phase.
func (t *Tracker) State() State {
	return t.state
}

// Message returns the user-visible message of the current terminal state:
// the classified failure text after Failed, the success text after
// Succeeded, empty otherwise.
func (t *Tracker) Message() string {
	return t.message
}

// Pending reports whether an operation is in flight. Views bind control
// disablement to this.
func (t *Tracker) Pending() bool {
	return t.state == Pending
}

// Begin moves to Pending and clears any terminal message. The returned
// token must be passed to Succeed or Fail; a token from a superseded Begin
// settles as a no-op.
func (t *Tracker) Begin() int {
	t.generation++
	t.state = Pending
	t.message = ""
	return t.generation
}

// Succeed settles the invocation identified by token with a success
// message, clearing any previous failure text.
func (t *Tracker) Succeed(token int, message string) {
	if token != t.generation {
		return
	}
	t.state = Succeeded
	t.message = message
}

// Fail settles the invocation identified by token with an already
// classified, human-readable error message. Raw errors never reach views
// through the tracker.
func (t *Tracker) Fail(token int, message string) {
	if token != t.generation {
		return
	}
	t.state = Failed
	t.message = message
}
