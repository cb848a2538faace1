package plan

// StepStatus is the per-step lifecycle state.
type StepStatus string

const (
	StepPending   StepStatus = "pending"   // not yet acted on
	StepSearching StepStatus = "searching" // a backend is searching for options
	StepFound     StepStatus = "found"     // options found, awaiting user choice
	StepBooked    StepStatus = "booked"    // confirmed booking / reservation
	StepFailed    StepStatus = "failed"    // the backend call errored
	StepSkipped   StepStatus = "skipped"   // skipped by the user or by dispatch
)

// Terminal reports whether no further automatic transition may leave s.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepFound, StepBooked, StepFailed, StepSkipped:
		return true
	}
	return false
}

// stepTransitions encodes the allowed step state machine:
// pending -> searching -> {found | failed}; found -> booked (external approval
// flow); pending -> skipped.
var stepTransitions = map[StepStatus][]StepStatus{
	StepPending:   {StepSearching, StepSkipped},
	StepSearching: {StepFound, StepFailed},
	StepFound:     {StepBooked},
}

// CanTransition reports whether from -> to is a legal step transition.
func (s StepStatus) CanTransition(to StepStatus) bool {
	for _, next := range stepTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Status is the plan lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"     // being built / edited via conversation
	StatusConfirmed Status = "confirmed" // user approved, ready to execute
	StatusExecuting Status = "executing" // backends are processing steps
	StatusCompleted Status = "completed" // every step resolved
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the plan can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is legal for a plan. Cancelled is
// reachable from any non-terminal state; executing only follows an explicit
// execute request on a draft or confirmed plan.
func (s Status) CanTransition(to Status) bool {
	if s.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	switch s {
	case StatusDraft:
		return to == StatusConfirmed || to == StatusExecuting
	case StatusConfirmed:
		return to == StatusExecuting
	case StatusExecuting:
		return to == StatusCompleted
	}
	return false
}
