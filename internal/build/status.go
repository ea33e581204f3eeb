package build

// Status is a build status as reported by the API.
type Status string

const (
	StatusCreated       Status = "CREATED"
	StatusTriggered     Status = "TRIGGERED"
	StatusExecuting     Status = "EXECUTING"
	StatusCompleted     Status = "COMPLETED"
	StatusNeedsApproval Status = "NEEDS_APPROVAL"
	StatusFailed        Status = "FAILED"
	StatusAborted       Status = "ABORTED"
	StatusErrored       Status = "ERRORED"
)

// Phase classifies a Status for the polling loop.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseRunning
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Phase returns the classification of s. Values the API may add later map to PhaseUnknown.
func (s Status) Phase() Phase {
	switch s {
	case StatusCreated, StatusTriggered, StatusExecuting:
		return PhaseRunning
	case StatusCompleted:
		return PhaseSuccess
	case StatusNeedsApproval, StatusFailed, StatusAborted, StatusErrored:
		return PhaseFailure
	default:
		return PhaseUnknown
	}
}

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	p := s.Phase()
	return p == PhaseSuccess || p == PhaseFailure
}
