package metrics

import "time"

// AttemptResult labels the outcome of a single API request.
type AttemptResult string

const (
	AttemptSuccess   AttemptResult = "success"
	AttemptHTTPError AttemptResult = "http_error"
	AttemptAPIError  AttemptResult = "api_error"
	AttemptFailure   AttemptResult = "transport_error"
)

// RetryKind labels which backoff strategy a retry used.
type RetryKind string

const (
	RetryStandard RetryKind = "standard"
	RetryExtended RetryKind = "extended"
)

// BuildOutcome labels how a tracked build ended from the runner's point of view.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeTimeout  BuildOutcome = "timeout"
	OutcomeError    BuildOutcome = "error"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for API calls and build tracking. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	IncAPIAttempt(result AttemptResult)
	IncAPIRetry(kind RetryKind)
	IncAPIRetryExhausted()
	ObserveBuildStatus(status string)
	IncBuildOutcome(outcome BuildOutcome)
	ObserveBuildDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncAPIAttempt(AttemptResult)        {}
func (NoopRecorder) IncAPIRetry(RetryKind)              {}
func (NoopRecorder) IncAPIRetryExhausted()              {}
func (NoopRecorder) ObserveBuildStatus(string)          {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
