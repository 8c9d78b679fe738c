package metrics

import "time"

// ResultLabel enumerates step result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFatal   ResultLabel = "fatal"
	ResultSkipped ResultLabel = "skipped"
)

// Publish outcome labels.
const (
	OutcomePublished = "published"
	OutcomeNoop      = "noop"
	OutcomeFailed    = "failed"
)

// Recorder defines observability hooks for pipeline and fetch metrics.
// Implementations may forward to Prometheus etc. The NoopRecorder is the
// default when metrics are not configured.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	ObservePipelineDuration(d time.Duration)
	IncStepResult(step string, result ResultLabel)
	IncPublishOutcome(outcome string) // outcome: published|noop|failed
	IncPlatformFetch(platform, status string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) ObservePipelineDuration(time.Duration)     {}
func (NoopRecorder) IncStepResult(string, ResultLabel)         {}
func (NoopRecorder) IncPublishOutcome(string)                  {}
func (NoopRecorder) IncPlatformFetch(string, string)           {}
