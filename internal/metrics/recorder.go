// Package metrics provides observability hooks for the build and deploy
// pipelines, with a no-op default and a Prometheus implementation.
package metrics

import "time"

// Recorder defines observability hooks for build and deploy metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder allows optional injection.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: regenerated|skipped|failed
	IncRegenReason(reason string)
	ObserveDeployDuration(d time.Duration)
	IncDeployOutcome(outcome string) // outcome: provisioned|failed|timed_out
	IncSubmitRetry()
	ObservePollCount(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)  {}
func (NoopRecorder) IncBuildOutcome(string)              {}
func (NoopRecorder) IncRegenReason(string)               {}
func (NoopRecorder) ObserveDeployDuration(time.Duration) {}
func (NoopRecorder) IncDeployOutcome(string)             {}
func (NoopRecorder) IncSubmitRetry()                     {}
func (NoopRecorder) ObservePollCount(int)                {}
