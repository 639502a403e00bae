// Package metrics provides observability hooks for validation runs.
package metrics

import "time"

// Outcome labels for completed runs.
const (
	OutcomeClean    = "clean"
	OutcomeWarnings = "warnings"
	OutcomeErrors   = "errors"
	OutcomeFailed   = "failed"
)

// Recorder defines observability hooks for run and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder allows optional injection without nil checks at call sites.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	IncRunOutcome(outcome string)
	AddIssues(kind string, n int)
	SetDocsProcessed(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) AddIssues(string, int)                      {}
func (NoopRecorder) SetDocsProcessed(int)                       {}
