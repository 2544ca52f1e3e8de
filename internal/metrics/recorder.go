package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for board and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBoardDuration(board string, d time.Duration)
	IncBoardOutcome(outcome ResultLabel)
	ObserveToolDuration(tool string, d time.Duration, success bool)
	IncArtifacts(kind string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)      {}
func (NoopRecorder) IncStageResult(string, ResultLabel)              {}
func (NoopRecorder) ObserveBoardDuration(string, time.Duration)      {}
func (NoopRecorder) IncBoardOutcome(ResultLabel)                     {}
func (NoopRecorder) ObserveToolDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncArtifacts(string, int)                        {}
