package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for population, directive and page
// rendering. Implementations may forward to Prometheus or similar.
type Recorder interface {
	ObservePopulateDuration(d time.Duration)
	AddEntriesFormatted(n int)
	IncStyleFallback(reason string) // reason: not_found|invalid
	IncDirectiveResult(result ResultLabel)
	IncDocumentResult(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePopulateDuration(time.Duration) {}
func (NoopRecorder) AddEntriesFormatted(int)               {}
func (NoopRecorder) IncStyleFallback(string)               {}
func (NoopRecorder) IncDirectiveResult(ResultLabel)        {}
func (NoopRecorder) IncDocumentResult(ResultLabel)         {}

// Result maps an error to its result label.
func Result(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}
