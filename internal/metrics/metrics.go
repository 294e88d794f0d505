// Package metrics records aggregation run metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so single-shot CLI runs carry no metrics overhead while the
// daemon swaps in the Prometheus implementation.
package metrics

// Recorder defines all metrics operations the pipeline emits.
type Recorder interface {
	RepositoriesProcessed(n int)
	DocumentsExtracted(n int)
	ExtractionWarnings(n int)
	Conflicts(strategy string, n int)
	LinksRewritten(n int)
	StageDuration(stage string, seconds float64)
	RunCompleted(success bool)
}

// NoopRecorder is the default Recorder; every method does nothing.
type NoopRecorder struct{}

func (NoopRecorder) RepositoriesProcessed(int)     {}
func (NoopRecorder) DocumentsExtracted(int)        {}
func (NoopRecorder) ExtractionWarnings(int)        {}
func (NoopRecorder) Conflicts(string, int)         {}
func (NoopRecorder) LinksRewritten(int)            {}
func (NoopRecorder) StageDuration(string, float64) {}
func (NoopRecorder) RunCompleted(bool)             {}
