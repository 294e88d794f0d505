package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder backed by a Prometheus registry.
type PrometheusRecorder struct {
	registry *prom.Registry

	repositories prom.Counter
	documents    prom.Counter
	warnings     prom.Counter
	conflicts    *prom.CounterVec
	rewritten    prom.Counter
	stageSeconds *prom.HistogramVec
	runs         *prom.CounterVec
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prom.NewRegistry()
	r := &PrometheusRecorder{
		registry: registry,
		repositories: prom.NewCounter(prom.CounterOpts{
			Name: "docmerge_repositories_processed_total",
			Help: "Repositories successfully extracted across all runs.",
		}),
		documents: prom.NewCounter(prom.CounterOpts{
			Name: "docmerge_documents_extracted_total",
			Help: "Documents extracted across all runs.",
		}),
		warnings: prom.NewCounter(prom.CounterOpts{
			Name: "docmerge_extraction_warnings_total",
			Help: "Per-repository extraction failures tolerated across all runs.",
		}),
		conflicts: prom.NewCounterVec(prom.CounterOpts{
			Name: "docmerge_conflicts_resolved_total",
			Help: "Filename collisions resolved, by strategy.",
		}, []string{"strategy"}),
		rewritten: prom.NewCounter(prom.CounterOpts{
			Name: "docmerge_links_rewritten_total",
			Help: "Cross-repository links rewritten across all runs.",
		}),
		stageSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "docmerge_stage_duration_seconds",
			Help:    "Pipeline stage durations.",
			Buckets: prom.DefBuckets,
		}, []string{"stage"}),
		runs: prom.NewCounterVec(prom.CounterOpts{
			Name: "docmerge_runs_total",
			Help: "Aggregation runs, by outcome.",
		}, []string{"outcome"}),
	}
	registry.MustRegister(r.repositories, r.documents, r.warnings, r.conflicts, r.rewritten, r.stageSeconds, r.runs)
	return r
}

// Handler returns an HTTP handler exposing the registry.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) RepositoriesProcessed(n int) { r.repositories.Add(float64(n)) }
func (r *PrometheusRecorder) DocumentsExtracted(n int)    { r.documents.Add(float64(n)) }
func (r *PrometheusRecorder) ExtractionWarnings(n int)    { r.warnings.Add(float64(n)) }
func (r *PrometheusRecorder) Conflicts(strategy string, n int) {
	r.conflicts.WithLabelValues(strategy).Add(float64(n))
}
func (r *PrometheusRecorder) LinksRewritten(n int) { r.rewritten.Add(float64(n)) }
func (r *PrometheusRecorder) StageDuration(stage string, seconds float64) {
	r.stageSeconds.WithLabelValues(stage).Observe(seconds)
}
func (r *PrometheusRecorder) RunCompleted(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.runs.WithLabelValues(outcome).Inc()
}
