// Package metrics exposes Prometheus instrumentation for the training
// pipeline and upstream fetchers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder wraps the Prometheus collectors used across the pipeline.
type Recorder struct {
	retrainRuns     *prometheus.CounterVec
	retrainsSkipped prometheus.Counter
	fetchErrors     *prometheus.CounterVec
	symbolsFetched  prometheus.Counter
	artifactWrites  prometheus.Counter
	modelAccuracy   prometheus.Gauge
	runDuration     prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		retrainRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mscal_retrain_runs_total",
				Help: "Total retrain pipeline runs by outcome mode",
			},
			[]string{"mode"}, // model | heuristic | error
		),
		retrainsSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mscal_retrains_skipped_total",
				Help: "Retrain triggers skipped because a run was in progress",
			},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mscal_fetch_errors_total",
				Help: "Upstream fetch failures by source",
			},
			[]string{"source"}, // history | listing
		),
		symbolsFetched: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mscal_symbols_fetched_total",
				Help: "Symbols whose price history was fetched",
			},
		),
		artifactWrites: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "mscal_artifact_writes_total",
				Help: "Calendar artifact publications",
			},
		),
		modelAccuracy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "mscal_model_accuracy",
				Help: "Holdout accuracy of the most recent trained model",
			},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mscal_retrain_duration_seconds",
				Help:    "Duration of retrain pipeline runs",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

// RecordRetrain records a completed retrain run and its outcome mode.
func (r *Recorder) RecordRetrain(mode string, seconds float64) {
	r.retrainRuns.WithLabelValues(mode).Inc()
	r.runDuration.Observe(seconds)
}

// RecordSkipped records a retrain trigger skipped by the running guard.
func (r *Recorder) RecordSkipped() {
	r.retrainsSkipped.Inc()
}

// RecordFetchError records an upstream fetch failure.
func (r *Recorder) RecordFetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

// RecordSymbolFetched records one fetched symbol history.
func (r *Recorder) RecordSymbolFetched() {
	r.symbolsFetched.Inc()
}

// RecordArtifactWrite records a calendar artifact publication.
func (r *Recorder) RecordArtifactWrite() {
	r.artifactWrites.Inc()
}

// RecordModelAccuracy records the latest holdout accuracy.
func (r *Recorder) RecordModelAccuracy(acc float64) {
	r.modelAccuracy.Set(acc)
}
