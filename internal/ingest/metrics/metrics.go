// Package metrics provides observability for the ingest pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ingest subsystem.
type Metrics struct {
	// Pipeline runs by source and terminal status
	RunsTotal *prometheus.CounterVec

	// Raw records pulled per source
	RecordsExtracted *prometheus.CounterVec

	// Entities rejected by the validation gate per source
	ValidationFailures *prometheus.CounterVec

	// Load outcomes per source: added, updated, skipped
	PropertiesLoaded *prometheus.CounterVec

	// Full run duration per source
	RunDuration *prometheus.HistogramVec
}

// New creates the ingest metrics against the given registerer. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propflow_ingest_runs_total",
			Help: "Total pipeline runs by source and status",
		}, []string{"source", "status"}), // status: "success", "failure"

		RecordsExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propflow_ingest_records_extracted_total",
			Help: "Raw records extracted per source",
		}, []string{"source"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propflow_ingest_validation_failures_total",
			Help: "Canonical entities rejected by validation per source",
		}, []string{"source"}),

		PropertiesLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "propflow_ingest_properties_loaded_total",
			Help: "Load outcomes per source",
		}, []string{"source", "outcome"}), // outcome: "added", "updated", "skipped"

		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propflow_ingest_run_duration_seconds",
			Help:    "Duration of full pipeline runs including extraction throttling",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"source"}),
	}
}

// ObserveRun records one completed pipeline run.
func (m *Metrics) ObserveRun(source string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.RunsTotal.WithLabelValues(source, status).Inc()
	m.RunDuration.WithLabelValues(source).Observe(d.Seconds())
}

// AddExtracted records raw records pulled from a source.
func (m *Metrics) AddExtracted(source string, n int) {
	if m != nil {
		m.RecordsExtracted.WithLabelValues(source).Add(float64(n))
	}
}

// AddValidationFailures records rejected entities for a source.
func (m *Metrics) AddValidationFailures(source string, n int) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(source).Add(float64(n))
	}
}

// AddLoaded records load outcomes for a source.
func (m *Metrics) AddLoaded(source string, added, updated, skipped int) {
	if m == nil {
		return
	}
	m.PropertiesLoaded.WithLabelValues(source, "added").Add(float64(added))
	m.PropertiesLoaded.WithLabelValues(source, "updated").Add(float64(updated))
	m.PropertiesLoaded.WithLabelValues(source, "skipped").Add(float64(skipped))
}
