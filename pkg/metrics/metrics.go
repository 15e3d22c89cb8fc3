// Package metrics counts scan and removal activity and exports it in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a run
type Metrics struct {
	registry *prometheus.Registry

	recordsScanned *prometheus.CounterVec
	recordsMatched *prometheus.CounterVec
	recordsRemoved *prometheus.CounterVec
	formatErrors   *prometheus.CounterVec
	filesProcessed *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

const (
	StatusListed    = "listed"
	StatusRewritten = "rewritten"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		recordsScanned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utmptrace_records_scanned_total",
				Help: "Total number of records decoded",
			},
			[]string{"file"},
		),

		recordsMatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utmptrace_records_matched_total",
				Help: "Total number of records that satisfied the conditions",
			},
			[]string{"file"},
		),

		recordsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utmptrace_records_removed_total",
				Help: "Total number of records removed from files",
			},
			[]string{"file"},
		),

		formatErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utmptrace_format_errors_total",
				Help: "Total number of files that stopped early on a malformed record",
			},
			[]string{"file"},
		),

		filesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utmptrace_files_processed_total",
				Help: "Total number of target files handled, by outcome",
			},
			[]string{"status"},
		),

		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "utmptrace_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run",
			},
		),
	}
}

// RecordScan adds the counts from one file's pass
func (m *Metrics) RecordScan(file string, scanned, matched int, malformed bool) {
	m.recordsScanned.WithLabelValues(file).Add(float64(scanned))
	m.recordsMatched.WithLabelValues(file).Add(float64(matched))
	if malformed {
		m.formatErrors.WithLabelValues(file).Inc()
	}
}

// RecordRemoval adds records physically removed from file
func (m *Metrics) RecordRemoval(file string, removed int) {
	m.recordsRemoved.WithLabelValues(file).Add(float64(removed))
}

// RecordFile counts one target file by outcome
func (m *Metrics) RecordFile(status string) {
	m.filesProcessed.WithLabelValues(status).Inc()
}

// MarkRun stamps the completion time of the run
func (m *Metrics) MarkRun(t time.Time) {
	m.lastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile atomically writes all metrics to path
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
