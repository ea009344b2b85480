// Package telemetry exposes extraction metrics in the Prometheus text format.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric label values for group outcomes.
const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"
)

// Metrics collects extraction counters on a private registry.
// Its methods match the extraction observer hooks.
type Metrics struct {
	registry *prometheus.Registry

	groupsTotal       *prometheus.CounterVec
	featuresTotal     prometheus.Counter
	runsTotal         prometheus.Counter
	extractionSeconds prometheus.Histogram
}

// NewMetrics creates and registers the extraction metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		groupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsfeat_groups_processed_total",
			Help: "Groups processed, by outcome.",
		}, []string{"outcome"}),
		featuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsfeat_features_computed_total",
			Help: "Qualified features computed across successful groups.",
		}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsfeat_runs_total",
			Help: "Completed extraction runs.",
		}),
		extractionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tsfeat_extraction_duration_seconds",
			Help:    "Wall time of an extraction run in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	m.registry.MustRegister(m.groupsTotal, m.featuresTotal, m.runsTotal, m.extractionSeconds)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GroupSucceeded counts a successful group and its features.
func (m *Metrics) GroupSucceeded(_ string, features int) {
	m.groupsTotal.WithLabelValues(outcomeOK).Inc()
	m.featuresTotal.Add(float64(features))
}

// GroupFailed counts a failed group.
func (m *Metrics) GroupFailed(_ string, _ error) {
	m.groupsTotal.WithLabelValues(outcomeFailed).Inc()
}

// RunCompleted counts the run and observes its duration.
func (m *Metrics) RunCompleted(_, _ int, elapsed time.Duration) {
	m.runsTotal.Inc()
	m.extractionSeconds.Observe(elapsed.Seconds())
}

// WriteToTextfile writes the metrics to path in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
