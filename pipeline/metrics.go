package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teranos/azsku/errors"
)

// runMetrics holds Prometheus metrics for one extraction run. They are
// written in node_exporter textfile format when the run ends.
type runMetrics struct {
	registry *prometheus.Registry

	units    *prometheus.CounterVec // by outcome: extracted/skipped/preview/failed
	entities *prometheus.CounterVec // by kind and verdict
	failures *prometheus.CounterVec // by error kind

	duration   prometheus.Histogram // per series
	runSeconds prometheus.Gauge
	finishedAt prometheus.Gauge
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),

		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azsku",
			Subsystem: "extract",
			Name:      "series_total",
			Help:      "Series units handled by the last run",
		}, []string{"outcome"}),

		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azsku",
			Subsystem: "extract",
			Name:      "entities_total",
			Help:      "Entities produced by the last run",
		}, []string{"kind", "verdict"}),

		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "azsku",
			Subsystem: "extract",
			Name:      "failures_total",
			Help:      "Series that failed extraction, by error kind",
		}, []string{"kind"}),

		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "azsku",
			Subsystem: "extract",
			Name:      "series_duration_seconds",
			Help:      "Time to resolve and assemble one series",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "azsku",
			Subsystem: "extract",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),

		finishedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "azsku",
			Subsystem: "extract",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(m.units, m.entities, m.failures, m.duration, m.runSeconds, m.finishedAt)
	return m
}

func (m *runMetrics) finish(start, end time.Time) {
	m.runSeconds.Set(end.Sub(start).Seconds())
	m.finishedAt.Set(float64(end.Unix()))
}

// writeTextfile writes the registry for the node_exporter textfile collector.
// An empty path disables it.
func (m *runMetrics) writeTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
