// Package metrics records compile runs as Prometheus metrics. Each Recorder
// owns its registry so a CLI run can dump exactly its own numbers to a
// node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/piwi3910/PathOrder/internal/model"
)

// Recorder holds the compile metrics.
type Recorder struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	lines        prometheus.Counter
	movements    prometheus.Counter
	cutPaths     prometheus.Counter
	dependencies prometheus.Counter
	violations   prometheus.Counter
	connectors   prometheus.Counter
	travel       *prometheus.GaugeVec
	duration     prometheus.Histogram
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pathorder_compile_runs_total",
			Help: "Total compile runs by result",
		}, []string{"result"}),
		lines: factory.NewCounter(prometheus.CounterOpts{
			Name: "pathorder_lines_read_total",
			Help: "Total program lines read",
		}),
		movements: factory.NewCounter(prometheus.CounterOpts{
			Name: "pathorder_movements_total",
			Help: "Total lines promoted to movements",
		}),
		cutPaths: factory.NewCounter(prometheus.CounterOpts{
			Name: "pathorder_cut_paths_total",
			Help: "Total cut path containers created",
		}),
		dependencies: factory.NewCounter(prometheus.CounterOpts{
			Name: "pathorder_dependencies_total",
			Help: "Total dependency edges installed",
		}),
		violations: factory.NewCounter(prometheus.CounterOpts{
			Name: "pathorder_plan_violations_total",
			Help: "Total emitted-order violations found by verification",
		}),
		connectors: factory.NewCounter(prometheus.CounterOpts{
			Name: "pathorder_feed_connectors_total",
			Help: "Total emitted feed moves entered away from their original start",
		}),
		travel: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pathorder_travel_mm",
			Help: "Non-cutting travel of the last run",
		}, []string{"order"}), // "original" or "emitted"
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathorder_compile_duration_seconds",
			Help:    "Compile duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one compile run. A non-nil err counts the run as failed.
func (r *Recorder) Observe(stats model.Stats, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.runs.WithLabelValues(result).Inc()
	r.lines.Add(float64(stats.LinesRead))
	r.movements.Add(float64(stats.MovementsParsed))
	r.cutPaths.Add(float64(stats.CutPaths))
	r.dependencies.Add(float64(stats.Dependencies))
	r.violations.Add(float64(stats.VerifyViolations))
	r.connectors.Add(float64(stats.FeedConnectors))
	r.travel.WithLabelValues("original").Set(stats.TravelBefore)
	r.travel.WithLabelValues("emitted").Set(stats.TravelAfter)
	r.duration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
