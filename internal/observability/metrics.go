package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for batch runs.
type Metrics struct {
	FilesDiscovered prometheus.Counter
	TasksProcessed  prometheus.Counter
	TaskErrors      prometheus.Counter
	ImagesWritten   prometheus.Counter
	ImageCollisions prometheus.Counter
	ControllerBusy  prometheus.Gauge

	Runs          *prometheus.CounterVec   // labels: outcome={complete,failed,rejected}
	StageDuration *prometheus.HistogramVec // labels: stage={init,process,render,profile}

	// Projection cache metrics.
	ProjectionCache *prometheus.CounterVec // labels: result={hit,miss}

	gatherer prometheus.Gatherer
}

var stageBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60}

func newMetrics() *Metrics {
	return &Metrics{
		FilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "files_discovered_total",
			Help:      "Total input files found under source directories.",
		}),
		TasksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "tasks_processed_total",
			Help:      "Total files processed into physical grids.",
		}),
		TaskErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "task_errors_total",
			Help:      "Total per-file pipeline failures.",
		}),
		ImagesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "images_written_total",
			Help:      "Total raster images written.",
		}),
		ImageCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "image_collisions_total",
			Help:      "Input files skipped because another file already produced the same timestamp.",
		}),
		ControllerBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "meteovis",
			Name:      "controller_busy",
			Help:      "1 while a batch run is in progress, 0 otherwise.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "runs_total",
			Help:      "Batch runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meteovis",
			Name:      "stage_duration_seconds",
			Help:      "Duration of one batch stage across all files.",
			Buckets:   stageBuckets,
		}, []string{"stage"}),
		ProjectionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteovis",
			Name:      "projection_cache_total",
			Help:      "Projected geometry cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesDiscovered,
		m.TasksProcessed,
		m.TaskErrors,
		m.ImagesWritten,
		m.ImageCollisions,
		m.ControllerBusy,
		m.Runs,
		m.StageDuration,
		m.ProjectionCache,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
