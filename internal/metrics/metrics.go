// Package metrics counts analysis and query activity and writes it in the
// Prometheus text format for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for AnalysesTotal.
const (
	OutcomeAnalyzed        = "analyzed"
	OutcomeAlreadyAnalyzed = "already_analyzed"
	OutcomeDryRun          = "dry_run"
	OutcomeFailed          = "failed"
)

// Query kinds for SearchesTotal.
const (
	KindSearch = "search"
	KindTop    = "top"
)

// Metrics holds vidup's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FramesRead       prometheus.Counter
	ScenesEmitted    prometheus.Counter
	SceneBoundaries  prometheus.Counter
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	SearchesTotal    *prometheus.CounterVec
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		FramesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "vidup_frames_read_total",
			Help: "Frames read from analysed streams",
		}),
		ScenesEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "vidup_scenes_emitted_total",
			Help: "Scenes flushed by the segmenter",
		}),
		SceneBoundaries: factory.NewCounter(prometheus.CounterOpts{
			Name: "vidup_scene_boundaries_total",
			Help: "Scene changes detected between consecutive frames",
		}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidup_analyses_total",
			Help: "File analyses, by outcome",
		}, []string{"outcome"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidup_analysis_duration_seconds",
			Help:    "Wall time spent analysing one file",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}),
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidup_searches_total",
			Help: "Duplicate queries, by kind",
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAnalyzed || outcome == OutcomeDryRun {
		m.AnalysisDuration.Observe(elapsed.Seconds())
	}
}

// ObserveQuery records one duplicate query.
func (m *Metrics) ObserveQuery(kind string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
