package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidup/internal/metrics"
)

func TestObserveAnalysis(t *testing.T) {
	m := metrics.New()
	m.ObserveAnalysis(metrics.OutcomeAnalyzed, 2*time.Second)
	m.ObserveAnalysis(metrics.OutcomeAnalyzed, time.Second)
	m.ObserveAnalysis(metrics.OutcomeAlreadyAnalyzed, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(metrics.OutcomeAnalyzed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(metrics.OutcomeAlreadyAnalyzed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveAnalysis(metrics.OutcomeFailed, time.Second)
	m.ObserveQuery(metrics.KindTop)
	require.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.New()
	m.FramesRead.Add(120)
	m.ObserveQuery(metrics.KindSearch)

	path := filepath.Join(t.TempDir(), "nested", "vidup.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "vidup_frames_read_total 120"), text)
	assert.True(t, strings.Contains(text, `vidup_searches_total{kind="search"} 1`), text)
}
