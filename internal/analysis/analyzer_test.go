package analysis_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vidup/internal/analysis"
	"vidup/internal/index"
	"vidup/internal/metrics"
	"vidup/internal/scene"
	"vidup/internal/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// twoScenes is three black frames followed by two bright ones.
func twoScenes() []byte {
	return testsupport.Clip(testsupport.Solid(0x00, 3), testsupport.Solid(0xF0, 2))
}

func analyze(t *testing.T, a *analysis.Analyzer, name string, data []byte, force, dryRun bool) analysis.Result {
	t.Helper()
	res, err := a.Analyze(context.Background(), analysis.Request{
		Name:      name,
		Source:    bytes.NewReader(data),
		FrameRate: 10,
		Force:     force,
		DryRun:    dryRun,
	})
	require.NoError(t, err)
	return res
}

func scenesOf(t *testing.T, store *index.Store, name string) []scene.ID {
	t.Helper()
	entry, err := store.FileEntry(context.Background(), name)
	require.NoError(t, err)
	scenes, err := store.ScenesByFile(context.Background(), entry.ID, nil)
	require.NoError(t, err)
	ids := make([]scene.ID, 0, len(scenes))
	for _, sc := range scenes {
		ids = append(ids, sc.ID)
	}
	return ids
}

func TestAnalyzeRegistersScenes(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	m := metrics.New()
	a := analysis.New(store, analysis.Options{Metrics: m})

	res := analyze(t, a, "clip", twoScenes(), false, false)
	assert.Equal(t, analysis.OutcomeAnalyzed, res.Outcome)
	assert.Equal(t, 5, res.Frames)
	assert.Equal(t, 2, res.Scenes)
	assert.Equal(t, 1, res.Boundaries)

	ids := scenesOf(t, store, "clip")
	require.Len(t, ids, 2)
	assert.Equal(t, uint32(300), ids[0].DurationMs)
	assert.Equal(t, uint32(200), ids[1].DurationMs)

	entry, err := store.FileEntry(context.Background(), "clip")
	require.NoError(t, err)
	assert.Equal(t, index.StatusAnalyzed, entry.Status)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.FramesRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScenesEmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(metrics.OutcomeAnalyzed)))
}

func TestReanalyzeWithoutForceIsNoop(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})

	first := analyze(t, a, "clip", twoScenes(), false, false)
	before := scenesOf(t, store, "clip")

	second := analyze(t, a, "clip", testsupport.Solid(0x80, 50), false, false)
	assert.Equal(t, analysis.OutcomeAlreadyAnalyzed, second.Outcome)
	assert.Equal(t, first.FileID, second.FileID)
	assert.Equal(t, before, scenesOf(t, store, "clip"))
}

func TestForceReplacesScenes(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})

	first := analyze(t, a, "clip", twoScenes(), false, false)
	second := analyze(t, a, "clip", testsupport.Solid(0x80, 50), true, false)
	assert.Equal(t, analysis.OutcomeAnalyzed, second.Outcome)
	assert.Greater(t, second.FileID, first.FileID)

	ids := scenesOf(t, store, "clip")
	require.Len(t, ids, 1)
	assert.Equal(t, uint32(5000), ids[0].DurationMs)

	health, err := store.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, health.Files)
	assert.Equal(t, 1, health.Scenes)
}

func TestUnanalyzedEntryIsReplacedWithoutForce(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	ctx := context.Background()
	partial, err := store.RegisterFile(ctx, "clip")
	require.NoError(t, err)
	require.NoError(t, store.RegisterScene(ctx, index.Scene{ID: scene.ID{Hash: 1, DurationMs: 1}, FileID: partial}))

	a := analysis.New(store, analysis.Options{})
	res := analyze(t, a, "clip", twoScenes(), false, false)
	assert.Equal(t, analysis.OutcomeAnalyzed, res.Outcome)
	assert.Len(t, scenesOf(t, store, "clip"), 2)
}

func TestDryRunLeavesIndexUntouched(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})

	res := analyze(t, a, "clip", twoScenes(), false, true)
	assert.Equal(t, analysis.OutcomeDryRun, res.Outcome)
	assert.Equal(t, 2, res.Scenes)
	assert.Zero(t, res.FileID)

	_, err := store.FileEntry(context.Background(), "clip")
	require.ErrorIs(t, err, index.ErrNotFound)
}

func TestDryRunForceKeepsExistingEntry(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})

	analyze(t, a, "clip", twoScenes(), false, false)
	before := scenesOf(t, store, "clip")

	res := analyze(t, a, "clip", testsupport.Solid(0x80, 50), true, true)
	assert.Equal(t, analysis.OutcomeDryRun, res.Outcome)
	assert.Equal(t, before, scenesOf(t, store, "clip"))
}

func TestSegmentationIsDeterministic(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})
	data := testsupport.Clip(testsupport.Solid(0x30, 7), testsupport.Solid(0xC0, 4), testsupport.Solid(0x30, 9))

	analyze(t, a, "one", data, false, false)
	analyze(t, a, "two", data, false, false)
	assert.Equal(t, scenesOf(t, store, "one"), scenesOf(t, store, "two"))
}

type failingScenes struct {
	analysis.Store
	err error
}

func (f failingScenes) RegisterScene(context.Context, index.Scene) error { return f.err }

func TestStoreFailureLeavesFileUnanalyzed(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	boom := errors.New("disk full")
	m := metrics.New()
	a := analysis.New(failingScenes{Store: store, err: boom}, analysis.Options{Metrics: m})

	_, err := a.Analyze(context.Background(), analysis.Request{
		Name: "clip", Source: bytes.NewReader(twoScenes()), FrameRate: 10,
	})
	require.ErrorIs(t, err, boom)

	entry, err := store.FileEntry(context.Background(), "clip")
	require.NoError(t, err)
	assert.Equal(t, index.StatusUnanalyzed, entry.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(metrics.OutcomeFailed)))
}

type brokenReader struct{ err error }

func (b brokenReader) Read([]byte) (int, error) { return 0, b.err }

func TestStreamErrorStillCompletes(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})
	boom := errors.New("pipe closed")

	res, err := a.Analyze(context.Background(), analysis.Request{
		Name:      "clip",
		Source:    io.MultiReader(bytes.NewReader(twoScenes()), brokenReader{err: boom}),
		FrameRate: 10,
	})
	require.NoError(t, err)
	require.ErrorIs(t, res.StreamErr, boom)
	assert.Equal(t, analysis.OutcomeAnalyzed, res.Outcome)
	assert.Equal(t, 5, res.Frames)
	assert.Len(t, scenesOf(t, store, "clip"), 2)
}

func TestStreamErrorBeforeFirstFrameFails(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	m := metrics.New()
	a := analysis.New(store, analysis.Options{Metrics: m})
	boom := errors.New("ffmpeg exited with status 1")
	ctx := context.Background()

	for _, name := range []string{"one", "two"} {
		res, err := a.Analyze(ctx, analysis.Request{Name: name, Source: brokenReader{err: boom}, FrameRate: 10})
		require.ErrorIs(t, err, analysis.ErrNoFrames)
		require.ErrorIs(t, err, boom)
		assert.Zero(t, res.FileID)

		_, err = store.FileEntry(ctx, name)
		require.ErrorIs(t, err, index.ErrNotFound)
	}

	holders, err := store.ScenesByHash(ctx, scene.ID{}, nil)
	require.NoError(t, err)
	assert.Empty(t, holders)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues(metrics.OutcomeFailed)))
}

func TestAnalyzeValidatesRequest(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})
	ctx := context.Background()

	_, err := a.Analyze(ctx, analysis.Request{Name: "", Source: bytes.NewReader(nil), FrameRate: 30})
	require.Error(t, err)
	_, err = a.Analyze(ctx, analysis.Request{Name: "x", FrameRate: 30})
	require.Error(t, err)
	_, err = a.Analyze(ctx, analysis.Request{Name: "x", Source: bytes.NewReader(nil)})
	require.ErrorIs(t, err, scene.ErrInvalidFrameRate)
}

func TestOnFrameHookSeesEveryFrame(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	frames := 0
	a := analysis.New(store, analysis.Options{OnFrame: func(scene.FrameStat) { frames++ }})
	analyze(t, a, "clip", twoScenes(), false, true)
	assert.Equal(t, 5, frames)
}

func TestDelete(t *testing.T) {
	store := testsupport.MustOpenIndex(t)
	a := analysis.New(store, analysis.Options{})
	res := analyze(t, a, "clip", twoScenes(), false, false)

	id, err := a.Delete(context.Background(), "clip")
	require.NoError(t, err)
	assert.Equal(t, res.FileID, id)

	remaining, err := store.ScenesByFile(context.Background(), id, nil)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = a.Delete(context.Background(), "clip")
	require.ErrorIs(t, err, index.ErrNotFound)
}
