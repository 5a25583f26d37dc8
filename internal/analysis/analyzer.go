package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"vidup/internal/frame"
	"vidup/internal/index"
	"vidup/internal/logging"
	"vidup/internal/metrics"
	"vidup/internal/scene"
)

// ErrNoFrames is returned when the frame stream fails before delivering a
// single frame.
var ErrNoFrames = errors.New("frame stream failed before the first frame")

// Store is the subset of the index used by the lifecycle.
type Store interface {
	FileEntry(ctx context.Context, name string) (index.FileEntry, error)
	RegisterFile(ctx context.Context, name string) (index.FileID, error)
	UpdateFileStatus(ctx context.Context, id index.FileID, status index.FileStatus) error
	DeleteFile(ctx context.Context, id index.FileID) error
	RegisterScene(ctx context.Context, sc index.Scene) error
}

// Outcome describes how an Analyze call ended.
type Outcome string

const (
	OutcomeAnalyzed        Outcome = "analyzed"
	OutcomeAlreadyAnalyzed Outcome = "already_analyzed"
	OutcomeDryRun          Outcome = "dry_run"
)

// Request describes one file to analyze.
type Request struct {
	// Name is the file's index identity, usually index.NameFromPath of its path.
	Name      string
	Source    io.Reader
	FrameRate int
	Force     bool
	DryRun    bool
}

// Result reports what Analyze did.
type Result struct {
	Outcome    Outcome       `json:"outcome"`
	FileID     index.FileID  `json:"file_id,omitempty"`
	Name       string        `json:"name"`
	Frames     int           `json:"frames"`
	Scenes     int           `json:"scenes"`
	Boundaries int           `json:"boundaries"`
	StreamErr  error         `json:"-"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Options configures an Analyzer.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// OnFrame observes every processed frame, e.g. for progress display.
	OnFrame func(scene.FrameStat)
}

// Analyzer runs the file lifecycle against a Store.
type Analyzer struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	onFrame func(scene.FrameStat)
}

// New constructs an Analyzer.
func New(store Store, opts Options) *Analyzer {
	return &Analyzer{
		store:   store,
		logger:  logging.NewComponentLogger(opts.Logger, "analysis"),
		metrics: opts.Metrics,
		onFrame: opts.OnFrame,
	}
}

// Analyze segments req.Source and records its scenes under req.Name.
//
// An Analyzed entry is left untouched unless req.Force is set. A failed
// analysis leaves the entry Unanalyzed; the next Analyze of the same name
// replaces it. A stream that fails before its first frame is rejected with
// ErrNoFrames and its entry removed, so it never matches other failures.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	result := Result{Name: req.Name}
	if strings.TrimSpace(req.Name) == "" {
		return result, errors.New("analyze: file name is required")
	}
	if req.Source == nil {
		return result, errors.New("analyze: frame source is required")
	}
	if req.FrameRate <= 0 {
		return result, fmt.Errorf("analyze: %w", scene.ErrInvalidFrameRate)
	}
	logger := a.logger.With(logging.String(logging.FieldFile, req.Name))

	entry, err := a.store.FileEntry(ctx, req.Name)
	exists := err == nil
	if err != nil && !errors.Is(err, index.ErrNotFound) {
		a.fail(started)
		return result, fmt.Errorf("analyze: %w", err)
	}

	if exists {
		if entry.Status == index.StatusAnalyzed && !req.Force {
			result.Outcome = OutcomeAlreadyAnalyzed
			result.FileID = entry.ID
			a.observe(result.Outcome, time.Since(started))
			logger.Info("file already analyzed", logging.Int64(logging.FieldFileID, int64(entry.ID)))
			return result, nil
		}
		if !req.DryRun {
			if err := a.store.DeleteFile(ctx, entry.ID); err != nil {
				a.fail(started)
				return result, fmt.Errorf("analyze: replace existing entry: %w", err)
			}
			logger.Debug("removed previous entry",
				logging.Int64(logging.FieldFileID, int64(entry.ID)),
				logging.String("previous_status", entry.Status.String()),
			)
		}
	}

	if !req.DryRun {
		id, err := a.store.RegisterFile(ctx, req.Name)
		if err != nil {
			a.fail(started)
			return result, fmt.Errorf("analyze: %w", err)
		}
		result.FileID = id
	}

	logger.Info("analyzing",
		logging.Int("frame_rate", req.FrameRate),
		logging.Bool("dry_run", req.DryRun),
	)

	trace := logger.Enabled(ctx, slog.LevelDebug)
	seg := scene.Segmenter{
		FrameRate: req.FrameRate,
		OnFrame: func(stat scene.FrameStat) {
			if stat.Boundary {
				result.Boundaries++
			}
			if trace {
				logger.Debug("frame",
					logging.Int("index", stat.Index),
					logging.Float64("seconds", float64(stat.Index)/float64(req.FrameRate)),
					logging.Float64("rmse", stat.RMSE),
					logging.String("crc", fmt.Sprintf("%08X", stat.CRC)),
					logging.Bool("scene_changed", stat.Boundary),
				)
			}
			if a.onFrame != nil {
				a.onFrame(stat)
			}
		},
	}

	emit := func(id scene.ID) error {
		if req.DryRun {
			return nil
		}
		return a.store.RegisterScene(ctx, index.Scene{ID: id, FileID: result.FileID})
	}

	summary, err := seg.Run(ctx, frame.NewReader(req.Source), emit)
	result.Frames = summary.Frames
	result.Scenes = summary.Scenes
	a.recordFrames(result)
	if err != nil {
		a.fail(started)
		return result, fmt.Errorf("analyze: %w", err)
	}
	if summary.StreamErr != nil && summary.Frames == 0 {
		if !req.DryRun {
			if err := a.store.DeleteFile(ctx, result.FileID); err != nil {
				logger.Warn("failed to remove empty entry",
					logging.Error(err),
					logging.Int64(logging.FieldFileID, int64(result.FileID)),
				)
			}
			result.FileID = 0
		}
		result.Scenes = 0
		a.fail(started)
		return result, fmt.Errorf("analyze: %w: %w", ErrNoFrames, summary.StreamErr)
	}
	if summary.StreamErr != nil {
		result.StreamErr = summary.StreamErr
		logger.Warn("frame stream ended early",
			logging.Error(summary.StreamErr),
			logging.Int("frames", summary.Frames),
			logging.String(logging.FieldEventType, "stream_error"),
			logging.String(logging.FieldImpact, "scenes after the failure point are missing"),
		)
	}

	if !req.DryRun {
		if err := a.store.UpdateFileStatus(ctx, result.FileID, index.StatusAnalyzed); err != nil {
			a.fail(started)
			return result, fmt.Errorf("analyze: %w", err)
		}
		result.Outcome = OutcomeAnalyzed
	} else {
		result.Outcome = OutcomeDryRun
	}

	result.Elapsed = time.Since(started)
	a.observe(result.Outcome, result.Elapsed)
	logger.Info("scenes registered",
		logging.Int("scenes", result.Scenes),
		logging.Int("frames", result.Frames),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// Delete removes name and its scenes from the index.
func (a *Analyzer) Delete(ctx context.Context, name string) (index.FileID, error) {
	entry, err := a.store.FileEntry(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	if err := a.store.DeleteFile(ctx, entry.ID); err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	a.logger.Info("file deleted",
		logging.String(logging.FieldFile, name),
		logging.Int64(logging.FieldFileID, int64(entry.ID)),
	)
	return entry.ID, nil
}

func (a *Analyzer) recordFrames(result Result) {
	if a.metrics == nil {
		return
	}
	a.metrics.FramesRead.Add(float64(result.Frames))
	a.metrics.ScenesEmitted.Add(float64(result.Scenes))
	a.metrics.SceneBoundaries.Add(float64(result.Boundaries))
}

func (a *Analyzer) observe(outcome Outcome, elapsed time.Duration) {
	a.metrics.ObserveAnalysis(string(outcome), elapsed)
}

func (a *Analyzer) fail(started time.Time) {
	a.metrics.ObserveAnalysis(metrics.OutcomeFailed, time.Since(started))
}
