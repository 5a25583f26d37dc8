package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"vidup/internal/analysis"
	"vidup/internal/config"
	"vidup/internal/frame"
	"vidup/internal/index"
	"vidup/internal/logging"
	"vidup/internal/scene"
	"vidup/internal/transcode"
)

type analyzeOptions struct {
	frameRate int
	force     bool
	dryRun    bool
	stdinName string
	decode    bool
}

type analyzeOutput struct {
	analysis.Result
	StreamError string `json:"stream_error,omitempty"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [FILE]",
		Short: "Fingerprint a video's scenes and add them to the index",
		Long: `Fingerprint a video's scenes and add them to the index.

By default FILE holds raw 16x16 8-bit grayscale frames. With --decode, FILE
is any video ffmpeg can read. With --stdin NAME the frames (or, with --decode,
the video) are read from standard input and indexed under NAME.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.flushMetrics()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("frame-rate") {
				opts.frameRate = cfg.Analysis.FrameRate
			}
			if opts.frameRate <= 0 {
				return fmt.Errorf("--frame-rate must be positive (got %d)", opts.frameRate)
			}

			var path, name string
			switch {
			case len(args) == 1 && opts.stdinName != "":
				return errors.New("give either FILE or --stdin NAME, not both")
			case len(args) == 1:
				path = args[0]
				name = index.NameFromPath(path)
			case opts.stdinName != "":
				name = index.NameFromPath(opts.stdinName)
			default:
				return errors.New("FILE or --stdin NAME is required")
			}
			if name == "" {
				return errors.New("could not derive a file name")
			}

			source, expected, closeSource, err := openFrameSource(cmd, ctx, cfg, path, opts)
			if err != nil {
				return err
			}

			var result analysis.Result
			err = ctx.withIndex(cmd.Context(), func(store *index.Store) error {
				bar := newFrameProgress(cmd, ctx, name, expected)
				analyzer := analysis.New(store, analysis.Options{
					Logger:  ctx.Logger(),
					Metrics: ctx.metrics,
					OnFrame: func(scene.FrameStat) {
						if bar != nil {
							_ = bar.Add(1)
						}
					},
				})
				var runErr error
				result, runErr = analyzer.Analyze(cmd.Context(), analysis.Request{
					Name:      name,
					Source:    source,
					FrameRate: opts.frameRate,
					Force:     opts.force,
					DryRun:    opts.dryRun,
				})
				if bar != nil {
					_ = bar.Finish()
				}
				return runErr
			})
			if closeErr := closeSource(); closeErr != nil && err == nil && result.StreamErr == nil {
				result.StreamErr = closeErr
			}
			if err != nil {
				return err
			}
			return renderAnalyzeResult(cmd, ctx, result)
		},
	}

	cmd.Flags().IntVar(&opts.frameRate, "frame-rate", 0, "Frame rate of the input stream (default from config)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Re-analyze even if the file is already indexed")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Segment without writing to the index")
	cmd.Flags().StringVar(&opts.stdinName, "stdin", "", "Read from standard input and index under `NAME`")
	cmd.Flags().BoolVar(&opts.decode, "decode", false, "Decode the input with ffmpeg instead of reading raw frames")
	return cmd
}

// openFrameSource returns the frame stream for the request, an estimate of
// its length in frames (0 when unknown), and a close function.
func openFrameSource(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, path string, opts analyzeOptions) (io.Reader, int, func() error, error) {
	noop := func() error { return nil }

	if !opts.decode {
		if path == "" {
			return cmd.InOrStdin(), 0, noop, nil
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("open frames: %w", err)
		}
		expected := 0
		if info, statErr := file.Stat(); statErr == nil {
			expected = int(info.Size() / frame.Size)
		}
		return file, expected, file.Close, nil
	}

	input := path
	if input == "" {
		input = "-"
	}
	expected := 0
	if input != "-" {
		probe, err := transcode.Inspect(cmd.Context(), cfg.Transcoder.FFprobeBinary, input)
		if err != nil {
			ctx.Logger().Debug("duration probe failed", logging.Error(err))
		} else {
			expected = probe.EstimateFrames(opts.frameRate)
		}
	}
	dec, err := transcode.Start(cmd.Context(), transcode.Options{
		Binary:    cfg.Transcoder.FFmpegBinary,
		Input:     input,
		Stdin:     cmd.InOrStdin(),
		FrameRate: opts.frameRate,
		Logger:    ctx.Logger(),
	})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("decode: %w", err)
	}
	return dec, expected, dec.Close, nil
}

func newFrameProgress(cmd *cobra.Command, ctx *commandContext, name string, expected int) *progressbar.ProgressBar {
	out := cmd.ErrOrStderr()
	if ctx.JSONMode() || ctx.Verbose() || !isTerminal(out) {
		return nil
	}
	total := int64(expected)
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func renderAnalyzeResult(cmd *cobra.Command, ctx *commandContext, result analysis.Result) error {
	if ctx.JSONMode() {
		out := analyzeOutput{Result: result}
		if result.StreamErr != nil {
			out.StreamError = result.StreamErr.Error()
		}
		return writeJSON(cmd, out)
	}

	if result.StreamErr != nil {
		info(cmd, "warning: frame stream ended early: %v", result.StreamErr)
	}

	out := cmd.OutOrStdout()
	switch result.Outcome {
	case analysis.OutcomeAlreadyAnalyzed:
		info(cmd, "%s is already analyzed (use --force to re-analyze)", result.Name)
	case analysis.OutcomeDryRun:
		fmt.Fprintf(out, "Dry run %s: %s frames, %s scenes in %s (index unchanged)\n",
			result.Name, formatCount(result.Frames), formatCount(result.Scenes), result.Elapsed.Round(time.Millisecond))
	default:
		fmt.Fprintf(out, "Analyzed %s: %s frames, %s scenes in %s (file id %d)\n",
			result.Name, formatCount(result.Frames), formatCount(result.Scenes), result.Elapsed.Round(time.Millisecond), result.FileID)
	}
	return nil
}
