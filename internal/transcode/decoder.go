package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"vidup/internal/frame"
	"vidup/internal/logging"
)

const stderrTailLines = 20

// Options configures a decode.
type Options struct {
	// Binary is the ffmpeg executable; empty means "ffmpeg" from PATH.
	Binary string
	// Input is a file path. "-" reads from Stdin.
	Input     string
	Stdin     io.Reader
	FrameRate int
	Logger    *slog.Logger
}

// Decoder streams raw frames from a running ffmpeg process.
type Decoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	group  *errgroup.Group
	tail   *tailBuffer

	mu      sync.Mutex
	done    bool
	waitErr error
}

// Args returns the ffmpeg arguments that produce the frame stream.
func Args(input string, frameRate int) []string {
	args := []string{"-hide_banner", "-v", "error"}
	if input == "-" {
		input = "pipe:0"
	} else {
		args = append(args, "-nostdin")
	}
	filter := fmt.Sprintf("fps=%d,scale=%d:%d:flags=area,format=gray", frameRate, frame.Width, frame.Height)
	return append(args,
		"-i", input,
		"-an", "-sn", "-dn",
		"-vf", filter,
		"-pix_fmt", "gray",
		"-f", "rawvideo",
		"pipe:1",
	)
}

// Start launches ffmpeg. The returned Decoder must be closed.
func Start(ctx context.Context, opts Options) (*Decoder, error) {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	input := strings.TrimSpace(opts.Input)
	if input == "" {
		return nil, errors.New("transcode: empty input")
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("transcode: invalid frame rate %d", opts.FrameRate)
	}

	args := Args(input, opts.FrameRate)

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, binary, args...) //nolint:gosec
	if input == "-" {
		cmd.Stdin = opts.Stdin
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	logger := logging.NewComponentLogger(opts.Logger, "transcode")
	logger.Debug("starting ffmpeg",
		logging.String("binary", binary),
		logging.String("args", strings.Join(args, " ")),
	)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	d := &Decoder{
		cmd:    cmd,
		stdout: stdout,
		cancel: cancel,
		group:  new(errgroup.Group),
		tail:   newTailBuffer(stderrTailLines),
	}
	d.group.Go(func() error {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			d.tail.Add(line)
			logger.Debug("ffmpeg", logging.String("line", line))
		}
		return scanner.Err()
	})
	return d, nil
}

// Read implements io.Reader over ffmpeg's stdout.
func (d *Decoder) Read(p []byte) (int, error) {
	d.mu.Lock()
	finished, waitErr := d.done, d.waitErr
	d.mu.Unlock()
	if finished {
		if waitErr != nil {
			return 0, waitErr
		}
		return 0, io.EOF
	}

	n, err := d.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		if waitErr := d.wait(); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// Close stops ffmpeg if it is still running and releases its resources.
// Closing before the stream is exhausted is not an error.
func (d *Decoder) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	finished := d.done
	d.mu.Unlock()
	if finished {
		return d.wait()
	}
	d.cancel()
	_ = d.wait()
	return nil
}

// StderrTail returns the last lines ffmpeg wrote to stderr.
func (d *Decoder) StderrTail() []string {
	return d.tail.Lines()
}

func (d *Decoder) wait() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return d.waitErr
	}
	d.done = true
	scanErr := d.group.Wait()
	err := d.cmd.Wait()
	d.cancel()
	switch {
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			d.waitErr = fmt.Errorf("ffmpeg exited with status %d: %s", exitErr.ExitCode(), d.tail.String())
		} else {
			d.waitErr = fmt.Errorf("ffmpeg: %w", err)
		}
	case scanErr != nil:
		d.waitErr = fmt.Errorf("read ffmpeg stderr: %w", scanErr)
	}
	return d.waitErr
}

type tailBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = append(t.lines[:0], t.lines[len(t.lines)-t.max:]...)
	}
}

func (t *tailBuffer) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.lines...)
}

func (t *tailBuffer) String() string {
	lines := t.Lines()
	if len(lines) == 0 {
		return "no output"
	}
	return strings.Join(lines, "; ")
}
