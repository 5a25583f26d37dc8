package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"vidup/internal/frame"
)

// ChangeThreshold is the frame-to-frame RMSE above which a new scene starts.
const ChangeThreshold = 4.5

// ErrInvalidFrameRate is returned when a segmenter is run without a positive frame rate.
var ErrInvalidFrameRate = errors.New("frame rate must be positive")

// ID identifies a scene by content fingerprint and length.
type ID struct {
	Hash       uint32
	DurationMs uint32
}

// Duration returns the scene length.
func (id ID) Duration() time.Duration {
	return time.Duration(id.DurationMs) * time.Millisecond
}

func (id ID) String() string {
	return fmt.Sprintf("%08X/%dms", id.Hash, id.DurationMs)
}

// FrameStat describes one processed frame.
type FrameStat struct {
	Index    int
	RMSE     float64
	CRC      uint32
	Boundary bool
}

// Summary reports the outcome of a segmentation run.
type Summary struct {
	Frames int
	Scenes int
	// StreamErr holds a read failure that ended the stream early. The pending
	// scene is still flushed when it is set.
	StreamErr error
}

// Segmenter converts frames into scene IDs.
type Segmenter struct {
	FrameRate int
	// OnFrame, when set, is called after every frame has been folded.
	OnFrame func(FrameStat)
}

// DurationMs converts a frame count into milliseconds at the given rate,
// truncating toward zero.
func DurationMs(frames, frameRate int) uint32 {
	if frameRate <= 0 || frames <= 0 {
		return 0
	}
	return uint32(uint64(frames) * 1000 / uint64(frameRate))
}

// Run consumes r until it is exhausted, calling emit once per finished scene.
// The trailing scene is always emitted, so every run emits at least one ID.
// An emit error aborts the run and is returned unchanged.
func (s *Segmenter) Run(ctx context.Context, r *frame.Reader, emit func(ID) error) (Summary, error) {
	var summary Summary
	if s.FrameRate <= 0 {
		return summary, ErrInvalidFrameRate
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var buffers [2]frame.Frame
	last, cur := &buffers[0], &buffers[1]
	var (
		crc   uint32
		index int
		start int
	)

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := r.ReadFrame(cur); err != nil {
			if !errors.Is(err, io.EOF) {
				summary.StreamErr = err
			}
			break
		}

		rmse := frame.RMSE(cur, last)
		boundary := false
		if rmse > ChangeThreshold {
			// Frame 0 is always compared against a blank buffer; it opens the
			// first scene without closing anything.
			if index > 0 {
				if err := emit(ID{Hash: crc, DurationMs: DurationMs(index-start, s.FrameRate)}); err != nil {
					return summary, err
				}
				summary.Scenes++
				boundary = true
			}
			crc = 0
			start = index
		}

		crc = Checksum(crc, cur[:])
		if s.OnFrame != nil {
			s.OnFrame(FrameStat{Index: index, RMSE: rmse, CRC: crc, Boundary: boundary})
		}

		last, cur = cur, last
		index++
	}

	summary.Frames = index
	if err := emit(ID{Hash: crc, DurationMs: DurationMs(index-start, s.FrameRate)}); err != nil {
		return summary, err
	}
	summary.Scenes++
	return summary, nil
}
