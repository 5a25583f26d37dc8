package frame

import (
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Width and Height describe the frame geometry expected from the transcoder.
	Width  = 16
	Height = 16
	// Size is the number of bytes in one frame.
	Size = Width * Height
	// Mask keeps the top four bits of every pixel.
	Mask = 0xF0
)

// Frame is one quantized grayscale frame.
type Frame [Size]byte

// Quantize clears the low four bits of every pixel in place.
func Quantize(f *Frame) {
	for i := range f {
		f[i] &= Mask
	}
}

// RMSE returns the root-mean-square pixel difference between two frames,
// normalized by pixel count and gray range.
func RMSE(a, b *Frame) float64 {
	// 255^2 * 256 still fits comfortably in uint32.
	var sum uint32
	for i := 0; i < Size; i++ {
		delta := int32(a[i]) - int32(b[i])
		sum += uint32(delta * delta)
	}
	return math.Sqrt(float64(sum) / float64(Size*256))
}

// Reader pulls frames from an underlying byte stream.
type Reader struct {
	r      io.Reader
	frames int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFrame fills dst with the next quantized frame. It returns io.EOF when
// fewer than Size bytes remain; a trailing partial frame is dropped silently.
func (r *Reader) ReadFrame(dst *Frame) error {
	if r == nil || r.r == nil {
		return io.EOF
	}
	if _, err := io.ReadFull(r.r, dst[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return fmt.Errorf("read frame %d: %w", r.frames, err)
	}
	Quantize(dst)
	r.frames++
	return nil
}

// Frames reports how many complete frames have been returned so far.
func (r *Reader) Frames() int {
	if r == nil {
		return 0
	}
	return r.frames
}
