package scene_test

import (
	"bytes"
	"context"
	"errors"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidup/internal/frame"
	"vidup/internal/scene"
)

func solid(value byte, count int) []byte {
	return bytes.Repeat([]byte{value}, frame.Size*count)
}

func run(t *testing.T, data []byte, rate int) ([]scene.ID, scene.Summary) {
	t.Helper()
	var ids []scene.ID
	seg := scene.Segmenter{FrameRate: rate}
	summary, err := seg.Run(context.Background(), frame.NewReader(bytes.NewReader(data)), func(id scene.ID) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	return ids, summary
}

// rawCRC is a bitwise reference for the chained crc32 instruction.
func rawCRC(acc uint32, p []byte) uint32 {
	for _, b := range p {
		acc ^= uint32(b)
		for range 8 {
			if acc&1 != 0 {
				acc = acc>>1 ^ 0x82F63B78
			} else {
				acc >>= 1
			}
		}
	}
	return acc
}

func TestChecksumMatchesBitwiseReference(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	assert.Equal(t, rawCRC(0, data), scene.Checksum(0, data))
	assert.Equal(t, rawCRC(0x1234abcd, data), scene.Checksum(0x1234abcd, data))
}

func TestChecksumStandardCheckValue(t *testing.T) {
	got := ^scene.Checksum(^uint32(0), []byte("123456789"))
	assert.Equal(t, uint32(0xE3069283), got)
	assert.Equal(t, crc32.Checksum([]byte("123456789"), crc32.MakeTable(crc32.Castagnoli)), got)
}

func TestChecksumChains(t *testing.T) {
	a, b := []byte("first half"), []byte("second half")
	whole := append(append([]byte{}, a...), b...)
	assert.Equal(t, scene.Checksum(0, whole), scene.Checksum(scene.Checksum(0, a), b))
}

func TestSingleSceneWholeStream(t *testing.T) {
	ids, summary := run(t, solid(0x80, 60), 30)
	require.Len(t, ids, 1)
	assert.Equal(t, uint32(2000), ids[0].DurationMs)
	assert.Equal(t, 60, summary.Frames)
	assert.Equal(t, 1, summary.Scenes)
	assert.NoError(t, summary.StreamErr)

	var want uint32
	f := solid(0x80, 1)
	for range 60 {
		want = scene.Checksum(want, f)
	}
	assert.Equal(t, want, ids[0].Hash)
}

func TestBlackOpeningDoesNotTriggerBoundary(t *testing.T) {
	data := append(solid(0x00, 30), solid(0xF0, 15)...)
	ids, _ := run(t, data, 30)
	require.Len(t, ids, 2)
	assert.Equal(t, uint32(1000), ids[0].DurationMs)
	assert.Equal(t, uint32(500), ids[1].DurationMs)
}

func TestBrightOpeningStartsFirstSceneWithoutFlush(t *testing.T) {
	ids, summary := run(t, solid(0xF0, 30), 30)
	require.Len(t, ids, 1)
	assert.Equal(t, uint32(1000), ids[0].DurationMs)
	assert.Equal(t, 1, summary.Scenes)
}

func TestSceneFingerprintIndependentOfPosition(t *testing.T) {
	clip := append(solid(0xF0, 20), solid(0x10, 20)...)
	lead := solid(0x70, 7)

	alone, _ := run(t, clip, 30)
	shifted, _ := run(t, append(lead, clip...), 30)

	require.Len(t, alone, 2)
	require.Len(t, shifted, 3)
	assert.Equal(t, alone[0], shifted[1])
	assert.Equal(t, alone[1], shifted[2])
}

func TestSubThresholdNoiseStaysInScene(t *testing.T) {
	// Differences in the low nibble are quantized away.
	data := append(solid(0x80, 10), solid(0x8F, 10)...)
	ids, _ := run(t, data, 10)
	require.Len(t, ids, 1)
	assert.Equal(t, uint32(2000), ids[0].DurationMs)
}

func TestEmptyStreamFlushesZeroLengthScene(t *testing.T) {
	ids, summary := run(t, nil, 30)
	require.Len(t, ids, 1)
	assert.Equal(t, scene.ID{}, ids[0])
	assert.Equal(t, 0, summary.Frames)
}

func TestDurationTruncates(t *testing.T) {
	assert.Equal(t, uint32(33), scene.DurationMs(1, 30))
	assert.Equal(t, uint32(0), scene.DurationMs(0, 30))
	assert.Equal(t, uint32(0), scene.DurationMs(10, 0))
	assert.Equal(t, uint32(4000), scene.DurationMs(100, 25))
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestStreamErrorFlushesPendingScene(t *testing.T) {
	boom := errors.New("decoder died")
	var ids []scene.ID
	seg := scene.Segmenter{FrameRate: 30}
	summary, err := seg.Run(context.Background(), frame.NewReader(&failingReader{data: solid(0x80, 15), err: boom}), func(id scene.ID) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, summary.StreamErr, boom)
	require.Len(t, ids, 1)
	assert.Equal(t, uint32(500), ids[0].DurationMs)
}

func TestEmitErrorAborts(t *testing.T) {
	boom := errors.New("insert failed")
	seg := scene.Segmenter{FrameRate: 30}
	data := append(solid(0x00, 5), solid(0xF0, 5)...)
	calls := 0
	_, err := seg.Run(context.Background(), frame.NewReader(bytes.NewReader(data)), func(scene.ID) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRunRejectsInvalidFrameRate(t *testing.T) {
	seg := scene.Segmenter{}
	_, err := seg.Run(context.Background(), frame.NewReader(bytes.NewReader(nil)), func(scene.ID) error { return nil })
	require.ErrorIs(t, err, scene.ErrInvalidFrameRate)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	seg := scene.Segmenter{FrameRate: 30}
	called := false
	_, err := seg.Run(ctx, frame.NewReader(bytes.NewReader(solid(0x80, 5))), func(scene.ID) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestOnFrameReportsBoundaries(t *testing.T) {
	var stats []scene.FrameStat
	seg := scene.Segmenter{FrameRate: 30, OnFrame: func(s scene.FrameStat) { stats = append(stats, s) }}
	data := append(solid(0xF0, 3), solid(0x00, 3)...)
	_, err := seg.Run(context.Background(), frame.NewReader(io.MultiReader(bytes.NewReader(data))), func(scene.ID) error { return nil })
	require.NoError(t, err)
	require.Len(t, stats, 6)
	assert.False(t, stats[0].Boundary, "frame 0 never closes a scene")
	assert.Greater(t, stats[0].RMSE, scene.ChangeThreshold)
	assert.True(t, stats[3].Boundary)
	assert.Equal(t, 3, stats[3].Index)
}
