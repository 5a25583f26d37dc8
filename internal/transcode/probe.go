package transcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Probe is the subset of ffprobe output used to size progress reporting.
type Probe struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

// ProbeStream describes a single stream in the media container.
type ProbeStream struct {
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// ProbeFormat captures container-level metadata.
type ProbeFormat struct {
	Duration string `json:"duration"`
}

// Inspect executes ffprobe against path and decodes the JSON response.
func Inspect(ctx context.Context, binary, path string) (Probe, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return Probe{}, errors.New("ffprobe inspect: no seekable input")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Probe{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Probe{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var probe Probe
	if err := json.Unmarshal(output, &probe); err != nil {
		return Probe{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return probe, nil
}

// DurationSeconds returns the duration of the first video stream, falling
// back to the container duration, or 0 when neither is known.
func (p Probe) DurationSeconds() float64 {
	for _, stream := range p.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if d := parseFloat(stream.Duration); d > 0 {
			return d
		}
		break
	}
	if d := parseFloat(p.Format.Duration); d > 0 {
		return d
	}
	return 0
}

// VideoStreamCount returns the number of video streams discovered.
func (p Probe) VideoStreamCount() int {
	count := 0
	for _, stream := range p.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			count++
		}
	}
	return count
}

// EstimateFrames predicts how many frames a decode at frameRate yields.
// It returns 0 when the duration is unknown.
func (p Probe) EstimateFrames(frameRate int) int {
	seconds := p.DurationSeconds()
	if seconds <= 0 || frameRate <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(frameRate)))
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
