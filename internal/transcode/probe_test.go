package transcode

import (
	"context"
	"testing"
)

func TestInspectParsesDuration(t *testing.T) {
	stub := writeScript(t, `cat <<'JSON'
{"streams":[{"codec_type":"audio","duration":"99.0"},{"codec_type":"video","duration":"12.5","avg_frame_rate":"24000/1001"}],"format":{"duration":"13.0"}}
JSON`)

	probe, err := Inspect(context.Background(), stub, "/videos/clip.mkv")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if probe.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", probe.VideoStreamCount())
	}
	if probe.DurationSeconds() != 12.5 {
		t.Fatalf("expected video stream duration, got %v", probe.DurationSeconds())
	}
	if got := probe.EstimateFrames(30); got != 375 {
		t.Fatalf("expected 375 frames, got %d", got)
	}
}

func TestInspectFailure(t *testing.T) {
	stub := writeScript(t, "echo 'No such file' >&2\nexit 1")
	if _, err := Inspect(context.Background(), stub, "/videos/missing.mkv"); err == nil {
		t.Fatal("expected inspect error")
	}
	if _, err := Inspect(context.Background(), stub, "-"); err == nil {
		t.Fatal("expected error for stdin input")
	}
}

func TestProbeDurationFallbacks(t *testing.T) {
	probe := Probe{
		Streams: []ProbeStream{{CodecType: "video", Duration: "N/A"}},
		Format:  ProbeFormat{Duration: "60"},
	}
	if probe.DurationSeconds() != 60 {
		t.Fatalf("expected container duration, got %v", probe.DurationSeconds())
	}
	if got := (Probe{Format: ProbeFormat{Duration: "bad"}}).EstimateFrames(30); got != 0 {
		t.Fatalf("expected unknown estimate, got %d", got)
	}
}
