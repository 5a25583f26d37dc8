package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFmpeg reports the ffmpeg binary used to decode video into frames.
func ResolveFFmpeg(command string) Status {
	return ResolveTool("FFmpeg", command, selfPath(), "Decodes video into 16x16 grayscale frames")
}

// ResolveFFprobe reports the ffprobe binary used to size progress output.
func ResolveFFprobe(command string) Status {
	status := ResolveTool("FFprobe", command, selfPath(), "Probes duration for progress reporting")
	status.Optional = true
	return status
}

// ResolveTool locates a helper binary.
//
// An explicit path is used as given. A bare name is looked up first next to
// the anchor executable, so a bundled build can ship its own ffmpeg, and then
// on PATH.
func ResolveTool(name, command, anchor, description string) Status {
	result := Status{
		Name:        name,
		Description: description,
	}

	binary := strings.TrimSpace(command)
	if binary == "" {
		result.Detail = "command not configured"
		return result
	}

	if strings.ContainsRune(binary, os.PathSeparator) {
		result.Command = binary
		if info, err := os.Stat(binary); err == nil && isExecutable(info) {
			result.Available = true
			return result
		}
		result.Detail = fmt.Sprintf("binary %q not found or not executable", binary)
		return result
	}

	if candidate, ok := sidecarCandidate(anchor, binary); ok {
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
	}

	if resolved, err := exec.LookPath(binary); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}

	result.Command = binary
	result.Detail = fmt.Sprintf("binary %q not found", binary)
	return result
}

func selfPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return exe
}

func sidecarCandidate(anchor, name string) (string, bool) {
	if anchor == "" {
		return "", false
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(anchor), name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
