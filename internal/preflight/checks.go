package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"vidup/internal/config"
	"vidup/internal/deps"
	"vidup/internal/scene"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps resolves the decoder binaries named in cfg. Both are only
// needed for --decode; raw frame input works without them.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	ffmpeg := deps.ResolveFFmpeg(cfg.Transcoder.FFmpegBinary)
	ffmpeg.Optional = true
	return []deps.Status{ffmpeg, deps.ResolveFFprobe(cfg.Transcoder.FFprobeBinary)}
}

// CheckHardwareCRC reports whether scene checksums use the CPU's CRC32
// instruction. The table fallback produces identical values, so this never fails.
func CheckHardwareCRC() Result {
	const name = "CRC32-C"
	if scene.HardwareAccelerated() {
		return Result{Name: name, Passed: true, Detail: "hardware accelerated"}
	}
	return Result{Name: name, Passed: true, Detail: "software table (slower)"}
}
