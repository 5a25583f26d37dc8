// Package transcode runs ffmpeg to turn arbitrary video into the raw frame
// stream the segmenter consumes: 16x16 8-bit grayscale at a fixed rate, one
// frame after another with no container.
//
// Decoder wraps the running process as an io.Reader. When ffmpeg exits with
// an error the reader returns that error, carrying the tail of ffmpeg's
// stderr, in place of io.EOF so callers treat it as a stream failure.
// Inspect wraps ffprobe and is used to estimate frame counts for progress
// display.
package transcode
