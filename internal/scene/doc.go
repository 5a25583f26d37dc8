// Package scene segments a quantized frame stream into scenes and fingerprints
// each one.
//
// A scene boundary is declared when the RMSE between consecutive frames
// exceeds ChangeThreshold. Every frame of a scene is folded into a running
// CRC-32C accumulator; when the scene ends, the accumulator and the scene's
// length in milliseconds form its ID. Two scenes with equal IDs are treated as
// the same content regardless of which file they came from.
//
// The accumulator is the raw (non-inverted) Castagnoli CRC, bit-for-bit the
// value produced by chaining the SSE4.2 crc32 instruction. Never change the
// checksum for an index that already holds fingerprints: IDs computed with
// different algorithms will silently stop matching.
package scene
