// Package frame reads fixed-size raw grayscale frames from a byte stream.
//
// Frames are 16x16 luma buffers produced upstream by a transcoder. Every byte
// is quantized to its top four bits as it is read so that small luma noise
// does not change downstream fingerprints. The package performs no decoding
// or resampling; callers must deliver exactly Size bytes per frame at a
// constant frame rate.
package frame
