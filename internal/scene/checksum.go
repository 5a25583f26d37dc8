package scene

import (
	"hash/crc32"

	"golang.org/x/sys/cpu"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum folds p into the running fingerprint acc without the pre/post
// inversion applied by hash/crc32.
func Checksum(acc uint32, p []byte) uint32 {
	return ^crc32.Update(^acc, castagnoli, p)
}

// HardwareAccelerated reports whether the CPU provides a CRC-32C instruction
// that hash/crc32 can use.
func HardwareAccelerated() bool {
	return cpu.X86.HasSSE42 || cpu.ARM64.HasCRC32
}
