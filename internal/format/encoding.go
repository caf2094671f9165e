package format

import "encoding/binary"

// Region integers are little-endian. binary.LittleEndian is inlined well
// enough by the compiler that an unsafe variant buys nothing.

// PutU32 writes a uint32 value to the buffer at the specified offset.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// Checksum returns the XOR of the dwords in b[:end]. end must be a multiple of 4.
func Checksum(b []byte, end int) uint32 {
	var sum uint32
	for i := 0; i+4 <= end; i += 4 {
		sum ^= ReadU32(b, i)
	}
	return sum
}
