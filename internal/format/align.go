package format

// AlignWord returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	AlignWord(1)  = 8
//	AlignWord(8)  = 8
//	AlignWord(9)  = 16
//	AlignWord(16) = 16
func AlignWord(n int) int {
	return (n + WordAlignmentMask) &^ WordAlignmentMask
}

// AlignWord64 is the int64 form of AlignWord, used for region offsets.
func AlignWord64(n int64) int64 {
	return (n + WordAlignmentMask) &^ WordAlignmentMask
}

// IsWordAligned reports whether off sits on a word boundary.
func IsWordAligned(off int64) bool {
	return off&WordAlignmentMask == 0
}
