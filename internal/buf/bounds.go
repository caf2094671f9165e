// Package buf is the bounds-checked boundary between heapkit and raw region
// bytes. Offsets coming out of block headers are untrusted until they pass
// through here.
package buf

import (
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int64.
func AddOverflowSafe(a, b int64) (int64, bool) {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return 0, false
	case b < 0 && a < math.MinInt64-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int64) ([]byte, bool) {
	if off < 0 || n < 0 || off > int64(len(b)) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > int64(len(b)) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int64) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Zero clears b[off:off+n]. It reports false, touching nothing, when the
// range is out of bounds.
func Zero(b []byte, off, n int64) bool {
	s, ok := Slice(b, off, n)
	if !ok {
		return false
	}
	clear(s)
	return true
}

// Move copies n bytes from src to dst within b, handling overlap like memmove.
func Move(b []byte, dst, src, n int64) bool {
	d, ok := Slice(b, dst, n)
	if !ok {
		return false
	}
	s, ok := Slice(b, src, n)
	if !ok {
		return false
	}
	copy(d, s)
	return true
}
