package heap

import (
	"errors"
	"fmt"
)

// MaxRegionSize caps every region regardless of its configured limit.
const MaxRegionSize = int64(1) << 40

var (
	// ErrGrowFail indicates the region could not be extended.
	ErrGrowFail = errors.New("heap: grow failed")

	// ErrBadBaseBlock indicates the base block failed validation.
	ErrBadBaseBlock = errors.New("heap: bad base block")

	// ErrClosed indicates the region was used after Close.
	ErrClosed = errors.New("heap: region closed")
)

// Region is a monotonic, grow-only run of bytes.
type Region interface {
	// Bytes returns the current contents. The slice is invalidated by Grow.
	Bytes() []byte

	// Size returns the current length in bytes.
	Size() int64

	// Grow commits n more zeroed bytes at the end of the region and returns
	// the offset of the first new byte. On failure the region is unchanged
	// and the error wraps ErrGrowFail.
	Grow(n int64) (int64, error)
}

// checkGrow validates a growth request of n bytes on a region of size cur
// with the given limit (0 = only MaxRegionSize applies).
func checkGrow(cur, n, limit int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: size must be positive (got %d)", ErrGrowFail, n)
	}
	maxSize := MaxRegionSize
	if limit > 0 && limit < maxSize {
		maxSize = limit
	}
	if n > maxSize || cur > maxSize-n {
		return fmt.Errorf("%w: growing %d bytes by %d would exceed limit %d",
			ErrGrowFail, cur, n, maxSize)
	}
	return nil
}
