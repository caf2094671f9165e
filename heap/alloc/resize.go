package alloc

import (
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// resizeInPlace tries to make h hold size bytes without moving it. It reports
// false, changing nothing, when the block has to move.
//
// Bytes past min(old size, size) are zeroed, word padding included, so the
// result matches what the copying path would produce.
func (a *Allocator) resizeInPlace(h header, size int64) (bool, error) {
	oldSize := h.size
	need := format.AlignWord64(size)
	keep := min(oldSize, size)

	switch {
	case need <= h.size:
		if h.size-need > format.HeaderSize {
			var err error
			if h, err = a.split(h, need); err != nil {
				return false, err
			}
			rest, err := readHeader(a.r.Bytes(), h.next)
			if err != nil {
				return false, err
			}
			// The split tail may border a free successor.
			if err := a.coalesce(rest); err != nil {
				return false, err
			}
		}

	default:
		if h.next == format.NoBlock {
			return false, nil
		}
		next, err := readHeader(a.r.Bytes(), h.next)
		if err != nil {
			return false, err
		}
		if !next.free || h.size+format.HeaderSize+next.size < need {
			return false, nil
		}
		if h, err = a.absorb(h, next); err != nil {
			return false, err
		}
		if h.size-need > format.HeaderSize {
			if h, err = a.split(h, need); err != nil {
				return false, err
			}
		}
	}

	data := a.r.Bytes()
	buf.Zero(data, h.payload()+keep, h.size-keep)
	a.markDirty(h.payload()+keep, h.size-keep)
	a.log.Debug("resize in place", "block", h.off, "from", oldSize, "to", h.size)
	return true, nil
}
