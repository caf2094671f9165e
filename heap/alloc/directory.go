package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// errBadPtr is lookup's "not owned" result. It never leaves the package.
var errBadPtr = errors.New("alloc: pointer not owned")

// walk visits headers in address order from the head. It stops at the first
// malformed header, or when fn returns false or an error.
func (a *Allocator) walk(fn func(h header) (bool, error)) error {
	return walkData(a.r.Bytes(), fn)
}

func walkData(data []byte, fn func(h header) (bool, error)) error {
	bb := heap.BaseBlockAt(data)
	off, tail := bb.Head(), bb.Tail()
	prev := int64(format.NoBlock)
	expect := int64(format.BaseSize)
	for off != format.NoBlock {
		if off != expect {
			return fmt.Errorf("%w: block at 0x%X, previous ends at 0x%X", ErrCorrupt, off, expect)
		}
		h, err := readHeader(data, off)
		if err != nil {
			return err
		}
		if h.prev != prev {
			return fmt.Errorf("%w: block 0x%X prev 0x%X, want 0x%X", ErrCorrupt, off, h.prev, prev)
		}
		more, err := fn(h)
		if err != nil || !more {
			return err
		}
		if h.next == format.NoBlock && off != tail {
			return fmt.Errorf("%w: list ends at 0x%X, tail is 0x%X", ErrCorrupt, off, tail)
		}
		prev, expect, off = off, h.end(), h.next
	}
	if expect != int64(len(data)) {
		return fmt.Errorf("%w: blocks end at 0x%X, region ends at 0x%X", ErrCorrupt, expect, len(data))
	}
	return nil
}

// lookup finds the allocated block whose payload starts at p.
func (a *Allocator) lookup(p Ptr) (header, error) {
	target := int64(p) - format.HeaderSize
	if target < format.BaseSize || !format.IsWordAligned(target) || int64(p) > a.r.Size() {
		return header{}, errBadPtr
	}
	var found header
	ok := false
	err := a.walk(func(h header) (bool, error) {
		if h.off == target {
			found, ok = h, !h.free
			return false, nil
		}
		// Address ordered: nothing past target can match.
		return h.off < target, nil
	})
	if err != nil {
		return header{}, err
	}
	if !ok {
		return header{}, errBadPtr
	}
	return found, nil
}

// firstFit returns the first free block with at least need payload bytes.
func (a *Allocator) firstFit(need int64) (header, bool, error) {
	var found header
	ok := false
	err := a.walk(func(h header) (bool, error) {
		if h.free && h.size >= need {
			found, ok = h, true
			return false, nil
		}
		return true, nil
	})
	return found, ok, err
}

// split shrinks h to need bytes and inserts a free block for the remainder
// right after it. The caller guarantees h.size-need > H.
func (a *Allocator) split(h header, need int64) (header, error) {
	data := a.r.Bytes()
	rest := header{
		off:  h.payload() + need,
		size: h.size - need - format.HeaderSize,
		prev: h.off,
		next: h.next,
		free: true,
	}
	if h.next != format.NoBlock {
		next, err := readHeader(data, h.next)
		if err != nil {
			return header{}, err
		}
		next.prev = rest.off
		a.writeHeader(next)
	} else {
		heap.BaseBlockAt(data).SetTail(rest.off)
	}
	h.size = need
	h.next = rest.off
	a.writeHeader(rest)
	a.writeHeader(h)
	a.setBlocks(a.blocks + 1)

	a.stats.SplitCount++
	a.log.Debug("split", "block", h.off, "size", need, "rest", rest.off, "restSize", rest.size)
	return h, nil
}

// absorb folds next (which must directly follow h) into h and unlinks it.
func (a *Allocator) absorb(h, next header) (header, error) {
	data := a.r.Bytes()
	h.size += format.HeaderSize + next.size
	h.next = next.next
	if next.next != format.NoBlock {
		after, err := readHeader(data, next.next)
		if err != nil {
			return header{}, err
		}
		after.prev = h.off
		a.writeHeader(after)
	} else {
		heap.BaseBlockAt(data).SetTail(h.off)
	}
	a.writeHeader(h)
	a.setBlocks(a.blocks - 1)
	return h, nil
}

// coalesce merges the freshly freed h with a free successor, then merges the
// result into a free predecessor.
func (a *Allocator) coalesce(h header) error {
	data := a.r.Bytes()
	if h.next != format.NoBlock {
		next, err := readHeader(data, h.next)
		if err != nil {
			return err
		}
		if next.free {
			if h, err = a.absorb(h, next); err != nil {
				return err
			}
			a.stats.CoalesceForward++
			a.log.Debug("coalesce forward", "block", h.off, "size", h.size)
		}
	}
	if h.prev != format.NoBlock {
		prev, err := readHeader(data, h.prev)
		if err != nil {
			return err
		}
		if prev.free {
			if prev, err = a.absorb(prev, h); err != nil {
				return err
			}
			a.stats.CoalesceBackward++
			a.log.Debug("coalesce backward", "block", prev.off, "size", prev.size)
		}
	}
	return nil
}

func (a *Allocator) setBlocks(n int) {
	a.blocks = n
	heap.BaseBlockAt(a.r.Bytes()).SetBlockCount(uint32(n))
	a.markDirty(0, format.BaseSize)
}
