package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Stats returns the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Len returns the number of blocks, free or not.
func (a *Allocator) Len() int { return a.blocks }

// Walk calls fn for every block in address order. A non-nil error from fn
// stops the walk and is returned.
func (a *Allocator) Walk(fn func(Block) error) error {
	return WalkData(a.r.Bytes(), fn)
}

// WalkData walks the block list of raw region bytes, as written by an
// Allocator. The base block is not validated; see heap.ParseBaseBlock.
func WalkData(data []byte, fn func(Block) error) error {
	if len(data) < format.BaseSize {
		return fmt.Errorf("%w: region of %d bytes has no base block", ErrCorrupt, len(data))
	}
	return walkData(data, func(h header) (bool, error) {
		if err := fn(h.block()); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Blocks returns every block in address order.
func (a *Allocator) Blocks() ([]Block, error) {
	out := make([]Block, 0, a.blocks)
	err := a.Walk(func(b Block) error {
		out = append(out, b)
		return nil
	})
	return out, err
}

// Usage summarizes the current block list.
func (a *Allocator) Usage() (Usage, error) {
	return UsageOf(a.r.Bytes())
}

// UsageOf summarizes the block list of raw region bytes.
func UsageOf(data []byte) (Usage, error) {
	u := Usage{RegionBytes: int64(len(data))}
	err := WalkData(data, func(b Block) error {
		u.Blocks++
		u.HeaderBytes += HeaderSize
		if b.Free {
			u.FreeBlocks++
			u.FreeBytes += b.Size
			u.LargestFree = max(u.LargestFree, b.Size)
		} else {
			u.UsedBytes += b.Size
		}
		return nil
	})
	if err != nil {
		return Usage{}, err
	}
	if u.FreeBytes > 0 {
		u.Fragmentation = 1 - float64(u.LargestFree)/float64(u.FreeBytes)
	}
	return u, nil
}
