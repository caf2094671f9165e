package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// header is the decoded form of a block header.
type header struct {
	off  int64
	size int64
	prev int64
	next int64
	free bool
}

func (h header) payload() int64 { return h.off + format.HeaderSize }
func (h header) end() int64     { return h.payload() + h.size }

func (h header) block() Block {
	return Block{
		Offset: h.off,
		Ptr:    Ptr(h.payload()),
		Size:   h.size,
		Prev:   h.prev,
		Next:   h.next,
		Free:   h.free,
	}
}

// readHeader decodes the header at off. Anything that cannot be a header of
// this region is ErrCorrupt.
func readHeader(data []byte, off int64) (header, error) {
	if off < format.BaseSize || !format.IsWordAligned(off) {
		return header{}, fmt.Errorf("%w: header offset 0x%X", ErrCorrupt, off)
	}
	raw, ok := buf.Slice(data, off, format.HeaderSize)
	if !ok {
		return header{}, fmt.Errorf("%w: header 0x%X past region end 0x%X", ErrCorrupt, off, len(data))
	}
	size := format.ReadU64(raw, format.HeaderSizeOffset)
	h := header{
		off:  off,
		size: int64(size),
		prev: int64(format.ReadU64(raw, format.HeaderPrevOffset)),
		next: int64(format.ReadU64(raw, format.HeaderNextOffset)),
		free: format.ReadU32(raw, format.HeaderFlagsOffset)&format.FlagFree != 0,
	}
	if h.size < 0 || !format.IsWordAligned(h.size) || !buf.Has(data, h.payload(), h.size) {
		return header{}, fmt.Errorf("%w: block 0x%X size %d", ErrCorrupt, off, size)
	}
	return h, nil
}

// encodeHeader writes h into data. The caller has validated the range.
func encodeHeader(data []byte, h header) {
	raw := data[h.off : h.off+format.HeaderSize]
	format.PutU64(raw, format.HeaderSizeOffset, uint64(h.size))
	format.PutU64(raw, format.HeaderPrevOffset, uint64(h.prev))
	format.PutU64(raw, format.HeaderNextOffset, uint64(h.next))
	var flags uint32
	if h.free {
		flags |= format.FlagFree
	}
	format.PutU32(raw, format.HeaderFlagsOffset, flags)
	format.PutU32(raw, format.HeaderFlagsOffset+4, 0)
}
