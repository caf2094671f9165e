package alloc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator hands out payloads from a single heap.Region.
type Allocator struct {
	r   heap.Region
	dt  dirty.DirtyTracker
	log *slog.Logger

	strict  bool
	inPlace bool

	// blocks mirrors the base block count so Len does not walk.
	blocks int

	stats Stats

	// onGrow is called after every successful growth (nil by default).
	onGrow func(int64)
}

// New returns an allocator over r. An empty region is formatted with a base
// block; a non-empty one must carry a valid base block and block list.
func New(r heap.Region, opts ...Option) (*Allocator, error) {
	a := &Allocator{r: r}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = defaultLogger()
	}

	if r.Size() == 0 {
		if err := a.format(); err != nil {
			return nil, err
		}
		return a, nil
	}

	data := r.Bytes()
	bb, err := heap.ParseBaseBlock(data)
	if err != nil {
		return nil, err
	}
	if err := bb.ValidateSanity(len(data)); err != nil {
		return nil, err
	}
	n := 0
	if err := a.Walk(func(Block) error { n++; return nil }); err != nil {
		return nil, err
	}
	if uint32(n) != bb.BlockCount() {
		return nil, fmt.Errorf("%w: base block counts %d blocks, list has %d",
			ErrCorrupt, bb.BlockCount(), n)
	}
	a.blocks = n
	return a, nil
}

func (a *Allocator) format() error {
	if _, err := a.r.Grow(format.BaseSize); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if _, err := heap.InitBaseBlock(a.r.Bytes(), 0); err != nil {
		return err
	}
	a.markDirty(0, format.BaseSize)
	return nil
}

// Region returns the region the allocator manages.
func (a *Allocator) Region() heap.Region { return a.r }

// Malloc returns a zeroed payload of at least size bytes. Size 0 yields Nil
// without touching the heap.
func (a *Allocator) Malloc(size int) (Ptr, error) {
	a.stats.MallocCalls++
	if size < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return Nil, nil
	}
	need := format.AlignWord64(int64(size))
	if need < int64(size) {
		return Nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	h, found, err := a.firstFit(need)
	if err != nil {
		return Nil, err
	}
	if found {
		a.stats.ReuseCount++
		if h.size-need > format.HeaderSize {
			if h, err = a.split(h, need); err != nil {
				return Nil, err
			}
		}
		h.free = false
		a.writeHeader(h)
	} else {
		if h, err = a.grow(need); err != nil {
			return Nil, err
		}
	}

	data := a.r.Bytes()
	buf.Zero(data, h.payload(), h.size)
	a.markDirty(h.payload(), h.size)
	return Ptr(h.payload()), nil
}

// Free releases p. Nil is a no-op; so is any pointer the allocator does not
// own, unless WithStrict was given.
func (a *Allocator) Free(p Ptr) error {
	a.stats.FreeCalls++
	if p.IsNil() {
		return nil
	}
	h, err := a.lookup(p)
	if err != nil {
		if errors.Is(err, errBadPtr) {
			a.stats.IgnoredFrees++
			a.log.Debug("free of unowned pointer", "ptr", int64(p))
			if a.strict {
				return fmt.Errorf("%w: 0x%X", ErrUnknownPointer, int64(p))
			}
			return nil
		}
		return err
	}
	h.free = true
	a.writeHeader(h)
	return a.coalesce(h)
}

// Realloc resizes p to size bytes, moving it when needed. The first
// min(size, old size) bytes are preserved and the rest read as zero.
func (a *Allocator) Realloc(p Ptr, size int) (Ptr, error) {
	a.stats.ReallocCalls++
	if p.IsNil() {
		return a.Malloc(size)
	}
	if size < 0 {
		return Nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return Nil, a.Free(p)
	}
	old, err := a.lookup(p)
	if err != nil {
		if errors.Is(err, errBadPtr) {
			a.log.Debug("resize of unowned pointer", "ptr", int64(p), "size", size)
			return Nil, fmt.Errorf("%w: 0x%X", ErrInvalidResize, int64(p))
		}
		return Nil, err
	}

	if a.inPlace {
		ok, err := a.resizeInPlace(old, int64(size))
		if err != nil {
			return Nil, err
		}
		if ok {
			a.stats.InPlaceResizes++
			return p, nil
		}
	}

	np, err := a.Malloc(size)
	if err != nil {
		return Nil, err
	}
	data := a.r.Bytes()
	n := min(int64(size), old.size)
	buf.Move(data, int64(np), old.payload(), n)
	a.markDirty(int64(np), n)
	if err := a.Free(p); err != nil {
		return Nil, err
	}
	return np, nil
}

// Payload returns the bytes of the live allocation p. The slice is valid until
// the region next grows.
func (a *Allocator) Payload(p Ptr) ([]byte, error) {
	h, err := a.lookup(p)
	if err != nil {
		if errors.Is(err, errBadPtr) {
			return nil, fmt.Errorf("%w: 0x%X", ErrUnknownPointer, int64(p))
		}
		return nil, err
	}
	s, _ := buf.Slice(a.r.Bytes(), h.payload(), h.size)
	return s, nil
}

// grow extends the region by need+H and appends an allocated block of
// payload need at the tail.
func (a *Allocator) grow(need int64) (header, error) {
	total := need + format.HeaderSize
	base, err := a.r.Grow(total)
	if err != nil {
		a.stats.GrowFailures++
		a.log.Debug("grow failed", "need", need, "err", err)
		return header{}, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	a.stats.GrowCalls++
	a.stats.GrowBytes += total

	data := a.r.Bytes()
	bb := heap.BaseBlockAt(data)
	h := header{off: base, size: need, prev: bb.Tail()}
	if h.prev != format.NoBlock {
		prev, err := readHeader(data, h.prev)
		if err != nil {
			return header{}, err
		}
		if prev.end() != base {
			return header{}, fmt.Errorf("%w: tail 0x%X ends at 0x%X, region grew at 0x%X",
				ErrCorrupt, prev.off, prev.end(), base)
		}
		prev.next = base
		a.writeHeader(prev)
	} else if base != format.BaseSize {
		return header{}, fmt.Errorf("%w: first block at 0x%X", ErrCorrupt, base)
	}
	a.writeHeader(h)

	if bb.Head() == format.NoBlock {
		bb.SetHead(base)
	}
	bb.SetTail(base)
	bb.SetDataSize(int64(len(data)) - format.BaseSize)
	a.setBlocks(a.blocks + 1)

	a.log.Debug("grow", "bytes", total, "block", base, "region", len(data))
	if a.onGrow != nil {
		a.onGrow(total)
	}
	return h, nil
}

func (a *Allocator) writeHeader(h header) {
	encodeHeader(a.r.Bytes(), h)
	a.markDirty(h.off, format.HeaderSize)
}

func (a *Allocator) markDirty(off, n int64) {
	if a.dt != nil && n > 0 {
		a.dt.Add(off, n)
	}
}
