package dirty

import (
	"context"
	"os"
	"sort"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// FlushMode controls durability guarantees for a flush.
type FlushMode int

const (
	// FlushAuto msyncs dirty pages, then the base block page, then fdatasyncs.
	FlushAuto FlushMode = iota

	// FlushDataOnly msyncs dirty pages and the base block page but skips
	// fdatasync. Use it when batching several flushes behind one later sync.
	FlushDataOnly

	// FlushFull is FlushAuto with F_FULLFSYNC on macOS.
	FlushFull
)

// Range is a dirty byte range in region offsets.
type Range struct {
	Off int64
	Len int64
}

// End returns the exclusive end offset.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	t        Target
	ranges   []Range
	pageSize int64
}

// NewTracker creates a dirty tracker for the given region.
func NewTracker(t Target) *Tracker {
	return &Tracker{
		t:        t,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: int64(os.Getpagesize()),
	}
}

// Add records a dirty range. Empty and negative ranges are ignored.
func (t *Tracker) Add(off, length int64) {
	if length <= 0 || off < 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
}

// Len returns the number of raw (uncoalesced) ranges recorded since the last flush.
func (t *Tracker) Len() int { return len(t.ranges) }

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// Ranges returns the page-aligned, sorted, merged ranges a flush would write.
func (t *Tracker) Ranges() []Range {
	return t.coalesce()
}

// Flush writes every dirty range to disk, data pages first and the base block
// page last, then syncs the file according to mode.
//
// The context is checked between ranges. A cancelled flush may have written
// some ranges; the ranges stay recorded so a retry covers them again.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.t.Bytes()
	fd := t.t.FD()
	if fd < 0 || len(data) == 0 {
		t.Reset()
		return nil
	}

	coalesced := t.coalesce()
	if err := t.flushRanges(ctx, data, coalesced); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// the base block lives in the first page
	headLen := min(t.pageSize, int64(len(data)))
	if err := t.flushRange(data, Range{Off: 0, Len: headLen}); err != nil {
		return err
	}

	if mode != FlushDataOnly {
		if err := fdatasync(fd, mode == FlushFull); err != nil {
			return err
		}
	}
	t.Reset()
	return nil
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones. The result never includes the first page; Flush writes that
// one last.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, 0, len(t.ranges))
	for _, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.End()
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		if start < t.pageSize {
			start = t.pageSize
		}
		if end <= start {
			continue
		}
		aligned = append(aligned, Range{Off: start, Len: end - start})
	}
	if len(aligned) == 0 {
		return nil
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.End() {
			current.Len = max(current.End(), next.End()) - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// clip bounds r to the region length.
func clip(r Range, size int64) (Range, bool) {
	if r.Off >= size {
		return Range{}, false
	}
	if r.End() > size {
		r.Len = size - r.Off
	}
	return r, r.Len > 0
}
