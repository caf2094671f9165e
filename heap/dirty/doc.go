// Package dirty tracks which byte ranges of a file-backed heap region have
// been modified and flushes them to disk.
//
// # Overview
//
// The allocator reports every header write and every zero-filled payload to
// a DirtyTracker. A Tracker accumulates those ranges cheaply (an append per
// call) and only does real work at flush time, when it page-aligns, sorts
// and merges them before handing each merged range to msync.
//
// # Usage
//
//	fr, _ := heap.Create("heap.bin", 0)
//	dt := dirty.NewTracker(fr)
//	a, _ := alloc.New(fr, alloc.WithDirtyTracker(dt))
//
//	p, _ := a.Malloc(256)
//	// ... write through a.Payload(p) ...
//
//	if err := dt.Flush(ctx, dirty.FlushAuto); err != nil {
//	    return err
//	}
//
// # Flush Ordering
//
// Data pages are flushed before the base block page. The base block holds the
// head and tail references, so a crash between the two leaves the old
// directory ends pointing at fully written blocks.
//
// # Platform Notes
//
//   - Linux: each merged range is msync'd individually, then fdatasync.
//   - macOS: msync must be given the original mapping address, so the whole
//     mapping is flushed; FlushFull uses F_FULLFSYNC.
//   - Elsewhere the region is not mapped; ranges are written back through the
//     region's WriteBack method when it has one.
//
// Regions without a file descriptor (heap.Memory) have nothing to flush;
// Flush simply clears the recorded ranges.
//
// # Thread Safety
//
// Tracker is NOT thread-safe, like the allocator that feeds it.
package dirty
