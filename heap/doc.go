// Package heap provides the growable regions that heapkit allocators manage.
//
// # Overview
//
// A Region is a contiguous run of bytes that can only ever grow. It plays the
// part of the operating system's heap-extension primitive (sbrk): Grow(n)
// commits n more zeroed bytes at the end and returns the offset where they
// begin. Nothing ever shrinks a region or hands bytes back.
//
// Two implementations are provided:
//
//   - Memory: a byte slice, optionally capped by a limit. Used by tests and
//     by anything that only needs the allocator for the life of the process.
//   - File: a file mapped read/write (mmap on unix). Growth extends the file
//     with ftruncate and remaps it, so the kernel supplies the zero fill.
//
// # Base Block
//
// Every region managed by heapkit starts with a 64-byte base block:
//
//	0x00  signature "heap"
//	0x04  version (1)
//	0x08  head: offset of the first block header (0 = none)
//	0x10  tail: offset of the last block header (0 = none)
//	0x18  data size: bytes after the base block
//	0x20  block count
//	0x3C  checksum (XOR of the preceding dwords)
//
// The head reference is the allocator's entire persistent state; everything
// else is recovered by walking the block headers from there.
//
// # Usage Example
//
//	r := heap.NewMemory(64 << 20)
//	a, err := alloc.New(r)
//	if err != nil {
//	    return err
//	}
//	p, err := a.Malloc(128)
//
// # Thread Safety
//
// Regions are not thread-safe. Bytes() is invalidated by the next Grow(), so
// callers must re-fetch it after any operation that may grow the region.
package heap
