// Package alloc implements malloc/free/realloc over a heap.Region.
//
// # Overview
//
// The allocator keeps an address-ordered, doubly linked list of block headers
// inside the region it manages. Each block is a 32-byte header followed by
// its payload:
//
//	0x00  payload size (u64)
//	0x08  prev header offset (u64, 0 = none)
//	0x10  next header offset (u64, 0 = none)
//	0x18  flags (u32, bit 0 = free)
//
// The list starts at the head recorded in the region's base block. There is
// no other state: an Allocator can be rebuilt from the region bytes alone.
//
// # Operations
//
//   - Malloc(size): first-fit search from the head. An oversized free block is
//     split when the excess is larger than one header; otherwise it is handed
//     out whole. When nothing fits, the region grows by exactly size+H and the
//     new block is appended at the tail.
//   - Free(ptr): mark the block free, merge a free successor into it, then
//     merge it into a free predecessor. No two adjacent blocks are ever free.
//   - Realloc(ptr, size): allocate, copy min(old, new) bytes, free the old
//     block. WithInPlaceResize lets it shrink or grow into a free successor
//     without moving.
//
// Sizes are rounded up to 8 bytes, so every payload is word aligned. Every
// payload handed out by Malloc or Realloc reads as zeroes beyond what
// Realloc copied.
//
// # Pointers
//
// A Ptr is the region offset of a payload. Nil (0) is "no allocation"; the
// base block occupies offset 0, so no payload can ever live there.
//
// # Error Policy
//
//   - Growth failure: Malloc/Realloc return Nil and an error wrapping
//     ErrOutOfMemory. Nothing is retried.
//   - Free of a pointer this allocator does not own (never allocated, already
//     freed): ignored. WithStrict turns this into ErrUnknownPointer.
//   - Realloc of a non-nil pointer it does not own: Nil, ErrInvalidResize.
//     A zero size goes through Free instead, so the rule above applies.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize every call.
package alloc
