package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Ptr is the region offset of a block payload.
type Ptr int64

// Nil is the "no allocation" pointer.
const Nil Ptr = 0

// IsNil reports whether p is Nil.
func (p Ptr) IsNil() bool { return p == Nil }

// HeaderSize is the fixed per-block overhead in bytes.
const HeaderSize = format.HeaderSize

// Block describes one entry of the block list.
type Block struct {
	Offset int64 // header offset
	Ptr    Ptr   // payload address (Offset + HeaderSize)
	Size   int64 // payload size, header excluded
	Prev   int64 // previous header offset, 0 for the head
	Next   int64 // next header offset, 0 for the tail
	Free   bool
}

// End returns the offset one past the payload.
func (b Block) End() int64 { return int64(b.Ptr) + b.Size }

// Stats holds allocator counters since New.
type Stats struct {
	MallocCalls      int   // Malloc calls, including those made by Realloc
	FreeCalls        int   // Free calls
	ReallocCalls     int   // Realloc calls
	GrowCalls        int   // successful region growths
	GrowFailures     int   // refused region growths
	GrowBytes        int64 // total bytes added to the region
	ReuseCount       int   // Mallocs served from an existing free block
	SplitCount       int   // block splits
	CoalesceForward  int   // merges of a free successor
	CoalesceBackward int   // merges into a free predecessor
	InPlaceResizes   int   // Reallocs satisfied without moving
	IgnoredFrees     int   // frees of pointers not owned
}

// Usage is a snapshot of the block list.
type Usage struct {
	RegionBytes   int64   // total region size, base block included
	Blocks        int     // all blocks
	FreeBlocks    int     // free blocks
	UsedBytes     int64   // payload bytes in allocated blocks
	FreeBytes     int64   // payload bytes in free blocks
	HeaderBytes   int64   // Blocks * HeaderSize
	LargestFree   int64   // largest free payload
	Fragmentation float64 // 1 - LargestFree/FreeBytes, 0 when nothing is free
}
