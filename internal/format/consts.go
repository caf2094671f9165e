// Package format houses the low-level layout of a heapkit region: the base
// block at offset 0 and the block headers that follow it. Everything that
// touches raw region bytes goes through these constants and the encoding
// helpers so the allocator itself only deals in offsets and sizes.
package format

// BaseSignature is the four-byte signature at the start of every region.
// Layout:
//
//	0x00  'h' 'e' 'a' 'p'
var BaseSignature = []byte{'h', 'e', 'a', 'p'}

const (
	// BaseVersion is the only base block version this package writes or accepts.
	BaseVersion = 1

	// BaseSize is the size of the base block. The first block header starts here.
	BaseSize = 0x40

	// Base block field offsets.
	BaseSignatureOffset  = 0x00
	BaseVersionOffset    = 0x04
	BaseHeadOffset       = 0x08
	BaseTailOffset       = 0x10
	BaseDataSizeOffset   = 0x18
	BaseBlockCountOffset = 0x20
	BaseChecksumOffset   = 0x3C
)

const (
	// HeaderSize is the fixed per-block overhead (H). Payload starts right after it.
	HeaderSize = 0x20

	// Block header field offsets, relative to the header start.
	HeaderSizeOffset  = 0x00 // payload size, u64
	HeaderPrevOffset  = 0x08 // previous header offset, u64 (0 = none)
	HeaderNextOffset  = 0x10 // next header offset, u64 (0 = none)
	HeaderFlagsOffset = 0x18 // flags, u32

	// FlagFree marks an unallocated block.
	FlagFree uint32 = 1 << 0
)

const (
	// WordSize is the payload alignment guaranteed to callers.
	WordSize = 8

	// WordAlignmentMask is WordSize-1, used by the Align helpers.
	WordAlignmentMask = WordSize - 1

	// NoBlock is the header reference meaning "none". Offset 0 always holds the
	// base block, so it can never be a header.
	NoBlock = 0
)
