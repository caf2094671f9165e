package heap

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// BaseBlock is a view of the 64-byte prologue at offset 0 of a region.
// Zero-copy: accessors read and write b.raw directly, so a BaseBlock must be
// re-parsed after the region grows.
type BaseBlock struct {
	raw []byte
}

// isHeap is a fast, zero-alloc check for the base signature.
func isHeap(b []byte) bool {
	const off = format.BaseSignatureOffset
	if len(b) < off+len(format.BaseSignature) {
		return false
	}
	return bytes.Equal(b[off:off+len(format.BaseSignature)], format.BaseSignature)
}

// InitBaseBlock formats an empty directory into b[:format.BaseSize].
// dataSize is the number of bytes already following the base block.
func InitBaseBlock(b []byte, dataSize int64) (*BaseBlock, error) {
	if len(b) < format.BaseSize {
		return nil, fmt.Errorf("%w: region too small for base block (%d)", format.ErrTruncated, len(b))
	}
	raw := b[:format.BaseSize:format.BaseSize]
	clear(raw)
	copy(raw[format.BaseSignatureOffset:], format.BaseSignature)
	format.PutU32(raw, format.BaseVersionOffset, format.BaseVersion)
	bb := &BaseBlock{raw: raw}
	bb.SetDataSize(dataSize)
	return bb, nil
}

// ParseBaseBlock validates signature, version and checksum and returns a view.
func ParseBaseBlock(b []byte) (*BaseBlock, error) {
	if len(b) < format.BaseSize {
		return nil, fmt.Errorf("%w: region too small for base block (%d)", ErrBadBaseBlock, len(b))
	}
	if !isHeap(b) {
		return nil, fmt.Errorf("%w: %w", ErrBadBaseBlock, format.ErrSignatureMismatch)
	}
	bb := &BaseBlock{raw: b[:format.BaseSize:format.BaseSize]}
	if v := bb.Version(); v != format.BaseVersion {
		return nil, fmt.Errorf("%w: %w %d", ErrBadBaseBlock, format.ErrUnsupported, v)
	}
	if got, want := bb.Checksum(), bb.ComputeChecksum(); got != want {
		return nil, fmt.Errorf("%w: checksum 0x%08X, computed 0x%08X", ErrBadBaseBlock, got, want)
	}
	return bb, nil
}

// BaseBlockAt returns an unvalidated view of the base block. Callers must
// have validated the region once (ParseBaseBlock) before trusting it.
func BaseBlockAt(b []byte) *BaseBlock {
	return &BaseBlock{raw: b[:format.BaseSize:format.BaseSize]}
}

// ValidateSanity checks the recorded data size against the actual region size.
func (bb *BaseBlock) ValidateSanity(regionSize int) error {
	want := int64(regionSize) - format.BaseSize
	if got := bb.DataSize(); got != want {
		return fmt.Errorf("%w: data size %d, region holds %d", ErrBadBaseBlock, got, want)
	}
	head, tail := bb.Head(), bb.Tail()
	if (head == format.NoBlock) != (tail == format.NoBlock) {
		return fmt.Errorf("%w: head 0x%X and tail 0x%X disagree", ErrBadBaseBlock, head, tail)
	}
	return nil
}

// Raw returns the raw bytes of the base block.
func (bb *BaseBlock) Raw() []byte { return bb.raw }

// Version returns the format version.
func (bb *BaseBlock) Version() uint32 { return format.ReadU32(bb.raw, format.BaseVersionOffset) }

// Head returns the offset of the first block header, or 0 if the heap is empty.
func (bb *BaseBlock) Head() int64 { return int64(format.ReadU64(bb.raw, format.BaseHeadOffset)) }

// Tail returns the offset of the last block header, or 0 if the heap is empty.
func (bb *BaseBlock) Tail() int64 { return int64(format.ReadU64(bb.raw, format.BaseTailOffset)) }

// DataSize returns the number of bytes following the base block.
func (bb *BaseBlock) DataSize() int64 {
	return int64(format.ReadU64(bb.raw, format.BaseDataSizeOffset))
}

// BlockCount returns the number of blocks in the directory.
func (bb *BaseBlock) BlockCount() uint32 {
	return format.ReadU32(bb.raw, format.BaseBlockCountOffset)
}

// Checksum returns the stored checksum.
func (bb *BaseBlock) Checksum() uint32 { return format.ReadU32(bb.raw, format.BaseChecksumOffset) }

// ComputeChecksum returns the XOR of every dword before the checksum field.
func (bb *BaseBlock) ComputeChecksum() uint32 {
	return format.Checksum(bb.raw, format.BaseChecksumOffset)
}

// SetHead records the first block header and refreshes the checksum.
func (bb *BaseBlock) SetHead(off int64) {
	format.PutU64(bb.raw, format.BaseHeadOffset, uint64(off))
	bb.updateChecksum()
}

// SetTail records the last block header and refreshes the checksum.
func (bb *BaseBlock) SetTail(off int64) {
	format.PutU64(bb.raw, format.BaseTailOffset, uint64(off))
	bb.updateChecksum()
}

// SetDataSize records the bytes following the base block and refreshes the checksum.
func (bb *BaseBlock) SetDataSize(n int64) {
	format.PutU64(bb.raw, format.BaseDataSizeOffset, uint64(n))
	bb.updateChecksum()
}

// SetBlockCount records the number of blocks and refreshes the checksum.
func (bb *BaseBlock) SetBlockCount(n uint32) {
	format.PutU32(bb.raw, format.BaseBlockCountOffset, n)
	bb.updateChecksum()
}

func (bb *BaseBlock) updateChecksum() {
	format.PutU32(bb.raw, format.BaseChecksumOffset, bb.ComputeChecksum())
}
