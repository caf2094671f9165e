package verify

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes one invariant violation.
type ValidationError struct {
	Type    string
	Message string
	Offset  int64
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all region invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := BaseBlock(data); err != nil {
		return err
	}
	if err := RegionSize(data); err != nil {
		return err
	}
	return Directory(data)
}

// BaseBlock validates signature, version and checksum.
func BaseBlock(data []byte) error {
	if len(data) < format.BaseSize {
		return &ValidationError{
			Type:    "BaseBlock",
			Message: fmt.Sprintf("region too small: %d bytes (need %d)", len(data), format.BaseSize),
			Offset:  -1,
		}
	}

	sig := data[format.BaseSignatureOffset : format.BaseSignatureOffset+len(format.BaseSignature)]
	if !bytes.Equal(sig, format.BaseSignature) {
		return &ValidationError{
			Type:    "BaseBlock",
			Message: fmt.Sprintf("invalid signature: got %q, expected %q", sig, format.BaseSignature),
			Offset:  format.BaseSignatureOffset,
		}
	}

	if v := format.ReadU32(data, format.BaseVersionOffset); v != format.BaseVersion {
		return &ValidationError{
			Type:    "BaseBlock",
			Message: fmt.Sprintf("unsupported version: %d (expected %d)", v, format.BaseVersion),
			Offset:  format.BaseVersionOffset,
		}
	}

	calculated := format.Checksum(data, format.BaseChecksumOffset)
	stored := format.ReadU32(data, format.BaseChecksumOffset)
	if calculated != stored {
		return &ValidationError{
			Type:    "BaseBlock",
			Message: fmt.Sprintf("checksum mismatch: calculated=0x%08X, stored=0x%08X", calculated, stored),
			Offset:  format.BaseChecksumOffset,
			Details: map[string]any{
				"calculated": calculated,
				"stored":     stored,
			},
		}
	}
	return nil
}

// RegionSize validates that the region length matches the recorded data size.
func RegionSize(data []byte) error {
	if len(data) < format.BaseSize {
		return &ValidationError{
			Type:    "RegionSize",
			Message: fmt.Sprintf("region too small: %d bytes", len(data)),
			Offset:  -1,
		}
	}
	dataSize := int64(format.ReadU64(data, format.BaseDataSizeOffset))
	expected := format.BaseSize + dataSize
	if actual := int64(len(data)); actual != expected {
		return &ValidationError{
			Type:    "RegionSize",
			Message: fmt.Sprintf("size mismatch: actual=0x%X, expected=0x%X (base+data)", actual, expected),
			Offset:  -1,
			Details: map[string]any{
				"actual":    actual,
				"expected":  expected,
				"data_size": dataSize,
			},
		}
	}
	return nil
}

// Directory validates the block list: contiguous address order starting at
// the end of the base block and ending at the region end, consistent links,
// word-aligned sizes, head/tail/count agreement and no adjacent free blocks.
func Directory(data []byte) error {
	if len(data) < format.BaseSize {
		return dirErr(-1, "region too small: %d bytes", len(data))
	}
	head := int64(format.ReadU64(data, format.BaseHeadOffset))
	tail := int64(format.ReadU64(data, format.BaseTailOffset))
	count := format.ReadU32(data, format.BaseBlockCountOffset)
	size := int64(len(data))

	if head == format.NoBlock {
		if tail != format.NoBlock || count != 0 || size != format.BaseSize {
			return dirErr(-1, "empty list but tail=0x%X count=%d region=0x%X", tail, count, size)
		}
		return nil
	}
	if head != format.BaseSize {
		return dirErr(format.BaseHeadOffset, "head 0x%X, expected 0x%X", head, format.BaseSize)
	}

	var (
		off      = head
		prev     = int64(format.NoBlock)
		prevFree bool
		n        uint32
	)
	for {
		if off+format.HeaderSize > size || off < format.BaseSize {
			return dirErr(off, "header outside region (size 0x%X)", size)
		}
		psize := int64(format.ReadU64(data, int(off)+format.HeaderSizeOffset))
		hprev := int64(format.ReadU64(data, int(off)+format.HeaderPrevOffset))
		hnext := int64(format.ReadU64(data, int(off)+format.HeaderNextOffset))
		free := format.ReadU32(data, int(off)+format.HeaderFlagsOffset)&format.FlagFree != 0
		n++

		if psize < 0 || psize%format.WordSize != 0 {
			return dirErr(off, "payload size %d not a positive multiple of %d", psize, format.WordSize)
		}
		end := off + format.HeaderSize + psize
		if end > size || end < off {
			return dirErr(off, "block extends past region end: end=0x%X, region=0x%X", end, size)
		}
		if hprev != prev {
			return dirErr(off, "prev link 0x%X, expected 0x%X", hprev, prev)
		}
		if free && prevFree {
			return dirErr(off, "adjacent free blocks 0x%X and 0x%X", prev, off)
		}
		if hnext == format.NoBlock {
			if end != size {
				return dirErr(off, "last block ends at 0x%X, region ends at 0x%X", end, size)
			}
			if off != tail {
				return dirErr(format.BaseTailOffset, "tail 0x%X, last block 0x%X", tail, off)
			}
			break
		}
		if hnext != end {
			return dirErr(off, "next link 0x%X, block ends at 0x%X", hnext, end)
		}
		if n > uint32(size/format.HeaderSize) {
			return dirErr(off, "list longer than region allows")
		}
		prev, prevFree, off = off, free, hnext
	}

	if n != count {
		return &ValidationError{
			Type:    "Directory",
			Message: fmt.Sprintf("block count %d, list has %d", count, n),
			Offset:  format.BaseBlockCountOffset,
			Details: map[string]any{"recorded": count, "actual": n},
		}
	}
	return nil
}

func dirErr(off int64, msg string, args ...any) error {
	return &ValidationError{Type: "Directory", Message: fmt.Sprintf(msg, args...), Offset: off}
}
