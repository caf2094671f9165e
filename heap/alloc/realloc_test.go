package alloc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func pattern(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i)
	}
	return out
}

func writePayload(t *testing.T, a *Allocator, p Ptr, data []byte) {
	t.Helper()
	payload, err := a.Payload(p)
	require.NoError(t, err)
	copy(payload, data)
}

func readPayload(t *testing.T, a *Allocator, p Ptr, n int) []byte {
	t.Helper()
	payload, err := a.Payload(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(payload), n)
	return append([]byte(nil), payload[:n]...)
}

func TestReallocGrowPreservesContents(t *testing.T) {
	th := newTestHeap(t, 0)
	p := mustMalloc(t, th.Allocator, 16)
	writePayload(t, th.Allocator, p, pattern(16, 1))

	q, err := th.Realloc(p, 64)
	require.NoError(t, err)
	require.False(t, q.IsNil())

	got := readPayload(t, th.Allocator, q, 64)
	assert.Equal(t, pattern(16, 1), got[:16])
	assert.Equal(t, make([]byte, 48), got[16:])

	_, err = th.Payload(p)
	assert.True(t, errors.Is(err, ErrUnknownPointer), "old block should be released")
	assertInvariants(t, th.Allocator)
}

func TestReallocShrinkPreservesPrefix(t *testing.T) {
	th := newTestHeap(t, 0)
	p := mustMalloc(t, th.Allocator, 64)
	writePayload(t, th.Allocator, p, pattern(64, 9))

	q, err := th.Realloc(p, 24)
	require.NoError(t, err)
	assert.Equal(t, pattern(24, 9), readPayload(t, th.Allocator, q, 24))
	assertInvariants(t, th.Allocator)
}

func TestReallocFailureKeepsOldBlock(t *testing.T) {
	th := newTestHeap(t, 64+HeaderSize+16)
	p := mustMalloc(t, th.Allocator, 16)
	writePayload(t, th.Allocator, p, pattern(16, 3))

	q, err := th.Realloc(p, 128)
	assert.True(t, q.IsNil())
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Equal(t, pattern(16, 3), readPayload(t, th.Allocator, p, 16))
	assertInvariants(t, th.Allocator)
}

func TestReallocNegative(t *testing.T) {
	th := newTestHeap(t, 0)
	p := mustMalloc(t, th.Allocator, 16)
	q, err := th.Realloc(p, -4)
	assert.True(t, q.IsNil())
	assert.True(t, errors.Is(err, ErrInvalidSize))
	assert.False(t, blockAt(t, th.Allocator, p).Free)
}

func TestReallocFreedPointer(t *testing.T) {
	th := newTestHeap(t, 0)
	p := mustMalloc(t, th.Allocator, 16)
	mustMalloc(t, th.Allocator, 16)
	require.NoError(t, th.Free(p))

	q, err := th.Realloc(p, 8)
	assert.True(t, q.IsNil())
	assert.True(t, errors.Is(err, ErrInvalidResize))
	assert.Equal(t, 2, th.Len())
}

func TestReallocZeroUnknown(t *testing.T) {
	th := newTestHeap(t, 0)
	mustMalloc(t, th.Allocator, 8)
	q, err := th.Realloc(Ptr(4096), 0)
	assert.True(t, q.IsNil())
	require.NoError(t, err)
	assert.Equal(t, 1, th.Stats().IgnoredFrees)
	assert.Equal(t, 1, th.Len())
}

func TestReallocZeroStrictUnknown(t *testing.T) {
	th := newTestHeap(t, 0, WithStrict())
	q, err := th.Realloc(Ptr(4096), 0)
	assert.True(t, q.IsNil())
	assert.True(t, errors.Is(err, ErrUnknownPointer))
}

func TestReallocInPlaceShrink(t *testing.T) {
	th := newTestHeap(t, 0, WithInPlaceResize())
	p := mustMalloc(t, th.Allocator, 128)
	mustMalloc(t, th.Allocator, 8)
	writePayload(t, th.Allocator, p, pattern(128, 5))

	q, err := th.Realloc(p, 16)
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assert.Equal(t, pattern(16, 5), readPayload(t, th.Allocator, q, 16))

	blocks, err := th.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, int64(16), blocks[0].Size)
	assert.True(t, blocks[1].Free)
	assert.Equal(t, int64(128-16-HeaderSize), blocks[1].Size)
	assert.Equal(t, 1, th.Stats().InPlaceResizes)
	assertInvariants(t, th.Allocator)
}

func TestReallocInPlaceShrinkMergesFreeSuccessor(t *testing.T) {
	th := newTestHeap(t, 0, WithInPlaceResize())
	p := mustMalloc(t, th.Allocator, 128)
	q := mustMalloc(t, th.Allocator, 32)
	mustMalloc(t, th.Allocator, 8)
	require.NoError(t, th.Free(q))

	r, err := th.Realloc(p, 16)
	require.NoError(t, err)
	assert.Equal(t, p, r)

	blocks, err := th.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.True(t, blocks[1].Free)
	assert.Equal(t, int64(128-16-HeaderSize+HeaderSize+32), blocks[1].Size)
	assertInvariants(t, th.Allocator)
}

func TestReallocInPlaceGrowIntoFreeSuccessor(t *testing.T) {
	th := newTestHeap(t, 0, WithInPlaceResize())
	p := mustMalloc(t, th.Allocator, 16)
	q := mustMalloc(t, th.Allocator, 64)
	mustMalloc(t, th.Allocator, 8)
	writePayload(t, th.Allocator, p, pattern(16, 7))
	writePayload(t, th.Allocator, q, pattern(64, 0x80))
	require.NoError(t, th.Free(q))

	grows := th.grows
	r, err := th.Realloc(p, 48)
	require.NoError(t, err)
	assert.Equal(t, p, r)
	assert.Equal(t, grows, th.grows)

	got := readPayload(t, th.Allocator, r, 48)
	assert.Equal(t, pattern(16, 7), got[:16])
	assert.Equal(t, make([]byte, 32), got[16:], "absorbed bytes must read as zero")

	blocks, err := th.Blocks()
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, int64(48), blocks[0].Size)
	assert.True(t, blocks[1].Free)
	assert.Equal(t, int64(16+HeaderSize+64-48-HeaderSize), blocks[1].Size)
	assertInvariants(t, th.Allocator)
}

func TestReallocInPlaceFallsBackToMove(t *testing.T) {
	th := newTestHeap(t, 0, WithInPlaceResize())
	p := mustMalloc(t, th.Allocator, 16)
	mustMalloc(t, th.Allocator, 16)
	writePayload(t, th.Allocator, p, pattern(16, 2))

	q, err := th.Realloc(p, 256)
	require.NoError(t, err)
	assert.NotEqual(t, p, q)
	assert.Equal(t, pattern(16, 2), readPayload(t, th.Allocator, q, 16))
	assert.Zero(t, th.Stats().InPlaceResizes)
	assertInvariants(t, th.Allocator)
}

func TestReallocUnalignedShrinkZeroesPadding(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"16 to 5", 16, 5},
		{"64 to 13", 64, 13},
		{"24 to 17", 24, 17},
		{"128 to 1", 128, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := map[bool][]byte{}
			for _, inPlace := range []bool{false, true} {
				var opts []Option
				if inPlace {
					opts = append(opts, WithInPlaceResize())
				}
				th := newTestHeap(t, 0, opts...)
				p := mustMalloc(t, th.Allocator, tt.from)
				mustMalloc(t, th.Allocator, 8)
				writePayload(t, th.Allocator, p, bytes.Repeat([]byte{0xAA}, tt.from))

				q, err := th.Realloc(p, tt.to)
				require.NoError(t, err)
				payload, err := th.Payload(q)
				require.NoError(t, err)
				require.GreaterOrEqual(t, len(payload), tt.to)
				assert.Equal(t, bytes.Repeat([]byte{0xAA}, tt.to), payload[:tt.to])
				assert.Equal(t, make([]byte, len(payload)-tt.to), payload[tt.to:], "bytes past the new size must be zero")
				results[inPlace] = append([]byte(nil), payload[:format.AlignWord(tt.to)]...)
				assertInvariants(t, th.Allocator)
			}
			assert.Equal(t, results[false], results[true])
		})
	}
}
