package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Freed block is handed out again and comes back zeroed.
func TestScenario_ReuseIsZeroFilled(t *testing.T) {
	th := newTestHeap(t, 0)

	p1 := mustMalloc(t, th.Allocator, 16)
	payload, err := th.Payload(p1)
	require.NoError(t, err)
	for i := range 16 {
		payload[i] = byte(i + 1)
	}
	require.NoError(t, th.Free(p1))

	p := mustMalloc(t, th.Allocator, 16)
	assert.Equal(t, p1, p)
	payload, err = th.Payload(p)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), payload[:16])
	assertInvariants(t, th.Allocator)
}

// Two adjacent freed blocks merge and satisfy a request for both plus a header.
func TestScenario_MergedBlockAvoidsGrowth(t *testing.T) {
	th := newTestHeap(t, 0)

	p1 := mustMalloc(t, th.Allocator, 16)
	p2 := mustMalloc(t, th.Allocator, 16)
	assert.Equal(t, p1+16+HeaderSize, p2, "second block should directly follow the first")

	require.NoError(t, th.Free(p1))
	require.NoError(t, th.Free(p2))
	assert.Equal(t, 1, th.Len())

	grows := th.grows
	p := mustMalloc(t, th.Allocator, 32+HeaderSize)
	assert.Equal(t, grows, th.grows, "merged block should satisfy the request")
	assert.LessOrEqual(t, p, p1)
	assertInvariants(t, th.Allocator)
}

// Realloc to zero frees, and the block is reused.
func TestScenario_ReallocZeroFrees(t *testing.T) {
	th := newTestHeap(t, 0)

	p := mustMalloc(t, th.Allocator, 8)
	q, err := th.Realloc(p, 0)
	require.NoError(t, err)
	assert.True(t, q.IsNil())

	r := mustMalloc(t, th.Allocator, 8)
	assert.Equal(t, p, r)
	assertInvariants(t, th.Allocator)
}

// Realloc of Nil is Malloc.
func TestScenario_ReallocNil(t *testing.T) {
	th := newTestHeap(t, 0)

	p, err := th.Realloc(Nil, 10)
	require.NoError(t, err)
	require.False(t, p.IsNil())

	payload, err := th.Payload(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(payload), 10)
	assert.Equal(t, make([]byte, len(payload)), payload)
	assert.Equal(t, 1, th.Stats().MallocCalls)
	assertInvariants(t, th.Allocator)
}

// Freeing a pointer that was never allocated changes nothing.
func TestScenario_FreeGarbage(t *testing.T) {
	th := newTestHeap(t, 0)
	mustMalloc(t, th.Allocator, 16)
	mustMalloc(t, th.Allocator, 32)

	before := append([]byte(nil), th.r.Bytes()...)
	for _, garbage := range []Ptr{1, 7, 64, 100, 0x7FFF_FFFF, -8} {
		require.NoError(t, th.Free(garbage))
	}
	assert.Equal(t, before, th.r.Bytes())
	assert.Equal(t, 6, th.Stats().IgnoredFrees)
	assertInvariants(t, th.Allocator)
}

// Realloc of a pointer that was never allocated returns Nil and allocates nothing.
func TestScenario_ReallocGarbage(t *testing.T) {
	th := newTestHeap(t, 0)
	mustMalloc(t, th.Allocator, 16)

	before := append([]byte(nil), th.r.Bytes()...)
	p, err := th.Realloc(Ptr(0x4000), 10)
	assert.True(t, p.IsNil())
	assert.True(t, errors.Is(err, ErrInvalidResize))
	assert.Equal(t, before, th.r.Bytes())
	assert.Equal(t, 1, th.Len())
}
