package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/verify"
)

// testHeap bundles an allocator with its region and a growth counter.
type testHeap struct {
	*Allocator
	r     *heap.Memory
	grows int
}

func newTestHeap(t *testing.T, limit int64, opts ...Option) *testHeap {
	t.Helper()
	th := &testHeap{r: heap.NewMemory(limit)}
	opts = append(opts, WithGrowHook(func(int64) { th.grows++ }))
	a, err := New(th.r, opts...)
	require.NoError(t, err)
	th.Allocator = a
	return th
}

// assertInvariants checks the region with the independent verifier.
func assertInvariants(t *testing.T, a *Allocator) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(a.Region().Bytes()))
}

func mustMalloc(t *testing.T, a *Allocator, size int) Ptr {
	t.Helper()
	p, err := a.Malloc(size)
	require.NoError(t, err)
	require.False(t, p.IsNil(), "Malloc(%d) returned Nil", size)
	return p
}

func fill(t *testing.T, a *Allocator, p Ptr, b byte) {
	t.Helper()
	payload, err := a.Payload(p)
	require.NoError(t, err)
	for i := range payload {
		payload[i] = b
	}
}

func blockAt(t *testing.T, a *Allocator, p Ptr) Block {
	t.Helper()
	blocks, err := a.Blocks()
	require.NoError(t, err)
	for _, b := range blocks {
		if b.Ptr == p {
			return b
		}
	}
	t.Fatalf("no block with payload 0x%X", int64(p))
	return Block{}
}
