package alloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// shadow is the expected content of one live allocation.
type shadow struct {
	p    Ptr
	want []byte
}

// runRandomOps drives a seeded mix of Malloc/Free/Realloc and checks, after
// every step, the invariants and the contents of every live allocation.
// It returns the final contents by slot.
func runRandomOps(t *testing.T, seed int64, steps int, opts ...Option) map[int][]byte {
	t.Helper()
	th := newTestHeap(t, 0, opts...)
	rng := rand.New(rand.NewSource(seed))
	live := map[int]*shadow{}

	for step := range steps {
		slot := rng.Intn(32)
		s := live[slot]
		switch op := rng.Intn(10); {
		case s == nil || op < 3:
			if s != nil {
				require.NoError(t, th.Free(s.p))
				delete(live, slot)
				break
			}
			size := 1 + rng.Intn(300)
			p := mustMalloc(t, th.Allocator, size)
			want := make([]byte, size)
			rng.Read(want)
			writePayload(t, th.Allocator, p, want)
			live[slot] = &shadow{p: p, want: want}

		case op < 6:
			size := rng.Intn(400)
			p, err := th.Realloc(s.p, size)
			require.NoError(t, err)
			if size == 0 {
				require.True(t, p.IsNil())
				delete(live, slot)
				break
			}
			got, err := th.Payload(p)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(got), size)
			keep := min(size, len(s.want))
			require.Equal(t, s.want[:keep], got[:keep], "step %d: resize lost contents", step)
			require.Equal(t, make([]byte, len(got)-keep), got[keep:], "step %d: bytes past the kept prefix must be zero", step)

			want := make([]byte, size)
			copy(want, s.want)
			rng.Read(want[keep:])
			writePayload(t, th.Allocator, p, want)
			live[slot] = &shadow{p: p, want: want}

		default:
			require.NoError(t, th.Free(s.p))
			delete(live, slot)
		}

		assertInvariants(t, th.Allocator)
		for id, s := range live {
			require.Equal(t, s.want, readPayload(t, th.Allocator, s.p, len(s.want)), "step %d slot %d", step, id)
		}
	}

	out := map[int][]byte{}
	for id, s := range live {
		out[id] = s.want
	}
	return out
}

func TestRandomOpsKeepInvariants(t *testing.T) {
	for _, seed := range []int64{1, 42, 2024} {
		runRandomOps(t, seed, 600)
	}
}

func TestRandomOpsInPlaceMatchesCopy(t *testing.T) {
	for _, seed := range []int64{7, 99} {
		copied := runRandomOps(t, seed, 400)
		inPlace := runRandomOps(t, seed, 400, WithInPlaceResize())
		require.Equal(t, copied, inPlace)
	}
}
