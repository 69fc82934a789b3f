package radix

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

type item struct {
	key uint64
	pos int
}

func itemKey(it item) uint64 { return it.key }

func isSorted(x []item) bool {
	for i := 1; i < len(x); i++ {
		if x[i-1].key > x[i].key {
			return false
		}
	}
	return true
}

func TestSortMatchesReference(t *testing.T) {
	rng := newTestRNG(t)
	for _, n := range []int{0, 1, 2, 63, 64, 65, 1000, 100000} {
		for _, keyBits := range []int{8, 20, 41, 64} {
			x := make([]item, n)
			for i := range x {
				k := rng.Uint64()
				if keyBits < 64 {
					k &= (uint64(1) << keyBits) - 1
				}
				x[i] = item{key: k, pos: i}
			}
			want := slices.Clone(x)
			slices.SortStableFunc(want, func(a, b item) int {
				switch {
				case a.key < b.key:
					return -1
				case a.key > b.key:
					return 1
				}
				return 0
			})

			Sort(x, make([]item, n), itemKey, keyBits)
			require.True(t, isSorted(x), "n=%d keyBits=%d", n, keyBits)
			require.Equal(t, want, x, "n=%d keyBits=%d: not stable or lost elements", n, keyBits)
		}
	}
}

// TestSortFewDistinctKeys exercises skipped identity passes: most digits are
// shared by all keys.
func TestSortFewDistinctKeys(t *testing.T) {
	rng := newTestRNG(t)
	x := make([]item, 5000)
	for i := range x {
		x[i] = item{key: uint64(rng.IntN(3)) << 40, pos: i}
	}
	Sort(x, make([]item, len(x)), itemKey, 48)
	require.True(t, isSorted(x))
}

func TestSortShortTmpPanics(t *testing.T) {
	x := make([]item, 100)
	require.Panics(t, func() { Sort(x, make([]item, 10), itemKey, 64) })
}
