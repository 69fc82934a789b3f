package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestForCoversRangeOnce verifies every index is visited exactly once for a
// spread of sizes, grains and worker counts.
func TestForCoversRangeOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1023, 50000} {
		for _, grain := range []int{0, 1, 16, 4096} {
			for _, workers := range []int{0, 1, 3, 16} {
				hits := make([]int32, n)
				err := For(context.Background(), workers, n, grain, func(lo, hi int) error {
					for i := lo; i < hi; i++ {
						atomic.AddInt32(&hits[i], 1)
					}
					return nil
				})
				require.NoError(t, err)
				for i, h := range hits {
					if h != 1 {
						t.Fatalf("n=%d grain=%d workers=%d: index %d visited %d times", n, grain, workers, i, h)
					}
				}
			}
		}
	}
}

func TestForPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Each(context.Background(), 4, 10000, 10, func(i int) error {
		if i == 5000 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestForCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Int64
	err := For(ctx, 4, 100000, 10, func(lo, hi int) error {
		ran.Add(1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, ran.Load())
}

func TestBlocksExactSplit(t *testing.T) {
	const n = 1001
	counts := make([]int, 7)
	err := Blocks(context.Background(), 3, n, 7, func(b, lo, hi int) error {
		counts[b] = hi - lo
		return nil
	})
	require.NoError(t, err)
	total := 0
	for _, c := range counts {
		require.InDelta(t, n/7, c, 1)
		total += c
	}
	require.Equal(t, n, total)
}

func TestWorkers(t *testing.T) {
	require.Positive(t, Workers(0))
	require.Positive(t, Workers(-3))
	require.Equal(t, 5, Workers(5))
}
