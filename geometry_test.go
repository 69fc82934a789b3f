package semisort

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	serrors "github.com/tamirms/semisort/errors"
)

func TestGeometryEightRecords(t *testing.T) {
	cfg := defaultConfig()
	g, err := newGeometry(8, cfg)
	require.NoError(t, err)

	require.Equal(t, 0.25, g.p)
	require.Equal(t, 1, g.numSamples)
	require.Equal(t, uint64(107), g.hashRange) // floor(8^2.25)
	require.Equal(t, uint64(2), g.gamma)       // floor(ln 8)
	require.Equal(t, uint64(3), g.numBuckets)  // floor(2 * (8/9 + 1))
	require.Equal(t, uint64(35), g.bucketRange)
	require.Equal(t, 3, g.partitionWidth)
	require.Equal(t, 2, g.sampleCapacity())
}

func TestGeometrySampleProbabilityCap(t *testing.T) {
	cfg := defaultConfig()
	small, err := newGeometry(1000, cfg)
	require.NoError(t, err)
	require.Equal(t, maxSampleProbability, small.p)

	large, err := newGeometry(1<<20, cfg)
	require.NoError(t, err)
	require.InDelta(t, 3.0/20, large.p, 1e-12)
	require.Equal(t, int(math.Floor(float64(1<<20)*large.p))-1, large.numSamples)
}

func TestGeometryRejectsSmallInputs(t *testing.T) {
	cfg := defaultConfig()
	for _, n := range []int{-1, 0, 1, 2, 3, 4, 5, 6, 7} {
		_, err := newGeometry(n, cfg)
		require.ErrorIs(t, err, serrors.ErrInvalidInputSize, "n=%d", n)
	}
	_, err := newGeometry(8, cfg)
	require.NoError(t, err)

	// A small sampling constant pushes the threshold up.
	cfg.sampleProbabilityConstant = 0.5
	_, err = newGeometry(8, cfg)
	require.ErrorIs(t, err, serrors.ErrInvalidInputSize)
}

func TestHashRangeClamp(t *testing.T) {
	require.Equal(t, uint64(1), hashRange(0, 2.25))
	require.Equal(t, uint64(1), hashRange(1, 2.25))
	require.Equal(t, uint64(1000), hashRange(1000, 1))
	require.Equal(t, maxHashRange, hashRange(1<<30, 2.25))
	require.Equal(t, maxHashRange, hashRange(math.MaxInt, 10))
}

func TestLightBucketClamp(t *testing.T) {
	g, err := newGeometry(8, defaultConfig())
	require.NoError(t, err)

	require.Equal(t, uint64(0), g.lightBucket(1))
	require.Equal(t, uint64(0), g.lightBucket(34))
	require.Equal(t, uint64(1), g.lightBucket(35))
	require.Equal(t, uint64(2), g.lightBucket(70))
	// 105..107 would be range 3, which has no bucket.
	require.Equal(t, uint64(2), g.lightBucket(105))
	require.Equal(t, uint64(2), g.lightBucket(g.hashRange))
}

func TestLightBucketCoversHashRange(t *testing.T) {
	rng := newTestRNG(t)
	for range 200 {
		n := 8 + rng.IntN(1<<22)
		g, err := newGeometry(n, defaultConfig())
		require.NoError(t, err)
		for _, h := range []uint64{1, g.hashRange, 1 + rng.Uint64N(g.hashRange)} {
			require.Less(t, g.lightBucket(h), g.numBuckets, "n=%d h=%d", n, h)
		}
	}
}

func TestSizeFuncPinned(t *testing.T) {
	// c ln 8 = 2.599; m=0: 1.1 * 2*2.599/0.25 = 22.9 -> 32.
	require.Equal(t, uint64(32), sizeFunc(0, 0.25, 8, 1.25))
	// m=1: 1.1 * (1 + 2.599 + 3.458)/0.25 = 31.05 -> 32.
	require.Equal(t, uint64(32), sizeFunc(1, 0.25, 8, 1.25))
	// m=2: 1.1 * (2 + 2.599 + 4.142)/0.25 = 38.5 -> 64.
	require.Equal(t, uint64(64), sizeFunc(2, 0.25, 8, 1.25))
}

func TestSizeFuncMonotoneAndPowerOfTwo(t *testing.T) {
	rng := newTestRNG(t)
	for range 1000 {
		n := 8 + rng.IntN(1<<30)
		p := min(3/math.Log2(float64(n)), maxSampleProbability)
		m := rng.Uint64N(1 << 20)

		a := sizeFunc(m, p, n, DefaultBucketSizeConstant)
		b := sizeFunc(m+1+rng.Uint64N(1000), p, n, DefaultBucketSizeConstant)
		require.LessOrEqual(t, a, b)
		require.Zero(t, a&(a-1), "size %d not a power of two", a)
		// The bound always covers the plain rescaled estimate.
		require.GreaterOrEqual(t, float64(a), float64(m)/p)
	}
}
