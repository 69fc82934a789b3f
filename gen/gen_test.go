package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformRangeAndPayload(t *testing.T) {
	recs := Uniform(10000, 99, 1)
	require.Len(t, recs, 10000)
	for i, r := range recs {
		require.LessOrEqual(t, r.Key, uint64(99))
		require.Equal(t, uint64(i), r.Value)
		require.Zero(t, r.HashedKey)
	}
	_, _, distinct := Mode(recs)
	require.Equal(t, 100, distinct)
}

func TestDeterministicInSeed(t *testing.T) {
	a := Uniform(1000, 1<<40, 7)
	b := Uniform(1000, 1<<40, 7)
	c := Uniform(1000, 1<<40, 8)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestExponentialConcentrates(t *testing.T) {
	n := 100000
	spread, err := Exponential(n, 1, 3)
	require.NoError(t, err)
	tight, err := Exponential(n, float64(n)/10, 3)
	require.NoError(t, err)

	_, _, spreadDistinct := Mode(spread)
	_, tightCount, tightDistinct := Mode(tight)
	require.Less(t, tightDistinct, spreadDistinct)
	require.Greater(t, tightCount, n/20)

	_, err = Exponential(n, 0, 3)
	require.Error(t, err)
}

func TestZipfianDominantKey(t *testing.T) {
	for _, s := range []float64{1, 1.5} {
		recs, err := Zipfian(100000, s, 1000, 11)
		require.NoError(t, err)
		key, count, distinct := Mode(recs)
		require.Equal(t, uint64(1), key, "s=%v", s)
		require.Greater(t, count, 100000/10, "s=%v", s)
		require.LessOrEqual(t, distinct, 1000)
		for _, r := range recs {
			require.GreaterOrEqual(t, r.Key, uint64(1))
			require.LessOrEqual(t, r.Key, uint64(1000))
		}
	}
}

func TestZipfianRejectsBadParameters(t *testing.T) {
	_, err := Zipfian(10, 0, 100, 1)
	require.Error(t, err)
	_, err = Zipfian(10, 1, 0, 1)
	require.Error(t, err)
	_, err = Zipfian(10, 1, maxZipfTable+1, 1)
	require.Error(t, err)

	recs, err := Zipfian(10, 2, 1, 1)
	require.NoError(t, err)
	for _, r := range recs {
		require.Equal(t, uint64(1), r.Key)
	}
}

func TestFrequencies(t *testing.T) {
	recs := []Record{{Key: 5}, {Key: 7}, {Key: 5}, {Key: 5}}
	m := Frequencies(recs)
	defer m.Close()
	c, ok := m.Get(5)
	require.True(t, ok)
	require.Equal(t, 3, c)
	c, ok = m.Get(7)
	require.True(t, ok)
	require.Equal(t, 1, c)
	require.Equal(t, 2, m.Len())
}
