// Package gen produces synthetic key distributions for exercising and
// benchmarking semisort. Every generator is deterministic in its seed and
// stores the record's original index as its Value, so a grouped output can
// be checked to be a permutation of the input.
package gen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/cockroachdb/swiss"

	"github.com/tamirms/semisort"
)

// Record is the record type produced by every generator.
type Record = semisort.Record[uint64, uint64]

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform returns n records with keys drawn uniformly from [0, maxKey].
func Uniform(n int, maxKey uint64, seed uint64) []Record {
	r := newRand(seed)
	recs := make([]Record, n)
	for i := range recs {
		var k uint64
		if maxKey == math.MaxUint64 {
			k = r.Uint64()
		} else {
			k = r.Uint64N(maxKey + 1)
		}
		recs[i] = Record{Value: uint64(i), Key: k}
	}
	return recs
}

// Exponential returns n records with keys floor(n * X), X exponentially
// distributed with rate lambda. Larger lambda concentrates the keys.
func Exponential(n int, lambda float64, seed uint64) ([]Record, error) {
	if !(lambda > 0) || math.IsInf(lambda, 0) {
		return nil, fmt.Errorf("gen: exponential rate %v must be positive", lambda)
	}
	r := newRand(seed)
	recs := make([]Record, n)
	for i := range recs {
		x := float64(n) * r.ExpFloat64() / lambda
		recs[i] = Record{Value: uint64(i), Key: uint64(min(x, math.MaxUint64/2))}
	}
	return recs, nil
}

// Zipfian returns n records with keys in [1, imax] where key i is drawn
// with probability proportional to 1/i^s.
func Zipfian(n int, s float64, imax uint64, seed uint64) ([]Record, error) {
	if !(s > 0) || math.IsInf(s, 0) {
		return nil, fmt.Errorf("gen: zipf exponent %v must be positive", s)
	}
	if imax == 0 {
		return nil, fmt.Errorf("gen: zipf range must be non-empty")
	}
	r := newRand(seed)
	next, err := zipfSampler(r, s, imax)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, n)
	for i := range recs {
		recs[i] = Record{Value: uint64(i), Key: next()}
	}
	return recs, nil
}

// maxZipfTable bounds the cumulative table used when s <= 1.
const maxZipfTable = 1 << 26

// zipfSampler returns a sampler over [1, imax]. rand.Zipf needs s > 1; for
// s <= 1 the sampler inverts a precomputed cumulative distribution.
func zipfSampler(r *rand.Rand, s float64, imax uint64) (func() uint64, error) {
	if imax == 1 {
		return func() uint64 { return 1 }, nil
	}
	if s > 1 {
		z := rand.NewZipf(r, s, 1, imax-1)
		return func() uint64 { return z.Uint64() + 1 }, nil
	}
	if imax > maxZipfTable {
		return nil, fmt.Errorf("gen: zipf range %d with s = %v exceeds %d", imax, s, maxZipfTable)
	}
	cdf := make([]float64, imax)
	var sum float64
	for i := range cdf {
		sum += 1 / math.Pow(float64(i+1), s)
		cdf[i] = sum
	}
	return func() uint64 {
		u := r.Float64() * sum
		i, _ := slices.BinarySearch(cdf, u)
		return uint64(min(i, len(cdf)-1)) + 1
	}, nil
}

// Frequencies counts the records of every key.
func Frequencies(recs []Record) *swiss.Map[uint64, int] {
	m := swiss.New[uint64, int](len(recs) / 8)
	for i := range recs {
		c, _ := m.Get(recs[i].Key)
		m.Put(recs[i].Key, c+1)
	}
	return m
}

// Mode returns the most frequent key, its count and the number of distinct
// keys.
func Mode(recs []Record) (key uint64, count, distinct int) {
	m := Frequencies(recs)
	defer m.Close()
	m.All(func(k uint64, c int) bool {
		if c > count || (c == count && k < key) {
			key, count = k, c
		}
		return true
	})
	return key, count, m.Len()
}
