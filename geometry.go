package semisort

import (
	"fmt"
	"math"

	serrors "github.com/tamirms/semisort/errors"
	intbits "github.com/tamirms/semisort/internal/bits"
)

const (
	// maxHashRange clamps n^HashRangeK so hashed keys stay below the light
	// bucket id tag bit.
	maxHashRange = uint64(1) << 62

	// maxSampleProbability caps p = C / log2 n.
	maxSampleProbability = 0.25

	// bucketPadding is the multiplicative safety margin applied before
	// rounding a bucket size up to a power of two.
	bucketPadding = 1.1
)

// hashRange returns k = min(n^exp, 2^62), at least 1.
func hashRange(n int, exp float64) uint64 {
	if n <= 1 {
		return 1
	}
	k := math.Pow(float64(n), exp)
	if k >= float64(maxHashRange) {
		return maxHashRange
	}
	return max(uint64(k), 1)
}

// sizeFunc upper-bounds, with high probability, the true number of records
// of a key observed m times in a sample drawn at rate p, pads it by 10% and
// rounds up to a power of two:
//
//	nextPow2(1.1 * (m + c ln n + sqrt((c ln n)^2 + 2 m c ln n)) / p)
func sizeFunc(m uint64, p float64, n int, c float64) uint64 {
	clnn := c * math.Log(float64(n))
	fm := float64(m)
	fs := (fm + clnn + math.Sqrt(clnn*clnn+2*fm*clnn)) / p
	return uint64(intbits.NextPowerOfTwo(bucketPadding * fs))
}

// geometry holds every size derived from n and the configuration. It is
// computed once per call and shared by all stages so that planning and
// scattering agree on bucket boundaries exactly.
type geometry struct {
	n              int
	log2n          float64
	p              float64
	numSamples     int
	hashRange      uint64
	hashBits       int
	gamma          uint64
	numBuckets     uint64
	bucketRange    uint64
	partitionWidth int
}

func newGeometry(n int, cfg *config) (geometry, error) {
	g := geometry{n: n}
	if n < 2 {
		return g, fmt.Errorf("n = %d: %w", n, serrors.ErrInvalidInputSize)
	}
	g.log2n = math.Log2(float64(n))
	g.p = min(cfg.sampleProbabilityConstant/g.log2n, maxSampleProbability)
	g.numSamples = int(math.Floor(float64(n)*g.p)) - 1
	if g.numSamples <= 0 {
		return g, fmt.Errorf("n = %d, p = %.4f: %w", n, g.p, serrors.ErrInvalidInputSize)
	}

	g.hashRange = hashRange(n, cfg.hashRangeK)
	g.hashBits = intbits.Len64(g.hashRange)
	g.gamma = uint64(cfg.deltaThreshold * math.Log(float64(n)))

	nb := cfg.lightKeyBucketConstant * (float64(n)/(g.log2n*g.log2n) + 1)
	if !(nb >= 1) || nb > float64(math.MaxUint32) {
		return g, fmt.Errorf("light bucket count %.2f: %w", nb, serrors.ErrInvalidConfig)
	}
	g.numBuckets = uint64(nb)
	g.bucketRange = uint64(float64(g.hashRange) / float64(g.numBuckets))
	if g.bucketRange == 0 {
		return g, fmt.Errorf("light bucket range is zero (%d buckets over hash range %d): %w",
			g.numBuckets, g.hashRange, serrors.ErrInvalidConfig)
	}
	g.partitionWidth = max(int(g.log2n), 1)
	return g, nil
}

// lightBucket returns the light super-bucket index of hashed key h. The
// planner and both scatter passes call this one function, so a record can
// never round to a range with no descriptor. Keys in the trailing partial
// range fold into the last bucket.
func (g *geometry) lightBucket(h uint64) uint64 {
	return min(h/g.bucketRange, g.numBuckets-1)
}

// maxSpan bounds the bucket span of any plan for this geometry. Each bucket
// holding m sampled records rounds up to less than
// 2 * 1.1 * (2m + 2c ln n) / p slots, at most numSamples/(gamma+1) keys can
// be heavy, and sample counts sum to numSamples.
func (g *geometry) maxSpan(c float64) uint64 {
	a := c * math.Log(float64(g.n))
	buckets := float64(g.numBuckets) + math.Floor(float64(g.numSamples)/float64(g.gamma+1))
	bound := 2*bucketPadding*2*(float64(g.numSamples)+buckets*a)/g.p + buckets
	if bound >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint64(math.Ceil(bound))
}

// sampleCapacity is the record scratch length needed for sampling: the
// sample itself plus an equally sized radix sort buffer.
func (g *geometry) sampleCapacity() int {
	return 2 * g.numSamples
}
