package semisort

import (
	"context"
	"fmt"
	"math"

	serrors "github.com/tamirms/semisort/errors"
	"github.com/tamirms/semisort/internal/bucket"
	"github.com/tamirms/semisort/internal/encoding"
	"github.com/tamirms/semisort/internal/parallel"
)

const (
	// planGrain is the minimum number of sample positions per parallel task.
	planGrain = 4096

	// packBlocks is the number of blocks of the parallel difference pack.
	packBlocks = 256
)

// bucketPlan is the physical layout of the landing array: heavy buckets in
// sample-discovery order followed by the light super-buckets, together
// spanning [0, span).
type bucketPlan struct {
	heavy    []bucket.Descriptor
	light    []bucket.Descriptor
	span     uint64
	distinct int
	// heavySampled[i] is the sample count of heavy[i].
	heavySampled []uint64
}

// planBuckets derives bucket capacities and offsets from the sorted sample.
//
// ints must hold at least 2*len(sample) entries: the first half receives
// the run-end markers, the second half the packed run ends.
func planBuckets[V, K any](ctx context.Context, cfg *config, g *geometry,
	sample []Record[V, K], ints []uint64) (*bucketPlan, error) {
	s := len(sample)
	diffs := ints[:s]

	// diffs[i] = i+1 when a run of equal hashed keys ends at i, else 0.
	err := parallel.For(ctx, cfg.workers, s, planGrain, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if i == s-1 || sample[i].HashedKey != sample[i+1].HashedKey {
				diffs[i] = uint64(i + 1)
			} else {
				diffs[i] = 0
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	runEnds, err := packNonZero(ctx, cfg, diffs, ints[s:2*s])
	if err != nil {
		return nil, err
	}

	plan := &bucketPlan{distinct: len(runEnds)}
	lightCounts := make([]uint64, g.numBuckets)
	var offset uint64
	prev := uint64(0)
	for _, end := range runEnds {
		count := end - prev
		key := sample[end-1].HashedKey
		prev = end

		if count > g.gamma {
			capacity := sizeFunc(count, g.p, g.n, cfg.bucketSizeConstant)
			d, err := newDescriptor(key, offset, capacity, true)
			if err != nil {
				return nil, err
			}
			plan.heavy = append(plan.heavy, d)
			plan.heavySampled = append(plan.heavySampled, count)
			offset += capacity
		} else {
			lightCounts[g.lightBucket(key)] += count
		}
	}

	plan.light = make([]bucket.Descriptor, g.numBuckets)
	for i, count := range lightCounts {
		capacity := sizeFunc(count, g.p, g.n, cfg.bucketSizeConstant)
		d, err := newDescriptor(bucket.LightID(uint64(i)), offset, capacity, false)
		if err != nil {
			return nil, err
		}
		plan.light[i] = d
		offset += capacity
	}
	plan.span = offset
	return plan, nil
}

// newDescriptor validates that the bucket fits the descriptor's fixed-width
// fields.
func newDescriptor(id, offset, capacity uint64, heavy bool) (bucket.Descriptor, error) {
	if capacity > encoding.MaxCapacity {
		return bucket.Descriptor{}, fmt.Errorf("bucket %d needs capacity %d > %d: %w",
			id, capacity, encoding.MaxCapacity, serrors.ErrCapacityExceeded)
	}
	if offset+capacity > math.MaxUint32 {
		return bucket.Descriptor{}, fmt.Errorf("bucket span %d exceeds 32-bit offsets: %w",
			offset+capacity, serrors.ErrCapacityExceeded)
	}
	return bucket.Descriptor{ID: id, Offset: uint32(offset), Capacity: uint32(capacity), Heavy: heavy}, nil
}

// packNonZero copies the non-zero entries of src, in order, to the front of
// dst and returns that prefix. dst must not overlap src.
func packNonZero(ctx context.Context, cfg *config, src, dst []uint64) ([]uint64, error) {
	nb := min(packBlocks, max(len(src)/planGrain, 1))
	counts := make([]int, nb)
	err := parallel.Blocks(ctx, cfg.workers, len(src), nb, func(b, lo, hi int) error {
		c := 0
		for _, v := range src[lo:hi] {
			if v != 0 {
				c++
			}
		}
		counts[b] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	starts := make([]int, nb)
	total := 0
	for b, c := range counts {
		starts[b] = total
		total += c
	}

	err = parallel.Blocks(ctx, cfg.workers, len(src), nb, func(b, lo, hi int) error {
		j := starts[b]
		for _, v := range src[lo:hi] {
			if v != 0 {
				dst[j] = v
				j++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dst[:total], nil
}
