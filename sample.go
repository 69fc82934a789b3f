package semisort

import (
	"context"

	"github.com/tamirms/semisort/internal/parallel"
	"github.com/tamirms/semisort/internal/radix"
	"github.com/tamirms/semisort/internal/rng"
)

// Random stream lanes, one per randomized stage.
const (
	laneSample = iota + 1
	laneHeavy
	laneLight
)

// sampleGrain is the minimum number of strata drawn per parallel task.
const sampleGrain = 2048

// drawSample picks one uniformly random index from each of the
// g.numSamples strata of [0, n), gathers those records into the front of
// recs and sorts them by hashed key. Stratum i is [i*n/s, (i+1)*n/s).
//
// ints[:numSamples] receives the sampled indices; recs must hold
// g.sampleCapacity() records. The input is only read.
func drawSample[V, K any](ctx context.Context, cfg *config, g *geometry, src rng.Source,
	records []Record[V, K], ints []uint64, recs []Record[V, K]) ([]Record[V, K], error) {
	s := g.numSamples
	n := uint64(g.n)
	lane := src.Split(laneSample)

	err := parallel.For(ctx, cfg.workers, s, sampleGrain, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			start := uint64(i) * n / uint64(s)
			end := uint64(i+1) * n / uint64(s)
			st := lane.Stream(uint64(i))
			idx := start + uint64(st.BelowInt(int(end-start)))
			ints[i] = idx
			recs[i] = records[idx]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sample := recs[:s]
	radix.Sort(sample, recs[s:2*s], hashedKeyOf[V, K], g.hashBits)
	return sample, nil
}
