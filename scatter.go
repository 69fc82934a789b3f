package semisort

import (
	"context"
	"fmt"
	"sync/atomic"

	serrors "github.com/tamirms/semisort/errors"
	"github.com/tamirms/semisort/internal/bucket"
	"github.com/tamirms/semisort/internal/parallel"
	"github.com/tamirms/semisort/internal/rng"
)

// scatterGrain is the minimum number of partitions per parallel task.
const scatterGrain = 64

// buildTable inserts every planned descriptor in parallel. The returned
// table is read-only from then on.
func buildTable(ctx context.Context, cfg *config, g *geometry, plan *bucketPlan) (*bucket.Table, error) {
	numDesc := len(plan.heavy) + len(plan.light)
	tbl := bucket.NewTable(max(2*g.n, 2*numDesc))
	insert := func(ds []bucket.Descriptor) error {
		return parallel.Each(ctx, cfg.workers, len(ds), 1024, func(i int) error {
			return tbl.Insert(ds[i])
		})
	}
	if err := insert(plan.heavy); err != nil {
		return nil, fmt.Errorf("insert heavy buckets: %w", err)
	}
	if err := insert(plan.light); err != nil {
		return nil, fmt.Errorf("insert light buckets: %w", err)
	}
	return tbl, nil
}

// landingArea is the landing array plus one claim flag per slot. Slots are
// claimed through the flags, so records are only written by the goroutine
// that owns the slot and are never accessed atomically.
type landingArea[V, K any] struct {
	slots   []Record[V, K]
	claimed []atomic.Uint32
}

func newLandingArea[V, K any](size uint64) *landingArea[V, K] {
	return &landingArea[V, K]{
		slots:   make([]Record[V, K], size),
		claimed: make([]atomic.Uint32, size),
	}
}

// scatter moves every record of one class (heavy or light) into a free slot
// of its bucket in landing. The input is partitioned into runs of
// g.partitionWidth consecutive records; each run draws from its own random
// stream.
func scatter[V, K any](ctx context.Context, cfg *config, g *geometry, src rng.Source, tbl *bucket.Table,
	records []Record[V, K], landing *landingArea[V, K], heavy bool) error {
	width := g.partitionWidth
	numPartitions := (g.n + width - 1) / width
	lane := src.Split(laneLight)
	if heavy {
		lane = src.Split(laneHeavy)
	}

	return parallel.Each(ctx, cfg.workers, numPartitions, scatterGrain, func(part int) error {
		st := lane.Stream(uint64(part))
		end := min((part+1)*width, g.n)
		for i := part * width; i < end; i++ {
			r := &records[i]
			d := tbl.Find(r.HashedKey)
			if heavy {
				if d.Empty() {
					continue
				}
			} else {
				if !d.Empty() {
					continue
				}
				d = tbl.Find(bucket.LightID(g.lightBucket(r.HashedKey)))
				if d.Empty() {
					return fmt.Errorf("hashed key %d: %w", r.HashedKey, serrors.ErrMissingBucket)
				}
			}
			if err := claim(landing, d, r, &st, cfg.maxProbeRounds); err != nil {
				return err
			}
		}
		return nil
	})
}

// claim stores r in a free slot of bucket d. Probing starts at a random slot
// and advances linearly, restarting at a fresh random slot whenever it runs
// off the end of the bucket. After rounds*capacity probes it sweeps the
// whole bucket once, so failure means the bucket really is full.
func claim[V, K any](landing *landingArea[V, K], d bucket.Descriptor, r *Record[V, K], st *rng.Stream, rounds int) error {
	lo, hi := uint64(d.Offset), d.End()
	budget := uint64(rounds) * uint64(d.Capacity)

	idx := lo + uint64(st.Below(d.Capacity))
	for range budget {
		if landing.tryClaim(idx, r) {
			return nil
		}
		idx++
		if idx >= hi {
			idx = lo + uint64(st.Below(d.Capacity))
		}
	}
	for idx := lo; idx < hi; idx++ {
		if landing.tryClaim(idx, r) {
			return nil
		}
	}
	return fmt.Errorf("bucket %#x (offset %d, capacity %d, heavy %v): %w",
		d.ID, d.Offset, d.Capacity, d.Heavy, serrors.ErrCapacityExceeded)
}

// tryClaim takes ownership of slot idx by setting its claim flag and then
// stores r there.
func (a *landingArea[V, K]) tryClaim(idx uint64, r *Record[V, K]) bool {
	flag := &a.claimed[idx]
	if flag.Load() != 0 || !flag.CompareAndSwap(0, 1) {
		return false
	}
	a.slots[idx] = *r
	return true
}
