package semisort

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	serrors "github.com/tamirms/semisort/errors"
	"github.com/tamirms/semisort/internal/parallel"
	"github.com/tamirms/semisort/internal/rng"
)

// Semisort hashes every record's key with hash and then groups the records
// in place so that records with equal hashed keys are contiguous. Neither
// the order of groups nor the order inside a group is specified.
//
// Inputs of length 0 or 1 are returned unchanged. Inputs too short for the
// sampling bounds fail with ErrInvalidInputSize before any record is
// modified; callers typically fall back to a comparison sort.
func Semisort[V, K any](ctx context.Context, records []Record[V, K], hash Hasher[K], opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return hashKeys(ctx, cfg, records, hash)
	}
	g, err := newGeometry(len(records), cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := hashKeys(ctx, cfg, records, hash); err != nil {
		return err
	}
	if cfg.stats != nil {
		cfg.stats.HashTime = time.Since(start)
	}
	return run(ctx, cfg, &g, records, nil)
}

// SemisortHashed groups records whose HashedKey fields are already set to
// values in [1, k], k being the hash range for len(records). It allocates
// its scratch buffers for the call.
func SemisortHashed[V, K any](ctx context.Context, records []Record[V, K], opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return nil
	}
	g, err := newGeometry(len(records), cfg)
	if err != nil {
		return err
	}
	if err := checkHashedKeys(ctx, cfg, &g, records); err != nil {
		return err
	}
	return run(ctx, cfg, &g, records, nil)
}

// SemisortInto is SemisortHashed using caller-owned scratch buffers (see
// NewScratch). Use HashKeys first when records carry only raw keys.
func SemisortInto[V, K any](ctx context.Context, records []Record[V, K], scratch *Scratch[V, K], opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	if scratch == nil || scratch.closed {
		return serrors.ErrScratchClosed
	}
	if len(records) < 2 {
		return nil
	}
	g, err := newGeometry(len(records), cfg)
	if err != nil {
		return err
	}
	if err := scratch.check(&g); err != nil {
		return err
	}
	if err := checkHashedKeys(ctx, cfg, &g, records); err != nil {
		return err
	}
	return run(ctx, cfg, &g, records, scratch)
}

func checkHashedKeys[V, K any](ctx context.Context, cfg *config, g *geometry, records []Record[V, K]) error {
	return parallel.For(ctx, cfg.workers, len(records), hashGrain, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if h := records[i].HashedKey; h == 0 || h > g.hashRange {
				return fmt.Errorf("record %d has hashed key %d, range [1, %d]: %w",
					i, h, g.hashRange, serrors.ErrHashedKeyOutOfRange)
			}
		}
		return nil
	})
}

// run executes sample, plan, table build, scatter, compaction and repack.
// Nothing in records is written before the repack stage.
func run[V, K any](ctx context.Context, cfg *config, g *geometry, records []Record[V, K], scratch *Scratch[V, K]) error {
	seed := cfg.seed
	if !cfg.seedSet {
		seed = rng.RandomSeed()
	}
	src := rng.NewSource(seed)
	log := cfg.logger
	stats := cfg.stats
	if stats == nil {
		stats = new(Stats)
	}

	var ints []uint64
	var recs []Record[V, K]
	if scratch != nil {
		ints, recs = scratch.ints, scratch.records
	} else {
		ints = make([]uint64, 2*g.n)
		recs = make([]Record[V, K], g.sampleCapacity())
	}

	mark := time.Now()
	lap := func(d *time.Duration) {
		now := time.Now()
		*d = now.Sub(mark)
		mark = now
	}

	sample, err := drawSample(ctx, cfg, g, src, records, ints, recs)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	lap(&stats.SampleTime)

	plan, err := planBuckets(ctx, cfg, g, sample, ints)
	if err != nil {
		return fmt.Errorf("plan buckets: %w", err)
	}
	region := plan.span + uint64(g.n)
	log.Debug("semisort: planned buckets",
		zap.Int("n", g.n),
		zap.Int("samples", g.numSamples),
		zap.Float64("p", g.p),
		zap.Uint64("gamma", g.gamma),
		zap.Int("distinctSampled", plan.distinct),
		zap.Int("heavyBuckets", len(plan.heavy)),
		zap.Int("lightBuckets", len(plan.light)),
		zap.Uint64("bucketRange", g.bucketRange),
		zap.Uint64("span", plan.span))
	stats.recordPlan(g, plan)

	var landing *landingArea[V, K]
	if scratch != nil {
		if uint64(len(scratch.landing)) < region {
			return fmt.Errorf("landing array %d < %d: %w", len(scratch.landing), region, serrors.ErrScratchTooSmall)
		}
		landing = &landingArea[V, K]{slots: scratch.landing[:region], claimed: scratch.claimed[:region]}
	} else {
		landing = newLandingArea[V, K](region)
	}

	tbl, err := buildTable(ctx, cfg, g, plan)
	if err != nil {
		return err
	}
	if ce := log.Check(zap.DebugLevel, "semisort: bucket table"); ce != nil {
		entries := tbl.Entries()
		ce.Write(
			zap.Int("slots", tbl.Cap()),
			zap.Int("descriptors", len(entries)),
			zap.Array("entries", zapcore.ArrayMarshalerFunc(func(enc zapcore.ArrayEncoder) error {
				for _, d := range entries {
					enc.AppendString(fmt.Sprintf("%#x@%d+%d", d.ID, d.Offset, d.Capacity))
				}
				return nil
			})))
	}
	if scratch != nil {
		err := parallel.For(ctx, cfg.workers, int(region), hashGrain, func(lo, hi int) error {
			clear(landing.slots[lo:hi])
			clear(landing.claimed[lo:hi])
			return nil
		})
		if err != nil {
			return err
		}
	}
	lap(&stats.PlanTime)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := scatter(ctx, cfg, g, src, tbl, records, landing, true); err != nil {
		return fmt.Errorf("scatter heavy keys: %w", err)
	}
	if err := scatter(ctx, cfg, g, src, tbl, records, landing, false); err != nil {
		return fmt.Errorf("scatter light keys: %w", err)
	}
	lap(&stats.ScatterTime)

	if err := compactLightBuckets(ctx, cfg, plan.light, landing.slots); err != nil {
		return fmt.Errorf("compact light buckets: %w", err)
	}
	lap(&stats.CompactTime)

	if err := repack(ctx, cfg, records, landing.slots, int(region)); err != nil {
		return fmt.Errorf("repack: %w", err)
	}
	lap(&stats.RepackTime)

	log.Debug("semisort: done", zap.Int("n", g.n))
	return nil
}
