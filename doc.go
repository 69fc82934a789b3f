// Package semisort groups a sequence of records in place so that records
// with equal keys end up contiguous, without ordering the groups. It runs in
// expected linear work with all stages parallelized.
//
// Keys are hashed into [1, n^2.25]. A stratified random sample of the
// hashed keys decides which keys are heavy (frequent enough to deserve a
// bucket of their own); every other key shares one of O(n / log^2 n) light
// buckets covering a contiguous hashed key range. Records are scattered
// into randomly probed slots of their bucket, light buckets are sorted
// locally, and the occupied slots are packed back into the input.
//
// # Basic Usage
//
// Grouping records with string keys (error sentinels live in the errors
// subpackage):
//
//	recs := make([]semisort.Record[int, string], len(rows))
//	for i, row := range rows {
//	    recs[i] = semisort.Record[int, string]{Value: i, Key: row.Name}
//	}
//	err := semisort.Semisort(ctx, recs, semisort.HashString)
//	if errors.Is(err, semisorterrors.ErrInvalidInputSize) {
//	    // too short to sample; sort it instead
//	}
//
// Reusing buffers across calls on pre-hashed records:
//
//	scratch, err := semisort.NewScratch[int, string](len(recs))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scratch.Close()
//
//	for batch := range batches {
//	    if err := semisort.HashKeys(ctx, batch, semisort.HashString); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := semisort.SemisortInto(ctx, batch, scratch); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: semisort.go (Semisort, SemisortHashed, SemisortInto), verify.go (CheckGrouped)
//   - Configuration: options.go (Option, With* functions), geometry.go (derived sizes)
//   - Hashing: hasher.go (Hasher, HashKeys, stock hashers)
//   - Stages: sample.go, plan.go, scatter.go, compact.go, repack.go
//   - Buffers: scratch.go, scratch_*.go (mapped scratch, OS-specific prefault)
//   - Building blocks: internal/bucket (descriptor table), internal/radix,
//     internal/parallel (errgroup loops), internal/rng, internal/encoding
//   - Workloads: gen/ (uniform, exponential and Zipfian generators), cmd/bench
package semisort
