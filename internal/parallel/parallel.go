// Package parallel provides the fork-join primitives used by every semisort
// stage: an index range is cut into contiguous blocks, blocks run on an
// errgroup bounded by the worker count, and the call returns once all
// blocks have joined.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// blocksPerWorker oversubscribes blocks so uneven blocks still balance.
const blocksPerWorker = 4

// Workers normalizes a worker count: values <= 0 mean GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// For calls fn on contiguous sub-ranges [lo, hi) covering [0, n). Each block
// holds at least grain indices (except possibly the last). The first error
// returned by any block is returned after all started blocks finish; blocks
// not yet started when an error occurs are skipped.
func For(ctx context.Context, workers, n, grain int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	workers = Workers(workers)
	grain = max(grain, 1)

	numBlocks := min((n+grain-1)/grain, workers*blocksPerWorker)
	if numBlocks <= 1 || workers == 1 {
		return fn(0, n)
	}
	blockSize := (n + numBlocks - 1) / numBlocks

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += blockSize {
		hi := min(lo+blockSize, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(lo, hi)
		})
	}
	return g.Wait()
}

// Each calls fn for every index in [0, n), grouping indices into blocks of
// at least grain as For does.
func Each(ctx context.Context, workers, n, grain int, fn func(i int) error) error {
	return For(ctx, workers, n, grain, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
}

// Blocks splits [0, n) into exactly numBlocks near-equal blocks and runs fn
// on each with its block index. Used where a stage needs per-block results
// (pack counts, chunk lengths) indexed by block.
func Blocks(ctx context.Context, workers, n, numBlocks int, fn func(block, lo, hi int) error) error {
	if n <= 0 || numBlocks <= 0 {
		return nil
	}
	numBlocks = min(numBlocks, n)
	return Each(ctx, workers, numBlocks, 1, func(b int) error {
		lo := b * n / numBlocks
		hi := (b + 1) * n / numBlocks
		return fn(b, lo, hi)
	})
}
