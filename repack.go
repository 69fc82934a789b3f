package semisort

import (
	"context"
	"fmt"

	serrors "github.com/tamirms/semisort/errors"
	"github.com/tamirms/semisort/internal/parallel"
)

// repack copies the occupied slots of landing[:region] back into records,
// preserving their order. The region is cut into at most maxChunks
// fixed-length chunks; each chunk is compacted in place, a prefix sum over
// the chunk counts gives every chunk its output offset, and the chunks are
// then copied out in parallel.
func repack[V, K any](ctx context.Context, cfg *config, records, landing []Record[V, K], region int) error {
	if region == 0 {
		return nil
	}
	numChunks := min(cfg.maxRepackChunks, region)
	chunkLen := (region + numChunks - 1) / numChunks
	numChunks = (region + chunkLen - 1) / chunkLen

	lengths := make([]int, numChunks)
	err := parallel.Each(ctx, cfg.workers, numChunks, 1, func(c int) error {
		chunk := landing[c*chunkLen : min((c+1)*chunkLen, region)]
		j := 0
		for k := range chunk {
			if chunk[k].HashedKey != 0 {
				chunk[j] = chunk[k]
				j++
			}
		}
		clear(chunk[j:])
		lengths[c] = j
		return nil
	})
	if err != nil {
		return err
	}

	starts := make([]int, numChunks)
	total := 0
	for c, l := range lengths {
		starts[c] = total
		total += l
	}
	if total != len(records) {
		return fmt.Errorf("repacked %d records, input has %d: %w", total, len(records), serrors.ErrRecordCountMismatch)
	}

	return parallel.Each(ctx, cfg.workers, numChunks, 1, func(c int) error {
		copy(records[starts[c]:starts[c]+lengths[c]], landing[c*chunkLen:c*chunkLen+lengths[c]])
		return nil
	})
}
