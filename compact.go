package semisort

import (
	"cmp"
	"context"
	"slices"

	"github.com/tamirms/semisort/internal/bucket"
	"github.com/tamirms/semisort/internal/parallel"
)

// compactLightBuckets brings records with equal hashed keys together inside
// every light super-bucket: occupants move to the front of the bucket,
// sorted by hashed key, and the tail is reset to empty slots. Heavy buckets
// hold a single hashed key and are left as they are.
func compactLightBuckets[V, K any](ctx context.Context, cfg *config, light []bucket.Descriptor, landing []Record[V, K]) error {
	return parallel.Each(ctx, cfg.workers, len(light), 8, func(i int) error {
		d := light[i]
		seg := landing[d.Offset:d.End()]

		j := 0
		for k := range seg {
			if seg[k].HashedKey != 0 {
				seg[j] = seg[k]
				j++
			}
		}
		clear(seg[j:])

		slices.SortFunc(seg[:j], func(a, b Record[V, K]) int {
			return cmp.Compare(a.HashedKey, b.HashedKey)
		})
		return nil
	})
}
