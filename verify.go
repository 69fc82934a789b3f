package semisort

import (
	"fmt"

	"github.com/cockroachdb/swiss"

	serrors "github.com/tamirms/semisort/errors"
)

// CheckGrouped reports whether records with equal keys form one contiguous
// run. It returns an error wrapping ErrNotGrouped naming the first key seen
// in two separate runs.
func CheckGrouped[V any, K comparable](records []Record[V, K]) error {
	return checkRuns(records, func(r *Record[V, K]) K { return r.Key })
}

// CheckGroupedHashed is CheckGrouped over hashed keys. Unlike CheckGrouped
// it also accepts outputs where two colliding keys share one run.
func CheckGroupedHashed[V, K any](records []Record[V, K]) error {
	return checkRuns(records, func(r *Record[V, K]) uint64 { return r.HashedKey })
}

func checkRuns[V, K any, C comparable](records []Record[V, K], key func(*Record[V, K]) C) error {
	if len(records) < 2 {
		return nil
	}
	closed := swiss.New[C, int](len(records) / 4)
	defer closed.Close()

	cur := key(&records[0])
	for i := 1; i < len(records); i++ {
		k := key(&records[i])
		if k == cur {
			continue
		}
		closed.Put(cur, i-1)
		if end, ok := closed.Get(k); ok {
			return fmt.Errorf("key %v at index %d, earlier run ended at %d: %w",
				k, i, end, serrors.ErrNotGrouped)
		}
		cur = k
	}
	return nil
}
