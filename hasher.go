package semisort

import (
	"context"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	intbits "github.com/tamirms/semisort/internal/bits"
	"github.com/tamirms/semisort/internal/parallel"
)

// hashGrain is the minimum number of records hashed per parallel task.
const hashGrain = 4096

// Hasher maps a key to 64 bits. Distinct keys should map to distinct values
// with high probability; equal keys must map to equal values.
type Hasher[K any] func(K) uint64

// HashString hashes strings with xxHash3.
func HashString(s string) uint64 {
	return xxh3.HashString(s)
}

// HashBytes hashes byte slices with xxHash64.
func HashBytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// HashUint64 hashes integers with the SplitMix64 finalizer.
func HashUint64(v uint64) uint64 {
	return intbits.Mix64(v)
}

// MurmurString returns a seeded MurmurHash3 hasher for strings.
func MurmurString(seed uint32) Hasher[string] {
	return func(s string) uint64 {
		return murmur3.Sum64WithSeed([]byte(s), seed)
	}
}

// ComparableHasher returns a hasher for any comparable key type using
// hash/maphash with a fresh random seed. Equal keys hash equally only
// within one hasher value.
func ComparableHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// HashKeys sets HashedKey = hash(Key) mod k + 1 for every record in
// parallel, where k is the hash range for len(records) under opts.
func HashKeys[V, K any](ctx context.Context, records []Record[V, K], hash Hasher[K], opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	return hashKeys(ctx, cfg, records, hash)
}

func hashKeys[V, K any](ctx context.Context, cfg *config, records []Record[V, K], hash Hasher[K]) error {
	k := hashRange(len(records), cfg.hashRangeK)
	return parallel.For(ctx, cfg.workers, len(records), hashGrain, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			records[i].HashedKey = hash(records[i].Key)%k + 1
		}
		return nil
	})
}
