package semisort

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"

	"github.com/cespare/xxhash/v2"
)

// Fixed seeds mixed with the test name, so each test gets its own
// deterministic stream.
const (
	testSeed1 = 0x243f6a8885a308d3
	testSeed2 = 0x13198a2e03707344
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

type testRecord = Record[uint64, uint64]

// randomRecords returns n records with keys drawn uniformly from
// [0, distinct) and Value set to the record's original index.
func randomRecords(rng *rand.Rand, n int, distinct uint64) []testRecord {
	recs := make([]testRecord, n)
	for i := range recs {
		recs[i] = testRecord{Value: uint64(i), Key: rng.Uint64N(distinct)}
	}
	return recs
}

// fingerprint is an order-independent digest of the (Value, Key) pairs of
// recs: the sum and xor of their xxhash digests.
func fingerprint(recs []testRecord) (sum, xor uint64) {
	var buf [16]byte
	for _, r := range recs {
		binary.LittleEndian.PutUint64(buf[:8], r.Value)
		binary.LittleEndian.PutUint64(buf[8:], r.Key)
		h := xxhash.Sum64(buf[:])
		sum += h
		xor ^= h
	}
	return sum, xor
}

// requirePermutation fails unless got holds exactly the records of want,
// matched by their Value (original index).
func requirePermutation(t *testing.T, want, got []testRecord) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("length changed: %d -> %d", len(want), len(got))
	}
	seen := make([]bool, len(want))
	for i, r := range got {
		if r.Value >= uint64(len(want)) {
			t.Fatalf("output %d carries unknown payload %d", i, r.Value)
		}
		if seen[r.Value] {
			t.Fatalf("payload %d appears twice", r.Value)
		}
		seen[r.Value] = true
		if orig := want[r.Value]; orig.Key != r.Key {
			t.Fatalf("payload %d: key %d, want %d", r.Value, r.Key, orig.Key)
		}
	}
	ws, wx := fingerprint(want)
	gs, gx := fingerprint(got)
	if ws != gs || wx != gx {
		t.Fatalf("multiset fingerprint changed")
	}
}

// hashOf returns the hashed key a record with key k would receive.
func hashOf(k uint64, n int) uint64 {
	return HashUint64(k)%hashRange(n, DefaultHashRangeK) + 1
}
