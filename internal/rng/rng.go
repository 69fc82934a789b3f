// Package rng provides splittable random streams: a root seed is split into
// named lanes (one per stage) and each lane yields an independent PCG stream
// per task index, so parallel tasks never share mutable generator state.
package rng

import (
	"math/rand/v2"

	intbits "github.com/tamirms/semisort/internal/bits"
)

// golden is the SplitMix64 increment (2^64 / phi).
const golden = 0x9e3779b97f4a7c15

// Source is an immutable root from which streams are derived.
type Source struct {
	seed uint64
}

// NewSource returns a Source rooted at seed.
func NewSource(seed uint64) Source {
	return Source{seed: seed}
}

// RandomSeed returns a seed from the runtime's randomly seeded generator.
func RandomSeed() uint64 {
	return rand.Uint64()
}

// Split derives a child source for lane. Distinct lanes give unrelated
// sources.
func (s Source) Split(lane uint64) Source {
	return Source{seed: intbits.Mix64(s.seed ^ intbits.Mix64(lane*golden+golden))}
}

// Stream returns the stream for task index i of this source.
func (s Source) Stream(i uint64) Stream {
	var st Stream
	hi := intbits.Mix64(s.seed + (i+1)*golden)
	lo := intbits.Mix64(hi ^ s.seed ^ golden)
	st.pcg.Seed(hi, lo)
	return st
}

// Stream is a per-task generator. It is not safe for concurrent use; each
// task owns its own Stream value.
type Stream struct {
	pcg rand.PCG
}

// Uint64 returns the next 64 random bits.
func (s *Stream) Uint64() uint64 {
	return s.pcg.Uint64()
}

// Below returns a uniform value in [0, n). n == 0 returns 0.
func (s *Stream) Below(n uint32) uint32 {
	return intbits.FastRange32(s.pcg.Uint64(), n)
}

// BelowInt returns a uniform value in [0, n) for n > 0.
func (s *Stream) BelowInt(n int) int {
	return int(intbits.FastRange64(s.pcg.Uint64(), uint64(n)))
}
