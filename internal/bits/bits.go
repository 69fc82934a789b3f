// Package bits provides low-level bit manipulation primitives.
package bits

import (
	"math"
	"math/bits"
)

// FastRange32 maps a 64-bit hash uniformly to [0, n) returning uint32.
// Uses the "fastrange" technique: multiply and take high bits.
// This is the standard way to map hashes to ranges without modulo bias.
func FastRange32(hash uint64, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(hash, uint64(n))
	return uint32(hi)
}

// FastRange64 is FastRange32 for 64-bit ranges.
func FastRange64(hash uint64, n uint64) uint64 {
	hi, _ := bits.Mul64(hash, n)
	return hi
}

// NextPowerOfTwo returns the smallest power of two >= x as a float64.
// Values <= 1 (and NaN) return 1.
func NextPowerOfTwo(x float64) float64 {
	if !(x > 1) {
		return 1
	}
	return math.Exp2(math.Ceil(math.Log2(x)))
}

// CeilPow2 returns the smallest power of two >= n. CeilPow2(0) == 1.
func CeilPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len64(n-1)
}

// Len64 returns the number of bits needed to represent x.
func Len64(x uint64) int {
	return bits.Len64(x)
}

// Mix64 is the SplitMix64 finalizer (Stafford variant, from splitmix64.c by
// Sebastiano Vigna). It is a bijection on uint64.
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
