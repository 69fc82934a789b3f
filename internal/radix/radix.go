// Package radix implements an LSD integer radix sort over records with an
// integer key extractor. It is used to sort the sample by hashed key.
package radix

import (
	"cmp"
	"slices"
)

const (
	digitBits = 8
	numDigits = 1 << digitBits
	digitMask = numDigits - 1

	// minRadixLen is the length below which a comparison sort is faster
	// than building histograms.
	minRadixLen = 64
)

// Sort sorts x in ascending order of key(x[i]), looking only at the low
// keyBits bits of each key. tmp is scratch space and must hold at least
// len(x) elements; its contents are overwritten. The sort is stable.
//
// keyBits <= 0 or > 64 is treated as 64.
func Sort[T any](x, tmp []T, key func(T) uint64, keyBits int) {
	n := len(x)
	if n <= 1 {
		return
	}
	if n < minRadixLen {
		slices.SortStableFunc(x, func(a, b T) int {
			return cmp.Compare(key(a), key(b))
		})
		return
	}
	if len(tmp) < n {
		panic("radix: tmp shorter than input")
	}
	if keyBits <= 0 || keyBits > 64 {
		keyBits = 64
	}

	src, dst := x, tmp[:n]
	for shift := 0; shift < keyBits; shift += digitBits {
		var count [numDigits]int
		for i := range src {
			count[(key(src[i])>>shift)&digitMask]++
		}
		// All keys share this digit: the pass would be the identity.
		if count[(key(src[0])>>shift)&digitMask] == n {
			continue
		}

		offset := 0
		for d := range count {
			c := count[d]
			count[d] = offset
			offset += c
		}
		for i := range src {
			d := (key(src[i]) >> shift) & digitMask
			dst[count[d]] = src[i]
			count[d]++
		}
		src, dst = dst, src
	}
	if &src[0] != &x[0] {
		copy(x, src)
	}
}
