// Package encoding packs bucket descriptor fields into a single 64-bit word
// so a descriptor can be published and read with one atomic operation.
//
// Word layout (least significant bit first):
//
//	bits  0-31  offset
//	bits 32-62  capacity (31 bits)
//	bit  63     heavy flag
//
// The zero word decodes to the empty descriptor fields {0, 0, false}.
package encoding

const (
	capacityShift = 32
	heavyShift    = 63

	// MaxCapacity is the largest capacity representable in the 31-bit field.
	MaxCapacity = 1<<31 - 1

	capacityMask = uint64(MaxCapacity) << capacityShift
)

// PackDescriptor packs offset, capacity and the heavy flag into one word.
// capacity is truncated to 31 bits; callers must check MaxCapacity first.
func PackDescriptor(offset, capacity uint32, heavy bool) uint64 {
	w := uint64(offset) | (uint64(capacity)<<capacityShift)&capacityMask
	if heavy {
		w |= 1 << heavyShift
	}
	return w
}

// UnpackDescriptor is the inverse of PackDescriptor.
func UnpackDescriptor(w uint64) (offset, capacity uint32, heavy bool) {
	offset = uint32(w)
	capacity = uint32((w & capacityMask) >> capacityShift)
	heavy = w>>heavyShift != 0
	return offset, capacity, heavy
}
