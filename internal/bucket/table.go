// Package bucket implements the bucket descriptor and the concurrent,
// phase-separated descriptor table used during scatter.
//
// The table has two phases. In the write phase every descriptor is inserted
// exactly once, possibly from many goroutines at the same time; a slot is
// claimed by compare-and-swap on its id word and only then is its packed
// meta word stored. In the read phase (after the inserting goroutines have
// been joined) the table is immutable and lookups need no synchronization
// beyond plain atomic loads.
package bucket

import (
	"fmt"
	"sync/atomic"

	serrors "github.com/tamirms/semisort/errors"
	intbits "github.com/tamirms/semisort/internal/bits"
	"github.com/tamirms/semisort/internal/encoding"
)

// LightTag marks descriptor ids of light super-buckets. Hashed keys are
// clamped below 2^62, so tagged ids never collide with heavy keys.
const LightTag = uint64(1) << 63

// Descriptor locates one bucket inside the landing array.
type Descriptor struct {
	ID       uint64
	Offset   uint32
	Capacity uint32
	Heavy    bool
}

// Empty reports whether d is the empty-descriptor sentinel {0,0,0,false}.
func (d Descriptor) Empty() bool {
	return d == Descriptor{}
}

// End returns the exclusive end of the bucket's slot range.
func (d Descriptor) End() uint64 {
	return uint64(d.Offset) + uint64(d.Capacity)
}

// LightID returns the descriptor id of light super-bucket rangeIndex.
func LightID(rangeIndex uint64) uint64 {
	return LightTag | rangeIndex
}

type slot struct {
	id   atomic.Uint64
	meta atomic.Uint64
}

// Table is a fixed-capacity open-addressed map from bucket id to Descriptor.
type Table struct {
	slots []slot
	mask  uint64
}

// NewTable creates a table with at least minSlots slots (rounded up to a
// power of two, minimum 2).
func NewTable(minSlots int) *Table {
	n := intbits.CeilPow2(uint64(max(minSlots, 2)))
	return &Table{
		slots: make([]slot, n),
		mask:  n - 1,
	}
}

// Cap returns the number of slots.
func (t *Table) Cap() int {
	return len(t.slots)
}

func (t *Table) home(id uint64) uint64 {
	return intbits.Mix64(id) & t.mask
}

// Insert publishes d. Safe to call concurrently with other Inserts as long
// as no two callers insert the same id.
func (t *Table) Insert(d Descriptor) error {
	if d.ID == 0 {
		return serrors.ErrInvalidBucketID
	}
	if d.Capacity > encoding.MaxCapacity {
		return fmt.Errorf("bucket %d capacity %d: %w", d.ID, d.Capacity, serrors.ErrCapacityTooLarge)
	}
	meta := encoding.PackDescriptor(d.Offset, d.Capacity, d.Heavy)

	i := t.home(d.ID)
	for range len(t.slots) {
		s := &t.slots[i]
		cur := s.id.Load()
		if cur == 0 {
			if s.id.CompareAndSwap(0, d.ID) {
				s.meta.Store(meta)
				return nil
			}
			cur = s.id.Load()
		}
		if cur == d.ID {
			return fmt.Errorf("bucket %d: %w", d.ID, serrors.ErrDuplicateBucket)
		}
		i = (i + 1) & t.mask
	}
	return serrors.ErrTableFull
}

// Find returns the descriptor for id, or the empty descriptor if absent.
// Only valid in the read phase.
func (t *Table) Find(id uint64) Descriptor {
	if id == 0 {
		return Descriptor{}
	}
	i := t.home(id)
	for range len(t.slots) {
		s := &t.slots[i]
		cur := s.id.Load()
		if cur == 0 {
			return Descriptor{}
		}
		if cur == id {
			off, capacity, heavy := encoding.UnpackDescriptor(s.meta.Load())
			return Descriptor{ID: id, Offset: off, Capacity: capacity, Heavy: heavy}
		}
		i = (i + 1) & t.mask
	}
	return Descriptor{}
}

// Entries returns all present descriptors in slot order.
func (t *Table) Entries() []Descriptor {
	var out []Descriptor
	for i := range t.slots {
		id := t.slots[i].id.Load()
		if id == 0 {
			continue
		}
		off, capacity, heavy := encoding.UnpackDescriptor(t.slots[i].meta.Load())
		out = append(out, Descriptor{ID: id, Offset: off, Capacity: capacity, Heavy: heavy})
	}
	return out
}
