package semisort

// Record is one element of the sequence being grouped.
//
// HashedKey is the key's image in the hashed key space [1, k]; zero is the
// empty-slot sentinel and never a valid hashed key.
type Record[V, K any] struct {
	HashedKey uint64
	Value     V
	Key       K
}

// IsEmpty reports whether r is an empty slot.
func (r *Record[V, K]) IsEmpty() bool {
	return r.HashedKey == 0
}

func hashedKeyOf[V, K any](r Record[V, K]) uint64 {
	return r.HashedKey
}
