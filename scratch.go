package semisort

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	serrors "github.com/tamirms/semisort/errors"
)

// Scratch holds the buffers one grouping call borrows, so repeated calls
// over inputs of similar length need not allocate them again. Contents are
// overwritten by every call and never read across calls.
//
// A Scratch is not safe for concurrent use.
type Scratch[V, K any] struct {
	// ints holds sampled indices, run-end markers and their packed form.
	ints []uint64
	// records holds the sample and the radix sort buffer.
	records []Record[V, K]
	// landing holds every bucket plus n guard slots, claimed holds their
	// claim flags.
	landing []Record[V, K]
	claimed []atomic.Uint32

	mapped mmap.MMap
	closed bool
}

// NewScratch allocates scratch for inputs of length n. The landing array
// holds the larger of CapacityMargin * n records and the worst-case bucket
// span for n plus n guard slots, so any input of length n fits.
func NewScratch[V, K any](n int, opts ...Option) (*Scratch[V, K], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	g, err := newGeometry(n, cfg)
	if err != nil {
		return nil, err
	}
	margin := math.Ceil(cfg.capacityMargin * float64(n))
	if margin > math.MaxUint32 {
		return nil, fmt.Errorf("landing array of %.0f records: %w", margin, serrors.ErrInvalidConfig)
	}
	landing := max(uint64(margin), g.maxSpan(cfg.bucketSizeConstant)+uint64(n))

	s := &Scratch[V, K]{
		records: make([]Record[V, K], g.sampleCapacity()),
		landing: make([]Record[V, K], int(landing)),
		claimed: make([]atomic.Uint32, int(landing)),
	}
	if cfg.mappedScratch {
		if err := s.mapInts(2 * n); err != nil {
			return nil, err
		}
	} else {
		s.ints = make([]uint64, 2*n)
	}
	return s, nil
}

func (s *Scratch[V, K]) mapInts(n int) error {
	m, err := mmap.MapRegion(nil, n*8, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return fmt.Errorf("map integer scratch: %w", err)
	}
	prefaultRegion(m)
	s.mapped = m
	s.ints = unsafe.Slice((*uint64)(unsafe.Pointer(&m[0])), n)
	return nil
}

// Sizes returns the lengths of the integer, record and landing buffers.
func (s *Scratch[V, K]) Sizes() (ints, records, landing int) {
	return len(s.ints), len(s.records), len(s.landing)
}

// Close releases a mapped integer scratch. It is safe to call more than
// once; a closed Scratch cannot be used again.
func (s *Scratch[V, K]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.ints, s.records, s.landing, s.claimed = nil, nil, nil, nil
	if s.mapped != nil {
		m := s.mapped
		s.mapped = nil
		if err := m.Unmap(); err != nil {
			return fmt.Errorf("unmap integer scratch: %w", err)
		}
	}
	return nil
}

// check verifies the buffers that are sized before planning.
func (s *Scratch[V, K]) check(g *geometry) error {
	if s.closed {
		return serrors.ErrScratchClosed
	}
	if len(s.ints) < 2*g.n {
		return fmt.Errorf("integer scratch %d < %d: %w", len(s.ints), 2*g.n, serrors.ErrScratchTooSmall)
	}
	if len(s.records) < g.sampleCapacity() {
		return fmt.Errorf("record scratch %d < %d: %w", len(s.records), g.sampleCapacity(), serrors.ErrScratchTooSmall)
	}
	return nil
}
