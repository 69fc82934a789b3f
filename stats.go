package semisort

import "time"

// Stats describes one grouping run. It is filled when the call is given
// WithStats.
type Stats struct {
	N                 int
	HashRange         uint64
	SampleProbability float64
	NumSamples        int
	Gamma             uint64
	DistinctSampled   int
	LightBuckets      int
	BucketRange       uint64
	// Span is the total capacity of all buckets; the landing region is
	// Span + N records.
	Span uint64
	// Heavy lists the heavy buckets in the order they were laid out.
	Heavy []HeavyBucket

	HashTime    time.Duration
	SampleTime  time.Duration
	PlanTime    time.Duration
	ScatterTime time.Duration
	CompactTime time.Duration
	RepackTime  time.Duration
}

// HeavyBucket describes the bucket of one heavy key.
type HeavyBucket struct {
	HashedKey uint64
	Sampled   uint64
	Capacity  uint32
}

// HeavySpan returns the capacity reserved for heavy buckets.
func (s *Stats) HeavySpan() uint64 {
	var total uint64
	for _, h := range s.Heavy {
		total += uint64(h.Capacity)
	}
	return total
}

// Total returns the summed stage durations.
func (s *Stats) Total() time.Duration {
	return s.HashTime + s.SampleTime + s.PlanTime + s.ScatterTime + s.CompactTime + s.RepackTime
}

func (s *Stats) recordPlan(g *geometry, plan *bucketPlan) {
	s.N = g.n
	s.HashRange = g.hashRange
	s.SampleProbability = g.p
	s.NumSamples = g.numSamples
	s.Gamma = g.gamma
	s.BucketRange = g.bucketRange
	s.DistinctSampled = plan.distinct
	s.LightBuckets = len(plan.light)
	s.Span = plan.span
	s.Heavy = make([]HeavyBucket, len(plan.heavy))
	for i, d := range plan.heavy {
		s.Heavy[i] = HeavyBucket{HashedKey: d.ID, Sampled: plan.heavySampled[i], Capacity: d.Capacity}
	}
}
