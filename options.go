package semisort

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	serrors "github.com/tamirms/semisort/errors"
)

// Default tunables.
const (
	DefaultHashRangeK                = 2.25
	DefaultSampleProbabilityConstant = 3
	DefaultDeltaThreshold            = 1
	DefaultBucketSizeConstant        = 1.25
	DefaultLightKeyBucketConstant    = 2
	DefaultCapacityMargin            = 16
	DefaultMaxProbeRounds            = 4
	DefaultMaxRepackChunks           = 1000
)

// Option is a functional option for configuring a semisort call.
type Option func(*config)

type config struct {
	hashRangeK                float64
	sampleProbabilityConstant float64
	deltaThreshold            float64
	bucketSizeConstant        float64 // F_C in the sizing bound
	lightKeyBucketConstant    float64
	capacityMargin            float64
	maxProbeRounds            int
	maxRepackChunks           int
	workers                   int
	seed                      uint64
	seedSet                   bool
	mappedScratch             bool
	logger                    *zap.Logger
	stats                     *Stats
}

func defaultConfig() *config {
	return &config{
		hashRangeK:                DefaultHashRangeK,
		sampleProbabilityConstant: DefaultSampleProbabilityConstant,
		deltaThreshold:            DefaultDeltaThreshold,
		bucketSizeConstant:        DefaultBucketSizeConstant,
		lightKeyBucketConstant:    DefaultLightKeyBucketConstant,
		capacityMargin:            DefaultCapacityMargin,
		maxProbeRounds:            DefaultMaxProbeRounds,
		maxRepackChunks:           DefaultMaxRepackChunks,
		workers:                   0, // GOMAXPROCS
		logger:                    zap.NewNop(),
	}
}

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	bad := func(field string, v any) error {
		return fmt.Errorf("%s = %v: %w", field, v, serrors.ErrInvalidConfig)
	}
	switch {
	case !(c.hashRangeK >= 1) || math.IsInf(c.hashRangeK, 0):
		return bad("HashRangeK", c.hashRangeK)
	case !(c.sampleProbabilityConstant > 0) || math.IsInf(c.sampleProbabilityConstant, 0):
		return bad("SampleProbabilityConstant", c.sampleProbabilityConstant)
	case !(c.deltaThreshold >= 0) || math.IsInf(c.deltaThreshold, 0):
		return bad("DeltaThreshold", c.deltaThreshold)
	case !(c.bucketSizeConstant > 0) || math.IsInf(c.bucketSizeConstant, 0):
		return bad("BucketSizeConstant", c.bucketSizeConstant)
	case !(c.lightKeyBucketConstant > 0) || math.IsInf(c.lightKeyBucketConstant, 0):
		return bad("LightKeyBucketConstant", c.lightKeyBucketConstant)
	case !(c.capacityMargin >= 1) || math.IsInf(c.capacityMargin, 0):
		return bad("CapacityMargin", c.capacityMargin)
	case c.maxProbeRounds < 1:
		return bad("MaxProbeRounds", c.maxProbeRounds)
	case c.maxRepackChunks < 1:
		return bad("MaxRepackChunks", c.maxRepackChunks)
	case c.workers < 0:
		return bad("Workers", c.workers)
	case c.logger == nil:
		return bad("Logger", "nil")
	}
	return nil
}

// WithHashRangeK sets the exponent of the hashed key space: keys are hashed
// into [1, n^k]. Must be >= 1.
func WithHashRangeK(k float64) Option {
	return func(c *config) {
		c.hashRangeK = k
	}
}

// WithSampleProbabilityConstant sets C in the sampling probability
// p = min(C / log2 n, 0.25).
func WithSampleProbabilityConstant(v float64) Option {
	return func(c *config) {
		c.sampleProbabilityConstant = v
	}
}

// WithDeltaThreshold sets the heavy-key cutoff sensitivity: a sampled key is
// heavy when its sample count exceeds floor(delta * ln n).
func WithDeltaThreshold(v float64) Option {
	return func(c *config) {
		c.deltaThreshold = v
	}
}

// WithBucketSizeConstant sets the safety constant c of the bucket sizing
// bound.
func WithBucketSizeConstant(v float64) Option {
	return func(c *config) {
		c.bucketSizeConstant = v
	}
}

// WithLightKeyBucketConstant sets the multiplier of the light super-bucket
// count.
func WithLightKeyBucketConstant(v float64) Option {
	return func(c *config) {
		c.lightKeyBucketConstant = v
	}
}

// WithCapacityMargin sets the landing-array size NewScratch reserves, as a
// multiple of the input length. NewScratch never reserves less than the
// worst-case bucket span plus the input length.
func WithCapacityMargin(v float64) Option {
	return func(c *config) {
		c.capacityMargin = v
	}
}

// WithMaxProbeRounds bounds the randomized probing of a slot claim to
// rounds * bucket capacity probes before a final full sweep of the bucket.
func WithMaxProbeRounds(rounds int) Option {
	return func(c *config) {
		c.maxProbeRounds = rounds
	}
}

// WithMaxRepackChunks sets the maximum number of chunks of the repack stage.
func WithMaxRepackChunks(n int) Option {
	return func(c *config) {
		c.maxRepackChunks = n
	}
}

// WithWorkers sets the number of parallel workers. 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithSeed fixes the root seed of all randomized choices. Without it every
// call draws a fresh seed.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithMappedScratch makes NewScratch place the integer scratch in an
// anonymous memory mapping instead of the Go heap. The Scratch must then be
// closed.
func WithMappedScratch() Option {
	return func(c *config) {
		c.mappedScratch = true
	}
}

// WithLogger sets the logger used for stage-level debug events.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithStats asks the call to fill s with the grouping statistics.
func WithStats(s *Stats) Option {
	return func(c *config) {
		c.stats = s
	}
}
