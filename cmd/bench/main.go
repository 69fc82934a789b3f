// Bench measures semisort throughput and memory over synthetic key
// distributions.
//
// Usage:
//
//	go run ./cmd/bench --dist uniform,zipfian --sizes 1000000,10000000 --reps 3
//
// Every flag can also be set in a config file (--config bench.toml) or
// through the environment as SEMISORT_<FLAG>, e.g. SEMISORT_ZIPF_S=1.2.
package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tamirms/semisort"
	serrors "github.com/tamirms/semisort/errors"
	"github.com/tamirms/semisort/gen"
)

type benchConfig struct {
	Dists      []string
	Sizes      []int
	Reps       int
	Workers    int
	Seed       uint64
	Scratch    bool
	Mapped     bool
	UniformMax uint64
	ExpLambda  float64
	ZipfS      float64
	ZipfRange  uint64
	CPUProfile string
	Verbose    bool
}

var cfgFile string

var RootCmd = &cobra.Command{
	Use:          "bench",
	Short:        "benchmark semisort over synthetic distributions",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBench(cmd.Context(), loadBenchConfig())
	},
}

func init() {
	cobra.OnInitialize(loadConfig)

	f := RootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (toml, yaml or json)")
	f.StringSlice("dist", []string{"uniform", "exponential", "zipfian"}, "distributions to run")
	f.IntSlice("sizes", []int{1_000_000, 10_000_000}, "input lengths")
	f.Int("reps", 3, "repetitions per distribution and size")
	f.Int("workers", 0, "parallel workers, 0 for GOMAXPROCS")
	f.Uint64("seed", 0, "root seed for inputs and grouping, 0 for random grouping seeds")
	f.Bool("scratch", false, "reuse preallocated scratch (hash, then SemisortInto)")
	f.Bool("mapped", false, "place the integer scratch in an anonymous mapping (implies --scratch)")
	f.Uint64("uniform-max", 0, "largest uniform key, 0 for n")
	f.Float64("exp-lambda", 0, "exponential rate, 0 for n/1000")
	f.Float64("zipf-s", 1, "zipf exponent")
	f.Uint64("zipf-range", 0, "zipf key range, 0 for min(n, 2^20)")
	f.String("cpuprofile", "", "write cpu profile to file")
	f.BoolP("verbose", "v", false, "debug logging, including per-stage events")

	_ = viper.BindPFlags(f)
	viper.SetEnvPrefix("SEMISORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "viper load config file %s failed: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func loadBenchConfig() *benchConfig {
	return &benchConfig{
		Dists:      viper.GetStringSlice("dist"),
		Sizes:      viper.GetIntSlice("sizes"),
		Reps:       viper.GetInt("reps"),
		Workers:    viper.GetInt("workers"),
		Seed:       viper.GetUint64("seed"),
		Scratch:    viper.GetBool("scratch") || viper.GetBool("mapped"),
		Mapped:     viper.GetBool("mapped"),
		UniformMax: viper.GetUint64("uniform-max"),
		ExpLambda:  viper.GetFloat64("exp-lambda"),
		ZipfS:      viper.GetFloat64("zipf-s"),
		ZipfRange:  viper.GetUint64("zipf-range"),
		CPUProfile: viper.GetString("cpuprofile"),
		Verbose:    viper.GetBool("verbose"),
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// murmurUint64 hashes integer keys with MurmurHash3 over their
// little-endian bytes.
func murmurUint64(seed uint32) semisort.Hasher[uint64] {
	return func(k uint64) uint64 {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], k)
		return murmur3.Sum64WithSeed(b[:], seed)
	}
}

func generate(cfg *benchConfig, dist string, n int, seed uint64) ([]gen.Record, error) {
	switch dist {
	case "uniform":
		maxKey := cfg.UniformMax
		if maxKey == 0 {
			maxKey = uint64(n)
		}
		return gen.Uniform(n, maxKey, seed), nil
	case "exponential":
		lambda := cfg.ExpLambda
		if lambda == 0 {
			lambda = max(float64(n)/1000, 1)
		}
		return gen.Exponential(n, lambda, seed)
	case "zipfian":
		imax := cfg.ZipfRange
		if imax == 0 {
			imax = min(uint64(n), 1<<20)
		}
		return gen.Zipfian(n, cfg.ZipfS, imax, seed)
	default:
		return nil, fmt.Errorf("unknown distribution %q (use uniform, exponential or zipfian)", dist)
	}
}

type result struct {
	elapsed   time.Duration
	peakHeap  uint64
	stats     semisort.Stats
	skipped   bool
	verifyErr error
}

func runBench(ctx context.Context, cfg *benchConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Printf("%-12s %12s %4s %10s %10s %8s %8s %10s %8s\n",
		"dist", "n", "rep", "time", "M rec/s", "span/n", "heavy", "peak MB", "ok")
	for _, dist := range cfg.Dists {
		for _, n := range cfg.Sizes {
			if err := runSize(ctx, cfg, logger, dist, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func runSize(ctx context.Context, cfg *benchConfig, logger *zap.Logger, dist string, n int) error {
	opts := []semisort.Option{
		semisort.WithWorkers(cfg.Workers),
		semisort.WithLogger(logger.Named("semisort")),
	}
	if cfg.Seed != 0 {
		opts = append(opts, semisort.WithSeed(cfg.Seed))
	}

	var scratch *semisort.Scratch[uint64, uint64]
	if cfg.Scratch {
		sopts := opts
		if cfg.Mapped {
			sopts = append(sopts[:len(sopts):len(sopts)], semisort.WithMappedScratch())
		}
		var err error
		scratch, err = semisort.NewScratch[uint64, uint64](n, sopts...)
		if errors.Is(err, serrors.ErrInvalidInputSize) {
			logger.Warn("input too small to sample, skipping", zap.String("dist", dist), zap.Int("n", n))
			return nil
		}
		if err != nil {
			return fmt.Errorf("allocate scratch for n=%d: %w", n, err)
		}
		defer func() {
			if err := scratch.Close(); err != nil {
				logger.Error("close scratch", zap.Error(err))
			}
		}()
	}

	hash := murmurUint64(uint32(cfg.Seed))
	for rep := range cfg.Reps {
		recs, err := generate(cfg, dist, n, cfg.Seed+uint64(rep))
		if err != nil {
			return err
		}
		res, err := runOnce(ctx, recs, hash, scratch, opts)
		if err != nil {
			return fmt.Errorf("%s n=%d rep=%d: %w", dist, n, rep, err)
		}
		if res.skipped {
			logger.Warn("input too small to sample, skipping", zap.String("dist", dist), zap.Int("n", n))
			return nil
		}
		report(dist, n, rep, res)
		if res.verifyErr != nil {
			logger.Error("grouping check failed",
				zap.String("dist", dist), zap.Int("n", n), zap.Int("rep", rep), zap.Error(res.verifyErr))
		}
		logger.Debug("stage times",
			zap.Duration("hash", res.stats.HashTime),
			zap.Duration("sample", res.stats.SampleTime),
			zap.Duration("plan", res.stats.PlanTime),
			zap.Duration("scatter", res.stats.ScatterTime),
			zap.Duration("compact", res.stats.CompactTime),
			zap.Duration("repack", res.stats.RepackTime))
	}
	return nil
}

func runOnce(ctx context.Context, recs []gen.Record, hash semisort.Hasher[uint64],
	scratch *semisort.Scratch[uint64, uint64], opts []semisort.Option) (result, error) {
	var res result
	opts = append(opts[:len(opts):len(opts)], semisort.WithStats(&res.stats))

	meter := startPeakMeter()
	start := time.Now()
	var err error
	if scratch != nil {
		err = semisort.HashKeys(ctx, recs, hash, opts...)
		if err == nil {
			err = semisort.SemisortInto(ctx, recs, scratch, opts...)
		}
	} else {
		err = semisort.Semisort(ctx, recs, hash, opts...)
	}
	res.elapsed = time.Since(start)
	res.peakHeap = meter.stop()

	if errors.Is(err, serrors.ErrInvalidInputSize) {
		res.skipped = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.verifyErr = verify(recs)
	return res, nil
}

// verify checks the grouping and that every original index survived
// exactly once.
func verify(recs []gen.Record) error {
	if err := semisort.CheckGroupedHashed(recs); err != nil {
		return err
	}
	seen := make([]bool, len(recs))
	for _, r := range recs {
		if r.Value >= uint64(len(recs)) || seen[r.Value] {
			return fmt.Errorf("record %d lost or duplicated", r.Value)
		}
		seen[r.Value] = true
	}
	return nil
}

func report(dist string, n, rep int, res result) {
	ok := "yes"
	if res.verifyErr != nil {
		ok = "NO"
	}
	var heavyShare float64
	if res.stats.Span > 0 {
		heavyShare = float64(res.stats.HeavySpan()) / float64(res.stats.Span)
	}
	fmt.Printf("%-12s %12d %4d %10s %10.2f %8.2f %8.3f %10.1f %8s\n",
		dist, n, rep,
		res.elapsed.Round(time.Microsecond),
		float64(n)/res.elapsed.Seconds()/1_000_000,
		float64(res.stats.Span)/float64(n),
		heavyShare,
		float64(res.peakHeap)/1_000_000,
		ok)
}

func main() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
