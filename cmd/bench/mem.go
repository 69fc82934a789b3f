package main

import (
	"runtime"
	"runtime/metrics"
	"sync/atomic"
	"syscall"
	"time"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// peakMeter samples live heap bytes every 10ms. It reads runtime/metrics
// rather than ReadMemStats to avoid stop-the-world pauses during the run.
type peakMeter struct {
	baseline uint64
	peak     atomic.Uint64
	done     chan struct{}
	stopped  chan struct{}
}

func startPeakMeter() *peakMeter {
	runtime.GC()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := &peakMeter{
		baseline: ms.Alloc,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	m.peak.Store(ms.Alloc)
	go m.loop()
	return m
}

func (m *peakMeter) loop() {
	defer close(m.stopped)
	samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			metrics.Read(samples)
			m.observe(samples[0].Value.Uint64())
		}
	}
}

func (m *peakMeter) observe(v uint64) {
	for {
		old := m.peak.Load()
		if v <= old || m.peak.CompareAndSwap(old, v) {
			return
		}
	}
}

// stop ends sampling and returns the peak heap growth over the baseline.
func (m *peakMeter) stop() uint64 {
	close(m.done)
	<-m.stopped
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.observe(ms.Alloc)
	if p := m.peak.Load(); p > m.baseline {
		return p - m.baseline
	}
	return 0
}
