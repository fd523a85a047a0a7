// Package metrics tracks operation latencies and classification counters.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps the last windowSize latencies in a ring buffer
// and computes percentiles over them on demand.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []int64 // microseconds
	next    int
	full    bool
	count   int64
}

// NewLatencyTracker creates a tracker with the given window (default 1000).
func NewLatencyTracker(windowSize int) *LatencyTracker {
	if windowSize <= 0 {
		windowSize = 1000
	}
	return &LatencyTracker{samples: make([]int64, windowSize)}
}

// Record records a latency measurement.
func (lt *LatencyTracker) Record(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.samples[lt.next] = d.Microseconds()
	lt.next++
	if lt.next == len(lt.samples) {
		lt.next = 0
		lt.full = true
	}
	lt.count++
}

// Stats returns latency statistics over the current window.
func (lt *LatencyTracker) Stats() LatencyStats {
	lt.mu.Lock()
	n := lt.next
	if lt.full {
		n = len(lt.samples)
	}
	window := make([]int64, n)
	copy(window, lt.samples[:n])
	total := lt.count
	lt.mu.Unlock()

	if n == 0 {
		return LatencyStats{}
	}
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })

	var sum int64
	for _, v := range window {
		sum += v
	}
	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }

	return LatencyStats{
		Count:   total,
		Min:     us(window[0]),
		Max:     us(window[n-1]),
		Avg:     us(sum / int64(n)),
		P50:     us(percentile(window, 0.50)),
		P90:     us(percentile(window, 0.90)),
		P95:     us(percentile(window, 0.95)),
		P99:     us(percentile(window, 0.99)),
		Samples: n,
	}
}

func percentile(sorted []int64, p float64) int64 {
	return sorted[int(float64(len(sorted)-1)*p)]
}

// Reset clears all samples.
func (lt *LatencyTracker) Reset() {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.next = 0
	lt.full = false
	lt.count = 0
}

// LatencyStats holds latency statistics.
type LatencyStats struct {
	Count   int64         `json:"count"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	Avg     time.Duration `json:"avg"`
	P50     time.Duration `json:"p50"`
	P90     time.Duration `json:"p90"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
	Samples int           `json:"samples"`
}

// ToMap renders the stats in milliseconds.
func (s LatencyStats) ToMap() map[string]any {
	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	return map[string]any{
		"count":       s.Count,
		"min_ms":      ms(s.Min),
		"max_ms":      ms(s.Max),
		"avg_ms":      ms(s.Avg),
		"p50_ms":      ms(s.P50),
		"p90_ms":      ms(s.P90),
		"p95_ms":      ms(s.P95),
		"p99_ms":      ms(s.P99),
		"sample_size": s.Samples,
	}
}

// LatencyRegistry holds one tracker per operation name.
type LatencyRegistry struct {
	mu       sync.RWMutex
	trackers map[string]*LatencyTracker
	window   int
}

// NewLatencyRegistry creates a new latency registry.
func NewLatencyRegistry(windowSize int) *LatencyRegistry {
	return &LatencyRegistry{
		trackers: make(map[string]*LatencyTracker),
		window:   windowSize,
	}
}

// Record records a latency for the given operation.
func (r *LatencyRegistry) Record(op string, d time.Duration) {
	r.mu.RLock()
	tracker, ok := r.trackers[op]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		if tracker, ok = r.trackers[op]; !ok {
			tracker = NewLatencyTracker(r.window)
			r.trackers[op] = tracker
		}
		r.mu.Unlock()
	}

	tracker.Record(d)
}

// Since records the time elapsed from start.
func (r *LatencyRegistry) Since(op string, start time.Time) {
	r.Record(op, time.Since(start))
}

// Stats returns statistics for one operation.
func (r *LatencyRegistry) Stats(op string) LatencyStats {
	r.mu.RLock()
	tracker, ok := r.trackers[op]
	r.mu.RUnlock()

	if !ok {
		return LatencyStats{}
	}
	return tracker.Stats()
}

// AllStats returns statistics for every operation.
func (r *LatencyRegistry) AllStats() map[string]LatencyStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]LatencyStats, len(r.trackers))
	for name, tracker := range r.trackers {
		result[name] = tracker.Stats()
	}
	return result
}
