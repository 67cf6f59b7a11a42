// Package stats keeps rolling-window latency figures for document
// processing so operators can read them without a metrics backend.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at time.Time
	ms int64
}

// Snapshot aggregates the samples currently inside the window.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Window records durations and forgets them after maxAge.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Observe records one duration. Negative durations count as zero.
func (w *Window) Observe(d time.Duration) {
	ms := max(d.Milliseconds(), 0)
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, ms: ms})
}

func (w *Window) Snapshot() Snapshot {
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	if len(w.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, len(w.samples))
	var sum int64
	for i, s := range w.samples {
		values[i] = s.ms
		sum += s.ms
	}
	slices.Sort(values)

	return Snapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
