package obs

import (
	"sync/atomic"
	"time"

	"main/internal/adapter/enum"
)

const maxSkipReason = int(enum.SkipReasonNoAction)

// Metrics collects lightweight counters and latency stats for the
// replication engine.
type Metrics struct {
	cycles        uint64
	ordersSeen    uint64
	placed        uint64
	cancelled     uint64
	childFailures uint64
	feedFailures  uint64
	skipCounts    [maxSkipReason + 1]uint64

	cycleLatency LatencyStats
	orderLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Cycles        uint64
	OrdersSeen    uint64
	Placed        uint64
	Cancelled     uint64
	ChildFailures uint64
	FeedFailures  uint64
	SkipCounts    map[enum.SkipReason]uint64
	CycleLatency  LatencySnapshot
	OrderLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveCycle records one completed cycle and its duration.
func (m *Metrics) ObserveCycle(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cycles, 1)
	m.cycleLatency.Observe(d)
}

// ObserveOrder records one classified order and its processing duration.
func (m *Metrics) ObserveOrder(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersSeen, 1)
	m.orderLatency.Observe(d)
}

// IncSkip increments the skip counter for a reason.
func (m *Metrics) IncSkip(reason enum.SkipReason) {
	if m == nil {
		return
	}
	idx := int(reason)
	if idx >= 0 && idx < len(m.skipCounts) {
		atomic.AddUint64(&m.skipCounts[idx], 1)
	}
}

// IncPlaced records a master order marked placed.
func (m *Metrics) IncPlaced() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.placed, 1)
}

// IncCancelled records a master order marked cancelled.
func (m *Metrics) IncCancelled() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cancelled, 1)
}

// AddChildFailures records failed child forwards.
func (m *Metrics) AddChildFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.childFailures, uint64(n))
}

// IncFeedFailure records a failed master order book fetch.
func (m *Metrics) IncFeedFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.feedFailures, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	skips := make(map[enum.SkipReason]uint64)
	for i := range m.skipCounts {
		if v := atomic.LoadUint64(&m.skipCounts[i]); v > 0 {
			skips[enum.SkipReason(i)] = v
		}
	}
	return Snapshot{
		Cycles:        atomic.LoadUint64(&m.cycles),
		OrdersSeen:    atomic.LoadUint64(&m.ordersSeen),
		Placed:        atomic.LoadUint64(&m.placed),
		Cancelled:     atomic.LoadUint64(&m.cancelled),
		ChildFailures: atomic.LoadUint64(&m.childFailures),
		FeedFailures:  atomic.LoadUint64(&m.feedFailures),
		SkipCounts:    skips,
		CycleLatency:  m.cycleLatency.Snapshot(),
		OrderLatency:  m.orderLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
