package input

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks input processing performance.
type Metrics struct {
	// Event counters
	pointerEventsTotal atomic.Uint64
	keyEventsTotal     atomic.Uint64
	commandsTotal      atomic.Uint64
	failedCommands     atomic.Uint64
	droppedEvents      atomic.Uint64

	// Latency tracking
	mu                sync.RWMutex
	pointerLatencies  []time.Duration
	commandLatencies  []time.Duration
	maxLatencySamples int
	pointerIdx        int
	commandIdx        int

	// Peak latency (all time)
	peakPointerLatency atomic.Int64
	peakCommandLatency atomic.Int64

	// Start time for rate calculation
	startTime time.Time

	// Enable flag
	enabled atomic.Bool
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		pointerLatencies:  make([]time.Duration, 1000),
		commandLatencies:  make([]time.Duration, 1000),
		maxLatencySamples: 1000,
		startTime:         time.Now(),
	}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables metrics collection.
func (m *Metrics) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// RecordPointerEvent counts one raw pointer event.
func (m *Metrics) RecordPointerEvent() {
	if !m.enabled.Load() {
		return
	}
	m.pointerEventsTotal.Add(1)
}

// RecordKeyEvent counts one keyboard event.
func (m *Metrics) RecordKeyEvent() {
	if !m.enabled.Load() {
		return
	}
	m.keyEventsTotal.Add(1)
}

// RecordDroppedEvent counts an event rejected by normalization.
func (m *Metrics) RecordDroppedEvent() {
	if !m.enabled.Load() {
		return
	}
	m.droppedEvents.Add(1)
}

// RecordFailedCommand counts a command whose dispatch failed after recovery.
func (m *Metrics) RecordFailedCommand() {
	if !m.enabled.Load() {
		return
	}
	m.failedCommands.Add(1)
}

// recordPointerLatency stores one end-to-end pointer handling duration.
func (m *Metrics) recordPointerLatency(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	updatePeak(&m.peakPointerLatency, latency)

	m.mu.Lock()
	m.pointerLatencies[m.pointerIdx] = latency
	m.pointerIdx = (m.pointerIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

// recordCommandLatency stores one command dispatch duration.
func (m *Metrics) recordCommandLatency(latency time.Duration) {
	if !m.enabled.Load() {
		return
	}
	m.commandsTotal.Add(1)
	updatePeak(&m.peakCommandLatency, latency)

	m.mu.Lock()
	m.commandLatencies[m.commandIdx] = latency
	m.commandIdx = (m.commandIdx + 1) % m.maxLatencySamples
	m.mu.Unlock()
}

func updatePeak(peak *atomic.Int64, latency time.Duration) {
	ns := latency.Nanoseconds()
	for {
		current := peak.Load()
		if ns <= current {
			return
		}
		if peak.CompareAndSwap(current, ns) {
			return
		}
	}
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	// Counters
	PointerEventsTotal uint64
	KeyEventsTotal     uint64
	CommandsTotal      uint64
	FailedCommands     uint64
	DroppedEvents      uint64

	// Latency stats
	AvgPointerLatency  time.Duration
	MaxPointerLatency  time.Duration
	PeakPointerLatency time.Duration

	AvgCommandLatency  time.Duration
	MaxCommandLatency  time.Duration
	PeakCommandLatency time.Duration

	// Rates
	EventsPerSecond float64

	// Uptime
	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	pointerLatencies := make([]time.Duration, len(m.pointerLatencies))
	copy(pointerLatencies, m.pointerLatencies)
	commandLatencies := make([]time.Duration, len(m.commandLatencies))
	copy(commandLatencies, m.commandLatencies)
	m.mu.RUnlock()

	pointerCount := m.pointerEventsTotal.Load()
	uptime := time.Since(m.startTime)

	snap := MetricsSnapshot{
		PointerEventsTotal: pointerCount,
		KeyEventsTotal:     m.keyEventsTotal.Load(),
		CommandsTotal:      m.commandsTotal.Load(),
		FailedCommands:     m.failedCommands.Load(),
		DroppedEvents:      m.droppedEvents.Load(),
		PeakPointerLatency: time.Duration(m.peakPointerLatency.Load()),
		PeakCommandLatency: time.Duration(m.peakCommandLatency.Load()),
		Uptime:             uptime,
	}

	if uptime > 0 {
		snap.EventsPerSecond = float64(pointerCount) / uptime.Seconds()
	}

	snap.AvgPointerLatency, snap.MaxPointerLatency = latencyStats(pointerLatencies)
	snap.AvgCommandLatency, snap.MaxCommandLatency = latencyStats(commandLatencies)

	return snap
}

// latencyStats computes average and max from a ring of latencies, skipping
// unfilled slots.
func latencyStats(latencies []time.Duration) (avg, maxLat time.Duration) {
	var sum time.Duration
	var count int
	for _, l := range latencies {
		if l <= 0 {
			continue
		}
		sum += l
		count++
		if l > maxLat {
			maxLat = l
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / time.Duration(count), maxLat
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.pointerEventsTotal.Store(0)
	m.keyEventsTotal.Store(0)
	m.commandsTotal.Store(0)
	m.failedCommands.Store(0)
	m.droppedEvents.Store(0)
	m.peakPointerLatency.Store(0)
	m.peakCommandLatency.Store(0)

	m.mu.Lock()
	m.pointerLatencies = make([]time.Duration, m.maxLatencySamples)
	m.commandLatencies = make([]time.Duration, m.maxLatencySamples)
	m.pointerIdx = 0
	m.commandIdx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// PointerEventsTotal returns the total number of pointer events processed.
func (m *Metrics) PointerEventsTotal() uint64 {
	return m.pointerEventsTotal.Load()
}

// KeyEventsTotal returns the total number of key events processed.
func (m *Metrics) KeyEventsTotal() uint64 {
	return m.keyEventsTotal.Load()
}

// CommandsTotal returns the total number of commands dispatched.
func (m *Metrics) CommandsTotal() uint64 {
	return m.commandsTotal.Load()
}

// DroppedEvents returns the total number of dropped events.
func (m *Metrics) DroppedEvents() uint64 {
	return m.droppedEvents.Load()
}

// Timer helps measure operation duration.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// StartPointerTimer starts a timer for one pointer event's handling.
func (m *Metrics) StartPointerTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// Stop stops the timer and records the pointer latency.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.recordPointerLatency(elapsed)
	return elapsed
}

// StartCommandTimer starts a timer for one command dispatch.
func (m *Metrics) StartCommandTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// StopCommand stops the timer and records the command latency.
func (t *Timer) StopCommand() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.recordCommandLatency(elapsed)
	return elapsed
}
