package dispatcher

import "sync/atomic"

// Metrics tracks dispatch activity.
type Metrics struct {
	drawsTotal    atomic.Uint64
	pixelsWritten atomic.Uint64
	fillsTotal    atomic.Uint64
	commitsTotal  atomic.Uint64
	pansTotal     atomic.Uint64
	zoomsTotal    atomic.Uint64
	clippedWrites atomic.Uint64
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	DrawsTotal    uint64
	PixelsWritten uint64
	FillsTotal    uint64
	CommitsTotal  uint64
	PansTotal     uint64
	ZoomsTotal    uint64
	ClippedWrites uint64
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		DrawsTotal:    m.drawsTotal.Load(),
		PixelsWritten: m.pixelsWritten.Load(),
		FillsTotal:    m.fillsTotal.Load(),
		CommitsTotal:  m.commitsTotal.Load(),
		PansTotal:     m.pansTotal.Load(),
		ZoomsTotal:    m.zoomsTotal.Load(),
		ClippedWrites: m.clippedWrites.Load(),
	}
}

func (m *Metrics) recordDraw(pixels int) { m.drawsTotal.Add(1); m.pixelsWritten.Add(uint64(pixels)) }
func (m *Metrics) recordFill(pixels int) { m.fillsTotal.Add(1); m.pixelsWritten.Add(uint64(pixels)) }
func (m *Metrics) recordCommit()         { m.commitsTotal.Add(1) }
func (m *Metrics) recordPan()            { m.pansTotal.Add(1) }
func (m *Metrics) recordZoom()           { m.zoomsTotal.Add(1) }
func (m *Metrics) recordClipped()        { m.clippedWrites.Add(1) }
