package dispatcher

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/pixelstorm/internal/telemetry"
)

// GovernorConfig tunes the performance governor.
type GovernorConfig struct {
	// WindowSize is how many recent frame times the rolling average
	// covers.
	WindowSize int

	// GeneralThreshold is the frame budget for ordinary handlers (60 fps).
	GeneralThreshold time.Duration

	// CriticalThreshold is the tighter budget for touch-critical paths.
	CriticalThreshold time.Duration

	// DegradedSampleRate is the telemetry sampling rate applied while the
	// average sits above budget.
	DegradedSampleRate float64
}

// DefaultGovernorConfig returns the standard budgets.
func DefaultGovernorConfig() GovernorConfig {
	return GovernorConfig{
		WindowSize:         60,
		GeneralThreshold:   16 * time.Millisecond,
		CriticalThreshold:  8 * time.Millisecond,
		DegradedSampleRate: 0.25,
	}
}

// Governor measures handler latency and maintains rolling frame-time
// statistics. Crossing a budget is advisory only: it lowers the telemetry
// sampling rate and logs a warning, and never blocks or aborts the
// measured operation.
type Governor struct {
	mu  sync.Mutex
	cfg GovernorConfig

	frames []time.Duration // ring buffer of recent frame times
	idx    int
	filled int

	degraded bool
	enabled  atomic.Bool

	logger   *zap.Logger
	recorder telemetry.Recorder

	// alertFn is an optional advisory callback fired on each budget
	// crossing.
	alertFn func(op string, avg time.Duration)
}

// NewGovernor creates a governor. Nil collaborators become no-ops.
func NewGovernor(cfg GovernorConfig, logger *zap.Logger, recorder telemetry.Recorder) *Governor {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultGovernorConfig().WindowSize
	}
	if cfg.GeneralThreshold <= 0 {
		cfg.GeneralThreshold = DefaultGovernorConfig().GeneralThreshold
	}
	if cfg.CriticalThreshold <= 0 {
		cfg.CriticalThreshold = DefaultGovernorConfig().CriticalThreshold
	}
	if cfg.DegradedSampleRate <= 0 {
		cfg.DegradedSampleRate = DefaultGovernorConfig().DegradedSampleRate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = telemetry.Nop{}
	}
	g := &Governor{
		cfg:      cfg,
		frames:   make([]time.Duration, cfg.WindowSize),
		logger:   logger,
		recorder: recorder,
	}
	g.enabled.Store(true)
	return g
}

// SetEnabled toggles measurement. Disabled governors run operations
// without timing them.
func (g *Governor) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

// SetAlertFunc registers the advisory callback for budget crossings.
func (g *Governor) SetAlertFunc(fn func(op string, avg time.Duration)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.alertFn = fn
}

// Measure times fn and feeds the rolling window. The operation's result
// passes through untouched.
func (g *Governor) Measure(op string, critical bool, fn func() error) error {
	if !g.enabled.Load() {
		return fn()
	}
	start := time.Now()
	err := fn()
	g.Record(op, critical, time.Since(start))
	return err
}

// Record feeds one frame time into the rolling window and evaluates the
// budget for the given path criticality.
func (g *Governor) Record(op string, critical bool, d time.Duration) {
	if !g.enabled.Load() {
		return
	}

	g.mu.Lock()
	g.frames[g.idx] = d
	g.idx = (g.idx + 1) % len(g.frames)
	if g.filled < len(g.frames) {
		g.filled++
	}
	avg := g.averageLocked()

	threshold := g.cfg.GeneralThreshold
	if critical {
		threshold = g.cfg.CriticalThreshold
	}

	var crossed, recovered bool
	if avg > threshold && !g.degraded {
		g.degraded = true
		crossed = true
	} else if avg <= threshold && g.degraded {
		g.degraded = false
		recovered = true
	}
	alertFn := g.alertFn
	g.mu.Unlock()

	switch {
	case crossed:
		g.recorder.SetSampleRate(g.cfg.DegradedSampleRate)
		g.logger.Warn("frame budget exceeded",
			zap.String("operation", op),
			zap.Duration("average", avg),
			zap.Duration("threshold", threshold),
		)
		g.recorder.Record("governor", "degraded", map[string]any{
			"operation": op,
			"avg_ms":    avg.Milliseconds(),
		})
		if alertFn != nil {
			alertFn(op, avg)
		}
	case recovered:
		g.recorder.SetSampleRate(1.0)
		g.logger.Info("frame budget recovered",
			zap.String("operation", op),
			zap.Duration("average", avg),
		)
	}
}

// Average returns the rolling mean frame time.
func (g *Governor) Average() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.averageLocked()
}

// WindowLen returns how many samples the window currently holds.
func (g *Governor) WindowLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filled
}

// Degraded reports whether the governor currently advises degradation.
func (g *Governor) Degraded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.degraded
}

func (g *Governor) averageLocked() time.Duration {
	if g.filled == 0 {
		return 0
	}
	var total time.Duration
	for i := 0; i < g.filled; i++ {
		total += g.frames[i]
	}
	return total / time.Duration(g.filled)
}
