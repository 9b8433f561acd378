// Package telemetry emits structured advisory records for the input core.
// Records are best-effort: failures to record never affect gesture handling.
package telemetry

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is one telemetry entry handed to the sink.
type Record struct {
	Component string
	Event     string
	Data      map[string]any
	Timestamp time.Time
}

// Recorder accepts telemetry records.
type Recorder interface {
	// Record emits one entry. Implementations must be safe for concurrent
	// use and must never panic.
	Record(component, event string, data map[string]any)

	// SetSampleRate adjusts the fraction of records kept, in [0, 1].
	// The performance governor lowers this under sustained load.
	SetSampleRate(rate float64)
}

// ZapRecorder writes records through a zap logger.
type ZapRecorder struct {
	mu     sync.RWMutex
	logger *zap.Logger
	rate   float64
	rng    *rand.Rand
}

// NewZapRecorder creates a recorder writing to the given logger at full
// sampling.
func NewZapRecorder(logger *zap.Logger) *ZapRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapRecorder{
		logger: logger,
		rate:   1.0,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Record implements Recorder.
func (r *ZapRecorder) Record(component, event string, data map[string]any) {
	r.mu.RLock()
	rate := r.rate
	r.mu.RUnlock()

	if rate <= 0 {
		return
	}
	if rate < 1 {
		r.mu.Lock()
		keep := r.rng.Float64() < rate
		r.mu.Unlock()
		if !keep {
			return
		}
	}

	fields := make([]zap.Field, 0, len(data)+3)
	fields = append(fields,
		zap.String("component", component),
		zap.String("event", event),
		zap.Time("timestamp", time.Now()),
	)
	for k, v := range data {
		fields = append(fields, zap.Any(k, v))
	}
	r.logger.Info("telemetry", fields...)
}

// SetSampleRate implements Recorder.
func (r *ZapRecorder) SetSampleRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	r.mu.Lock()
	r.rate = rate
	r.mu.Unlock()
}

// SampleRate returns the current sampling rate.
func (r *ZapRecorder) SampleRate() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rate
}

// Nop is a Recorder that discards everything. Useful in tests.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(string, string, map[string]any) {}

// SetSampleRate implements Recorder.
func (Nop) SetSampleRate(float64) {}

// Capture is a Recorder that retains records in memory for assertions.
type Capture struct {
	mu      sync.Mutex
	records []Record
	rate    float64
}

// NewCapture creates an in-memory recorder.
func NewCapture() *Capture {
	return &Capture{rate: 1.0}
}

// Record implements Recorder.
func (c *Capture) Record(component, event string, data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, Record{
		Component: component,
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// SetSampleRate implements Recorder.
func (c *Capture) SetSampleRate(rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
}

// Rate returns the last rate set by SetSampleRate.
func (c *Capture) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Records returns a copy of the captured records.
func (c *Capture) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Events returns the captured event names for the given component.
// Empty component matches all.
func (c *Capture) Events(component string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, r := range c.records {
		if component == "" || r.Component == component {
			out = append(out, r.Event)
		}
	}
	return out
}
