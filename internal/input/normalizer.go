package input

import (
	"errors"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/pixelstorm/internal/input/pointer"
)

// mouseContactID is the synthetic identifier assigned to mouse and pen
// contacts, which never report one of their own.
const mouseContactID int64 = -1

// ErrNoValidContacts indicates every contact in a raw event was malformed.
// The event is dropped without touching classifier state.
var ErrNoValidContacts = errors.New("input: no valid contacts in event")

// Normalizer validates raw platform events and converts them into Points.
// Malformed contacts are dropped and counted, never forwarded.
type Normalizer struct {
	logger  *zap.Logger
	dropped atomic.Uint64
}

// NewNormalizer creates a normalizer. A nil logger disables logging.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize converts a raw event into validated points. Contacts with NaN
// or infinite coordinates are dropped and logged; duplicate identifiers
// within one event keep the first occurrence. Returns ErrNoValidContacts
// when nothing usable remains.
func (n *Normalizer) Normalize(ev pointer.RawEvent) ([]pointer.Point, error) {
	if len(ev.Contacts) == 0 {
		return nil, ErrNoValidContacts
	}

	when := ev.Time
	if when.IsZero() {
		when = time.Now()
	}

	points := make([]pointer.Point, 0, len(ev.Contacts))
	seen := make(map[int64]bool, len(ev.Contacts))
	for _, c := range ev.Contacts {
		if !c.Valid() {
			n.dropped.Add(1)
			n.logger.Warn("malformed contact dropped",
				zap.String("phase", ev.Phase.String()),
				zap.String("kind", ev.Kind.String()),
				zap.Int64("id", c.ID),
			)
			continue
		}

		id := c.ID
		if ev.Kind != pointer.KindTouch {
			id = mouseContactID
		}
		if seen[id] {
			n.dropped.Add(1)
			continue
		}
		seen[id] = true

		points = append(points, pointer.Point{
			X:        c.X,
			Y:        c.Y,
			Pressure: clampPressure(c.Pressure),
			Time:     when,
			Kind:     ev.Kind,
			ID:       id,
		})
	}

	if len(points) == 0 {
		return nil, ErrNoValidContacts
	}
	return points, nil
}

// Dropped returns how many malformed contacts have been discarded.
func (n *Normalizer) Dropped() uint64 {
	return n.dropped.Load()
}

// clampPressure maps missing or out-of-range pressure into [0, 1].
// Devices that report no pressure send 0; those get full pressure.
func clampPressure(p float64) float64 {
	switch {
	case math.IsNaN(p), p <= 0, p > 1:
		return 1.0
	default:
		return p
	}
}
