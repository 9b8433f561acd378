// Package pointer defines the normalized pointer event model shared by the
// gesture classifier and platform adapters. A platform adapter converts its
// native mouse/touch/pen events into RawEvents; the normalizer turns those
// into validated Points.
package pointer

import (
	"math"
	"time"
)

// Kind identifies the input device class of a contact.
type Kind uint8

const (
	// KindMouse is a mouse pointer.
	KindMouse Kind = iota
	// KindTouch is a finger contact.
	KindTouch
	// KindPen is a stylus contact.
	KindPen
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTouch:
		return "touch"
	case KindPen:
		return "pen"
	default:
		return "mouse"
	}
}

// Phase is the lifecycle stage a raw event reports.
type Phase uint8

const (
	// PhaseBegin marks contact start (mousedown / touchstart).
	PhaseBegin Phase = iota
	// PhaseMove marks contact movement.
	PhaseMove
	// PhaseEnd marks contact release (mouseup / touchend).
	PhaseEnd
	// PhaseCancel marks host-initiated cancellation (touchcancel, blur).
	PhaseCancel
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	case PhaseCancel:
		return "cancel"
	default:
		return "begin"
	}
}

// Contact is one unvalidated pointer sample inside a RawEvent.
// Coordinates may be NaN when the platform delivered a malformed event.
type Contact struct {
	X        float64
	Y        float64
	Pressure float64
	ID       int64 // touch identifier, stable per finger while down
}

// Valid reports whether the contact carries usable coordinates.
func (c Contact) Valid() bool {
	return !math.IsNaN(c.X) && !math.IsNaN(c.Y) &&
		!math.IsInf(c.X, 0) && !math.IsInf(c.Y, 0)
}

// RawEvent is one platform event before normalization. Touch events may
// carry several contacts; mouse and pen events carry exactly one.
type RawEvent struct {
	Phase    Phase
	Kind     Kind
	Contacts []Contact
	Time     time.Time
}

// Point is a normalized single-pointer sample. Created per event and
// discarded after handling.
type Point struct {
	X        float64 // screen px
	Y        float64 // screen px
	Pressure float64 // [0, 1], 1.0 for devices without pressure
	Time     time.Time
	Kind     Kind
	ID       int64 // required for touch, -1 otherwise
}

// DistanceTo returns the Euclidean distance to another point in screen px.
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Hypot(dx, dy)
}

// Source describes a platform adapter's input capabilities. The classifier
// consults capabilities instead of sniffing event shapes, keeping it
// platform-agnostic.
type Source interface {
	// SupportsMultiTouch reports whether the platform can deliver more
	// than one simultaneous contact.
	SupportsMultiTouch() bool

	// SupportsPressure reports whether pressure values are meaningful.
	SupportsPressure() bool
}
