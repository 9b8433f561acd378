// Package gesture classifies normalized pointer streams into exactly one
// active gesture at a time and emits tagged Commands for the dispatcher.
//
// The classifier is a per-session state machine. Classification decisions
// are irrevocable: the very first contact issues a draw before a possible
// second finger arrives, and a second finger freezes the draw candidate
// without undoing the pixels already painted.
package gesture

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/input/pointer"
)

// State is the classifier state.
type State uint8

const (
	// StateIdle means no contact is down.
	StateIdle State = iota
	// StateSingleActive is a single-contact drawing candidate.
	StateSingleActive
	// StateLongPressActive means the long-press threshold fired.
	StateLongPressActive
	// StateTwoTouchActive is two contacts with undetermined intent.
	StateTwoTouchActive
	// StateTwoTouchPan is a classified two-finger pan.
	StateTwoTouchPan
	// StateTwoTouchZoom is a classified two-finger zoom.
	StateTwoTouchZoom
	// StateMultiFingerShortcut is three or more contacts.
	StateMultiFingerShortcut
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateSingleActive:
		return "single-active"
	case StateLongPressActive:
		return "long-press-active"
	case StateTwoTouchActive:
		return "two-touch-active"
	case StateTwoTouchPan:
		return "two-touch-pan"
	case StateTwoTouchZoom:
		return "two-touch-zoom"
	case StateMultiFingerShortcut:
		return "multi-finger-shortcut"
	default:
		return "idle"
	}
}

// Type labels the active gesture.
type Type uint8

const (
	// TypeNone means no gesture.
	TypeNone Type = iota
	// TypeTap is a short stationary press.
	TypeTap
	// TypeDrag is a moving single contact (drawing).
	TypeDrag
	// TypeLongPress is a stationary press past the threshold.
	TypeLongPress
	// TypePan is a two-finger translation.
	TypePan
	// TypeZoom is a two-finger pinch/spread.
	TypeZoom
	// TypeShortcut is a multi-finger shortcut.
	TypeShortcut
)

// String returns a string representation of the gesture type.
func (t Type) String() string {
	switch t {
	case TypeTap:
		return "tap"
	case TypeDrag:
		return "drag"
	case TypeLongPress:
		return "long-press"
	case TypePan:
		return "pan"
	case TypeZoom:
		return "zoom"
	case TypeShortcut:
		return "shortcut"
	default:
		return "none"
	}
}

// Gesture is the single active gesture instance. It is mutated in place
// during move events and destroyed on release or cancel.
type Gesture struct {
	ID         uuid.UUID
	Type       Type
	StartTime  time.Time
	Points     []pointer.Point
	Confidence float64
}

// Duration returns the elapsed time since the gesture began.
func (g *Gesture) Duration() time.Duration {
	return time.Since(g.StartTime)
}

// Frame is the host's read-only per-event snapshot: the active tool, the
// current view transform, and the canvas bounding rect. Changing the tool
// mid-gesture is undefined behavior; the classifier snapshots it at
// gesture start.
type Frame struct {
	Tool canvas.ToolState
	View canvas.ViewTransform
	Rect canvas.Rect
}

// Config tunes classification thresholds.
type Config struct {
	// LongPressDelay is how long a stationary press takes to become a
	// long-press.
	LongPressDelay time.Duration

	// JitterThreshold is the maximum cumulative displacement (screen px)
	// still considered stationary.
	JitterThreshold float64

	// ZoomThreshold is the minimum |scale - 1| for a two-finger move to
	// classify as zoom. Zoom takes precedence over pan.
	ZoomThreshold float64

	// PanThreshold is the minimum centroid displacement (screen px, per
	// axis) for a two-finger move to classify as pan.
	PanThreshold float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		LongPressDelay:  500 * time.Millisecond,
		JitterThreshold: 3,
		ZoomThreshold:   0.1,
		PanThreshold:    5,
	}
}
