package gesture

import (
	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
)

// Command is the classifier's tagged-union output. Consumers dispatch on
// the concrete type with an exhaustive switch; there are no optional
// callback shapes.
type Command interface {
	// Name returns the command name for logging and telemetry.
	Name() string

	command()
}

// Draw requests a tool application at a pixel. Prev is non-nil during a
// drag so the dispatcher can interpolate the path between samples.
type Draw struct {
	GestureID uuid.UUID
	Tool      canvas.ToolState
	At        canvas.Pixel
	Prev      *canvas.Pixel
	Pressure  float64
}

func (Draw) Name() string { return "draw" }
func (Draw) command()     {}

// Commit closes a draw gesture: the host history receives exactly one
// batch carrying the final buffer state.
type Commit struct {
	GestureID uuid.UUID
	Tool      canvas.ToolState
}

func (Commit) Name() string { return "commit" }
func (Commit) command()     {}

// Pan requests a viewport translation by the centroid displacement.
type Pan struct {
	DeltaX float64
	DeltaY float64
}

func (Pan) Name() string { return "pan" }
func (Pan) command()     {}

// Zoom requests a viewport scale about the gesture center.
type Zoom struct {
	Scale   float64 // currentDistance / initialDistance
	CenterX float64 // screen px
	CenterY float64 // screen px
}

func (Zoom) Name() string { return "zoom" }
func (Zoom) command()     {}

// ToolSwitch requests the host switch the active tool (long-press
// eyedropper, keyboard shortcuts).
type ToolSwitch struct {
	Tool canvas.Tool
	// Haptic requests feedback with the switch (true for long-press).
	Haptic bool
}

func (ToolSwitch) Name() string { return "tool_switch" }
func (ToolSwitch) command()     {}

// Shortcut reports a multi-finger shortcut gesture. Fired once per
// finger-count escalation, independent of subsequent movement.
type Shortcut struct {
	Fingers int
}

func (Shortcut) Name() string { return "shortcut" }
func (Shortcut) command()     {}
