package term

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/input/pointer"
)

// MouseState turns tcell's stateless mouse reports into pointer lifecycle
// events. tcell delivers position plus a button mask on every report; the
// begin/move/end phases come from tracking the primary button edge.
type MouseState struct {
	down  bool
	lastX int
	lastY int
}

// Translate converts one mouse report. The second return is false when the
// report produces no pointer event (hover with no button down).
func (m *MouseState) Translate(x, y int, buttons tcell.ButtonMask, when time.Time) (pointer.RawEvent, bool) {
	pressed := buttons&tcell.Button1 != 0

	var phase pointer.Phase
	switch {
	case pressed && !m.down:
		phase = pointer.PhaseBegin
	case pressed && m.down:
		if x == m.lastX && y == m.lastY {
			return pointer.RawEvent{}, false
		}
		phase = pointer.PhaseMove
	case !pressed && m.down:
		phase = pointer.PhaseEnd
	default:
		return pointer.RawEvent{}, false
	}

	m.down = pressed
	m.lastX, m.lastY = x, y

	return pointer.RawEvent{
		Phase: phase,
		Kind:  pointer.KindMouse,
		Contacts: []pointer.Contact{
			{X: float64(x), Y: float64(y), ID: 0},
		},
		Time: when,
	}, true
}

// Down reports whether the primary button is currently held.
func (m *MouseState) Down() bool {
	return m.down
}
