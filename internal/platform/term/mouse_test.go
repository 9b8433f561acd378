package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/input/pointer"
)

func TestMouseStateLifecycle(t *testing.T) {
	var m MouseState
	now := time.Now()

	ev, ok := m.Translate(5, 5, tcell.Button1, now)
	if !ok || ev.Phase != pointer.PhaseBegin {
		t.Fatalf("press = (%v, %v), want begin event", ev.Phase, ok)
	}
	if !m.Down() {
		t.Error("Down() = false after press")
	}

	ev, ok = m.Translate(6, 5, tcell.Button1, now)
	if !ok || ev.Phase != pointer.PhaseMove {
		t.Fatalf("drag = (%v, %v), want move event", ev.Phase, ok)
	}
	if ev.Contacts[0].X != 6 {
		t.Errorf("contact X = %v, want 6", ev.Contacts[0].X)
	}

	ev, ok = m.Translate(6, 5, tcell.ButtonNone, now)
	if !ok || ev.Phase != pointer.PhaseEnd {
		t.Fatalf("release = (%v, %v), want end event", ev.Phase, ok)
	}
	if m.Down() {
		t.Error("Down() = true after release")
	}
}

func TestMouseStateHoverProducesNothing(t *testing.T) {
	var m MouseState

	if _, ok := m.Translate(5, 5, tcell.ButtonNone, time.Now()); ok {
		t.Error("hover with no button produced an event")
	}
}

func TestMouseStateStationaryDragSuppressed(t *testing.T) {
	var m MouseState
	now := time.Now()

	if _, ok := m.Translate(5, 5, tcell.Button1, now); !ok {
		t.Fatal("press produced no event")
	}
	if _, ok := m.Translate(5, 5, tcell.Button1, now); ok {
		t.Error("stationary report with button held produced an event")
	}
}

func TestMouseStateKindAndID(t *testing.T) {
	var m MouseState

	ev, ok := m.Translate(1, 2, tcell.Button1, time.Now())
	if !ok {
		t.Fatal("press produced no event")
	}
	if ev.Kind != pointer.KindMouse {
		t.Errorf("kind = %v, want mouse", ev.Kind)
	}
	if len(ev.Contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(ev.Contacts))
	}
}
