package app

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/input/pointer"
)

func newTestSession(t *testing.T, mutate func(*Config)) *Session {
	t.Helper()

	cfg := DefaultAppConfig()
	cfg.Canvas = CanvasConfig{Width: 32, Height: 32}
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := NewSession(cfg, Options{Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(s.Close)

	s.SetRect(canvas.Rect{Width: 32, Height: 32})
	s.SetColor(canvas.Color{R: 200, A: 255})
	return s
}

func mouse(phase pointer.Phase, x, y float64) pointer.RawEvent {
	return pointer.RawEvent{
		Phase:    phase,
		Kind:     pointer.KindMouse,
		Contacts: []pointer.Contact{{X: x, Y: y}},
		Time:     time.Now(),
	}
}

func touch(phase pointer.Phase, contacts ...pointer.Contact) pointer.RawEvent {
	return pointer.RawEvent{
		Phase:    phase,
		Kind:     pointer.KindTouch,
		Contacts: contacts,
		Time:     time.Now(),
	}
}

func click(t *testing.T, s *Session, x, y float64) {
	t.Helper()
	if err := s.HandlePointer(mouse(pointer.PhaseBegin, x, y)); err != nil {
		t.Fatalf("begin error = %v", err)
	}
	if err := s.HandlePointer(mouse(pointer.PhaseEnd, x, y)); err != nil {
		t.Fatalf("end error = %v", err)
	}
}

func TestSessionClickDrawsAndCommits(t *testing.T) {
	s := newTestSession(t, nil)

	click(t, s, 8, 8)

	if got := s.Buffer().GetPixel(8, 8); got.A == 0 {
		t.Error("pixel (8,8) not painted")
	}
	if got := s.History().Len(); got != 1 {
		t.Errorf("history entries = %d, want 1", got)
	}
}

func TestSessionUndoRedo(t *testing.T) {
	s := newTestSession(t, nil)

	click(t, s, 8, 8)
	click(t, s, 10, 10)

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := s.Buffer().GetPixel(10, 10); got.A != 0 {
		t.Error("second stroke still present after undo")
	}
	if got := s.Buffer().GetPixel(8, 8); got.A == 0 {
		t.Error("first stroke lost by undo of second")
	}

	if err := s.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if got := s.Buffer().GetPixel(10, 10); got.A == 0 {
		t.Error("second stroke not restored by redo")
	}
}

func TestSessionUndoToBlank(t *testing.T) {
	s := newTestSession(t, nil)

	click(t, s, 8, 8)
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := s.Buffer().GetPixel(8, 8); got.A != 0 {
		t.Error("canvas not blank after undoing the only commit")
	}

	// Undo past the blank state is a no-op, not an error.
	if err := s.Undo(); err != nil {
		t.Errorf("Undo() on empty history error = %v", err)
	}
}

func TestSessionKeySwitchesTool(t *testing.T) {
	s := newTestSession(t, nil)

	if err := s.HandleKey('e', false); err != nil {
		t.Fatalf("HandleKey('e') error = %v", err)
	}
	if got := s.Tool().Tool; got != canvas.ToolEraser {
		t.Errorf("tool = %v after 'e', want eraser", got)
	}

	// Focus in a text field swallows the shortcut.
	if err := s.HandleKey('p', true); err != nil {
		t.Fatalf("HandleKey('p', focus) error = %v", err)
	}
	if got := s.Tool().Tool; got != canvas.ToolEraser {
		t.Errorf("tool = %v, shortcut should be ignored in text input", got)
	}
}

func TestThreeFingerCyclesTool(t *testing.T) {
	s := newTestSession(t, nil)

	if err := s.HandlePointer(touch(pointer.PhaseBegin, pointer.Contact{X: 5, Y: 5, ID: 1})); err != nil {
		t.Fatalf("begin 1 error = %v", err)
	}
	if err := s.HandlePointer(touch(pointer.PhaseBegin, pointer.Contact{X: 10, Y: 5, ID: 2})); err != nil {
		t.Fatalf("begin 2 error = %v", err)
	}
	if err := s.HandlePointer(touch(pointer.PhaseBegin, pointer.Contact{X: 15, Y: 5, ID: 3})); err != nil {
		t.Fatalf("begin 3 error = %v", err)
	}

	if got := s.Tool().Tool; got != canvas.ToolEraser {
		t.Errorf("tool = %v after 3-finger shortcut, want eraser (next after pencil)", got)
	}
}

func TestShortcutScriptOverridesFixedMapping(t *testing.T) {
	s := newTestSession(t, func(cfg *Config) {
		cfg.Shortcuts = map[int]string{3: `return "tool.pan"`}
	})

	contacts := []pointer.Contact{
		{X: 5, Y: 5, ID: 1},
		{X: 10, Y: 5, ID: 2},
		{X: 15, Y: 5, ID: 3},
	}
	for _, c := range contacts {
		if err := s.HandlePointer(touch(pointer.PhaseBegin, c)); err != nil {
			t.Fatalf("begin error = %v", err)
		}
	}

	if got := s.Tool().Tool; got != canvas.ToolPan {
		t.Errorf("tool = %v, want pan from the bound script", got)
	}
}

func TestFourFingerUndo(t *testing.T) {
	s := newTestSession(t, nil)

	click(t, s, 8, 8)
	if got := s.History().Len(); got != 1 {
		t.Fatalf("history entries = %d, want 1", got)
	}

	for i, c := range []pointer.Contact{
		{X: 5, Y: 20, ID: 1},
		{X: 10, Y: 20, ID: 2},
		{X: 15, Y: 20, ID: 3},
		{X: 20, Y: 20, ID: 4},
	} {
		if err := s.HandlePointer(touch(pointer.PhaseBegin, c)); err != nil {
			t.Fatalf("begin %d error = %v", i+1, err)
		}
	}

	if got := s.Buffer().GetPixel(8, 8); got.A != 0 {
		t.Error("pixel still present after 4-finger undo")
	}
	if !s.History().CanRedo() {
		t.Error("undone commit not available for redo")
	}
}

func TestPinchZoomsView(t *testing.T) {
	s := newTestSession(t, nil)

	if err := s.HandlePointer(touch(pointer.PhaseBegin, pointer.Contact{X: 10, Y: 10, ID: 1})); err != nil {
		t.Fatalf("begin 1 error = %v", err)
	}
	if err := s.HandlePointer(touch(pointer.PhaseBegin, pointer.Contact{X: 20, Y: 10, ID: 2})); err != nil {
		t.Fatalf("begin 2 error = %v", err)
	}
	if err := s.HandlePointer(touch(pointer.PhaseMove,
		pointer.Contact{X: 5, Y: 10, ID: 1},
		pointer.Contact{X: 25, Y: 10, ID: 2},
	)); err != nil {
		t.Fatalf("move error = %v", err)
	}

	if got := s.View().Zoom; got <= 1 {
		t.Errorf("view zoom = %v after pinch out, want > 1", got)
	}
}

func TestZoomClamped(t *testing.T) {
	s := newTestSession(t, func(cfg *Config) {
		cfg.Gesture.MaxZoom = 2
	})

	st := &sessionStore{s: s}
	st.OnZoom(100, 16, 16)

	if got := s.View().Zoom; got != 2 {
		t.Errorf("zoom = %v, want clamped to 2", got)
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	s := newTestSession(t, nil)

	s.Close()
	s.Close()
	if !s.IsClosed() {
		t.Fatal("IsClosed() = false after Close")
	}

	if err := s.HandlePointer(mouse(pointer.PhaseBegin, 8, 8)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("HandlePointer after Close error = %v, want ErrSessionClosed", err)
	}
	if err := s.HandleKey('p', false); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("HandleKey after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestEyedropperLongPress(t *testing.T) {
	s := newTestSession(t, func(cfg *Config) {
		cfg.Gesture.LongPressMS = 20
	})

	if err := s.HandlePointer(mouse(pointer.PhaseBegin, 8, 8)); err != nil {
		t.Fatalf("begin error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s.Tool().Tool == canvas.ToolEyedropper {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.Tool().Tool; got != canvas.ToolEyedropper {
		t.Errorf("tool = %v after long press, want eyedropper", got)
	}
}
