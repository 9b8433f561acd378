package dispatcher

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/input/gesture"
)

// captureStore records store callbacks for assertions.
type captureStore struct {
	mu         sync.Mutex
	mutations  int
	pans       [][2]float64
	zooms      [][3]float64
	tools      []canvas.Tool
	picks      []canvas.Color
	selections [][]bool
}

func (s *captureStore) OnDrawMutation(*canvas.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutations++
}

func (s *captureStore) OnPan(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pans = append(s.pans, [2]float64{dx, dy})
}

func (s *captureStore) OnZoom(scale, cx, cy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zooms = append(s.zooms, [3]float64{scale, cx, cy})
}

func (s *captureStore) OnToolSelect(tool canvas.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools = append(s.tools, tool)
}

func (s *captureStore) OnColorPick(c canvas.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = append(s.picks, c)
}

func (s *captureStore) OnSelection(mask []bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = append(s.selections, mask)
}

// captureHistory counts commits per gesture.
type captureHistory struct {
	mu      sync.Mutex
	commits []string // labels
	ids     []uuid.UUID
}

func (h *captureHistory) Commit(id uuid.UUID, tabID, label string, buf *canvas.Buffer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commits = append(h.commits, label)
	h.ids = append(h.ids, id)
}

func newTestDispatcher(t *testing.T, w, h int) (*Dispatcher, *canvas.Buffer, *captureStore, *captureHistory) {
	t.Helper()
	buf, err := canvas.NewBuffer(w, h)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	d := New(Config{TabID: "tab-1"})
	store := &captureStore{}
	hist := &captureHistory{}
	d.SetBuffer(buf)
	d.SetStore(store)
	d.SetHistory(hist)
	return d, buf, store, hist
}

func pencilState() canvas.ToolState {
	return canvas.ToolState{Tool: canvas.ToolPencil, Color: canvas.RGB(255, 0, 0), BrushSize: 1}
}

func TestPencilWritesPixel(t *testing.T) {
	d, buf, store, _ := newTestDispatcher(t, 16, 16)

	err := d.Execute(gesture.Draw{GestureID: uuid.New(), Tool: pencilState(), At: canvas.Pixel{X: 3, Y: 4}})
	if err != nil {
		t.Fatalf("Execute(Draw) error = %v", err)
	}

	if got := buf.GetPixel(3, 4); !got.Equal(canvas.RGB(255, 0, 0)) {
		t.Errorf("pixel = %v, want opaque red", got)
	}
	if store.mutations != 1 {
		t.Errorf("OnDrawMutation calls = %d, want 1", store.mutations)
	}
}

func TestEraserClearsAlphaKeepsRGB(t *testing.T) {
	d, buf, _, _ := newTestDispatcher(t, 32, 32)
	buf.SetPixel(8, 8, canvas.Color{R: 11, G: 22, B: 33, A: 255})

	tool := canvas.ToolState{Tool: canvas.ToolEraser, BrushSize: 1}
	if err := d.Execute(gesture.Draw{GestureID: uuid.New(), Tool: tool, At: canvas.Pixel{X: 8, Y: 8}}); err != nil {
		t.Fatalf("Execute(Draw) error = %v", err)
	}

	i := (8*32 + 8) * 4
	data := buf.Data()
	if data[i+3] != 0 {
		t.Errorf("data[%d] (alpha) = %d, want 0", i+3, data[i+3])
	}
	if data[i] != 11 || data[i+1] != 22 || data[i+2] != 33 {
		t.Errorf("RGB bytes = (%d,%d,%d), want unchanged (11,22,33)", data[i], data[i+1], data[i+2])
	}
}

func TestEyedropperNeverMutates(t *testing.T) {
	d, buf, store, _ := newTestDispatcher(t, 8, 8)
	buf.SetPixel(2, 2, canvas.RGB(9, 8, 7))
	before := buf.Clone()

	tool := canvas.ToolState{Tool: canvas.ToolEyedropper}
	for i := 0; i < 3; i++ {
		if err := d.Execute(gesture.Draw{GestureID: uuid.New(), Tool: tool, At: canvas.Pixel{X: 2, Y: 2}}); err != nil {
			t.Fatalf("Execute(Draw) error = %v", err)
		}
	}

	for i := range buf.Data() {
		if buf.Data()[i] != before.Data()[i] {
			t.Fatalf("eyedropper mutated buffer at byte %d", i)
		}
	}
	if len(store.picks) != 3 || !store.picks[0].Equal(canvas.RGB(9, 8, 7)) {
		t.Errorf("picks = %v, want three samples of (9,8,7)", store.picks)
	}
}

func TestDragInterpolationLeavesNoGaps(t *testing.T) {
	d, buf, _, _ := newTestDispatcher(t, 32, 32)

	prev := canvas.Pixel{X: 0, Y: 0}
	err := d.Execute(gesture.Draw{
		GestureID: uuid.New(),
		Tool:      pencilState(),
		At:        canvas.Pixel{X: 10, Y: 0},
		Prev:      &prev,
	})
	if err != nil {
		t.Fatalf("Execute(Draw) error = %v", err)
	}

	// Every pixel strictly between prev and target must be painted.
	for x := 1; x <= 10; x++ {
		if buf.GetPixel(x, 0).Transparent() {
			t.Errorf("gap at (%d, 0) in interpolated stroke", x)
		}
	}
}

func TestOutOfBoundsDrawIsSilentNoOp(t *testing.T) {
	d, buf, _, _ := newTestDispatcher(t, 8, 8)
	before := buf.Clone()

	targets := []canvas.Pixel{{X: -1, Y: 0}, {X: 8, Y: 0}, {X: 0, Y: 100}}
	for _, at := range targets {
		if err := d.Execute(gesture.Draw{GestureID: uuid.New(), Tool: pencilState(), At: at}); err != nil {
			t.Errorf("Execute(Draw out of bounds) error = %v, want nil", err)
		}
	}

	for i := range buf.Data() {
		if buf.Data()[i] != before.Data()[i] {
			t.Fatalf("out-of-bounds draw mutated buffer at byte %d", i)
		}
	}
}

func TestCommitLabels(t *testing.T) {
	tests := []struct {
		tool  canvas.Tool
		label string
	}{
		{canvas.ToolPencil, "pencil_draw"},
		{canvas.ToolEraser, "eraser_erase"},
		{canvas.ToolFill, "fill_apply"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			d, _, _, hist := newTestDispatcher(t, 8, 8)
			tool := canvas.ToolState{Tool: tt.tool, Color: canvas.RGB(1, 2, 3), BrushSize: 1}

			if err := d.Execute(gesture.Commit{GestureID: uuid.New(), Tool: tool}); err != nil {
				t.Fatalf("Execute(Commit) error = %v", err)
			}
			if len(hist.commits) != 1 || hist.commits[0] != tt.label {
				t.Errorf("commits = %v, want [%s]", hist.commits, tt.label)
			}
		})
	}
}

func TestCommitSkipsReadOnlyTools(t *testing.T) {
	d, _, _, hist := newTestDispatcher(t, 8, 8)

	for _, tool := range []canvas.Tool{canvas.ToolEyedropper, canvas.ToolMagicWand, canvas.ToolPan} {
		if err := d.Execute(gesture.Commit{GestureID: uuid.New(), Tool: canvas.ToolState{Tool: tool}}); err != nil {
			t.Errorf("Execute(Commit %s) error = %v", tool, err)
		}
	}

	if len(hist.commits) != 0 {
		t.Errorf("commits = %v, want none for read-only tools", hist.commits)
	}
}

func TestPanZoomForwarded(t *testing.T) {
	d, _, store, _ := newTestDispatcher(t, 8, 8)

	if err := d.Execute(gesture.Pan{DeltaX: 3, DeltaY: -4}); err != nil {
		t.Fatalf("Execute(Pan) error = %v", err)
	}
	if err := d.Execute(gesture.Zoom{Scale: 0.5, CenterX: 10, CenterY: 20}); err != nil {
		t.Fatalf("Execute(Zoom) error = %v", err)
	}

	if len(store.pans) != 1 || store.pans[0] != [2]float64{3, -4} {
		t.Errorf("pans = %v, want [[3 -4]]", store.pans)
	}
	if len(store.zooms) != 1 || store.zooms[0] != [3]float64{0.5, 10, 20} {
		t.Errorf("zooms = %v, want [[0.5 10 20]]", store.zooms)
	}
}

func TestToolSwitchForwarded(t *testing.T) {
	d, _, store, _ := newTestDispatcher(t, 8, 8)

	if err := d.Execute(gesture.ToolSwitch{Tool: canvas.ToolEyedropper, Haptic: true}); err != nil {
		t.Fatalf("Execute(ToolSwitch) error = %v", err)
	}
	if len(store.tools) != 1 || store.tools[0] != canvas.ToolEyedropper {
		t.Errorf("tools = %v, want [eyedropper]", store.tools)
	}
}

func TestShortcutResolverInvoked(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, 8, 8)

	var got []int
	d.SetShortcutFunc(func(fingers int) { got = append(got, fingers) })

	if err := d.Execute(gesture.Shortcut{Fingers: 3}); err != nil {
		t.Fatalf("Execute(Shortcut) error = %v", err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("shortcut resolver got %v, want [3]", got)
	}
}

func TestDrawWithoutBuffer(t *testing.T) {
	d := New(Config{})
	err := d.Execute(gesture.Draw{GestureID: uuid.New(), Tool: pencilState(), At: canvas.Pixel{X: 0, Y: 0}})
	if err == nil {
		t.Error("Execute(Draw) without buffer error = nil, want ErrNilBuffer")
	}
}

func TestBrushSizeStampsSquare(t *testing.T) {
	d, buf, _, _ := newTestDispatcher(t, 16, 16)
	tool := pencilState()
	tool.BrushSize = 3

	if err := d.Execute(gesture.Draw{GestureID: uuid.New(), Tool: tool, At: canvas.Pixel{X: 8, Y: 8}}); err != nil {
		t.Fatalf("Execute(Draw) error = %v", err)
	}

	for y := 7; y <= 9; y++ {
		for x := 7; x <= 9; x++ {
			if buf.GetPixel(x, y).Transparent() {
				t.Errorf("brush miss at (%d, %d)", x, y)
			}
		}
	}
	if !buf.GetPixel(6, 8).Transparent() {
		t.Error("brush painted outside its 3x3 stamp")
	}
}
