// Package term is the terminal platform adapter. It converts tcell mouse
// and key events into the normalized pointer model and renders the pixel
// buffer as colored cells, one cell per screen unit.
//
// Terminals deliver a single pointer with no pressure, so the adapter
// reports no multi-touch capability; multi-finger gestures are exercised by
// touch-capable hosts and by tests.
package term

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pixelstorm/internal/canvas"
)

// Terminal wraps a tcell screen as a pointer source and canvas renderer.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminal allocates a terminal over a fresh tcell screen.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// Init takes over the terminal and enables mouse reporting.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	return nil
}

// Fini restores the terminal.
func (t *Terminal) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Fini()
}

// Size returns the screen dimensions in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

// PollEvent blocks for the next tcell event.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// SupportsMultiTouch implements pointer.Source. Terminals report one
// pointer at a time.
func (t *Terminal) SupportsMultiTouch() bool { return false }

// SupportsPressure implements pointer.Source.
func (t *Terminal) SupportsPressure() bool { return false }

// Render draws the buffer through the view transform. Each screen cell
// samples the pixel under it; transparent pixels show a checkerboard.
func (t *Terminal) Render(buf *canvas.Buffer, view canvas.ViewTransform, rect canvas.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()

	width, height := t.screen.Size()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := canvas.ScreenToPixel(float64(x), float64(y), rect, view)
			style := tcell.StyleDefault
			switch {
			case !buf.InBounds(px.X, px.Y):
				style = style.Background(tcell.ColorBlack)
			default:
				c := buf.GetPixel(px.X, px.Y)
				if c.A == 0 {
					style = style.Background(checkerColor(px.X, px.Y))
				} else {
					style = style.Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
				}
			}
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}
	t.screen.Show()
}

func checkerColor(x, y int) tcell.Color {
	if (x+y)%2 == 0 {
		return tcell.NewRGBColor(40, 40, 40)
	}
	return tcell.NewRGBColor(56, 56, 56)
}
