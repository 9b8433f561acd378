package dispatcher

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/haptics"
	"github.com/dshills/pixelstorm/internal/input/gesture"
)

// History receives at most one commit per completed draw gesture,
// carrying the final buffer state and an operation label.
type History interface {
	Commit(gestureID uuid.UUID, tabID, label string, buf *canvas.Buffer)
}

// Store is the host canvas/view store receiving mutation notifications and
// view-transform requests. The dispatcher never mutates the view itself.
type Store interface {
	// OnDrawMutation reports that the buffer changed in place.
	OnDrawMutation(buf *canvas.Buffer)

	// OnPan requests a viewport translation.
	OnPan(dx, dy float64)

	// OnZoom requests a viewport scale about a screen-space center.
	OnZoom(scale, centerX, centerY float64)

	// OnToolSelect requests an active-tool change.
	OnToolSelect(tool canvas.Tool)

	// OnColorPick reports an eyedropper sample.
	OnColorPick(c canvas.Color)

	// OnSelection reports a magic-wand region mask, indexed y*width+x.
	OnSelection(mask []bool)
}

// NopStore discards all notifications.
type NopStore struct{}

// OnDrawMutation implements Store.
func (NopStore) OnDrawMutation(*canvas.Buffer) {}

// OnPan implements Store.
func (NopStore) OnPan(float64, float64) {}

// OnZoom implements Store.
func (NopStore) OnZoom(float64, float64, float64) {}

// OnToolSelect implements Store.
func (NopStore) OnToolSelect(canvas.Tool) {}

// OnColorPick implements Store.
func (NopStore) OnColorPick(canvas.Color) {}

// OnSelection implements Store.
func (NopStore) OnSelection([]bool) {}

// Config configures the dispatcher.
type Config struct {
	// TabID identifies the host tab/project in history commits.
	TabID string

	// FillTolerance is the perceptual color-match tolerance for flood
	// fill and magic wand. Zero means exact match.
	FillTolerance float64
}

// Dispatcher applies gesture commands. It is the single writer of the
// pixel buffer; the one-active-gesture invariant upstream guarantees two
// logical gestures never write concurrently.
type Dispatcher struct {
	mu sync.RWMutex

	config Config
	buffer *canvas.Buffer

	history History
	store   Store
	haptics haptics.Requester

	// shortcutFn resolves multi-finger shortcuts; wired by the session to
	// the script engine plus the fixed mapping.
	shortcutFn func(fingers int)

	metrics *Metrics
}

// New creates a dispatcher with no collaborators attached.
func New(config Config) *Dispatcher {
	return &Dispatcher{
		config:  config,
		store:   NopStore{},
		haptics: haptics.Nop{},
		metrics: NewMetrics(),
	}
}

// SetBuffer attaches the pixel buffer. The host must not swap buffers
// mid-gesture.
func (d *Dispatcher) SetBuffer(buf *canvas.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffer = buf
}

// Buffer returns the attached pixel buffer.
func (d *Dispatcher) Buffer() *canvas.Buffer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.buffer
}

// SetHistory attaches the history/undo collaborator.
func (d *Dispatcher) SetHistory(h History) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = h
}

// SetStore attaches the canvas/view store.
func (d *Dispatcher) SetStore(s Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s == nil {
		s = NopStore{}
	}
	d.store = s
}

// SetHaptics attaches the haptic collaborator.
func (d *Dispatcher) SetHaptics(h haptics.Requester) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h == nil {
		h = haptics.Nop{}
	}
	d.haptics = h
}

// SetShortcutFunc wires the multi-finger shortcut resolver.
func (d *Dispatcher) SetShortcutFunc(fn func(fingers int)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shortcutFn = fn
}

// Metrics returns the dispatch counters.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Execute consumes one classifier command. The switch is the exhaustive
// dispatch table for the command union.
func (d *Dispatcher) Execute(cmd gesture.Command) error {
	switch c := cmd.(type) {
	case gesture.Draw:
		return d.applyDraw(c)
	case gesture.Commit:
		return d.applyCommit(c)
	case gesture.Pan:
		d.metrics.recordPan()
		d.collaborators().store.OnPan(c.DeltaX, c.DeltaY)
		return nil
	case gesture.Zoom:
		d.metrics.recordZoom()
		d.collaborators().store.OnZoom(c.Scale, c.CenterX, c.CenterY)
		return nil
	case gesture.ToolSwitch:
		co := d.collaborators()
		co.store.OnToolSelect(c.Tool)
		if c.Haptic {
			co.haptics.Request(haptics.PatternMedium)
		}
		return nil
	case gesture.Shortcut:
		d.mu.RLock()
		fn := d.shortcutFn
		d.mu.RUnlock()
		if fn != nil {
			fn(c.Fingers)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// snapshot of collaborators taken under the read lock.
type collabs struct {
	buffer  *canvas.Buffer
	history History
	store   Store
	haptics haptics.Requester
}

func (d *Dispatcher) collaborators() collabs {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return collabs{buffer: d.buffer, history: d.history, store: d.store, haptics: d.haptics}
}

// applyDraw applies the active tool at the command's pixel, interpolating
// from the previous drag sample when present. Out-of-bounds targets are
// silent no-ops, never errors.
func (d *Dispatcher) applyDraw(cmd gesture.Draw) error {
	co := d.collaborators()
	if co.buffer == nil {
		return ErrNilBuffer
	}
	buf := co.buffer

	switch cmd.Tool.Tool {
	case canvas.ToolPencil:
		n := d.stampPath(buf, cmd, func(x, y int) { buf.SetPixel(x, y, cmd.Tool.Color) })
		d.metrics.recordDraw(n)
		co.store.OnDrawMutation(buf)
	case canvas.ToolEraser:
		n := d.stampPath(buf, cmd, buf.ClearAlpha)
		d.metrics.recordDraw(n)
		co.store.OnDrawMutation(buf)
	case canvas.ToolFill:
		n := floodFill(buf, cmd.At, cmd.Tool.Color, d.config.FillTolerance)
		if n == 0 {
			d.metrics.recordClipped()
			return nil
		}
		d.metrics.recordFill(n)
		co.store.OnDrawMutation(buf)
	case canvas.ToolEyedropper:
		// Read-only: sampling never mutates the buffer.
		if buf.InBounds(cmd.At.X, cmd.At.Y) {
			co.store.OnColorPick(buf.GetPixel(cmd.At.X, cmd.At.Y))
		}
	case canvas.ToolMagicWand:
		if mask := magicWandMask(buf, cmd.At, d.config.FillTolerance); mask != nil {
			co.store.OnSelection(mask)
			co.haptics.Request(haptics.PatternSelection)
		}
	case canvas.ToolPan, canvas.ToolNone:
		// The classifier never routes these here; tolerate quietly.
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTool, cmd.Tool.Tool)
	}
	return nil
}

// stampPath applies one brush stamp per path pixel from the previous drag
// sample (exclusive) to the target (inclusive), and returns the number of
// in-bounds pixels touched.
func (d *Dispatcher) stampPath(buf *canvas.Buffer, cmd gesture.Draw, apply func(x, y int)) int {
	path := []canvas.Pixel{cmd.At}
	if cmd.Prev != nil {
		path = linePixels(*cmd.Prev, cmd.At)
	}

	size := cmd.Tool.BrushSize
	if size < 1 {
		size = 1
	}
	offset := size / 2

	touched := 0
	for _, p := range path {
		for dy := 0; dy < size; dy++ {
			for dx := 0; dx < size; dx++ {
				x := p.X - offset + dx
				y := p.Y - offset + dy
				if buf.InBounds(x, y) {
					apply(x, y)
					touched++
				} else {
					d.metrics.recordClipped()
				}
			}
		}
	}
	return touched
}

// applyCommit records the completed gesture in history, at most once.
// Read-only tools complete without a history entry.
func (d *Dispatcher) applyCommit(cmd gesture.Commit) error {
	co := d.collaborators()
	if !cmd.Tool.Tool.Mutates() {
		return nil
	}
	if co.buffer == nil {
		return ErrNilBuffer
	}
	if co.history != nil {
		co.history.Commit(cmd.GestureID, d.config.TabID, commitLabel(cmd.Tool.Tool), co.buffer)
		d.metrics.recordCommit()
	}
	return nil
}

func commitLabel(tool canvas.Tool) string {
	switch tool {
	case canvas.ToolEraser:
		return "eraser_erase"
	case canvas.ToolFill:
		return "fill_apply"
	default:
		return "pencil_draw"
	}
}
