package gesture

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/input/pointer"
)

// Classification errors. These indicate inconsistent touch bookkeeping;
// the caller resets the classifier to idle on any of them.
var (
	// ErrDuplicateTouch indicates a begin for an already-tracked identifier.
	ErrDuplicateTouch = errors.New("gesture: duplicate touch identifier")

	// ErrUnknownTouch indicates a move for an untracked identifier.
	ErrUnknownTouch = errors.New("gesture: unknown touch identifier")
)

// Classifier is the per-session gesture state machine. It tracks active
// touch identifiers and maintains at most one Gesture at a time, emitting
// Commands through the emit callback.
//
// All methods are safe for concurrent use, though the host contract is
// single-threaded event dispatch; the mutex exists because the long-press
// timer fires on its own goroutine.
type Classifier struct {
	mu   sync.Mutex
	cfg  Config
	emit func(Command)

	state   State
	gesture *Gesture
	touches *touchTracker

	// Single-contact tracking.
	tool       canvas.ToolState // snapshot at gesture start
	frame      Frame            // latest frame, for timer-fired decisions
	startPoint pointer.Point
	lastPoint  pointer.Point
	lastPixel  canvas.Pixel
	travel     float64 // cumulative displacement in screen px
	drew       bool    // at least one draw emitted this gesture
	frozen     bool    // second finger canceled the draw candidate

	// Long-press timer. The generation counter discards firings scheduled
	// before the most recent cancel.
	longPress    *time.Timer
	longPressGen uint64

	// Two-touch tracking.
	initCX, initCY float64
	initSpread     float64

	// Multi-finger shortcut tracking: highest finger count already fired.
	firedFingers int
}

// NewClassifier creates a classifier. Commands are delivered synchronously
// through emit, except the long-press tool switch which is delivered from
// the timer goroutine.
func NewClassifier(cfg Config, emit func(Command)) *Classifier {
	if emit == nil {
		emit = func(Command) {}
	}
	if cfg.LongPressDelay <= 0 {
		cfg.LongPressDelay = DefaultConfig().LongPressDelay
	}
	if cfg.ZoomThreshold <= 0 {
		cfg.ZoomThreshold = DefaultConfig().ZoomThreshold
	}
	if cfg.PanThreshold <= 0 {
		cfg.PanThreshold = DefaultConfig().PanThreshold
	}
	return &Classifier{
		cfg:     cfg,
		emit:    emit,
		touches: newTouchTracker(),
	}
}

// State returns the current classifier state.
func (c *Classifier) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns a copy of the active gesture, or nil when idle.
func (c *Classifier) Active() *Gesture {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gesture == nil {
		return nil
	}
	cp := *c.gesture
	cp.Points = append([]pointer.Point(nil), c.gesture.Points...)
	return &cp
}

// TouchCount returns the number of currently-down contacts.
func (c *Classifier) TouchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touches.count()
}

// Handle feeds one normalized event into the state machine.
func (c *Classifier) Handle(phase pointer.Phase, points []pointer.Point, frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame = frame

	switch phase {
	case pointer.PhaseBegin:
		return c.handleBegin(points, frame)
	case pointer.PhaseMove:
		return c.handleMove(points, frame)
	case pointer.PhaseEnd:
		c.handleEnd(points)
		return nil
	case pointer.PhaseCancel:
		c.resetLocked()
		return nil
	default:
		return fmt.Errorf("gesture: unhandled phase %d", phase)
	}
}

// Reset is the fail-safe: discard all touch tracking and gesture state
// without committing anything.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Close stops the long-press timer and resets. Safe to call repeatedly.
func (c *Classifier) Close() {
	c.Reset()
}

func (c *Classifier) handleBegin(points []pointer.Point, frame Frame) error {
	for _, p := range points {
		if !c.touches.add(p) {
			return fmt.Errorf("%w: %d", ErrDuplicateTouch, p.ID)
		}
		if err := c.contactAdded(p, frame); err != nil {
			return err
		}
	}
	return nil
}

// contactAdded advances the state machine for one new contact.
func (c *Classifier) contactAdded(p pointer.Point, frame Frame) error {
	switch n := c.touches.count(); {
	case n == 1:
		c.beginSingle(p, frame)
	case n == 2:
		c.beginTwoTouch()
	default:
		c.beginShortcut(n)
	}
	return nil
}

// beginSingle starts the drawing candidate. The first contact issues a
// draw immediately, before any second-finger disambiguation; a fast
// pinch-start can therefore leave one painted pixel behind.
func (c *Classifier) beginSingle(p pointer.Point, frame Frame) {
	c.state = StateSingleActive
	c.tool = frame.Tool
	c.startPoint = p
	c.lastPoint = p
	c.travel = 0
	c.drew = false
	c.frozen = false
	c.firedFingers = 0
	c.gesture = &Gesture{
		ID:         uuid.New(),
		Type:       TypeTap,
		StartTime:  p.Time,
		Points:     []pointer.Point{p},
		Confidence: 1.0,
	}
	if c.gesture.StartTime.IsZero() {
		c.gesture.StartTime = time.Now()
	}

	c.armLongPress()

	px := canvas.ScreenToPixel(p.X, p.Y, frame.Rect, frame.View)
	c.lastPixel = px
	if c.tool.Tool != canvas.ToolPan {
		c.drew = true
		c.emit(Draw{
			GestureID: c.gesture.ID,
			Tool:      c.tool,
			At:        px,
			Pressure:  p.Pressure,
		})
	}
}

// beginTwoTouch cancels the draw/long-press candidate and starts
// two-finger disambiguation. Pixels already painted stay in the buffer.
func (c *Classifier) beginTwoTouch() {
	c.cancelLongPress()
	c.frozen = true
	c.state = StateTwoTouchActive
	if c.gesture != nil {
		c.gesture.Confidence = 0.5
	}
	c.initCX, c.initCY = c.touches.centroid()
	c.initSpread = c.touches.spread()
}

// beginShortcut fires the multi-finger mapping once per escalation.
func (c *Classifier) beginShortcut(fingers int) {
	c.cancelLongPress()
	c.frozen = true
	c.state = StateMultiFingerShortcut
	if c.gesture != nil {
		c.gesture.Type = TypeShortcut
		c.gesture.Confidence = 1.0
	}
	if (fingers == 3 || fingers == 4) && fingers > c.firedFingers {
		c.firedFingers = fingers
		c.emit(Shortcut{Fingers: fingers})
	}
}

func (c *Classifier) handleMove(points []pointer.Point, frame Frame) error {
	if c.state == StateIdle {
		// Hover movement with no contact down.
		return nil
	}

	for _, p := range points {
		if !c.touches.update(p) {
			return fmt.Errorf("%w: %d", ErrUnknownTouch, p.ID)
		}
		if c.gesture != nil {
			c.gesture.Points = append(c.gesture.Points, p)
		}
	}

	switch c.state {
	case StateSingleActive:
		c.moveSingle(points, frame)
	case StateTwoTouchActive, StateTwoTouchPan, StateTwoTouchZoom:
		c.moveTwoTouch()
	case StateLongPressActive, StateMultiFingerShortcut:
		// Movement is ignored after these classifications.
	}
	return nil
}

func (c *Classifier) moveSingle(points []pointer.Point, frame Frame) {
	if len(points) == 0 || c.frozen {
		return
	}
	p := points[len(points)-1]
	c.travel += c.lastPoint.DistanceTo(p)
	prev := c.lastPoint
	c.lastPoint = p

	if c.travel <= c.cfg.JitterThreshold {
		return
	}

	// Past the jitter threshold: this is a drag, never a long-press.
	c.cancelLongPress()
	c.gesture.Type = TypeDrag
	c.gesture.Confidence = 0.9

	if c.tool.Tool == canvas.ToolPan {
		c.emit(Pan{DeltaX: p.X - prev.X, DeltaY: p.Y - prev.Y})
		return
	}

	px := canvas.ScreenToPixel(p.X, p.Y, frame.Rect, frame.View)
	prevPx := c.lastPixel
	c.lastPixel = px
	c.drew = true
	c.emit(Draw{
		GestureID: c.gesture.ID,
		Tool:      c.tool,
		At:        px,
		Prev:      &prevPx,
		Pressure:  p.Pressure,
	})
}

// moveTwoTouch reclassifies on every move: zoom wins over pan, and the two
// are mutually exclusive per event.
func (c *Classifier) moveTwoTouch() {
	if c.touches.count() != 2 || c.initSpread <= 0 {
		return
	}

	cx, cy := c.touches.centroid()
	scale := c.touches.spread() / c.initSpread
	dcx := cx - c.initCX
	dcy := cy - c.initCY

	switch {
	case math.Abs(scale-1) > c.cfg.ZoomThreshold:
		c.state = StateTwoTouchZoom
		c.gesture.Type = TypeZoom
		c.gesture.Confidence = 0.9
		c.emit(Zoom{Scale: scale, CenterX: cx, CenterY: cy})
	case math.Abs(dcx) > c.cfg.PanThreshold || math.Abs(dcy) > c.cfg.PanThreshold:
		c.state = StateTwoTouchPan
		c.gesture.Type = TypePan
		c.gesture.Confidence = 0.8
		c.emit(Pan{DeltaX: dcx, DeltaY: dcy})
	}
}

func (c *Classifier) handleEnd(points []pointer.Point) {
	for _, p := range points {
		c.touches.remove(p.ID)
	}
	if c.touches.count() > 0 {
		// Fingers remain down; the gesture stays frozen until the last
		// one lifts.
		return
	}

	// All contacts released.
	if c.state == StateSingleActive && c.drew && !c.frozen && c.gesture != nil {
		c.emit(Commit{GestureID: c.gesture.ID, Tool: c.tool})
	}
	c.resetLocked()
}

// armLongPress schedules the long-press classification.
func (c *Classifier) armLongPress() {
	c.cancelLongPress()
	gen := c.longPressGen
	c.longPress = time.AfterFunc(c.cfg.LongPressDelay, func() {
		c.fireLongPress(gen)
	})
}

// cancelLongPress stops the pending timer and invalidates scheduled
// firings.
func (c *Classifier) cancelLongPress() {
	c.longPressGen++
	if c.longPress != nil {
		c.longPress.Stop()
		c.longPress = nil
	}
}

// fireLongPress runs on the timer goroutine.
func (c *Classifier) fireLongPress(gen uint64) {
	c.mu.Lock()
	if gen != c.longPressGen || c.state != StateSingleActive || c.frozen {
		c.mu.Unlock()
		return
	}
	if c.travel > c.cfg.JitterThreshold {
		c.mu.Unlock()
		return
	}

	c.state = StateLongPressActive
	c.gesture.Type = TypeLongPress
	c.gesture.Confidence = 1.0
	emit := c.emit
	c.mu.Unlock()

	// No pixel mutation: a long-press only switches the tool.
	emit(ToolSwitch{Tool: canvas.ToolEyedropper, Haptic: true})
}

func (c *Classifier) resetLocked() {
	c.cancelLongPress()
	c.touches.clear()
	c.gesture = nil
	c.state = StateIdle
	c.travel = 0
	c.drew = false
	c.frozen = false
	c.firedFingers = 0
	c.initSpread = 0
}
