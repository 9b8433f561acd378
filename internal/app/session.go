// Package app wires one canvas session together: logger, telemetry,
// history, keymap, shortcut scripts, and the input pipeline. The Session is
// the object a host embeds per canvas tab.
package app

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/dispatcher"
	"github.com/dshills/pixelstorm/internal/haptics"
	"github.com/dshills/pixelstorm/internal/history"
	"github.com/dshills/pixelstorm/internal/input"
	"github.com/dshills/pixelstorm/internal/input/gesture"
	"github.com/dshills/pixelstorm/internal/input/pointer"
	"github.com/dshills/pixelstorm/internal/recovery"
	"github.com/dshills/pixelstorm/internal/script"
	"github.com/dshills/pixelstorm/internal/telemetry"
)

// Default zoom clamps applied when the config leaves them unset.
const (
	defaultMinZoom = 0.25
	defaultMaxZoom = 32.0
)

// Options carries optional session collaborators. Nil fields become no-ops.
type Options struct {
	Logger   *zap.Logger
	Recorder telemetry.Recorder
	Haptics  haptics.Requester
	Notifier recovery.Notifier
}

// Session is one canvas input session. It owns the pixel buffer, the view
// transform, the active tool, and the full input pipeline.
type Session struct {
	mu sync.RWMutex

	id     uuid.UUID
	cfg    Config
	logger *zap.Logger

	buffer  *canvas.Buffer
	history *history.Stack
	scripts *script.Engine
	handler *input.Handler

	tool      canvas.ToolState
	view      canvas.ViewTransform
	rect      canvas.Rect
	selection []bool

	closeOnce sync.Once
	closed    bool
}

// NewSession constructs and wires a session from the configuration.
func NewSession(cfg Config, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(cfg.Log)
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = telemetry.NewZapRecorder(logger)
	}

	buf, err := canvas.NewBuffer(cfg.Canvas.Width, cfg.Canvas.Height)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      uuid.New(),
		cfg:     cfg,
		logger:  logger,
		buffer:  buf,
		history: history.NewStack(cfg.HistoryLimit),
		scripts: script.NewEngine(script.DefaultConfig(), logger),
		tool: canvas.ToolState{
			Tool:      canvas.ToolPencil,
			Color:     canvas.Color{A: 255},
			BrushSize: 1,
		},
		view: canvas.ViewTransform{Zoom: 1},
	}

	handlerCfg := input.DefaultConfig()
	handlerCfg.Gesture = gestureConfig(cfg.Gesture)
	handlerCfg.Governor = governorConfig(cfg.Governor)
	handlerCfg.Dispatch = dispatcher.Config{
		TabID:         cfg.TabID,
		FillTolerance: cfg.FillTolerance,
	}
	s.handler = input.NewHandler(handlerCfg, input.Options{
		Logger:   logger,
		Recorder: recorder,
		Haptics:  opts.Haptics,
		Notifier: opts.Notifier,
	})
	s.handler.Dispatcher().SetBuffer(buf)
	s.handler.Dispatcher().SetHistory(s.history)
	s.handler.Dispatcher().SetStore(&sessionStore{s: s})
	s.handler.Dispatcher().SetShortcutFunc(s.resolveShortcut)
	s.handler.SetActionFunc(s.applyAction)

	if cfg.KeymapFile != "" {
		if err := s.loadKeymap(cfg.KeymapFile); err != nil {
			logger.Warn("keymap overrides not loaded",
				zap.String("file", cfg.KeymapFile),
				zap.Error(err),
			)
		}
	}
	for fingers, source := range cfg.Shortcuts {
		if err := s.scripts.Bind(fingers, source); err != nil {
			logger.Warn("shortcut script rejected",
				zap.Int("fingers", fingers),
				zap.Error(err),
			)
		}
	}

	logger.Info("session created",
		zap.String("session", s.id.String()),
		zap.Int("width", cfg.Canvas.Width),
		zap.Int("height", cfg.Canvas.Height),
	)
	return s, nil
}

func gestureConfig(g GestureConfig) gesture.Config {
	cfg := gesture.DefaultConfig()
	if d := g.longPressDelay(); d > 0 {
		cfg.LongPressDelay = d
	}
	if g.JitterPx > 0 {
		cfg.JitterThreshold = g.JitterPx
	}
	if g.ZoomThreshold > 0 {
		cfg.ZoomThreshold = g.ZoomThreshold
	}
	if g.PanThresholdPx > 0 {
		cfg.PanThreshold = g.PanThresholdPx
	}
	return cfg
}

func governorConfig(g GovernorConfig) dispatcher.GovernorConfig {
	cfg := dispatcher.DefaultGovernorConfig()
	if g.WindowSize > 0 {
		cfg.WindowSize = g.WindowSize
	}
	if g.GeneralMS > 0 {
		cfg.GeneralThreshold = msDuration(g.GeneralMS)
	}
	if g.CriticalMS > 0 {
		cfg.CriticalThreshold = msDuration(g.CriticalMS)
	}
	return cfg
}

// HandlePointer feeds one raw pointer event through the pipeline using the
// session's current frame snapshot.
func (s *Session) HandlePointer(ev pointer.RawEvent) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSessionClosed
	}
	frame := gesture.Frame{Tool: s.tool, View: s.view, Rect: s.rect}
	s.mu.RUnlock()

	return s.handler.HandlePointer(ev, frame)
}

// HandleKey feeds one keyboard shortcut through the pipeline.
func (s *Session) HandleKey(key rune, focusInText bool) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSessionClosed
	}
	return s.handler.HandleKey(key, focusInText)
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Buffer returns the live pixel buffer.
func (s *Session) Buffer() *canvas.Buffer {
	return s.buffer
}

// Handler returns the input pipeline entry point.
func (s *Session) Handler() *input.Handler {
	return s.handler
}

// History returns the undo/redo stack.
func (s *Session) History() *history.Stack {
	return s.history
}

// Scripts returns the shortcut script engine.
func (s *Session) Scripts() *script.Engine {
	return s.scripts
}

// Tool returns the active tool state snapshot.
func (s *Session) Tool() canvas.ToolState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

// SetTool switches the active tool.
func (s *Session) SetTool(tool canvas.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool.Tool = tool
}

// SetColor sets the active draw color.
func (s *Session) SetColor(c canvas.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool.Color = c
}

// SetBrushSize sets the brush footprint edge length.
func (s *Session) SetBrushSize(size int) {
	if size < 1 {
		size = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool.BrushSize = size
}

// View returns the current view transform.
func (s *Session) View() canvas.ViewTransform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetRect updates the canvas element's screen rectangle.
func (s *Session) SetRect(r canvas.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rect = r
}

// Rect returns the canvas element's screen rectangle.
func (s *Session) Rect() canvas.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rect
}

// Selection returns the latest magic-wand mask, indexed y*width+x, or nil.
func (s *Session) Selection() []bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selection == nil {
		return nil
	}
	out := make([]bool, len(s.selection))
	copy(out, s.selection)
	return out
}

// Undo restores the buffer to the state before the most recent commit.
func (s *Session) Undo() error {
	entry, err := s.history.Undo()
	if err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			return nil
		}
		return err
	}
	if entry == nil {
		// Before the first commit the canvas was blank.
		s.buffer.Fill(canvas.Color{})
		return nil
	}
	return s.restore(entry.Snapshot)
}

// Redo re-applies the most recently undone commit.
func (s *Session) Redo() error {
	entry, err := s.history.Redo()
	if err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			return nil
		}
		return err
	}
	return s.restore(entry.Snapshot)
}

func (s *Session) restore(snap *canvas.Buffer) error {
	if snap == nil {
		return nil
	}
	if snap.Width() != s.buffer.Width() || snap.Height() != s.buffer.Height() {
		return ErrSnapshotMismatch
	}
	copy(s.buffer.Data(), snap.Data())
	return nil
}

// resolveShortcut handles a multi-finger shortcut. A bound script takes
// precedence; the fixed mapping covers the rest: three fingers cycle the
// tool, four fingers undo.
func (s *Session) resolveShortcut(fingers int) {
	if s.scripts.Has(fingers) {
		action, err := s.scripts.Run(fingers)
		if err == nil && action != "" {
			s.applyAction(action)
			return
		}
	}

	switch fingers {
	case 3:
		s.cycleTool()
	case 4:
		if err := s.Undo(); err != nil {
			s.logger.Warn("shortcut undo failed", zap.Error(err))
		}
	}
}

// applyAction executes a named keymap/script action.
func (s *Session) applyAction(action string) {
	switch action {
	case "history.undo":
		if err := s.Undo(); err != nil {
			s.logger.Warn("undo failed", zap.Error(err))
		}
	case "history.redo":
		if err := s.Redo(); err != nil {
			s.logger.Warn("redo failed", zap.Error(err))
		}
	default:
		if name, ok := strings.CutPrefix(action, "tool."); ok {
			if tool := canvas.ParseTool(name); tool != canvas.ToolNone {
				s.SetTool(tool)
			}
		}
	}
}

// cycleTool advances the active tool through the mutating tools.
func (s *Session) cycleTool() {
	order := []canvas.Tool{
		canvas.ToolPencil,
		canvas.ToolEraser,
		canvas.ToolFill,
		canvas.ToolMagicWand,
		canvas.ToolEyedropper,
		canvas.ToolPan,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range order {
		if t == s.tool.Tool {
			s.tool.Tool = order[(i+1)%len(order)]
			return
		}
	}
	s.tool.Tool = canvas.ToolPencil
}

// loadKeymap merges a JSON bindings file over the defaults.
func (s *Session) loadKeymap(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.handler.Keymap().LoadJSON(data)
}

// Close tears the session down exactly once: the pipeline stops, scripts
// release their state, and buffered log entries flush.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.handler.Close()
		s.scripts.Close()
		s.logger.Info("session closed", zap.String("session", s.id.String()))
		_ = s.logger.Sync()
	})
}

// IsClosed returns true if the session has been closed.
func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// sessionStore adapts the session to the dispatcher's Store interface.
// Pan/zoom requests mutate the session view; the dispatcher itself never
// touches the transform.
type sessionStore struct {
	s *Session
}

func (st *sessionStore) OnDrawMutation(*canvas.Buffer) {}

func (st *sessionStore) OnPan(dx, dy float64) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.view.PanX += dx
	st.s.view.PanY += dy
}

func (st *sessionStore) OnZoom(scale, centerX, centerY float64) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	view := st.s.view
	oldZoom := view.Zoom
	if oldZoom <= 0 {
		oldZoom = 1
	}

	minZoom, maxZoom := st.s.cfg.Gesture.MinZoom, st.s.cfg.Gesture.MaxZoom
	if minZoom <= 0 {
		minZoom = defaultMinZoom
	}
	if maxZoom <= 0 {
		maxZoom = defaultMaxZoom
	}

	newZoom := clampFloat(oldZoom*scale, minZoom, maxZoom)
	applied := newZoom / oldZoom

	// Keep the pinch center stationary on screen.
	cx := centerX - st.s.rect.Left
	cy := centerY - st.s.rect.Top
	view.PanX = cx - applied*(cx-view.PanX)
	view.PanY = cy - applied*(cy-view.PanY)
	view.Zoom = newZoom
	st.s.view = view
}

func (st *sessionStore) OnToolSelect(tool canvas.Tool) {
	st.s.SetTool(tool)
}

func (st *sessionStore) OnColorPick(c canvas.Color) {
	st.s.SetColor(c)
}

func (st *sessionStore) OnSelection(mask []bool) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.selection = mask
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
