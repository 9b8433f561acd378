package input

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/dispatcher"
	"github.com/dshills/pixelstorm/internal/haptics"
	"github.com/dshills/pixelstorm/internal/input/gesture"
	"github.com/dshills/pixelstorm/internal/input/keymap"
	"github.com/dshills/pixelstorm/internal/input/pointer"
	"github.com/dshills/pixelstorm/internal/recovery"
	"github.com/dshills/pixelstorm/internal/telemetry"
)

// Config configures the input handler.
type Config struct {
	// Gesture tunes the classifier thresholds.
	Gesture gesture.Config

	// Governor tunes the performance budgets.
	Governor dispatcher.GovernorConfig

	// Dispatch configures the draw dispatcher.
	Dispatch dispatcher.Config
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Gesture:  gesture.DefaultConfig(),
		Governor: dispatcher.DefaultGovernorConfig(),
	}
}

// Options carries optional collaborators. Nil fields become no-ops.
type Options struct {
	Logger   *zap.Logger
	Recorder telemetry.Recorder
	Haptics  haptics.Requester
	Notifier recovery.Notifier
}

// Handler is the public entry point for input processing. It owns the
// normalizer, gesture classifier, and dispatcher, and wraps every stage
// with error recovery and governor measurement.
type Handler struct {
	mu sync.RWMutex

	config Config
	logger *zap.Logger

	normalizer *Normalizer
	classifier *gesture.Classifier
	dispatcher *dispatcher.Dispatcher
	governor   *dispatcher.Governor
	recovery   *recovery.Recovery
	keymap     *keymap.Registry
	metrics    *Metrics

	// actionFn receives non-tool keymap actions (undo, redo). The session
	// wires it; nil means those keys are ignored.
	actionFn func(action string)

	closed bool
}

// NewHandler creates a handler with its full pipeline assembled.
func NewHandler(config Config, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = telemetry.Nop{}
	}

	h := &Handler{
		config:     config,
		logger:     logger,
		normalizer: NewNormalizer(logger),
		dispatcher: dispatcher.New(config.Dispatch),
		governor:   dispatcher.NewGovernor(config.Governor, logger, recorder),
		recovery:   recovery.New(logger, recorder, opts.Haptics, opts.Notifier),
		keymap:     keymap.NewRegistry(),
		metrics:    NewMetrics(),
	}
	h.dispatcher.SetHaptics(opts.Haptics)
	h.classifier = gesture.NewClassifier(config.Gesture, h.dispatchCommand)
	keymap.LoadDefaults(h.keymap)

	// A malformed platform event is dropped where it stands: counted and
	// logged, but the gesture in flight keeps its state.
	h.recovery.Register("normalizer", recovery.CategoryInputProcessing, recovery.Drop{})

	// Classification errors mean the touch bookkeeping is inconsistent;
	// the only safe recovery is a reset to idle.
	h.recovery.Register("classifier", recovery.CategoryGestureRecognition, recovery.Fallback{
		Fn: func() error {
			h.classifier.Reset()
			return nil
		},
	})

	// The fail-safe may fire while an event still holds the classifier
	// lock, so the reset runs on its own goroutine.
	h.recovery.SetFailSafe(func() {
		go h.classifier.Reset()
	})

	return h
}

// HandlePointer processes one raw platform pointer event against the given
// frame (active tool, view transform, canvas rect).
func (h *Handler) HandlePointer(ev pointer.RawEvent, frame gesture.Frame) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil
	}

	timer := h.metrics.StartPointerTimer()
	defer timer.Stop()
	h.metrics.RecordPointerEvent()

	var points []pointer.Point
	err := h.recovery.Do(recovery.CategoryInputProcessing, "normalizer", "normalize", func() error {
		var nerr error
		points, nerr = h.normalizer.Normalize(ev)
		return nerr
	})
	if err != nil {
		h.metrics.RecordDroppedEvent()
		return err
	}

	op := "pointer_" + ev.Phase.String()
	return h.recovery.Do(recovery.CategoryGestureRecognition, "classifier", op, func() error {
		return h.governor.Measure(op, true, func() error {
			return h.classifier.Handle(ev.Phase, points, frame)
		})
	})
}

// HandleKey processes one keyboard shortcut. Keys are ignored while focus
// is in a text input.
func (h *Handler) HandleKey(key rune, focusInText bool) error {
	h.mu.RLock()
	closed := h.closed
	actionFn := h.actionFn
	h.mu.RUnlock()
	if closed {
		return nil
	}

	h.metrics.RecordKeyEvent()
	if focusInText {
		return nil
	}

	action, ok := h.keymap.Lookup(key)
	if !ok {
		return nil
	}

	if name, isTool := strings.CutPrefix(action, "tool."); isTool {
		tool := canvas.ParseTool(name)
		if tool == canvas.ToolNone {
			return nil
		}
		h.dispatchCommand(gesture.ToolSwitch{Tool: tool})
		return nil
	}

	if actionFn != nil {
		actionFn(action)
	}
	return nil
}

// dispatchCommand executes one classifier command through the governor and
// recovery wrappers. It also serves as the classifier's emit callback, so
// it must never call back into the classifier on the failure path.
func (h *Handler) dispatchCommand(cmd gesture.Command) {
	timer := h.metrics.StartCommandTimer()
	defer timer.StopCommand()

	op := "dispatch_" + cmd.Name()
	err := h.recovery.Do(recovery.CategoryDrawApplication, "dispatcher", op, func() error {
		return h.governor.Measure(op, false, func() error {
			return h.dispatcher.Execute(cmd)
		})
	})
	if err != nil {
		h.metrics.RecordFailedCommand()
	}
}

// SetActionFunc wires the receiver for non-tool keymap actions.
func (h *Handler) SetActionFunc(fn func(action string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actionFn = fn
}

// Dispatcher returns the draw dispatcher for collaborator wiring.
func (h *Handler) Dispatcher() *dispatcher.Dispatcher {
	return h.dispatcher
}

// Governor returns the performance governor.
func (h *Handler) Governor() *dispatcher.Governor {
	return h.governor
}

// Recovery returns the error recovery coordinator.
func (h *Handler) Recovery() *recovery.Recovery {
	return h.recovery
}

// Keymap returns the keyboard binding registry.
func (h *Handler) Keymap() *keymap.Registry {
	return h.keymap
}

// Metrics returns the input processing counters.
func (h *Handler) Metrics() *Metrics {
	return h.metrics
}

// ClassifierState returns the current gesture classifier state.
func (h *Handler) ClassifierState() gesture.State {
	return h.classifier.State()
}

// Close shuts the pipeline down: the classifier drops all touch state and
// pending timers stop. Safe to call repeatedly.
func (h *Handler) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	h.classifier.Close()
	h.recovery.Close()
	h.governor.SetEnabled(false)
}

// IsClosed returns true if the handler has been closed.
func (h *Handler) IsClosed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.closed
}
