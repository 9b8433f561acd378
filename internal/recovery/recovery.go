package recovery

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/pixelstorm/internal/haptics"
	"github.com/dshills/pixelstorm/internal/telemetry"
)

// Strategy is a declared recovery path for a class of failures.
// Exactly one of the concrete types below is registered per
// (component, category) pair.
type Strategy interface {
	strategy()
}

// Retry re-runs the failed operation a bounded number of times with
// exponential backoff. Backoff runs on deferred timers so input handling
// is never blocked.
type Retry struct {
	// MaxAttempts is the total attempt budget including the original call.
	MaxAttempts int
	// BaseDelay is the delay before the first retry; each subsequent
	// retry doubles it.
	BaseDelay time.Duration
}

func (Retry) strategy() {}

// Fallback swaps to an alternative code path.
type Fallback struct {
	Fn func() error
}

func (Fallback) strategy() {}

// Degrade keeps going with reduced functionality and an advisory notice.
type Degrade struct {
	// Apply switches the degraded behavior on. May be nil.
	Apply func()
}

func (Degrade) strategy() {}

// Drop discards the failed operation. The error is logged, recorded, and
// returned to the caller, but nothing is surfaced to the user and the
// fail-safe never fires, so in-flight state is left untouched.
type Drop struct{}

func (Drop) strategy() {}

// Notifier receives user-facing messages. Implemented by the host's toast
// or status-bar surface.
type Notifier interface {
	Notify(msg UserMessage)
}

// NopNotifier discards all messages.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(UserMessage) {}

type strategyKey struct {
	component string
	category  Category
}

// Recovery wraps handler invocations and applies registered strategies.
// One instance per canvas session; no global state.
type Recovery struct {
	mu         sync.Mutex
	strategies map[strategyKey]Strategy
	timers     map[*time.Timer]struct{}
	closed     bool

	logger   *zap.Logger
	recorder telemetry.Recorder
	haptics  haptics.Requester
	notifier Notifier

	// failSafe resets the classifier to idle when recovery gives up.
	failSafe func()
}

// New creates a Recovery. Nil collaborators are replaced with no-ops.
func New(logger *zap.Logger, recorder telemetry.Recorder, hap haptics.Requester, notifier Notifier) *Recovery {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = telemetry.Nop{}
	}
	if hap == nil {
		hap = haptics.Nop{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Recovery{
		strategies: make(map[strategyKey]Strategy),
		timers:     make(map[*time.Timer]struct{}),
		logger:     logger,
		recorder:   recorder,
		haptics:    hap,
		notifier:   notifier,
	}
}

// SetFailSafe registers the classifier reset invoked when recovery fails.
func (r *Recovery) SetFailSafe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failSafe = fn
}

// Register declares the strategy for a (component, category) pair.
// Component "" registers a category-wide default.
func (r *Recovery) Register(component string, category Category, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[strategyKey{component, category}] = s
}

// Do runs fn under panic protection and applies the registered strategy on
// failure. It returns the categorized error of the original attempt;
// retry-based recovery continues in the background.
func (r *Recovery) Do(category Category, component, op string, fn func() error) error {
	err := r.guard(component, op, fn)
	if err == nil {
		return nil
	}

	cerr := NewError(category, component, op, err)
	r.logger.Warn("handler error",
		zap.String("component", component),
		zap.String("operation", op),
		zap.String("errorType", category.String()),
		zap.String("message", err.Error()),
	)
	r.recorder.Record(component, "error", map[string]any{
		"operation": op,
		"category":  category.String(),
	})

	switch s := r.strategyFor(component, category).(type) {
	case Retry:
		r.scheduleRetry(cerr, s, fn, 1)
	case Fallback:
		if s.Fn != nil {
			if fbErr := r.guard(component, op+"_fallback", s.Fn); fbErr == nil {
				r.recorder.Record(component, "recovered", map[string]any{"operation": op, "via": "fallback"})
				return nil
			}
		}
		r.surface(cerr)
	case Degrade:
		if s.Apply != nil {
			s.Apply()
		}
		msg := msgPerformance
		r.notifier.Notify(msg)
		r.haptics.Request(msg.Haptic)
		return nil
	case Drop:
	default:
		r.surface(cerr)
	}

	return cerr
}

// guard invokes fn, converting panics into errors.
func (r *Recovery) guard(component, op string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrHandlerPanic, component, op, rec)
		}
	}()
	return fn()
}

func (r *Recovery) strategyFor(component string, category Category) Strategy {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.strategies[strategyKey{component, category}]; ok {
		return s
	}
	return r.strategies[strategyKey{"", category}]
}

// scheduleRetry arms a deferred re-attempt. Attempt counts the retries
// already consumed.
func (r *Recovery) scheduleRetry(cerr *CategorizedError, s Retry, fn func() error, attempt int) {
	if attempt >= s.MaxAttempts {
		r.surface(NewError(cerr.Category, cerr.Component, cerr.Op, ErrRetriesExhausted))
		return
	}

	delay := s.BaseDelay << (attempt - 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, timer)
		closed := r.closed
		r.mu.Unlock()
		if closed {
			return
		}

		if err := r.guard(cerr.Component, cerr.Op, fn); err == nil {
			r.recorder.Record(cerr.Component, "recovered", map[string]any{
				"operation": cerr.Op,
				"via":       "retry",
				"attempts":  attempt + 1,
			})
			return
		}
		r.scheduleRetry(cerr, s, fn, attempt+1)
	})
	r.timers[timer] = struct{}{}
	r.mu.Unlock()
}

// surface emits the categorized user-facing outcome and trips the
// fail-safe classifier reset.
func (r *Recovery) surface(cerr *CategorizedError) {
	msg := MessageFor(cerr, cerr.Component, cerr.Op)
	r.notifier.Notify(msg)
	r.haptics.Request(msg.Haptic)

	r.mu.Lock()
	failSafe := r.failSafe
	r.mu.Unlock()
	if failSafe != nil {
		failSafe()
	}
}

// Close cancels pending retries. Safe to call more than once.
func (r *Recovery) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for timer := range r.timers {
		timer.Stop()
	}
	r.timers = map[*time.Timer]struct{}{}
}
