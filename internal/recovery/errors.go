// Package recovery wraps the core's public entry points, converting
// failures into categorized, recoverable, user-facing outcomes. Nothing
// that happens inside a handler may crash the host.
package recovery

import (
	"errors"
	"fmt"
)

// Recovery errors.
var (
	// ErrRetriesExhausted indicates all retry attempts failed.
	ErrRetriesExhausted = errors.New("recovery: retry attempts exhausted")

	// ErrNoStrategy indicates no recovery strategy is registered for the error.
	ErrNoStrategy = errors.New("recovery: no strategy registered")

	// ErrHandlerPanic indicates the wrapped handler panicked.
	ErrHandlerPanic = errors.New("recovery: handler panic")
)

// Category classifies an error for recovery and user messaging.
type Category uint8

const (
	// CategoryUnknown is the fallback category.
	CategoryUnknown Category = iota
	// CategoryInputProcessing marks malformed or incomplete input events.
	// Such events are dropped without touching gesture state.
	CategoryInputProcessing
	// CategoryGestureRecognition marks inconsistent touch bookkeeping.
	// The classifier resets to idle.
	CategoryGestureRecognition
	// CategoryDrawApplication marks invalid tool use or out-of-range
	// writes. Only the single pixel operation aborts; the gesture survives.
	CategoryDrawApplication
	// CategoryPerformanceDegradation marks advisory slow-path signals.
	CategoryPerformanceDegradation
)

// String returns a string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryInputProcessing:
		return "input-processing"
	case CategoryGestureRecognition:
		return "gesture-recognition"
	case CategoryDrawApplication:
		return "draw-application"
	case CategoryPerformanceDegradation:
		return "performance-degradation"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and origin.
type CategorizedError struct {
	Category  Category
	Component string // originating component (e.g. "classifier")
	Op        string // operation being performed (e.g. "pointer_move")
	Err       error
}

// NewError creates a categorized error.
func NewError(category Category, component, op string, err error) *CategorizedError {
	return &CategorizedError{
		Category:  category,
		Component: component,
		Op:        op,
		Err:       err,
	}
}

func (e *CategorizedError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Component, e.Op)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Category, msg)
}

func (e *CategorizedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches either the wrapper instance or the wrapped error.
func (e *CategorizedError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*CategorizedError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}

// CategoryOf extracts the category from an error chain, or CategoryUnknown.
func CategoryOf(err error) Category {
	var ce *CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return CategoryUnknown
}
