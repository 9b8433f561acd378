package recovery

import (
	"strings"
	"time"

	"github.com/dshills/pixelstorm/internal/haptics"
)

// Severity grades a user-facing notice.
type Severity uint8

const (
	// SeverityInfo is a low-key advisory.
	SeverityInfo Severity = iota
	// SeverityWarning suggests the user adjust something.
	SeverityWarning
	// SeverityError reports a failed operation.
	SeverityError
)

// String returns a string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// UserMessage is a categorized, user-facing outcome of a failed operation.
type UserMessage struct {
	Text     string
	Severity Severity
	Haptic   haptics.Pattern
	Toast    time.Duration
}

// The fixed set of user-facing messages. Errors are keyword-matched into
// one of these; the host never sees raw error text.
var (
	msgTouchInput = UserMessage{
		Text:     "Touch input is acting up. The toolbar buttons still work.",
		Severity: SeverityWarning,
		Haptic:   haptics.PatternMedium,
		Toast:    4 * time.Second,
	}
	msgCanvasDrawing = UserMessage{
		Text:     "Something went wrong while drawing. Your work is preserved.",
		Severity: SeverityError,
		Haptic:   haptics.PatternError,
		Toast:    5 * time.Second,
	}
	msgPerformance = UserMessage{
		Text:     "Running a little slow. Reducing detail to keep up.",
		Severity: SeverityInfo,
		Haptic:   haptics.PatternLight,
		Toast:    2 * time.Second,
	}
	msgConnection = UserMessage{
		Text:     "Connection trouble. Changes will sync when it recovers.",
		Severity: SeverityWarning,
		Haptic:   haptics.PatternMedium,
		Toast:    4 * time.Second,
	}
	msgStorage = UserMessage{
		Text:     "Couldn't save right now. Your canvas is still intact.",
		Severity: SeverityError,
		Haptic:   haptics.PatternError,
		Toast:    5 * time.Second,
	}
	msgGeneric = UserMessage{
		Text:     "Something unexpected happened. Please try that again.",
		Severity: SeverityError,
		Haptic:   haptics.PatternError,
		Toast:    4 * time.Second,
	}
)

// MessageFor maps an error and its context into one of the fixed
// user-facing messages by keyword matching, mirroring how support
// categorizes incoming reports.
func MessageFor(err error, component, op string) UserMessage {
	text := strings.ToLower(strings.Join([]string{component, op, errText(err)}, " "))

	switch {
	case containsAny(text, "touch", "gesture", "pointer", "finger"):
		return msgTouchInput
	case containsAny(text, "draw", "canvas", "pixel", "buffer", "tool"):
		return msgCanvasDrawing
	case containsAny(text, "performance", "latency", "slow", "frame"):
		return msgPerformance
	case containsAny(text, "connection", "network", "timeout", "offline"):
		return msgConnection
	case containsAny(text, "storage", "save", "disk", "quota"):
		return msgStorage
	default:
		return msgGeneric
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
