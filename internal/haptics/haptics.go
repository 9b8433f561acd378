// Package haptics defines the categorical feedback contract implemented by
// host platforms. The core only requests patterns; whether anything buzzes
// is up to the platform adapter.
package haptics

// Pattern is a categorical haptic request.
type Pattern uint8

const (
	// PatternNone requests no feedback.
	PatternNone Pattern = iota
	// PatternLight is a subtle tick (minor notices).
	PatternLight
	// PatternMedium is a firm tick (mode changes, long-press).
	PatternMedium
	// PatternSelection accompanies selection changes.
	PatternSelection
	// PatternSuccess accompanies completed operations.
	PatternSuccess
	// PatternError accompanies failures.
	PatternError
)

// String returns a string representation of the pattern.
func (p Pattern) String() string {
	switch p {
	case PatternLight:
		return "light"
	case PatternMedium:
		return "medium"
	case PatternSelection:
		return "selection"
	case PatternSuccess:
		return "success"
	case PatternError:
		return "error"
	default:
		return "none"
	}
}

// Requester is implemented by the host's haptic collaborator.
type Requester interface {
	// Request asks for one feedback pattern. Must not block.
	Request(p Pattern)
}

// Nop discards all requests.
type Nop struct{}

// Request implements Requester.
func (Nop) Request(Pattern) {}
