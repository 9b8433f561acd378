// Package dispatcher applies classified gesture commands to the pixel
// buffer and forwards view-transform requests to the host. It is the only
// writer of the buffer.
package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNilBuffer indicates no pixel buffer is attached.
	ErrNilBuffer = errors.New("dispatcher: no pixel buffer attached")

	// ErrUnknownTool indicates a draw command carried an unusable tool.
	ErrUnknownTool = errors.New("dispatcher: unknown tool")

	// ErrUnknownCommand indicates a command type the dispatch table does
	// not cover. Seeing it means the command union grew without the
	// dispatcher keeping up.
	ErrUnknownCommand = errors.New("dispatcher: unknown command")
)
