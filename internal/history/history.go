// Package history provides the default in-memory undo/redo collaborator
// for completed draw gestures. A gesture produces at most one entry here
// no matter how many intermediate pixel mutations it caused.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/pixelstorm/internal/canvas"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
)

// Entry is one committed, undoable gesture result.
type Entry struct {
	// ID is the committing gesture's identifier. Commits are idempotent
	// per ID: a second commit with the same ID is dropped.
	ID uuid.UUID

	// Label names the operation for UI display (e.g. "pencil_draw").
	Label string

	// TabID identifies the host tab/project the buffer belongs to.
	TabID string

	// Snapshot is a deep copy of the buffer at commit time.
	Snapshot *canvas.Buffer

	// Timestamp is when the commit happened.
	Timestamp time.Time
}

// Stack manages undo/redo state for one canvas.
type Stack struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry

	maxEntries int
	lastID     uuid.UUID
}

// NewStack creates a history stack keeping at most maxEntries commits.
func NewStack(maxEntries int) *Stack {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Stack{maxEntries: maxEntries}
}

// Commit records the final buffer state of a completed gesture.
// The buffer is snapshotted; the caller keeps ownership of the live buffer.
// A repeated commit with the gesture ID of the previous commit is ignored,
// guaranteeing the one-batch-per-gesture contract even if the caller
// double-fires.
func (s *Stack) Commit(gestureID uuid.UUID, tabID, label string, buf *canvas.Buffer) {
	if buf == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gestureID != uuid.Nil && gestureID == s.lastID {
		return
	}
	s.lastID = gestureID

	s.undoStack = append(s.undoStack, &Entry{
		ID:        gestureID,
		Label:     label,
		TabID:     tabID,
		Snapshot:  buf.Clone(),
		Timestamp: time.Now(),
	})

	// A new commit invalidates the redo branch.
	s.redoStack = nil

	if len(s.undoStack) > s.maxEntries {
		excess := len(s.undoStack) - s.maxEntries
		s.undoStack = s.undoStack[excess:]
	}
}

// Undo pops the most recent entry and returns the entry preceding it,
// whose snapshot is the state to restore. Returns ErrNothingToUndo when
// fewer than one entry remains.
func (s *Stack) Undo() (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}

	top := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, top)

	if len(s.undoStack) == 0 {
		return nil, nil
	}
	return s.undoStack[len(s.undoStack)-1], nil
}

// Redo re-applies the most recently undone entry and returns it.
func (s *Stack) Redo() (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}

	top := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, top)
	return top, nil
}

// Len returns the number of committed entries on the undo stack.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack)
}

// CanUndo reports whether an undo is possible.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStack) > 0
}

// CanRedo reports whether a redo is possible.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStack) > 0
}

// Clear drops all history.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undoStack = nil
	s.redoStack = nil
	s.lastID = uuid.Nil
}
