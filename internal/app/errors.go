package app

import "errors"

// Session errors.
var (
	// ErrSessionClosed is returned when using a closed session.
	ErrSessionClosed = errors.New("app: session is closed")

	// ErrSnapshotMismatch indicates a history snapshot whose dimensions do
	// not match the live buffer.
	ErrSnapshotMismatch = errors.New("app: snapshot dimensions mismatch")
)
