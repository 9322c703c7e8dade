package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSessionRequired is returned when a wizard is built without a session.
	ErrSessionRequired = errors.New("tui: session is required")
)
