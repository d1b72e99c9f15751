package nes

import (
	"errors"
	"fmt"
)

// ErrMemoryUnavailable means the emulator has not exposed its memory yet. It is not a failure.
var ErrMemoryUnavailable = errors.New("emulator memory not available")

var ErrNotCaptured = errors.New("offset range not captured in snapshot")

var ErrConnClosed = errors.New("connection closed")

// TerminalError wraps an error after which a driver connection is no longer usable.
type TerminalError struct {
	Wrapped error
}

func (e *TerminalError) Unwrap() error { return e.Wrapped }
func (e *TerminalError) Error() string {
	if e.Wrapped == nil {
		return "nes memory terminal error"
	}
	return fmt.Sprintf("nes memory terminal error: %v", e.Wrapped)
}

func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}
