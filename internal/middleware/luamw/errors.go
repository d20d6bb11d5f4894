package luamw

import "errors"

// Errors for scripted middlewares.
var (
	// ErrScript wraps errors raised while loading or running a script.
	ErrScript = errors.New("luamw: script error")

	// ErrNoHandler is returned when a script does not define handle.
	ErrNoHandler = errors.New("luamw: script does not define a handle function")

	// ErrClosed is returned when calling into a closed script.
	ErrClosed = errors.New("luamw: script is closed")
)
