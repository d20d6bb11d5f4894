package honk

import "errors"

// Honk errors.
var (
	// ErrPanic indicates a handler panicked while panic recovery was enabled.
	ErrPanic = errors.New("honk: handler panic")

	// ErrServiceMissing indicates a required service was never provided.
	ErrServiceMissing = errors.New("honk: service not provided")

	// ErrNilMiddleware indicates Use was called with a nil middleware.
	ErrNilMiddleware = errors.New("honk: nil middleware")
)
