package honk

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// DefaultMessage is what an unclaimed call prints.
const DefaultMessage = "HONK 🚚 HONK"

// Config holds Honk configuration options.
type Config struct {
	// Message is written by the terminal handler for unclaimed calls.
	Message string

	// Output receives the terminal message. Defaults to os.Stdout.
	Output io.Writer

	// RecoverPanics converts a handler panic into an error wrapping
	// ErrPanic. When false, panics reach the caller untouched.
	RecoverPanics bool

	// Logger is shared with middlewares through Services.Logger.
	Logger zerolog.Logger
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Message:       DefaultMessage,
		Output:        os.Stdout,
		RecoverPanics: false,
		Logger:        zerolog.Nop(),
	}
}

// WithMessage returns a copy of the config with the terminal message set.
func (c Config) WithMessage(msg string) Config {
	c.Message = msg
	return c
}

// WithOutput returns a copy of the config writing the terminal message to w.
func (c Config) WithOutput(w io.Writer) Config {
	c.Output = w
	return c
}

// WithPanicRecovery returns a copy of the config with panic recovery set.
func (c Config) WithPanicRecovery(enabled bool) Config {
	c.RecoverPanics = enabled
	return c
}

// WithLogger returns a copy of the config with the shared logger set.
func (c Config) WithLogger(logger zerolog.Logger) Config {
	c.Logger = logger
	return c
}
