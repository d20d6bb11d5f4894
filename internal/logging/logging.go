// Package logging builds the zerolog loggers used by honk and its tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config configures a logger.
type Config struct {
	// Level is the minimum level logged.
	Level zerolog.Level

	// Format is FormatConsole or FormatJSON.
	Format string

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer

	// Timestamp adds a time field to every line.
	Timestamp bool
}

// DefaultConfig returns console logging of warnings and above to stderr.
func DefaultConfig() Config {
	return Config{
		Level:     zerolog.WarnLevel,
		Format:    FormatConsole,
		Output:    os.Stderr,
		Timestamp: true,
	}
}

// WithLevel returns a copy of c with the given level.
func (c Config) WithLevel(level zerolog.Level) Config {
	c.Level = level
	return c
}

// WithFormat returns a copy of c with the given format.
func (c Config) WithFormat(format string) Config {
	c.Format = format
	return c
}

// WithOutput returns a copy of c writing to w.
func (c Config) WithOutput(w io.Writer) Config {
	c.Output = w
	return c
}

// New creates a logger from cfg.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal(out),
		}
	}

	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Str("app", "honk").Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel converts a level name to a zerolog level.
// Unknown names report false.
func ParseLevel(s string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	}
	return zerolog.InfoLevel, false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
