// Package config loads the honk command's configuration.
//
// Configuration comes from a TOML or YAML file, chosen by extension, and
// is then overridden by HONK_* environment variables and command-line
// flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/honk/internal/logging"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Configuration errors.
var (
	// ErrUnknownFormat is returned for files that are neither TOML nor YAML.
	ErrUnknownFormat = errors.New("config: unknown file format")

	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the complete configuration.
type Config struct {
	Honk       HonkConfig       `toml:"honk" yaml:"honk"`
	Log        LogConfig        `toml:"log" yaml:"log"`
	Middleware MiddlewareConfig `toml:"middleware" yaml:"middleware"`
	Store      StoreConfig      `toml:"store" yaml:"store"`
}

// HonkConfig configures the engine.
type HonkConfig struct {
	// Message replaces the terminal's honk. Empty keeps the default.
	Message string `toml:"message" yaml:"message"`

	// RecoverPanics turns handler panics into errors.
	RecoverPanics bool `toml:"recover_panics" yaml:"recover_panics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level     string `toml:"level" yaml:"level"`
	Format    string `toml:"format" yaml:"format"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"`
}

// MiddlewareConfig selects the middlewares the command registers.
type MiddlewareConfig struct {
	Silence    bool     `toml:"silence" yaml:"silence"`
	Injector   bool     `toml:"injector" yaml:"injector"`
	Components bool     `toml:"components" yaml:"components"`
	Audit      bool     `toml:"audit" yaml:"audit"`
	Metrics    bool     `toml:"metrics" yaml:"metrics"`
	Lua        []string `toml:"lua" yaml:"lua"`
	JS         []string `toml:"js" yaml:"js"`
}

// StoreConfig configures the command's store.
type StoreConfig struct {
	Initial map[string]any `toml:"initial" yaml:"initial"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:     "warn",
			Format:    logging.FormatConsole,
			Timestamp: true,
		},
		Middleware: MiddlewareConfig{
			Injector:   true,
			Components: true,
		},
		Store: StoreConfig{
			Initial: map[string]any{},
		},
	}
}

// Load reads the file at path on top of Default.
func Load(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := decode(f, format, path)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom reads configuration in the given format from r on top of Default.
func LoadFrom(r io.Reader, format string) (Config, error) {
	return decode(r, format, "<reader>")
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func decode(r io.Reader, format, source string) (Config, error) {
	cfg := Default()

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r).DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, tomlError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if cfg.Store.Initial == nil {
		cfg.Store.Initial = map[string]any{}
	}
	return cfg, nil
}

func tomlError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		pe.Line, pe.Column = derr.Position()
	}
	return pe
}

// Validate checks values that cannot be enforced by decoding.
func (c Config) Validate() error {
	var problems []string

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		problems = append(problems, fmt.Sprintf("log.level %q is not a level", c.Log.Level))
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be console or json", c.Log.Format))
	}
	for _, p := range c.Middleware.Lua {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, "middleware.lua contains an empty path")
		}
	}
	for _, p := range c.Middleware.JS {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, "middleware.js contains an empty path")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
