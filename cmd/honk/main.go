// Package main is the entry point for the honk command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/honk/internal/config"
	"github.com/dshills/honk/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errHelp is returned by parseFlags after printing usage or version.
var errHelp = errors.New("help requested")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the command-line flags.
type options struct {
	configPath string
	logLevel   string
	silent     bool
	luaFiles   stringList
	jsFiles    stringList
	markdown   string
	args       []string
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, errHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    stderr,
		Timestamp: cfg.Log.Timestamp,
	})

	a, err := newApp(cfg, logger, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer a.close()

	result, err := a.call(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	a.report()

	if result != nil {
		style := lipgloss.NewRenderer(stdout).NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
		fmt.Fprintln(stdout, style.Render(fmt.Sprint(result)))
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool
	var showHelp bool

	fs := flag.NewFlagSet("honk", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.silent, "silent", false, "Do not honk when nothing else answers")
	fs.Var(&opts.luaFiles, "lua", "Lua middleware script (repeatable)")
	fs.Var(&opts.jsFiles, "js", "JavaScript middleware script (repeatable)")
	fs.StringVar(&opts.markdown, "markdown", "", `Render a markdown component from JSON props, e.g. '{"id":"a","text":"# hi"}'`)
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "honk - a middleware call dispatcher that honks\n\n")
		fmt.Fprintf(stderr, "Usage: honk [options] [args...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  honk                          Honk\n")
		fmt.Fprintf(stderr, "  honk -lua ping.lua ping       Let a script answer \"ping\"\n")
		fmt.Fprintf(stderr, "  honk -markdown '{\"id\":\"a\",\"text\":\"*hi*\"}'\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errHelp
		}
		return opts, err
	}

	if showHelp {
		fs.Usage()
		return opts, errHelp
	}

	if showVersion {
		fmt.Fprintf(stdout, "honk %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, errHelp
	}

	if opts.logLevel != "" {
		if _, ok := logging.ParseLevel(opts.logLevel); !ok {
			return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
		}
	}

	opts.args = fs.Args()
	return opts, nil
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.silent {
		cfg.Middleware.Silence = true
	}
	cfg.Middleware.Lua = append(cfg.Middleware.Lua, opts.luaFiles...)
	cfg.Middleware.JS = append(cfg.Middleware.JS, opts.jsFiles...)

	return cfg, cfg.Validate()
}
