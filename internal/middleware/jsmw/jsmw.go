// Package jsmw runs honk middlewares written in JavaScript.
//
// The contract matches package luamw: the script defines
// handle(call, next), call carries kind, args, id and props, and next()
// forwards the call. Results come back through goja's Export, so integers
// arrive as int64 and undefined or null as nil.
package jsmw

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"

	"github.com/dshills/honk/internal/honk"
)

// DefaultTimeout bounds a single run of handle.
const DefaultTimeout = 5 * time.Second

// Errors for scripted middlewares.
var (
	// ErrScript wraps errors raised while loading or running a script.
	ErrScript = errors.New("jsmw: script error")

	// ErrNoHandler is returned when a script does not define handle.
	ErrNoHandler = errors.New("jsmw: script does not define a handle function")
)

// Option configures a Script.
type Option func(*Script)

// WithName sets the program name used in error messages.
func WithName(name string) Option {
	return func(s *Script) {
		s.name = name
	}
}

// WithTimeout bounds each run of handle. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		s.timeout = d
	}
}

// WithGlobal sets a global before the script runs.
func WithGlobal(name string, value any) Option {
	return func(s *Script) {
		s.globals[name] = value
	}
}

// Script is a loaded JavaScript middleware. It owns one goja runtime and
// is not safe for concurrent use.
type Script struct {
	vm      *goja.Runtime
	name    string
	timeout time.Duration
	globals map[string]any
	handler goja.Callable
	logger  zerolog.Logger
	depth   int
}

// Load compiles and runs src, then looks up its handle function.
func Load(src string, opts ...Option) (*Script, error) {
	s := &Script{
		name:    "middleware.js",
		timeout: DefaultTimeout,
		globals: make(map[string]any),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	prg, err := goja.Compile(s.name, src, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	s.vm = goja.New()
	for name, value := range s.globals {
		if err := s.vm.Set(name, value); err != nil {
			return nil, fmt.Errorf("%w: global %s: %v", ErrScript, name, err)
		}
	}
	if err := s.vm.Set("log", func(msg string) {
		s.logger.Info().Msg(msg)
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	if _, err := s.vm.RunProgram(prg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	fn, ok := goja.AssertFunction(s.vm.Get("handle"))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, s.name)
	}
	s.handler = fn
	return s, nil
}

// New loads src and returns its middleware.
func New(src string, opts ...Option) (honk.Middleware, error) {
	s, err := Load(src, opts...)
	if err != nil {
		return nil, err
	}
	return s.Middleware(), nil
}

// NewFromFile loads the script at path and returns its middleware.
func NewFromFile(path string, opts ...Option) (honk.Middleware, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsmw: read %s: %w", path, err)
	}
	opts = append([]Option{WithName(filepath.Base(path))}, opts...)
	return New(string(src), opts...)
}

// Middleware returns the honk middleware backed by the script.
func (s *Script) Middleware() honk.Middleware {
	return func(svc *honk.Services) honk.Handler {
		s.logger = svc.Logger.With().
			Str("honk", svc.ID.String()).
			Str("component", "js").
			Str("script", s.name).
			Logger()
		return honk.HandlerFunc(s.handle)
	}
}

// handle runs the script's handle function for one call.
func (s *Script) handle(call honk.Call, next honk.Cursor) (any, error) {
	var (
		forwardErr error
		panicked   bool
		panicValue any
	)
	nextFn := func(fc goja.FunctionCall) goja.Value {
		fwd := call
		if len(fc.Arguments) > 0 {
			args := make([]any, len(fc.Arguments))
			for i, a := range fc.Arguments {
				args[i] = a.Export()
			}
			fwd = honk.Parse(args...)
		}

		result, err := s.forward(next, fwd, &panicked, &panicValue)
		if panicked {
			panic(s.vm.NewGoError(errors.New("panic in forwarded call")))
		}
		if err != nil {
			forwardErr = err
			panic(s.vm.NewGoError(err))
		}
		return s.vm.ToValue(result)
	}

	// Re-entrant runs share the outermost run's deadline.
	if s.timeout > 0 && s.depth == 0 {
		s.vm.ClearInterrupt()
		fired := make(chan struct{})
		timer := time.AfterFunc(s.timeout, func() {
			s.vm.Interrupt("timeout")
			close(fired)
		})
		defer func() {
			if !timer.Stop() {
				<-fired
			}
			s.vm.ClearInterrupt()
		}()
	}
	s.depth++
	defer func() { s.depth-- }()

	ret, err := s.handler(goja.Undefined(), s.callObject(call), s.vm.ToValue(nextFn))

	if panicked {
		panic(panicValue)
	}
	if err != nil {
		if forwardErr != nil {
			return nil, forwardErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, s.name, err)
	}
	return export(ret), nil
}

// forward runs the rest of the chain, turning a panic into flags so the
// script can unwind before it is raised again.
func (s *Script) forward(next honk.Cursor, call honk.Call, panicked *bool, value *any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			*panicked, *value = true, r
		}
	}()
	return next.Forward(call)
}

// callObject builds the object handed to handle.
func (s *Script) callObject(call honk.Call) *goja.Object {
	obj := s.vm.NewObject()
	_ = obj.Set("kind", call.Kind().String())
	_ = obj.Set("args", s.vm.NewArray(call.Args()...))
	if call.HasID() {
		_ = obj.Set("id", call.ID())
	}
	if call.Kind() == honk.KindComponent {
		_ = obj.Set("props", call.Props())
	}
	return obj
}

func export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}
