// Package luamw runs honk middlewares written in Lua.
//
// A script defines a global function handle(call, next). call is a table
// with the fields kind, args, id and props; next() forwards the call to the
// rest of the chain and returns its result. Calling next with arguments
// forwards a new call built from them instead. Whatever handle returns is
// the result of the call:
//
//	function handle(call, next)
//	  if call.args[1] == "ping" then
//	    return "pong"
//	  end
//	  return next()
//	end
//
// Scripts run with the base, table, string and math libraries only.
package luamw

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/honk/internal/honk"
)

// DefaultTimeout bounds a single run of handle.
const DefaultTimeout = 5 * time.Second

// Option configures a Script.
type Option func(*Script)

// WithName sets the chunk name used in error messages.
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

// Script is a loaded Lua middleware.
//
// A Script owns one Lua state and is not safe for concurrent use. Calls
// reach it from the honk that registered it, which is synchronous.
type Script struct {
	L       *lua.LState
	name    string
	timeout time.Duration
	globals map[string]any
	handler *lua.LFunction
	bridge  *bridge
	logger  zerolog.Logger
	closed  bool
	depth   int
}

// Load compiles and runs src, then looks up its handle function.
func Load(src string, opts ...Option) (*Script, error) {
	s := &Script{
		name:    "middleware",
		timeout: DefaultTimeout,
		globals: make(map[string]any),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	chunk, err := parse.Parse(strings.NewReader(src), s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	proto, err := lua.Compile(chunk, s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.bridge = &bridge{L: s.L}

	for name, value := range s.globals {
		s.L.SetGlobal(name, s.bridge.toLua(value))
	}
	s.L.SetGlobal("log", s.L.NewFunction(s.luaLog))

	s.L.Push(s.L.NewFunctionFromProto(proto))
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		s.L.Close()
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	fn, ok := s.L.GetGlobal("handle").(*lua.LFunction)
	if !ok {
		s.L.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, s.name)
	}
	s.handler = fn
	return s, nil
}

// openSafeLibraries opens the libraries scripts may use. io, os, debug and
// package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// New loads src and returns its middleware.
func New(src string, opts ...Option) (honk.Middleware, error) {
	s, err := Load(src, opts...)
	if err != nil {
		return nil, err
	}
	return s.Middleware(), nil
}

// LoadFile compiles the script at path, named after its base name.
func LoadFile(path string, opts ...Option) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("luamw: read %s: %w", path, err)
	}
	opts = append([]Option{WithName(filepath.Base(path))}, opts...)
	return Load(string(src), opts...)
}

// NewFromFile loads the script at path and returns its middleware.
func NewFromFile(path string, opts ...Option) (honk.Middleware, error) {
	s, err := LoadFile(path, opts...)
	if err != nil {
		return nil, err
	}
	return s.Middleware(), nil
}

// Middleware returns the honk middleware backed by the script.
func (s *Script) Middleware() honk.Middleware {
	return func(svc *honk.Services) honk.Handler {
		s.logger = svc.Logger.With().
			Str("honk", svc.ID.String()).
			Str("component", "lua").
			Str("script", s.name).
			Logger()
		return honk.HandlerFunc(s.handle)
	}
}

// Close releases the Lua state. Later calls fail with ErrClosed.
func (s *Script) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// handle runs the script's handle function for one call.
func (s *Script) handle(call honk.Call, next honk.Cursor) (any, error) {
	if s.closed {
		return nil, ErrClosed
	}

	var (
		forwardErr error
		panicked   bool
		panicValue any
	)
	nextFn := s.L.NewFunction(func(L *lua.LState) int {
		fwd := call
		if n := L.GetTop(); n > 0 {
			args := make([]any, n)
			for i := 1; i <= n; i++ {
				args[i-1] = s.bridge.toGo(L.Get(i))
			}
			fwd = honk.Parse(args...)
		}

		result, err := forward(next, fwd, &panicked, &panicValue)
		if panicked {
			L.RaiseError("panic in forwarded call")
			return 0
		}
		if err != nil {
			forwardErr = err
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(s.bridge.toLua(result))
		return 1
	})

	// Re-entrant runs share the outermost run's deadline.
	if s.timeout > 0 && s.depth == 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	s.depth++
	defer func() { s.depth-- }()

	err := s.L.CallByParam(lua.P{
		Fn:      s.handler,
		NRet:    1,
		Protect: true,
	}, s.bridge.callTable(call), nextFn)

	if panicked {
		panic(panicValue)
	}
	if err != nil {
		if forwardErr != nil {
			return nil, forwardErr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, s.name, err)
	}

	ret := s.L.Get(-1)
	s.L.Pop(1)
	return s.bridge.toGo(ret), nil
}

// forward runs the rest of the chain, turning a panic into flags so the
// script can unwind before it is raised again.
func forward(next honk.Cursor, call honk.Call, panicked *bool, value *any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			*panicked, *value = true, r
		}
	}()
	return next.Forward(call)
}

// luaLog implements log(msg) for scripts.
func (s *Script) luaLog(L *lua.LState) int {
	s.logger.Info().Msg(L.CheckString(1))
	return 0
}
