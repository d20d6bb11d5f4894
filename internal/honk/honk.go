package honk

import (
	"fmt"
	"io"
	"os"
	"runtime"
)

// Middleware builds a handler from the shared services.
//
// It runs once, when registered with Use, and may publish services for
// middlewares registered after it. Returning nil registers a handler that
// forwards every call.
type Middleware func(svc *Services) Handler

// Honk is the entry point. By default, all it does is honk.
//
// A Honk is not safe for concurrent use; calls run synchronously on the
// caller's goroutine.
type Honk struct {
	config   Config
	chain    *Chain
	services *Services
}

// New creates a new Honk with the given configuration.
func New(config Config) *Honk {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Message == "" {
		config.Message = DefaultMessage
	}

	h := &Honk{config: config}
	h.chain = NewChain(terminal(config.Message, config.Output))
	h.services = newServices(h, config.Logger)
	return h
}

// NewWithDefaults creates a new Honk with default configuration.
func NewWithDefaults() *Honk {
	return New(DefaultConfig())
}

// terminal writes msg to w and claims the call.
func terminal(msg string, w io.Writer) Handler {
	return HandlerFunc(func(Call, Cursor) (any, error) {
		_, _ = fmt.Fprintln(w, msg)
		return nil, nil
	})
}

// Use registers a middleware in front of those already registered and
// returns the Honk so registrations can be chained.
// It panics with ErrNilMiddleware if mw is nil.
func (h *Honk) Use(mw Middleware) *Honk {
	if mw == nil {
		panic(ErrNilMiddleware)
	}
	h.chain.Add(mw(h.services))
	h.services.Logger.Debug().
		Str("honk", h.services.ID.String()).
		Int("middlewares", h.chain.Len()).
		Msg("middleware registered")
	return h
}

// Honk classifies args with Parse and dispatches the resulting call.
func (h *Honk) Honk(args ...any) (any, error) {
	return h.Call(Parse(args...))
}

// Call dispatches a call to the head of the chain.
// Errors returned by handlers reach the caller unchanged.
func (h *Honk) Call(call Call) (any, error) {
	if h.config.RecoverPanics {
		return h.callWithRecovery(call)
	}
	return h.chain.Dispatch(call)
}

// callWithRecovery dispatches a call with panic recovery.
func (h *Honk) callWithRecovery(call Call) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			result = nil
			err = fmt.Errorf("%w: %s call: %v\n%s", ErrPanic, call.Kind(), r, string(stack[:n]))
		}
	}()

	return h.chain.Dispatch(call)
}

// Services returns the shared services.
func (h *Honk) Services() *Services {
	return h.services
}

// Chain returns the handler chain.
func (h *Honk) Chain() *Chain {
	return h.chain
}

// Config returns the Honk configuration.
func (h *Honk) Config() Config {
	return h.config
}
