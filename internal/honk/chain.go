package honk

// Handler processes a call or forwards it down the chain.
type Handler interface {
	// Handle either produces a result for the call (claiming it) or
	// forwards it with next.Forward.
	Handle(call Call, next Cursor) (any, error)
}

// HandlerFunc is a function adapter for the Handler interface.
type HandlerFunc func(call Call, next Cursor) (any, error)

// Handle implements Handler.
func (f HandlerFunc) Handle(call Call, next Cursor) (any, error) {
	return f(call, next)
}

// passThrough forwards every call unchanged.
var passThrough = HandlerFunc(func(call Call, next Cursor) (any, error) {
	return next.Forward(call)
})

// Chain is an ordered list of handlers ending in a terminal handler.
//
// Handlers are kept in registration order and consulted in reverse: the
// most recently added handler sees a call first. The terminal runs when
// every handler has forwarded.
type Chain struct {
	handlers []Handler
	terminal Handler
}

// NewChain creates a chain with the given terminal handler.
// A nil terminal is replaced by one that returns (nil, nil).
func NewChain(terminal Handler) *Chain {
	if terminal == nil {
		terminal = HandlerFunc(func(Call, Cursor) (any, error) { return nil, nil })
	}
	return &Chain{terminal: terminal}
}

// Add appends a handler. It becomes the head of the chain.
func (c *Chain) Add(h Handler) {
	if h == nil {
		h = passThrough
	}
	c.handlers = append(c.handlers, h)
}

// Len returns the number of handlers, not counting the terminal.
func (c *Chain) Len() int {
	return len(c.handlers)
}

// Handlers returns the handlers in precedence order, head first.
func (c *Chain) Handlers() []Handler {
	out := make([]Handler, len(c.handlers))
	for i, h := range c.handlers {
		out[len(c.handlers)-1-i] = h
	}
	return out
}

// Dispatch runs a call from the head of the chain.
func (c *Chain) Dispatch(call Call) (any, error) {
	return c.at(len(c.handlers)-1, call)
}

// at invokes the handler at index i; -1 is the terminal.
func (c *Chain) at(i int, call Call) (any, error) {
	switch {
	case i >= 0:
		return c.handlers[i].Handle(call, Cursor{chain: c, index: i})
	case i == -1:
		return c.terminal.Handle(call, Cursor{chain: c, index: -1})
	default:
		return nil, nil
	}
}

// Cursor is a handler's position in the chain.
type Cursor struct {
	chain *Chain
	index int
}

// Forward passes call to the next handler toward the terminal.
// Forwarding from the terminal returns (nil, nil).
func (c Cursor) Forward(call Call) (any, error) {
	if c.chain == nil {
		return nil, nil
	}
	return c.chain.at(c.index-1, call)
}

// Index returns the registration index of the handler holding the cursor,
// or -1 for the terminal.
func (c Cursor) Index() int {
	return c.index
}
