package honk

// Kind identifies the shape of a call.
type Kind uint8

const (
	// KindFallback is a call with no arguments. Unless a middleware claims
	// it, the terminal handler honks.
	KindFallback Kind = iota
	// KindInject carries a function that wants the shared services.
	KindInject
	// KindComponent asks for a cached component to be resolved and rendered.
	KindComponent
	// KindArgs is an open argument list that no built-in shape matched.
	KindArgs
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindFallback:
		return "fallback"
	case KindInject:
		return "inject"
	case KindComponent:
		return "component"
	case KindArgs:
		return "args"
	default:
		return "unknown"
	}
}

// InjectFunc receives the shared services and returns a result.
type InjectFunc func(svc *Services) (any, error)

// ComponentCreator marks a value as something that produces components.
// The component middleware keys its cache by ComponentName.
type ComponentCreator interface {
	ComponentName() string
}

// Call describes a single invocation of the entry point.
// Calls are built once at the boundary and are not modified afterwards.
type Call struct {
	kind    Kind
	args    []any
	inject  InjectFunc
	creator ComponentCreator
	id      string
	hasID   bool
	props   any
}

// Fallback returns an empty call.
func Fallback() Call {
	return Call{kind: KindFallback}
}

// Inject returns a call that hands fn the shared services.
func Inject(fn InjectFunc) Call {
	return Call{
		kind:   KindInject,
		args:   []any{fn},
		inject: fn,
	}
}

// Component returns a component call whose id is derived from props.
func Component(creator ComponentCreator, props any) Call {
	return Call{
		kind:    KindComponent,
		args:    []any{creator, props},
		creator: creator,
		props:   props,
	}
}

// ComponentWithID returns a component call with an explicit cache id.
func ComponentWithID(creator ComponentCreator, id string, props any) Call {
	return Call{
		kind:    KindComponent,
		args:    []any{creator, id, props},
		creator: creator,
		id:      id,
		hasID:   true,
		props:   props,
	}
}

// Args returns a call carrying an arbitrary argument list.
// An empty list is still KindArgs; use Fallback or Parse for the empty call.
func Args(args ...any) Call {
	cp := make([]any, len(args))
	copy(cp, args)
	return Call{kind: KindArgs, args: cp}
}

// Parse classifies a raw argument list into a Call.
//
// The recognised shapes are:
//
//	()                                  -> KindFallback
//	(InjectFunc)                        -> KindInject
//	(ComponentCreator, props)           -> KindComponent, id derived from props
//	(ComponentCreator, string[, props]) -> KindComponent, explicit id
//
// Everything else is KindArgs.
func Parse(args ...any) Call {
	switch len(args) {
	case 0:
		return Fallback()
	case 1:
		if fn, ok := asInjectFunc(args[0]); ok {
			return Inject(fn)
		}
	case 2:
		if creator, ok := args[0].(ComponentCreator); ok {
			if id, ok := args[1].(string); ok {
				return ComponentWithID(creator, id, nil).withRaw(args)
			}
			return Component(creator, args[1])
		}
	case 3:
		if creator, ok := args[0].(ComponentCreator); ok {
			if id, ok := args[1].(string); ok {
				return ComponentWithID(creator, id, args[2])
			}
		}
	}
	return Args(args...)
}

// withRaw replaces the raw argument list so Len matches what the caller passed.
func (c Call) withRaw(args []any) Call {
	c.args = make([]any, len(args))
	copy(c.args, args)
	return c
}

// asInjectFunc accepts the function shapes the injector understands.
func asInjectFunc(v any) (InjectFunc, bool) {
	switch fn := v.(type) {
	case InjectFunc:
		return fn, fn != nil
	case func(*Services) (any, error):
		return fn, fn != nil
	case func(*Services) any:
		if fn == nil {
			return nil, false
		}
		return func(svc *Services) (any, error) { return fn(svc), nil }, true
	case func(*Services):
		if fn == nil {
			return nil, false
		}
		return func(svc *Services) (any, error) {
			fn(svc)
			return nil, nil
		}, true
	}
	return nil, false
}

// Kind returns the call's shape.
func (c Call) Kind() Kind { return c.kind }

// Len returns the number of raw arguments.
func (c Call) Len() int { return len(c.args) }

// Arg returns the i-th raw argument, or nil when i is out of range.
func (c Call) Arg(i int) any {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// Args returns a copy of the raw arguments.
func (c Call) Args() []any {
	cp := make([]any, len(c.args))
	copy(cp, c.args)
	return cp
}

// InjectFunc returns the function of a KindInject call.
func (c Call) InjectFunc() InjectFunc { return c.inject }

// Creator returns the creator of a KindComponent call.
func (c Call) Creator() ComponentCreator { return c.creator }

// ID returns the explicit component id, if any.
func (c Call) ID() string { return c.id }

// HasID reports whether the component id was given explicitly.
func (c Call) HasID() bool { return c.hasID }

// Props returns the component props.
func (c Call) Props() any { return c.props }
