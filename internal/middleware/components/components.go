// Package components resolves cached components and renders them through honk.
//
// A component call names a Creator and carries props. The middleware derives
// a cache key of the form "name:id" from the props (or uses the explicit id
// of the call), creates the component on first use, and renders it on every
// call:
//
//	card := components.Define("card", newCard)
//	h := honk.NewWithDefaults().Use(components.New(nil))
//	html, err := h.Honk(card, map[string]any{"id": "42", "title": "hi"})
package components

import (
	"errors"
	"fmt"

	"github.com/dshills/honk/internal/honk"
)

// Component errors.
var (
	// ErrMissingID indicates the props did not yield a component id.
	ErrMissingID = errors.New("components: missing component id")

	// ErrBadProps indicates a component could not use the props it was given.
	ErrBadProps = errors.New("components: unsupported props")
)

// Component renders itself for a set of props.
type Component interface {
	Render(h *honk.Honk, props any) (any, error)
}

// Unloader is implemented by components that release resources when they
// leave the page.
type Unloader interface {
	Unload()
}

// CreateFunc builds a new component for a cache key.
type CreateFunc func(svc *honk.Services, id string, props any) (Component, error)

// IDFunc extracts a component id from props.
type IDFunc func(props any) (string, bool)

// Factory is a component creator the middleware knows how to use.
type Factory interface {
	honk.ComponentCreator

	// Key returns the cache key for props.
	Key(props any) (string, error)

	// Create builds a new component.
	Create(svc *honk.Services, id string, props any) (Component, error)
}

// Creator is the standard Factory: a name, a constructor and an id mapping.
type Creator struct {
	name   string
	create CreateFunc
	mapID  IDFunc
}

// Define returns a creator. Without mapID the id is read with DefaultID.
func Define(name string, create CreateFunc, mapID ...IDFunc) *Creator {
	c := &Creator{
		name:   name,
		create: create,
		mapID:  DefaultID,
	}
	if len(mapID) > 0 && mapID[0] != nil {
		c.mapID = mapID[0]
	}
	return c
}

// ComponentName implements honk.ComponentCreator.
func (c *Creator) ComponentName() string {
	return c.name
}

// Key implements Factory. The key is "name:id".
func (c *Creator) Key(props any) (string, error) {
	id, ok := c.mapID(props)
	if !ok || id == "" {
		return "", fmt.Errorf("%w for %q", ErrMissingID, c.name)
	}
	return c.name + ":" + id, nil
}

// Create implements Factory.
func (c *Creator) Create(svc *honk.Services, id string, props any) (Component, error) {
	if c.create == nil {
		return nil, fmt.Errorf("components: %q has no constructor", c.name)
	}
	return c.create(svc, id, props)
}

// Identifier is implemented by props that carry their own id.
type Identifier interface {
	ID() string
}

// DefaultID reads the "id" entry of map props, or calls ID on props that
// implement Identifier.
func DefaultID(props any) (string, bool) {
	switch p := props.(type) {
	case map[string]any:
		id, ok := p["id"].(string)
		return id, ok && id != ""
	case map[string]string:
		id, ok := p["id"]
		return id, ok && id != ""
	case Identifier:
		id := p.ID()
		return id, id != ""
	}
	return "", false
}

// New returns a middleware that claims component calls whose creator is a
// Factory. A nil cache is replaced by NewCache. The cache is published as a
// Cache service.
func New(cache Cache) honk.Middleware {
	if cache == nil {
		cache = NewCache()
	}
	return func(svc *honk.Services) honk.Handler {
		honk.Provide(svc, cache)

		return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
			if call.Kind() != honk.KindComponent {
				return next.Forward(call)
			}
			factory, ok := call.Creator().(Factory)
			if !ok {
				return next.Forward(call)
			}

			key := call.ID()
			if !call.HasID() {
				var err error
				if key, err = factory.Key(call.Props()); err != nil {
					return nil, err
				}
			}

			comp, err := resolve(svc, cache, factory, key, call.Props())
			if err != nil {
				return nil, err
			}
			return comp.Render(svc.Honk, call.Props())
		})
	}
}

// resolve returns the cached component for key, creating it if needed.
func resolve(svc *honk.Services, cache Cache, factory Factory, key string, props any) (Component, error) {
	comp, ok := cache.Get(key)
	if !ok {
		var err error
		comp, err = factory.Create(svc, key, props)
		if err != nil {
			return nil, err
		}
		if comp == nil {
			return nil, fmt.Errorf("components: %q created a nil component", factory.ComponentName())
		}
		cache.Set(key, comp)
	}

	// Components built on Base leave the cache when unloaded.
	if b, ok := comp.(unloadBinder); ok {
		b.bindUnload(func() { cache.Remove(key) })
	}
	return comp, nil
}
