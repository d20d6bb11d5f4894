package honk

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Services is the context shared by every middleware of one Honk.
//
// The fixed fields are always present. Anything else a middleware wants to
// publish is stored by its Go type with Provide and read back with Lookup,
// so consumers get a typed value instead of an untyped map entry. Services
// are expected to be filled while middlewares are registered and only read
// during calls.
type Services struct {
	// Honk is the entry point that owns these services.
	Honk *Honk

	// Logger is the structured logger shared by middlewares.
	Logger zerolog.Logger

	// ID identifies the Honk instance in logs.
	ID uuid.UUID

	values map[reflect.Type]any
}

func newServices(h *Honk, logger zerolog.Logger) *Services {
	return &Services{
		Honk:   h,
		Logger: logger,
		ID:     uuid.New(),
		values: make(map[reflect.Type]any),
	}
}

// typeOf returns the key for T, including interface types.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide publishes v as the service of type T.
// A previous value of the same type is replaced; other services are kept.
func Provide[T any](svc *Services, v T) {
	if svc.values == nil {
		svc.values = make(map[reflect.Type]any)
	}
	svc.values[typeOf[T]()] = v
}

// Lookup returns the service of type T.
func Lookup[T any](svc *Services) (T, bool) {
	v, ok := svc.values[typeOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustLookup returns the service of type T or panics with an error
// wrapping ErrServiceMissing.
func MustLookup[T any](svc *Services) T {
	v, ok := Lookup[T](svc)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrServiceMissing, typeOf[T]()))
	}
	return v
}

// Has reports whether a service of type T was provided.
func Has[T any](svc *Services) bool {
	_, ok := svc.values[typeOf[T]()]
	return ok
}

// Len returns the number of typed services provided.
func (s *Services) Len() int {
	return len(s.values)
}
