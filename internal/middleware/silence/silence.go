// Package silence provides middleware that keeps honk quiet.
package silence

import "github.com/dshills/honk/internal/honk"

// New returns a middleware that claims every call and returns nothing.
// Nothing registered before it ever runs.
func New() honk.Middleware {
	return func(*honk.Services) honk.Handler {
		return honk.HandlerFunc(func(honk.Call, honk.Cursor) (any, error) {
			// *sad honk*
			return nil, nil
		})
	}
}

// Fallback returns a middleware that only swallows empty calls, so the
// terminal never honks while other shapes still reach earlier middleware.
func Fallback() honk.Middleware {
	return func(*honk.Services) honk.Handler {
		return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
			if call.Kind() == honk.KindFallback {
				return nil, nil
			}
			return next.Forward(call)
		})
	}
}
