// Package injector hands the shared services to functions passed to honk.
package injector

import "github.com/dshills/honk/internal/honk"

// New returns a middleware that claims inject calls.
//
// The function carried by the call receives the shared services; its result
// and error are returned unchanged. Every other call is forwarded.
func New() honk.Middleware {
	return func(svc *honk.Services) honk.Handler {
		return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
			if call.Kind() == honk.KindInject {
				return call.InjectFunc()(svc)
			}
			return next.Forward(call)
		})
	}
}
