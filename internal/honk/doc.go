// Package honk builds a single callable entry point from a chain of middleware.
//
// A Honk starts with one behaviour: an unclaimed call writes "HONK 🚚 HONK"
// to its output. Everything else is added by middleware.
//
// # Calls
//
// Every invocation is described by a Call. The variadic entry point,
// Honk.Honk, classifies its arguments once with Parse:
//
//	()                                  -> KindFallback
//	(InjectFunc)                        -> KindInject
//	(ComponentCreator, props)           -> KindComponent
//	(ComponentCreator, string[, props]) -> KindComponent with explicit id
//	anything else                       -> KindArgs
//
// Middlewares switch on Call.Kind instead of probing argument types. A
// KindArgs call still exposes its raw, ordered arguments through Len and Arg.
//
// # Chain
//
// Middlewares are kept in registration order and consulted in reverse: the
// last one registered sees a call first. Each handler either returns a
// result, claiming the call, or passes it on with its Cursor:
//
//	h := honk.NewWithDefaults().
//	    Use(func(svc *honk.Services) honk.Handler {
//	        return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
//	            if call.Arg(0) == 1 {
//	                return "first", nil
//	            }
//	            return next.Forward(call)
//	        })
//	    })
//
//	h.Honk(1) // "first"
//	h.Honk()  // prints HONK 🚚 HONK
//
// Errors returned by a handler propagate unchanged to the caller. Nothing in
// the chain retries or recovers unless Config.RecoverPanics is set.
//
// # Services
//
// Middleware factories receive the shared Services. The fixed fields carry
// the entry point, the logger and the instance id; other services are
// published by type with Provide and read with Lookup.
package honk
