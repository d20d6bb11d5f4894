// Package audit logs every call that passes through the chain.
package audit

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/honk/internal/honk"
)

// New returns a middleware that logs calls to logger and forwards them.
//
// Each call is logged at debug level before and after it is forwarded.
// Calls that end in an error are logged at error level with the elapsed
// time. The middleware never claims a call.
func New(logger zerolog.Logger) honk.Middleware {
	return func(svc *honk.Services) honk.Handler {
		logger := logger.With().
			Str("honk", svc.ID.String()).
			Str("component", "audit").
			Logger()

		return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
			logger.Debug().
				Stringer("kind", call.Kind()).
				Int("args", call.Len()).
				Msg("call start")

			start := time.Now()
			result, err := next.Forward(call)
			elapsed := time.Since(start)

			if err != nil {
				logger.Error().
					Err(err).
					Stringer("kind", call.Kind()).
					Dur("elapsed", elapsed).
					Msg("call failed")
				return result, err
			}

			logger.Debug().
				Stringer("kind", call.Kind()).
				Bool("claimed", result != nil).
				Dur("elapsed", elapsed).
				Msg("call complete")
			return result, nil
		})
	}
}

// Shared is New with the logger the honk was configured with.
func Shared() honk.Middleware {
	return func(svc *honk.Services) honk.Handler {
		return New(svc.Logger)(svc)
	}
}
