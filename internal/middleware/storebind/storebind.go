// Package storebind publishes a store into the shared honk services.
package storebind

import (
	"github.com/rs/zerolog"

	"github.com/dshills/honk/internal/honk"
	"github.com/dshills/honk/internal/store"
)

// New creates a store holding initial and publishes it.
func New[S any](initial S) honk.Middleware {
	return Bind(store.New(initial))
}

// Bind publishes an existing store. Services already provided are kept.
//
// When the shared logger is at debug level every state change is logged.
// The middleware never claims a call.
func Bind[S any](st *store.Store[S]) honk.Middleware {
	return func(svc *honk.Services) honk.Handler {
		honk.Provide(svc, st)

		if svc.Logger.GetLevel() <= zerolog.DebugLevel {
			logger := svc.Logger.With().
				Str("honk", svc.ID.String()).
				Str("component", "store").
				Logger()
			st.Subscribe(func(state S) {
				logger.Debug().Interface("state", state).Msg("state changed")
			})
		}

		return nil
	}
}

// From returns the store of state type S published by New or Bind.
func From[S any](svc *honk.Services) (*store.Store[S], bool) {
	return honk.Lookup[*store.Store[S]](svc)
}
