package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/dshills/honk/internal/config"
	"github.com/dshills/honk/internal/honk"
	"github.com/dshills/honk/internal/middleware/audit"
	"github.com/dshills/honk/internal/middleware/components"
	"github.com/dshills/honk/internal/middleware/injector"
	"github.com/dshills/honk/internal/middleware/jsmw"
	"github.com/dshills/honk/internal/middleware/luamw"
	"github.com/dshills/honk/internal/middleware/metrics"
	"github.com/dshills/honk/internal/middleware/silence"
	"github.com/dshills/honk/internal/middleware/storebind"
	"github.com/dshills/honk/internal/store"
)

// errNoComponents is returned for -markdown when components are disabled.
var errNoComponents = errors.New("markdown needs the components middleware")

// state is the command's store state.
type state = map[string]any

// app is a configured honk with the pieces the command reports on.
type app struct {
	honk     *honk.Honk
	store    *store.Store[state]
	registry *prometheus.Registry
	markdown *components.Creator
	scripts  []*luamw.Script
	logger   zerolog.Logger
}

// newApp registers middlewares in order, innermost first: silence, the
// injector, components, scripts, the store with its call counter, metrics
// and audit.
func newApp(cfg config.Config, logger zerolog.Logger, out io.Writer) (*app, error) {
	a := &app{
		logger: logger,
		store:  store.New(copyState(cfg.Store.Initial)),
	}

	a.honk = honk.New(honk.DefaultConfig().
		WithMessage(cfg.Honk.Message).
		WithOutput(out).
		WithPanicRecovery(cfg.Honk.RecoverPanics).
		WithLogger(logger))

	mw := cfg.Middleware
	if mw.Silence {
		a.honk.Use(silence.Fallback())
	}
	if mw.Injector {
		a.honk.Use(injector.New())
	}
	if mw.Components {
		a.markdown = components.Markdown("markdown")
		a.honk.Use(components.New(components.NewCache()))
	}

	for _, path := range mw.Lua {
		s, err := luamw.LoadFile(path)
		if err != nil {
			a.close()
			return nil, err
		}
		a.scripts = append(a.scripts, s)
		a.honk.Use(s.Middleware())
	}
	for _, path := range mw.JS {
		m, err := jsmw.NewFromFile(path)
		if err != nil {
			a.close()
			return nil, err
		}
		a.honk.Use(m)
	}

	a.honk.Use(storebind.Bind(a.store)).Use(countCalls)

	if mw.Metrics {
		a.registry = prometheus.NewRegistry()
		m, err := metrics.New(a.registry)
		if err != nil {
			a.close()
			return nil, err
		}
		a.honk.Use(m)
	}
	if mw.Audit {
		a.honk.Use(audit.Shared())
	}
	return a, nil
}

// call performs the one call the command was asked for.
func (a *app) call(opts options) (any, error) {
	if opts.markdown != "" {
		if a.markdown == nil {
			return nil, errNoComponents
		}
		props, err := markdownProps(opts.markdown)
		if err != nil {
			return nil, err
		}
		return a.honk.Honk(a.markdown, props)
	}

	args := make([]any, len(opts.args))
	for i, s := range opts.args {
		args[i] = s
	}
	return a.honk.Honk(args...)
}

// close releases the Lua states loaded for the command.
func (a *app) close() {
	for _, s := range a.scripts {
		s.Close()
	}
	a.scripts = nil
}

// report logs the final state and metrics at debug level.
func (a *app) report() {
	a.logger.Debug().Interface("state", a.store.State()).Msg("final state")

	if a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn().Err(err).Msg("gathering metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			ev := a.logger.Debug().Str("metric", mf.GetName()).Str("labels", strings.Join(labels, ","))
			if c := m.GetCounter(); c != nil {
				ev = ev.Float64("value", c.GetValue())
			}
			if h := m.GetHistogram(); h != nil {
				ev = ev.Uint64("count", h.GetSampleCount()).Float64("sum", h.GetSampleSum())
			}
			ev.Msg("metric")
		}
	}
}

// countCalls counts every call in the store under "calls".
func countCalls(svc *honk.Services) honk.Handler {
	st, ok := storebind.From[state](svc)
	if !ok {
		return nil
	}
	return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
		st.SetState(func(s state) state {
			s = copyState(s)
			s["calls"] = toInt64(s["calls"]) + 1
			return s
		})
		return next.Forward(call)
	})
}

// markdownProps parses the -markdown JSON object.
func markdownProps(js string) (map[string]any, error) {
	if !gjson.Valid(js) {
		return nil, fmt.Errorf("invalid -markdown JSON: %s", js)
	}
	res := gjson.Parse(js)
	if !res.IsObject() {
		return nil, errors.New("-markdown must be a JSON object")
	}
	if res.Get("text").Type != gjson.String {
		return nil, errors.New(`-markdown needs a "text" string`)
	}
	props, _ := res.Value().(map[string]any)
	if !res.Get("id").Exists() {
		props["id"] = "cli"
	}
	return props, nil
}

func copyState(s state) state {
	out := make(state, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
