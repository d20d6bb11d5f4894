// Package metrics records Prometheus metrics for calls passing through honk.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/honk/internal/honk"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector holds the call metrics.
type Collector struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewCollector creates the call metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer. Metrics already registered
// with reg are reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honk",
			Name:      "calls_total",
			Help:      "Total calls dispatched through the chain.",
		},
		[]string{"kind", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "honk",
			Name:      "call_duration_seconds",
			Help:      "Call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	var err error
	if calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Collector{Calls: calls, Duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe records one call.
func (c *Collector) Observe(kind honk.Kind, duration time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.Calls.WithLabelValues(kind.String(), outcome).Inc()
	c.Duration.WithLabelValues(kind.String()).Observe(duration.Seconds())
}

// Middleware returns a middleware that records every call and forwards it.
// It never claims a call.
func (c *Collector) Middleware() honk.Middleware {
	return func(*honk.Services) honk.Handler {
		return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
			start := time.Now()
			result, err := next.Forward(call)
			c.Observe(call.Kind(), time.Since(start), err)
			return result, err
		})
	}
}

// New registers the call metrics with reg and returns the recording
// middleware.
func New(reg prometheus.Registerer) (honk.Middleware, error) {
	c, err := NewCollector(reg)
	if err != nil {
		return nil, err
	}
	return c.Middleware(), nil
}
