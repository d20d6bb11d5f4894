package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "HONK_"

// ApplyEnv overrides c with HONK_* variables found by lookup, usually
// os.LookupEnv. Empty values count as set. Lists are comma separated.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = splitList(v)
		}
	}
	var err error
	flag := func(name string, dst *bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || err != nil {
			return
		}
		b, perr := strconv.ParseBool(strings.TrimSpace(v))
		if perr != nil {
			err = fmt.Errorf("config: %s%s: %w", EnvPrefix, name, perr)
			return
		}
		*dst = b
	}

	str("MESSAGE", &c.Honk.Message)
	flag("RECOVER_PANICS", &c.Honk.RecoverPanics)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	flag("LOG_TIMESTAMP", &c.Log.Timestamp)
	flag("SILENCE", &c.Middleware.Silence)
	flag("INJECTOR", &c.Middleware.Injector)
	flag("COMPONENTS", &c.Middleware.Components)
	flag("AUDIT", &c.Middleware.Audit)
	flag("METRICS", &c.Middleware.Metrics)
	list("LUA", &c.Middleware.Lua)
	list("JS", &c.Middleware.JS)

	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
