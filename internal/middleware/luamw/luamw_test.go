package luamw_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/honk/internal/honk"
	"github.com/dshills/honk/internal/middleware/luamw"
)

const pingScript = `
function handle(call, next)
  if call.kind == "args" and call.args[1] == "ping" then
    return "pong"
  end
  return next()
end
`

func quiet(out *bytes.Buffer) *honk.Honk {
	return honk.New(honk.DefaultConfig().WithOutput(out))
}

// answer claims every call with v.
func answer(v any) honk.Middleware {
	return func(*honk.Services) honk.Handler {
		return honk.HandlerFunc(func(honk.Call, honk.Cursor) (any, error) {
			return v, nil
		})
	}
}

func TestNew_ClaimsAndForwards(t *testing.T) {
	mw, err := luamw.New(pingScript)
	require.NoError(t, err)

	var out bytes.Buffer
	h := quiet(&out).Use(mw)

	result, err := h.Honk("ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", result)
	assert.Empty(t, out.String())

	result, err = h.Honk()
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "HONK 🚚 HONK\n", out.String())
}

func TestNew_TransformsForwardedResult(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return next() .. "!"
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	h := quiet(&out).Use(answer("inner")).Use(mw)

	result, err := h.Honk("x")

	require.NoError(t, err)
	assert.Equal(t, "inner!", result)
}

func TestNew_ForwardsNewCall(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return next("rewritten", #call.args)
end
`)
	require.NoError(t, err)

	var seen honk.Call
	var out bytes.Buffer
	h := quiet(&out).
		Use(func(*honk.Services) honk.Handler {
			return honk.HandlerFunc(func(call honk.Call, _ honk.Cursor) (any, error) {
				seen = call
				return nil, nil
			})
		}).
		Use(mw)

	_, err = h.Honk("a", "b", "c")

	require.NoError(t, err)
	assert.Equal(t, []any{"rewritten", int64(3)}, seen.Args())
}

func TestNew_ConvertsValues(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return { n = call.args[1] * 2, f = 1.5, list = { "a", "b" }, ok = true }
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := quiet(&out).Use(mw).Honk(21)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n":    int64(42),
		"f":    1.5,
		"list": []any{"a", "b"},
		"ok":   true,
	}, result)
}

func TestNew_UserDataRoundTrip(t *testing.T) {
	type token struct{ v int }
	mw, err := luamw.New(`
function handle(call, next)
  return call.args[1]
end
`)
	require.NoError(t, err)

	tok := &token{v: 1}
	var out bytes.Buffer
	result, err := quiet(&out).Use(mw).Honk(tok, "extra")

	require.NoError(t, err)
	assert.Same(t, tok, result)
}

func TestNew_ComponentCallFields(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return call.kind .. ":" .. call.id .. ":" .. call.props.title
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := quiet(&out).Use(mw).Honk(creator{}, "card-1", map[string]any{"title": "hi"})

	require.NoError(t, err)
	assert.Equal(t, "component:card-1:hi", result)
}

type creator struct{}

func (creator) ComponentName() string { return "card" }

func TestNew_ReentrantCallUnderTimeout(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  if call.args[1] == "inner" then
    return "inner"
  end
  return next()
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	h := quiet(&out).
		Use(func(svc *honk.Services) honk.Handler {
			return honk.HandlerFunc(func(call honk.Call, next honk.Cursor) (any, error) {
				if call.Arg(0) != "outer" {
					return next.Forward(call)
				}
				inner, err := svc.Honk.Honk("inner")
				if err != nil {
					return nil, err
				}
				return "outer(" + inner.(string) + ")", nil
			})
		}).
		Use(mw)

	result, err := h.Honk("outer")
	require.NoError(t, err)
	assert.Equal(t, "outer(inner)", result)

	result, err = h.Honk("inner")
	require.NoError(t, err)
	assert.Equal(t, "inner", result, "deadline still works after a nested run")
}

func TestNew_ForwardedErrorUnchanged(t *testing.T) {
	boom := errors.New("boom")
	mw, err := luamw.New(`
function handle(call, next)
  return next()
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	h := quiet(&out).
		Use(func(*honk.Services) honk.Handler {
			return honk.HandlerFunc(func(honk.Call, honk.Cursor) (any, error) {
				return nil, boom
			})
		}).
		Use(mw)

	_, err = h.Honk("x")

	assert.Same(t, boom, err)
}

func TestNew_RuntimeErrorWrapsErrScript(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  error("bad script")
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = quiet(&out).Use(mw).Honk("x")

	require.Error(t, err)
	assert.True(t, errors.Is(err, luamw.ErrScript))
	assert.Contains(t, err.Error(), "bad script")
}

func TestNew_ForwardedPanicPropagates(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return next()
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	h := quiet(&out).
		Use(func(*honk.Services) honk.Handler {
			return honk.HandlerFunc(func(honk.Call, honk.Cursor) (any, error) {
				panic("deep")
			})
		}).
		Use(mw)

	assert.PanicsWithValue(t, "deep", func() { _, _ = h.Honk() })
}

func TestLoad_Errors(t *testing.T) {
	_, err := luamw.New(`function handle(`)
	assert.True(t, errors.Is(err, luamw.ErrScript))

	_, err = luamw.New(`x = 1`)
	assert.True(t, errors.Is(err, luamw.ErrNoHandler))

	_, err = luamw.New(`error("at load")`)
	assert.True(t, errors.Is(err, luamw.ErrScript))
}

func TestLoad_Sandboxed(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return tostring(os) .. "," .. tostring(io) .. "," .. tostring(require)
end
`)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := quiet(&out).Use(mw).Honk("x")

	require.NoError(t, err)
	assert.Equal(t, "nil,nil,nil", result)
}

func TestWithGlobal(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  return greeting
end
`, luamw.WithGlobal("greeting", "hello"))
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := quiet(&out).Use(mw).Honk("x")

	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestWithTimeout(t *testing.T) {
	mw, err := luamw.New(`
function handle(call, next)
  while true do end
end
`, luamw.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = quiet(&out).Use(mw).Honk("x")

	assert.True(t, errors.Is(err, luamw.ErrScript))
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ping.lua")
	require.NoError(t, os.WriteFile(path, []byte(pingScript), 0o600))

	mw, err := luamw.NewFromFile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := quiet(&out).Use(mw).Honk("ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", result)

	_, err = luamw.NewFromFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}

func TestScript_Close(t *testing.T) {
	s, err := luamw.Load(pingScript)
	require.NoError(t, err)

	var out bytes.Buffer
	h := quiet(&out).Use(s.Middleware())
	s.Close()
	s.Close()

	_, err = h.Honk("ping")
	assert.True(t, errors.Is(err, luamw.ErrClosed))
}
