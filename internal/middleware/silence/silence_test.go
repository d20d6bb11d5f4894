package silence_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/honk/internal/honk"
	"github.com/dshills/honk/internal/middleware/injector"
	"github.com/dshills/honk/internal/middleware/silence"
)

func TestNoLongerHonks(t *testing.T) {
	var out bytes.Buffer
	h := honk.New(honk.DefaultConfig().WithOutput(&out)).Use(silence.New())

	result, err := h.Honk()

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, out.String())
}

func TestShadowsEarlierMiddleware(t *testing.T) {
	var out bytes.Buffer
	h := honk.New(honk.DefaultConfig().WithOutput(&out)).
		Use(injector.New()).
		Use(silence.New())

	called := false
	result, err := h.Honk(func(*honk.Services) { called = true })

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, called)
}

func TestFallbackOnlySilencesEmptyCalls(t *testing.T) {
	var out bytes.Buffer
	h := honk.New(honk.DefaultConfig().WithOutput(&out)).
		Use(injector.New()).
		Use(silence.Fallback())

	_, err := h.Honk()
	require.NoError(t, err)
	assert.Empty(t, out.String())

	result, err := h.Honk(func(*honk.Services) any { return "still injected" })
	require.NoError(t, err)
	assert.Equal(t, "still injected", result)

	_, err = h.Honk("unclaimed")
	require.NoError(t, err)
	assert.Equal(t, "HONK 🚚 HONK\n", out.String())
}
