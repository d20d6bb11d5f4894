package honk_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/honk/internal/honk"
)

type fakeCreator string

func (f fakeCreator) ComponentName() string { return string(f) }

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind honk.Kind
		want string
	}{
		{honk.KindFallback, "fallback"},
		{honk.KindInject, "inject"},
		{honk.KindComponent, "component"},
		{honk.KindArgs, "args"},
		{honk.Kind(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestParse(t *testing.T) {
	creator := fakeCreator("card")
	props := map[string]any{"id": "a"}

	tests := []struct {
		name   string
		args   []any
		kind   honk.Kind
		length int
	}{
		{"empty", nil, honk.KindFallback, 0},
		{"inject func", []any{honk.InjectFunc(func(*honk.Services) (any, error) { return nil, nil })}, honk.KindInject, 1},
		{"inject plain func", []any{func(*honk.Services) any { return nil }}, honk.KindInject, 1},
		{"inject no result", []any{func(*honk.Services) {}}, honk.KindInject, 1},
		{"other func", []any{func() {}}, honk.KindArgs, 1},
		{"component", []any{creator, props}, honk.KindComponent, 2},
		{"component with id", []any{creator, "x"}, honk.KindComponent, 2},
		{"component with id and props", []any{creator, "x", props}, honk.KindComponent, 3},
		{"three args without string id", []any{creator, 1, props}, honk.KindArgs, 3},
		{"numbers", []any{1, 2}, honk.KindArgs, 2},
		{"four args", []any{creator, "x", props, 1}, honk.KindArgs, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := honk.Parse(tt.args...)
			assert.Equal(t, tt.kind, call.Kind())
			assert.Equal(t, tt.length, call.Len())
		})
	}
}

func TestParse_ComponentFields(t *testing.T) {
	creator := fakeCreator("card")
	props := map[string]any{"id": "a"}

	derived := honk.Parse(creator, props)
	assert.Equal(t, creator, derived.Creator())
	assert.False(t, derived.HasID())
	assert.Equal(t, props, derived.Props())

	explicit := honk.Parse(creator, "x", props)
	assert.True(t, explicit.HasID())
	assert.Equal(t, "x", explicit.ID())
	assert.Equal(t, props, explicit.Props())
}

func TestParse_InjectWrapsResult(t *testing.T) {
	call := honk.Parse(func(*honk.Services) any { return "ok" })
	require.NotNil(t, call.InjectFunc())

	result, err := call.InjectFunc()(nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestParse_InjectKeepsError(t *testing.T) {
	errBad := errors.New("bad")
	call := honk.Parse(func(*honk.Services) (any, error) { return nil, errBad })

	_, err := call.InjectFunc()(nil)
	assert.Same(t, errBad, err)
}

func TestParse_NilFuncIsArgs(t *testing.T) {
	var fn honk.InjectFunc
	assert.Equal(t, honk.KindArgs, honk.Parse(fn).Kind())
}

func TestCall_ArgOutOfRange(t *testing.T) {
	call := honk.Args(1)

	assert.Equal(t, 1, call.Arg(0))
	assert.Nil(t, call.Arg(1))
	assert.Nil(t, call.Arg(-1))
}

func TestCall_ArgsIsCopy(t *testing.T) {
	src := []any{1, 2}
	call := honk.Args(src...)
	src[0] = 99

	args := call.Args()
	args[1] = 42

	assert.Equal(t, 1, call.Arg(0))
	assert.Equal(t, 2, call.Arg(1))
}

func TestFallback_IsEmpty(t *testing.T) {
	call := honk.Fallback()

	assert.Equal(t, honk.KindFallback, call.Kind())
	assert.Equal(t, 0, call.Len())
	assert.Empty(t, call.Args())
}
