package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{"DEBUG", zerolog.DebugLevel, true},
		{"info", zerolog.InfoLevel, true},
		{"warn", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{" error ", zerolog.ErrorLevel, true},
		{"trace", zerolog.TraceLevel, true},
		{"disabled", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DefaultConfig().
		WithFormat(FormatJSON).
		WithOutput(&buf).
		WithLevel(zerolog.InfoLevel))

	logger.Debug().Msg("hidden")
	logger.Info().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, `"app":"honk"`)
	assert.Contains(t, out, `"time":`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.DebugLevel, Format: FormatConsole, Output: &buf})

	logger.Debug().Msg("console line")

	out := buf.String()
	assert.Contains(t, out, "console line")
	assert.False(t, strings.HasPrefix(out, "{"))
	assert.NotContains(t, out, "\x1b[", "buffers get no color")
}

func TestNop(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, Nop().GetLevel())
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	assert.False(t, isTerminal(f), "regular files are not terminals")
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
