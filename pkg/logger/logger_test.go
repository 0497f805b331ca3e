package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToGivenOutput(t *testing.T) {
	l := New(Config{Level: "info"})
	var buf bytes.Buffer
	l = l.Output(&buf)
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestNew_PrettyOutputStillContainsMessage(t *testing.T) {
	l := New(Config{Level: "info", Pretty: true})
	var buf bytes.Buffer
	l = l.Output(&buf)
	l.Info().Msg("pretty hello")

	assert.Contains(t, buf.String(), "pretty hello")
}

func TestNew_LevelFiltersBelowThreshold(t *testing.T) {
	l := New(Config{Level: "error"})
	var buf bytes.Buffer
	l = l.Output(&buf)

	l.Info().Msg("should be dropped")
	l.Error().Msg("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should appear")
}

func TestNew_LevelTable(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"bogus": zerolog.InfoLevel,
		"":      zerolog.InfoLevel,
	}
	for level, want := range cases {
		New(Config{Level: level})
		assert.Equal(t, want, zerolog.GlobalLevel(), "level=%q", level)
	}
}

func TestNew_CallerFieldPresent(t *testing.T) {
	l := New(Config{Level: "debug"})
	var buf bytes.Buffer
	l = l.Output(&buf)
	l.Debug().Msg("with caller")

	assert.Contains(t, buf.String(), "\"caller\"")
}

func TestSetGlobalLogger_RedirectsPackageLevelLog(t *testing.T) {
	l := New(Config{Level: "info"})
	var buf bytes.Buffer
	l = l.Output(&buf)

	SetGlobalLogger(l)
	log.Logger.Info().Msg("via global")

	require.Contains(t, buf.String(), "via global")
}
